package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Material{}); err != nil {
		t.Fatalf("migrate materials: %v", err)
	}
	return db
}

func seedMaterial(t *testing.T, db *gorm.DB, id string, counts, purchasing int) {
	t.Helper()
	m := models.Material{DrawingNoID: id, Name: "material " + id, Counts: counts, Purchasing: purchasing}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed material %s: %v", id, err)
	}
}

func loadMaterial(t *testing.T, db *gorm.DB, id string) models.Material {
	t.Helper()
	var m models.Material
	if err := db.First(&m, "drawing_no_id = ?", id).Error; err != nil {
		t.Fatalf("load material %s: %v", id, err)
	}
	return m
}

func TestDebitAppliesAllLines(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()
	seedMaterial(t, db, "HZ-001", 10, 0)
	seedMaterial(t, db, "HZ-002", 4, 0)

	ledger, err := NewLedger(db, nil)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	err = ledger.Debit(ctx, []Line{
		{MaterialID: "HZ-001", Quantity: 3},
		{MaterialID: "HZ-002", Quantity: 4},
		{MaterialID: "HZ-001", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}

	a := loadMaterial(t, db, "HZ-001")
	b := loadMaterial(t, db, "HZ-002")
	if a.Counts != 5 || a.Version != 1 {
		t.Fatalf("unexpected HZ-001 state: counts=%d version=%d", a.Counts, a.Version)
	}
	if b.Counts != 0 || b.Version != 1 {
		t.Fatalf("unexpected HZ-002 state: counts=%d version=%d", b.Counts, b.Version)
	}
}

func TestDebitAllOrNothing(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()
	seedMaterial(t, db, "HZ-010", 10, 0)
	seedMaterial(t, db, "HZ-011", 1, 0)
	seedMaterial(t, db, "HZ-012", 0, 0)

	ledger, _ := NewLedger(db, nil)

	err := ledger.Debit(ctx, []Line{
		{MaterialID: "HZ-010", Quantity: 5},
		{MaterialID: "HZ-011", Quantity: 3},
		{MaterialID: "HZ-012", Quantity: 2},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	shortfalls, ok := details["insufficientMaterials"].([]Shortfall)
	if !ok {
		t.Fatalf("expected shortfall list, got %T", details["insufficientMaterials"])
	}
	if len(shortfalls) != 2 {
		t.Fatalf("expected both shortfalls enumerated, got %d", len(shortfalls))
	}
	if shortfalls[0].MaterialID != "HZ-011" || shortfalls[0].Available != 1 || shortfalls[0].Required != 3 {
		t.Fatalf("unexpected first shortfall: %+v", shortfalls[0])
	}

	// nothing may have been applied, including the line that had stock
	if m := loadMaterial(t, db, "HZ-010"); m.Counts != 10 || m.Version != 0 {
		t.Fatalf("partial debit applied: %+v", m)
	}
}

func TestDebitUnknownMaterialIsShortfall(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	seedMaterial(t, db, "HZ-020", 5, 0)

	ledger, _ := NewLedger(db, nil)
	err := ledger.Debit(context.Background(), []Line{
		{MaterialID: "HZ-020", Quantity: 1},
		{MaterialID: "GHOST", Quantity: 1},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestDebitRejectsInvalidLines(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ledger, _ := NewLedger(db, nil)

	for _, lines := range [][]Line{
		nil,
		{{MaterialID: "", Quantity: 1}},
		{{MaterialID: "HZ-030", Quantity: 0}},
		{{MaterialID: "HZ-030", Quantity: -2}},
	} {
		err := ledger.Debit(context.Background(), lines)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", lines, err)
		}
	}
}

func TestCreditIncrementsAndSkipsMissing(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()
	seedMaterial(t, db, "HZ-040", 2, 0)

	ledger, _ := NewLedger(db, nil)
	err := ledger.Credit(ctx, []Line{
		{MaterialID: "HZ-040", Quantity: 3},
		{MaterialID: "RETIRED", Quantity: 5},
	})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if m := loadMaterial(t, db, "HZ-040"); m.Counts != 5 || m.Version != 1 {
		t.Fatalf("unexpected state after credit: %+v", m)
	}
}

func TestReserveForPurchase(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()
	seedMaterial(t, db, "HZ-050", 8, 0)

	ledger, _ := NewLedger(db, nil)

	if err := ledger.ReserveForPurchase(ctx, "HZ-050", 5, 0); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	m := loadMaterial(t, db, "HZ-050")
	if m.Purchasing != 5 || m.Version != 1 || m.Counts != 8 {
		t.Fatalf("unexpected state after reserve: %+v", m)
	}

	// stale version must conflict, not apply
	err := ledger.ReserveForPurchase(ctx, "HZ-050", 2, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for stale version, got %v", err)
	}

	err = ledger.ReserveForPurchase(ctx, "GHOST", 2, 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompletePurchase(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()
	seedMaterial(t, db, "HZ-060", 1, 4)

	ledger, _ := NewLedger(db, nil)

	if err := ledger.CompletePurchase(ctx, "HZ-060", 3); err != nil {
		t.Fatalf("complete: %v", err)
	}
	m := loadMaterial(t, db, "HZ-060")
	if m.Counts != 4 || m.Purchasing != 1 || m.Version != 1 {
		t.Fatalf("unexpected state after completion: %+v", m)
	}

	err := ledger.CompletePurchase(ctx, "HZ-060", 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for over-receipt, got %v", err)
	}

	err = ledger.CompletePurchase(ctx, "GHOST", 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
