package auditlog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:auditlog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRecordAndList(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	orderID := uuid.NewString()
	err = svc.Record(ctx, Entry{
		Action:   enums.LogActionStatusChange,
		Target:   enums.LogTargetOrder,
		TargetID: orderID,
		OldData:  map[string]any{"status": "pending"},
		NewData:  map[string]any{"status": "in_progress"},
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	err = svc.Record(ctx, Entry{
		Action:   enums.LogActionCreate,
		Target:   enums.LogTargetMaterial,
		TargetID: "HZ-001",
	})
	if err != nil {
		t.Fatalf("record second: %v", err)
	}

	target := enums.LogTargetOrder
	page, err := svc.List(ctx, pagination.Params{}, Filters{Target: &target})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || len(page.Logs) != 1 {
		t.Fatalf("expected one order log, got %+v", page)
	}
	if page.Logs[0].TargetID != orderID {
		t.Fatalf("unexpected target id %s", page.Logs[0].TargetID)
	}
	if len(page.Logs[0].NewData) == 0 {
		t.Fatalf("expected jsonb payload to round-trip")
	}
}

func TestRecordValidatesAllowLists(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc, _ := NewService(db)
	ctx := context.Background()

	cases := []Entry{
		{Action: enums.LogAction("TOUCH"), Target: enums.LogTargetOrder, TargetID: "x"},
		{Action: enums.LogActionCreate, Target: enums.LogTarget("WIDGET"), TargetID: "x"},
		{Action: enums.LogActionCreate, Target: enums.LogTargetOrder, TargetID: ""},
	}
	for _, entry := range cases {
		err := svc.Record(ctx, entry)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", entry, err)
		}
	}
}

func TestListRejectsUnknownSortField(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc, _ := NewService(db)

	_, err := svc.List(context.Background(), pagination.Params{SortBy: "actor_id"}, Filters{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
