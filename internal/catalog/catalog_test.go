package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.MaterialCategory{},
		&models.Material{},
		&models.Product{},
		&models.BOMEdge{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(conn, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustMaterial(t *testing.T, svc Service, drawingNo, name string, counts int) *models.Material {
	t.Helper()
	material, err := svc.CreateMaterial(context.Background(), CreateMaterialInput{
		DrawingNoID: drawingNo,
		Name:        name,
		Counts:      counts,
	})
	if err != nil {
		t.Fatalf("create material %s: %v", drawingNo, err)
	}
	return material
}

func mustProduct(t *testing.T, svc Service, id, modelName string) *models.Product {
	t.Helper()
	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		IDProduct: id,
		ModelName: modelName,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", id, err)
	}
	return product
}

func TestCreateMaterialRejectsDuplicate(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	mustMaterial(t, svc, "M-SHAFT", "pump shaft", 10)

	_, err := svc.CreateMaterial(context.Background(), CreateMaterialInput{
		DrawingNoID: "M-SHAFT",
		Name:        "pump shaft again",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate drawing number, got %v", err)
	}
}

func TestCreateMaterialUnknownCategory(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	missing := uint(99)
	_, err := svc.CreateMaterial(context.Background(), CreateMaterialInput{
		DrawingNoID: "M-SHAFT",
		Name:        "pump shaft",
		CategoryID:  &missing,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown category, got %v", err)
	}
}

func TestSearchMaterialsByDrawingNo(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()
	mustMaterial(t, svc, "HZ-100-SHAFT", "pump shaft", 10)
	mustMaterial(t, svc, "HZ-200-SEAL", "mechanical seal", 5)
	mustMaterial(t, svc, "HZ-100-SLEEVE", "shaft sleeve", 3)

	list, err := svc.SearchMaterials(ctx, "HZ-100", pagination.Params{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if list.Total != 2 || len(list.Materials) != 2 {
		t.Fatalf("expected 2 matches, got total=%d rows=%d", list.Total, len(list.Materials))
	}

	if _, err := svc.SearchMaterials(ctx, "", pagination.Params{}); err == nil {
		t.Fatal("expected validation error for empty query")
	}
}

func TestListMaterialsFilters(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "castings")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	mustMaterial(t, svc, "M-LOW", "low stock", 2)
	mustMaterial(t, svc, "M-MID", "mid stock", 10)
	_, err = svc.CreateMaterial(ctx, CreateMaterialInput{
		DrawingNoID: "M-CAST",
		Name:        "casting",
		Counts:      50,
		CategoryID:  &category.ID,
	})
	if err != nil {
		t.Fatalf("create categorized material: %v", err)
	}

	min, max := 5, 20
	list, err := svc.ListMaterials(ctx, pagination.Params{}, MaterialFilter{MinCounts: &min, MaxCounts: &max})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if list.Total != 1 || list.Materials[0].DrawingNoID != "M-MID" {
		t.Fatalf("counts range filter broken: %+v", list.Materials)
	}

	list, err = svc.ListMaterials(ctx, pagination.Params{}, MaterialFilter{CategoryID: &category.ID})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if list.Total != 1 || list.Materials[0].DrawingNoID != "M-CAST" {
		t.Fatalf("category filter broken: %+v", list.Materials)
	}

	_, err = svc.ListMaterials(ctx, pagination.Params{SortBy: "version"}, MaterialFilter{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown sort field, got %v", err)
	}

	badMin, badMax := 10, 5
	_, err = svc.ListMaterials(ctx, pagination.Params{}, MaterialFilter{MinCounts: &badMin, MaxCounts: &badMax})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}

func TestUpdateCountsCAS(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()
	mustMaterial(t, svc, "M-SHAFT", "pump shaft", 10)

	after, err := svc.UpdateCounts(ctx, "M-SHAFT", 25, 0)
	if err != nil {
		t.Fatalf("update counts: %v", err)
	}
	if after.Counts != 25 || after.Version != 1 {
		t.Fatalf("unexpected state after update: counts=%d version=%d", after.Counts, after.Version)
	}

	_, err = svc.UpdateCounts(ctx, "M-SHAFT", 30, 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for stale version, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["currentVersion"] != 1 {
		t.Fatalf("expected current version in details, got %+v", typed.Details())
	}

	_, err = svc.UpdateCounts(ctx, "M-SHAFT", -1, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("negative counts must be rejected, got %v", err)
	}
}

func TestCategoriesCreateAndList(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, "castings"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, "seals"); err != nil {
		t.Fatalf("create second: %v", err)
	}

	_, err := svc.CreateCategory(ctx, "castings")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}

	list, err := svc.ListCategories(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 2 || list.Categories[0].Name != "castings" {
		t.Fatalf("unexpected listing: %+v", list.Categories)
	}
}

func TestCreateProductRejectsDuplicate(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	mustProduct(t, svc, "P-100", "ISG50-160")

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		IDProduct: "P-100",
		ModelName: "ISG50-200",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate product id, got %v", err)
	}
}

func TestLinkMaterialsReportsPerMaterial(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()
	mustProduct(t, svc, "P-100", "ISG50-160")
	mustMaterial(t, svc, "M-SHAFT", "pump shaft", 10)
	mustMaterial(t, svc, "M-SEAL", "mechanical seal", 5)

	result, err := svc.LinkMaterials(ctx, "P-100", []MaterialLink{
		{MaterialID: "M-SHAFT", MaterialCounts: 1},
		{MaterialID: "M-SEAL", MaterialCounts: 2},
	})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if len(result.Linked) != 2 || len(result.Duplicates) != 0 || len(result.Missing) != 0 {
		t.Fatalf("unexpected first link result: %+v", result)
	}

	// relink one existing pair alongside one unknown material
	result, err = svc.LinkMaterials(ctx, "P-100", []MaterialLink{
		{MaterialID: "M-SHAFT", MaterialCounts: 3},
		{MaterialID: "M-GHOST", MaterialCounts: 1},
	})
	if err != nil {
		t.Fatalf("relink: %v", err)
	}
	if len(result.Linked) != 0 {
		t.Fatalf("nothing new should have linked: %+v", result)
	}
	if len(result.Duplicates) != 1 || result.Duplicates[0] != "M-SHAFT" {
		t.Fatalf("duplicate not reported: %+v", result)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "M-GHOST" {
		t.Fatalf("missing material not reported: %+v", result)
	}

	_, err = svc.LinkMaterials(ctx, "P-404", []MaterialLink{{MaterialID: "M-SHAFT", MaterialCounts: 1}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}

	_, err = svc.LinkMaterials(ctx, "P-100", []MaterialLink{{MaterialID: "M-SHAFT", MaterialCounts: 0}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero multiplier, got %v", err)
	}
}

func TestListProductMaterials(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()
	mustProduct(t, svc, "P-100", "ISG50-160")
	mustMaterial(t, svc, "M-SHAFT", "pump shaft", 10)
	mustMaterial(t, svc, "M-SEAL", "mechanical seal", 5)

	_, err := svc.LinkMaterials(ctx, "P-100", []MaterialLink{
		{MaterialID: "M-SHAFT", MaterialCounts: 1},
		{MaterialID: "M-SEAL", MaterialCounts: 2},
	})
	if err != nil {
		t.Fatalf("link: %v", err)
	}

	rows, err := svc.ListProductMaterials(ctx, "P-100")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Material.DrawingNoID != "M-SEAL" || rows[0].MaterialCounts != 2 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
}

func TestDeleteProductRemovesEdges(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()
	mustProduct(t, svc, "P-100", "ISG50-160")
	mustMaterial(t, svc, "M-SHAFT", "pump shaft", 10)

	if _, err := svc.LinkMaterials(ctx, "P-100", []MaterialLink{{MaterialID: "M-SHAFT", MaterialCounts: 1}}); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := svc.DeleteProduct(ctx, "P-100"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := svc.ListProductMaterials(ctx, "P-100")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	err = svc.DeleteProduct(ctx, "P-100")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for second delete, got %v", err)
	}
}
