// Package catalog owns the relational side of the system: materials and
// their categories, products, and the BOM edges linking them. Stock counters
// themselves move through the inventory ledger; this package only creates and
// describes the rows the ledger operates on.
package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/internal/auditlog"
	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
)

var (
	materialSearchable = []string{"drawing_no_id", "name", "model_name", "specification"}
	materialSortable   = []string{"drawing_no_id", "name", "counts", "created_at"}

	productSearchable = []string{"idproduct", "model_name", "pump_model", "manufacturer"}
	productSortable   = []string{"idproduct", "model_name", "created_at"}

	categorySortable = []string{"name", "created_at"}
)

// Service is the catalog surface the API and the purchasing workflow consume.
type Service interface {
	CreateMaterial(ctx context.Context, input CreateMaterialInput) (*models.Material, error)
	GetMaterial(ctx context.Context, drawingNoID string) (*models.Material, error)
	SearchMaterials(ctx context.Context, query string, params pagination.Params) (*MaterialList, error)
	ListMaterials(ctx context.Context, params pagination.Params, filter MaterialFilter) (*MaterialList, error)
	UpdateCounts(ctx context.Context, drawingNoID string, counts, expectedVersion int) (*models.Material, error)

	CreateCategory(ctx context.Context, name string) (*models.MaterialCategory, error)
	ListCategories(ctx context.Context, params pagination.Params) (*CategoryList, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params) (*ProductList, error)
	DeleteProduct(ctx context.Context, idProduct string) error
	LinkMaterials(ctx context.Context, idProduct string, links []MaterialLink) (*LinkResult, error)
	ListProductMaterials(ctx context.Context, idProduct string) ([]ProductMaterial, error)

	// FindByDrawingNo is the raw lookup other workflows build on. It returns
	// gorm.ErrRecordNotFound untranslated when the material does not exist.
	FindByDrawingNo(ctx context.Context, drawingNoID string) (*models.Material, error)
}

type service struct {
	db    *gorm.DB
	audit auditlog.Recorder
}

// NewService wires the catalog against the catalog store. Audit may be nil.
func NewService(db *gorm.DB, audit auditlog.Recorder) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog db required")
	}
	return &service{db: db, audit: audit}, nil
}

func (s *service) recordAudit(ctx context.Context, entry auditlog.Entry) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, entry)
}
