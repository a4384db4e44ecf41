package purchasing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
)

// Repository defines persistence operations against the document store's
// purchasing_records table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.PurchasingRecord) (*models.PurchasingRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PurchasingRecord, error)
	List(ctx context.Context, params pagination.Params) ([]models.PurchasingRecord, int64, error)
	// UpdateWithVersion is the same compare-and-swap contract as orders:
	// zero rows means gone or stale, caller re-reads to tell which.
	UpdateWithVersion(ctx context.Context, id uuid.UUID, expectedVersion int, updates map[string]any) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a purchasing repository bound to the document store.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.PurchasingRecord) (*models.PurchasingRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PurchasingRecord, error) {
	var record models.PurchasingRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.PurchasingRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchasingRecord{})
	if params.Search != "" && params.SearchBy != "" {
		query = query.Where(params.SearchBy+" LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := params.OrderClause("")
	if order == "" {
		order = "created_at DESC"
	}

	var rows []models.PurchasingRecord
	err := query.
		Order(order).
		Limit(pagination.NormalizeLimit(params.Limit)).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) UpdateWithVersion(ctx context.Context, id uuid.UUID, expectedVersion int, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["doc_version"] = gorm.Expr("doc_version + 1")

	res := r.db.WithContext(ctx).
		Model(&models.PurchasingRecord{}).
		Where("id = ? AND doc_version = ?", id, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
