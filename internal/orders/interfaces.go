package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
)

// Repository defines persistence operations against the document store's
// orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params) ([]models.Order, int64, error)
	// UpdateWithVersion applies updates only when doc_version still matches
	// expectedVersion, incrementing it in the same statement. Returns the
	// number of rows touched; zero means the row is gone or the version is
	// stale, and the caller disambiguates by re-reading.
	UpdateWithVersion(ctx context.Context, id uuid.UUID, expectedVersion int, updates map[string]any) (int64, error)
}
