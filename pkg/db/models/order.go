package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	"github.com/hzpumpworks/workshop-backend/pkg/types"
)

// Order lives in the document store. RequiredMaterials is frozen at creation
// and never rewritten; DocVersion is the optimistic-lock counter every status
// or field change must present and increment.
type Order struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	Selections        types.Selections        `gorm:"column:selections;type:jsonb;serializer:json;not null"`
	Customer          string                  `gorm:"column:customer;not null"`
	Address           *string                 `gorm:"column:address"`
	PhoneNumber       *string                 `gorm:"column:phone_number"`
	Comments          *string                 `gorm:"column:comments"`
	Price             *float64                `gorm:"column:price"`
	Deadline          int                     `gorm:"column:deadline;not null;default:0"`
	Status            enums.OrderStatus       `gorm:"column:status;not null"`
	RequiredMaterials types.RequiredMaterials `gorm:"column:required_materials;type:jsonb;serializer:json"`
	DocVersion        int                     `gorm:"column:doc_version;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
