package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hzpumpworks/workshop-backend/pkg/enums"
)

// PurchasingRecord tracks one procurement request for a single material.
// TotalPrice is derived as PurchasedQuantity x Price at creation time.
// DocVersion carries the same compare-and-swap contract as orders.
type PurchasingRecord struct {
	ID                uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	MaterialID        string                 `gorm:"column:material_id;not null"`
	MaterialName      string                 `gorm:"column:material_name;not null"`
	PurchasedQuantity int                    `gorm:"column:purchased_quantity;not null"`
	Authorizer        string                 `gorm:"column:authorizer;not null"`
	Operator          *string                `gorm:"column:operator"`
	Status            enums.PurchasingStatus `gorm:"column:status;not null"`
	Price             decimal.Decimal        `gorm:"column:price;type:numeric(12,2);not null"`
	TotalPrice        decimal.Decimal        `gorm:"column:total_price;type:numeric(14,2);not null"`
	OrderDeadline     *time.Time             `gorm:"column:order_deadline"`
	DocVersion        int                    `gorm:"column:doc_version;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
