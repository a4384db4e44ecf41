package models

import "time"

// Product is a sellable assembly. Its material consumption is described by
// BOMEdge rows rather than embedded lists.
type Product struct {
	IDProduct        string  `gorm:"column:idproduct;primaryKey"`
	ModelName        string  `gorm:"column:model_name;not null"`
	PumpModel        *string `gorm:"column:pump_model"`
	DrawingNoID      *string `gorm:"column:drawing_no_id"`
	Manufacturer     *string `gorm:"column:manufacturer"`
	DrawingKey       *string `gorm:"column:drawing_key"`
	DrawingURL       *string `gorm:"column:drawing_url"`
	FinishedProducts int     `gorm:"column:finished_products;not null;default:0"`
	Version          int     `gorm:"column:version;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
