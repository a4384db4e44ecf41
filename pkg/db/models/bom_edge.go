package models

import "time"

// BOMEdge links one product to one material it consumes. MaterialCounts is
// the integer multiplier: units of the material per unit of the product.
// The (product, material) pair is unique; a duplicate link is rejected.
type BOMEdge struct {
	ID             uint   `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID      string `gorm:"column:product_id;not null;uniqueIndex:idx_bom_product_material"`
	MaterialID     string `gorm:"column:material_id;not null;uniqueIndex:idx_bom_product_material"`
	MaterialCounts int    `gorm:"column:material_counts;not null"`

	Product  *Product  `gorm:"foreignKey:ProductID;references:IDProduct"`
	Material *Material `gorm:"foreignKey:MaterialID;references:DrawingNoID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
