package models

import "time"

// Material is the single source of truth for live stock. counts is on-hand
// quantity, purchasing is quantity ordered but not yet received; both must
// stay >= 0, and every write bumps version for the optimistic-lock check.
type Material struct {
	DrawingNoID   string  `gorm:"column:drawing_no_id;primaryKey"`
	Name          string  `gorm:"column:name;not null"`
	ModelName     *string `gorm:"column:model_name"`
	Specification *string `gorm:"column:specification"`
	RawMaterials  *string `gorm:"column:raw_materials"`
	Comments      *string `gorm:"column:comments"`
	Counts        int     `gorm:"column:counts;not null;default:0"`
	Purchasing    int     `gorm:"column:purchasing;not null;default:0"`
	Version       int     `gorm:"column:version;not null;default:0"`
	DrawingKey    *string `gorm:"column:drawing_key"`
	DrawingURL    *string `gorm:"column:drawing_url"`
	CategoryID    *uint   `gorm:"column:category_id"`

	Category *MaterialCategory `gorm:"foreignKey:CategoryID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
