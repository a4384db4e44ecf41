package models

import "time"

// MaterialCategory groups materials for browsing and search.
type MaterialCategory struct {
	ID      uint   `gorm:"column:id;primaryKey;autoIncrement"`
	Name    string `gorm:"column:name;not null;uniqueIndex"`
	Version int    `gorm:"column:version;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
