package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hzpumpworks/workshop-backend/pkg/enums"
)

// User is an operator account. PasswordHash is an argon2id encoded string.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	Name         string         `gorm:"column:name;not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;not null"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	AvatarKey    *string        `gorm:"column:avatar_key"`
	AvatarURL    *string        `gorm:"column:avatar_url"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
