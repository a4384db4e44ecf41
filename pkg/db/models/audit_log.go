package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/hzpumpworks/workshop-backend/pkg/enums"
)

// AuditLog records who changed what. OldData/NewData hold entity snapshots
// around the change as raw jsonb.
type AuditLog struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Action    enums.LogAction `gorm:"column:action;not null"`
	Target    enums.LogTarget `gorm:"column:target;not null;index:idx_audit_target"`
	TargetID  string          `gorm:"column:target_id;not null;index:idx_audit_target"`
	Details   *string         `gorm:"column:details"`
	OldData   datatypes.JSON  `gorm:"column:old_data;type:jsonb"`
	NewData   datatypes.JSON  `gorm:"column:new_data;type:jsonb"`
	ActorID   *uuid.UUID      `gorm:"column:actor_id;type:uuid"`
	ActorName *string         `gorm:"column:actor_name"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
