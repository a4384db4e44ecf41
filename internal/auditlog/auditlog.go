package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
)

// Entry is one audit event to record. OldData/NewData take any serializable
// value and are stored as jsonb.
type Entry struct {
	Action    enums.LogAction
	Target    enums.LogTarget
	TargetID  string
	Details   *string
	OldData   any
	NewData   any
	ActorID   *uuid.UUID
	ActorName *string
}

// Filters narrows List results.
type Filters struct {
	Target   *enums.LogTarget
	TargetID string
	Action   *enums.LogAction
}

// List is one page of audit entries.
type List struct {
	Logs  []models.AuditLog `json:"logs"`
	Total int64             `json:"total"`
}

// Recorder is the write surface other services depend on.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Service records and lists audit entries.
type Service interface {
	Recorder
	List(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds an audit log service bound to the document store.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("docs db required")
	}
	return &service{db: db}, nil
}

func (s *service) Record(ctx context.Context, entry Entry) error {
	if !entry.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid log action").
			WithDetails(map[string]any{"action": string(entry.Action)})
	}
	if !entry.Target.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid log target").
			WithDetails(map[string]any{"target": string(entry.Target)})
	}
	if entry.TargetID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "target id required")
	}

	oldData, err := marshalPayload(entry.OldData)
	if err != nil {
		return err
	}
	newData, err := marshalPayload(entry.NewData)
	if err != nil {
		return err
	}

	row := models.AuditLog{
		ID:        uuid.New(),
		Action:    entry.Action,
		Target:    entry.Target,
		TargetID:  entry.TargetID,
		Details:   entry.Details,
		OldData:   oldData,
		NewData:   newData,
		ActorID:   entry.ActorID,
		ActorName: entry.ActorName,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write audit log")
	}
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	if err := params.ValidateFields(nil, []string{"created_at", "action", "target"}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid list parameters")
	}

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filters.Target != nil {
		query = query.Where("target = ?", *filters.Target)
	}
	if filters.TargetID != "" {
		query = query.Where("target_id = ?", filters.TargetID)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count audit logs")
	}

	order := params.OrderClause("")
	if order == "" {
		order = "created_at DESC"
	}

	var rows []models.AuditLog
	err := query.
		Order(order).
		Limit(pagination.NormalizeLimit(params.Limit)).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit logs")
	}
	return &List{Logs: rows, Total: total}, nil
}

func marshalPayload(payload any) (datatypes.JSON, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "serialize log payload")
	}
	return datatypes.JSON(raw), nil
}
