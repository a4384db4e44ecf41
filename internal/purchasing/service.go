package purchasing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/internal/auditlog"
	"github.com/hzpumpworks/workshop-backend/internal/inventory"
	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/metrics"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
)

var (
	recordSearchable = []string{"material_name", "material_id", "status", "operator"}
	recordSortable   = []string{"created_at", "status", "total_price", "order_deadline"}
)

// MaterialReader is the catalog lookup the purchasing flow needs.
type MaterialReader interface {
	FindByDrawingNo(ctx context.Context, drawingNoID string) (*models.Material, error)
}

// Service drives procurement: reserve on the catalog ledger, then track the
// record through initial -> in_progress -> completed under CAS version gates.
//
// The ledger and the record live in different stores. Both Create and Finish
// order their writes ledger-first and treat the record write as the commit
// marker; if the record write fails after the ledger applied, the caller gets
// a PARTIAL_WRITE error and the ledger is NOT rolled back.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.PurchasingRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PurchasingRecord, error)
	List(ctx context.Context, params pagination.Params) (*RecordList, error)
	Start(ctx context.Context, id uuid.UUID, input StartInput) (*models.PurchasingRecord, error)
	Finish(ctx context.Context, id uuid.UUID, input FinishInput) (*models.PurchasingRecord, error)
}

type service struct {
	repo      Repository
	materials MaterialReader
	ledger    inventory.Ledger
	audit     auditlog.Recorder
	metrics   *metrics.InventoryMetrics
}

// NewService wires the purchasing workflow. Audit and metrics may be nil.
func NewService(repo Repository, materials MaterialReader, ledger inventory.Ledger, audit auditlog.Recorder, m *metrics.InventoryMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchasing repository required")
	}
	if materials == nil {
		return nil, fmt.Errorf("material reader required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{
		repo:      repo,
		materials: materials,
		ledger:    ledger,
		audit:     audit,
		metrics:   m,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.PurchasingRecord, error) {
	if input.MaterialID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Authorizer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "authorizer required")
	}

	material, err := s.materials.FindByDrawingNo(ctx, input.MaterialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material")
	}

	// catalog side first; the record insert below is the commit marker
	if err := s.ledger.ReserveForPurchase(ctx, input.MaterialID, input.Quantity, input.Version); err != nil {
		return nil, err
	}

	record := &models.PurchasingRecord{
		ID:                uuid.New(),
		MaterialID:        material.DrawingNoID,
		MaterialName:      material.Name,
		PurchasedQuantity: input.Quantity,
		Authorizer:        input.Authorizer,
		Status:            enums.PurchasingStatusInitial,
		Price:             input.Price,
		TotalPrice:        input.Price.Mul(decimal.NewFromInt(int64(input.Quantity))),
		OrderDeadline:     input.OrderDeadline,
		DocVersion:        0,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		s.metrics.IncPartialWrite()
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "reservation applied but record write failed").
			WithDetails(map[string]any{"materialId": input.MaterialID, "quantity": input.Quantity})
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionCreate,
		Target:   enums.LogTargetPurchasing,
		TargetID: created.ID.String(),
		NewData:  created,
	})
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PurchasingRecord, error) {
	return s.findRecord(ctx, id)
}

func (s *service) List(ctx context.Context, params pagination.Params) (*RecordList, error) {
	if err := params.ValidateFields(recordSearchable, recordSortable); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid list parameters")
	}
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchasing records")
	}
	return &RecordList{Records: rows, Total: total}, nil
}

// Start assigns the operator. Only an initial record can start.
func (s *service) Start(ctx context.Context, id uuid.UUID, input StartInput) (*models.PurchasingRecord, error) {
	if input.Operator == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator required")
	}

	record, err := s.findRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != enums.PurchasingStatusInitial {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record is not awaiting an operator").
			WithDetails(map[string]any{"status": record.Status})
	}

	after, err := s.applyVersioned(ctx, id, input.ExpectedVersion, map[string]any{
		"operator": input.Operator,
		"status":   enums.PurchasingStatusInProgress,
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionStatusChange,
		Target:   enums.LogTargetPurchasing,
		TargetID: id.String(),
		OldData:  map[string]any{"status": record.Status},
		NewData:  map[string]any{"status": after.Status, "operator": input.Operator},
	})
	return after, nil
}

// Finish receives the material: the catalog ledger moves the reserved
// quantity into on-hand stock FIRST, then the record flips to completed as
// the commit marker. A record write failure after the ledger applied is
// surfaced as PARTIAL_WRITE; there is no automatic compensation.
func (s *service) Finish(ctx context.Context, id uuid.UUID, input FinishInput) (*models.PurchasingRecord, error) {
	if input.Operator == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operator required")
	}

	record, err := s.findRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != enums.PurchasingStatusInProgress {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record is not in progress").
			WithDetails(map[string]any{"status": record.Status})
	}
	if input.MaterialID != record.MaterialID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material does not match record").
			WithDetails(map[string]any{"recordMaterialId": record.MaterialID})
	}
	if input.Quantity != record.PurchasedQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity does not match record").
			WithDetails(map[string]any{"recordQuantity": record.PurchasedQuantity})
	}
	// fail stale callers before the ledger is touched; the CAS below still
	// guards against writers racing between this read and the update
	if record.DocVersion != input.ExpectedVersion {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "stale version").
			WithDetails(map[string]any{"currentVersion": record.DocVersion})
	}

	if err := s.ledger.CompletePurchase(ctx, record.MaterialID, record.PurchasedQuantity); err != nil {
		return nil, err
	}

	rows, err := s.repo.UpdateWithVersion(ctx, id, input.ExpectedVersion, map[string]any{
		"operator": input.Operator,
		"status":   enums.PurchasingStatusCompleted,
	})
	if err != nil || rows == 0 {
		s.metrics.IncPartialWrite()
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "stock received but record completion failed").
			WithDetails(map[string]any{
				"recordId":   id.String(),
				"materialId": record.MaterialID,
				"quantity":   record.PurchasedQuantity,
			})
	}

	after, err := s.findRecord(ctx, id)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionStatusChange,
		Target:   enums.LogTargetPurchasing,
		TargetID: id.String(),
		OldData:  map[string]any{"status": record.Status},
		NewData:  map[string]any{"status": after.Status, "operator": input.Operator},
	})
	return after, nil
}

func (s *service) findRecord(ctx context.Context, id uuid.UUID) (*models.PurchasingRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchasing record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchasing record")
	}
	return record, nil
}

func (s *service) applyVersioned(ctx context.Context, id uuid.UUID, expectedVersion int, updates map[string]any) (*models.PurchasingRecord, error) {
	rows, err := s.repo.UpdateWithVersion(ctx, id, expectedVersion, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchasing record")
	}
	if rows == 0 {
		current, err := s.findRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "stale version").
			WithDetails(map[string]any{"currentVersion": current.DocVersion})
	}
	return s.findRecord(ctx, id)
}

func (s *service) recordAudit(ctx context.Context, entry auditlog.Entry) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, entry)
}
