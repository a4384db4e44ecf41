package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/internal/auditlog"
	"github.com/hzpumpworks/workshop-backend/internal/inventory"
	"github.com/hzpumpworks/workshop-backend/internal/requirements"
	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
	"github.com/hzpumpworks/workshop-backend/pkg/types"
)

var (
	orderSearchable = []string{"customer", "status"}
	orderSortable   = []string{"created_at", "deadline", "status", "customer"}
)

// Service drives the order lifecycle: creation with a frozen requirement
// snapshot, version-gated updates, and inventory hand-offs.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderView, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderView, error)
	List(ctx context.Context, params pagination.Params) (*OrderList, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string, expectedVersion int) (*OrderView, error)
	Update(ctx context.Context, id uuid.UUID, patch UpdateOrderInput, expectedVersion int) (*OrderView, error)
	ResolveRequirements(ctx context.Context, selections []types.Selection) ([]requirements.Requirement, error)
	UseRequiredMaterials(ctx context.Context, lines []inventory.Line) error
	RestoreInventory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     Repository
	resolver requirements.Resolver
	ledger   inventory.Ledger
	audit    auditlog.Recorder
	now      func() time.Time
}

// NewService wires the order workflow. The audit recorder may be nil.
func NewService(repo Repository, resolver requirements.Resolver, ledger inventory.Ledger, audit auditlog.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("requirement resolver required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{
		repo:     repo,
		resolver: resolver,
		ledger:   ledger,
		audit:    audit,
		now:      time.Now,
	}, nil
}

// Create persists the order with its requirement snapshot. Stock is not
// touched here; debiting happens explicitly via UseRequiredMaterials.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderView, error) {
	if input.Customer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer required")
	}
	if input.Deadline < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deadline must not be negative")
	}

	reqs, err := s.resolver.Resolve(ctx, input.Selections)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:                uuid.New(),
		Selections:        input.Selections,
		Customer:          input.Customer,
		Address:           input.Address,
		PhoneNumber:       input.PhoneNumber,
		Comments:          input.Comments,
		Price:             input.Price,
		Deadline:          input.Deadline,
		Status:            enums.OrderStatusPending,
		RequiredMaterials: requirements.SnapshotFrom(reqs),
		DocVersion:        0,
	}
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionCreate,
		Target:   enums.LogTargetOrder,
		TargetID: created.ID.String(),
		NewData:  created,
	})

	view := viewFrom(created, s.now())
	return &view, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	view := viewFrom(order, s.now())
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*OrderList, error) {
	if err := params.ValidateFields(orderSearchable, orderSortable); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid list parameters")
	}

	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	now := s.now()
	views := make([]OrderView, 0, len(rows))
	for i := range rows {
		views = append(views, viewFrom(&rows[i], now))
	}
	return &OrderList{Orders: views, Total: total}, nil
}

// ChangeStatus moves the order to the supplied status iff the caller's
// version is current. The guard and the increment are one statement.
func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, status string, expectedVersion int) (*OrderView, error) {
	if status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status required")
	}
	if expectedVersion < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "version must not be negative")
	}

	before, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"status": status}
	after, err := s.applyVersioned(ctx, id, expectedVersion, updates)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionStatusChange,
		Target:   enums.LogTargetOrder,
		TargetID: id.String(),
		OldData:  map[string]any{"status": before.Status},
		NewData:  map[string]any{"status": after.Status},
	})

	view := viewFrom(after, s.now())
	return &view, nil
}

// Update applies a field patch under the same version gate as ChangeStatus.
// The requirement snapshot and the selections are immutable after creation.
func (s *service) Update(ctx context.Context, id uuid.UUID, patch UpdateOrderInput, expectedVersion int) (*OrderView, error) {
	if expectedVersion < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "version must not be negative")
	}

	updates := map[string]any{}
	if patch.Customer != nil {
		if *patch.Customer == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer must not be empty")
		}
		updates["customer"] = *patch.Customer
	}
	if patch.Address != nil {
		updates["address"] = *patch.Address
	}
	if patch.PhoneNumber != nil {
		updates["phone_number"] = *patch.PhoneNumber
	}
	if patch.Comments != nil {
		updates["comments"] = *patch.Comments
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Deadline != nil {
		if *patch.Deadline < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "deadline must not be negative")
		}
		updates["deadline"] = *patch.Deadline
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty patch")
	}

	before, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	after, err := s.applyVersioned(ctx, id, expectedVersion, updates)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionUpdate,
		Target:   enums.LogTargetOrder,
		TargetID: id.String(),
		OldData:  before,
		NewData:  after,
	})

	view := viewFrom(after, s.now())
	return &view, nil
}

func (s *service) ResolveRequirements(ctx context.Context, selections []types.Selection) ([]requirements.Requirement, error) {
	return s.resolver.Resolve(ctx, selections)
}

func (s *service) UseRequiredMaterials(ctx context.Context, lines []inventory.Line) error {
	return s.ledger.Debit(ctx, lines)
}

// RestoreInventory credits the frozen snapshot back to the ledger.
func (s *service) RestoreInventory(ctx context.Context, id uuid.UUID) error {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return err
	}
	if len(order.RequiredMaterials) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order has no material snapshot")
	}

	lines := make([]inventory.Line, 0, len(order.RequiredMaterials))
	for _, entry := range order.RequiredMaterials {
		lines = append(lines, inventory.Line{MaterialID: entry.MaterialID, Quantity: entry.RequiredQuantity})
	}
	if err := s.ledger.Credit(ctx, lines); err != nil {
		return err
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionUpdate,
		Target:   enums.LogTargetOrder,
		TargetID: id.String(),
		Details:  strPtr("inventory restored from snapshot"),
	})
	return nil
}

func (s *service) findOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// applyVersioned runs the compare-and-swap update and disambiguates a missed
// write: the row either disappeared (not found) or moved on (conflict).
func (s *service) applyVersioned(ctx context.Context, id uuid.UUID, expectedVersion int, updates map[string]any) (*models.Order, error) {
	rows, err := s.repo.UpdateWithVersion(ctx, id, expectedVersion, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	if rows == 0 {
		current, err := s.findOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "stale version").
			WithDetails(map[string]any{"currentVersion": current.DocVersion})
	}
	return s.findOrder(ctx, id)
}

func (s *service) recordAudit(ctx context.Context, entry auditlog.Entry) {
	if s.audit == nil {
		return
	}
	// audit failures must not fail the business write
	_ = s.audit.Record(ctx, entry)
}

func strPtr(s string) *string {
	return &s
}
