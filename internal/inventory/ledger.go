package inventory

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/metrics"
)

// Ledger is the only writer of material stock counters. Every operation
// updates a material's (counts, purchasing, version) as one unit through
// guarded single-statement updates.
type Ledger interface {
	Debit(ctx context.Context, lines []Line) error
	Credit(ctx context.Context, lines []Line) error
	ReserveForPurchase(ctx context.Context, materialID string, qty, expectedVersion int) error
	CompletePurchase(ctx context.Context, materialID string, qty int) error
}

type ledger struct {
	db      *gorm.DB
	metrics *metrics.InventoryMetrics
}

// NewLedger builds a ledger bound to the catalog store connection.
func NewLedger(db *gorm.DB, m *metrics.InventoryMetrics) (Ledger, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog db required")
	}
	return &ledger{db: db, metrics: m}, nil
}

// Debit removes stock for every line or for none of them. The availability
// pre-check enumerates every shortfall so the caller sees the full picture,
// not just the first failing material.
func (l *ledger) Debit(ctx context.Context, lines []Line) error {
	merged, err := mergeLines(lines)
	if err != nil {
		return err
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		available, err := loadCounts(ctx, tx, materialIDs(merged))
		if err != nil {
			return err
		}

		var shortfalls []Shortfall
		for _, line := range merged {
			onHand, ok := available[line.MaterialID]
			if !ok {
				onHand = 0
			}
			if onHand < line.Quantity {
				shortfalls = append(shortfalls, Shortfall{
					MaterialID: line.MaterialID,
					Required:   line.Quantity,
					Available:  onHand,
				})
			}
		}
		if len(shortfalls) > 0 {
			l.metrics.IncShortfall()
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{"insufficientMaterials": shortfalls})
		}

		for _, line := range merged {
			res := tx.Exec(`
				UPDATE materials
				SET counts = counts - ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
				WHERE drawing_no_id = ? AND counts >= ?
			`, line.Quantity, line.MaterialID, line.Quantity)
			if res.Error != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "debit material")
			}
			if res.RowsAffected == 0 {
				l.metrics.IncConflict("debit")
				return pkgerrors.New(pkgerrors.CodeConflict, "stock changed while debiting").
					WithDetails(map[string]any{"materialId": line.MaterialID})
			}
		}
		return nil
	})
}

// Credit returns stock to the ledger. Lines whose material no longer exists
// are skipped; a restore must not fail because a material was retired.
func (l *ledger) Credit(ctx context.Context, lines []Line) error {
	merged, err := mergeLines(lines)
	if err != nil {
		return err
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range merged {
			res := tx.Exec(`
				UPDATE materials
				SET counts = counts + ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
				WHERE drawing_no_id = ?
			`, line.Quantity, line.MaterialID)
			if res.Error != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "credit material")
			}
		}
		return nil
	})
}

// ReserveForPurchase moves qty into the on-order counter. The caller supplies
// the material version it read; a mismatch is a conflict, not a retry loop.
func (l *ledger) ReserveForPurchase(ctx context.Context, materialID string, qty, expectedVersion int) error {
	if materialID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "material id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := l.db.WithContext(ctx).Exec(`
		UPDATE materials
		SET purchasing = purchasing + ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE drawing_no_id = ? AND version = ?
	`, qty, materialID, expectedVersion)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve for purchase")
	}
	if res.RowsAffected == 0 {
		if exists, err := l.materialExists(ctx, materialID); err != nil {
			return err
		} else if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		l.metrics.IncConflict("reserve_for_purchase")
		return pkgerrors.New(pkgerrors.CodeConflict, "stale material version").
			WithDetails(map[string]any{"materialId": materialID})
	}
	return nil
}

// CompletePurchase receives qty: on-order goes down, on-hand goes up. More
// than was reserved cannot be received.
func (l *ledger) CompletePurchase(ctx context.Context, materialID string, qty int) error {
	if materialID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "material id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	res := l.db.WithContext(ctx).Exec(`
		UPDATE materials
		SET purchasing = purchasing - ?, counts = counts + ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE drawing_no_id = ? AND purchasing >= ?
	`, qty, qty, materialID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "complete purchase")
	}
	if res.RowsAffected == 0 {
		if exists, err := l.materialExists(ctx, materialID); err != nil {
			return err
		} else if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "purchased more than reserved").
			WithDetails(map[string]any{"materialId": materialID, "quantity": qty})
	}
	return nil
}

func (l *ledger) materialExists(ctx context.Context, materialID string) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).
		Model(&models.Material{}).
		Where("drawing_no_id = ?", materialID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup material")
	}
	return count > 0, nil
}

// mergeLines validates and aggregates duplicate material ids so the guarded
// updates see one movement per material.
func mergeLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line required")
	}
	totals := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.MaterialID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "material id required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"materialId": line.MaterialID})
		}
		totals[line.MaterialID] += line.Quantity
	}

	merged := make([]Line, 0, len(totals))
	for id, qty := range totals {
		merged = append(merged, Line{MaterialID: id, Quantity: qty})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].MaterialID < merged[j].MaterialID })
	return merged, nil
}

func materialIDs(lines []Line) []string {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MaterialID)
	}
	return ids
}

func loadCounts(ctx context.Context, tx *gorm.DB, ids []string) (map[string]int, error) {
	var rows []struct {
		DrawingNoID string
		Counts      int
	}
	err := tx.WithContext(ctx).
		Model(&models.Material{}).
		Select("drawing_no_id", "counts").
		Where("drawing_no_id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material counts")
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.DrawingNoID] = row.Counts
	}
	return counts, nil
}
