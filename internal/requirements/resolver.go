package requirements

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/types"
)

// Requirement is one aggregated material demand for a set of selections.
// AvailableQuantity is read fresh at resolution time and is never part of
// the persisted order snapshot.
type Requirement struct {
	MaterialID        string `json:"materialId"`
	Name              string `json:"name"`
	RequiredQuantity  int    `json:"requiredQuantity"`
	AvailableQuantity int    `json:"availableQuantity"`
}

// Resolver expands product selections into aggregated material requirements
// through the BOM graph.
type Resolver interface {
	Resolve(ctx context.Context, selections []types.Selection) ([]Requirement, error)
}

type resolver struct {
	db *gorm.DB
}

// NewResolver builds a resolver bound to the catalog store connection.
func NewResolver(db *gorm.DB) (Resolver, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog db required")
	}
	return &resolver{db: db}, nil
}

func (r *resolver) Resolve(ctx context.Context, selections []types.Selection) ([]Requirement, error) {
	if len(selections) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one selection required")
	}

	quantities := make(map[string]int, len(selections))
	for _, sel := range selections {
		if sel.ProductID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if sel.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"productId": sel.ProductID})
		}
		quantities[sel.ProductID] += sel.Quantity
	}

	productIDs := make([]string, 0, len(quantities))
	for id := range quantities {
		productIDs = append(productIDs, id)
	}

	// one bulk fetch for the whole selection set, never per-product
	var edges []models.BOMEdge
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Find(&edges).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bom edges")
	}

	required := make(map[string]int)
	for _, edge := range edges {
		required[edge.MaterialID] += edge.MaterialCounts * quantities[edge.ProductID]
	}
	if len(required) == 0 {
		return []Requirement{}, nil
	}

	materialIDs := make([]string, 0, len(required))
	for id := range required {
		materialIDs = append(materialIDs, id)
	}

	var materials []models.Material
	err = r.db.WithContext(ctx).
		Where("drawing_no_id IN ?", materialIDs).
		Find(&materials).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load materials")
	}
	byID := make(map[string]models.Material, len(materials))
	for _, m := range materials {
		byID[m.DrawingNoID] = m
	}

	// edges whose material no longer resolves are skipped
	result := make([]Requirement, 0, len(required))
	for id, qty := range required {
		material, ok := byID[id]
		if !ok {
			continue
		}
		result = append(result, Requirement{
			MaterialID:        id,
			Name:              material.Name,
			RequiredQuantity:  qty,
			AvailableQuantity: material.Counts,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].MaterialID < result[j].MaterialID })
	return result, nil
}

// SnapshotFrom converts resolved requirements into the frozen order snapshot.
func SnapshotFrom(reqs []Requirement) types.RequiredMaterials {
	snapshot := make(types.RequiredMaterials, 0, len(reqs))
	for _, req := range reqs {
		snapshot = append(snapshot, types.RequiredMaterial{
			MaterialID:       req.MaterialID,
			Name:             req.Name,
			RequiredQuantity: req.RequiredQuantity,
		})
	}
	return snapshot
}
