package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hzpumpworks/workshop-backend/internal/auditlog"
	"github.com/hzpumpworks/workshop-backend/pkg/db"
	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
)

func (s *service) CreateMaterial(ctx context.Context, input CreateMaterialInput) (*models.Material, error) {
	if input.DrawingNoID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "drawing number required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if input.Counts < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counts must not be negative")
	}
	if input.CategoryID != nil {
		var category models.MaterialCategory
		if err := s.db.WithContext(ctx).First(&category, *input.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}
	}

	material := &models.Material{
		DrawingNoID:   input.DrawingNoID,
		Name:          input.Name,
		ModelName:     input.ModelName,
		Specification: input.Specification,
		RawMaterials:  input.RawMaterials,
		Comments:      input.Comments,
		Counts:        input.Counts,
		CategoryID:    input.CategoryID,
		DrawingKey:    input.DrawingKey,
		DrawingURL:    input.DrawingURL,
	}
	if err := s.db.WithContext(ctx).Create(material).Error; err != nil {
		if db.IsUniqueViolation(err, "materials_pkey") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "material already exists").
				WithDetails(map[string]any{"drawingNoId": input.DrawingNoID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create material")
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionCreate,
		Target:   enums.LogTargetMaterial,
		TargetID: material.DrawingNoID,
		NewData:  material,
	})
	return material, nil
}

func (s *service) GetMaterial(ctx context.Context, drawingNoID string) (*models.Material, error) {
	material, err := s.FindByDrawingNo(ctx, drawingNoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material")
	}
	return material, nil
}

func (s *service) FindByDrawingNo(ctx context.Context, drawingNoID string) (*models.Material, error) {
	if drawingNoID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "drawing number required")
	}
	var material models.Material
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("drawing_no_id = ?", drawingNoID).
		First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

// SearchMaterials matches on a drawing-number substring.
func (s *service) SearchMaterials(ctx context.Context, query string, params pagination.Params) (*MaterialList, error) {
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query required")
	}
	scoped := s.db.WithContext(ctx).
		Model(&models.Material{}).
		Where("drawing_no_id LIKE ?", "%"+query+"%").
		Order("drawing_no_id ASC")
	return s.pageMaterials(scoped, params)
}

func (s *service) ListMaterials(ctx context.Context, params pagination.Params, filter MaterialFilter) (*MaterialList, error) {
	if err := params.ValidateFields(materialSearchable, materialSortable); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid list parameters")
	}
	if filter.MinCounts != nil && filter.MaxCounts != nil && *filter.MinCounts > *filter.MaxCounts {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counts range is inverted")
	}

	scoped := s.db.WithContext(ctx).Model(&models.Material{})
	if params.Search != "" && params.SearchBy != "" {
		scoped = scoped.Where(params.SearchBy+" LIKE ?", "%"+params.Search+"%")
	}
	if filter.CategoryID != nil {
		scoped = scoped.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MinCounts != nil {
		scoped = scoped.Where("counts >= ?", *filter.MinCounts)
	}
	if filter.MaxCounts != nil {
		scoped = scoped.Where("counts <= ?", *filter.MaxCounts)
	}

	order := params.OrderClause("")
	if order == "" {
		order = "drawing_no_id ASC"
	}
	return s.pageMaterials(scoped.Order(order), params)
}

// UpdateCounts sets the on-hand stock to an absolute value. The write is
// version gated like every other material mutation; ledger movements and
// manual corrections contend on the same counter.
func (s *service) UpdateCounts(ctx context.Context, drawingNoID string, counts, expectedVersion int) (*models.Material, error) {
	if drawingNoID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "drawing number required")
	}
	if counts < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counts must not be negative")
	}

	before, err := s.GetMaterial(ctx, drawingNoID)
	if err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).
		Model(&models.Material{}).
		Where("drawing_no_id = ? AND version = ?", drawingNoID, expectedVersion).
		Updates(map[string]any{
			"counts":  counts,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update counts")
	}
	if res.RowsAffected == 0 {
		current, err := s.GetMaterial(ctx, drawingNoID)
		if err != nil {
			return nil, err
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "stale material version").
			WithDetails(map[string]any{"currentVersion": current.Version})
	}

	after, err := s.GetMaterial(ctx, drawingNoID)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionUpdate,
		Target:   enums.LogTargetMaterial,
		TargetID: drawingNoID,
		OldData:  map[string]any{"counts": before.Counts},
		NewData:  map[string]any{"counts": after.Counts},
	})
	return after, nil
}

func (s *service) pageMaterials(scoped *gorm.DB, params pagination.Params) (*MaterialList, error) {
	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count materials")
	}

	var rows []models.Material
	err := scoped.
		Preload("Category").
		Limit(pagination.NormalizeLimit(params.Limit)).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list materials")
	}
	return &MaterialList{Materials: rows, Total: total}, nil
}
