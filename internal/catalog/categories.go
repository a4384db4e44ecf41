package catalog

import (
	"context"

	"github.com/hzpumpworks/workshop-backend/pkg/db"
	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/pagination"
)

func (s *service) CreateCategory(ctx context.Context, name string) (*models.MaterialCategory, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	category := &models.MaterialCategory{Name: name}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if db.IsUniqueViolation(err, "material_categories_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists").
				WithDetails(map[string]any{"name": name})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, params pagination.Params) (*CategoryList, error) {
	if err := params.ValidateFields(nil, categorySortable); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid list parameters")
	}

	scoped := s.db.WithContext(ctx).Model(&models.MaterialCategory{})

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count categories")
	}

	order := params.OrderClause("")
	if order == "" {
		order = "name ASC"
	}

	var rows []models.MaterialCategory
	err := scoped.
		Order(order).
		Limit(pagination.NormalizeLimit(params.Limit)).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return &CategoryList{Categories: rows, Total: total}, nil
}
