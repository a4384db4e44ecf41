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

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.IDProduct == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.ModelName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model name required")
	}

	product := &models.Product{
		IDProduct:    input.IDProduct,
		ModelName:    input.ModelName,
		PumpModel:    input.PumpModel,
		DrawingNoID:  input.DrawingNoID,
		Manufacturer: input.Manufacturer,
		DrawingKey:   input.DrawingKey,
		DrawingURL:   input.DrawingURL,
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		if db.IsUniqueViolation(err, "products_pkey") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already exists").
				WithDetails(map[string]any{"idProduct": input.IDProduct})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionCreate,
		Target:   enums.LogTargetProduct,
		TargetID: product.IDProduct,
		NewData:  product,
	})
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductList, error) {
	if err := params.ValidateFields(productSearchable, productSortable); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid list parameters")
	}

	scoped := s.db.WithContext(ctx).Model(&models.Product{})
	if params.Search != "" && params.SearchBy != "" {
		scoped = scoped.Where(params.SearchBy+" LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := scoped.Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}

	order := params.OrderClause("")
	if order == "" {
		order = "idproduct ASC"
	}

	var rows []models.Product
	err := scoped.
		Order(order).
		Limit(pagination.NormalizeLimit(params.Limit)).
		Offset(params.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return &ProductList{Products: rows, Total: total}, nil
}

// DeleteProduct removes the product together with its BOM edges. Orders keep
// working because their material snapshot was frozen at creation time.
func (s *service) DeleteProduct(ctx context.Context, idProduct string) error {
	if idProduct == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("idproduct = ?", idProduct).First(&product).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", idProduct).Delete(&models.BOMEdge{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}

	s.recordAudit(ctx, auditlog.Entry{
		Action:   enums.LogActionDelete,
		Target:   enums.LogTargetProduct,
		TargetID: idProduct,
	})
	return nil
}

// LinkMaterials attaches materials to a product's bill of materials. The
// batch does not stop at the first problem: every duplicate pair and every
// unknown material is reported, and the remaining links are still created.
func (s *service) LinkMaterials(ctx context.Context, idProduct string, links []MaterialLink) (*LinkResult, error) {
	if idProduct == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if len(links) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one material link required")
	}
	for _, link := range links {
		if link.MaterialID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "material id required")
		}
		if link.MaterialCounts <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "material multiplier must be positive").
				WithDetails(map[string]any{"materialId": link.MaterialID})
		}
	}

	var product models.Product
	if err := s.db.WithContext(ctx).Where("idproduct = ?", idProduct).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	result := &LinkResult{}
	for _, link := range links {
		var count int64
		err := s.db.WithContext(ctx).
			Model(&models.Material{}).
			Where("drawing_no_id = ?", link.MaterialID).
			Count(&count).Error
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material")
		}
		if count == 0 {
			result.Missing = append(result.Missing, link.MaterialID)
			continue
		}

		edge := models.BOMEdge{
			ProductID:      idProduct,
			MaterialID:     link.MaterialID,
			MaterialCounts: link.MaterialCounts,
		}
		if err := s.db.WithContext(ctx).Omit("Product", "Material").Create(&edge).Error; err != nil {
			if db.IsUniqueViolation(err, "idx_bom_product_material") {
				result.Duplicates = append(result.Duplicates, link.MaterialID)
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bom edge")
		}
		result.Linked = append(result.Linked, link.MaterialID)
	}

	if len(result.Linked) > 0 {
		s.recordAudit(ctx, auditlog.Entry{
			Action:   enums.LogActionUpdate,
			Target:   enums.LogTargetProduct,
			TargetID: idProduct,
			NewData:  result,
		})
	}
	return result, nil
}

func (s *service) ListProductMaterials(ctx context.Context, idProduct string) ([]ProductMaterial, error) {
	if idProduct == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("idproduct = ?", idProduct).
		Count(&count).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if count == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	var edges []models.BOMEdge
	err = s.db.WithContext(ctx).
		Preload("Material").
		Where("product_id = ?", idProduct).
		Order("material_id ASC").
		Find(&edges).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bom edges")
	}

	rows := make([]ProductMaterial, 0, len(edges))
	for _, edge := range edges {
		if edge.Material == nil {
			continue
		}
		rows = append(rows, ProductMaterial{
			Material:       *edge.Material,
			MaterialCounts: edge.MaterialCounts,
		})
	}
	return rows, nil
}
