package catalog

import "github.com/hzpumpworks/workshop-backend/pkg/db/models"

// CreateMaterialInput carries the fields a new material row needs. Counts is
// the opening on-hand stock and may be zero.
type CreateMaterialInput struct {
	DrawingNoID   string  `json:"drawingNoId" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	ModelName     *string `json:"modelName,omitempty"`
	Specification *string `json:"specification,omitempty"`
	RawMaterials  *string `json:"rawMaterials,omitempty"`
	Comments      *string `json:"comments,omitempty"`
	Counts        int     `json:"counts" validate:"gte=0"`
	CategoryID    *uint   `json:"categoryId,omitempty"`
	DrawingKey    *string `json:"drawingKey,omitempty"`
	DrawingURL    *string `json:"drawingUrl,omitempty"`
}

// MaterialFilter narrows a material listing. Nil bounds are open.
type MaterialFilter struct {
	CategoryID *uint `json:"categoryId,omitempty"`
	MinCounts  *int  `json:"minCounts,omitempty"`
	MaxCounts  *int  `json:"maxCounts,omitempty"`
}

// MaterialList is one page of materials.
type MaterialList struct {
	Materials []models.Material `json:"materials"`
	Total     int64             `json:"total"`
}

// CategoryList is one page of material categories.
type CategoryList struct {
	Categories []models.MaterialCategory `json:"categories"`
	Total      int64                     `json:"total"`
}

// CreateProductInput carries the fields a new product row needs.
type CreateProductInput struct {
	IDProduct    string  `json:"idProduct" validate:"required"`
	ModelName    string  `json:"modelName" validate:"required"`
	PumpModel    *string `json:"pumpModel,omitempty"`
	DrawingNoID  *string `json:"drawingNoId,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	DrawingKey   *string `json:"drawingKey,omitempty"`
	DrawingURL   *string `json:"drawingUrl,omitempty"`
}

// ProductList is one page of products.
type ProductList struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// MaterialLink names one material a product consumes and the per-unit
// multiplier.
type MaterialLink struct {
	MaterialID     string `json:"materialId" validate:"required"`
	MaterialCounts int    `json:"materialCounts" validate:"gt=0"`
}

// LinkResult reports the outcome of a batch link per material. Duplicates are
// pairs that already existed; Missing are material ids with no catalog row.
// Neither aborts the rest of the batch.
type LinkResult struct {
	Linked     []string `json:"linked"`
	Duplicates []string `json:"duplicates"`
	Missing    []string `json:"missing"`
}

// ProductMaterial is one row of a product's bill of materials.
type ProductMaterial struct {
	Material       models.Material `json:"material"`
	MaterialCounts int             `json:"materialCounts"`
}
