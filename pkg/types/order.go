package types

// Selection is one product/quantity line on an order.
type Selection struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// RequiredMaterial is one line of the frozen material snapshot stored on an
// order at creation time. The snapshot never changes after that; it is the
// record used to restore inventory if the order is unwound.
type RequiredMaterial struct {
	MaterialID       string `json:"materialId"`
	Name             string `json:"name"`
	RequiredQuantity int    `json:"requiredQuantity"`
}

// Selections and RequiredMaterials are stored as jsonb document columns.
type Selections []Selection

type RequiredMaterials []RequiredMaterial
