package inventory

// Line is one material movement in a batch debit or credit.
type Line struct {
	MaterialID string `json:"materialId"`
	Quantity   int    `json:"quantity"`
}

// Shortfall reports one material that could not cover a requested debit.
type Shortfall struct {
	MaterialID string `json:"materialId"`
	Required   int    `json:"required"`
	Available  int    `json:"available"`
}
