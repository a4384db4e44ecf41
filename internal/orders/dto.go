package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/hzpumpworks/workshop-backend/pkg/db/models"
	"github.com/hzpumpworks/workshop-backend/pkg/types"
)

// CreateOrderInput carries the order fields plus the product selections.
type CreateOrderInput struct {
	Customer    string           `json:"customer"`
	Address     *string          `json:"address"`
	PhoneNumber *string          `json:"phoneNumber"`
	Comments    *string          `json:"comments"`
	Price       *float64         `json:"price"`
	Deadline    int              `json:"deadline"`
	Selections  types.Selections `json:"selections"`
}

// UpdateOrderInput is a partial patch; nil fields are left untouched.
type UpdateOrderInput struct {
	Customer    *string  `json:"customer"`
	Address     *string  `json:"address"`
	PhoneNumber *string  `json:"phoneNumber"`
	Comments    *string  `json:"comments"`
	Price       *float64 `json:"price"`
	Deadline    *int     `json:"deadline"`
}

// OrderView is the read shape returned to controllers. RemainingDays is
// derived from created_at plus the deadline window.
type OrderView struct {
	ID                uuid.UUID               `json:"id"`
	Selections        types.Selections        `json:"selections"`
	Customer          string                  `json:"customer"`
	Address           *string                 `json:"address,omitempty"`
	PhoneNumber       *string                 `json:"phoneNumber,omitempty"`
	Comments          *string                 `json:"comments,omitempty"`
	Price             *float64                `json:"price,omitempty"`
	Deadline          int                     `json:"deadline"`
	RemainingDays     int                     `json:"remainingDays"`
	Status            string                  `json:"status"`
	RequiredMaterials types.RequiredMaterials `json:"requiredMaterials"`
	DocVersion        int                     `json:"__v"`
	CreatedAt         time.Time               `json:"createdAt"`
	UpdatedAt         time.Time               `json:"updatedAt"`
}

// OrderList is one page of orders.
type OrderList struct {
	Orders []OrderView `json:"orders"`
	Total  int64       `json:"total"`
}

func viewFrom(order *models.Order, now time.Time) OrderView {
	return OrderView{
		ID:                order.ID,
		Selections:        order.Selections,
		Customer:          order.Customer,
		Address:           order.Address,
		PhoneNumber:       order.PhoneNumber,
		Comments:          order.Comments,
		Price:             order.Price,
		Deadline:          order.Deadline,
		RemainingDays:     remainingDays(order.CreatedAt, order.Deadline, now),
		Status:            string(order.Status),
		RequiredMaterials: order.RequiredMaterials,
		DocVersion:        order.DocVersion,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

func remainingDays(createdAt time.Time, deadline int, now time.Time) int {
	due := createdAt.AddDate(0, 0, deadline)
	days := int(due.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
