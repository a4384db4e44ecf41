package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hzpumpworks/workshop-backend/api/responses"
	"github.com/hzpumpworks/workshop-backend/api/validators"
	"github.com/hzpumpworks/workshop-backend/internal/inventory"
	ordersvc "github.com/hzpumpworks/workshop-backend/internal/orders"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/logger"
	"github.com/hzpumpworks/workshop-backend/pkg/types"
)

type selectedProduct struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Order            ordersvc.CreateOrderInput `json:"order" validate:"required"`
	SelectedProducts []selectedProduct         `json:"selectedProducts" validate:"required,min=1,dive"`
}

func toSelections(products []selectedProduct) types.Selections {
	selections := make(types.Selections, 0, len(products))
	for _, p := range products {
		selections = append(selections, types.Selection{ProductID: p.ID, Quantity: p.Quantity})
	}
	return selections
}

// CreateOrder creates an order with its frozen required-materials snapshot.
func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payload.Order
		input.Selections = toSelections(payload.SelectedProducts)

		view, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"newOrder": view})
	}
}

// GetOrder returns one order including its remaining days.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListOrders pages through orders.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type changeStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	CurrentVersion int    `json:"currentVersion" validate:"gte=0"`
}

// ChangeOrderStatus applies a version-gated status transition.
func ChangeOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload changeStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ChangeStatus(r.Context(), id, payload.Status, payload.CurrentVersion)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type updateOrderRequest struct {
	Order          ordersvc.UpdateOrderInput `json:"order" validate:"required"`
	CurrentVersion int                       `json:"currentVersion" validate:"gte=0"`
}

// UpdateOrder applies a version-gated partial patch.
func UpdateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Update(r.Context(), id, payload.Order, payload.CurrentVersion)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type resolveRequest struct {
	Products []selectedProduct `json:"products" validate:"required,min=1,dive"`
}

// ResolveRequiredMaterials expands a product selection into the aggregated
// materials list with fresh availability.
func ResolveRequiredMaterials(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload resolveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reqs, err := svc.ResolveRequirements(r.Context(), toSelections(payload.Products))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"requiredMaterials": reqs})
	}
}

type materialLine struct {
	MaterialID       string `json:"materialId" validate:"required"`
	RequiredQuantity int    `json:"requiredQuantity" validate:"required,gt=0"`
}

type useMaterialsRequest struct {
	Materials []materialLine `json:"materials" validate:"required,min=1,dive"`
}

// UseRequiredMaterials debits stock for the whole batch or not at all.
func UseRequiredMaterials(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload useMaterialsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]inventory.Line, 0, len(payload.Materials))
		for _, m := range payload.Materials {
			lines = append(lines, inventory.Line{MaterialID: m.MaterialID, Quantity: m.RequiredQuantity})
		}

		if err := svc.UseRequiredMaterials(r.Context(), lines); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

// RestoreOrderInventory credits the order's frozen snapshot back to stock.
func RestoreOrderInventory(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RestoreInventory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

func orderIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}
