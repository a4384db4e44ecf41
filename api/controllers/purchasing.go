package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hzpumpworks/workshop-backend/api/responses"
	"github.com/hzpumpworks/workshop-backend/api/validators"
	purchasesvc "github.com/hzpumpworks/workshop-backend/internal/purchasing"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/logger"
)

type createPurchasingRequest struct {
	MaterialID    string     `json:"id" validate:"required"`
	Number        int        `json:"number" validate:"required,gt=0"`
	Version       int        `json:"version" validate:"gte=0"`
	Price         string     `json:"price" validate:"required"`
	OrderDeadline *time.Time `json:"orderDeadline,omitempty"`
	Authorizer    string     `json:"authorizer" validate:"required"`
}

// CreatePurchasing reserves stock on the material and opens a record.
func CreatePurchasing(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPurchasingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}

		record, err := svc.Create(r.Context(), purchasesvc.CreateInput{
			MaterialID:    payload.MaterialID,
			Quantity:      payload.Number,
			Version:       payload.Version,
			Price:         price,
			OrderDeadline: payload.OrderDeadline,
			Authorizer:    payload.Authorizer,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// GetPurchasing returns one record.
func GetPurchasing(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := purchasingIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// ListPurchasing pages through records.
func ListPurchasing(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
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

type startPurchasingRequest struct {
	Operator       string `json:"operator" validate:"required"`
	CurrentVersion int    `json:"__v" validate:"gte=0"`
}

// StartPurchasing assigns the operator and moves the record in progress.
func StartPurchasing(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := purchasingIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload startPurchasingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Start(r.Context(), id, purchasesvc.StartInput{
			Operator:        payload.Operator,
			ExpectedVersion: payload.CurrentVersion,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

type finishPurchasingRequest struct {
	Operator          string `json:"operator" validate:"required"`
	MaterialID        string `json:"drawingNoId" validate:"required"`
	PurchasedQuantity int    `json:"purchasedQuantity" validate:"required,gt=0"`
	CurrentVersion    int    `json:"__v" validate:"gte=0"`
}

// FinishPurchasing receives the material into stock and completes the record.
func FinishPurchasing(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := purchasingIDFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload finishPurchasingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Finish(r.Context(), id, purchasesvc.FinishInput{
			Operator:        payload.Operator,
			MaterialID:      payload.MaterialID,
			Quantity:        payload.PurchasedQuantity,
			ExpectedVersion: payload.CurrentVersion,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func purchasingIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchasing record id")
	}
	return id, nil
}
