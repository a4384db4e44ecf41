package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/hzpumpworks/workshop-backend/api/responses"
	"github.com/hzpumpworks/workshop-backend/api/validators"
	catalogsvc "github.com/hzpumpworks/workshop-backend/internal/catalog"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/logger"
)

// CreateMaterial adds a material row to the catalog.
func CreateMaterial(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload catalogsvc.CreateMaterialInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		material, err := svc.CreateMaterial(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, material)
	}
}

// SearchMaterials matches materials on a drawing-number substring.
func SearchMaterials(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := strings.TrimSpace(r.URL.Query().Get("q"))
		list, err := svc.SearchMaterials(r.Context(), query, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListMaterials pages through materials with optional category and
// counts-range filters.
func ListMaterials(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter catalogsvc.MaterialFilter
		query := r.URL.Query()
		if raw := strings.TrimSpace(query.Get("categoryId")); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
		if raw := strings.TrimSpace(query.Get("minCounts")); raw != "" {
			min, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid min counts"))
				return
			}
			filter.MinCounts = &min
		}
		if raw := strings.TrimSpace(query.Get("maxCounts")); raw != "" {
			max, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid max counts"))
				return
			}
			filter.MaxCounts = &max
		}

		list, err := svc.ListMaterials(r.Context(), params, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type updateCountsRequest struct {
	DrawingNoID    string `json:"drawingNoId" validate:"required"`
	Counts         int    `json:"counts" validate:"gte=0"`
	CurrentVersion int    `json:"version" validate:"gte=0"`
}

// UpdateMaterialCounts sets on-hand stock to an absolute value.
func UpdateMaterialCounts(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateCountsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		material, err := svc.UpdateCounts(r.Context(), payload.DrawingNoID, payload.Counts, payload.CurrentVersion)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, material)
	}
}

type createCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateMaterialCategory adds a category.
func CreateMaterialCategory(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// ListMaterialCategories pages through categories.
func ListMaterialCategories(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListCategories(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
