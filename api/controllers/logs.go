package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hzpumpworks/workshop-backend/api/middleware"
	"github.com/hzpumpworks/workshop-backend/api/responses"
	"github.com/hzpumpworks/workshop-backend/api/validators"
	"github.com/hzpumpworks/workshop-backend/internal/auditlog"
	"github.com/hzpumpworks/workshop-backend/pkg/enums"
	pkgerrors "github.com/hzpumpworks/workshop-backend/pkg/errors"
	"github.com/hzpumpworks/workshop-backend/pkg/logger"
)

type createLogRequest struct {
	Action   string  `json:"action" validate:"required"`
	Target   string  `json:"target" validate:"required"`
	TargetID string  `json:"targetId" validate:"required"`
	Details  *string `json:"details,omitempty"`
	OldData  any     `json:"oldData,omitempty"`
	NewData  any     `json:"newData,omitempty"`
}

// CreateLog records a client-originated audit entry attributed to the caller.
func CreateLog(svc auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createLogRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		action, err := enums.ParseLogAction(payload.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid log action"))
			return
		}
		target, err := enums.ParseLogTarget(payload.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid log target"))
			return
		}

		entry := auditlog.Entry{
			Action:   action,
			Target:   target,
			TargetID: payload.TargetID,
			Details:  payload.Details,
			OldData:  payload.OldData,
			NewData:  payload.NewData,
		}
		if actorID, err := uuid.Parse(middleware.UserIDFromContext(r.Context())); err == nil {
			entry.ActorID = &actorID
		}

		if err := svc.Record(r.Context(), entry); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]bool{"success": true})
	}
}

// ListLogs pages through audit entries, optionally filtered by target,
// target id, and action.
func ListLogs(svc auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters auditlog.Filters
		if raw := r.URL.Query().Get("target"); raw != "" {
			target, err := enums.ParseLogTarget(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid log target"))
				return
			}
			filters.Target = &target
		}
		if raw := r.URL.Query().Get("action"); raw != "" {
			action, err := enums.ParseLogAction(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid log action"))
				return
			}
			filters.Action = &action
		}
		filters.TargetID = r.URL.Query().Get("targetId")

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
