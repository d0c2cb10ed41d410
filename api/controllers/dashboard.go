package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hysabee/hysabee-backend/api/responses"
	"github.com/hysabee/hysabee-backend/internal/dashboard"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/logger"
)

// DashboardStats rolls up the store ledger; an optional branch_id query
// narrows the debt and credit totals to one branch.
func DashboardStats(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var branchID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("branch_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid branch_id"))
				return
			}
			branchID = &id
		}

		stats, err := svc.Stats(r.Context(), storeID, branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
