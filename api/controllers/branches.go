package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/api/middleware"
	"github.com/hysabee/hysabee-backend/api/responses"
	"github.com/hysabee/hysabee-backend/api/validators"
	"github.com/hysabee/hysabee-backend/internal/auth"
	"github.com/hysabee/hysabee-backend/internal/branches"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/logger"
)

// BranchList returns every branch of the active store.
func BranchList(svc branches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type branchCreateRequest struct {
	Name      string           `json:"name" validate:"required,min=1"`
	Location  *string          `json:"location,omitempty"`
	Phone     *string          `json:"phone,omitempty"`
	DebtLimit *decimal.Decimal `json:"debt_limit,omitempty"`
}

// BranchCreate adds a branch to the active store.
func BranchCreate(svc branches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload branchCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.Create(r.Context(), storeID, branches.CreateBranchInput{
			Name:      payload.Name,
			Location:  payload.Location,
			Phone:     payload.Phone,
			DebtLimit: payload.DebtLimit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, branch)
	}
}

// BranchGet returns a single branch of the active store.
func BranchGet(svc branches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branchID, err := pathUUID(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.Get(r.Context(), storeID, branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, branch)
	}
}

type branchUpdateRequest struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Location  *string          `json:"location,omitempty"`
	Phone     *string          `json:"phone,omitempty"`
	DebtLimit *decimal.Decimal `json:"debt_limit,omitempty"`
}

// BranchUpdate mutates the allowed branch fields.
func BranchUpdate(svc branches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branchID, err := pathUUID(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload branchUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.Update(r.Context(), storeID, branchID, branches.UpdateBranchInput{
			Name:      payload.Name,
			Location:  payload.Location,
			Phone:     payload.Phone,
			DebtLimit: payload.DebtLimit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, branch)
	}
}

// BranchSetMain promotes the branch to the store's main branch. The previous
// main branch is demoted in the same database transaction.
func BranchSetMain(svc branches.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branchID, err := pathUUID(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branch, err := svc.SetMain(r.Context(), storeID, branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, branch)
	}
}

// BranchActivate switches the caller's active branch and reissues tokens so
// the new branch claim travels in the JWT.
func BranchActivate(svc auth.SwitchBranchService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "branch service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		branchID, err := pathUUID(r, "branchId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		result, err := svc.Switch(r.Context(), auth.SwitchBranchInput{
			UserID:        userID,
			StoreID:       storeID,
			BranchID:      branchID,
			AccessTokenID: accessID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"access_token":  result.AccessToken,
			"refresh_token": result.RefreshToken,
			"branch":        result.Branch,
		})
	}
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return id, nil
}
