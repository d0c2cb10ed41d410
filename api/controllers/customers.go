package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/api/middleware"
	"github.com/hysabee/hysabee-backend/api/responses"
	"github.com/hysabee/hysabee-backend/api/validators"
	"github.com/hysabee/hysabee-backend/internal/customers"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/logger"
	"github.com/hysabee/hysabee-backend/pkg/pagination"
)

type customerCreateRequest struct {
	BranchID    *uuid.UUID       `json:"branch_id,omitempty"`
	Name        string           `json:"name" validate:"required,min=1"`
	Phone       *string          `json:"phone,omitempty"`
	Email       *string          `json:"email,omitempty" validate:"omitempty,email"`
	Address     *string          `json:"address,omitempty"`
	IDNumber    *string          `json:"id_number,omitempty"`
	Note        *string          `json:"note,omitempty"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
}

// CustomerCreate registers a customer under the caller's active branch, or
// an explicit branch of the same store.
func CustomerCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload customerCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		branchID, err := resolveBranchID(r, payload.BranchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Create(r.Context(), customers.CreateCustomerInput{
			StoreID:     storeID,
			BranchID:    branchID,
			ActorUserID: userID,
			Name:        payload.Name,
			Phone:       payload.Phone,
			Email:       payload.Email,
			Address:     payload.Address,
			IDNumber:    payload.IDNumber,
			Note:        payload.Note,
			CreditLimit: payload.CreditLimit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// CustomerGet returns one customer with its derived balance.
func CustomerGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Get(r.Context(), storeID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

// CustomerList returns a page of customers with balances.
func CustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.NormalizeLimit(0), 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := customers.ListParams{
			StoreID: storeID,
			Search:  strings.TrimSpace(r.URL.Query().Get("search")),
			Status:  strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("branch_id")); raw != "" {
			branchID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid branch_id"))
				return
			}
			params.BranchID = &branchID
		} else if active := middleware.BranchIDFromContext(r.Context()); active != "" {
			branchID, err := uuid.Parse(active)
			if err == nil {
				params.BranchID = &branchID
			}
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type customerUpdateRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Phone       *string          `json:"phone,omitempty"`
	Email       *string          `json:"email,omitempty" validate:"omitempty,email"`
	Address     *string          `json:"address,omitempty"`
	IDNumber    *string          `json:"id_number,omitempty"`
	Note        *string          `json:"note,omitempty"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

// CustomerUpdate mutates profile fields; the ledger itself stays immutable.
func CustomerUpdate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload customerUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := customers.UpdateCustomerInput{
			Name:        payload.Name,
			Phone:       payload.Phone,
			Email:       payload.Email,
			Address:     payload.Address,
			IDNumber:    payload.IDNumber,
			Note:        payload.Note,
			CreditLimit: payload.CreditLimit,
		}
		if payload.Status != nil {
			status, err := enums.ParseCustomerStatus(*payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid customer status"))
				return
			}
			input.Status = &status
		}

		customer, err := svc.Update(r.Context(), storeID, customerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

// resolveBranchID prefers an explicit branch from the payload, otherwise the
// active branch claim in the token.
func resolveBranchID(r *http.Request, explicit *uuid.UUID) (uuid.UUID, error) {
	if explicit != nil {
		return *explicit, nil
	}
	active := middleware.BranchIDFromContext(r.Context())
	if active == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "branch_id is required")
	}
	branchID, err := uuid.Parse(active)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid branch claim")
	}
	return branchID, nil
}
