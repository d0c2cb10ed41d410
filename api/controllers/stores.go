package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/api/responses"
	"github.com/hysabee/hysabee-backend/api/validators"
	"github.com/hysabee/hysabee-backend/internal/stores"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/logger"
)

// StoreProfile returns the active store's profile using the store-scoped JWT.
func StoreProfile(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetByID(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

type storeUpdateRequest struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Currency  *string          `json:"currency,omitempty"`
	DebtLimit *decimal.Decimal `json:"debt_limit,omitempty"`
	Address   *string          `json:"address,omitempty"`
	Phone     *string          `json:"phone,omitempty"`
}

func (r storeUpdateRequest) toInput() (stores.UpdateStoreInput, error) {
	input := stores.UpdateStoreInput{
		Name:      r.Name,
		DebtLimit: r.DebtLimit,
		Address:   r.Address,
		Phone:     r.Phone,
	}
	if r.Currency != nil {
		currency, err := enums.ParseCurrency(*r.Currency)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
		}
		input.Currency = &currency
	}
	return input, nil
}

// StoreUpdate adjusts the allowed mutable fields for the active store.
func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
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

		var payload storeUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Update(r.Context(), userID, storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}
