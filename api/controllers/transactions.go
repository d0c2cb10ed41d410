package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hysabee/hysabee-backend/api/responses"
	"github.com/hysabee/hysabee-backend/api/validators"
	"github.com/hysabee/hysabee-backend/internal/transactions"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/logger"
)

type transactionCreateRequest struct {
	Type        string          `json:"type" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Currency    *string         `json:"currency,omitempty"`
	Note        *string         `json:"note,omitempty"`
	PaybackDate *time.Time      `json:"payback_date,omitempty"`
	OccurredAt  *time.Time      `json:"occurred_at,omitempty"`
}

// TransactionCreate appends an immutable ledger entry for a customer.
func TransactionCreate(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
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
		customerID, err := pathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transactionCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txType, err := enums.ParseTransactionType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type"))
			return
		}

		input := transactions.RecordTransactionInput{
			StoreID:     storeID,
			CustomerID:  customerID,
			ActorUserID: userID,
			Type:        txType,
			Amount:      payload.Amount,
			Note:        payload.Note,
			PaybackDate: payload.PaybackDate,
			OccurredAt:  payload.OccurredAt,
		}
		if payload.Currency != nil {
			currency, err := enums.ParseCurrency(*payload.Currency)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency"))
				return
			}
			input.Currency = currency
		}

		entry, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// TransactionList returns a customer's ledger, newest first.
func TransactionList(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
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

		list, err := svc.ListForCustomer(r.Context(), storeID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
