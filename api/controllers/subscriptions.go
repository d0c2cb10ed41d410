package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hysabee/hysabee-backend/api/responses"
	"github.com/hysabee/hysabee-backend/api/validators"
	"github.com/hysabee/hysabee-backend/internal/subscriptions"
	"github.com/hysabee/hysabee-backend/pkg/db/models"
	"github.com/hysabee/hysabee-backend/pkg/enums"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/logger"
)

// userReader resolves the buyer's email and name for checkout sessions.
type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// SubscriptionCurrent returns the caller's latest subscription, 404 when
// they never subscribed.
func SubscriptionCurrent(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Current(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sub)
	}
}

// SubscriptionHistory returns every subscription row the caller has had.
func SubscriptionHistory(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// SubscriptionPlans lists the purchasable plan catalog.
func SubscriptionPlans(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Plans())
	}
}

type checkoutRequest struct {
	Plan          string `json:"plan" validate:"required"`
	BillingPeriod string `json:"billing_period" validate:"required"`
}

// SubscriptionCheckout creates a hosted checkout session for a plan variant.
func SubscriptionCheckout(svc subscriptions.Service, users userReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || users == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		period, err := enums.ParseBillingPeriod(payload.BillingPeriod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid billing period"))
			return
		}

		user, err := users.FindByID(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}

		result, err := svc.Checkout(r.Context(), subscriptions.CheckoutInput{
			UserID:        userID,
			Email:         user.Email,
			Name:          user.Name,
			Plan:          payload.Plan,
			BillingPeriod: period,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// SubscriptionChangePlan switches the active subscription to another variant.
// The provider confirms asynchronously via webhook.
func SubscriptionChangePlan(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		period, err := enums.ParseBillingPeriod(payload.BillingPeriod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid billing period"))
			return
		}

		if err := svc.ChangePlan(r.Context(), subscriptions.ChangePlanInput{
			UserID:        userID,
			Plan:          payload.Plan,
			BillingPeriod: period,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "pending"})
	}
}

// SubscriptionPortal returns a hosted billing portal link.
func SubscriptionPortal(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Portal(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
