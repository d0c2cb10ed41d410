package webhooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hysabee/hysabee-backend/api/responses"
	"github.com/hysabee/hysabee-backend/internal/webhooks"
	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
	"github.com/hysabee/hysabee-backend/pkg/logger"
)

type dodoReconciler interface {
	Apply(ctx context.Context, input webhooks.ApplyInput) error
}

type dodoDeliveryGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type dodoVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

// DodoWebhook handles Dodo Payments subscription lifecycle events. Deliveries
// are signature-verified, deduplicated against Redis, then reconciled inside a
// transaction keyed on the provider event id.
func DodoWebhook(rec dodoReconciler, verifier dodoVerifier, guard dodoDeliveryGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if rec == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook reconciler unavailable"))
			return
		}
		if verifier == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook verifier unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		if err := verifier.Verify(payload, r.Header); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		eventID := r.Header.Get("webhook-id")
		if eventID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "webhook-id header missing"))
			return
		}

		event, err := webhooks.ParseEvent(payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse webhook event"))
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, nil)
			return
		}

		err = rec.Apply(ctx, webhooks.ApplyInput{
			ProviderEventID: eventID,
			Event:           event,
			RawPayload:      payload,
		})
		if err != nil {
			if errors.Is(err, webhooks.ErrDuplicateEvent) {
				responses.WriteSuccess(w, nil)
				return
			}
			_ = guard.Delete(ctx, eventID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("dodo event %s processed", eventID))
		}
		responses.WriteSuccess(w, nil)
	}
}
