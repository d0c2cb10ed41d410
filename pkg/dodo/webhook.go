package dodo

import (
	"net/http"
	"strings"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"

	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

// WebhookVerifier validates Dodo webhook deliveries. Dodo signs payloads with
// the Standard Webhooks HMAC scheme (webhook-id/-timestamp/-signature headers).
type WebhookVerifier struct {
	wh *standardwebhooks.Webhook
}

// NewWebhookVerifier builds a verifier from the endpoint signing secret.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dodo webhook secret is required")
	}
	wh, err := standardwebhooks.NewWebhook(trimmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "init webhook verifier")
	}
	return &WebhookVerifier{wh: wh}, nil
}

// Verify checks the signature headers against the raw payload.
func (v *WebhookVerifier) Verify(payload []byte, headers http.Header) error {
	if v == nil || v.wh == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "webhook verifier not configured")
	}
	if err := v.wh.Verify(payload, headers); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "webhook signature verification failed")
	}
	return nil
}
