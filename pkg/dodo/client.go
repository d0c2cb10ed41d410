package dodo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/hysabee/hysabee-backend/pkg/errors"
)

const (
	testBaseURL               = "https://test.dodopayments.com"
	liveBaseURL               = "https://live.dodopayments.com"
	responseBodyLimit   int64 = 2048
	defaultClientTimeout      = 15 * time.Second
)

var errAPIKeyRequired = errors.New("dodo api key is required")

// Client wraps the Dodo Payments REST API surface used for subscription billing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the environment-derived base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the Dodo Payments client for the given environment ("test" or "live").
func NewClient(apiKey, environment string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	baseURL := testBaseURL
	if strings.EqualFold(strings.TrimSpace(environment), "live") {
		baseURL = liveBaseURL
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultClientTimeout}
	}

	return client, nil
}

// CheckoutRequest describes a hosted subscription checkout session.
type CheckoutRequest struct {
	ProductID     string            `json:"product_id"`
	Quantity      int               `json:"quantity"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	CustomerName  string            `json:"customer_name,omitempty"`
	ReturnURL     string            `json:"return_url,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// CheckoutSession is the hosted payment page returned by Dodo.
type CheckoutSession struct {
	SubscriptionID string `json:"subscription_id"`
	PaymentLink    string `json:"payment_link"`
	CustomerID     string `json:"customer_id"`
}

// CreateCheckoutSession opens a hosted checkout for a subscription product.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dodo client not configured")
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product ID is required")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	body := map[string]any{
		"product_id":   req.ProductID,
		"quantity":     req.Quantity,
		"payment_link": true,
	}
	customer := map[string]string{}
	if req.CustomerEmail != "" {
		customer["email"] = req.CustomerEmail
	}
	if req.CustomerName != "" {
		customer["name"] = req.CustomerName
	}
	if len(customer) > 0 {
		body["customer"] = customer
	}
	if req.ReturnURL != "" {
		body["return_url"] = req.ReturnURL
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "subscriptions", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// PortalSession is the hosted customer portal returned by Dodo.
type PortalSession struct {
	Link string `json:"link"`
}

// CreatePortalSession opens the self-serve billing portal for a Dodo customer.
func (c *Client) CreatePortalSession(ctx context.Context, customerID string) (*PortalSession, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "dodo client not configured")
	}
	trimmed := strings.TrimSpace(customerID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer ID is required")
	}

	path := fmt.Sprintf("customers/%s/customer-portal/session", url.PathEscape(trimmed))
	var session PortalSession
	if err := c.do(ctx, http.MethodPost, path, map[string]any{}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ChangePlanRequest switches an active subscription to another product.
type ChangePlanRequest struct {
	SubscriptionID string
	ProductID      string
	Quantity       int
}

// ChangePlan applies a plan change with prorated billing.
func (c *Client) ChangePlan(ctx context.Context, req ChangePlanRequest) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "dodo client not configured")
	}
	if strings.TrimSpace(req.SubscriptionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription ID is required")
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product ID is required")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	body := map[string]any{
		"product_id":             req.ProductID,
		"quantity":               req.Quantity,
		"proration_billing_mode": "prorated_immediately",
	}
	path := fmt.Sprintf("subscriptions/%s/change-plan", url.PathEscape(strings.TrimSpace(req.SubscriptionID)))
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal dodo request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build dodo request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute dodo request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
		return pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"dodo request failed",
		)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode dodo response")
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
