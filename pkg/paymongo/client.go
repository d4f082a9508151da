package paymongo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.paymongo.com/v1"
	errorBodyReadLimit   int64 = 1024
	defaultClientTimeout       = 15 * time.Second
)

var (
	errSecretKeyRequired = errors.New("paymongo secret key is required")
)

// Client wraps the PayMongo checkout session API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
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

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the default HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the PayMongo client given a secret key.
func NewClient(secretKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(secretKey)
	if trimmedKey == "" {
		return nil, errSecretKeyRequired
	}

	client := &Client{
		secretKey:  trimmedKey,
		baseURL:    defaultBaseURL,
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
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// LineItem is one purchasable row on the hosted checkout page. Amount is in
// centavos.
type LineItem struct {
	Name     string `json:"name"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
}

// CreateCheckoutSessionRequest describes the hosted checkout session to open.
type CreateCheckoutSessionRequest struct {
	LineItems          []LineItem
	PaymentMethodTypes []string
	SuccessURL         string
	CancelURL          string
	ReferenceNumber    string
	Description        string
}

// CheckoutSession is the subset of the session resource the platform stores.
type CheckoutSession struct {
	ID          string
	CheckoutURL string
	Status      string
}

type checkoutSessionEnvelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			CheckoutURL string `json:"checkout_url"`
			Status      string `json:"status"`
		} `json:"attributes"`
	} `json:"data"`
}

// CreateCheckoutSession opens a hosted checkout session for the given line items.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paymongo client not configured")
	}
	if len(req.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}
	if strings.TrimSpace(req.SuccessURL) == "" || strings.TrimSpace(req.CancelURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "success and cancel URLs are required")
	}

	body := map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{
				"line_items":           req.LineItems,
				"payment_method_types": req.PaymentMethodTypes,
				"success_url":          req.SuccessURL,
				"cancel_url":           req.CancelURL,
				"reference_number":     req.ReferenceNumber,
				"description":          req.Description,
				"send_email_receipt":   true,
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal checkout session request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("checkout_sessions"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build checkout session request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.authorizationHeader())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute checkout session request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "checkout session request failed")
	}

	var envelope checkoutSessionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session response")
	}

	if envelope.Data.ID == "" || envelope.Data.Attributes.CheckoutURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout session response missing id or url")
	}

	return &CheckoutSession{
		ID:          envelope.Data.ID,
		CheckoutURL: envelope.Data.Attributes.CheckoutURL,
		Status:      envelope.Data.Attributes.Status,
	}, nil
}

// ExpireCheckoutSession invalidates a session so its URL can no longer be paid.
func (c *Client) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "paymongo client not configured")
	}
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session ID is required")
	}

	path := fmt.Sprintf("checkout_sessions/%s/expire", trimmed)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build expire session request")
	}

	httpReq.Header.Set("Authorization", c.authorizationHeader())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute expire session request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "expire session request failed")
	}

	return nil
}

// PayMongo uses basic auth with the secret key as username and no password.
func (c *Client) authorizationHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.secretKey+":"))
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
