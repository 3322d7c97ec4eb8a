package mercadopago

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

	"github.com/shopspring/decimal"

	"github.com/diskleads/leadmarket-backend/pkg/config"
	"github.com/diskleads/leadmarket-backend/pkg/logger"
)

const (
	preferencesPath = "/checkout/preferences"
	paymentsPath    = "/v1/payments"

	// PaymentStatusApproved is the provider-side terminal state we treat as paid.
	PaymentStatusApproved = "approved"
)

// Client talks to the Mercado Pago REST API with a bearer access token.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	currency    string
	successURL  string
	logg        *logger.Logger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewClient(cfg config.PaymentConfig, logg *logger.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, errors.New("payment access token is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("payment base url is required")
	}

	return &Client{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		currency:    cfg.Currency,
		successURL:  cfg.SuccessURL,
		logg:        logg,
	}, nil
}

// PreferenceRequest describes a single-item checkout link.
type PreferenceRequest struct {
	Title             string
	Quantity          int
	UnitPrice         decimal.Decimal
	ExternalReference string
	PayerEmail        string
}

// Preference is the created checkout link.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// Payment is the subset of the provider payment resource the reconciler needs.
type Payment struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

// Approved reports whether the payment reached the provider's paid state.
func (p Payment) Approved() bool {
	return p.Status == PaymentStatusApproved
}

type preferenceItem struct {
	Title string `json:"title"`
	// the provider expects a JSON number for unit_price
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
	CurrencyID string  `json:"currency_id,omitempty"`
}

type preferencePayload struct {
	Items             []preferenceItem  `json:"items"`
	ExternalReference string            `json:"external_reference"`
	Payer             *preferencePayer  `json:"payer,omitempty"`
	BackURLs          map[string]string `json:"back_urls,omitempty"`
	AutoReturn        string            `json:"auto_return,omitempty"`
}

type preferencePayer struct {
	Email string `json:"email"`
}

// CreatePreference creates a checkout link for a single priced item.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	if req.Title == "" {
		return nil, errors.New("preference title is required")
	}
	if req.Quantity <= 0 {
		return nil, errors.New("preference quantity must be positive")
	}
	if req.ExternalReference == "" {
		return nil, errors.New("external reference is required")
	}

	payload := preferencePayload{
		Items: []preferenceItem{{
			Title:      req.Title,
			Quantity:   req.Quantity,
			UnitPrice:  req.UnitPrice.InexactFloat64(),
			CurrencyID: c.currency,
		}},
		ExternalReference: req.ExternalReference,
	}
	if req.PayerEmail != "" {
		payload.Payer = &preferencePayer{Email: req.PayerEmail}
	}
	if c.successURL != "" {
		payload.BackURLs = map[string]string{"success": c.successURL}
		payload.AutoReturn = "approved"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding preference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+preferencesPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("creating preference: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, apiError("create preference", resp)
	}

	var pref Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, fmt.Errorf("decoding preference: %w", err)
	}
	if pref.InitPoint == "" {
		return nil, errors.New("preference response missing init_point")
	}
	return &pref, nil
}

// GetPayment fetches a payment by its provider id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if paymentID == "" {
		return nil, errors.New("payment id is required")
	}

	u := c.baseURL + paymentsPath + "/" + url.PathEscape(paymentID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching payment: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("get payment", resp)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("decoding payment: %w", err)
	}
	return &payment, nil
}

// Ping verifies the token is usable by listing zero-result payments.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("mercadopago client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/search?limit=1", nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return apiError("ping", resp)
	}
	return nil
}

// SetHTTPClient overrides the transport, primarily for tests.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

func apiError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Errorf("mercadopago %s failed: %s: %s", op, resp.Status, strings.TrimSpace(string(b)))
	}
	return fmt.Errorf("mercadopago %s failed: %s", op, resp.Status)
}
