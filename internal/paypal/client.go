package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const StatusCompleted = "COMPLETED"

type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	BrandName    string
	Currency     string
	Timeout      time.Duration
}

type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	brandName    string
	currency     string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

type CreateOrderInput struct {
	Amount      decimal.Decimal
	ReferenceID string
	Description string
	ReturnURL   string
	CancelURL   string
}

// CreatedOrder is the provider-side intent awaiting buyer approval.
type CreatedOrder struct {
	ID          string
	Status      string
	ApprovalURL string
	Raw         []byte
}

// CaptureResult is the normalized capture response. Raw holds the full body.
type CaptureResult struct {
	OrderID    string
	Status     string
	CaptureID  string
	PayerEmail string
	PayerID    string
	Raw        []byte
}

type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      amount `json:"amount"`
}

type applicationContext struct {
	BrandName   string `json:"brand_name,omitempty"`
	LandingPage string `json:"landing_page,omitempty"`
	UserAction  string `json:"user_action,omitempty"`
	ReturnURL   string `json:"return_url"`
	CancelURL   string `json:"cancel_url"`
}

type createOrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []purchaseUnit     `json:"purchase_units"`
	ApplicationContext applicationContext `json:"application_context"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Links         []Link `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
	Payer struct {
		EmailAddress string `json:"email_address"`
		PayerID      string `json:"payer_id"`
	} `json:"payer"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// APIError carries a non-2xx PayPal response.
type APIError struct {
	StatusCode int
	Name       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("paypal: status %d, %s: %s", e.StatusCode, e.Name, e.Message)
	}
	return fmt.Sprintf("paypal: status %d, body: %s", e.StatusCode, e.Body)
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	currency := opts.Currency
	if currency == "" {
		currency = "USD"
	}
	return &Client{
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		brandName:    opts.BrandName,
		currency:     currency,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Currency() string {
	return c.currency
}

// CreateOrder creates a CAPTURE-intent order and returns the buyer approval link.
func (c *Client) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreatedOrder, error) {
	reqBody := createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: in.ReferenceID,
			Description: in.Description,
			Amount: amount{
				CurrencyCode: c.currency,
				Value:        in.Amount.StringFixed(2),
			},
		}},
		ApplicationContext: applicationContext{
			BrandName:   c.brandName,
			LandingPage: "NO_PREFERENCE",
			UserAction:  "PAY_NOW",
			ReturnURL:   in.ReturnURL,
			CancelURL:   in.CancelURL,
		},
	}

	var resp orderResponse
	raw, err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", reqBody, "", &resp)
	if err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("paypal order id is empty in response, body: %s", string(raw))
	}
	return &CreatedOrder{
		ID:          resp.ID,
		Status:      resp.Status,
		ApprovalURL: ApprovalURL(resp.Links),
		Raw:         raw,
	}, nil
}

// CaptureOrder captures an approved order. The PayPal-Request-Id header makes
// repeated captures of the same order idempotent on the provider side.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	var resp orderResponse
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	raw, err := c.do(ctx, http.MethodPost, path, struct{}{}, "capture-"+orderID, &resp)
	if err != nil {
		return nil, err
	}
	return toCaptureResult(orderID, resp, raw), nil
}

// GetOrder fetches the current state of an order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*CaptureResult, error) {
	var resp orderResponse
	raw, err := c.do(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(orderID), nil, "", &resp)
	if err != nil {
		return nil, err
	}
	return toCaptureResult(orderID, resp, raw), nil
}

// ApprovalURL returns the href of the "approve" link, or "".
func ApprovalURL(links []Link) string {
	for _, l := range links {
		if l.Rel == "approve" {
			return l.Href
		}
	}
	return ""
}

func toCaptureResult(orderID string, resp orderResponse, raw []byte) *CaptureResult {
	out := &CaptureResult{
		OrderID:    resp.ID,
		Status:     resp.Status,
		PayerEmail: resp.Payer.EmailAddress,
		PayerID:    resp.Payer.PayerID,
		Raw:        raw,
	}
	if out.OrderID == "" {
		out.OrderID = orderID
	}
	if len(resp.PurchaseUnits) > 0 && len(resp.PurchaseUnits[0].Payments.Captures) > 0 {
		out.CaptureID = resp.PurchaseUnits[0].Payments.Captures[0].ID
	}
	return out
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, requestID string, out interface{}) ([]byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(raw))
		}
	}
	return raw, nil
}

// token returns a cached OAuth access token, refreshing it a minute before expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal auth failed: %w", newAPIError(resp.StatusCode, raw))
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil || tr.AccessToken == "" {
		return "", fmt.Errorf("paypal auth failed: invalid token response, body: %s", string(raw))
	}

	ttl := time.Duration(tr.ExpiresIn)*time.Second - time.Minute
	if ttl < 0 {
		ttl = 0
	}
	c.accessToken = tr.AccessToken
	c.expiresAt = time.Now().Add(ttl)
	return c.accessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()
}

func newAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(raw)}
	var body struct {
		Name             string `json:"name"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Name, apiErr.Message = body.Name, body.Message
		if apiErr.Name == "" {
			apiErr.Name, apiErr.Message = body.Error, body.ErrorDescription
		}
	}
	return apiErr
}
