// Package client is a Go SDK for the payment dashboard API. It maintains
// the merchant session (token + API key), persists it through a
// CredentialStore, attaches both credentials to every call, and clears the
// session on any 401 response.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionState is the client's authentication state.
type SessionState string

const (
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticating  SessionState = "authenticating"
	StateAuthenticated   SessionState = "authenticated"
)

var pkgLogger = zap.NewNop()

// SetLogger installs the logger used for normalization warnings.
func SetLogger(l *zap.Logger) {
	if l != nil {
		pkgLogger = l
	}
}

func log() *zap.Logger { return pkgLogger }

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      CredentialStore
	logger     *zap.Logger

	// onUnauthorized fires after a 401 clears the session. It stands in
	// for the login redirect.
	onUnauthorized func()

	mu    sync.Mutex
	state SessionState
	creds Credentials
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithCredentialStore(store CredentialStore) Option {
	return func(c *Client) { c.store = store }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithOnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      NewMemoryStore(),
		logger:     zap.NewNop(),
		state:      StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the current session state.
func (c *Client) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// User returns the authenticated merchant, or nil.
func (c *Client) User() *Merchant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds.User
}

// Restore loads persisted credentials. A partial record (any of token, API
// key or user missing, or unparseable) clears the store and leaves the
// session unauthenticated; it never restores a partially populated session.
func (c *Client) Restore() error {
	creds, err := c.store.Load()
	if err != nil {
		return err
	}
	if !creds.complete() {
		c.clearSession()
		return nil
	}

	c.mu.Lock()
	c.creds = creds
	c.state = StateAuthenticated
	c.mu.Unlock()
	return nil
}

type loginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    *Merchant `json:"user"`
	Token   string    `json:"token"`
	APIKey  string    `json:"apiKey"`
}

// Login authenticates and persists the session. It succeeds only when the
// backend returns success together with all of user, token and API key.
func (c *Client) Login(ctx context.Context, email, password string) error {
	c.mu.Lock()
	c.state = StateAuthenticating
	c.mu.Unlock()

	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		c.clearSession()
		return err
	}

	if !resp.Success || resp.Token == "" || resp.APIKey == "" || resp.User == nil {
		c.clearSession()
		if resp.Message != "" {
			return &APIError{StatusCode: http.StatusOK, Message: resp.Message}
		}
		return &APIError{StatusCode: http.StatusOK, Message: "login failed"}
	}

	creds := Credentials{Token: resp.Token, APIKey: resp.APIKey, User: resp.User}
	if err := c.store.Save(creds); err != nil {
		return err
	}

	c.mu.Lock()
	c.creds = creds
	c.state = StateAuthenticated
	c.mu.Unlock()
	return nil
}

// Logout revokes the token server-side on a best-effort basis, then clears
// the session either way.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
	c.clearSession()
	return err
}

func (c *Client) Profile(ctx context.Context) (*Merchant, error) {
	var resp struct {
		User *Merchant `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/auth/profile", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ListPaymentsOptions is the payments query: filters plus a page selector.
// Pages are 1-based everywhere.
type ListPaymentsOptions struct {
	Search    string
	Statuses  []string
	Methods   []string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	MinAmount *float64
	MaxAmount *float64
	Page      int
	PageSize  int
}

func (o ListPaymentsOptions) query() url.Values {
	q := url.Values{}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	for _, s := range o.Statuses {
		q.Add("status", s)
	}
	for _, m := range o.Methods {
		q.Add("method", m)
	}
	if o.StartDate != "" {
		q.Set("startDate", o.StartDate)
	}
	if o.EndDate != "" {
		q.Set("endDate", o.EndDate)
	}
	if o.MinAmount != nil {
		q.Set("minAmount", strconv.FormatFloat(*o.MinAmount, 'f', -1, 64))
	}
	if o.MaxAmount != nil {
		q.Set("maxAmount", strconv.FormatFloat(*o.MaxAmount, 'f', -1, 64))
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	return q
}

func (c *Client) ListPayments(ctx context.Context, opts ListPaymentsOptions) ([]Payment, Pagination, error) {
	var resp struct {
		Payments   []Payment  `json:"payments"`
		Pagination Pagination `json:"pagination"`
	}
	path := "/v1/payments"
	if q := opts.query().Encode(); q != "" {
		path += "?" + q
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, Pagination{}, err
	}
	return resp.Payments, resp.Pagination, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var resp struct {
		Payment *Payment `json:"payment"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Payment, nil
}

func (c *Client) GetPaymentByTransaction(ctx context.Context, transactionID string) (*Payment, error) {
	var resp struct {
		Payment *Payment `json:"payment"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/payments/transaction/"+url.PathEscape(transactionID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Payment, nil
}

func (c *Client) ListPaymentsByCustomer(ctx context.Context, customerID string) ([]Payment, error) {
	var resp struct {
		Payments []Payment `json:"payments"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/payments/customer/"+url.PathEscape(customerID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Payments, nil
}

func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	var resp struct {
		Payment *Payment `json:"payment"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/payments", req, &resp); err != nil {
		return nil, err
	}
	return resp.Payment, nil
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, id, status string) (*Payment, error) {
	var resp struct {
		Payment *Payment `json:"payment"`
	}
	path := fmt.Sprintf("/v1/payments/%s/status?status=%s", url.PathEscape(id), url.QueryEscape(status))
	if err := c.do(ctx, http.MethodPut, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Payment, nil
}

// RefundPayment validates the amount against the payment before any request
// is made: an amount above the payment's amount is rejected locally.
func (c *Client) RefundPayment(ctx context.Context, payment *Payment, amount float64, reason string) (*Refund, error) {
	if amount > payment.Amount {
		return nil, ErrRefundExceedsPayment
	}

	var resp struct {
		Refund *Refund `json:"refund"`
	}
	path := fmt.Sprintf("/v1/payments/%s/refund", url.PathEscape(payment.PaymentID))
	err := c.do(ctx, http.MethodPost, path, map[string]interface{}{
		"amount": amount,
		"reason": reason,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Refund, nil
}

func (c *Client) ListRefunds(ctx context.Context) ([]Refund, error) {
	var resp struct {
		Refunds []Refund `json:"refunds"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/refunds", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Refunds, nil
}

func (c *Client) DeletePayment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/payments/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListDisputes(ctx context.Context, status string, page, pageSize int) ([]Dispute, Pagination, error) {
	var resp struct {
		Disputes   []Dispute  `json:"disputes"`
		Pagination Pagination `json:"pagination"`
	}
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	path := "/v1/disputes"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, Pagination{}, err
	}
	return resp.Disputes, resp.Pagination, nil
}

func (c *Client) GetDispute(ctx context.Context, id string) (*Dispute, error) {
	var resp struct {
		Dispute *Dispute `json:"dispute"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/disputes/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Dispute, nil
}

func (c *Client) DisputeStats(ctx context.Context) (*DisputeStats, error) {
	var resp struct {
		Stats *DisputeStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/disputes/stats", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

func (c *Client) RespondToDispute(ctx context.Context, id, responseText string) (*Dispute, error) {
	var resp struct {
		Dispute *Dispute `json:"dispute"`
	}
	path := "/v1/disputes/" + url.PathEscape(id) + "/respond"
	err := c.do(ctx, http.MethodPost, path, map[string]string{"responseText": responseText}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Dispute, nil
}

func (c *Client) DashboardStats(ctx context.Context) (*PaymentStats, error) {
	var resp struct {
		Stats *PaymentStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/dashboard/stats", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

func (c *Client) ListCustomers(ctx context.Context, page, pageSize int) ([]Customer, Pagination, error) {
	var resp struct {
		Customers  []Customer `json:"customers"`
		Pagination Pagination `json:"pagination"`
	}
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	path := "/v1/customers"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, Pagination{}, err
	}
	return resp.Customers, resp.Pagination, nil
}

func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var resp struct {
		Customer *Customer `json:"customer"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/customers/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Customer, nil
}

// do performs one request. No retries: every failure is surfaced once.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	if c.creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	}
	if c.creds.APIKey != "" {
		req.Header.Set("X-API-Key", c.creds.APIKey)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error occurred: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("network error occurred: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Any 401 invalidates the whole session.
		c.clearSession()
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		if err := json.Unmarshal(data, &envelope); err == nil {
			apiErr.Message = envelope.Message
			apiErr.Errors = envelope.Errors
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.creds = Credentials{}
	c.state = StateUnauthenticated
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear stored credentials", zap.Error(err))
	}
}
