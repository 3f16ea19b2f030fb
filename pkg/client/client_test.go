package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		if req["email"] != "test@merchant.com" || req["password"] != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "Invalid email or password",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"token":   "tok_123",
			"apiKey":  "pk_abc",
			"user": map[string]interface{}{
				"merchantId": "mer_1",
				"email":      "test@merchant.com",
				"name":       "Test Merchant",
				"active":     true,
			},
		})
	}
}

func TestLoginAuthenticatesAndSendsHeaders(t *testing.T) {
	var gotAuth, gotKey string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/login", loginHandler(t))
	mux.HandleFunc("/v1/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-API-Key")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"stats":   map[string]interface{}{"totalPayments": 2},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	require.Equal(t, StateUnauthenticated, c.State())

	require.NoError(t, c.Login(context.Background(), "test@merchant.com", "password123"))
	assert.Equal(t, StateAuthenticated, c.State())
	assert.Equal(t, "test@merchant.com", c.User().Email)

	stats, err := c.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPayments)
	assert.Equal(t, "Bearer tok_123", gotAuth)
	assert.Equal(t, "pk_abc", gotKey)
}

func TestLoginFailureSurfacesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/login", loginHandler(t))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	err := c.Login(context.Background(), "test@merchant.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestLoginIncompleteResponseStaysUnauthenticated(t *testing.T) {
	// success:true but no apiKey: the session must not be half-restored.
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"token":   "tok_123",
			"user":    map[string]interface{}{"merchantId": "mer_1"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	err := c.Login(context.Background(), "test@merchant.com", "password123")
	require.Error(t, err)
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestUnauthorizedClearsSessionAndFiresHook(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/login", loginHandler(t))
	mux.HandleFunc("/v1/payments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Authentication required",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var redirects atomic.Int32
	store := NewMemoryStore()
	c := New(srv.URL,
		WithCredentialStore(store),
		WithOnUnauthorized(func() { redirects.Add(1) }))

	require.NoError(t, c.Login(context.Background(), "test@merchant.com", "password123"))

	_, _, err := c.ListPayments(context.Background(), ListPaymentsOptions{})
	require.Error(t, err)

	assert.Equal(t, StateUnauthenticated, c.State())
	assert.Equal(t, int32(1), redirects.Load())

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, creds.Token)
}

func TestRefundOverAmountMakesNoRequest(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	c := New(srv.URL)
	payment := &Payment{PaymentID: "pay_1", Amount: 100.00}

	_, err := c.RefundPayment(context.Background(), payment, 150.00, "requested_by_customer")
	require.Error(t, err)
	assert.Equal(t, "Refund amount cannot exceed payment amount", err.Error())
	assert.Equal(t, int32(0), requests.Load())
}

func TestNetworkErrorIsWrapped(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.GetPayment(context.Background(), "pay_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network error occurred")
}

func TestValidationErrorsConcatenated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "validation failed",
			"errors": map[string]string{
				"amount":   "Amount failed on the 'required' rule",
				"currency": "Currency failed on the 'len' rule",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreatePayment(context.Background(), CreatePaymentRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Amount failed on the 'required' rule")
	assert.Contains(t, err.Error(), "Currency failed on the 'len' rule")
}

func TestRestoreRequiresAllCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.json")
	store := NewFileStore(path)

	// Token only: must not restore.
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"tok_123"}`), 0o600))
	c := New("http://localhost:8080", WithCredentialStore(store))
	require.NoError(t, c.Restore())
	assert.Equal(t, StateUnauthenticated, c.State())

	// Cleared on restore failure, so a later load sees nothing.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Full credentials restore.
	creds := Credentials{
		Token:  "tok_123",
		APIKey: "pk_abc",
		User:   &Merchant{MerchantID: "mer_1", Email: "test@merchant.com"},
	}
	require.NoError(t, store.Save(creds))
	c2 := New("http://localhost:8080", WithCredentialStore(store))
	require.NoError(t, c2.Restore())
	assert.Equal(t, StateAuthenticated, c2.State())
	assert.Equal(t, "mer_1", c2.User().MerchantID)
}

func TestRestoreCorruptUserClears(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"tok","apiKey":"pk","user":`), 0o600))

	c := New("http://localhost:8080", WithCredentialStore(NewFileStore(path)))
	require.NoError(t, c.Restore())
	assert.Equal(t, StateUnauthenticated, c.State())
}

func TestPaymentSnakeCaseFallback(t *testing.T) {
	var p Payment
	require.NoError(t, json.Unmarshal([]byte(`{
		"payment_id": "pay_1",
		"transaction_id": "txn_1",
		"customer_id": "cus_1",
		"amount": 42.5,
		"status": "COMPLETED",
		"payment_method": "CREDIT_CARD",
		"created_at": "2024-03-15T10:30:00Z"
	}`), &p))

	assert.Equal(t, "pay_1", p.PaymentID)
	assert.Equal(t, "txn_1", p.TransactionID)
	assert.Equal(t, "cus_1", p.CustomerID)
	assert.Equal(t, 42.5, p.Amount)
	assert.Equal(t, "CREDIT_CARD", p.PaymentMethod)
	assert.Equal(t, time.March, p.CreatedAt.Month())
}

func TestPaymentPrefersCamelCase(t *testing.T) {
	var p Payment
	require.NoError(t, json.Unmarshal([]byte(`{
		"paymentId": "pay_camel",
		"payment_id": "pay_snake"
	}`), &p))
	assert.Equal(t, "pay_camel", p.PaymentID)
}

func TestFlexTimeArrayEncoding(t *testing.T) {
	var d Dispute
	require.NoError(t, json.Unmarshal([]byte(`{
		"disputeId": "dis_1",
		"openedAt": [2024, 3, 15, 10, 30, 0, 500000000]
	}`), &d))

	// Array month 3 is calendar March: the 1-based conversion happens once.
	assert.Equal(t, time.March, d.OpenedAt.Month())
	assert.Equal(t, 2024, d.OpenedAt.Year())
	assert.Equal(t, 15, d.OpenedAt.Day())
	assert.Equal(t, 10, d.OpenedAt.Hour())
	assert.Equal(t, 30, d.OpenedAt.Minute())
	// Nanos truncated to millisecond precision.
	assert.Equal(t, 500_000_000, d.OpenedAt.Nanosecond())
}

func TestFlexTimeStringNumberArray(t *testing.T) {
	var ft FlexTime
	require.NoError(t, json.Unmarshal([]byte(`["2024", "3", "15", "10", "30", "0", "0"]`), &ft))
	assert.Equal(t, time.March, ft.Month())
	assert.Equal(t, 2024, ft.Year())
}

func TestFlexTimeShortArrayDefaultsToMidnight(t *testing.T) {
	var ft FlexTime
	require.NoError(t, json.Unmarshal([]byte(`[2024, 3, 15]`), &ft))
	assert.Equal(t, time.March, ft.Month())
	assert.Equal(t, 0, ft.Hour())
	assert.Equal(t, 0, ft.Minute())
}

func TestFlexTimeMalformedFallsBackToNow(t *testing.T) {
	fixed := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	var ft FlexTime
	require.NoError(t, json.Unmarshal([]byte(`"not a date"`), &ft))
	assert.Equal(t, fixed, ft.Time)

	require.NoError(t, json.Unmarshal([]byte(`[2024, "x", 15]`), &ft))
	assert.Equal(t, fixed, ft.Time)
}
