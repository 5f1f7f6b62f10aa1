package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/btechtrader/checkout-service/internal/order/domain"
)

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" {
			t.Errorf("path = %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "secret" {
			t.Errorf("basic auth = %q/%q ok=%v", user, pass, ok)
		}
		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Amount != 5400 || req.Currency != "INR" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(createOrderResponse{
			ID: "order_abc123", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created",
		})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("rzp_test_key", "secret", srv.URL)
	order, err := c.CreateOrder(context.Background(), 5400, "INR", "receipt_1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != "order_abc123" || order.AmountPaise != 5400 {
		t.Errorf("order = %+v", order)
	}
}

func TestCreateOrderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount exceeds maximum"}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", "s", srv.URL)
	_, err := c.CreateOrder(context.Background(), 1, "INR", "r")
	var ge *domain.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want GatewayError", err)
	}
	if ge.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", ge.StatusCode)
	}
	if ge.Message != "amount exceeds maximum" {
		t.Errorf("message = %q", ge.Message)
	}
}

func TestCreateOrderMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", "s", srv.URL)
	_, err := c.CreateOrder(context.Background(), 1, "INR", "r")
	var ge *domain.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want GatewayError", err)
	}
}

func signFor(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	valid := signFor("secret", "order_abc123", "pay_xyz789")

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid", "order_abc123", "pay_xyz789", valid, true},
		{"wrong signature", "order_abc123", "pay_xyz789", "deadbeef", false},
		{"wrong order", "order_other", "pay_xyz789", valid, false},
		{"wrong payment", "order_abc123", "pay_other", valid, false},
		{"empty signature", "order_abc123", "pay_xyz789", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySignature("secret", tt.orderID, tt.paymentID, tt.signature); got != tt.want {
				t.Errorf("VerifySignature = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	c := NewClient("key", "another-secret")
	sig := signFor("another-secret", "order_1", "pay_1")
	if !c.VerifySignature("order_1", "pay_1", sig) {
		t.Error("valid signature rejected")
	}
	if c.VerifySignature("order_1", "pay_2", sig) {
		t.Error("signature accepted for a different payment")
	}
}
