package bridge

import (
	"strings"
	"testing"
)

func TestConfigPage(t *testing.T) {
	cfg := Config{
		Key:         "rzp_test_key",
		AmountPaise: 5400,
		Currency:    "INR",
		Name:        "BTech Trader",
		Description: "Advanced Trading",
		OrderID:     "order_abc123",
		Prefill:     Prefill{Email: "a@b.in", Name: "Asha"},
		Theme:       Theme{Color: "#000"},
	}

	page, err := cfg.Page("/checkout/sessions/s1/ws")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	html := string(page)

	for _, want := range []string{
		"order_abc123",
		"rzp_test_key",
		"/checkout/sessions/s1/ws",
		"checkout.razorpay.com/v1/checkout.js",
		"payment.failed",
		"ondismiss",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}
