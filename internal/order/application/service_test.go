package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/btechtrader/checkout-service/internal/order/domain"
)

type fakeGateway struct {
	lastAmount   int64
	lastCurrency string
	receipts     []string
	err          error
}

func (f *fakeGateway) CreateOrder(_ context.Context, amountPaise int64, currency, receipt string) (domain.Order, error) {
	f.lastAmount = amountPaise
	f.lastCurrency = currency
	f.receipts = append(f.receipts, receipt)
	if f.err != nil {
		return domain.Order{}, f.err
	}
	return domain.Order{ID: "order_abc123", AmountPaise: amountPaise, Currency: currency, Receipt: receipt}, nil
}

func TestCreateOrder(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewService(gw)

	order, err := svc.CreateOrder(context.Background(), 5400)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != "order_abc123" {
		t.Errorf("order ID = %q", order.ID)
	}
	if gw.lastAmount != 5400 {
		t.Errorf("gateway amount = %d, want 5400", gw.lastAmount)
	}
	if gw.lastCurrency != "INR" {
		t.Errorf("gateway currency = %q, want INR", gw.lastCurrency)
	}
	if !strings.HasPrefix(gw.receipts[0], "receipt_") {
		t.Errorf("receipt = %q, want receipt_ prefix", gw.receipts[0])
	}
}

func TestCreateOrderRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []int64{0, -1, -5400} {
		gw := &fakeGateway{}
		_, err := NewService(gw).CreateOrder(context.Background(), amount)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %d: err = %v, want ErrInvalidAmount", amount, err)
		}
		if len(gw.receipts) != 0 {
			t.Errorf("amount %d: gateway was called", amount)
		}
	}
}

func TestCreateOrderReceiptsAreUnique(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewService(gw)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		if _, err := svc.CreateOrder(context.Background(), 100); err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}
	}
	for _, r := range gw.receipts {
		if seen[r] {
			t.Fatalf("duplicate receipt %q", r)
		}
		seen[r] = true
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	gwErr := &domain.GatewayError{StatusCode: 502, Message: "upstream unavailable"}
	gw := &fakeGateway{err: gwErr}

	_, err := NewService(gw).CreateOrder(context.Background(), 100)
	var ge *domain.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want GatewayError", err)
	}
	if ge.StatusCode != 502 {
		t.Errorf("status = %d, want 502", ge.StatusCode)
	}
}
