package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btechtrader/checkout-service/internal/order/domain"
	"github.com/google/uuid"
)

var ErrInvalidAmount = errors.New("amount must be a positive number of paise")

const Currency = "INR"

type Service struct {
	gw Gateway
}

func NewService(gw Gateway) *Service {
	return &Service{gw: gw}
}

// CreateOrder registers a pending order with the payment gateway and returns
// it. The amount is in minor currency units; callers converting from rupees
// multiply by 100 before calling. No retries happen here.
func (s *Service) CreateOrder(ctx context.Context, amountPaise int64) (domain.Order, error) {
	if amountPaise <= 0 {
		return domain.Order{}, ErrInvalidAmount
	}
	return s.gw.CreateOrder(ctx, amountPaise, Currency, newReceipt())
}

// newReceipt must be unique per call; the timestamp alone can collide under
// concurrent checkouts, so a random suffix is added.
func newReceipt() string {
	return fmt.Sprintf("receipt_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
