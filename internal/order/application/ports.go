package application

import (
	"context"

	"github.com/btechtrader/checkout-service/internal/order/domain"
)

type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (domain.Order, error)
}
