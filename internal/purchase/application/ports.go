package application

import (
	"context"

	"github.com/btechtrader/checkout-service/internal/purchase/domain"
)

type PurchaseStore interface {
	// InsertWithOutbox writes the purchase and its outbox event in one
	// transaction. When the (user, order) key already exists it writes
	// nothing and returns the stored row with created=false.
	InsertWithOutbox(ctx context.Context, p domain.Purchase, eventType string, payload []byte, traceparent string) (stored domain.Purchase, created bool, err error)
	Get(ctx context.Context, userID, orderID string) (domain.Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error)
}
