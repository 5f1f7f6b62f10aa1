package application

import (
	"context"

	notifapp "github.com/btechtrader/checkout-service/internal/notification/application"
	notifdomain "github.com/btechtrader/checkout-service/internal/notification/domain"
	orderdomain "github.com/btechtrader/checkout-service/internal/order/domain"
	purchaseapp "github.com/btechtrader/checkout-service/internal/purchase/application"
	purchasedomain "github.com/btechtrader/checkout-service/internal/purchase/domain"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, amountPaise int64) (orderdomain.Order, error)
}

type SignatureVerifier interface {
	VerifySignature(orderID, paymentID, signature string) bool
}

type PurchaseRecorder interface {
	Record(ctx context.Context, np purchaseapp.NewPurchase, traceparent string) (purchasedomain.Purchase, error)
}

type PurchaseNotifier interface {
	DispatchPurchase(ctx context.Context, n notifdomain.PurchaseNotice) (notifapp.Report, error)
}
