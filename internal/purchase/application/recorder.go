package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/btechtrader/checkout-service/internal/purchase/domain"
)

// StoreError marks a persistence failure after the user has already been
// charged. Callers must surface it distinctly from a payment failure.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("purchase store: %v", e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

var ErrMissingKey = errors.New("user id and order id are required")

// NewPurchase describes a successful checkout about to be recorded. The
// purchaser identity is passed in by the caller, never read from ambient
// state.
type NewPurchase struct {
	UserID      string
	UserEmail   string
	UserName    string
	OrderID     string
	CourseID    string
	CourseTitle string
	PricePaise  int64
}

type Recorder struct {
	log   *slog.Logger
	store PurchaseStore
}

func NewRecorder(log *slog.Logger, store PurchaseStore) *Recorder {
	return &Recorder{log: log, store: store}
}

// Record writes the purchase and mints its token. Recording the same
// (user, order) pair again returns the original row unchanged, so replayed
// success callbacks and double-taps never issue a second token.
func (r *Recorder) Record(ctx context.Context, np NewPurchase, traceparent string) (domain.Purchase, error) {
	if np.UserID == "" || np.OrderID == "" {
		return domain.Purchase{}, ErrMissingKey
	}
	if np.PricePaise < 0 {
		return domain.Purchase{}, fmt.Errorf("price must not be negative: %d", np.PricePaise)
	}

	p := domain.Purchase{
		UserID:      np.UserID,
		OrderID:     np.OrderID,
		CourseID:    np.CourseID,
		CourseTitle: np.CourseTitle,
		PricePaise:  np.PricePaise,
		Token:       domain.NewToken(),
		PurchasedAt: time.Now().UTC(),
	}

	event := domain.PurchaseRecorded{
		UserID:      np.UserID,
		UserEmail:   np.UserEmail,
		UserName:    np.UserName,
		OrderID:     np.OrderID,
		CourseTitle: np.CourseTitle,
		PricePaise:  np.PricePaise,
		Token:       p.Token,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.Purchase{}, err
	}

	stored, created, err := r.store.InsertWithOutbox(ctx, p, "PurchaseRecorded", payload, traceparent)
	if err != nil {
		return domain.Purchase{}, &StoreError{Err: err}
	}
	if !created {
		r.log.Info("purchase already recorded, returning existing token",
			"user_id", np.UserID, "order_id", np.OrderID)
		return stored, nil
	}

	r.log.Info("purchase recorded", "user_id", np.UserID, "order_id", np.OrderID)
	return stored, nil
}

func (r *Recorder) Get(ctx context.Context, userID, orderID string) (domain.Purchase, error) {
	return r.store.Get(ctx, userID, orderID)
}

func (r *Recorder) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	return r.store.ListByUser(ctx, userID)
}
