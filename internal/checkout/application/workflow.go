package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/btechtrader/checkout-service/internal/checkout/bridge"
	notifdomain "github.com/btechtrader/checkout-service/internal/notification/domain"
	orderdomain "github.com/btechtrader/checkout-service/internal/order/domain"
	purchaseapp "github.com/btechtrader/checkout-service/internal/purchase/application"
	"github.com/btechtrader/checkout-service/pkg/retry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checkout_outcomes_total",
	Help: "Terminal checkout outcomes, by kind.",
}, []string{"kind"})

const (
	merchantName = "BTech Trader"
	themeColor   = "#000"

	// Terminal results stay queryable this long for late polls, then drop
	// so the map does not grow with attempt count.
	defaultResultTTL = time.Hour
)

type State string

const (
	StatePending      State = "pending"
	StateSucceeded    State = "succeeded"
	StateFailed       State = "failed"
	StateDismissed    State = "dismissed"
	StateTimedOut     State = "timed_out"
	StateRecordFailed State = "record_failed"
)

// Result is the single terminal report of a purchase attempt. Message is the
// one user-visible line; no attempt ever produces two conflicting ones.
type Result struct {
	State   State
	Message string
	Token   string
}

// Attempt is one user gesture ("Buy Now") with the authenticated identity
// passed in explicitly.
type Attempt struct {
	UserID      string
	UserEmail   string
	UserName    string
	Contact     string
	CourseID    string
	CourseTitle string
	AmountPaise int64
}

// Workflow drives the purchase sequence: create order, open the checkout
// bridge, wait for its one outcome, then record and notify on success.
type Workflow struct {
	log      *slog.Logger
	orders   OrderCreator
	verifier SignatureVerifier
	recorder PurchaseRecorder
	notifier PurchaseNotifier
	bridges  *bridge.Registry

	gatewayKey string
	timeout    time.Duration
	retry      retry.Policy
	resultTTL  time.Duration

	mu      sync.RWMutex
	results map[string]Result
}

func NewWorkflow(
	log *slog.Logger,
	orders OrderCreator,
	verifier SignatureVerifier,
	recorder PurchaseRecorder,
	notifier PurchaseNotifier,
	bridges *bridge.Registry,
	gatewayKey string,
) *Workflow {
	return &Workflow{
		log:        log,
		orders:     orders,
		verifier:   verifier,
		recorder:   recorder,
		notifier:   notifier,
		bridges:    bridges,
		gatewayKey: gatewayKey,
		timeout:    bridge.DefaultTimeout,
		retry:      retry.Default(),
		resultTTL:  defaultResultTTL,
		results:    make(map[string]Result),
	}
}

// SetTimeout overrides the bridge deadline for subsequent sessions.
func (w *Workflow) SetTimeout(d time.Duration) { w.timeout = d }

// SetResultTTL overrides how long terminal results stay queryable.
func (w *Workflow) SetResultTTL(d time.Duration) { w.resultTTL = d }

// Begin creates the gateway order and opens a checkout session for it.
// A gateway failure aborts the attempt before any state is written.
func (w *Workflow) Begin(ctx context.Context, a Attempt) (*bridge.Session, orderdomain.Order, error) {
	order, err := w.orders.CreateOrder(ctx, a.AmountPaise)
	if err != nil {
		return nil, orderdomain.Order{}, err
	}

	cfg := bridge.Config{
		Key:         w.gatewayKey,
		AmountPaise: order.AmountPaise,
		Currency:    order.Currency,
		Name:        merchantName,
		Description: "Purchase " + a.CourseTitle,
		OrderID:     order.ID,
		Prefill: bridge.Prefill{
			Email:   a.UserEmail,
			Contact: a.Contact,
			Name:    a.UserName,
		},
		Theme: bridge.Theme{Color: themeColor},
	}

	s := w.bridges.Open(cfg, w.timeout)
	w.setResult(s.ID, Result{State: StatePending})
	return s, order, nil
}

// Await blocks until the session resolves and runs the terminal branch. It
// is the only writer of the attempt's final result.
func (w *Workflow) Await(ctx context.Context, a Attempt, s *bridge.Session) Result {
	outcome := s.Wait(ctx)
	outcomesTotal.WithLabelValues(string(outcome.Kind)).Inc()

	var res Result
	switch outcome.Kind {
	case bridge.OutcomeSuccess:
		res = w.completeSuccess(ctx, a, s, outcome)
	case bridge.OutcomeFailed:
		msg := outcome.ErrorDesc
		if msg == "" {
			msg = "An error occurred during payment."
		}
		res = Result{State: StateFailed, Message: "Payment Failed: " + msg}
	case bridge.OutcomeDismissed:
		res = Result{State: StateDismissed, Message: "Payment Cancelled"}
	case bridge.OutcomeTimedOut:
		res = Result{State: StateTimedOut, Message: "Payment timed out."}
	default:
		res = Result{State: StateFailed, Message: "Failed to process payment response."}
	}

	w.setResult(s.ID, res)
	time.AfterFunc(w.resultTTL, func() { w.dropResult(s.ID) })
	w.log.Info("checkout attempt finished",
		"session_id", s.ID, "order_id", s.Config.OrderID, "state", string(res.State))
	return res
}

func (w *Workflow) completeSuccess(ctx context.Context, a Attempt, s *bridge.Session, o bridge.Outcome) Result {
	if o.OrderID != s.Config.OrderID || !w.verifier.VerifySignature(o.OrderID, o.PaymentID, o.Signature) {
		w.log.Warn("payment signature rejected", "order_id", o.OrderID, "payment_id", o.PaymentID)
		return Result{State: StateFailed, Message: "Payment verification failed."}
	}

	np := purchaseapp.NewPurchase{
		UserID:      a.UserID,
		UserEmail:   a.UserEmail,
		UserName:    a.UserName,
		OrderID:     o.OrderID,
		CourseID:    a.CourseID,
		CourseTitle: a.CourseTitle,
		PricePaise:  a.AmountPaise,
	}

	// The write is idempotent, so a bounded retry is safe here.
	var token string
	err := w.retry.Do(ctx, func() error {
		p, err := w.recorder.Record(ctx, np, currentTraceparent(ctx))
		if err != nil {
			return err
		}
		token = p.Token
		return nil
	})
	if err != nil {
		// The user was charged; this must never look like a payment failure.
		w.log.Error("purchase record failed after charge",
			"order_id", o.OrderID, "payment_id", o.PaymentID, "err", err)
		return Result{
			State:   StateRecordFailed,
			Message: "Payment succeeded, but we could not save your purchase. Please contact support with your payment id.",
		}
	}

	notice := notifdomain.PurchaseNotice{
		UserID:      a.UserID,
		UserEmail:   a.UserEmail,
		UserName:    a.UserName,
		CourseTitle: a.CourseTitle,
		PricePaise:  a.AmountPaise,
		Token:       token,
	}
	report, nerr := w.notifier.DispatchPurchase(ctx, notice)
	if nerr != nil || report.Failed() {
		// Recorded but not notified: the purchase stays valid.
		w.log.Warn("purchase notification incomplete", "order_id", o.OrderID, "err", firstErr(nerr, report.Err()))
		return Result{
			State:   StateSucceeded,
			Message: "Payment successful, but confirmation emails may be delayed.",
			Token:   token,
		}
	}

	return Result{State: StateSucceeded, Message: "Payment successful.", Token: token}
}

// ResultFor reports the attempt's current result; pending until Await
// finishes.
func (w *Workflow) ResultFor(sessionID string) (Result, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.results[sessionID]
	return r, ok
}

func (w *Workflow) setResult(sessionID string, r Result) {
	w.mu.Lock()
	w.results[sessionID] = r
	w.mu.Unlock()
}

func (w *Workflow) dropResult(sessionID string) {
	w.mu.Lock()
	delete(w.results, sessionID)
	w.mu.Unlock()
}

func currentTraceparent(ctx context.Context) string {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier["traceparent"]
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
