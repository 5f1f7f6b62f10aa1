package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/btechtrader/checkout-service/internal/notification/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var emailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "checkout_emails_total",
	Help: "Purchase emails attempted, by recipient kind and result.",
}, []string{"recipient", "result"})

type Mailer interface {
	Send(ctx context.Context, msg domain.Message) (messageID string, err error)
}

// SendResult records one mail attempt.
type SendResult struct {
	To        string
	MessageID string
	Err       error
}

// Report covers both sends of a purchase notice. A partial failure is a
// report, not an abort: the purchase stays valid either way and the mail
// that did go out stays sent.
type Report struct {
	Purchaser SendResult
	Operator  SendResult
}

func (r Report) Failed() bool { return r.Purchaser.Err != nil || r.Operator.Err != nil }

func (r Report) Err() error {
	var errs []error
	if r.Purchaser.Err != nil {
		errs = append(errs, fmt.Errorf("purchaser email: %w", r.Purchaser.Err))
	}
	if r.Operator.Err != nil {
		errs = append(errs, fmt.Errorf("operator email: %w", r.Operator.Err))
	}
	return errors.Join(errs...)
}

// Dispatcher sends the purchaser confirmation and the operator notification
// for a recorded purchase. Each send is attempted exactly once.
type Dispatcher struct {
	log      *slog.Logger
	mailer   Mailer
	from     string
	operator string
}

func NewDispatcher(log *slog.Logger, mailer Mailer, from, operator string) *Dispatcher {
	return &Dispatcher{log: log, mailer: mailer, from: from, operator: operator}
}

func (d *Dispatcher) DispatchPurchase(ctx context.Context, n domain.PurchaseNotice) (Report, error) {
	if err := n.Validate(); err != nil {
		return Report{}, err
	}

	var report Report
	report.Purchaser = d.send(ctx, "purchaser", domain.Message{
		From:    d.from,
		To:      n.UserEmail,
		Subject: "Course Purchase Confirmation",
		Text: fmt.Sprintf("Dear %s,\n\nYou have successfully purchased the course %q.\nYour unique token number is: %s\n\nThank you for choosing BTech Trader!",
			n.UserName, n.CourseTitle, n.Token),
	})

	report.Operator = d.send(ctx, "operator", domain.Message{
		From:    d.from,
		To:      d.operator,
		Subject: "New Course Purchase Notification",
		Text: fmt.Sprintf("A user has purchased a course.\n\nDetails:\n- User: %s\n- Email: %s\n- Course: %s\n- Price: ₹%s\n- Token: %s\n\nInvoice:\nCourse: %s\nPrice: ₹%s\nToken: %s",
			n.UserName, n.UserEmail, n.CourseTitle, n.PriceRupees(), n.Token,
			n.CourseTitle, n.PriceRupees(), n.Token),
	})

	return report, nil
}

func (d *Dispatcher) send(ctx context.Context, recipient string, msg domain.Message) SendResult {
	id, err := d.mailer.Send(ctx, msg)
	if err != nil {
		emailsTotal.WithLabelValues(recipient, "failed").Inc()
		d.log.Error("email send failed", "recipient", recipient, "to", msg.To, "err", err)
		return SendResult{To: msg.To, Err: err}
	}
	emailsTotal.WithLabelValues(recipient, "sent").Inc()
	d.log.Info("email sent", "recipient", recipient, "to", msg.To, "message_id", id)
	return SendResult{To: msg.To, MessageID: id}
}
