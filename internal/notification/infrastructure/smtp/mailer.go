package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/btechtrader/checkout-service/internal/notification/domain"
	"github.com/google/uuid"
	gomail "github.com/wneessen/go-mail"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Mailer sends through an SMTP relay with STARTTLS and plain auth, the
// setup the operator's mail account expects.
type Mailer struct {
	client *gomail.Client
	host   string
}

func NewMailer(cfg Config) (*Mailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: client, host: cfg.Host}, nil
}

func (m *Mailer) Send(ctx context.Context, msg domain.Message) (string, error) {
	mail := gomail.NewMsg()
	if err := mail.From(msg.From); err != nil {
		return "", err
	}
	if err := mail.To(msg.To); err != nil {
		return "", err
	}
	mail.Subject(msg.Subject)
	mail.SetBodyString(gomail.TypeTextPlain, msg.Text)

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.host)
	mail.SetMessageIDWithValue(messageID)

	if err := m.client.DialAndSendWithContext(ctx, mail); err != nil {
		return "", err
	}
	return messageID, nil
}
