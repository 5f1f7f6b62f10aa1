package bridge

import "encoding/json"

type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeFailed    OutcomeKind = "failed"
	OutcomeDismissed OutcomeKind = "dismissed"
	OutcomeMalformed OutcomeKind = "malformed"
	OutcomeTimedOut  OutcomeKind = "timed_out"
)

// Outcome is the single terminal message a checkout session delivers.
type Outcome struct {
	Kind      OutcomeKind
	PaymentID string
	OrderID   string
	Signature string
	// ErrorDesc is the gateway's failure description for OutcomeFailed.
	ErrorDesc string
}

type rawOutcome struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
	Error     struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// ParseOutcome decodes the checkout page's terminal message. Anything that
// is not valid JSON with a recognized status is a malformed outcome, never
// an error: the workflow treats it as a failure and moves on.
func ParseOutcome(payload []byte) Outcome {
	var raw rawOutcome
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Outcome{Kind: OutcomeMalformed}
	}

	switch raw.Status {
	case "success":
		return Outcome{
			Kind:      OutcomeSuccess,
			PaymentID: raw.PaymentID,
			OrderID:   raw.OrderID,
			Signature: raw.Signature,
		}
	case "failed":
		return Outcome{Kind: OutcomeFailed, ErrorDesc: raw.Error.Description}
	case "dismissed":
		return Outcome{Kind: OutcomeDismissed}
	default:
		return Outcome{Kind: OutcomeMalformed}
	}
}
