package domain

import "fmt"

// Order is a gateway-side reservation for a specific amount. It is single
// use and never persisted locally; the gateway owns its lifecycle.
type Order struct {
	ID          string
	AmountPaise int64
	Currency    string
	Receipt     string
}

// GatewayError carries the upstream payment gateway's failure back to the
// caller. The checkout must not proceed when one is returned.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment gateway: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("payment gateway: %s", e.Message)
}
