package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/btechtrader/checkout-service/internal/order/domain"
)

const defaultBaseURL = "https://api.razorpay.com"

// Client talks to the Razorpay Orders API with key-id/key-secret basic auth.
type Client struct {
	baseURL string
	keyID   string
	secret  string
	http    *http.Client
}

func NewClient(keyID, secret string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		keyID:   keyID,
		secret:  secret,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(keyID, secret, baseURL string) *Client {
	c := NewClient(keyID, secret)
	c.baseURL = baseURL
	return c
}

// KeyID is embedded into the hosted checkout configuration.
func (c *Client) KeyID() string { return c.keyID }

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (domain.Order, error) {
	body, err := json.Marshal(createOrderRequest{Amount: amountPaise, Currency: currency, Receipt: receipt})
	if err != nil {
		return domain.Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return domain.Order{}, err
	}
	req.SetBasicAuth(c.keyID, c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Order{}, &domain.GatewayError{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.Order{}, &domain.GatewayError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			msg = apiErr.Error.Description
		}
		return domain.Order{}, &domain.GatewayError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out createOrderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return domain.Order{}, &domain.GatewayError{StatusCode: resp.StatusCode, Message: "malformed gateway response"}
	}
	if out.ID == "" {
		return domain.Order{}, &domain.GatewayError{StatusCode: resp.StatusCode, Message: "gateway returned empty order id"}
	}

	return domain.Order{
		ID:          out.ID,
		AmountPaise: out.Amount,
		Currency:    out.Currency,
		Receipt:     out.Receipt,
	}, nil
}
