package domain

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("purchase not found")

// Purchase is the durable record of a successful checkout, keyed by
// (UserID, OrderID). It is written exactly once; the redemption token is
// minted at write time and never regenerated.
type Purchase struct {
	UserID      string
	OrderID     string
	CourseID    string
	CourseTitle string
	PricePaise  int64
	Token       string
	PurchasedAt time.Time
}
