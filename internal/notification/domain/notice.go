package domain

import (
	"fmt"
	"strings"
)

// PurchaseNotice carries everything needed to compose the two purchase
// emails. Identity fields are passed in by the caller, never read from
// ambient session state.
type PurchaseNotice struct {
	UserID      string
	UserEmail   string
	UserName    string
	CourseTitle string
	PricePaise  int64
	Token       string
}

// ValidationError names the notice fields that were missing. Nothing is
// sent when one is returned.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

func (n PurchaseNotice) Validate() error {
	var missing []string
	for _, f := range []struct {
		name  string
		empty bool
	}{
		{"userId", n.UserID == ""},
		{"userEmail", n.UserEmail == ""},
		{"userName", n.UserName == ""},
		{"courseTitle", n.CourseTitle == ""},
		{"coursePrice", n.PricePaise <= 0},
		{"token", n.Token == ""},
	} {
		if f.empty {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// PriceRupees renders the paise amount the way the emails quote it.
func (n PurchaseNotice) PriceRupees() string {
	if n.PricePaise%100 == 0 {
		return fmt.Sprintf("%d", n.PricePaise/100)
	}
	return fmt.Sprintf("%d.%02d", n.PricePaise/100, n.PricePaise%100)
}
