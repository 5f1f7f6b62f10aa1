package bridge

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Outcome
	}{
		{
			"success",
			`{"status":"success","payment_id":"pay_xyz789","order_id":"order_abc123","signature":"sig"}`,
			Outcome{Kind: OutcomeSuccess, PaymentID: "pay_xyz789", OrderID: "order_abc123", Signature: "sig"},
		},
		{
			"failed with description",
			`{"status":"failed","error":{"code":"BAD_REQUEST_ERROR","description":"card declined"}}`,
			Outcome{Kind: OutcomeFailed, ErrorDesc: "card declined"},
		},
		{
			"dismissed",
			`{"status":"dismissed"}`,
			Outcome{Kind: OutcomeDismissed},
		},
		{
			"unknown status",
			`{"status":"pending"}`,
			Outcome{Kind: OutcomeMalformed},
		},
		{
			"invalid json",
			`{not json`,
			Outcome{Kind: OutcomeMalformed},
		},
		{
			"empty payload",
			``,
			Outcome{Kind: OutcomeMalformed},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseOutcome([]byte(tt.payload)); got != tt.want {
				t.Errorf("ParseOutcome = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSessionDeliversFirstOutcomeOnly(t *testing.T) {
	s := NewSession("s1", Config{}, time.Minute)

	s.Resolve([]byte(`{"status":"dismissed"}`))
	s.Resolve([]byte(`{"status":"success","payment_id":"pay_late"}`))

	got := s.Wait(context.Background())
	if got.Kind != OutcomeDismissed {
		t.Fatalf("kind = %q, want dismissed", got.Kind)
	}
	if !s.Resolved() {
		t.Error("Resolved() = false after delivery")
	}
}

func TestSessionWaitTimesOut(t *testing.T) {
	s := NewSession("s1", Config{}, 20*time.Millisecond)

	got := s.Wait(context.Background())
	if got.Kind != OutcomeTimedOut {
		t.Fatalf("kind = %q, want timed_out", got.Kind)
	}

	// A resolution arriving after the timeout is dropped.
	s.Resolve([]byte(`{"status":"success"}`))
	if got := s.Wait(context.Background()); got.Kind != OutcomeTimedOut {
		t.Fatalf("kind after late resolve = %q, want timed_out", got.Kind)
	}
}

func TestSessionWaitHonoursContext(t *testing.T) {
	s := NewSession("s1", Config{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := s.Wait(ctx); got.Kind != OutcomeTimedOut {
		t.Fatalf("kind = %q, want timed_out", got.Kind)
	}
}

func TestSessionConcurrentWaitersSeeSameOutcome(t *testing.T) {
	s := NewSession("s1", Config{}, time.Minute)

	var wg sync.WaitGroup
	results := make([]Outcome, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Wait(context.Background())
		}(i)
	}

	s.Resolve([]byte(`{"status":"failed","error":{"description":"declined"}}`))
	wg.Wait()

	for i, r := range results {
		if r.Kind != OutcomeFailed || r.ErrorDesc != "declined" {
			t.Errorf("waiter %d got %+v", i, r)
		}
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	s := reg.Open(Config{OrderID: "order_abc123"}, time.Minute)
	if s.ID == "" {
		t.Fatal("session has empty ID")
	}

	got, ok := reg.Get(s.ID)
	if !ok || got != s {
		t.Fatalf("Get(%q) = %v, %v", s.ID, got, ok)
	}

	reg.Remove(s.ID)
	if _, ok := reg.Get(s.ID); ok {
		t.Error("session still present after Remove")
	}
}
