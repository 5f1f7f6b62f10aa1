package bridge

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds how long a session waits for its outcome. The
// original checkout surface could hang forever if the gateway never called
// back; a timed-out session resolves distinctly from a dismissed one.
const DefaultTimeout = 10 * time.Minute

// Session is one opened checkout surface. It delivers at most one outcome;
// late or duplicate resolutions are dropped. Sessions are single use — a new
// attempt needs a fresh gateway order.
type Session struct {
	ID      string
	Config  Config
	timeout time.Duration

	once   sync.Once
	done   chan struct{}
	result Outcome
}

func NewSession(id string, cfg Config, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Session{
		ID:      id,
		Config:  cfg,
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// Resolve parses and delivers the terminal message. Only the first call has
// any effect.
func (s *Session) Resolve(payload []byte) {
	s.deliver(ParseOutcome(payload))
}

func (s *Session) deliver(o Outcome) {
	s.once.Do(func() {
		s.result = o
		close(s.done)
	})
}

// Resolved reports whether a terminal outcome has already been delivered.
func (s *Session) Resolved() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the outcome arrives, the session times out, or ctx is
// cancelled. A cancelled wait counts as a timed-out session.
func (s *Session) Wait(ctx context.Context) Outcome {
	t := time.NewTimer(s.timeout)
	defer t.Stop()

	select {
	case <-s.done:
	case <-t.C:
		s.deliver(Outcome{Kind: OutcomeTimedOut})
	case <-ctx.Done():
		s.deliver(Outcome{Kind: OutcomeTimedOut})
	}
	<-s.done
	return s.result
}
