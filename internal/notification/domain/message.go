package domain

// Message is one outbound mail. The relay either returns a message id or an
// error; delivery outcome is observed once and not retried here.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
}
