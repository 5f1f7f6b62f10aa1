package domain

import "crypto/rand"

const (
	tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	TokenLength   = 9
)

// NewToken mints a redemption token: 9 uppercase base36 characters. It is a
// human-legible support code, collision-resistant at this system's scale but
// not a security identifier.
func NewToken() string {
	buf := make([]byte, TokenLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(buf)
}
