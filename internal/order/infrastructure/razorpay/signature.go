package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the checkout success callback against the key
// secret. Razorpay signs "orderID|paymentID" with HMAC-SHA256 and sends the
// hex digest; a payment must not be trusted until this passes.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.secret, orderID, paymentID, signature)
}

func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
