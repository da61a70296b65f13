package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks that a claimed payment signature was produced by the
// gateway with the shared key secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify recomputes the gateway signature, an HMAC-SHA256 over
// "orderID|paymentID" encoded as lowercase hex, and compares it to the
// claimed value. Malformed input simply fails verification.
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
