package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateRandomBytes generates random bytes
func GenerateRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// GenerateCode samples n characters uniformly from the given alphabet.
// Bytes past the largest multiple of the alphabet size are rejected to
// keep the distribution uniform.
func GenerateCode(alphabet string, n int) (string, error) {
	limit := byte(256 - 256%len(alphabet))

	code := make([]byte, 0, n)
	for len(code) < n {
		buf, err := GenerateRandomBytes(n)
		if err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit && limit != 0 {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == n {
				break
			}
		}
	}
	return string(code), nil
}

// PaymentSignature computes the HMAC-SHA256 signature the payment
// gateway sends back: hex(HMAC(secret, "orderID|paymentID")).
func PaymentSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature compares a client-supplied signature against
// the server-computed one in constant time
func VerifyPaymentSignature(secret, orderID, paymentID, signature string) bool {
	expected := PaymentSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
