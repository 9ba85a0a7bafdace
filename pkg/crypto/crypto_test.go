package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, VerifyPassword("s3cret-pass", hash))
	assert.False(t, VerifyPassword("wrong-pass", hash))
}

func TestGenerateRandomBytes(t *testing.T) {
	a, err := GenerateRandomBytes(32)
	require.NoError(t, err)
	assert.Len(t, a, 32)

	b, err := GenerateRandomBytes(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateCode(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	t.Run("length and alphabet", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code, err := GenerateCode(alphabet, 6)
			require.NoError(t, err)
			assert.Len(t, code, 6)
			for _, c := range code {
				assert.True(t, strings.ContainsRune(alphabet, c), "unexpected character %q", c)
			}
		}
	})

	t.Run("codes differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			code, err := GenerateCode(alphabet, 6)
			require.NoError(t, err)
			seen[code] = true
		}
		assert.Greater(t, len(seen), 1)
	})
}

func TestPaymentSignature(t *testing.T) {
	sig := PaymentSignature("secret", "order_abc", "pay_123")

	assert.True(t, VerifyPaymentSignature("secret", "order_abc", "pay_123", sig))
	assert.False(t, VerifyPaymentSignature("secret", "order_abc", "pay_999", sig))
	assert.False(t, VerifyPaymentSignature("other", "order_abc", "pay_123", sig))
	assert.False(t, VerifyPaymentSignature("secret", "order_abc", "pay_123", ""))
}
