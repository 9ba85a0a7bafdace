package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	type signupReq struct {
		Name     string `validate:"required,min=2"`
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
		Role     string `validate:"omitempty,oneof=tenant owner"`
	}

	t.Run("valid struct passes", func(t *testing.T) {
		err := v.Validate(signupReq{
			Name:     "Asha",
			Email:    "asha@example.com",
			Password: "secret1",
		})
		assert.NoError(t, err)
	})

	t.Run("missing required field", func(t *testing.T) {
		err := v.Validate(signupReq{Email: "asha@example.com", Password: "secret1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Name")
	})

	t.Run("bad email", func(t *testing.T) {
		err := v.Validate(signupReq{Name: "Asha", Email: "not-an-email", Password: "secret1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Email")
	})

	t.Run("short password names the parameter", func(t *testing.T) {
		err := v.Validate(signupReq{Name: "Asha", Email: "asha@example.com", Password: "abc"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "min=6")
	})

	t.Run("oneof rejects unknown role", func(t *testing.T) {
		err := v.Validate(signupReq{
			Name:     "Asha",
			Email:    "asha@example.com",
			Password: "secret1",
			Role:     "superuser",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Role")
	})
}
