package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates structs using `validate` tags
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// Validate validates a struct and reports the first failing field
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		if e.Param() != "" {
			return fmt.Errorf("%s: failed %s=%s validation", e.Field(), e.Tag(), e.Param())
		}
		return fmt.Errorf("%s: failed %s validation", e.Field(), e.Tag())
	}

	return err
}
