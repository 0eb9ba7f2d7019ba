package types

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// walletPattern matches a base58 Solana address
	walletPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	handlePattern = regexp.MustCompile(`^[a-z0-9_]{2,32}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
		return IsWalletAddress(fl.Field().String())
	})
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})
	return v
}

// IsWalletAddress reports whether s looks like a base58 Solana address
func IsWalletAddress(s string) bool {
	return walletPattern.MatchString(s)
}

// validateStruct runs the tag validation of v and flattens the failures
// into a single error.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			messages = append(messages, fieldMessage(fieldErr))
		}
		return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
	}
	return fmt.Errorf("validation error: %w", err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "wallet":
		return fe.Field() + " must be a base58 wallet address"
	case "handle":
		return fe.Field() + " must be 2-32 lowercase letters, digits or underscores"
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
