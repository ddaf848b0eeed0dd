package auth

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLength = 72
)

// validate uses the same email rule as gin's binding tags, so an address
// accepted at registration is accepted at checkout.
var validate = validator.New()

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		return &AuthError{Kind: KindInvalidEmail, Msg: "invalid email"}
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &AuthError{Kind: KindWeakPassword, Msg: "password must be at least 6 characters"}
	}
	if len(password) > MaxPasswordLength {
		return &AuthError{Kind: KindWeakPassword, Msg: "password must be at most 72 characters"}
	}
	return nil
}

// ValidateRegistration checks the sign-up form. An empty confirm is not
// compared.
func ValidateRegistration(email, password, confirm string) error {
	if err := ValidateEmail(NormalizeEmail(email)); err != nil {
		return err
	}
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if confirm != "" && confirm != password {
		return &AuthError{Kind: KindPasswordMismatch, Msg: "passwords do not match"}
	}
	return nil
}
