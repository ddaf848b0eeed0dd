package auth

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindDuplicateRegistration Kind = "duplicate_registration"
	KindWeakPassword          Kind = "weak_password"
	KindPasswordMismatch      Kind = "password_mismatch"
	KindInvalidEmail          Kind = "invalid_email"
	KindUnavailable           Kind = "unavailable"
)

// AuthError is the failure of an auth operation. Msg is safe to show to the
// user; Err carries the underlying cause, if any.
type AuthError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// KindOf returns the kind of an *AuthError in err's chain, or "".
func KindOf(err error) Kind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func errInvalidCredentials() error {
	return &AuthError{Kind: KindInvalidCredentials, Msg: "invalid email or password"}
}

func errUnavailable(op string, err error) error {
	return &AuthError{Kind: KindUnavailable, Msg: op + " failed, try again later", Err: err}
}
