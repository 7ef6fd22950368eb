package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// OTP lifecycle errors. All of them are recoverable: the caller can resend or
// cancel the verification, so none of these should tear down the session.
var (
	ErrOTPExpired        = errors.New("verification code expired")
	ErrAttemptsExhausted = errors.New("maximum verification attempts exceeded")
	ErrIncorrectCode     = errors.New("incorrect verification code")
)

// IncorrectCodeError reports how many validation attempts remain alongside
// the failure. Unwraps to ErrIncorrectCode.
type IncorrectCodeError struct {
	Remaining int
}

func (e *IncorrectCodeError) Error() string {
	return fmt.Sprintf("incorrect verification code: %d attempt(s) remaining", e.Remaining)
}

func (e *IncorrectCodeError) Unwrap() error { return ErrIncorrectCode }
