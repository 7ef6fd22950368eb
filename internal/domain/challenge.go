package domain

import "time"

// OTP delivery methods.
const (
	MethodSMS   = "sms"
	MethodEmail = "email"
)

// OtpChallenge is the one-time-passcode state for a pending contact.
// Exactly one challenge may exist per contact; a resend supersedes the old
// challenge entirely (fresh code, fresh expiry, attempt counter reset).
type OtpChallenge struct {
	SessionID   string    `json:"-" dynamodbav:"session_id"`
	ContactID   string    `json:"contact_id" dynamodbav:"contact_id"`
	Phone       string    `json:"phone" dynamodbav:"phone"`
	Email       *string   `json:"email,omitempty" dynamodbav:"email"`
	Code        string    `json:"-" dynamodbav:"code"`
	Method      string    `json:"method" dynamodbav:"method"`
	GeneratedAt time.Time `json:"generated_at" dynamodbav:"generated_at"`
	ExpiresAt   time.Time `json:"expires_at" dynamodbav:"expires_at"`
	Attempts    int       `json:"attempts" dynamodbav:"attempts"`
	MaxAttempts int       `json:"max_attempts" dynamodbav:"max_attempts"`
}

type ValidateCodeRequest struct {
	Code string `json:"code" validate:"required"`
}
