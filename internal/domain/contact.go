package domain

import "time"

// Contact lifecycle stages. A pending contact becomes verified only through a
// successful OTP validation; only verified contacts ever receive alerts.
const (
	StagePending  = "pending"
	StageVerified = "verified"
)

type Contact struct {
	ContactID    string    `json:"id" dynamodbav:"contact_id"`
	SessionID    string    `json:"-" dynamodbav:"session_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Phone        string    `json:"phone" dynamodbav:"phone"`
	Email        *string   `json:"email,omitempty" dynamodbav:"email"`
	Relationship string    `json:"relationship" dynamodbav:"relationship"`
	Stage        string    `json:"stage" dynamodbav:"stage"`
	InProgress   bool      `json:"validation_in_progress" dynamodbav:"validation_in_progress"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateContactRequest struct {
	Name         string  `json:"name" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	Relationship string  `json:"relationship"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Method       string  `json:"method" validate:"omitempty,oneof=sms email"`
}
