package domain

import "time"

// Risk levels for an emotion entry, coarsest classification first.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// EmotionEntry is one logged mood record. Entries are immutable once created:
// the log is append-only and read newest-first.
type EmotionEntry struct {
	EntryID            string    `json:"id" dynamodbav:"entry_id"`
	SessionID          string    `json:"-" dynamodbav:"session_id"`
	Mood               string    `json:"mood" dynamodbav:"mood"`
	Keywords           []string  `json:"keywords" dynamodbav:"keywords"`
	Notes              string    `json:"notes" dynamodbav:"notes"`
	RiskLevel          string    `json:"risk_level" dynamodbav:"risk_level"`
	DetectedCategories []string  `json:"detected_categories" dynamodbav:"detected_categories"`
	AlertTriggered     bool      `json:"alert_triggered" dynamodbav:"alert_triggered"`
	CreatedAt          time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateEntryRequest struct {
	Mood     string `json:"mood" validate:"required"`
	Keywords string `json:"keywords"` // comma-separated
	Notes    string `json:"notes"`
}

// Alert is one human-readable notice in the session's append-only alert log.
type Alert struct {
	AlertID   string    `json:"id" dynamodbav:"alert_id"`
	SessionID string    `json:"-" dynamodbav:"session_id"`
	Message   string    `json:"message" dynamodbav:"message"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
