package domain

import "time"

// Session is an isolated monitoring context. Every entry, contact, challenge
// and alert belongs to exactly one session; nothing is shared across sessions.
type Session struct {
	SessionID string        `json:"id" dynamodbav:"session_id"`
	Label     string        `json:"label,omitempty" dynamodbav:"label"`
	Metrics   HealthMetrics `json:"metrics" dynamodbav:"metrics"`
	CreatedAt time.Time     `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time     `json:"updated" dynamodbav:"updated_at"`
}

type CreateSessionRequest struct {
	Label string `json:"label"`
}

// HealthMetrics is the session's latest vitals snapshot.
type HealthMetrics struct {
	HeartRate     int       `json:"heart_rate" dynamodbav:"heart_rate"`
	BloodPressure string    `json:"blood_pressure" dynamodbav:"blood_pressure"`
	Temperature   float64   `json:"temperature" dynamodbav:"temperature"`
	LastUpdated   time.Time `json:"last_updated" dynamodbav:"last_updated"`
}

type UpdateMetricsRequest struct {
	HeartRate     *int     `json:"heart_rate" validate:"omitempty,gt=0"`
	BloodPressure *string  `json:"blood_pressure"`
	Temperature   *float64 `json:"temperature" validate:"omitempty,gt=0"`
}
