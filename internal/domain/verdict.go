package domain

// Pattern-scan severities, ordered critical > high > medium > none.
const (
	SeverityNone     = "none"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// RiskVerdict is the derived classification of one mood submission. It is
// never persisted; the interesting fields are copied onto the EmotionEntry.
type RiskVerdict struct {
	Level          string   // low | medium | high
	Categories     []string // de-duplicated detector category labels
	Severity       string   // internal escalation signal, see Severity* consts
	AlertTriggered bool
}

// Notification is one outbound alert request addressed to a verified
// contact's phone. Delivery is fire-and-forget from the engine's perspective.
type Notification struct {
	ContactID string
	Target    string
	Message   string
}
