package alert

import (
	"testing"
	"time"

	"github.com/caretaker-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func highVerdict() domain.RiskVerdict {
	return domain.RiskVerdict{
		Level:          domain.RiskHigh,
		Categories:     []string{"Suicidal Ideation"},
		Severity:       domain.SeverityCritical,
		AlertTriggered: true,
	}
}

func sampleEntry() *domain.EmotionEntry {
	return &domain.EmotionEntry{
		EntryID:   "e1",
		SessionID: "s1",
		Mood:      "hopeless",
		Keywords:  []string{"want to die"},
		Notes:     "see journal",
		CreatedAt: time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC),
	}
}

func TestDispatch_NotTriggered_NoOutput(t *testing.T) {
	alerts, notifications := Dispatch(domain.RiskVerdict{Level: domain.RiskMedium}, sampleEntry(), nil)
	assert.Empty(t, alerts)
	assert.Empty(t, notifications)
}

func TestDispatch_NoVerifiedContacts_RaisesCriticalAlert(t *testing.T) {
	alerts, notifications := Dispatch(highVerdict(), sampleEntry(), nil)
	require.Len(t, alerts, 1)
	assert.Equal(t, NoContactsAlert, alerts[0])
	assert.Empty(t, notifications)
}

func TestDispatch_OneNotificationPerContact(t *testing.T) {
	contacts := []domain.Contact{
		{ContactID: "c1", Phone: "+15550001111", Stage: domain.StageVerified},
		{ContactID: "c2", Phone: "+15550002222", Stage: domain.StageVerified},
	}
	alerts, notifications := Dispatch(highVerdict(), sampleEntry(), contacts)

	require.Len(t, alerts, 1)
	require.Len(t, notifications, 2)
	assert.Equal(t, "c1", notifications[0].ContactID)
	assert.Equal(t, "+15550001111", notifications[0].Target)
	assert.Equal(t, "c2", notifications[1].ContactID)
	// Every contact receives the same formatted message.
	assert.Equal(t, notifications[0].Message, notifications[1].Message)
	assert.Equal(t, alerts[0], notifications[0].Message)
}

func TestFormatAlert_ContainsEntryDetails(t *testing.T) {
	msg := formatAlert(highVerdict(), sampleEntry())
	assert.Contains(t, msg, "EMERGENCY ALERT")
	assert.Contains(t, msg, "Mood: hopeless")
	assert.Contains(t, msg, "Detected Issues: Suicidal Ideation")
	assert.Contains(t, msg, "Keywords: want to die")
	assert.Contains(t, msg, "Notes: see journal")
	assert.Contains(t, msg, "IMMEDIATE ACTION REQUIRED")
}

func TestFormatAlert_OmitsEmptyNotes(t *testing.T) {
	e := sampleEntry()
	e.Notes = ""
	msg := formatAlert(highVerdict(), e)
	assert.NotContains(t, msg, "Notes:")
}
