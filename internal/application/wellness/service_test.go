package wellness

import (
	"context"
	"errors"
	"testing"

	"github.com/caretaker-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEntryStore struct{ mock.Mock }

func (m *mockEntryStore) ListBySession(ctx context.Context, sessionID string) ([]domain.EmotionEntry, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.EmotionEntry), args.Error(1)
}

func sessionWith(hr int, temp float64) *domain.Session {
	return &domain.Session{
		SessionID: "s1",
		Metrics:   domain.HealthMetrics{HeartRate: hr, BloodPressure: "120/80", Temperature: temp},
	}
}

func fixture(sess *domain.Session, entries []domain.EmotionEntry) Service {
	ss := &mockSessionStore{}
	es := &mockEntryStore{}
	ss.On("Get", mock.Anything, "s1").Return(sess, nil)
	es.On("ListBySession", mock.Anything, "s1").Return(entries, nil)
	return NewService(ss, es)
}

func titles(suggestions []domain.Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Title)
	}
	return out
}

// --- Suggestions ---

func TestSuggestions_SessionMissing(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Get", mock.Anything, "s1").Return(nil, domain.ErrNotFound)

	svc := NewService(ss, nil)
	_, err := svc.Suggestions(context.Background(), "s1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSuggestions_NoEntries_OnlyGeneralTips(t *testing.T) {
	svc := fixture(sessionWith(72, 98.6), []domain.EmotionEntry{})
	out, err := svc.Suggestions(context.Background(), "s1")

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "general", out[0].Type)
	assert.Equal(t, "Daily Wellness Tips", out[0].Title)
}

func TestSuggestions_HighRiskEntry_UrgentFirst(t *testing.T) {
	svc := fixture(sessionWith(72, 98.6), []domain.EmotionEntry{
		{EntryID: "e2", RiskLevel: domain.RiskHigh},
		{EntryID: "e1", RiskLevel: domain.RiskLow},
	})
	out, err := svc.Suggestions(context.Background(), "s1")

	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "urgent", out[0].Type)
	assert.Contains(t, out[0].Actions, "Call 988 (Suicide & Crisis Lifeline)")
}

func TestSuggestions_MediumRiskEntry_StressRelief(t *testing.T) {
	svc := fixture(sessionWith(72, 98.6), []domain.EmotionEntry{
		{EntryID: "e1", RiskLevel: domain.RiskMedium},
	})
	out, err := svc.Suggestions(context.Background(), "s1")

	require.NoError(t, err)
	assert.Contains(t, titles(out), "Stress Relief Techniques")
}

func TestSuggestions_LowRiskEntry_Maintenance(t *testing.T) {
	svc := fixture(sessionWith(72, 98.6), []domain.EmotionEntry{
		{EntryID: "e1", RiskLevel: domain.RiskLow},
	})
	out, err := svc.Suggestions(context.Background(), "s1")

	require.NoError(t, err)
	assert.Contains(t, titles(out), "Maintain Your Wellbeing")
}

func TestSuggestions_ElevatedVitals_AddPhysicalAdvice(t *testing.T) {
	svc := fixture(sessionWith(110, 100.2), []domain.EmotionEntry{})
	out, err := svc.Suggestions(context.Background(), "s1")

	require.NoError(t, err)
	got := titles(out)
	assert.Contains(t, got, "Elevated Heart Rate")
	assert.Contains(t, got, "Elevated Temperature")
	// General tips close the list.
	assert.Equal(t, "Daily Wellness Tips", out[len(out)-1].Title)
}

func TestSuggestions_BoundaryVitals_NoPhysicalAdvice(t *testing.T) {
	// Thresholds are exclusive: exactly 100 bpm / 99.5 F stays quiet.
	svc := fixture(sessionWith(100, 99.5), []domain.EmotionEntry{})
	out, err := svc.Suggestions(context.Background(), "s1")

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Daily Wellness Tips", out[0].Title)
}
