package wellness

import (
	"context"

	"github.com/caretaker-api/internal/domain"
)

// Metric thresholds that trigger physical-health advice.
const (
	highHeartRate   = 100
	highTemperature = 99.5
)

type Service interface {
	// Suggestions derives wellness advice from the latest emotion entry's
	// risk level and the session's vitals snapshot.
	Suggestions(ctx context.Context, sessionID string) ([]domain.Suggestion, error)
}

type sessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
}

type entryStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.EmotionEntry, error)
}

type service struct {
	sessions sessionStore
	entries  entryStore
}

func NewService(sessions sessionStore, entries entryStore) Service {
	return &service{sessions: sessions, entries: entries}
}

func (s *service) Suggestions(ctx context.Context, sessionID string) ([]domain.Suggestion, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var out []domain.Suggestion
	if len(entries) > 0 {
		out = append(out, moodSuggestion(entries[0].RiskLevel))
	}
	if sess.Metrics.HeartRate > highHeartRate {
		out = append(out, domain.Suggestion{
			Type:        "physical",
			Title:       "Elevated Heart Rate",
			Description: "Your heart rate is elevated. Consider these calming activities.",
			Actions: []string{
				"Practice slow, deep breathing",
				"Sit or lie down in a quiet space",
				"Avoid caffeine",
				"Contact your doctor if persistent",
			},
		})
	}
	if sess.Metrics.Temperature > highTemperature {
		out = append(out, domain.Suggestion{
			Type:        "physical",
			Title:       "Elevated Temperature",
			Description: "You may have a fever. Take these steps to feel better.",
			Actions: []string{
				"Rest and stay hydrated",
				"Take fever-reducing medication if needed",
				"Monitor temperature regularly",
				"Contact healthcare provider if fever persists",
			},
		})
	}
	out = append(out, domain.Suggestion{
		Type:        "general",
		Title:       "Daily Wellness Tips",
		Description: "Maintain your overall health with these daily practices.",
		Actions: []string{
			"Drink 8 glasses of water",
			"Get 7-9 hours of sleep",
			"Eat nutritious meals",
			"Take breaks from screens",
		},
	})
	return out, nil
}

func moodSuggestion(riskLevel string) domain.Suggestion {
	switch riskLevel {
	case domain.RiskHigh:
		return domain.Suggestion{
			Type:        "urgent",
			Title:       "Immediate Support Needed",
			Description: "Please reach out to a mental health professional or crisis hotline immediately.",
			Actions: []string{
				"Call 988 (Suicide & Crisis Lifeline)",
				"Contact your therapist",
				"Reach out to a trusted friend",
			},
		}
	case domain.RiskMedium:
		return domain.Suggestion{
			Type:        "mental",
			Title:       "Stress Relief Techniques",
			Description: "Try these techniques to improve your mental wellbeing.",
			Actions: []string{
				"Practice deep breathing exercises",
				"Take a 10-minute walk",
				"Listen to calming music",
				"Try meditation",
			},
		}
	default:
		return domain.Suggestion{
			Type:        "maintenance",
			Title:       "Maintain Your Wellbeing",
			Description: "Keep up the good work with these positive habits.",
			Actions: []string{
				"Continue regular exercise",
				"Maintain social connections",
				"Practice gratitude",
				"Get adequate sleep",
			},
		}
	}
}
