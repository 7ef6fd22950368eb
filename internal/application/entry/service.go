package entry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/caretaker-api/internal/application/alert"
	"github.com/caretaker-api/internal/application/risk"
	"github.com/caretaker-api/internal/domain"
	"github.com/caretaker-api/internal/pkg/id"
)

type Service interface {
	// Log classifies and records one mood submission. High-risk verdicts
	// raise alerts and fan notifications out to every verified contact.
	Log(ctx context.Context, sessionID string, req domain.CreateEntryRequest) (*domain.EmotionEntry, error)
	List(ctx context.Context, sessionID string) ([]domain.EmotionEntry, error)
	Alerts(ctx context.Context, sessionID string) ([]domain.Alert, error)
	// Wait blocks until all in-flight notification sends have finished.
	Wait()
}

type entryStore interface {
	Put(ctx context.Context, e *domain.EmotionEntry) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.EmotionEntry, error)
}

type contactStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.Contact, error)
}

type alertStore interface {
	Append(ctx context.Context, a *domain.Alert) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.Alert, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	entries       entryStore
	contacts      contactStore
	alerts        alertStore
	sms           smsSender
	notifyTimeout time.Duration
	wg            sync.WaitGroup
}

type ServiceDeps struct {
	EntryRepo     entryStore
	ContactRepo   contactStore
	AlertRepo     alertStore
	SMSSender     smsSender
	NotifyTimeout time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		entries:       deps.EntryRepo,
		contacts:      deps.ContactRepo,
		alerts:        deps.AlertRepo,
		sms:           deps.SMSSender,
		notifyTimeout: deps.NotifyTimeout,
	}
}

func (s *service) Log(ctx context.Context, sessionID string, req domain.CreateEntryRequest) (*domain.EmotionEntry, error) {
	contacts, err := s.contacts.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	verified := filterVerified(contacts)
	if len(verified) == 0 {
		return nil, fmt.Errorf("at least one verified emergency contact is required before logging emotions: %w", domain.ErrForbidden)
	}

	keywords := splitKeywords(req.Keywords)
	verdict := risk.Evaluate(req.Mood, keywords, req.Notes)

	e := &domain.EmotionEntry{
		EntryID:            id.New(),
		SessionID:          sessionID,
		Mood:               req.Mood,
		Keywords:           keywords,
		Notes:              req.Notes,
		RiskLevel:          verdict.Level,
		DetectedCategories: verdict.Categories,
		AlertTriggered:     verdict.AlertTriggered,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.entries.Put(ctx, e); err != nil {
		return nil, err
	}

	if verdict.AlertTriggered {
		alerts, notifications := alert.Dispatch(verdict, e, verified)
		for _, msg := range alerts {
			s.appendAlert(ctx, sessionID, msg)
		}
		names := contactNames(verified)
		for _, n := range notifications {
			s.notify(sessionID, names[n.ContactID], n)
		}
	}
	return e, nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]domain.EmotionEntry, error) {
	return s.entries.ListBySession(ctx, sessionID)
}

func (s *service) Alerts(ctx context.Context, sessionID string) ([]domain.Alert, error) {
	return s.alerts.ListBySession(ctx, sessionID)
}

func (s *service) Wait() { s.wg.Wait() }

// notify sends one emergency notification in the background and appends the
// delivery outcome to the alert log. Entry logging never blocks on delivery.
func (s *service) notify(sessionID, name string, n domain.Notification) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.sms.SendSMS(ctx, n.Target, n.Message); err != nil {
			slog.Warn("emergency alert delivery failed", "contact_id", n.ContactID, "err", err)
			s.appendAlert(ctx, sessionID, fmt.Sprintf("Failed to deliver emergency alert to %s at %s. Please reach out directly.", name, n.Target))
			return
		}
		s.appendAlert(ctx, sessionID, fmt.Sprintf("Emergency alert sent to %s at %s", name, n.Target))
	}()
}

func (s *service) appendAlert(ctx context.Context, sessionID, msg string) {
	a := &domain.Alert{
		AlertID:   id.New(),
		SessionID: sessionID,
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.alerts.Append(ctx, a); err != nil {
		slog.Warn("failed to append alert", "session_id", sessionID, "err", err)
	}
}

func splitKeywords(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func filterVerified(contacts []domain.Contact) []domain.Contact {
	var out []domain.Contact
	for _, c := range contacts {
		if c.Stage == domain.StageVerified {
			out = append(out, c)
		}
	}
	return out
}

func contactNames(contacts []domain.Contact) map[string]string {
	m := make(map[string]string, len(contacts))
	for _, c := range contacts {
		m[c.ContactID] = c.Name
	}
	return m
}
