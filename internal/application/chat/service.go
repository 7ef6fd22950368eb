package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caretaker-api/internal/application/risk"
	"github.com/caretaker-api/internal/domain"
	"github.com/caretaker-api/internal/pkg/id"
	"github.com/caretaker-api/internal/pkg/validate"
)

// Canned assistant replies keyed to the scan outcome.
const (
	replyDefault = "I understand how you're feeling. Would you like to talk about what's bothering you?"
	replyMedium  = "I can hear that you're going through a difficult time. Remember, it's okay to take things one step at a time. Would you like some coping strategies?"
	replyCrisis  = "I'm very concerned about what you've shared. Please reach out to your emergency contacts or call 988 (Crisis Lifeline) immediately. You're not alone, and help is available."
)

type Service interface {
	// Send scans a chat message for crisis language and returns the
	// assistant's reply. High-severity messages are also recorded in the
	// session's alert log.
	Send(ctx context.Context, sessionID string, req domain.ChatRequest) (*domain.ChatReply, error)
}

type contactStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.Contact, error)
}

type alertStore interface {
	Append(ctx context.Context, a *domain.Alert) error
}

type service struct {
	contacts contactStore
	alerts   alertStore
}

func NewService(contacts contactStore, alerts alertStore) Service {
	return &service{contacts: contacts, alerts: alerts}
}

func (s *service) Send(ctx context.Context, sessionID string, req domain.ChatRequest) (*domain.ChatReply, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	contacts, err := s.contacts.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !hasVerified(contacts) {
		return nil, fmt.Errorf("at least one verified emergency contact is required before using chat: %w", domain.ErrForbidden)
	}

	categories, severity := risk.Scan(req.Message)
	tier := risk.ClassifyKeywords([]string{req.Message})
	reply := replyDefault
	switch {
	case severity == domain.SeverityCritical || severity == domain.SeverityHigh || tier == risk.TierDanger:
		reply = replyCrisis
		s.recordChatAlert(ctx, sessionID, req.Message, categories)
	case severity == domain.SeverityMedium || tier == risk.TierWarning:
		reply = replyMedium
	}
	return &domain.ChatReply{Reply: reply, Severity: severity, Categories: categories}, nil
}

func (s *service) recordChatAlert(ctx context.Context, sessionID, message string, categories []string) {
	now := time.Now().UTC()
	msg := fmt.Sprintf("HIGH-RISK CHAT MESSAGE DETECTED\nTime: %s\nMessage: %q\nDetected Issues: %s\n\nUser may need immediate support.",
		now.Format(time.RFC1123), message, strings.Join(categories, ", "))
	a := &domain.Alert{
		AlertID:   id.New(),
		SessionID: sessionID,
		Message:   msg,
		CreatedAt: now,
	}
	// Best effort: the reply must not fail because the log write did.
	if err := s.alerts.Append(ctx, a); err != nil {
		slog.Warn("failed to append chat alert", "session_id", sessionID, "err", err)
	}
}

func hasVerified(contacts []domain.Contact) bool {
	for _, c := range contacts {
		if c.Stage == domain.StageVerified {
			return true
		}
	}
	return false
}
