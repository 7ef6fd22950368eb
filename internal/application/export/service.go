package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/caretaker-api/internal/domain"
	"github.com/caretaker-api/internal/pkg/id"
)

const presignTTL = 15 * time.Minute

// Snapshot is the exported view of one session.
type Snapshot struct {
	Session    *domain.Session       `json:"session"`
	Entries    []domain.EmotionEntry `json:"entries"`
	Alerts     []domain.Alert        `json:"alerts"`
	Contacts   []domain.Contact      `json:"verified_contacts"`
	ExportedAt time.Time             `json:"exported_at"`
}

type Service interface {
	// Export uploads a JSON snapshot of the session to object storage and
	// returns a time-limited download URL together with the object key.
	Export(ctx context.Context, sessionID string) (url, key string, err error)
}

type sessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
}

type entryStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.EmotionEntry, error)
}

type alertStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.Alert, error)
}

type contactStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]domain.Contact, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	sessions sessionStore
	entries  entryStore
	alerts   alertStore
	contacts contactStore
	store    objectStore
}

type ServiceDeps struct {
	SessionRepo sessionStore
	EntryRepo   entryStore
	AlertRepo   alertStore
	ContactRepo contactStore
	ObjectStore objectStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		sessions: deps.SessionRepo,
		entries:  deps.EntryRepo,
		alerts:   deps.AlertRepo,
		contacts: deps.ContactRepo,
		store:    deps.ObjectStore,
	}
}

func (s *service) Export(ctx context.Context, sessionID string) (string, string, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	entries, err := s.entries.ListBySession(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	alerts, err := s.alerts.ListBySession(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	contacts, err := s.contacts.ListBySession(ctx, sessionID)
	if err != nil {
		return "", "", err
	}

	snap := Snapshot{
		Session:    sess,
		Entries:    entries,
		Alerts:     alerts,
		Contacts:   onlyVerified(contacts),
		ExportedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", "", err
	}

	key := fmt.Sprintf("exports/%s/%s.json", sessionID, id.New())
	if _, err := s.store.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return "", "", err
	}
	url, err := s.store.PresignedURL(ctx, key, presignTTL)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

// Pending contacts never leave the system, not even in exports.
func onlyVerified(contacts []domain.Contact) []domain.Contact {
	out := make([]domain.Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.Stage == domain.StageVerified {
			out = append(out, c)
		}
	}
	return out
}
