package contact

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caretaker-api/internal/domain"
	"github.com/caretaker-api/internal/pkg/id"
	"github.com/caretaker-api/internal/pkg/validate"
)

// Minimum 10 characters of digits/spaces/dashes/parens, optional leading +.
// Matches the submission policy of the dashboard's add-contact form.
var phoneRe = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)

type Service interface {
	// AddPending validates and records a new contact in the pending stage.
	// The phone number must be unique across pending and verified contacts
	// at the moment of submission.
	AddPending(ctx context.Context, sessionID string, req domain.CreateContactRequest) (*domain.Contact, error)
	List(ctx context.Context, sessionID string) ([]domain.Contact, error)
	// RemoveVerified deletes a verified contact by explicit user action.
	RemoveVerified(ctx context.Context, sessionID, contactID string) error
}

type contactStore interface {
	Put(ctx context.Context, c *domain.Contact) error
	Get(ctx context.Context, sessionID, contactID string) (*domain.Contact, error)
	Delete(ctx context.Context, sessionID, contactID string) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.Contact, error)
}

type service struct {
	repo contactStore
}

func NewService(repo contactStore) Service {
	return &service{repo: repo}
}

func (s *service) AddPending(ctx context.Context, sessionID string, req domain.CreateContactRequest) (*domain.Contact, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	phone := strings.TrimSpace(req.Phone)
	if !phoneRe.MatchString(phone) {
		return nil, fmt.Errorf("phone must contain at least 10 digits, optionally prefixed with +: %w", domain.ErrBadRequest)
	}

	existing, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c.Phone == phone {
			return nil, fmt.Errorf("phone number already registered as an emergency contact: %w", domain.ErrConflict)
		}
	}

	now := time.Now().UTC()
	c := &domain.Contact{
		ContactID:    id.New(),
		SessionID:    sessionID,
		Name:         strings.TrimSpace(req.Name),
		Phone:        phone,
		Email:        req.Email,
		Relationship: req.Relationship,
		Stage:        domain.StagePending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) List(ctx context.Context, sessionID string) ([]domain.Contact, error) {
	return s.repo.ListBySession(ctx, sessionID)
}

func (s *service) RemoveVerified(ctx context.Context, sessionID, contactID string) error {
	c, err := s.repo.Get(ctx, sessionID, contactID)
	if err != nil {
		return fmt.Errorf("contact not found: %w", domain.ErrNotFound)
	}
	if c.Stage != domain.StageVerified {
		return fmt.Errorf("contact is not verified; cancel its verification instead: %w", domain.ErrBadRequest)
	}
	return s.repo.Delete(ctx, sessionID, contactID)
}
