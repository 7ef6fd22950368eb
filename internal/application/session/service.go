package session

import (
	"context"
	"fmt"
	"time"

	"github.com/caretaker-api/internal/domain"
	"github.com/caretaker-api/internal/pkg/id"
	"github.com/caretaker-api/internal/pkg/validate"
)

// Baseline vitals shown before the first metrics update.
const (
	defaultHeartRate     = 72
	defaultBloodPressure = "120/80"
	defaultTemperature   = 98.6
)

type Service interface {
	// Create opens a new isolated monitoring session and returns its bearer
	// token. The token is empty when no signing keypair is configured; the
	// session id itself is the fallback credential then.
	Create(ctx context.Context, req domain.CreateSessionRequest) (*domain.Session, string, error)
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateMetrics(ctx context.Context, sessionID string, req domain.UpdateMetricsRequest) (*domain.Session, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
}

// TokenSigner mints bearer tokens for new sessions. A nil signer disables
// token issuance entirely.
type TokenSigner interface {
	Sign(sessionID string) (string, error)
}

type service struct {
	repo   sessionStore
	signer TokenSigner // may be nil
}

func NewService(repo sessionStore, signer TokenSigner) Service {
	return &service{repo: repo, signer: signer}
}

func (s *service) Create(ctx context.Context, req domain.CreateSessionRequest) (*domain.Session, string, error) {
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID: id.New(),
		Label:     req.Label,
		Metrics: domain.HealthMetrics{
			HeartRate:     defaultHeartRate,
			BloodPressure: defaultBloodPressure,
			Temperature:   defaultTemperature,
			LastUpdated:   now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Put(ctx, sess); err != nil {
		return nil, "", err
	}
	var bearer string
	if s.signer != nil {
		var err error
		if bearer, err = s.signer.Sign(sess.SessionID); err != nil {
			return nil, "", err
		}
	}
	return sess, bearer, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	return sess, nil
}

func (s *service) UpdateMetrics(ctx context.Context, sessionID string, req domain.UpdateMetricsRequest) (*domain.Session, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if req.HeartRate != nil {
		sess.Metrics.HeartRate = *req.HeartRate
	}
	if req.BloodPressure != nil {
		sess.Metrics.BloodPressure = *req.BloodPressure
	}
	if req.Temperature != nil {
		sess.Metrics.Temperature = *req.Temperature
	}
	now := time.Now().UTC()
	sess.Metrics.LastUpdated = now
	sess.UpdatedAt = now
	if err := s.repo.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
