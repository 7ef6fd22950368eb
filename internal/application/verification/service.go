package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/caretaker-api/internal/domain"
	"github.com/caretaker-api/internal/pkg/id"
)

// Verification policy. A code is valid for ten minutes and may be tried three
// times; both limits reset when a fresh code is issued.
const (
	codeTTL     = 10 * time.Minute
	maxAttempts = 3
)

type Service interface {
	// Issue generates a fresh challenge for a pending contact and delivers
	// the code in the background. Any prior challenge for the contact is
	// discarded first, so Issue doubles as resend.
	Issue(ctx context.Context, sessionID, contactID, method string) (*domain.OtpChallenge, error)
	// Validate checks a submitted code against the contact's active
	// challenge and promotes the contact to verified on a match.
	Validate(ctx context.Context, sessionID, contactID, code string) (*domain.Contact, error)
	// Cancel discards the pending contact and its challenge. Always succeeds.
	Cancel(ctx context.Context, sessionID, contactID string) error
	// Wait blocks until all in-flight code deliveries have finished.
	Wait()
}

type contactStore interface {
	Put(ctx context.Context, c *domain.Contact) error
	Get(ctx context.Context, sessionID, contactID string) (*domain.Contact, error)
	Delete(ctx context.Context, sessionID, contactID string) error
}

type challengeStore interface {
	Put(ctx context.Context, ch *domain.OtpChallenge) error
	Get(ctx context.Context, sessionID, contactID string) (*domain.OtpChallenge, error)
	Delete(ctx context.Context, sessionID, contactID string) error
}

type alertStore interface {
	Append(ctx context.Context, a *domain.Alert) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	contacts      contactStore
	challenges    challengeStore
	alerts        alertStore
	sms           smsSender
	mail          mailer
	notifyTimeout time.Duration
	now           func() time.Time
	locks         keyedMutex
	wg            sync.WaitGroup
}

type ServiceDeps struct {
	ContactRepo   contactStore
	ChallengeRepo challengeStore
	AlertRepo     alertStore
	SMSSender     smsSender
	Mailer        mailer
	NotifyTimeout time.Duration
	Now           func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		contacts:      deps.ContactRepo,
		challenges:    deps.ChallengeRepo,
		alerts:        deps.AlertRepo,
		sms:           deps.SMSSender,
		mail:          deps.Mailer,
		notifyTimeout: deps.NotifyTimeout,
		now:           now,
	}
}

func (s *service) Issue(ctx context.Context, sessionID, contactID, method string) (*domain.OtpChallenge, error) {
	unlock := s.locks.lock(sessionID + "/" + contactID)
	defer unlock()

	c, err := s.contacts.Get(ctx, sessionID, contactID)
	if err != nil {
		return nil, fmt.Errorf("contact not found: %w", domain.ErrNotFound)
	}
	if c.Stage != domain.StagePending {
		return nil, fmt.Errorf("contact is already verified: %w", domain.ErrConflict)
	}

	if method == "" {
		method = domain.MethodSMS
	}
	if method != domain.MethodSMS && method != domain.MethodEmail {
		return nil, fmt.Errorf("delivery method must be sms or email: %w", domain.ErrBadRequest)
	}
	if method == domain.MethodEmail && (c.Email == nil || *c.Email == "") {
		return nil, fmt.Errorf("email delivery requested but contact has no email address: %w", domain.ErrBadRequest)
	}

	// Supersede any outstanding challenge before the new code exists, so no
	// two challenges for the same contact are ever live at once.
	if err := s.challenges.Delete(ctx, sessionID, contactID); err != nil {
		slog.Warn("failed to discard prior challenge", "contact_id", contactID, "err", err)
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	ch := &domain.OtpChallenge{
		SessionID:   sessionID,
		ContactID:   contactID,
		Phone:       c.Phone,
		Email:       c.Email,
		Code:        code,
		Method:      method,
		GeneratedAt: now,
		ExpiresAt:   now.Add(codeTTL),
		Attempts:    0,
		MaxAttempts: maxAttempts,
	}
	if err := s.challenges.Put(ctx, ch); err != nil {
		return nil, err
	}

	c.InProgress = true
	c.UpdatedAt = now
	if err := s.contacts.Put(ctx, c); err != nil {
		return nil, err
	}

	s.deliver(ch)
	return ch, nil
}

func (s *service) Validate(ctx context.Context, sessionID, contactID, code string) (*domain.Contact, error) {
	unlock := s.locks.lock(sessionID + "/" + contactID)
	defer unlock()

	ch, err := s.challenges.Get(ctx, sessionID, contactID)
	if err != nil {
		return nil, fmt.Errorf("no active verification for contact: %w", domain.ErrNotFound)
	}
	if s.now().After(ch.ExpiresAt) {
		return nil, fmt.Errorf("code expired, request a new one: %w", domain.ErrOTPExpired)
	}
	if ch.Attempts >= ch.MaxAttempts {
		return nil, fmt.Errorf("request a new code: %w", domain.ErrAttemptsExhausted)
	}

	// The attempt is spent before the comparison, success or not.
	ch.Attempts++
	if err := s.challenges.Put(ctx, ch); err != nil {
		return nil, err
	}

	if code != ch.Code {
		remaining := ch.MaxAttempts - ch.Attempts
		if remaining <= 0 {
			return nil, fmt.Errorf("request a new code: %w", domain.ErrAttemptsExhausted)
		}
		return nil, &domain.IncorrectCodeError{Remaining: remaining}
	}

	c, err := s.contacts.Get(ctx, sessionID, contactID)
	if err != nil {
		return nil, fmt.Errorf("pending contact no longer exists: %w", domain.ErrNotFound)
	}

	// Promote. The challenge and the pending stage cease to exist together,
	// so a repeated validate call lands on NotFound.
	c.Stage = domain.StageVerified
	c.Email = nil
	c.InProgress = false
	c.UpdatedAt = s.now().UTC()
	if err := s.contacts.Put(ctx, c); err != nil {
		return nil, err
	}
	if err := s.challenges.Delete(ctx, sessionID, contactID); err != nil {
		slog.Warn("failed to delete validated challenge", "contact_id", contactID, "err", err)
	}
	return c, nil
}

func (s *service) Cancel(ctx context.Context, sessionID, contactID string) error {
	unlock := s.locks.lock(sessionID + "/" + contactID)
	defer unlock()

	if err := s.challenges.Delete(ctx, sessionID, contactID); err != nil {
		slog.Warn("failed to delete challenge on cancel", "contact_id", contactID, "err", err)
	}
	c, err := s.contacts.Get(ctx, sessionID, contactID)
	if err != nil || c.Stage != domain.StagePending {
		// Nothing pending to tear down; cancel is a no-op then.
		return nil
	}
	return s.contacts.Delete(ctx, sessionID, contactID)
}

func (s *service) Wait() { s.wg.Wait() }

// deliver sends the code through the chosen channel in the background. The
// outcome is appended to the alert log only if the challenge still resolves
// to the same code: a late confirmation for a superseded or cancelled
// challenge is dropped.
func (s *service) deliver(ch *domain.OtpChallenge) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		var err error
		var target string
		switch ch.Method {
		case domain.MethodEmail:
			target = *ch.Email
			err = s.mail.SendEmail(target, "Verify your emergency contact",
				fmt.Sprintf("Your CareTaker verification code is %s. It expires in 10 minutes.", ch.Code))
		default:
			target = ch.Phone
			err = s.sms.SendSMS(ctx, target,
				fmt.Sprintf("Your CareTaker verification code is %s. It expires in 10 minutes.", ch.Code))
		}

		current, getErr := s.challenges.Get(ctx, ch.SessionID, ch.ContactID)
		if getErr != nil || current.Code != ch.Code {
			return
		}
		if err != nil {
			slog.Warn("verification code delivery failed", "contact_id", ch.ContactID, "method", ch.Method, "err", err)
			s.appendAlert(ctx, ch.SessionID, fmt.Sprintf("Failed to send verification code to %s. The code is still valid; you can also request a new one.", target))
			return
		}
		s.appendAlert(ctx, ch.SessionID, fmt.Sprintf("Verification code sent via %s to %s", ch.Method, target))
	}()
}

func (s *service) appendAlert(ctx context.Context, sessionID, msg string) {
	a := &domain.Alert{
		AlertID:   id.New(),
		SessionID: sessionID,
		Message:   msg,
		CreatedAt: s.now().UTC(),
	}
	if err := s.alerts.Append(ctx, a); err != nil {
		slog.Warn("failed to append alert", "session_id", sessionID, "err", err)
	}
}

// generateCode draws a 6-digit code in [100000, 999999] from crypto/rand.
// The lower bound avoids leading-zero ambiguity in SMS clients.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// keyedMutex serialises operations per contact so a resend can never race a
// validate for the same challenge.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()
	l.Lock()
	return l.Unlock
}
