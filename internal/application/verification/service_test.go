package verification

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/caretaker-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The OTP flow mutates contact and challenge state across calls, so these
// tests run against stateful in-memory fakes instead of expectation mocks.

// --- fakes ---

func storeKey(sessionID, contactID string) string { return sessionID + "/" + contactID }

type fakeContactStore struct {
	mu sync.Mutex
	m  map[string]*domain.Contact
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{m: make(map[string]*domain.Contact)}
}

func (f *fakeContactStore) Put(ctx context.Context, c *domain.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.m[storeKey(c.SessionID, c.ContactID)] = &cp
	return nil
}

func (f *fakeContactStore) Get(ctx context.Context, sessionID, contactID string) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.m[storeKey(sessionID, contactID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContactStore) Delete(ctx context.Context, sessionID, contactID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, storeKey(sessionID, contactID))
	return nil
}

type fakeChallengeStore struct {
	mu sync.Mutex
	m  map[string]*domain.OtpChallenge
}

func newFakeChallengeStore() *fakeChallengeStore {
	return &fakeChallengeStore{m: make(map[string]*domain.OtpChallenge)}
}

func (f *fakeChallengeStore) Put(ctx context.Context, ch *domain.OtpChallenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *ch
	f.m[storeKey(ch.SessionID, ch.ContactID)] = &cp
	return nil
}

func (f *fakeChallengeStore) Get(ctx context.Context, sessionID, contactID string) (*domain.OtpChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.m[storeKey(sessionID, contactID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *ch
	return &cp, nil
}

func (f *fakeChallengeStore) Delete(ctx context.Context, sessionID, contactID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, storeKey(sessionID, contactID))
	return nil
}

type alertRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (a *alertRecorder) Append(ctx context.Context, al *domain.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, al.Message)
	return nil
}

func (a *alertRecorder) messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.msgs...)
}

type smsRecorder struct {
	mu   sync.Mutex
	err  error
	sent []string // "<to>: <message>"
}

func (s *smsRecorder) SendSMS(ctx context.Context, to, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to+": "+message)
	return s.err
}

func (s *smsRecorder) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sent...)
}

// gatedSMS blocks its first send until released, so a test can order a
// delivery confirmation after a cancel or resend.
type gatedSMS struct {
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func newGatedSMS() *gatedSMS { return &gatedSMS{release: make(chan struct{})} }

func (g *gatedSMS) SendSMS(ctx context.Context, to, message string) error {
	g.mu.Lock()
	g.calls++
	first := g.calls == 1
	g.mu.Unlock()
	if first {
		<-g.release
	}
	return nil
}

type mailRecorder struct {
	mu   sync.Mutex
	sent []string // "<to>: <body>"
}

func (m *mailRecorder) SendEmail(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+": "+body)
	return nil
}

func (m *mailRecorder) messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type stubClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stubClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stubClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// --- fixture ---

type fixture struct {
	svc        Service
	contacts   *fakeContactStore
	challenges *fakeChallengeStore
	alerts     *alertRecorder
	sms        *smsRecorder
	mail       *mailRecorder
	clock      *stubClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		contacts:   newFakeContactStore(),
		challenges: newFakeChallengeStore(),
		alerts:     &alertRecorder{},
		sms:        &smsRecorder{},
		mail:       &mailRecorder{},
		clock:      &stubClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.svc = NewService(ServiceDeps{
		ContactRepo:   f.contacts,
		ChallengeRepo: f.challenges,
		AlertRepo:     f.alerts,
		SMSSender:     f.sms,
		Mailer:        f.mail,
		NotifyTimeout: 5 * time.Second,
		Now:           f.clock.now,
	})
	return f
}

func (f *fixture) seedPending(t *testing.T, email string) {
	t.Helper()
	c := &domain.Contact{
		ContactID: "c1",
		SessionID: "s1",
		Name:      "Dana",
		Phone:     "+15550001111",
		Stage:     domain.StagePending,
	}
	if email != "" {
		c.Email = &email
	}
	require.NoError(t, f.contacts.Put(context.Background(), c))
}

func (f *fixture) storedCode(t *testing.T) string {
	t.Helper()
	ch, err := f.challenges.Get(context.Background(), "s1", "c1")
	require.NoError(t, err)
	return ch.Code
}

// --- Issue ---

func TestIssue_ContactMissing_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Issue(context.Background(), "s1", "ghost", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestIssue_AlreadyVerified_Conflict(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.contacts.Put(context.Background(), &domain.Contact{
		ContactID: "c1", SessionID: "s1", Phone: "+15550001111", Stage: domain.StageVerified,
	}))
	_, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestIssue_InvalidMethod_BadRequest(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "")
	_, err := f.svc.Issue(context.Background(), "s1", "c1", "carrier-pigeon")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestIssue_EmailMethodWithoutAddress_BadRequest(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "")
	_, err := f.svc.Issue(context.Background(), "s1", "c1", domain.MethodEmail)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestIssue_DefaultsToSMS(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "")

	ch, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	f.svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, domain.MethodSMS, ch.Method)
	assert.Len(t, ch.Code, 6)
	n, convErr := strconv.Atoi(ch.Code)
	require.NoError(t, convErr)
	assert.GreaterOrEqual(t, n, 100000)
	assert.LessOrEqual(t, n, 999999)
	assert.Equal(t, f.clock.now().Add(10*time.Minute), ch.ExpiresAt)
	assert.Equal(t, 0, ch.Attempts)
	assert.Equal(t, 3, ch.MaxAttempts)

	// The contact is flagged while verification is underway.
	c, _ := f.contacts.Get(context.Background(), "s1", "c1")
	assert.True(t, c.InProgress)
	assert.Equal(t, domain.StagePending, c.Stage)

	sent := f.sms.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "+15550001111")
	assert.Contains(t, sent[0], ch.Code)
	assert.Contains(t, f.alerts.messages(), "Verification code sent via sms to +15550001111")
}

func TestIssue_EmailMethod_UsesMailer(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "dana@example.com")

	ch, err := f.svc.Issue(context.Background(), "s1", "c1", domain.MethodEmail)
	f.svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, domain.MethodEmail, ch.Method)
	assert.Empty(t, f.sms.messages())
	sent := f.mail.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "dana@example.com")
	assert.Contains(t, sent[0], ch.Code)
}

func TestIssue_Resend_ResetsAttemptsAndDeadline(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "")

	first, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	require.NoError(t, err)

	// Burn two attempts, then resend five minutes later.
	_, err = f.svc.Validate(context.Background(), "s1", "c1", "000000")
	require.Error(t, err)
	_, err = f.svc.Validate(context.Background(), "s1", "c1", "000000")
	require.Error(t, err)
	f.clock.advance(5 * time.Minute)

	second, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	f.svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, 0, second.Attempts)
	assert.Equal(t, first.ExpiresAt.Add(5*time.Minute), second.ExpiresAt)

	// The stored challenge is the new one; the old code is gone.
	stored, getErr := f.challenges.Get(context.Background(), "s1", "c1")
	require.NoError(t, getErr)
	assert.Equal(t, second.Code, stored.Code)
	assert.Equal(t, 0, stored.Attempts)

	// The superseded code no longer validates; the fresh one promotes.
	var incorrect *domain.IncorrectCodeError
	_, err = f.svc.Validate(context.Background(), "s1", "c1", first.Code)
	require.ErrorAs(t, err, &incorrect)

	c, err := f.svc.Validate(context.Background(), "s1", "c1", second.Code)
	require.NoError(t, err)
	assert.Equal(t, domain.StageVerified, c.Stage)
}

func TestIssue_DeliveryFailure_AppendsFailureAlert(t *testing.T) {
	f := newFixture(t)
	f.sms.err = errors.New("sns outage")
	f.seedPending(t, "")

	_, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	f.svc.Wait()

	require.NoError(t, err, "issuance itself must not fail on delivery errors")
	msgs := f.alerts.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Failed to send verification code")
}

func newGatedFixture(t *testing.T) (*fixture, *gatedSMS) {
	t.Helper()
	f := newFixture(t)
	gate := newGatedSMS()
	f.svc = NewService(ServiceDeps{
		ContactRepo:   f.contacts,
		ChallengeRepo: f.challenges,
		AlertRepo:     f.alerts,
		SMSSender:     gate,
		Mailer:        f.mail,
		NotifyTimeout: 5 * time.Second,
		Now:           f.clock.now,
	})
	return f, gate
}

func TestIssue_ConfirmationAfterCancel_Dropped(t *testing.T) {
	f, gate := newGatedFixture(t)
	f.seedPending(t, "")

	_, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	require.NoError(t, err)

	// The send is still in flight when the verification is torn down.
	require.NoError(t, f.svc.Cancel(context.Background(), "s1", "c1"))
	close(gate.release)
	f.svc.Wait()

	assert.Empty(t, f.alerts.messages(),
		"a confirmation for a cancelled challenge must be dropped")
}

func TestIssue_ConfirmationAfterResend_Dropped(t *testing.T) {
	f, gate := newGatedFixture(t)
	f.seedPending(t, "")

	_, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	require.NoError(t, err)
	_, err = f.svc.Issue(context.Background(), "s1", "c1", "")
	require.NoError(t, err)

	close(gate.release)
	f.svc.Wait()

	// Whichever send was held back belongs to a superseded code by the time
	// it completes, so exactly one confirmation lands.
	msgs := f.alerts.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Verification code sent via sms")
}

// --- Validate ---

func TestValidate_NoChallenge_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Validate(context.Background(), "s1", "c1", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestValidate_Expired(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "")
	_, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	require.NoError(t, err)
	f.svc.Wait()

	f.clock.advance(11 * time.Minute)
	_, err = f.svc.Validate(context.Background(), "s1", "c1", f.storedCode(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOTPExpired))
}

func TestValidate_WrongCode_CountsDownAttempts(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "")
	_, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	require.NoError(t, err)
	f.svc.Wait()

	var incorrect *domain.IncorrectCodeError

	_, err = f.svc.Validate(context.Background(), "s1", "c1", "000000")
	require.ErrorAs(t, err, &incorrect)
	assert.Equal(t, 2, incorrect.Remaining)

	_, err = f.svc.Validate(context.Background(), "s1", "c1", "000000")
	require.ErrorAs(t, err, &incorrect)
	assert.Equal(t, 1, incorrect.Remaining)

	// Third miss exhausts the challenge outright.
	_, err = f.svc.Validate(context.Background(), "s1", "c1", "000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAttemptsExhausted))

	// So does every call after it, even with the right code.
	_, err = f.svc.Validate(context.Background(), "s1", "c1", f.storedCode(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAttemptsExhausted))
}

func TestValidate_HappyPath_PromotesContact(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "dana@example.com")
	_, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	require.NoError(t, err)
	f.svc.Wait()

	c, err := f.svc.Validate(context.Background(), "s1", "c1", f.storedCode(t))
	require.NoError(t, err)
	assert.Equal(t, domain.StageVerified, c.Stage)
	assert.Nil(t, c.Email, "email is dropped on promotion")
	assert.False(t, c.InProgress)
	assert.Equal(t, "Dana", c.Name)
	assert.Equal(t, "+15550001111", c.Phone)

	// The challenge is consumed: a repeat validate has nothing to check.
	_, err = f.svc.Validate(context.Background(), "s1", "c1", "123456")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestValidate_LastAttemptWithCorrectCode_Succeeds(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "")
	_, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	require.NoError(t, err)
	f.svc.Wait()

	_, err = f.svc.Validate(context.Background(), "s1", "c1", "000000")
	require.Error(t, err)
	_, err = f.svc.Validate(context.Background(), "s1", "c1", "000000")
	require.Error(t, err)

	c, err := f.svc.Validate(context.Background(), "s1", "c1", f.storedCode(t))
	require.NoError(t, err)
	assert.Equal(t, domain.StageVerified, c.Stage)
}

// --- Cancel ---

func TestCancel_PendingContact_RemovesContactAndChallenge(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "")
	_, err := f.svc.Issue(context.Background(), "s1", "c1", "")
	require.NoError(t, err)
	f.svc.Wait()

	require.NoError(t, f.svc.Cancel(context.Background(), "s1", "c1"))

	_, err = f.contacts.Get(context.Background(), "s1", "c1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = f.challenges.Get(context.Background(), "s1", "c1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCancel_VerifiedContact_Untouched(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.contacts.Put(context.Background(), &domain.Contact{
		ContactID: "c1", SessionID: "s1", Phone: "+15550001111", Stage: domain.StageVerified,
	}))

	require.NoError(t, f.svc.Cancel(context.Background(), "s1", "c1"))

	c, err := f.contacts.Get(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageVerified, c.Stage)
}

func TestCancel_NothingActive_NoError(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.svc.Cancel(context.Background(), "s1", "ghost"))
}

// --- generateCode ---

func TestGenerateCode_SixDigitsNoLeadingZero(t *testing.T) {
	for i := 0; i < 64; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}
