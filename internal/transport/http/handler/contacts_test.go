package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caretaker-api/internal/domain"
	"github.com/caretaker-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockContactSvc struct{ mock.Mock }

func (m *mockContactSvc) AddPending(ctx context.Context, sessionID string, req domain.CreateContactRequest) (*domain.Contact, error) {
	args := m.Called(ctx, sessionID, req)
	if c, _ := args.Get(0).(*domain.Contact); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockContactSvc) List(ctx context.Context, sessionID string) ([]domain.Contact, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.Contact), args.Error(1)
}
func (m *mockContactSvc) RemoveVerified(ctx context.Context, sessionID, contactID string) error {
	return m.Called(ctx, sessionID, contactID).Error(0)
}

type mockVerificationSvc struct{ mock.Mock }

func (m *mockVerificationSvc) Issue(ctx context.Context, sessionID, contactID, method string) (*domain.OtpChallenge, error) {
	args := m.Called(ctx, sessionID, contactID, method)
	if ch, _ := args.Get(0).(*domain.OtpChallenge); ch != nil {
		return ch, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationSvc) Validate(ctx context.Context, sessionID, contactID, code string) (*domain.Contact, error) {
	args := m.Called(ctx, sessionID, contactID, code)
	if c, _ := args.Get(0).(*domain.Contact); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockVerificationSvc) Cancel(ctx context.Context, sessionID, contactID string) error {
	return m.Called(ctx, sessionID, contactID).Error(0)
}
func (m *mockVerificationSvc) Wait() { m.Called() }

// --- helpers ---

// sessionReq builds a request carrying the session id the way the auth
// middleware would have injected it.
func sessionReq(method, target, sid string, body []byte) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("X-Session-ID", sid)
	return r
}

// serveWithSession wraps the handler with HeaderAuth before serving.
func serveWithSession(h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.HeaderAuth()(h).ServeHTTP(w, r)
}

// withChiParams injects chi URL params into the request context.
func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// --- Create ---

func TestContactCreate_MissingSession(t *testing.T) {
	h := NewContactHandler(&mockContactSvc{}, &mockVerificationSvc{})
	r := httptest.NewRequest(http.MethodPost, "/v1/contacts", bytes.NewBufferString("{}"))
	rr := httptest.NewRecorder()
	h.Create(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestContactCreate_InvalidBody(t *testing.T) {
	h := NewContactHandler(&mockContactSvc{}, &mockVerificationSvc{})
	r := sessionReq(http.MethodPost, "/v1/contacts", "s1", []byte("not-json"))
	rr := httptest.NewRecorder()
	serveWithSession(http.HandlerFunc(h.Create), rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestContactCreate_Conflict(t *testing.T) {
	cs := &mockContactSvc{}
	cs.On("AddPending", mock.Anything, "s1", mock.Anything).Return(nil, domain.ErrConflict)
	h := NewContactHandler(cs, &mockVerificationSvc{})

	body, _ := json.Marshal(domain.CreateContactRequest{Name: "Dana", Phone: "+15550001111"})
	r := sessionReq(http.MethodPost, "/v1/contacts", "s1", body)
	rr := httptest.NewRecorder()
	serveWithSession(http.HandlerFunc(h.Create), rr, r)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestContactCreate_HappyPath_StartsVerification(t *testing.T) {
	cs := &mockContactSvc{}
	vs := &mockVerificationSvc{}
	c := &domain.Contact{ContactID: "c1", Name: "Dana", Phone: "+15550001111", Stage: domain.StagePending}
	ch := &domain.OtpChallenge{ContactID: "c1", Method: domain.MethodSMS, MaxAttempts: 3}
	cs.On("AddPending", mock.Anything, "s1", mock.Anything).Return(c, nil)
	vs.On("Issue", mock.Anything, "s1", "c1", "").Return(ch, nil)
	h := NewContactHandler(cs, vs)

	body, _ := json.Marshal(domain.CreateContactRequest{Name: "Dana", Phone: "+15550001111"})
	r := sessionReq(http.MethodPost, "/v1/contacts", "s1", body)
	rr := httptest.NewRecorder()
	serveWithSession(http.HandlerFunc(h.Create), rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp contactResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "c1", resp.Contact.ContactID)
	require.NotNil(t, resp.Challenge)
	assert.Equal(t, domain.MethodSMS, resp.Challenge.Method)
	cs.AssertExpectations(t)
	vs.AssertExpectations(t)
}

// --- Delete ---

func TestContactDelete_PendingContact_BadRequest(t *testing.T) {
	cs := &mockContactSvc{}
	cs.On("RemoveVerified", mock.Anything, "s1", "c1").Return(domain.ErrBadRequest)
	h := NewContactHandler(cs, &mockVerificationSvc{})

	r := withChiParams(sessionReq(http.MethodDelete, "/v1/contacts/c1", "s1", nil), map[string]string{"contactID": "c1"})
	rr := httptest.NewRecorder()
	serveWithSession(http.HandlerFunc(h.Delete), rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestContactDelete_HappyPath(t *testing.T) {
	cs := &mockContactSvc{}
	cs.On("RemoveVerified", mock.Anything, "s1", "c1").Return(nil)
	h := NewContactHandler(cs, &mockVerificationSvc{})

	r := withChiParams(sessionReq(http.MethodDelete, "/v1/contacts/c1", "s1", nil), map[string]string{"contactID": "c1"})
	rr := httptest.NewRecorder()
	serveWithSession(http.HandlerFunc(h.Delete), rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	cs.AssertExpectations(t)
}
