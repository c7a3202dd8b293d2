package session

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/mediaranker/internal/shared"
)

// Flash statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusWarning = "warning"
	StatusError   = "error"
)

// ErrNoSession is returned by a [Store] when no live session exists for an ID.
var ErrNoSession = errors.New("session not found")

// Flash is a status message that survives exactly one redirect.
type Flash struct {
	Status     string `json:"status"`
	ResultText string `json:"result_text"`
}

// Data is the persisted payload of a session.
type Data struct {
	UserID     string `json:"user_id,omitempty"`
	OAuthState string `json:"oauth_state,omitempty"`
	Flash      *Flash `json:"flash,omitempty"`
}

func (d Data) empty() bool {
	return d.UserID == "" && d.OAuthState == "" && d.Flash == nil
}

// Store persists session [Data] by ID.
type Store interface {
	Load(ctx context.Context, id string) (*Data, error)                       // Load returns [ErrNoSession] when absent or expired
	Save(ctx context.Context, id string, data *Data, ttl time.Duration) error // Save creates or replaces a session
	Delete(ctx context.Context, id string) error                              // Delete is a no-op for unknown IDs
}

// Session is the per-request view of a browser session.
type Session struct {
	id      string
	prevID  string
	data    Data
	dirty   bool
	renewed bool
}

func newSession() *Session {
	return &Session{id: shared.GenerateID()}
}

// ID returns the current session ID.
func (s *Session) ID() string { return s.id }

// UserID returns the authenticated user's ID, or "" when logged out.
func (s *Session) UserID() string { return s.data.UserID }

// SetUserID marks the session as authenticated and rotates its ID.
func (s *Session) SetUserID(id string) {
	s.data.UserID = id
	s.renew()
}

// ClearUserID logs the session out. It reports whether a user was logged in.
func (s *Session) ClearUserID() bool {
	had := s.data.UserID != ""
	s.data.UserID = ""
	s.dirty = true
	return had
}

// SetFlash replaces any pending flash message.
func (s *Session) SetFlash(status, text string) {
	s.data.Flash = &Flash{Status: status, ResultText: text}
	s.dirty = true
}

// Flash returns and clears the pending flash message, or nil.
func (s *Session) Flash() *Flash {
	f := s.data.Flash
	if f != nil {
		s.data.Flash = nil
		s.dirty = true
	}
	return f
}

// SetOAuthState remembers the state parameter of an in-flight OAuth authorization.
func (s *Session) SetOAuthState(state string) {
	s.data.OAuthState = state
	s.dirty = true
}

// TakeOAuthState returns and clears the pending OAuth state.
func (s *Session) TakeOAuthState() string {
	state := s.data.OAuthState
	if state != "" {
		s.data.OAuthState = ""
		s.dirty = true
	}
	return state
}

// renew assigns a fresh ID so a pre-login session token cannot be reused after login.
func (s *Session) renew() {
	if !s.renewed {
		s.prevID = s.id
		s.id = shared.GenerateID()
		s.renewed = true
	}
	s.dirty = true
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or nil outside [Manager.Middleware].
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
