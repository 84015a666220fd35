package client

import (
	"encoding/json"
	"errors"
)

const (
	sessionKey = "session"
	tokenKey   = "auth_token"
)

// Session is the client-local marker of the signed-in user. It is UI
// state, not a credential; the bearer token is stored separately.
type Session struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Sessions reads and writes the session marker and token in a StateStore.
type Sessions struct {
	store StateStore
}

func NewSessions(store StateStore) *Sessions {
	return &Sessions{store: store}
}

// Current returns the stored session marker, or ok=false when signed out.
func (s *Sessions) Current() (Session, bool) {
	raw, err := s.store.Read(sessionKey)
	if err != nil {
		return Session{}, false
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return Session{}, false
	}
	if session.Email == "" {
		return Session{}, false
	}
	return session, true
}

// Save persists the session marker and token after a successful login or
// registration.
func (s *Sessions) Save(session Session, token string) error {
	if session.Email == "" {
		return errors.New("session email is required")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := s.store.Write(sessionKey, string(data)); err != nil {
		return err
	}
	return s.store.Write(tokenKey, token)
}

// Token returns the stored bearer token, empty when signed out.
func (s *Sessions) Token() string {
	token, err := s.store.Read(tokenKey)
	if err != nil {
		return ""
	}
	return token
}

// Destroy removes the session marker and token on logout.
func (s *Sessions) Destroy() error {
	if err := s.store.Clear(sessionKey); err != nil {
		return err
	}
	return s.store.Clear(tokenKey)
}
