// Package identity wraps the external identity collaborator: credential
// sign-in and account creation, password reset dispatch, display-profile
// updates, and a push-style "session changed" notification. Failures are
// classified into the closed error set in errors.go; anything outside it is
// the unknown fallback and flows through unchanged.
package identity

import (
	"context"
	"regexp"
	"sync"
)

// SessionUser is the descriptor the collaborator yields for the currently
// authenticated account, or nil when signed out.
type SessionUser struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	EmailVerified bool
}

type Provider interface {
	SignInWithCredentials(ctx context.Context, email, password string) (*SessionUser, error)
	CreateAccount(ctx context.Context, email, password string) (*SessionUser, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	UpdateDisplayProfile(ctx context.Context, uid string, displayName, photoURL *string) error

	// OnSessionChanged registers fn, invokes it immediately with the current
	// session state, and returns the unsubscribe function.
	OnSessionChanged(fn func(*SessionUser)) func()
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailOK reports whether email has the shape local@domain.tld: a single @,
// no whitespace, and at least one dot after the @.
func EmailOK(email string) bool {
	return emailPattern.MatchString(email)
}

// sessionState carries the current session and its listeners. Both provider
// implementations embed it so change notification behaves identically.
type sessionState struct {
	mu        sync.Mutex
	current   *SessionUser
	listeners map[int]func(*SessionUser)
	nextID    int
}

func (s *sessionState) OnSessionChanged(fn func(*SessionUser)) func() {
	s.mu.Lock()
	if s.listeners == nil {
		s.listeners = map[int]func(*SessionUser){}
	}
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *sessionState) setSession(user *SessionUser) {
	s.mu.Lock()
	s.current = user
	fns := make([]func(*SessionUser), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

func (s *sessionState) session() *SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
