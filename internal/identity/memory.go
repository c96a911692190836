package identity

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

type memoryAccount struct {
	uid         string
	email       string
	password    string
	displayName string
	photoURL    string
	disabled    bool
}

// MemoryProvider is an in-process identity collaborator with the same
// classification behavior as the postgres one. Used in development mode and
// by tests.
type MemoryProvider struct {
	sessionState

	accMu    sync.Mutex
	accounts map[string]*memoryAccount
	nextUID  int
	resets   []string
	mailer   Mailer
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{accounts: map[string]*memoryAccount{}, mailer: LogMailer{}}
}

func (m *MemoryProvider) SignInWithCredentials(ctx context.Context, email, password string) (*SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !EmailOK(email) {
		return nil, ErrInvalidEmail
	}
	m.accMu.Lock()
	acc, ok := m.accounts[email]
	m.accMu.Unlock()
	if !ok {
		return nil, ErrUserNotFound
	}
	if acc.disabled {
		return nil, ErrUserDisabled
	}
	if acc.password != password {
		return nil, ErrWrongPassword
	}
	session := m.sessionFor(acc)
	m.setSession(session)
	return session, nil
}

func (m *MemoryProvider) CreateAccount(ctx context.Context, email, password string) (*SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !EmailOK(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}
	m.accMu.Lock()
	if _, ok := m.accounts[email]; ok {
		m.accMu.Unlock()
		return nil, ErrEmailInUse
	}
	m.nextUID++
	acc := &memoryAccount{
		uid:      "uid-" + strconv.Itoa(m.nextUID),
		email:    email,
		password: password,
	}
	m.accounts[email] = acc
	m.accMu.Unlock()

	session := m.sessionFor(acc)
	m.setSession(session)
	return session, nil
}

func (m *MemoryProvider) SignOut(ctx context.Context) error {
	m.setSession(nil)
	return nil
}

func (m *MemoryProvider) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !EmailOK(email) {
		return ErrInvalidEmail
	}
	m.accMu.Lock()
	_, ok := m.accounts[email]
	if ok {
		m.resets = append(m.resets, email)
	}
	m.accMu.Unlock()
	if !ok {
		return ErrUserNotFound
	}
	return m.mailer.SendPasswordReset(email, "memory")
}

func (m *MemoryProvider) UpdateDisplayProfile(ctx context.Context, uid string, displayName, photoURL *string) error {
	m.accMu.Lock()
	for _, acc := range m.accounts {
		if acc.uid != uid {
			continue
		}
		if displayName != nil {
			acc.displayName = *displayName
		}
		if photoURL != nil {
			acc.photoURL = *photoURL
		}
	}
	m.accMu.Unlock()

	m.mu.Lock()
	if m.current != nil && m.current.UID == uid {
		if displayName != nil {
			m.current.DisplayName = *displayName
		}
		if photoURL != nil {
			m.current.PhotoURL = *photoURL
		}
	}
	m.mu.Unlock()
	return nil
}

// AccountCount reports registered accounts; tests use it to assert that a
// locally rejected form never reached the collaborator.
func (m *MemoryProvider) AccountCount() int {
	m.accMu.Lock()
	defer m.accMu.Unlock()
	return len(m.accounts)
}

// Disable marks an account disabled so sign-in classification can be
// exercised without a database.
func (m *MemoryProvider) Disable(email string) {
	m.accMu.Lock()
	if acc, ok := m.accounts[strings.ToLower(email)]; ok {
		acc.disabled = true
	}
	m.accMu.Unlock()
}

func (m *MemoryProvider) sessionFor(acc *memoryAccount) *SessionUser {
	return &SessionUser{
		UID:         acc.uid,
		Email:       acc.email,
		DisplayName: acc.displayName,
		PhotoURL:    acc.photoURL,
	}
}
