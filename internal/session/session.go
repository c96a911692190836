// Package session combines the identity collaborator's session state with
// the profile document kept in the "users" collection. All operations fail
// softly: they report success as a boolean and route the user-facing message
// through the notifier, so no failure here is ever fatal.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"simahasiswa-backend-go/internal/docstore"
	"simahasiswa-backend-go/internal/identity"
	"simahasiswa-backend-go/internal/notify"
	"simahasiswa-backend-go/internal/services"
)

// Collection holds one profile document per account, keyed by uid.
const Collection = "users"

// UserAccount is the combined session state: the collaborator's descriptor
// plus the profile document.
type UserAccount struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	DisplayName   string    `json:"displayName,omitempty"`
	PhotoURL      string    `json:"photoURL,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	LastLoginAt   time.Time `json:"lastLoginAt"`
}

// ProfileUpdate carries the fields UpdateProfile may merge; nil means leave
// unchanged.
type ProfileUpdate struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
}

type Session struct {
	provider identity.Provider
	docs     docstore.Store
	notifier notify.Notifier

	mu          sync.Mutex
	current     *UserAccount
	lastError   string
	unsubscribe func()
}

// New wires the session to the collaborators and subscribes, once, to
// session-changed notifications. Close releases the subscription.
func New(provider identity.Provider, docs docstore.Store, notifier notify.Notifier) *Session {
	s := &Session{
		provider: provider,
		docs:     docs,
		notifier: notifier,
	}
	s.unsubscribe = provider.OnSessionChanged(s.onSessionChanged)
	return s
}

func (s *Session) onSessionChanged(user *identity.SessionUser) {
	if user == nil {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		return
	}

	ctx := context.Background()
	account, err := s.loadOrCreateAccount(ctx, user)
	if err != nil {
		s.setError("Failed to load user data")
		return
	}
	s.mu.Lock()
	s.current = account
	s.mu.Unlock()
}

func (s *Session) loadOrCreateAccount(ctx context.Context, user *identity.SessionUser) (*UserAccount, error) {
	doc, err := s.docs.GetDocument(ctx, Collection, user.UID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			return nil, err
		}
		// First sign-in for this account: lazily create the profile with the
		// default role.
		now := time.Now().UTC()
		username := user.DisplayName
		if username == "" {
			username = strings.SplitN(user.Email, "@", 2)[0]
		}
		fields := map[string]any{
			"email":       user.Email,
			"username":    username,
			"role":        "user",
			"displayName": user.DisplayName,
			"photoURL":    user.PhotoURL,
			"createdAt":   now.Format(time.RFC3339),
			"lastLoginAt": now.Format(time.RFC3339),
		}
		if err := s.docs.SetDocument(ctx, Collection, user.UID, fields); err != nil {
			return nil, err
		}
		doc = &docstore.Document{ID: user.UID, Fields: fields}
	}

	account := accountFrom(doc)
	account.Email = user.Email
	account.EmailVerified = user.EmailVerified
	return account, nil
}

// SignIn authenticates and returns the resulting account. The returned
// account belongs to this call: a later sign-in for another user replaces
// the session state, never the account already handed out. Failures surface
// one message, classified by cause.
func (s *Session) SignIn(ctx context.Context, email, password string) (*UserAccount, bool) {
	user, err := s.provider.SignInWithCredentials(ctx, email, password)
	if err != nil {
		s.setError(signInMessage(err))
		return nil, false
	}

	account, err := s.loadOrCreateAccount(ctx, user)
	if err != nil {
		s.setError("Failed to load user data")
		return nil, false
	}
	now := time.Now().UTC()
	_ = s.docs.SetDocument(ctx, Collection, user.UID, map[string]any{
		"lastLoginAt": now.Format(time.RFC3339),
	})
	account.LastLoginAt = now

	s.setCurrent(account)
	s.notifier.Success("Login successful!")
	return account, true
}

func signInMessage(err error) string {
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return "Email not registered"
	case errors.Is(err, identity.ErrWrongPassword):
		return "Wrong password"
	case errors.Is(err, identity.ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, identity.ErrTooManyRequests):
		return "Too many login attempts. Try again later"
	case errors.Is(err, identity.ErrUserDisabled):
		return "Account has been disabled"
	default:
		return "Login error occurred"
	}
}

// SignUp creates the account, then its profile document, and returns the
// combined account. When the profile write fails after the account write
// succeeded, the overall operation is still a success and only a warning is
// surfaced; nothing is rolled back and the account is built from the fields
// that should have been written.
func (s *Session) SignUp(ctx context.Context, email, password, username string) (*UserAccount, bool) {
	user, err := s.provider.CreateAccount(ctx, email, password)
	if err != nil {
		s.setError(signUpMessage(err))
		return nil, false
	}

	_ = s.provider.UpdateDisplayProfile(ctx, user.UID, &username, nil)

	now := time.Now().UTC()
	fields := map[string]any{
		"email":       user.Email,
		"username":    username,
		"role":        "user",
		"displayName": username,
		"photoURL":    "",
		"createdAt":   now.Format(time.RFC3339),
		"lastLoginAt": now.Format(time.RFC3339),
	}
	account := accountFrom(&docstore.Document{ID: user.UID, Fields: fields})
	account.Email = user.Email
	account.EmailVerified = user.EmailVerified
	if err := s.docs.SetDocument(ctx, Collection, user.UID, fields); err != nil {
		s.notifier.Warning("Akun berhasil dibuat, tapi data profil gagal disimpan.")
	}

	s.setCurrent(account)
	s.notifier.Success("Registrasi berhasil!")
	return account, true
}

func signUpMessage(err error) string {
	switch {
	case errors.Is(err, identity.ErrEmailInUse):
		return "Email sudah terdaftar"
	case errors.Is(err, identity.ErrWeakPassword):
		return "Password terlalu lemah (minimal 6 karakter)"
	case errors.Is(err, identity.ErrInvalidEmail):
		return "Format email tidak valid"
	default:
		return "Terjadi kesalahan saat registrasi"
	}
}

// SignOut always clears local session state; a collaborator failure only
// produces a notification.
func (s *Session) SignOut(ctx context.Context) {
	err := s.provider.SignOut(ctx)
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	if err != nil {
		s.notifier.Error("Logout failed")
		return
	}
	s.notifier.Success("Logout successful!")
}

// ResetPassword triggers the external reset-email send.
func (s *Session) ResetPassword(ctx context.Context, email string) bool {
	err := s.provider.SendPasswordReset(ctx, email)
	if err != nil {
		s.setError(resetMessage(err))
		return false
	}
	s.notifier.Success("Password reset email sent!")
	return true
}

func resetMessage(err error) string {
	switch {
	case errors.Is(err, identity.ErrUserNotFound):
		return "Email not registered"
	case errors.Is(err, identity.ErrInvalidEmail):
		return "Invalid email format"
	default:
		return "Error sending password reset email"
	}
}

// UpdateProfile merges the given fields into the profile document and the
// local cache. Without an active session it is a no-op returning false.
func (s *Session) UpdateProfile(ctx context.Context, update ProfileUpdate) bool {
	user := s.CurrentUser()
	if user == nil {
		return false
	}

	fields := map[string]any{}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.DisplayName != nil {
		fields["displayName"] = *update.DisplayName
	}
	if update.PhotoURL != nil {
		fields["photoURL"] = *update.PhotoURL
	}
	if len(fields) > 0 {
		if err := s.docs.SetDocument(ctx, Collection, user.UID, fields); err != nil {
			s.setError("Failed to update profile")
			return false
		}
		if update.DisplayName != nil || update.PhotoURL != nil {
			_ = s.provider.UpdateDisplayProfile(ctx, user.UID, update.DisplayName, update.PhotoURL)
		}
	}

	s.mu.Lock()
	if s.current != nil {
		if update.Username != nil {
			s.current.Username = *update.Username
		}
		if update.DisplayName != nil {
			s.current.DisplayName = *update.DisplayName
		}
		if update.PhotoURL != nil {
			s.current.PhotoURL = *update.PhotoURL
		}
	}
	s.mu.Unlock()

	s.notifier.Success("Profile updated successfully!")
	return true
}

// UserByID loads the combined account state for any uid with a profile
// document. Used by the HTTP layer for authenticated reads.
func (s *Session) UserByID(ctx context.Context, uid string) (*UserAccount, error) {
	doc, err := s.docs.GetDocument(ctx, Collection, uid)
	if err != nil {
		return nil, services.WrapError(err, "load profile "+uid)
	}
	return accountFrom(doc), nil
}

// CurrentUser returns a copy of the active session state, or nil.
func (s *Session) CurrentUser() *UserAccount {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

func (s *Session) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// LastError returns the most recent user-facing failure message.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Close releases the session-changed subscription.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
	s.notifier.Error(msg)
}

// setCurrent stores a copy, so session state and accounts already returned
// to callers never alias each other.
func (s *Session) setCurrent(account *UserAccount) {
	copied := *account
	s.mu.Lock()
	s.current = &copied
	s.mu.Unlock()
}

func accountFrom(doc *docstore.Document) *UserAccount {
	account := &UserAccount{
		UID:         doc.ID,
		Email:       stringField(doc.Fields, "email"),
		Username:    stringField(doc.Fields, "username"),
		Role:        stringField(doc.Fields, "role"),
		DisplayName: stringField(doc.Fields, "displayName"),
		PhotoURL:    stringField(doc.Fields, "photoURL"),
	}
	if account.Role == "" {
		account.Role = "user"
	}
	account.CreatedAt = timeField(doc.Fields, "createdAt")
	account.LastLoginAt = timeField(doc.Fields, "lastLoginAt")
	return account
}

func stringField(fields map[string]any, key string) string {
	value, ok := fields[key].(string)
	if !ok {
		return ""
	}
	return value
}

func timeField(fields map[string]any, key string) time.Time {
	raw, ok := fields[key].(string)
	if !ok {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
