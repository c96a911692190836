package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simahasiswa-backend-go/internal/docstore"
	"simahasiswa-backend-go/internal/identity"
	"simahasiswa-backend-go/internal/notify"
)

func newTestSession(t *testing.T) (*Session, *identity.MemoryProvider, *docstore.Memory, *notify.Recorder) {
	t.Helper()
	provider := identity.NewMemoryProvider()
	docs := docstore.NewMemory()
	rec := &notify.Recorder{}
	sess := New(provider, docs, rec)
	t.Cleanup(sess.Close)
	return sess, provider, docs, rec
}

func TestSignInClassification(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(p *identity.MemoryProvider)
		email    string
		password string
		wantMsg  string
	}{
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "secret123",
			wantMsg:  "Email not registered",
		},
		{
			name: "wrong password",
			setup: func(p *identity.MemoryProvider) {
				_, err := p.CreateAccount(ctx, "budi@example.com", "secret123")
				require.NoError(t, err)
				require.NoError(t, p.SignOut(ctx))
			},
			email:    "budi@example.com",
			password: "wrong-secret",
			wantMsg:  "Wrong password",
		},
		{
			name:     "invalid email format",
			email:    "not-an-email",
			password: "secret123",
			wantMsg:  "Invalid email format",
		},
		{
			name: "disabled account",
			setup: func(p *identity.MemoryProvider) {
				_, err := p.CreateAccount(ctx, "siti@example.com", "secret123")
				require.NoError(t, err)
				require.NoError(t, p.SignOut(ctx))
				p.Disable("siti@example.com")
			},
			email:    "siti@example.com",
			password: "secret123",
			wantMsg:  "Account has been disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, provider, _, rec := newTestSession(t)
			if tt.setup != nil {
				tt.setup(provider)
			}

			account, ok := sess.SignIn(ctx, tt.email, tt.password)

			assert.False(t, ok)
			assert.Nil(t, account)
			assert.Nil(t, sess.CurrentUser())
			assert.Equal(t, tt.wantMsg, sess.LastError())
			require.NotEmpty(t, rec.Errors)
			assert.Equal(t, tt.wantMsg, rec.Errors[len(rec.Errors)-1])
		})
	}
}

func TestSignInCreatesProfileLazily(t *testing.T) {
	ctx := context.Background()

	// Register the account before the session subscribes, so no profile
	// document exists for this uid yet.
	provider := identity.NewMemoryProvider()
	_, err := provider.CreateAccount(ctx, "budi@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, provider.SignOut(ctx))

	docs := docstore.NewMemory()
	rec := &notify.Recorder{}
	sess := New(provider, docs, rec)
	defer sess.Close()

	user, ok := sess.SignIn(ctx, "budi@example.com", "secret123")
	require.True(t, ok)
	require.NotNil(t, user)
	assert.Equal(t, "budi@example.com", user.Email)
	assert.Equal(t, "budi", user.Username)
	assert.Equal(t, "user", user.Role)
	assert.False(t, user.LastLoginAt.IsZero())

	doc, err := docs.GetDocument(ctx, Collection, user.UID)
	require.NoError(t, err)
	assert.Equal(t, "budi", doc.Fields["username"])
	assert.Equal(t, "user", doc.Fields["role"])

	assert.Contains(t, rec.Successes, "Login successful!")
}

func TestSignUpWritesProfile(t *testing.T) {
	ctx := context.Background()
	sess, _, docs, rec := newTestSession(t)

	user, ok := sess.SignUp(ctx, "siti@example.com", "secret123", "sitinur")
	require.True(t, ok)
	require.NotNil(t, user)
	assert.Equal(t, "sitinur", user.Username)
	assert.Equal(t, "user", user.Role)

	doc, err := docs.GetDocument(ctx, Collection, user.UID)
	require.NoError(t, err)
	assert.Equal(t, "sitinur", doc.Fields["username"])
	assert.Equal(t, "siti@example.com", doc.Fields["email"])

	assert.Contains(t, rec.Successes, "Registrasi berhasil!")
	assert.Empty(t, rec.Warnings)
}

func TestSignUpClassification(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(s *Session)
		email    string
		password string
		wantMsg  string
	}{
		{
			name: "email already registered",
			setup: func(s *Session) {
				_, ok := s.SignUp(ctx, "budi@example.com", "secret123", "budi")
				require.True(t, ok)
			},
			email:    "budi@example.com",
			password: "secret123",
			wantMsg:  "Email sudah terdaftar",
		},
		{
			name:     "weak password",
			email:    "siti@example.com",
			password: "123",
			wantMsg:  "Password terlalu lemah (minimal 6 karakter)",
		},
		{
			name:     "invalid email",
			email:    "not-an-email",
			password: "secret123",
			wantMsg:  "Format email tidak valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, _, _, rec := newTestSession(t)
			if tt.setup != nil {
				tt.setup(sess)
			}

			account, ok := sess.SignUp(ctx, tt.email, tt.password, "someone")

			assert.False(t, ok)
			assert.Nil(t, account)
			assert.Equal(t, tt.wantMsg, sess.LastError())
			require.NotEmpty(t, rec.Errors)
			assert.Equal(t, tt.wantMsg, rec.Errors[len(rec.Errors)-1])
		})
	}
}

// failingDocs rejects every write so the account-created-but-profile-lost
// path can be exercised.
type failingDocs struct {
	docstore.Store
}

var errBoom = errors.New("boom")

func (failingDocs) SetDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	return errBoom
}

func (failingDocs) GetDocument(ctx context.Context, collection, id string) (*docstore.Document, error) {
	return nil, docstore.ErrNotFound
}

func TestSignUpProfileWriteFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	provider := identity.NewMemoryProvider()
	rec := &notify.Recorder{}
	sess := New(provider, failingDocs{Store: docstore.NewMemory()}, rec)
	defer sess.Close()

	user, ok := sess.SignUp(ctx, "budi@example.com", "secret123", "budi")

	require.True(t, ok)
	require.NotNil(t, user)
	assert.Equal(t, "budi@example.com", user.Email)
	assert.Equal(t, "budi", user.Username)
	assert.Equal(t, "user", user.Role)
	assert.Equal(t, 1, provider.AccountCount())
	assert.Contains(t, rec.Warnings, "Akun berhasil dibuat, tapi data profil gagal disimpan.")
	assert.Contains(t, rec.Successes, "Registrasi berhasil!")
}

func TestSignOutClearsSession(t *testing.T) {
	ctx := context.Background()
	sess, _, _, rec := newTestSession(t)

	_, ok := sess.SignUp(ctx, "budi@example.com", "secret123", "budi")
	require.True(t, ok)
	require.NotNil(t, sess.CurrentUser())

	sess.SignOut(ctx)

	assert.Nil(t, sess.CurrentUser())
	assert.False(t, sess.IsAuthenticated())
	assert.Contains(t, rec.Successes, "Logout successful!")
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	sess, _, _, rec := newTestSession(t)

	_, ok := sess.SignUp(ctx, "budi@example.com", "secret123", "budi")
	require.True(t, ok)
	sess.SignOut(ctx)

	assert.False(t, sess.ResetPassword(ctx, "nobody@example.com"))
	assert.Equal(t, "Email not registered", sess.LastError())

	assert.False(t, sess.ResetPassword(ctx, "not-an-email"))
	assert.Equal(t, "Invalid email format", sess.LastError())

	assert.True(t, sess.ResetPassword(ctx, "budi@example.com"))
	assert.Contains(t, rec.Successes, "Password reset email sent!")
}

func TestUpdateProfileWithoutSession(t *testing.T) {
	ctx := context.Background()
	sess, _, _, rec := newTestSession(t)

	name := "somebody"
	ok := sess.UpdateProfile(ctx, ProfileUpdate{Username: &name})

	assert.False(t, ok)
	assert.Empty(t, rec.Successes)
}

func TestUpdateProfileMergesFields(t *testing.T) {
	ctx := context.Background()
	sess, _, docs, rec := newTestSession(t)

	account, ok := sess.SignUp(ctx, "budi@example.com", "secret123", "budi")
	require.True(t, ok)
	uid := account.UID

	display := "Budi Santoso"
	ok = sess.UpdateProfile(ctx, ProfileUpdate{DisplayName: &display})
	require.True(t, ok)

	user := sess.CurrentUser()
	assert.Equal(t, "Budi Santoso", user.DisplayName)
	assert.Equal(t, "budi", user.Username)

	doc, err := docs.GetDocument(ctx, Collection, uid)
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", doc.Fields["displayName"])
	assert.Equal(t, "budi", doc.Fields["username"])

	assert.Contains(t, rec.Successes, "Profile updated successfully!")
}

func TestUserByID(t *testing.T) {
	ctx := context.Background()
	sess, _, _, _ := newTestSession(t)

	account, ok := sess.SignUp(ctx, "budi@example.com", "secret123", "budi")
	require.True(t, ok)
	uid := account.UID

	user, err := sess.UserByID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "budi", user.Username)
	assert.Equal(t, "budi@example.com", user.Email)

	_, err = sess.UserByID(ctx, "missing-uid")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestSignInAccountNotRetargetedByLaterSignIn(t *testing.T) {
	ctx := context.Background()
	sess, _, _, _ := newTestSession(t)

	_, ok := sess.SignUp(ctx, "budi@example.com", "secret123", "budi")
	require.True(t, ok)
	sess.SignOut(ctx)
	_, ok = sess.SignUp(ctx, "siti@example.com", "secret123", "siti")
	require.True(t, ok)
	sess.SignOut(ctx)

	budi, ok := sess.SignIn(ctx, "budi@example.com", "secret123")
	require.True(t, ok)

	// A competing sign-in replaces the session state but must not touch the
	// account the first call already returned.
	siti, ok := sess.SignIn(ctx, "siti@example.com", "secret123")
	require.True(t, ok)

	assert.Equal(t, "budi@example.com", budi.Email)
	assert.Equal(t, "budi", budi.Username)
	assert.NotEqual(t, budi.UID, siti.UID)
	assert.Equal(t, "siti@example.com", sess.CurrentUser().Email)
}
