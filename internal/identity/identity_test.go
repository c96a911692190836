package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("rahasia1")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	assert.True(t, VerifyPassword("rahasia1", hash))
	assert.False(t, VerifyPassword("rahasia2", hash))
	assert.False(t, VerifyPassword("rahasia1", "not-a-hash"))
}

func TestVerifyPasswordBcryptFallback(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword("secret123", string(legacy)))
	assert.False(t, VerifyPassword("wrong", string(legacy)))
}

func TestEmailOK(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"a@b.co", true},
		{"budi.santoso@kampus.ac.id", true},
		{"", false},
		{"no-at-sign.com", false},
		{"two@@signs.com", false},
		{"missing@dot", false},
		{"spaces in@mail.com", false},
		{"tab\t@mail.com", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.ok, EmailOK(tc.email), tc.email)
	}
}

func TestMemoryProviderClassification(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	_, err := p.CreateAccount(ctx, "budi@kampus.ac.id", "rahasia1")
	require.NoError(t, err)

	_, err = p.CreateAccount(ctx, "budi@kampus.ac.id", "rahasia1")
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = p.CreateAccount(ctx, "ani@kampus.ac.id", "12345")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = p.CreateAccount(ctx, "not-an-email", "rahasia1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = p.SignInWithCredentials(ctx, "ghost@kampus.ac.id", "rahasia1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = p.SignInWithCredentials(ctx, "budi@kampus.ac.id", "salah")
	assert.ErrorIs(t, err, ErrWrongPassword)

	p.Disable("budi@kampus.ac.id")
	_, err = p.SignInWithCredentials(ctx, "budi@kampus.ac.id", "rahasia1")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestSessionChangedNotification(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	var seen []*SessionUser
	unsubscribe := p.OnSessionChanged(func(u *SessionUser) {
		seen = append(seen, u)
	})

	// Immediate delivery of the current (nil) state on subscribe.
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0])

	_, err := p.CreateAccount(ctx, "budi@kampus.ac.id", "rahasia1")
	require.NoError(t, err)
	require.Len(t, seen, 2)
	require.NotNil(t, seen[1])
	assert.Equal(t, "budi@kampus.ac.id", seen[1].Email)

	require.NoError(t, p.SignOut(ctx))
	require.Len(t, seen, 3)
	assert.Nil(t, seen[2])

	unsubscribe()
	_, err = p.SignInWithCredentials(ctx, "budi@kampus.ac.id", "rahasia1")
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}
