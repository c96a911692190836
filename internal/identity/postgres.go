package identity

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"simahasiswa-backend-go/internal/models"
	"simahasiswa-backend-go/internal/ratelimit"
)

const resetTokenTTL = time.Hour

// PostgresProvider implements the identity collaborator over the users table.
type PostgresProvider struct {
	sessionState

	db      *sqlx.DB
	limiter ratelimit.Limiter
	mailer  Mailer
}

func NewPostgresProvider(db *sqlx.DB, limiter ratelimit.Limiter, mailer Mailer) *PostgresProvider {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &PostgresProvider{db: db, limiter: limiter, mailer: mailer}
}

func (p *PostgresProvider) SignInWithCredentials(ctx context.Context, email, password string) (*SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !EmailOK(email) {
		return nil, ErrInvalidEmail
	}
	if p.limiter != nil && !p.limiter.Allow(ctx, "signin:"+email) {
		return nil, ErrTooManyRequests
	}

	user := models.User{}
	err := p.db.GetContext(ctx, &user, `
SELECT id, email, password_hash, status, display_name, photo_url, is_email_verified, created_at, last_login_at
FROM users
WHERE lower(email) = $1
`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user.Status != "ACTIVE" {
		return nil, ErrUserDisabled
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	now := time.Now().UTC()
	_, _ = p.db.ExecContext(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, now, user.ID)

	session := sessionUserFrom(user)
	p.setSession(session)
	return session, nil
}

func (p *PostgresProvider) CreateAccount(ctx context.Context, email, password string) (*SessionUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !EmailOK(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	var exists bool
	if err := p.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = $1)`, email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailInUse
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	uid := uuid.NewString()
	now := time.Now().UTC()
	_, err = p.db.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, status, created_at, last_login_at)
VALUES ($1, $2, $3, 'ACTIVE', $4, $4)
`, uid, email, hash, now)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	session := &SessionUser{UID: uid, Email: email}
	p.setSession(session)
	return session, nil
}

func (p *PostgresProvider) SignOut(ctx context.Context) error {
	p.setSession(nil)
	return nil
}

func (p *PostgresProvider) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !EmailOK(email) {
		return ErrInvalidEmail
	}

	var userID string
	err := p.db.GetContext(ctx, &userID, `SELECT id FROM users WHERE lower(email) = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = p.db.ExecContext(ctx, `
INSERT INTO password_resets (id, user_id, token, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)
`, uuid.NewString(), userID, token, now.Add(resetTokenTTL), now)
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return p.mailer.SendPasswordReset(email, token)
}

func (p *PostgresProvider) UpdateDisplayProfile(ctx context.Context, uid string, displayName, photoURL *string) error {
	if displayName != nil {
		if _, err := p.db.ExecContext(ctx, `UPDATE users SET display_name = $1 WHERE id = $2`, *displayName, uid); err != nil {
			return fmt.Errorf("update display name: %w", err)
		}
	}
	if photoURL != nil {
		if _, err := p.db.ExecContext(ctx, `UPDATE users SET photo_url = $1 WHERE id = $2`, *photoURL, uid); err != nil {
			return fmt.Errorf("update photo url: %w", err)
		}
	}

	p.mu.Lock()
	if p.current != nil && p.current.UID == uid {
		if displayName != nil {
			p.current.DisplayName = *displayName
		}
		if photoURL != nil {
			p.current.PhotoURL = *photoURL
		}
	}
	p.mu.Unlock()
	return nil
}

func sessionUserFrom(user models.User) *SessionUser {
	return &SessionUser{
		UID:           user.ID,
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		PhotoURL:      user.PhotoURL,
		EmailVerified: user.IsEmailVerified,
	}
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
