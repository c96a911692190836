package models

import "time"

// StudentRecord is one student entry as the document store holds it. The id
// is opaque and assigned by the store; it is empty only on the way in.
type StudentRecord struct {
	ID      string `json:"id"`
	Nama    string `json:"nama"`
	NIM     string `json:"nim"`
	Jurusan string `json:"jurusan"`
}

type User struct {
	ID              string     `db:"id"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password_hash"`
	Status          string     `db:"status"`
	DisplayName     string     `db:"display_name"`
	PhotoURL        string     `db:"photo_url"`
	IsEmailVerified bool       `db:"is_email_verified"`
	CreatedAt       time.Time  `db:"created_at"`
	LastLoginAt     *time.Time `db:"last_login_at"`
}

type DocumentRow struct {
	Collection string    `db:"collection"`
	ID         string    `db:"id"`
	Fields     []byte    `db:"fields"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type PasswordReset struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
