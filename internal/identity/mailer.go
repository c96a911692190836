package identity

import "log"

// Mailer dispatches the password-reset message. The hosted collaborator owns
// actual delivery; LogMailer stands in when no delivery channel is wired.
type Mailer interface {
	SendPasswordReset(email, token string) error
}

type LogMailer struct{}

func (LogMailer) SendPasswordReset(email, token string) error {
	log.Printf("password reset requested for %s (token %s)", email, token)
	return nil
}
