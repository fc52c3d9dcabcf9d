// Package email delivers rendered notifications over SMTP.
package email

import "context"

// Message is one email to deliver. Body carries the plain-text form; an
// HTML alternative is derived from it by the SMTP sender.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single email and reports the provider message id.
type Sender interface {
	SendEmail(ctx context.Context, msg Message) (string, error)
}
