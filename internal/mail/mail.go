// Package mail dispatches submission notifications. Send failures come
// back as the return value so every request owns its own outcome; there
// is no shared last-error state anywhere.
package mail

import "context"

// Message is one plain-text notification with optional file attachments.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []string // local file paths
}

// Mailer delivers one message or reports why it could not.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
