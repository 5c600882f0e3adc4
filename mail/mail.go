// Package mail provides email delivery for sermon notifications.
package mail

import (
	"context"
	"errors"
	"fmt"
)

// ErrRejected indicates the provider rejected the message.
var ErrRejected = errors.New("mail: message rejected")

// Sender is the interface email providers implement. The abstraction keeps
// the orchestration code independent of the provider (SendGrid today).
type Sender interface {
	// Send sends an email to the configured recipient.
	Send(ctx context.Context, msg Message) error
}

// Message represents an email message to be sent.
type Message struct {
	Subject  string // email subject
	TextBody string // plain-text body
	HTMLBody string // optional HTML body
}

// SendError wraps delivery errors with provider context.
// Use errors.As() to extract this error type and get operation details:
//
//	var sendErr *mail.SendError
//	if errors.As(err, &sendErr) {
//		fmt.Printf("Delivery via %s failed (status %d): %v\n", sendErr.Provider, sendErr.StatusCode, sendErr.Err)
//	}
type SendError struct {
	// Provider identifies the delivery service ("sendgrid").
	Provider string
	// StatusCode is the provider's HTTP status, 0 if the request never completed.
	StatusCode int
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the delivery error.
func (e *SendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("mail: %s send failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("mail: %s send failed: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *SendError) Unwrap() error { return e.Err }
