// Package push delivers notifications to device tokens over Firebase Cloud
// Messaging. A Disabled sender stands in when credentials are not configured
// so callers never deal with nil clients.
package push

import (
	"context"
	"errors"
)

// Message is one push payload addressed to a single token.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

var (
	// ErrDisabled is returned by the Disabled sender for every send.
	ErrDisabled = errors.New("push: delivery disabled")
	// ErrTokenNotRegistered marks a token FCM no longer recognizes; callers
	// should drop the token.
	ErrTokenNotRegistered = errors.New("push: token not registered")
)

// Sender sends one message to one device token.
type Sender interface {
	Send(ctx context.Context, token string, msg Message) error
	Enabled() bool
}

// Disabled is the no-op sender used when FCM credentials are absent.
type Disabled struct{}

func (Disabled) Send(ctx context.Context, token string, msg Message) error {
	return ErrDisabled
}

func (Disabled) Enabled() bool { return false }
