// Package transport delivers alert messages to external messaging
// systems and exposes the session hooks the session store consumes.
package transport

import "context"

// Sender delivers a message to a recipient channel or group.
type Sender interface {
	// Name returns the sender identifier.
	Name() string

	// Send delivers one message. Single attempt; implementations must
	// be safe for concurrent use and must not retry internally.
	Send(ctx context.Context, recipient, message string) error
}

// SessionListener receives updated session blobs as the transport
// authenticates or refreshes its session.
type SessionListener func(blob []byte)

// SessionSource exposes the transport's current authentication session,
// if one is active. The blob is opaque to callers.
type SessionSource interface {
	ActiveSession() ([]byte, bool)
}
