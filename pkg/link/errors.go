package link

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady indicates the link is not synchronized.
	ErrNotReady = errors.New("link not ready")
	// ErrNoReply indicates the peer answered a later command, so this
	// one is lost.
	ErrNoReply = errors.New("no reply")
	// ErrTimeout indicates no reply arrived in time.
	ErrTimeout = errors.New("reply timeout")
	// ErrPayloadTooLarge indicates the data doesn't fit in one packet.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// CommandError is the non-zero status replied by the peer.
type CommandError struct {
	ID     MessageID
	Status byte
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed with status %d", e.ID, e.Status)
}
