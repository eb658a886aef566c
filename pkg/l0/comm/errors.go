package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNoReply indicates no reply received from peer.
	// This happens when the caller gives up waiting for a command.
	ErrNoReply = errors.New("no reply")
	// ErrNotForUs indicates a frame addressed to another receiver.
	ErrNotForUs = errors.New("frame not addressed to local id")
)

// LinkError wraps an I/O error from the underlying stream.
type LinkError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *LinkError) Error() string {
	return fmt.Sprintf("link %s: %v", e.Op, e.Err)
}

// Unwrap returns the I/O error.
func (e *LinkError) Unwrap() error {
	return e.Err
}
