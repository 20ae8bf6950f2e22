package udp

import (
	"errors"
	"fmt"
)

// ErrBadSpell indicates the peer replied something other than the spell.
var ErrBadSpell = errors.New("bad spell")

// HandshakeError indicates the peer didn't echo the spell.
type HandshakeError struct {
	Attempts int
	Err      error
}

// Error implements error.
func (e *HandshakeError) Error() string {
	return fmt.Sprintf("bus capture fail after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the cause of the last attempt.
func (e *HandshakeError) Unwrap() error {
	return e.Err
}
