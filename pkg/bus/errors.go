package bus

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates no response arrived before the deadline.
	ErrTimeout = errors.New("timeout")
	// ErrFrameSize indicates the response has an unexpected size.
	ErrFrameSize = errors.New("size error")
)

// Error is a failed bus operation.
type Error struct {
	Op   string
	Addr Address
	Err  error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("bus: %s %s: %v", e.Op, e.Addr, e.Err)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the operation timed out.
func (e *Error) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout)
}
