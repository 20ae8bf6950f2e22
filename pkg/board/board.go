// Package board defines the control surface of a programmable board.
package board

import (
	"context"
	"fmt"

	"github.com/robotalks/brd.go/pkg/boot"
)

// Board is a board which can be reset, loaded and started.
type Board interface {
	// Reset puts the board into a known configured state.
	// With flashBoot the processor boots from flash after reset.
	Reset(ctx context.Context, flashBoot bool) error
	// Load copies an executable image and its arguments into the board.
	Load(ctx context.Context, img boot.Image, args []string) error
	// Start releases the loaded program.
	Start(ctx context.Context) error
}

// State is the observed lifecycle state of a board.
type State int

// States
const (
	StateUnknown State = iota
	StateHeldInReset
	StateConfigured
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateHeldInReset:
		return "held-in-reset"
	case StateConfigured:
		return "configured"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Error is a board state inconsistency.
type Error struct {
	Name string
	Msg  string
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("board %s: %s", e.Name, e.Msg)
}
