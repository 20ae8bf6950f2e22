package boot

import (
	"errors"
	"fmt"

	"github.com/robotalks/brd.go/pkg/bus"
)

// ErrUnaligned indicates a section size is not a multiple of the word size.
var ErrUnaligned = errors.New("size not aligned to word")

// MemoryError indicates the readback differs from what was written.
type MemoryError struct {
	// Addr is the address of the first differing word.
	Addr     bus.Address
	Expected uint32
	Actual   uint32
}

// Error implements error.
func (e *MemoryError) Error() string {
	return fmt.Sprintf("boot: memory error in address %s", e.Addr)
}

// ArgumentError indicates arguments don't fit in the argument buffer.
type ArgumentError struct {
	Len  int
	Size uint32
}

// Error implements error.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("boot: arguments memory overflow (%d chars, buffer %d)", e.Len, e.Size)
}

// SymbolNotFoundError indicates the argument symbol is absent.
// It is reported as a warning by Loader.
type SymbolNotFoundError struct {
	Name string
}

// Error implements error.
func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("boot: warning %s not found", e.Name)
}
