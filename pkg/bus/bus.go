// Package bus provides the register bus abstraction used to access
// registers and memory of a remote board.
package bus

import "context"

// Bus reads and writes 32-bit words on the board.
// Implementations are not expected to be safe for concurrent use.
type Bus interface {
	Read(ctx context.Context, addr Address) (uint32, error)
	Write(ctx context.Context, addr Address, value uint32) error
}

// WriteRange writes values to consecutive addresses starting at addr.
func WriteRange(ctx context.Context, b Bus, addr Address, values []uint32) error {
	for _, v := range values {
		if err := b.Write(ctx, addr, v); err != nil {
			return err
		}
		addr = addr.Next()
	}
	return nil
}

// ReadRange reads count words from consecutive addresses starting at addr.
func ReadRange(ctx context.Context, b Bus, addr Address, count int) ([]uint32, error) {
	values := make([]uint32, count)
	for n := range values {
		v, err := b.Read(ctx, addr)
		if err != nil {
			return values[:n], err
		}
		values[n] = v
		addr = addr.Next()
	}
	return values, nil
}
