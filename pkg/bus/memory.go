package bus

import (
	"context"
	"sync"
)

type memKey struct {
	domain uint32
	offset uint32
}

// Memory is a lossless in-memory Bus.
// Cells never written read as zero.
type Memory struct {
	cells map[memKey]uint32
	lock  sync.RWMutex
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{cells: make(map[memKey]uint32)}
}

// Read implements Bus.
func (m *Memory) Read(ctx context.Context, addr Address) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, &Error{Op: "read", Addr: addr, Err: err}
	}
	return m.Peek(addr), nil
}

// Write implements Bus.
func (m *Memory) Write(ctx context.Context, addr Address, value uint32) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "write", Addr: addr, Err: err}
	}
	m.Poke(addr, value)
	return nil
}

// Peek gets the value without going through Bus semantics.
func (m *Memory) Peek(addr Address) uint32 {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.cells[memKey{addr.Domain, addr.Offset}]
}

// Poke sets the value without going through Bus semantics.
func (m *Memory) Poke(addr Address, value uint32) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.cells == nil {
		m.cells = make(map[memKey]uint32)
	}
	m.cells[memKey{addr.Domain, addr.Offset}] = value
}

// Has tells if the cell has been written.
func (m *Memory) Has(addr Address) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.cells[memKey{addr.Domain, addr.Offset}]
	return ok
}
