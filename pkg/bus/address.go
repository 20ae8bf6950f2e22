package bus

import "fmt"

// Address identifies a register or memory cell on the board.
type Address struct {
	// Domain selects the address space (e.g. host control vs processor).
	Domain uint32
	// Offset is the location within the domain.
	Offset uint32
	// Step is the increment applied by Next, zero means 1.
	Step uint32
}

// At creates an Address with Step 1.
func At(domain, offset uint32) Address {
	return Address{Domain: domain, Offset: offset, Step: 1}
}

// WithStep returns a copy using the specified step.
func (a Address) WithStep(step uint32) Address {
	a.Step = step
	return a
}

// Stride returns the effective step.
func (a Address) Stride() uint32 {
	if a.Step == 0 {
		return 1
	}
	return a.Step
}

// Next returns the address advanced by Stride.
func (a Address) Next() Address {
	a.Offset += a.Stride()
	return a
}

// Add returns the address with delta added to Offset.
func (a Address) Add(delta uint32) Address {
	a.Offset += delta
	return a
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return fmt.Sprintf("0x%x 0x%x", a.Domain, a.Offset)
}
