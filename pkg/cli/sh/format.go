package sh

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/robotalks/brd.go/pkg/bus"
)

// ParseWord parses a 32-bit value in decimal, 0x hex, 0o octal or 0b binary.
func ParseWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return uint32(v), nil
}

// ParseWords parses a list of values.
func ParseWords(args []string) ([]uint32, error) {
	values := make([]uint32, len(args))
	for n, arg := range args {
		v, err := ParseWord(arg)
		if err != nil {
			return nil, err
		}
		values[n] = v
	}
	return values, nil
}

// Word is a value at an address, used for JSON output.
type Word struct {
	Domain uint32 `json:"domain"`
	Offset uint32 `json:"offset"`
	Value  uint32 `json:"value"`
}

// Words pairs consecutive values with their addresses.
func Words(addr bus.Address, values []uint32) []Word {
	words := make([]Word, len(values))
	for n, v := range values {
		words[n] = Word{Domain: addr.Domain, Offset: addr.Offset, Value: v}
		addr = addr.Next()
	}
	return words
}

// FormatWords prints values starting from addr, perLine values a line.
func FormatWords(addr bus.Address, values []uint32, perLine int) string {
	if perLine <= 0 {
		perLine = 1
	}
	var w bytes.Buffer
	for n, v := range values {
		if n%perLine == 0 {
			if n > 0 {
				w.WriteByte('\n')
			}
			fmt.Fprintf(&w, "%s:", addr)
		}
		fmt.Fprintf(&w, " 0x%08x", v)
		addr = addr.Next()
	}
	if len(values) > 0 {
		w.WriteByte('\n')
	}
	return w.String()
}
