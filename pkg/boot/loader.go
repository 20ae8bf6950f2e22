// Package boot loads executable images into the board memory.
package boot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/brd.go/pkg/bus"
)

// ArgvSymbol is the symbol of the buffer receiving command line arguments.
const ArgvSymbol = "___argv_string"

// WordSize is the size of a memory word in bytes.
const WordSize = 4

// ByteOrder is the order of words in image sections.
var ByteOrder binary.ByteOrder = binary.LittleEndian

// Loader writes an Image through a bus.Bus and verifies it.
type Loader struct {
	// ArgvSymbol names the argument buffer symbol.
	ArgvSymbol string
	// Warn receives non-fatal conditions.
	Warn       func(error)
}

// NewLoader creates a Loader with defaults.
func NewLoader() *Loader {
	return &Loader{ArgvSymbol: ArgvSymbol}
}

// Load loads img with the default Loader.
func Load(ctx context.Context, base bus.Address, b bus.Bus, img Image, args []string) error {
	return NewLoader().Load(ctx, base, b, img, args)
}

// LoadFile opens an ELF file and loads it with the default Loader.
func LoadFile(ctx context.Context, base bus.Address, b bus.Bus, path string, args []string) error {
	img, err := OpenELF(path)
	if err != nil {
		return err
	}
	return Load(ctx, base, b, img, args)
}

// Load writes code sections with verification, then the arguments.
func (l *Loader) Load(ctx context.Context, base bus.Address, b bus.Bus, img Image, args []string) error {
	if err := l.LoadCode(ctx, base, b, img); err != nil {
		return err
	}
	err := l.LoadArgs(ctx, base, b, img, args)
	var notFound *SymbolNotFoundError
	if errors.As(err, &notFound) {
		l.warn(err)
		return nil
	}
	return err
}

// LoadCode writes every section and reads it back. All sections are
// checked for word alignment before the first write.
func (l *Loader) LoadCode(ctx context.Context, base bus.Address, b bus.Bus, img Image) error {
	sections := img.Sections()
	words := make([][]uint32, len(sections))
	for n, sec := range sections {
		data, err := Words(sec.Data)
		if err != nil {
			return fmt.Errorf("boot: section %s: %w", sec.Name, err)
		}
		words[n] = data
	}
	for n, sec := range sections {
		if err := loadSection(ctx, base.Add(sec.Addr), b, sec.Name, words[n]); err != nil {
			return err
		}
	}
	return nil
}

func loadSection(ctx context.Context, addr bus.Address, b bus.Bus, name string, data []uint32) error {
	glog.V(1).Infof("loading section %s: %d words at %s", name, len(data), addr)
	if err := bus.WriteRange(ctx, b, addr, data); err != nil {
		return err
	}
	mem, err := bus.ReadRange(ctx, b, addr, len(data))
	if err != nil {
		return err
	}
	for n, v := range data {
		if mem[n] != v {
			return &MemoryError{
				Addr:     addr.Add(uint32(n) * addr.Stride()),
				Expected: v,
				Actual:   mem[n],
			}
		}
	}
	return nil
}

// LoadArgs writes args into the argument buffer.
// No readback is performed.
func (l *Loader) LoadArgs(ctx context.Context, base bus.Address, b bus.Bus, img Image, args []string) error {
	name := l.ArgvSymbol
	if name == "" {
		name = ArgvSymbol
	}
	sym, ok := img.Symbol(name)
	if !ok {
		return &SymbolNotFoundError{Name: name}
	}
	data, err := ArgWords(args, sym.Size)
	if err != nil {
		return err
	}
	addr := base.Add(sym.Addr)
	glog.V(1).Infof("loading arguments %q at %s", strings.Join(args, " "), addr)
	return bus.WriteRange(ctx, b, addr, data)
}

func (l *Loader) warn(err error) {
	if l.Warn != nil {
		l.Warn(err)
		return
	}
	glog.Warning(err)
}

// Words converts bytes to words.
func Words(data []byte) ([]uint32, error) {
	if len(data)%WordSize != 0 {
		return nil, ErrUnaligned
	}
	words := make([]uint32, len(data)/WordSize)
	for n := range words {
		words[n] = ByteOrder.Uint32(data[n*WordSize:])
	}
	return words, nil
}

// ArgWords joins args with spaces into a buffer of size words,
// one character per word, zero padded. The joined string must be
// strictly shorter than size to leave room for the terminator.
func ArgWords(args []string, size uint32) ([]uint32, error) {
	str := strings.Join(args, " ")
	if uint64(len(str)) >= uint64(size) {
		return nil, &ArgumentError{Len: len(str), Size: size}
	}
	data := make([]uint32, size)
	for n := 0; n < len(str); n++ {
		data[n] = uint32(str[n])
	}
	return data, nil
}
