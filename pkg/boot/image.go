package boot

import (
	"debug/elf"
	"fmt"
	"io"
)

// Section is a loadable block of an executable image.
type Section struct {
	Name string
	Addr uint32
	Data []byte
}

// Symbol is an entry of the image symbol table.
type Symbol struct {
	Name string
	Addr uint32
	Size uint32
}

// Image is a parsed executable image.
type Image interface {
	// Sections returns loadable program sections in file order.
	Sections() []Section
	// Symbol looks up a symbol by name.
	Symbol(name string) (Symbol, bool)
}

// ELFImage is an Image read from an ELF executable.
type ELFImage struct {
	sections []Section
	symbols  map[string]Symbol
}

// OpenELF reads an ELF executable from file.
func OpenELF(path string) (*ELFImage, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("boot: can't find or process ELF file %s: %w", path, err)
	}
	defer f.Close()
	img, err := newELFImage(f)
	if err != nil {
		return nil, fmt.Errorf("boot: can't find or process ELF file %s: %w", path, err)
	}
	return img, nil
}

// ReadELF reads an ELF executable.
func ReadELF(r io.ReaderAt) (*ELFImage, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, err
	}
	return newELFImage(f)
}

func newELFImage(f *elf.File) (*ELFImage, error) {
	img := &ELFImage{symbols: make(map[string]Symbol)}
	for _, s := range f.Sections {
		if s.Type != elf.SHT_PROGBITS {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Name, err)
		}
		img.sections = append(img.sections, Section{Name: s.Name, Addr: uint32(s.Addr), Data: data})
	}
	syms, err := f.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, err
	}
	for _, sym := range syms {
		if _, exist := img.symbols[sym.Name]; !exist {
			img.symbols[sym.Name] = Symbol{Name: sym.Name, Addr: uint32(sym.Value), Size: uint32(sym.Size)}
		}
	}
	return img, nil
}

// Sections implements Image.
func (img *ELFImage) Sections() []Section {
	return img.sections
}

// Symbol implements Image.
func (img *ELFImage) Symbol(name string) (Symbol, bool) {
	sym, ok := img.symbols[name]
	return sym, ok
}
