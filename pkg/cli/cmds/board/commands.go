// Package board provides shell commands operating a connected board.
package board

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/brd.go/pkg/board/b101e1ngu"
	"github.com/robotalks/brd.go/pkg/bus"
	"github.com/robotalks/brd.go/pkg/cli/sh"
)

const (
	wordsPerLine = 4
	// MaxDumpWords limits the words read by a single dump.
	MaxDumpWords = 4096
	defaultDump  = 16
)

var domains = map[string]uint32{
	"host": b101e1ngu.HostBus,
	"proc": b101e1ngu.ProcBus,
}

// ParseAddress parses DOMAIN OFFSET, DOMAIN is a number or host/proc.
func ParseAddress(domain, offset string) (bus.Address, error) {
	d, ok := domains[strings.ToLower(domain)]
	if !ok {
		v, err := sh.ParseWord(domain)
		if err != nil {
			return bus.Address{}, fmt.Errorf("invalid domain %q", domain)
		}
		d = v
	}
	off, err := sh.ParseWord(offset)
	if err != nil {
		return bus.Address{}, err
	}
	return bus.At(d, off), nil
}

// ParseCount parses the word count of dump, 1 to MaxDumpWords.
func ParseCount(s string) (int, error) {
	v, err := sh.ParseWord(s)
	if err != nil {
		return 0, err
	}
	if v == 0 || v > MaxDumpWords {
		return 0, fmt.Errorf("count %s out of range 1-%d", s, MaxDumpWords)
	}
	return int(v), nil
}

func addressArgs(c *ishell.Context, min int) (bus.Address, bool) {
	if len(c.Args) < min {
		c.Err(fmt.Errorf("at least %d arguments expected", min))
		return bus.Address{}, false
	}
	addr, err := ParseAddress(c.Args[0], c.Args[1])
	if err != nil {
		c.Err(err)
		return bus.Address{}, false
	}
	return addr, true
}

func readWords(c *ishell.Context, addr bus.Address, count int) {
	s := sh.ShellFrom(c)
	values, err := bus.ReadRange(s.Context(), s.Board.Bus, addr, count)
	if err != nil {
		c.Err(err)
		return
	}
	sh.Print(c, sh.Words(addr, values), sh.FormatWords(addr, values, wordsPerLine))
}

func printState(c *ishell.Context) {
	state := sh.ShellFrom(c).Board.State().String()
	sh.Print(c, map[string]string{"state": state}, state+"\n")
}

var (
	// ReadCmd reads a register.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "DOMAIN OFFSET",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if addr, ok := addressArgs(c, 2); ok {
				readWords(c, addr, 1)
			}
		}),
	}

	// DumpCmd reads consecutive words.
	DumpCmd = ishell.Cmd{
		Name:    "dump",
		Aliases: []string{"x"},
		Help:    "DOMAIN OFFSET [COUNT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			addr, ok := addressArgs(c, 2)
			if !ok {
				return
			}
			count := defaultDump
			if len(c.Args) > 2 {
				n, err := ParseCount(c.Args[2])
				if err != nil {
					c.Err(err)
					return
				}
				count = n
			}
			readWords(c, addr, count)
		}),
	}

	// WriteCmd writes consecutive words.
	WriteCmd = ishell.Cmd{
		Name:    "write",
		Aliases: []string{"w"},
		Help:    "DOMAIN OFFSET VALUE...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			addr, ok := addressArgs(c, 3)
			if !ok {
				return
			}
			values, err := sh.ParseWords(c.Args[2:])
			if err != nil {
				c.Err(err)
				return
			}
			s := sh.ShellFrom(c)
			if err = bus.WriteRange(s.Context(), s.Board.Bus, addr, values); err != nil {
				c.Err(err)
			}
		}),
	}

	// ResetCmd resets the board.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "[flash]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			flashBoot := len(c.Args) > 0 && c.Args[0] == "flash"
			s := sh.ShellFrom(c)
			if err := s.Board.Reset(s.Context(), flashBoot); err != nil {
				c.Err(err)
				return
			}
			printState(c)
		}),
	}

	// LoadCmd loads an executable.
	LoadCmd = ishell.Cmd{
		Name:    "load",
		Aliases: []string{"l"},
		Help:    "PATH [ARGS...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("path required"))
				return
			}
			s := sh.ShellFrom(c)
			if err := s.Board.LoadFile(s.Context(), c.Args[0], c.Args[1:]); err != nil {
				c.Err(err)
			}
		}),
	}

	// StartCmd starts the loaded program.
	StartCmd = ishell.Cmd{
		Name: "start",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			if err := s.Board.Start(s.Context()); err != nil {
				c.Err(err)
				return
			}
			printState(c)
		}),
	}

	// StateCmd shows the observed board state.
	StateCmd = ishell.Cmd{
		Name: "state",
		Help: "",
		Func: sh.MustBeConnected(printState),
	}
)

func init() {
	sh.AddCmds(
		&ReadCmd,
		&DumpCmd,
		&WriteCmd,
		&ResetCmd,
		&LoadCmd,
		&StartCmd,
		&StateCmd,
	)
}
