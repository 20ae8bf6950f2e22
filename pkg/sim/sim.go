package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/robotalks/brd.go/pkg/bus"
)

// Simulator runs a Board and an optional Stream together.
type Simulator struct {
	Board  *Board
	Stream *Stream
}

// New creates a Simulator backed by mem with a Stream fed by output.
// A nil output disables the Stream.
func New(mem *bus.Memory, output <-chan []byte) *Simulator {
	s := &Simulator{Board: NewBoard(mem)}
	if output != nil {
		s.Stream = &Stream{Output: output}
	}
	return s
}

// Listen opens the ports.
func (s *Simulator) Listen(busAddr, streamAddr string) error {
	if err := s.Board.Listen(busAddr); err != nil {
		return err
	}
	if s.Stream != nil {
		if err := s.Stream.Listen(streamAddr); err != nil {
			s.Board.conn.Close()
			return err
		}
	}
	return nil
}

// Name implements framework.Named.
func (s *Simulator) Name() string {
	return "sim"
}

// Run implements framework.Runnable.
func (s *Simulator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Board.Run(ctx) })
	if s.Stream != nil {
		g.Go(func() error { return s.Stream.Run(ctx) })
	}
	return g.Wait()
}
