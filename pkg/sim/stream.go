package sim

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/robotalks/brd.go/pkg/bus/udp"
	fx "github.com/robotalks/brd.go/pkg/framework"
)

// Stream serves the observation port. A client handshakes with the
// spell and then receives every chunk from Output as one datagram.
// Chunks are dropped while no client is attached.
type Stream struct {
	Output <-chan []byte

	conn net.PacketConn
	lock sync.RWMutex
	peer net.Addr
}

// Listen opens the UDP port.
func (s *Stream) Listen(addr string) error {
	conn, err := net.ListenPacket("udp4", addr)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

// Addr returns the local address after Listen.
func (s *Stream) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Peer returns the attached client.
func (s *Stream) Peer() net.Addr {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.peer
}

// Name implements framework.Named.
func (s *Stream) Name() string {
	return "sim-stream"
}

// Run implements framework.Runnable.
func (s *Stream) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fx.RunWithContextCloser(ctx, s.conn, func() error {
			return serve(s.conn, s.handle)
		})
	})
	g.Go(func() error {
		return s.forward(ctx)
	})
	return g.Wait()
}

func (s *Stream) handle(pkt []byte, from net.Addr) []byte {
	if !udp.IsSpell(pkt) {
		glog.V(1).Infof("sim: stream ignores %d bytes from %s", len(pkt), from)
		return nil
	}
	s.lock.Lock()
	s.peer = from
	s.lock.Unlock()
	glog.Infof("sim: stream client %s attached", from)
	return udp.SpellBytes()
}

func (s *Stream) forward(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-s.Output:
			if !ok {
				return nil
			}
			peer := s.Peer()
			if peer == nil {
				glog.V(2).Infof("sim: no client, drop %d bytes", len(data))
				continue
			}
			if _, err := s.conn.WriteTo(data, peer); err != nil {
				return err
			}
		}
	}
}
