// Package sim simulates the network side of a board.
package sim

import (
	"context"
	"net"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/brd.go/pkg/bus"
	"github.com/robotalks/brd.go/pkg/bus/udp"
	fx "github.com/robotalks/brd.go/pkg/framework"
)

// Board answers bus requests from a Memory.
type Board struct {
	Memory     *bus.Memory
	// DropSpells is the number of first handshakes left unanswered.
	DropSpells int
	// BadSpells is the number of handshakes answered with a wrong spell,
	// counted after the dropped ones.
	BadSpells  int
	// OnWrite is invoked after a write is applied.
	OnWrite    func(addr bus.Address, value uint32)

	conn   net.PacketConn
	lock   sync.Mutex
	spells int
}

// NewBoard creates a Board backed by mem.
func NewBoard(mem *bus.Memory) *Board {
	if mem == nil {
		mem = bus.NewMemory()
	}
	return &Board{Memory: mem}
}

// Listen opens the UDP port.
func (b *Board) Listen(addr string) error {
	conn, err := net.ListenPacket("udp4", addr)
	if err != nil {
		return err
	}
	b.conn = conn
	return nil
}

// Addr returns the local address after Listen.
func (b *Board) Addr() net.Addr {
	return b.conn.LocalAddr()
}

// Name implements framework.Named.
func (b *Board) Name() string {
	return "sim-bus"
}

// Run implements framework.Runnable.
func (b *Board) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, b.conn, func() error {
		return serve(b.conn, func(pkt []byte, _ net.Addr) []byte {
			return b.Handle(pkt)
		})
	})
}

// Handle returns the reply to a datagram, nil for no reply.
func (b *Board) Handle(pkt []byte) []byte {
	if udp.IsSpell(pkt) {
		b.lock.Lock()
		n := b.spells
		b.spells++
		b.lock.Unlock()
		switch {
		case n < b.DropSpells:
			glog.V(1).Infof("sim: drop handshake %d", n+1)
			return nil
		case n < b.DropSpells+b.BadSpells:
			glog.V(1).Infof("sim: corrupt handshake %d", n+1)
			reply := udp.SpellBytes()
			reply[0] ^= 0xff
			return reply
		}
		return udp.SpellBytes()
	}
	req, err := udp.DecodeRequest(pkt)
	if err != nil {
		glog.Warningf("sim: %v", err)
		return nil
	}
	addr := bus.At(req.Domain, req.Offset)
	switch req.Command {
	case udp.CmdRead:
		v := b.Memory.Peek(addr)
		glog.V(2).Infof("sim: read %s = 0x%08x", addr, v)
		return udp.ResponseTo(req, v).Bytes(req.Command)
	case udp.CmdWrite:
		glog.V(2).Infof("sim: write %s = 0x%08x", addr, req.Value)
		b.Memory.Poke(addr, req.Value)
		if b.OnWrite != nil {
			b.OnWrite(addr, req.Value)
		}
		return udp.ResponseTo(req, 0).Bytes(req.Command)
	}
	glog.Warningf("sim: unknown command 0x%x", req.Command)
	return nil
}

func serve(conn net.PacketConn, handle func(pkt []byte, from net.Addr) []byte) error {
	buf := make([]byte, 1500)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			return err
		}
		if reply := handle(buf[:n], addr); reply != nil {
			if _, err = conn.WriteTo(reply, addr); err != nil {
				glog.Warningf("sim: reply to %s: %v", addr, err)
			}
		}
	}
}
