package udp

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"github.com/robotalks/brd.go/pkg/bus"
)

// testPeer is a scripted board answering on a local UDP port.
type testPeer struct {
	conn   net.PacketConn
	spells int32
	reqs   int32

	// onSpell returns the reply to the n-th spell, nil for no reply.
	onSpell   func(n int, spell []byte) []byte
	// onRequest returns the reply to a request, nil for no reply.
	onRequest func(req *Request) []byte

	lock    sync.Mutex
	lastReq *Request
}

func newTestPeer(t *testing.T) *testPeer {
	conn, err := nettest.NewLocalPacketListener("udp4")
	require.NoError(t, err)
	p := &testPeer{
		conn:    conn,
		onSpell: func(_ int, spell []byte) []byte { return spell },
	}
	t.Cleanup(func() { conn.Close() })
	return p
}

func (p *testPeer) serveMemory(mem *bus.Memory) *testPeer {
	p.onRequest = func(req *Request) []byte {
		addr := bus.At(req.Domain, req.Offset)
		switch req.Command {
		case CmdRead:
			return ResponseTo(req, mem.Peek(addr)).Bytes(CmdRead)
		case CmdWrite:
			mem.Poke(addr, req.Value)
			return ResponseTo(req, 0).Bytes(CmdWrite)
		}
		return nil
	}
	return p
}

func (p *testPeer) run() *testPeer {
	go func() {
		buf := make([]byte, 1500)
		for {
			n, addr, err := p.conn.ReadFrom(buf)
			if err != nil {
				return
			}
			data := append([]byte(nil), buf[:n]...)
			var reply []byte
			if req, err := DecodeRequest(data); err == nil {
				atomic.AddInt32(&p.reqs, 1)
				p.lock.Lock()
				p.lastReq = req
				p.lock.Unlock()
				if p.onRequest != nil {
					reply = p.onRequest(req)
				}
			} else {
				cnt := atomic.AddInt32(&p.spells, 1)
				reply = p.onSpell(int(cnt), data)
			}
			if reply != nil {
				p.conn.WriteTo(reply, addr)
			}
		}
	}()
	return p
}

func (p *testPeer) addr() string {
	return p.conn.LocalAddr().String()
}

func (p *testPeer) spellCount() int {
	return int(atomic.LoadInt32(&p.spells))
}

func (p *testPeer) dial(t *testing.T, opts ...Option) (*Bus, error) {
	opts = append([]Option{WithDispatcher(NewDispatcher()), WithTimeout(200 * time.Millisecond)}, opts...)
	b, err := Dial(context.Background(), p.addr(), opts...)
	if err == nil {
		t.Cleanup(func() { b.Close() })
	}
	return b, err
}

func alterSpell(spell []byte) []byte {
	altered := append([]byte(nil), spell...)
	altered[0]++
	return altered
}

func TestHandshake(t *testing.T) {
	testCases := []struct {
		name     string
		attempts int
		bad      int
		succeed  bool
	}{
		{"first attempt", 2, 0, true},
		{"retry once", 2, 1, true},
		{"retry to last", 5, 4, true},
		{"exhausted", 2, 2, false},
		{"never", 10, 100, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPeer(t)
			p.onSpell = func(n int, spell []byte) []byte {
				if n <= tc.bad {
					return alterSpell(spell)
				}
				return spell
			}
			p.run()
			_, err := p.dial(t, WithAttempts(tc.attempts))
			if tc.succeed {
				require.NoError(t, err)
				require.Equal(t, tc.bad+1, p.spellCount())
				return
			}
			var hsErr *HandshakeError
			require.True(t, errors.As(err, &hsErr))
			require.Equal(t, tc.attempts, hsErr.Attempts)
			require.True(t, errors.Is(err, ErrBadSpell))
			require.Equal(t, tc.attempts, p.spellCount())
		})
	}
}

func TestHandshakeShortReply(t *testing.T) {
	p := newTestPeer(t)
	p.onSpell = func(n int, spell []byte) []byte {
		if n == 1 {
			return spell[:len(spell)-WordSize]
		}
		return spell
	}
	p.run()
	_, err := p.dial(t)
	require.NoError(t, err)
	require.Equal(t, 2, p.spellCount())
}

func TestHandshakeTimeout(t *testing.T) {
	p := newTestPeer(t)
	p.onSpell = func(int, []byte) []byte { return nil }
	p.run()
	_, err := p.dial(t, WithTimeout(50*time.Millisecond), WithAttempts(3))
	var hsErr *HandshakeError
	require.True(t, errors.As(err, &hsErr))
	require.Equal(t, 3, hsErr.Attempts)
	require.True(t, errors.Is(err, bus.ErrTimeout))
}

func TestReadWrite(t *testing.T) {
	ctx := context.Background()
	mem := bus.NewMemory()
	p := newTestPeer(t).serveMemory(mem).run()
	b, err := p.dial(t)
	require.NoError(t, err)

	addr := bus.At(3, 0x2180480)
	mem.Poke(addr, 0x000279e7)
	val, err := b.Read(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, uint32(0x000279e7), val)

	require.NoError(t, b.Write(ctx, addr, 0x0019e623))
	require.Equal(t, uint32(0x0019e623), mem.Peek(addr))
	p.lock.Lock()
	require.Equal(t, &Request{Command: CmdWrite, Domain: 3, Offset: 0x2180480, Size: WordSize, Value: 0x0019e623}, p.lastReq)
	p.lock.Unlock()

	values := []uint32{1, 2, 3, 0xdeadbeef}
	base := bus.At(3, 0x2001000)
	require.NoError(t, bus.WriteRange(ctx, b, base, values))
	got, err := bus.ReadRange(ctx, b, base, len(values))
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestFrameSizeError(t *testing.T) {
	p := newTestPeer(t)
	p.onRequest = func(req *Request) []byte {
		// always answer with a write-sized ack
		return ResponseTo(req, 0).Bytes(CmdWrite)
	}
	p.run()
	b, err := p.dial(t)
	require.NoError(t, err)

	_, err = b.Read(context.Background(), bus.At(2, 0))
	require.True(t, errors.Is(err, bus.ErrFrameSize))
	var busErr *bus.Error
	require.True(t, errors.As(err, &busErr))
	require.Equal(t, "read", busErr.Op)
	require.False(t, busErr.Timeout())

	require.NoError(t, b.Write(context.Background(), bus.At(2, 0), 1))
}

func TestTimeoutBound(t *testing.T) {
	p := newTestPeer(t)
	p.onRequest = func(*Request) []byte { return nil }
	p.run()
	timeout := 150 * time.Millisecond
	b, err := p.dial(t, WithTimeout(timeout))
	require.NoError(t, err)

	start := time.Now()
	_, err = b.Read(context.Background(), bus.At(2, 4))
	elapsed := time.Since(start)
	require.True(t, errors.Is(err, bus.ErrTimeout))
	require.True(t, err.(*bus.Error).Timeout())
	require.True(t, elapsed >= timeout, "returned after %v", elapsed)
	require.True(t, elapsed < timeout+time.Second, "returned after %v", elapsed)

	start = time.Now()
	err = b.Write(context.Background(), bus.At(2, 4), 1)
	require.True(t, errors.Is(err, bus.ErrTimeout))
	require.True(t, time.Since(start) >= timeout)
}

func TestContextCancel(t *testing.T) {
	p := newTestPeer(t)
	p.onRequest = func(*Request) []byte { return nil }
	p.run()
	b, err := p.dial(t, WithTimeout(5*time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)
	start := time.Now()
	_, err = b.Read(ctx, bus.At(2, 4))
	require.True(t, errors.Is(err, context.Canceled))
	require.True(t, time.Since(start) < 2*time.Second)
}

func TestSharedDispatcher(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher()
	mem1, mem2 := bus.NewMemory(), bus.NewMemory()
	p1 := newTestPeer(t).serveMemory(mem1).run()
	p2 := newTestPeer(t).serveMemory(mem2).run()
	b1, err := p1.dial(t, WithDispatcher(d))
	require.NoError(t, err)
	b2, err := p2.dial(t, WithDispatcher(d))
	require.NoError(t, err)

	require.NoError(t, b1.Write(ctx, bus.At(2, 0), 1))
	require.NoError(t, b2.Write(ctx, bus.At(2, 0), 2))
	require.Equal(t, uint32(1), mem1.Peek(bus.At(2, 0)))
	require.Equal(t, uint32(2), mem2.Peek(bus.At(2, 0)))
}

func TestSplitAddress(t *testing.T) {
	testCases := []struct {
		in   string
		host string
		port int
		err  bool
	}{
		{"192.168.1.10", "192.168.1.10", DefaultPort, false},
		{"board:4000", "board", 4000, false},
		{"board:", "", 0, true},
		{"board:99999", "", 0, true},
		{"board:abc", "", 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			host, port, err := SplitAddress(tc.in, DefaultPort)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.host, host)
			require.Equal(t, tc.port, port)
		})
	}
}

func TestTimeoutAlwaysBounded(t *testing.T) {
	testCases := []struct {
		name    string
		timeout time.Duration
		expect  time.Duration
	}{
		{"zero", 0, DefaultTimeout},
		{"negative", -time.Second, DefaultTimeout},
		{"set", 300 * time.Millisecond, 300 * time.Millisecond},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o := newOptions([]Option{WithTimeout(tc.timeout)})
			require.Equal(t, tc.expect, o.timeout)
			b := &Bus{Timeout: tc.timeout}
			require.Equal(t, tc.expect, b.timeout())
		})
	}
}
