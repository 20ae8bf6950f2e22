// Package udp implements bus.Bus over the board's UDP protocol.
package udp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/brd.go/pkg/bus"
)

// Defaults
const (
	DefaultPort     = 3001
	DefaultTimeout  = 5 * time.Second
	DefaultAttempts = 2
)

// Bus is a bus.Bus talking to the board over a connected UDP socket.
// Requests are strictly sequential.
type Bus struct {
	// Timeout bounds every wait for a response. Zero or less means
	// DefaultTimeout.
	Timeout time.Duration

	conn       net.Conn
	dispatcher *Dispatcher
	buf        []byte
}

// Option customizes a Bus.
type Option func(*options)

type options struct {
	timeout    time.Duration
	attempts   int
	dispatcher *Dispatcher
}

// WithTimeout sets the response timeout. Zero or less keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithAttempts sets the number of handshake attempts.
func WithAttempts(n int) Option {
	return func(o *options) { o.attempts = n }
}

// WithDispatcher sets the Dispatcher used for waits.
func WithDispatcher(d *Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

func newOptions(opts []Option) options {
	o := options{
		timeout:    DefaultTimeout,
		attempts:   DefaultAttempts,
		dispatcher: DefaultDispatcher,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	if o.attempts < 1 {
		o.attempts = 1
	}
	return o
}

// SplitAddress splits host[:port], using defaultPort if port is absent.
func SplitAddress(netaddr string, defaultPort int) (string, int, error) {
	pos := strings.IndexByte(netaddr, ':')
	if pos < 0 {
		return netaddr, defaultPort, nil
	}
	port, err := strconv.ParseUint(netaddr[pos+1:], 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %v", netaddr, err)
	}
	return netaddr[:pos], int(port), nil
}

// DialConn resolves host[:port] and connects a UDP socket.
func DialConn(ctx context.Context, netaddr string, defaultPort int) (*net.UDPConn, error) {
	host, port, err := SplitAddress(netaddr, defaultPort)
	if err != nil {
		return nil, err
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "udp4", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	return conn.(*net.UDPConn), nil
}

// Dial connects to the board at host[:port] and performs the handshake.
func Dial(ctx context.Context, netaddr string, opts ...Option) (*Bus, error) {
	conn, err := DialConn(ctx, netaddr, DefaultPort)
	if err != nil {
		return nil, err
	}
	b, err := NewBus(ctx, conn, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	glog.Infof("bus connected to %s", conn.RemoteAddr())
	return b, nil
}

// NewBus wraps a connected socket and performs the handshake.
func NewBus(ctx context.Context, conn net.Conn, opts ...Option) (*Bus, error) {
	o := newOptions(opts)
	if err := Handshake(ctx, conn, o.dispatcher, o.timeout, o.attempts); err != nil {
		return nil, err
	}
	return &Bus{
		Timeout:    o.timeout,
		conn:       conn,
		dispatcher: o.dispatcher,
		buf:        make([]byte, 64*WordSize),
	}, nil
}

// Handshake sends the spell and expects it echoed, up to attempts times.
func Handshake(ctx context.Context, conn net.Conn, d *Dispatcher, timeout time.Duration, attempts int) error {
	spell := SpellBytes()
	buf := make([]byte, len(spell)+WordSize)
	var err error
	for i := 1; i <= attempts; i++ {
		if err = sendSpell(ctx, conn, d, spell, buf, timeout); err == nil {
			glog.V(1).Infof("handshake succeeded at attempt %d", i)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &HandshakeError{Attempts: i, Err: ctxErr}
		}
		glog.V(1).Infof("handshake attempt %d/%d: %v", i, attempts, err)
	}
	return &HandshakeError{Attempts: attempts, Err: err}
}

func sendSpell(ctx context.Context, conn net.Conn, d *Dispatcher, spell, buf []byte, timeout time.Duration) error {
	if _, err := conn.Write(spell); err != nil {
		return err
	}
	n, err := d.Receive(ctx, conn, buf, timeout)
	if err != nil {
		return err
	}
	if !IsSpell(buf[:n]) {
		return ErrBadSpell
	}
	return nil
}

// Read implements bus.Bus.
func (b *Bus) Read(ctx context.Context, addr bus.Address) (uint32, error) {
	resp, err := b.do(ctx, &Request{
		Command: CmdRead,
		Domain:  addr.Domain,
		Offset:  addr.Offset,
		Size:    WordSize,
	})
	if err != nil {
		return 0, &bus.Error{Op: "read", Addr: addr, Err: err}
	}
	return resp.Value, nil
}

// Write implements bus.Bus.
func (b *Bus) Write(ctx context.Context, addr bus.Address, value uint32) error {
	_, err := b.do(ctx, &Request{
		Command: CmdWrite,
		Domain:  addr.Domain,
		Offset:  addr.Offset,
		Size:    WordSize,
		Value:   value,
	})
	if err != nil {
		return &bus.Error{Op: "write", Addr: addr, Err: err}
	}
	return nil
}

// Close implements io.Closer.
func (b *Bus) Close() error {
	return b.conn.Close()
}

// RemoteAddr returns the address of the board.
func (b *Bus) RemoteAddr() net.Addr {
	return b.conn.RemoteAddr()
}

func (b *Bus) timeout() time.Duration {
	if b.Timeout <= 0 {
		return DefaultTimeout
	}
	return b.Timeout
}

func (b *Bus) do(ctx context.Context, req *Request) (*Response, error) {
	if glog.V(2) {
		glog.Infof("SND cmd=0x%x 0x%x 0x%x val=0x%08x", req.Command, req.Domain, req.Offset, req.Value)
	}
	if _, err := b.conn.Write(req.Bytes()); err != nil {
		return nil, err
	}
	n, err := b.dispatcher.Receive(ctx, b.conn, b.buf, b.timeout())
	if err != nil {
		return nil, err
	}
	resp, ok := DecodeResponse(req.Command, b.buf[:n])
	if !ok {
		return nil, fmt.Errorf("%w: got %d bytes, expect %d", bus.ErrFrameSize, n, ResponseWords(req.Command)*WordSize)
	}
	if glog.V(2) {
		glog.Infof("RCV cmd=0x%x val=0x%08x", req.Command, resp.Value)
	}
	return resp, nil
}
