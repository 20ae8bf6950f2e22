// Package stream reads the output a board streams over UDP.
package stream

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/brd.go/pkg/bus/udp"
)

// Reader receives datagrams from the board observation port.
type Reader struct {
	conn       net.Conn
	dispatcher *udp.Dispatcher
	buf        []byte
}

// handshakeTimeout bounds each handshake wait even when Timeout is unset.
// Only Receive waits without a deadline.
func (c *Config) handshakeTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Dial connects the observation port using current config.
func (c *Config) Dial(ctx context.Context) (*Reader, error) {
	conn, err := udp.DialConn(ctx, c.Address, DefaultPort)
	if err != nil {
		return nil, err
	}
	if c.BufferSize > 0 {
		granted, err := SetReceiveBuffer(conn, c.BufferSize)
		if err != nil {
			glog.Warningf("set socket receive buffer: %v", err)
		} else if granted < c.BufferSize {
			glog.Warningf("socket buffer size is %d bytes, requested %d", granted, c.BufferSize)
			glog.Warningf("raise /proc/sys/net/core/rmem_max to fix this, e.g: sysctl -w net.core.rmem_max=%d", c.BufferSize)
		}
	}
	d := udp.NewDispatcher()
	if err = udp.Handshake(ctx, conn, d, c.handshakeTimeout(), c.Attempts); err != nil {
		conn.Close()
		return nil, err
	}
	glog.Infof("stream connected to %s", conn.RemoteAddr())
	size := c.Size
	if size <= 0 {
		size = DefaultSize
	}
	return &Reader{conn: conn, dispatcher: d, buf: make([]byte, size)}, nil
}

// Dial connects the observation port at host[:port] with default config.
func Dial(ctx context.Context, netaddr string) (*Reader, error) {
	return NewConfig().WithAddress(netaddr).Dial(ctx)
}

// Receive waits for the next datagram. The returned slice is valid
// until the next call.
func (r *Reader) Receive(ctx context.Context) ([]byte, error) {
	n, err := r.dispatcher.Receive(ctx, r.conn, r.buf, 0)
	if err != nil {
		return nil, err
	}
	return r.buf[:n], nil
}

// Forward copies every datagram payload to w until ctx is done or
// an error occurs.
func (r *Reader) Forward(ctx context.Context, w io.Writer) error {
	for {
		data, err := r.Receive(ctx)
		if err != nil {
			return err
		}
		glog.V(2).Infof("RCV %d bytes", len(data))
		if _, err = w.Write(data); err != nil {
			return err
		}
	}
}

// Close implements io.Closer.
func (r *Reader) Close() error {
	return r.conn.Close()
}
