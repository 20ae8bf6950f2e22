package udp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/robotalks/brd.go/pkg/bus"
	fx "github.com/robotalks/brd.go/pkg/framework"
)

// Dispatcher runs the bounded waits of all buses sharing it, one at a time.
// A wait is armed with a deadline when it starts and the pending receive
// is cancelled when either the deadline expires or the context is done.
type Dispatcher struct {
	lock sync.Mutex
}

// DefaultDispatcher is used by buses created without WithDispatcher.
var DefaultDispatcher = NewDispatcher()

var aLongTimeAgo = time.Unix(1, 0)

// NewDispatcher creates a Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Receive waits for a single datagram from conn.
// It returns bus.ErrTimeout if nothing arrives within timeout, and the
// context error if ctx is done first. A zero timeout only waits on ctx.
func (d *Dispatcher) Receive(ctx context.Context, conn net.Conn, p []byte, timeout time.Duration) (int, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}
	defer conn.SetReadDeadline(time.Time{})

	var n int
	err := fx.RunWithContextCancel(ctx, func() {
		conn.SetReadDeadline(aLongTimeAgo)
	}, func() (err error) {
		n, err = conn.Read(p)
		return
	})
	if err == nil {
		return n, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return 0, bus.ErrTimeout
	}
	return 0, err
}
