// Package b101e1ngu controls the B101E1NGU DSP board.
package b101e1ngu

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/brd.go/pkg/board"
	"github.com/robotalks/brd.go/pkg/boot"
	"github.com/robotalks/brd.go/pkg/bus"
	"github.com/robotalks/brd.go/pkg/bus/udp"
)

// Name is the board name.
const Name = "b101e1ngu"

// DefaultSettleDelay is the time the board is left idle before reset.
const DefaultSettleDelay = time.Second

// Board is a B101E1NGU board controller.
type Board struct {
	Bus         bus.Bus
	Loader      *boot.Loader
	SettleDelay time.Duration

	state board.State
	lock  sync.RWMutex
}

var _ board.Board = (*Board)(nil)

// New creates a Board over an established bus.
func New(b bus.Bus) *Board {
	return &Board{
		Bus:         b,
		Loader:      boot.NewLoader(),
		SettleDelay: DefaultSettleDelay,
	}
}

// Dial connects the board at host[:port] using the default bus config.
func Dial(ctx context.Context, netaddr string, opts ...udp.Option) (*Board, error) {
	b, err := udp.NewConfig().WithAddress(netaddr).NewBus(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

// ProcessorBaseAddress is the address where images are loaded.
func ProcessorBaseAddress() bus.Address {
	return bus.At(ProcBus, ProcessorBase)
}

// State returns the last observed state.
func (b *Board) State() board.State {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.state
}

func (b *Board) setState(s board.State) {
	b.lock.Lock()
	b.state = s
	b.lock.Unlock()
	glog.V(1).Infof("%s: %s", Name, s)
}

// Close closes the underlying bus if it can be closed.
func (b *Board) Close() error {
	if c, ok := b.Bus.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Reset implements board.Board.
func (b *Board) Reset(ctx context.Context, flashBoot bool) error {
	b.setState(board.StateUnknown)
	r := &regs{ctx: ctx, bus: b.Bus}
	hmode := bus.At(HostBus, HMODE)
	hmask := bus.At(HostBus, HMASK)

	if r.write(hmode, 0); r.err != nil {
		return r.err
	}
	if err := b.settle(ctx); err != nil {
		return err
	}

	mode := uint32(hmodeResetMask)
	if flashBoot {
		mode |= HModeFlash
	}
	r.write(hmode, mode)
	r.read(hmode)
	r.read(bus.At(HostBus, HSTATUS))
	if r.err != nil {
		return r.err
	}
	b.setState(board.StateHeldInReset)

	r.write(hmask, HMaskCntErr)
	r.write(hmask, 0)
	r.write(bus.At(HostBus, SEM0), 0)
	if flashBoot {
		r.write(hmode, HModeFlash)
	} else {
		r.write(hmode, 0)
	}

	syscon := bus.At(ProcBus, SYSCON)
	v := r.read(syscon)
	if r.err != nil {
		return r.err
	}
	if v != ResetSYSCON {
		glog.Warningf("%s: SYSCON after reset 0x%08x, expect 0x%08x", Name, v, ResetSYSCON)
		return &board.Error{Name: Name, Msg: "bad reset syscon register"}
	}
	r.write(syscon, DefaultSYSCON)
	v = r.read(syscon)
	if r.err != nil {
		return r.err
	}
	if v != DefaultSYSCON {
		glog.Warningf("%s: SYSCON 0x%08x, expect 0x%08x", Name, v, DefaultSYSCON)
		return &board.Error{Name: Name, Msg: "bad new value of syscon register"}
	}

	r.write(hmask, 0)
	r.write(bus.At(ProcBus, SDRCON), DefaultSDRCON)
	if r.err != nil {
		return r.err
	}
	if err := bus.WriteRange(ctx, b.Bus, bus.At(HostBus, MSGADR), make([]uint32, MsgWords)); err != nil {
		return err
	}
	if r.write(hmask, HMaskMsg8); r.err != nil {
		return r.err
	}
	b.setState(board.StateConfigured)
	return nil
}

// Load implements board.Board.
func (b *Board) Load(ctx context.Context, img boot.Image, args []string) error {
	l := b.Loader
	if l == nil {
		l = boot.NewLoader()
	}
	return l.Load(ctx, ProcessorBaseAddress(), b.Bus, img, args)
}

// LoadFile loads an ELF executable.
func (b *Board) LoadFile(ctx context.Context, path string, args []string) error {
	img, err := boot.OpenELF(path)
	if err != nil {
		return err
	}
	return b.Load(ctx, img, args)
}

// Start implements board.Board.
func (b *Board) Start(ctx context.Context) error {
	if err := b.Bus.Write(ctx, bus.At(ProcBus, VIRPT), 0); err != nil {
		return err
	}
	b.setState(board.StateRunning)
	return nil
}

func (b *Board) settle(ctx context.Context) error {
	if b.SettleDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(b.SettleDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// regs performs a sequence of register accesses, stopping at the first error.
type regs struct {
	ctx context.Context
	bus bus.Bus
	err error
}

func (r *regs) read(addr bus.Address) uint32 {
	if r.err != nil {
		return 0
	}
	var v uint32
	v, r.err = r.bus.Read(r.ctx, addr)
	return v
}

func (r *regs) write(addr bus.Address, v uint32) {
	if r.err != nil {
		return
	}
	r.err = r.bus.Write(r.ctx, addr, v)
}

// SeedPowerOn sets the registers a board exposes right after power on.
func SeedPowerOn(mem *bus.Memory) {
	mem.Poke(bus.At(ProcBus, SYSCON), ResetSYSCON)
}
