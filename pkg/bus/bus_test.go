package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressArithmetic(t *testing.T) {
	testCases := []struct {
		name string
		addr Address
	}{
		{"step 1", At(2, 0)},
		{"step 4", Address{Domain: 3, Offset: 0x2000000, Step: 4}},
		{"wrap", Address{Domain: 7, Offset: 0xfffffffe, Step: 1}},
		{"zero step", Address{Domain: 1, Offset: 0x80}},
		{"zero value", Address{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for n := uint32(0); n < 10; n++ {
				a := tc.addr
				for i := uint32(0); i < n; i++ {
					a = a.Next()
				}
				require.Equal(t, tc.addr.Add(n*tc.addr.Stride()), a)
				require.Equal(t, tc.addr.Domain, a.Domain)
				require.Equal(t, tc.addr.Step, a.Step)
			}
		})
	}
}

func TestAddressZeroStep(t *testing.T) {
	a := Address{Domain: 2, Offset: 0x10}
	require.Equal(t, uint32(1), a.Stride())
	require.Equal(t, uint32(0x11), a.Next().Offset)
	require.Equal(t, uint32(0x12), a.Next().Next().Offset)
	require.Equal(t, uint32(4), a.WithStep(4).Stride())
}

func TestAddressString(t *testing.T) {
	require.Equal(t, "0x3 0x2001000", At(3, 0x2001000).String())
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	values := []uint32{0xdeadbeef, 0, 1, 0xffffffff, 0x12344321}
	addr := At(3, 0x2001000)
	require.NoError(t, WriteRange(ctx, mem, addr, values))
	got, err := ReadRange(ctx, mem, addr, len(values))
	require.NoError(t, err)
	require.Equal(t, values, got)

	stepped := addr.WithStep(2)
	require.NoError(t, WriteRange(ctx, mem, stepped, values))
	require.Equal(t, values[1], mem.Peek(addr.Add(2)))
	require.Equal(t, values[4], mem.Peek(addr.Add(8)))
}

type failingBus struct {
	Memory
	failAt int
	calls  int
}

var errInjected = errors.New("injected")

func (b *failingBus) Read(ctx context.Context, addr Address) (uint32, error) {
	if b.calls++; b.calls == b.failAt {
		return 0, &Error{Op: "read", Addr: addr, Err: errInjected}
	}
	return b.Memory.Read(ctx, addr)
}

func (b *failingBus) Write(ctx context.Context, addr Address, v uint32) error {
	if b.calls++; b.calls == b.failAt {
		return &Error{Op: "write", Addr: addr, Err: errInjected}
	}
	return b.Memory.Write(ctx, addr, v)
}

func TestRangeStopsOnError(t *testing.T) {
	ctx := context.Background()
	b := &failingBus{failAt: 3}
	err := WriteRange(ctx, b, At(2, 0x80), []uint32{1, 2, 3, 4})
	require.True(t, errors.Is(err, errInjected))
	require.Equal(t, 3, b.calls)
	require.Equal(t, uint32(2), b.Peek(At(2, 0x81)))
	require.Equal(t, uint32(0), b.Peek(At(2, 0x83)))

	b = &failingBus{failAt: 2}
	got, err := ReadRange(ctx, b, At(2, 0x80), 4)
	require.Error(t, err)
	require.Len(t, got, 1)
	var busErr *Error
	require.True(t, errors.As(err, &busErr))
	require.Equal(t, At(2, 0x81), busErr.Addr)
	require.False(t, busErr.Timeout())
}

func TestMemoryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory().Read(ctx, At(1, 1))
	require.True(t, errors.Is(err, context.Canceled))
}

func TestErrorTimeout(t *testing.T) {
	err := &Error{Op: "read", Addr: At(2, 4), Err: ErrTimeout}
	require.True(t, err.Timeout())
	require.True(t, errors.Is(err, ErrTimeout))
	require.Equal(t, "bus: read 0x2 0x4: timeout", err.Error())
}
