package sh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/brd.go/pkg/bus"
)

func TestParseWord(t *testing.T) {
	cases := []struct {
		str   string
		value uint32
		ok    bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{"0x2513", 0x2513, true},
		{"0xFFFFFFFF", 0xffffffff, true},
		{"0b101", 5, true},
		{"0x100000000", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}
	for _, c := range cases {
		t.Run(c.str, func(t *testing.T) {
			v, err := ParseWord(c.str)
			if !c.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, c.value, v)
		})
	}
}

func TestParseWords(t *testing.T) {
	values, err := ParseWords([]string{"1", "0x2"})
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2}, values)
	_, err = ParseWords([]string{"1", "x"})
	require.Error(t, err)
}

func TestFormatWords(t *testing.T) {
	addr := bus.At(3, 0x100)
	require.Equal(t, "", FormatWords(addr, nil, 4))
	require.Equal(t,
		"0x3 0x100: 0x00000001 0x00000002\n0x3 0x102: 0x00000003\n",
		FormatWords(addr, []uint32{1, 2, 3}, 2))
	require.Equal(t,
		[]Word{{3, 0x100, 1}, {3, 0x101, 2}},
		Words(addr, []uint32{1, 2}))
}
