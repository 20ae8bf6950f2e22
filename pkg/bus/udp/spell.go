package udp

import "bytes"

// Spell is the token both ends know. The board firmware echoes it
// back once it is ready to serve requests.
var Spell = []uint32{
	0x4b52594d, 0x424f4152, 0x44205245, 0x41445921,
	0x00000001, 0x12344321, 0xa5a5a5a5, 0x5a5a5a5a,
}

// SpellBytes returns the encoded Spell.
func SpellBytes() []byte {
	b := make([]byte, len(Spell)*WordSize)
	for n, w := range Spell {
		ByteOrder.PutUint32(b[n*WordSize:], w)
	}
	return b
}

// IsSpell checks whether b is exactly the encoded Spell.
func IsSpell(b []byte) bool {
	return bytes.Equal(b, SpellBytes())
}
