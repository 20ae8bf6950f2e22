package udp

import (
	"encoding/binary"
	"fmt"
)

// Protocol constants.
const (
	Magic uint32 = 0x12344321

	CmdRead  uint32 = 0x300
	CmdWrite uint32 = 0x400

	// WordSize is the size in bytes of a protocol word.
	WordSize = 4

	headerWords = 8
)

// ByteOrder is the word order on the wire, the native order of
// both the host and the board.
var ByteOrder binary.ByteOrder = binary.LittleEndian

// Request is a request frame.
//
//	read:  [Magic, CmdRead, Domain, Offset, Size, 0, 0, 0]
//	write: [Magic, CmdWrite, Domain, Offset, Size, 0, 0, 0, Value]
type Request struct {
	Command uint32
	Domain  uint32
	Offset  uint32
	Size    uint32
	Value   uint32
}

// Words returns the frame length in words.
func (r *Request) Words() int {
	if r.Command == CmdWrite {
		return headerWords + 1
	}
	return headerWords
}

// Bytes encodes the request.
func (r *Request) Bytes() []byte {
	b := make([]byte, r.Words()*WordSize)
	ByteOrder.PutUint32(b[0:], Magic)
	ByteOrder.PutUint32(b[4:], r.Command)
	ByteOrder.PutUint32(b[8:], r.Domain)
	ByteOrder.PutUint32(b[12:], r.Offset)
	ByteOrder.PutUint32(b[16:], r.Size)
	if r.Command == CmdWrite {
		ByteOrder.PutUint32(b[headerWords*WordSize:], r.Value)
	}
	return b
}

// DecodeRequest decodes a request frame.
func DecodeRequest(b []byte) (*Request, error) {
	if len(b) < headerWords*WordSize || len(b)%WordSize != 0 {
		return nil, fmt.Errorf("invalid request size %d", len(b))
	}
	if m := ByteOrder.Uint32(b); m != Magic {
		return nil, fmt.Errorf("invalid magic 0x%08x", m)
	}
	r := &Request{
		Command: ByteOrder.Uint32(b[4:]),
		Domain:  ByteOrder.Uint32(b[8:]),
		Offset:  ByteOrder.Uint32(b[12:]),
		Size:    ByteOrder.Uint32(b[16:]),
	}
	if len(b) != r.Words()*WordSize {
		return nil, fmt.Errorf("invalid request size %d for command 0x%x", len(b), r.Command)
	}
	if r.Command == CmdWrite {
		r.Value = ByteOrder.Uint32(b[headerWords*WordSize:])
	}
	return r, nil
}

// Response is a response frame. The header echoes the request and
// is not interpreted; a read response carries the value in an extra
// trailing word.
type Response struct {
	Header [headerWords]uint32
	Value  uint32
}

// ResponseWords returns the expected response length for a command.
func ResponseWords(cmd uint32) int {
	if cmd == CmdRead {
		return headerWords + 1
	}
	return headerWords
}

// ResponseTo creates the response the board sends for a request.
func ResponseTo(r *Request, value uint32) *Response {
	return &Response{
		Header: [headerWords]uint32{Magic, r.Command, r.Domain, r.Offset, r.Size},
		Value:  value,
	}
}

// Bytes encodes the response for the command.
func (r *Response) Bytes(cmd uint32) []byte {
	b := make([]byte, ResponseWords(cmd)*WordSize)
	for n, w := range r.Header {
		ByteOrder.PutUint32(b[n*WordSize:], w)
	}
	if cmd == CmdRead {
		ByteOrder.PutUint32(b[headerWords*WordSize:], r.Value)
	}
	return b
}

// DecodeResponse decodes a response frame of cmd.
// Only the length is validated.
func DecodeResponse(cmd uint32, b []byte) (*Response, bool) {
	if len(b) != ResponseWords(cmd)*WordSize {
		return nil, false
	}
	r := &Response{}
	for n := range r.Header {
		r.Header[n] = ByteOrder.Uint32(b[n*WordSize:])
	}
	if cmd == CmdRead {
		r.Value = ByteOrder.Uint32(b[headerWords*WordSize:])
	}
	return r, true
}
