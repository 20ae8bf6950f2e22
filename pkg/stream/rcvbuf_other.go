//go:build !linux

package stream

import "net"

// SetReceiveBuffer requests a socket receive buffer of size bytes.
// The granted size can't be queried on this platform and is assumed.
func SetReceiveBuffer(conn net.Conn, size int) (int, error) {
	type readBufferSetter interface {
		SetReadBuffer(int) error
	}
	if s, ok := conn.(readBufferSetter); ok {
		if err := s.SetReadBuffer(size); err != nil {
			return 0, err
		}
	}
	return size, nil
}
