package stream

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// SetReceiveBuffer requests a socket receive buffer of size bytes and
// returns the size the kernel granted.
func SetReceiveBuffer(conn net.Conn, size int) (int, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return size, nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}
	var granted int
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, size); sockErr != nil {
			return
		}
		granted, sockErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF)
	})
	if err == nil {
		err = sockErr
	}
	if err != nil {
		return 0, err
	}
	// the kernel doubles the value for bookkeeping overhead
	return granted / 2, nil
}
