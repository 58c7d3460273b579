//go:build linux

package connect

import (
	"log/slog"
	"syscall"

	"golang.org/x/sys/unix"
)

// controlFunc returns a net.Dialer.Control callback that applies every
// socket option TCPConnectOptions names beyond what net.Dialer exposes
// directly, set on the raw fd before connect (SO_REUSEADDR, TCP_USER_TIMEOUT,
// SO_BINDTODEVICE, TCP_KEEPCNT all must be set pre-connect to take effect).
func (o TCPConnectOptions) controlFunc() func(string, string, syscall.RawConn) error {
	if !o.ReuseAddr && o.UserTimeout == 0 && o.BindToDevice == "" && o.KeepAliveRetries == 0 {
		return nil
	}
	return func(network, address string, c syscall.RawConn) error {
		var ctrlErr error
		err := c.Control(func(fd uintptr) {
			if o.ReuseAddr {
				if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
					slog.Warn("set SO_REUSEADDR", "error", err)
				}
			}
			if o.UserTimeout > 0 {
				ms := int(o.UserTimeout.Milliseconds())
				if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, ms); err != nil {
					slog.Warn("set TCP_USER_TIMEOUT", "error", err)
				}
			}
			if o.BindToDevice != "" {
				if err := unix.SetsockoptString(int(fd), unix.SOL_SOCKET, unix.SO_BINDTODEVICE, o.BindToDevice); err != nil {
					ctrlErr = err
				}
			}
			if o.KeepAliveRetries > 0 {
				if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPCNT, o.KeepAliveRetries); err != nil {
					slog.Warn("set TCP_KEEPCNT", "error", err)
				}
			}
		})
		if err != nil {
			return err
		}
		return ctrlErr
	}
}
