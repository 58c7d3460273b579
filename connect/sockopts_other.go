//go:build !linux

package connect

import (
	"log/slog"
	"syscall"
)

// controlFunc is a no-op outside Linux: SO_REUSEADDR, TCP_USER_TIMEOUT,
// SO_BINDTODEVICE and TCP_KEEPCNT are either Linux-specific or need
// platform-specific syscall numbers this build doesn't carry. NoDelay still
// applies portably via net.TCPConn in applySocketOptions.
func (o TCPConnectOptions) controlFunc() func(string, string, syscall.RawConn) error {
	if !o.ReuseAddr && o.UserTimeout == 0 && o.BindToDevice == "" && o.KeepAliveRetries == 0 {
		return nil
	}
	return func(network, address string, c syscall.RawConn) error {
		slog.Warn("TCP socket options unsupported on this platform",
			"reuseAddr", o.ReuseAddr, "userTimeout", o.UserTimeout,
			"bindToDevice", o.BindToDevice, "keepAliveRetries", o.KeepAliveRetries)
		return nil
	}
}
