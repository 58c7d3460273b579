package connect

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// dialViaProxy opens rawConn (already dialed to the proxy's address) into a
// tunnel to target using an HTTP CONNECT, returning once the tunnel is
// established and ready for TLS or plaintext traffic.
func dialViaProxy(ctx context.Context, rawConn net.Conn, proxy *url.URL, target string) error {
	connectReq := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: target},
		Host:   target,
		Header: make(http.Header),
	}
	if user := proxy.User; user != nil {
		connectReq.Header.Set("Proxy-Authorization", "Basic "+basicAuth(user))
	}

	if deadline, ok := ctx.Deadline(); ok {
		rawConn.SetDeadline(deadline)
		defer rawConn.SetDeadline(time.Time{})
	}

	if err := connectReq.Write(rawConn); err != nil {
		return fmt.Errorf("write CONNECT request: %w", err)
	}

	br := bufio.NewReader(rawConn)
	resp, err := http.ReadResponse(br, connectReq)
	if err != nil {
		return fmt.Errorf("read CONNECT response: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("proxy CONNECT failed: %s", resp.Status)
	}
	if br.Buffered() > 0 {
		return fmt.Errorf("proxy sent unexpected data before CONNECT tunnel use")
	}
	return nil
}

func basicAuth(u *url.Userinfo) string {
	pass, _ := u.Password()
	return base64.StdEncoding.EncodeToString([]byte(u.Username() + ":" + pass))
}
