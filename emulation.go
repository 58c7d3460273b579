package httpcore

import (
	"net/http"

	utls "github.com/refraction-networking/utls"

	"github.com/shiroyk/httpcore/h2"
)

// Emulation bundles everything that makes a request look like it came from
// a particular TLS/HTTP client: default headers, the order to emit them
// in, the HTTP/2 connection shape, and the TLS ClientHello fingerprint.
// Applying one replaces (never merges) each field it sets — a caller that
// wants to tweak one header on top of a profile should apply the profile
// first, then set that header explicitly on the request.
type Emulation struct {
	Headers    http.Header
	HeaderOrder OrderedHeaders
	HTTP2      h2.Config
	ClientHello utls.ClientHelloID
}

// EmulationProvider yields a fresh Emulation, called once per Client build
// (not per request) so a provider can, e.g., round-robin between profiles.
type EmulationProvider func() Emulation

// chromeEmulation is a representative modern-Chrome-like profile: a plain
// HelloChrome_Auto fingerprint plus the header set and order Chrome sends
// on a typical navigation request.
func chromeEmulation() Emulation {
	h := make(http.Header)
	h.Set("sec-ch-ua", `"Not)A;Brand";v="99", "Google Chrome";v="127", "Chromium";v="127"`)
	h.Set("sec-ch-ua-mobile", "?0")
	h.Set("sec-ch-ua-platform", `"Windows"`)
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Accept-Encoding", defaultAcceptEncoding)
	h.Set("Accept-Language", "en-US,en;q=0.9")

	return Emulation{
		Headers: h,
		HeaderOrder: OrderedHeaders{
			"sec-ch-ua", "sec-ch-ua-mobile", "sec-ch-ua-platform",
			"upgrade-insecure-requests", "user-agent", "accept",
			"sec-fetch-site", "sec-fetch-mode", "sec-fetch-user", "sec-fetch-dest",
			"accept-encoding", "accept-language",
		},
		HTTP2: h2.Config{
			Settings: []h2.Setting{
				{ID: h2.SettingHeaderTableSize, Val: 65536},
				{ID: h2.SettingEnablePush, Val: 0},
				{ID: h2.SettingInitialWindowSize, Val: 6291456},
				{ID: h2.SettingMaxHeaderListSize, Val: 262144},
			},
			PseudoHeaderOrder: []string{":method", ":authority", ":scheme", ":path"},
		},
		ClientHello: utls.HelloChrome_Auto,
	}
}

// EmulationChrome is a ready-to-use modern-Chrome emulation profile.
var EmulationChrome EmulationProvider = chromeEmulation

func firefoxEmulation() Emulation {
	h := make(http.Header)
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Accept-Encoding", defaultAcceptEncoding)
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")

	return Emulation{
		Headers: h,
		HeaderOrder: OrderedHeaders{
			"user-agent", "accept", "accept-language", "accept-encoding",
			"upgrade-insecure-requests", "sec-fetch-dest", "sec-fetch-mode",
			"sec-fetch-site", "sec-fetch-user",
		},
		HTTP2: h2.Config{
			Settings: []h2.Setting{
				{ID: h2.SettingHeaderTableSize, Val: 65536},
				{ID: h2.SettingInitialWindowSize, Val: 131072},
				{ID: h2.SettingMaxFrameSize, Val: 16384},
			},
			PseudoHeaderOrder: []string{":method", ":path", ":authority", ":scheme"},
		},
		ClientHello: utls.HelloFirefox_Auto,
	}
}

// EmulationFirefox is a ready-to-use modern-Firefox emulation profile.
var EmulationFirefox EmulationProvider = firefoxEmulation
