package httpcore

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shiroyk/httpcore/connect"
	"github.com/shiroyk/httpcore/pool"
)

// Options is the YAML-decodable shape of a Client's configuration, matching
// the teacher's own Options struct convention (yaml-tagged fields, sane
// zero-value defaults applied by the builder rather than by the decoder).
type Options struct {
	Timeout          time.Duration `yaml:"timeout"`
	StartTimeout     time.Duration `yaml:"start-timeout"`
	BodyTimeout      time.Duration `yaml:"body-timeout"`
	ConnectTimeout   time.Duration `yaml:"connect-timeout"`
	MaxIdlePerHost   int           `yaml:"max-idle-per-host"`
	MaxPoolKeys      int           `yaml:"max-pool-keys"`
	IdleConnTimeout  time.Duration `yaml:"idle-conn-timeout"`
	MaxRedirects     int           `yaml:"max-redirects"`
	DisableRedirects bool          `yaml:"disable-redirects"`
	HTTPSOnly        bool          `yaml:"https-only-redirects"`
	SendReferer      bool          `yaml:"referer"`
	HTTP2MaxRetries  int           `yaml:"http2-max-retries"`
	Proxies          []string      `yaml:"proxies"`
	Emulation        string        `yaml:"emulation"`
	// HTTPVersion is "auto" (default, ALPN negotiates), "http1", or "http2".
	// An "http2" client requires TLS to negotiate h2 or every request fails
	// with a protocol error — see baseTransport.Do.
	HTTPVersion string `yaml:"http-version"`

	// ReuseAddr sets SO_REUSEADDR on outbound sockets (see
	// connect.TCPConnectOptions.ReuseAddr).
	ReuseAddr bool `yaml:"reuse-addr"`
	// TCPUserTimeout sets TCP_USER_TIMEOUT (Linux only; see
	// connect.TCPConnectOptions.UserTimeout).
	TCPUserTimeout time.Duration `yaml:"tcp-user-timeout"`
	// BindToDevice sets SO_BINDTODEVICE (Linux only; see
	// connect.TCPConnectOptions.BindToDevice).
	BindToDevice string `yaml:"bind-to-device"`
	// KeepAliveRetries sets TCP_KEEPCNT (Linux only; see
	// connect.TCPConnectOptions.KeepAliveRetries).
	KeepAliveRetries int `yaml:"keepalive-retries"`
}

// DefaultOptions matches the defaults original_source's ClientBuilder::new
// establishes (90s pool idle timeout, 2 HTTP/2 retries, referer on, 10
// redirects, system proxy on).
func DefaultOptions() Options {
	return Options{
		Timeout:         0,
		ConnectTimeout:  30 * time.Second,
		MaxIdlePerHost:  0,
		IdleConnTimeout: 90 * time.Second,
		MaxRedirects:    DefaultMaxRedirects,
		SendReferer:     true,
		HTTP2MaxRetries: 2,
		Emulation:       "chrome",
	}
}

// LoadOptions reads and decodes YAML configuration from path, starting from
// DefaultOptions so an incomplete file still yields sane values.
func LoadOptions(path string) (Options, error) {
	opt := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opt, fmt.Errorf("read options file: %w", err)
	}
	if err := yaml.Unmarshal(data, &opt); err != nil {
		return opt, fmt.Errorf("decode options file: %w", err)
	}
	return opt, nil
}

func (o Options) poolConfig() pool.Config {
	return pool.Config{
		MaxIdlePerKey: o.MaxIdlePerHost,
		MaxKeys:       o.MaxPoolKeys,
		IdleTimeout:   o.IdleConnTimeout,
	}
}

func (o Options) tcpOptions() connect.TCPConnectOptions {
	opts := connect.DefaultTCPConnectOptions()
	if o.ConnectTimeout > 0 {
		opts.ConnectTimeout = o.ConnectTimeout
	}
	opts.ReuseAddr = o.ReuseAddr
	opts.UserTimeout = o.TCPUserTimeout
	opts.BindToDevice = o.BindToDevice
	opts.KeepAliveRetries = o.KeepAliveRetries
	return opts
}

func (o Options) httpVersion() Version {
	switch o.HTTPVersion {
	case "http1":
		return VersionHTTP1Only
	case "http2":
		return VersionHTTP2Only
	default:
		return VersionAuto
	}
}

func (o Options) emulationProvider() EmulationProvider {
	switch o.Emulation {
	case "firefox":
		return EmulationFirefox
	case "none", "":
		return nil
	default:
		return EmulationChrome
	}
}
