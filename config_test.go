package httpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptionsMatchKnownDefaults(t *testing.T) {
	opt := DefaultOptions()
	assert.Equal(t, DefaultMaxRedirects, opt.MaxRedirects)
	assert.True(t, opt.SendReferer)
	assert.Equal(t, 2, opt.HTTP2MaxRetries)
	assert.Equal(t, "chrome", opt.Emulation)
}

func TestHTTPVersionSelection(t *testing.T) {
	opt := DefaultOptions()
	assert.Equal(t, VersionAuto, opt.httpVersion())

	opt.HTTPVersion = "http2"
	assert.Equal(t, VersionHTTP2Only, opt.httpVersion())

	opt.HTTPVersion = "http1"
	assert.Equal(t, VersionHTTP1Only, opt.httpVersion())
}

func TestEmulationProviderSelection(t *testing.T) {
	opt := DefaultOptions()
	opt.Emulation = "firefox"
	assert.NotNil(t, opt.emulationProvider())

	opt.Emulation = "none"
	assert.Nil(t, opt.emulationProvider())
}
