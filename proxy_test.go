package httpcore

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinProxyCycles(t *testing.T) {
	fn := NewRoundRobinProxy("http://proxy1:8080", "http://proxy2:8080")
	require.NotNil(t, fn)

	seen := make(map[string]int)
	for i := 0; i < 4; i++ {
		u, err := fn(nil)
		require.NoError(t, err)
		seen[u.String()]++
	}
	assert.Equal(t, 2, seen["http://proxy1:8080"])
	assert.Equal(t, 2, seen["http://proxy2:8080"])
}

func TestProxyMatcherChainPrefersPerRequestOverride(t *testing.T) {
	clientProxy := func(*Request) (*url.URL, error) {
		return url.Parse("http://client-proxy:8080")
	}
	chain := proxyMatcherChain(clientProxy)

	req, err := NewRequest("GET", "https://example.com", nil, nil)
	require.NoError(t, err)

	override, _ := url.Parse("http://override-proxy:9090")
	Set(req.Extensions, ExtKeyProxy, func(*Request) (*url.URL, error) { return override, nil })

	got, err := chain(req)
	require.NoError(t, err)
	assert.Equal(t, "http://override-proxy:9090", got.String())
}

func TestProxyMatcherChainFallsBackToClient(t *testing.T) {
	clientProxy := func(*Request) (*url.URL, error) {
		return url.Parse("http://client-proxy:8080")
	}
	chain := proxyMatcherChain(clientProxy)

	req, err := NewRequest("GET", "https://example.com", nil, nil)
	require.NoError(t, err)

	got, err := chain(req)
	require.NoError(t, err)
	assert.Equal(t, "http://client-proxy:8080", got.String())
}
