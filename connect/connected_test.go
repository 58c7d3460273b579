package connect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoisonPill(t *testing.T) {
	var p PoisonPill
	assert.False(t, p.Poisoned())
	p.Poison()
	assert.True(t, p.Poisoned())
}

func TestConnectedCanShare(t *testing.T) {
	c := &Connected{Alpn: AlpnH2}
	assert.True(t, c.CanShare())
	c.Alpn = AlpnH1
	assert.False(t, c.CanShare())
}
