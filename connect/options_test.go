package connect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestControlFuncNilWhenNoExtraOptionsSet(t *testing.T) {
	assert.Nil(t, DefaultTCPConnectOptions().controlFunc())
}

func TestControlFuncSetWhenAnyExtraOptionSet(t *testing.T) {
	assert.NotNil(t, TCPConnectOptions{ReuseAddr: true}.controlFunc())
	assert.NotNil(t, TCPConnectOptions{UserTimeout: time.Second}.controlFunc())
	assert.NotNil(t, TCPConnectOptions{BindToDevice: "eth0"}.controlFunc())
	assert.NotNil(t, TCPConnectOptions{KeepAliveRetries: 3}.controlFunc())
}
