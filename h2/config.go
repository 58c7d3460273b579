// Package h2 adapts golang.org/x/net/http2 — the real HTTP/2 wire codec —
// into this module's connection pool and emulation model. It configures and
// drives http2.Transport; it does not reimplement the codec.
package h2

import "fmt"

// SettingID is an HTTP/2 SETTINGS parameter identifier.
type SettingID uint16

const (
	SettingHeaderTableSize      SettingID = 0x1
	SettingEnablePush           SettingID = 0x2
	SettingMaxConcurrentStreams SettingID = 0x3
	SettingInitialWindowSize    SettingID = 0x4
	SettingMaxFrameSize         SettingID = 0x5
	SettingMaxHeaderListSize    SettingID = 0x6
)

var settingNames = map[SettingID]string{
	SettingHeaderTableSize:      "HEADER_TABLE_SIZE",
	SettingEnablePush:           "ENABLE_PUSH",
	SettingMaxConcurrentStreams: "MAX_CONCURRENT_STREAMS",
	SettingInitialWindowSize:    "INITIAL_WINDOW_SIZE",
	SettingMaxFrameSize:         "MAX_FRAME_SIZE",
	SettingMaxHeaderListSize:    "MAX_HEADER_LIST_SIZE",
}

func (s SettingID) String() string {
	if v, ok := settingNames[s]; ok {
		return v
	}
	return fmt.Sprintf("UNKNOWN_SETTING_%d", uint16(s))
}

// Setting is one SETTINGS frame entry as recorded by an emulation profile
// from a captured client's frame.
type Setting struct {
	ID  SettingID
	Val uint32
}

// PriorityParam mirrors the stream-priority fields a captured client sends
// alongside its initial HEADERS frame.
type PriorityParam struct {
	StreamDep uint32
	Exclusive bool
	Weight    uint8
}

// Config describes the HTTP/2 connection shape of an emulation profile: the
// SETTINGS, the pseudo-header and regular header order, and the stream
// priority of the first request. New applies only MaxReadFrameSize and
// MaxHeaderListSize; the remaining fields are carried but not sent.
type Config struct {
	Settings            []Setting
	PseudoHeaderOrder    []string
	HeaderOrder          []string
	InitialWindowUpdate  uint32
	Priority             *PriorityParam
	MaxReadFrameSize     uint32
	MaxHeaderListSize    uint32
}
