// Package drivers defines the uniform contract every MIDI transport
// backend implements (spec.md §4.1), plus the ordered registry that the
// façade types in the root midicore package dispatch through. It mirrors
// the shape of gitlab.com/gomidi/midi/v2's drivers package — the same
// In/Out/registry split the teacher (odaacabeef/midi-cable) already
// depends on — generalized to the full state machine and API surface
// this core is responsible for.
package drivers

import (
	"go.uber.org/zap"

	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/port"
)

// API is the closed set of backend enumerators from spec.md §6.
type API int

const (
	CoreMIDI API = iota
	AlsaSeq
	AlsaRaw
	JackMIDI
	WindowsMM
	WindowsUWP
	WebMIDI
	PipeWire
	AlsaRawUMP
	AlsaSeqUMP
	CoreMIDIUMP
	WindowsMIDIServices
	Network
	NetworkUMP
	AndroidAMidi
	Keyboard
	KDMAPI
	JackUMP
	PipeWireUMP
	Dummy
)

// apiNames is the lower_snake_case machine name table of spec.md §6.
var apiNames = map[API]string{
	CoreMIDI:            "coremidi",
	AlsaSeq:             "alsa_seq",
	AlsaRaw:             "alsa_raw",
	JackMIDI:            "jack_midi",
	WindowsMM:           "windows_mm",
	WindowsUWP:          "windows_uwp",
	WebMIDI:             "webmidi",
	PipeWire:            "pipewire",
	AlsaRawUMP:          "alsa_raw_ump",
	AlsaSeqUMP:          "alsa_seq_ump",
	CoreMIDIUMP:         "coremidi_ump",
	WindowsMIDIServices: "windows_midi_services",
	Network:             "network",
	NetworkUMP:          "network_ump",
	AndroidAMidi:        "android_amidi",
	Keyboard:            "keyboard",
	KDMAPI:              "kdmapi",
	JackUMP:             "jack_ump",
	PipeWireUMP:         "pipewire_ump",
	Dummy:               "dummy",
}

// String returns the lower_snake_case machine name for api.
func (api API) String() string {
	if n, ok := apiNames[api]; ok {
		return n
	}
	return "unknown"
}

// Config is the neutral configuration shared by every backend: callbacks,
// ignore flags, and timestamp mode, per spec.md §4.1.
type Config struct {
	Mode   merr.Mode
	Ignore IgnoreMask

	OnMessage func(message.Message)
	OnUMP     func(message.UMP)

	OnError func(error)
	OnWarn  func(string)

	// Logger receives structured diagnostics; defaults to a no-op logger
	// so a library caller never gets unsolicited output (see SPEC_FULL.md
	// §7). cmd/miditool does not set one.
	Logger *zap.SugaredLogger
}

// IgnoreMask mirrors instate.IgnoreMask without importing instate, so
// drivers does not depend on the decoder package it is itself a client
// of conceptually (backends construct their own instate.Decoder from
// this, in the backend package, not here).
type IgnoreMask struct {
	SysEx   bool
	Timing  bool
	Sensing bool
}

// Log returns cfg.Logger, or a no-op logger if none was supplied. Backend
// packages should always go through this rather than reading Logger
// directly, since a zero Config has a nil Logger.
func (c Config) Log() *zap.SugaredLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop().Sugar()
}

// ConnState is the per-connection lifecycle state machine of spec.md §4.1.
type ConnState int

const (
	StateConstructed ConnState = iota
	StateClientOpen
	StatePortOpen
	StateConnected
	StateDead
)

// In is the backend contract for an input connection.
type In interface {
	API() API
	OpenPort(p port.Info, localName string) error
	OpenVirtualPort(localName string) error
	ClosePort() error
	SetPortName(name string) error
	IsPortOpen() bool
	IsPortConnected() bool
	AbsoluteTimestamp() int64
}

// Out is the backend contract for an output connection.
type Out interface {
	API() API
	OpenPort(p port.Info, localName string) error
	OpenVirtualPort(localName string) error
	ClosePort() error
	SetPortName(name string) error
	IsPortOpen() bool
	SendMessage(b []byte) error
	SendUMP(words []uint32) error
}

// ScheduledOut is implemented by Out backends that can schedule output at
// a future timestamp instead of sending immediately (spec.md §4.1).
type ScheduledOut interface {
	Out
	ScheduleMessage(ts merr.Timestamp, b []byte) error
	ScheduleUMP(ts merr.Timestamp, words []uint32) error
}

// Observer is the backend contract for port enumeration and hotplug
// notification (spec.md §4.5).
type Observer interface {
	API() API
	InputPorts() ([]port.Info, error)
	OutputPorts() ([]port.Info, error)
	Close() error
}

// ObserverCallbacks carries the four hotplug callbacks plus the
// track_hardware/virtual/any filter of spec.md §4.5.
type ObserverCallbacks struct {
	InputAdded    func(port.Info)
	InputRemoved  func(port.Info)
	OutputAdded   func(port.Info)
	OutputRemoved func(port.Info)

	TrackHardware bool
	TrackVirtual  bool
	TrackAny      bool
}

// Backend is the compile-time descriptor every transport implementation
// provides, plus factory methods for its three concrete types, per
// spec.md §4.1.
type Backend interface {
	API() API
	Name() string        // lower_snake_case machine name
	DisplayName() string // free-form display name
	Available() bool

	NewIn(cfg Config) (In, error)
	NewOut(cfg Config) (Out, error)
	NewObserver(cfg Config, cb ObserverCallbacks) (Observer, error)
}
