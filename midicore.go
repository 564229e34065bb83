// Package midicore is the public façade of spec.md §1: it picks a
// backend (explicitly, or by falling back through every registered one
// in declared order, the same shape as the teacher's
// drivers.Get().(*rtmididrv.Driver) single-driver assumption generalized
// to many backends) and hands the caller an InputPort or OutputPort to
// open and then receive from (through the config's OnMessage/OnUMP
// callbacks) or Send through, without ever touching a drivers.Backend
// directly.
package midicore

import (
	"go.uber.org/zap"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/port"
)

// InputConfig configures a new InputPort.
type InputConfig struct {
	API    coredrivers.API
	UseAPI bool // if false, the first available backend is used instead of API

	Mode   merr.Mode
	Ignore coredrivers.IgnoreMask

	OnMessage func(message.Message)
	OnUMP     func(message.UMP)
	OnError   func(error)
	OnWarn    func(string)

	Logger *zap.SugaredLogger
}

// OutputConfig configures a new OutputPort.
type OutputConfig struct {
	API    coredrivers.API
	UseAPI bool

	Logger *zap.SugaredLogger
}

func resolveBackend(api coredrivers.API, useAPI bool) (coredrivers.Backend, error) {
	if useAPI {
		b, ok := coredrivers.Get(api)
		if !ok {
			return nil, merr.Newf(merr.AddressNotAvailable, "no backend registered for API %s", api)
		}
		if !b.Available() {
			return nil, merr.Newf(merr.AddressNotAvailable, "backend %s is not available on this host", api)
		}
		return b, nil
	}
	b, ok := coredrivers.FirstAvailable()
	if !ok {
		return nil, merr.New(merr.AddressNotAvailable, "no MIDI backend is available on this host")
	}
	return b, nil
}

// InputPort is an opened, connected, or virtual MIDI input, wrapping
// whichever drivers.In its backend produced.
type InputPort struct {
	backend coredrivers.Backend
	native  coredrivers.In
}

// NewInputPort selects a backend per cfg and constructs an unopened
// InputPort ready for Open or OpenVirtual.
func NewInputPort(cfg InputConfig) (*InputPort, error) {
	b, err := resolveBackend(cfg.API, cfg.UseAPI)
	if err != nil {
		return nil, err
	}
	native, err := b.NewIn(coredrivers.Config{
		Mode:      cfg.Mode,
		Ignore:    cfg.Ignore,
		OnMessage: cfg.OnMessage,
		OnUMP:     cfg.OnUMP,
		OnError:   cfg.OnError,
		OnWarn:    cfg.OnWarn,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &InputPort{backend: b, native: native}, nil
}

// API reports which backend this port was opened through.
func (p *InputPort) API() coredrivers.API { return p.backend.API() }

// Open connects this input to an existing port discovered via an
// Observer; localName is only meaningful to backends that expose it
// in diagnostics.
func (p *InputPort) Open(info port.Info, localName string) error {
	return p.native.OpenPort(info, localName)
}

// OpenVirtual creates a new virtual port other applications can connect
// to, on backends that support virtual ports.
func (p *InputPort) OpenVirtual(localName string) error {
	return p.native.OpenVirtualPort(localName)
}

// Close disconnects and releases the port.
func (p *InputPort) Close() error { return p.native.ClosePort() }

// IsOpen reports whether the port is currently open.
func (p *InputPort) IsOpen() bool { return p.native.IsPortOpen() }

// IsConnected reports whether the port is open and actively receiving,
// distinct from merely open-but-disconnected for backends that expose
// that distinction.
func (p *InputPort) IsConnected() bool { return p.native.IsPortConnected() }

// AbsoluteTimestamp returns the backend's best estimate of the last
// received message's absolute time, meaningful only when Capabilities
// reports Absolute == true for this backend.
func (p *InputPort) AbsoluteTimestamp() int64 { return p.native.AbsoluteTimestamp() }

// OutputPort is an opened, connected, or virtual MIDI output.
type OutputPort struct {
	backend coredrivers.Backend
	native  coredrivers.Out
}

// NewOutputPort selects a backend per cfg and constructs an unopened
// OutputPort ready for Open or OpenVirtual.
func NewOutputPort(cfg OutputConfig) (*OutputPort, error) {
	b, err := resolveBackend(cfg.API, cfg.UseAPI)
	if err != nil {
		return nil, err
	}
	native, err := b.NewOut(coredrivers.Config{Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}
	return &OutputPort{backend: b, native: native}, nil
}

// API reports which backend this port was opened through.
func (p *OutputPort) API() coredrivers.API { return p.backend.API() }

// Open connects this output to an existing port discovered via an
// Observer.
func (p *OutputPort) Open(info port.Info, localName string) error {
	return p.native.OpenPort(info, localName)
}

// OpenVirtual creates a new virtual output port.
func (p *OutputPort) OpenVirtual(localName string) error {
	return p.native.OpenVirtualPort(localName)
}

// Close disconnects and releases the port.
func (p *OutputPort) Close() error { return p.native.ClosePort() }

// IsOpen reports whether the port is currently open.
func (p *OutputPort) IsOpen() bool { return p.native.IsPortOpen() }

// SendMessage sends a complete MIDI 1.0 message immediately.
func (p *OutputPort) SendMessage(b []byte) error { return p.native.SendMessage(b) }

// SendUMP sends a Universal MIDI Packet immediately, on backends that
// support MIDI 2.0 transport.
func (p *OutputPort) SendUMP(words []uint32) error { return p.native.SendUMP(words) }

// ScheduleMessage sends b at timestamp ts instead of immediately, on
// backends implementing coredrivers.ScheduledOut.
func (p *OutputPort) ScheduleMessage(ts merr.Timestamp, b []byte) error {
	sched, ok := p.native.(coredrivers.ScheduledOut)
	if !ok {
		return merr.New(merr.OperationNotSupported, "backend does not support scheduled output")
	}
	return sched.ScheduleMessage(ts, b)
}

// ScheduleUMP sends words at timestamp ts instead of immediately, on
// backends implementing coredrivers.ScheduledOut.
func (p *OutputPort) ScheduleUMP(ts merr.Timestamp, words []uint32) error {
	sched, ok := p.native.(coredrivers.ScheduledOut)
	if !ok {
		return merr.New(merr.OperationNotSupported, "backend does not support scheduled output")
	}
	return sched.ScheduleUMP(ts, words)
}
