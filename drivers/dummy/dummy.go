// Package dummy registers the always-available no-op backend: it accepts
// opens and sends but delivers nothing and talks to no real transport. It
// exists so the registry fallback chain of spec.md §4.1 always terminates
// successfully, the same role libremidi's dummy backend plays in the
// original source.
package dummy

import (
	"github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

func init() {
	drivers.Register(backend{})
}

type backend struct{}

func (backend) API() drivers.API    { return drivers.Dummy }
func (backend) Name() string        { return "dummy" }
func (backend) DisplayName() string { return "Dummy" }
func (backend) Available() bool     { return true }

func (backend) NewIn(cfg drivers.Config) (drivers.In, error) {
	return &in{cfg: cfg}, nil
}

func (backend) NewOut(cfg drivers.Config) (drivers.Out, error) {
	return &out{cfg: cfg}, nil
}

func (backend) NewObserver(cfg drivers.Config, cb drivers.ObserverCallbacks) (drivers.Observer, error) {
	return &observer{}, nil
}

type in struct {
	cfg  drivers.Config
	open bool
}

func (i *in) API() drivers.API { return drivers.Dummy }

func (i *in) OpenPort(p port.Info, localName string) error {
	if i.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	i.open = true
	return nil
}

func (i *in) OpenVirtualPort(localName string) error {
	if i.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	i.open = true
	return nil
}

func (i *in) ClosePort() error {
	i.open = false
	return nil
}

func (i *in) SetPortName(name string) error { return nil }
func (i *in) IsPortOpen() bool              { return i.open }
func (i *in) IsPortConnected() bool         { return i.open }
func (i *in) AbsoluteTimestamp() int64      { return 0 }

type out struct {
	cfg  drivers.Config
	open bool
}

func (o *out) API() drivers.API { return drivers.Dummy }

func (o *out) OpenPort(p port.Info, localName string) error {
	if o.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	o.open = true
	return nil
}

func (o *out) OpenVirtualPort(localName string) error {
	if o.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	o.open = true
	return nil
}

func (o *out) ClosePort() error {
	o.open = false
	return nil
}

func (o *out) SetPortName(name string) error { return nil }
func (o *out) IsPortOpen() bool              { return o.open }

func (o *out) SendMessage(b []byte) error {
	if !o.open {
		return merr.New(merr.NotConnected, "port not open")
	}
	return nil
}

func (o *out) SendUMP(words []uint32) error {
	if !o.open {
		return merr.New(merr.NotConnected, "port not open")
	}
	return nil
}

type observer struct{}

func (observer) API() drivers.API                    { return drivers.Dummy }
func (observer) InputPorts() ([]port.Info, error)     { return nil, nil }
func (observer) OutputPorts() ([]port.Info, error)    { return nil, nil }
func (observer) Close() error                         { return nil }
