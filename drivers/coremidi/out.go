//go:build darwin

package coremidi

import (
	gocoremidi "github.com/youpy/go-coremidi"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

type out struct {
	cfg    coredrivers.Config
	client gocoremidi.Client

	outputPort  gocoremidi.OutputPort
	destination gocoremidi.Destination
	open        bool
}

func (o *out) API() coredrivers.API { return coredrivers.CoreMIDI }

func (o *out) OpenPort(p port.Info, localName string) error {
	if o.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	dest, err := findDestination(p)
	if err != nil {
		return err
	}
	op, err := gocoremidi.NewOutputPort(o.client, localName)
	if err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to create CoreMIDI output port")
	}
	o.outputPort = op
	o.destination = dest
	o.open = true
	return nil
}

func (o *out) OpenVirtualPort(localName string) error {
	return merr.New(merr.OperationNotSupported, "CoreMIDI virtual output ports are not supported by this backend")
}

func (o *out) ClosePort() error {
	o.open = false
	return nil
}

func (o *out) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "CoreMIDI output ports cannot be renamed after opening")
}

func (o *out) IsPortOpen() bool { return o.open }

func (o *out) SendMessage(b []byte) error {
	if !o.open {
		return merr.New(merr.NotConnected, "output port not open")
	}
	if err := o.outputPort.Send(o.destination, gocoremidi.Packet{Data: b}); err != nil {
		return merr.Wrap(merr.IOError, err, "CoreMIDI send failed")
	}
	return nil
}

func (o *out) SendUMP(words []uint32) error {
	return merr.New(merr.OperationNotSupported, "CoreMIDI backend carries MIDI 1 only")
}
