package rtmidi

import (
	gdrivers "gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

type out struct {
	cfg   coredrivers.Config
	drv   *rtmididrv.Driver
	gport gdrivers.Out
}

func (o *out) API() coredrivers.API { return runtimeAPI() }

func (o *out) OpenPort(p port.Info, localName string) error {
	if o.gport != nil {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	gp, err := findOut(o.drv, p)
	if err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "output port not found")
	}
	if err := gp.Open(); err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to open rtmidi output port")
	}
	o.gport = gp
	return nil
}

func (o *out) OpenVirtualPort(localName string) error {
	if o.gport != nil {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	gp, err := o.drv.OpenVirtualOut(localName)
	if err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to create virtual output port")
	}
	if err := gp.Open(); err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to open virtual rtmidi output port")
	}
	o.gport = gp
	return nil
}

func (o *out) ClosePort() error {
	if o.gport == nil {
		return nil
	}
	err := o.gport.Close()
	o.gport = nil
	if err != nil {
		return merr.Wrap(merr.IOError, err, "failed to close rtmidi output port")
	}
	return nil
}

func (o *out) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "rtmidi output ports cannot be renamed after opening")
}

func (o *out) IsPortOpen() bool { return o.gport != nil }

func (o *out) SendMessage(b []byte) error {
	if o.gport == nil {
		return merr.New(merr.NotConnected, "output port not open")
	}
	if err := o.gport.Send(b); err != nil {
		return merr.Wrap(merr.IOError, err, "send failed")
	}
	return nil
}

func (o *out) SendUMP(words []uint32) error {
	return merr.New(merr.OperationNotSupported, "rtmidi backend carries MIDI 1 only")
}
