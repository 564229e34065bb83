package rtmidi

import (
	"sync/atomic"

	gdrivers "gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/instate"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/port"
)

type in struct {
	cfg coredrivers.Config
	drv *rtmididrv.Driver
	dec *instate.Decoder

	gport     gdrivers.In
	stopFn    func()
	lastTS    atomic.Int64
	connected bool
}

func (i *in) API() coredrivers.API { return runtimeAPI() }

func (i *in) OpenPort(p port.Info, localName string) error {
	if i.gport != nil {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	gp, err := findIn(i.drv, p)
	if err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "input port not found")
	}
	return i.open(gp)
}

func (i *in) OpenVirtualPort(localName string) error {
	if i.gport != nil {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	gp, err := i.drv.OpenVirtualIn(localName)
	if err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to create virtual input port")
	}
	return i.open(gp)
}

func (i *in) open(gp gdrivers.In) error {
	if err := gp.Open(); err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to open rtmidi input port")
	}
	stopFn, err := gp.Listen(func(msg []byte, timestampms int32) {
		absolute := merr.Timestamp(int64(timestampms) * 1_000_000)
		i.lastTS.Store(int64(absolute))
		_ = i.dec.Feed(msg, absolute, 0, func(m message.Message) {
			if i.cfg.OnMessage != nil {
				i.cfg.OnMessage(m)
			}
		})
	}, gdrivers.ListenConfig{TimeCode: true})
	if err != nil {
		gp.Close()
		return merr.Wrap(merr.IOError, err, "failed to start listening")
	}
	i.gport = gp
	i.stopFn = stopFn
	i.connected = true
	return nil
}

func (i *in) ClosePort() error {
	if i.gport == nil {
		return nil
	}
	if i.stopFn != nil {
		i.stopFn()
	}
	err := i.gport.Close()
	i.gport = nil
	i.connected = false
	if err != nil {
		return merr.Wrap(merr.IOError, err, "failed to close rtmidi input port")
	}
	return nil
}

func (i *in) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "rtmidi input ports cannot be renamed after opening")
}

func (i *in) IsPortOpen() bool          { return i.gport != nil }
func (i *in) IsPortConnected() bool     { return i.connected }
func (i *in) AbsoluteTimestamp() int64  { return i.lastTS.Load() }
