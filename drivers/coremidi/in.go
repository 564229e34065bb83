//go:build darwin

package coremidi

import (
	"sync/atomic"

	gocoremidi "github.com/youpy/go-coremidi"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/instate"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/port"
)

type in struct {
	cfg    coredrivers.Config
	client gocoremidi.Client
	dec    *instate.Decoder

	inputPort gocoremidi.InputPort
	conn      interface{ Disconnect() }
	lastTS    atomic.Int64
	open      bool
}

func (i *in) API() coredrivers.API { return coredrivers.CoreMIDI }

func (i *in) OpenPort(p port.Info, localName string) error {
	if i.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	source, err := findSource(p)
	if err != nil {
		return err
	}
	return i.connect(localName, source)
}

func (i *in) OpenVirtualPort(localName string) error {
	// go-coremidi exposes no virtual-source creation; CoreMIDI virtual
	// ports require a running application registering one, which this
	// library-level call cannot satisfy generically.
	return merr.New(merr.OperationNotSupported, "CoreMIDI virtual input ports are not supported by this backend")
}

func (i *in) connect(localName string, source gocoremidi.Source) error {
	dec := instate.NewDecoder(instate.Options{
		Mode: i.cfg.Mode,
		Caps: merr.Capabilities{Absolute: true},
		Ignore: instate.IgnoreMask{
			SysEx:   i.cfg.Ignore.SysEx,
			Timing:  i.cfg.Ignore.Timing,
			Sensing: i.cfg.Ignore.Sensing,
		},
	})
	i.dec = dec

	ip, err := gocoremidi.NewInputPort(i.client, localName, i.handlePacket)
	if err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to create CoreMIDI input port")
	}
	conn, err := ip.Connect(source)
	if err != nil {
		return merr.Wrap(merr.AddressNotAvailable, err, "failed to connect CoreMIDI input port")
	}
	i.inputPort = ip
	i.conn = conn
	i.open = true
	return nil
}

func (i *in) handlePacket(source gocoremidi.Source, packet gocoremidi.Packet) {
	now := merr.SteadyNow()
	i.lastTS.Store(int64(now))
	_ = i.dec.Feed(packet.Data, now, 0, func(m message.Message) {
		if i.cfg.OnMessage != nil {
			i.cfg.OnMessage(m)
		}
	})
}

func (i *in) ClosePort() error {
	if !i.open {
		return nil
	}
	i.conn.Disconnect()
	i.conn = nil
	i.open = false
	return nil
}

func (i *in) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "CoreMIDI input ports cannot be renamed after opening")
}

func (i *in) IsPortOpen() bool          { return i.open }
func (i *in) IsPortConnected() bool     { return i.open }
func (i *in) AbsoluteTimestamp() int64  { return i.lastTS.Load() }
