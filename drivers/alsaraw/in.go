//go:build linux

package alsaraw

/*
#include <alsa/asoundlib.h>
*/
import "C"

import (
	"sync"
	"sync/atomic"
	"unsafe"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/instate"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/port"
)

type in struct {
	cfg coredrivers.Config
	dec *instate.Decoder

	handle *C.snd_rawmidi_t
	stop   chan struct{}
	wg     sync.WaitGroup
	open   bool
	lastTS atomic.Int64
}

func newIn(cfg coredrivers.Config) *in {
	return &in{
		cfg: cfg,
		dec: instate.NewDecoder(instate.Options{
			Mode: cfg.Mode,
			Caps: merr.Capabilities{Absolute: true},
			Ignore: instate.IgnoreMask{
				SysEx:   cfg.Ignore.SysEx,
				Timing:  cfg.Ignore.Timing,
				Sensing: cfg.Ignore.Sensing,
			},
		}),
	}
}

func (i *in) API() coredrivers.API { return coredrivers.AlsaRaw }

func (i *in) OpenPort(p port.Info, localName string) error {
	if i.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	name := C.CString(p.Device)
	defer C.free(unsafe.Pointer(name))
	rc := C.snd_rawmidi_open(&i.handle, nil, name, 0)
	if err := alsaErr(merr.AddressNotAvailable, rc, "snd_rawmidi_open"); err != nil {
		return err
	}
	i.open = true
	i.stop = make(chan struct{})
	i.wg.Add(1)
	go i.readLoop()
	return nil
}

func (i *in) OpenVirtualPort(localName string) error {
	return merr.New(merr.OperationNotSupported, "ALSA raw MIDI has no virtual port concept; use alsa_seq for virtual ports")
}

func (i *in) readLoop() {
	defer i.wg.Done()
	buf := make([]byte, 256)
	cbuf := (*C.char)(C.malloc(C.size_t(len(buf))))
	defer C.free(unsafe.Pointer(cbuf))
	for {
		select {
		case <-i.stop:
			return
		default:
		}
		n := C.snd_rawmidi_read(i.handle, unsafe.Pointer(cbuf), C.size_t(len(buf)))
		if n <= 0 {
			continue
		}
		goBuf := C.GoBytes(unsafe.Pointer(cbuf), C.int(n))
		now := merr.SteadyNow()
		i.lastTS.Store(int64(now))
		_ = i.dec.Feed(goBuf, now, 0, func(m message.Message) {
			if i.cfg.OnMessage != nil {
				i.cfg.OnMessage(m)
			}
		})
	}
}

func (i *in) ClosePort() error {
	if !i.open {
		return nil
	}
	close(i.stop)
	C.snd_rawmidi_close(i.handle)
	i.wg.Wait()
	i.open = false
	return nil
}

func (i *in) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "ALSA raw MIDI ports cannot be renamed after opening")
}

func (i *in) IsPortOpen() bool          { return i.open }
func (i *in) IsPortConnected() bool     { return i.open }
func (i *in) AbsoluteTimestamp() int64  { return i.lastTS.Load() }
