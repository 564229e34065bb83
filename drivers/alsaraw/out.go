//go:build linux

package alsaraw

/*
#include <alsa/asoundlib.h>
*/
import "C"

import (
	"unsafe"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

type out struct {
	cfg    coredrivers.Config
	handle *C.snd_rawmidi_t
	open   bool
}

func (o *out) API() coredrivers.API { return coredrivers.AlsaRaw }

func (o *out) OpenPort(p port.Info, localName string) error {
	if o.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	name := C.CString(p.Device)
	defer C.free(unsafe.Pointer(name))
	rc := C.snd_rawmidi_open(nil, &o.handle, name, 0)
	if err := alsaErr(merr.AddressNotAvailable, rc, "snd_rawmidi_open"); err != nil {
		return err
	}
	o.open = true
	return nil
}

func (o *out) OpenVirtualPort(localName string) error {
	return merr.New(merr.OperationNotSupported, "ALSA raw MIDI has no virtual port concept; use alsa_seq for virtual ports")
}

func (o *out) ClosePort() error {
	if !o.open {
		return nil
	}
	C.snd_rawmidi_close(o.handle)
	o.open = false
	return nil
}

func (o *out) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "ALSA raw MIDI ports cannot be renamed after opening")
}

func (o *out) IsPortOpen() bool { return o.open }

func (o *out) SendMessage(b []byte) error {
	if !o.open {
		return merr.New(merr.NotConnected, "output port not open")
	}
	cbuf := C.CBytes(b)
	defer C.free(cbuf)
	n := C.snd_rawmidi_write(o.handle, cbuf, C.size_t(len(b)))
	if n < 0 {
		return merr.Native(merr.IOError, int(n), "alsa", "snd_rawmidi_write failed")
	}
	return nil
}

func (o *out) SendUMP(words []uint32) error {
	return merr.New(merr.OperationNotSupported, "alsa_raw backend carries MIDI 1 only")
}
