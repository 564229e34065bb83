//go:build windows

package winmm

import (
	"unsafe"

	"golang.org/x/sys/windows"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

type out struct {
	cfg    coredrivers.Config
	handle windows.Handle
	open   bool
}

func (o *out) API() coredrivers.API { return coredrivers.WindowsMM }

func (o *out) OpenPort(p port.Info, localName string) error {
	if o.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}
	r1, _, err := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&o.handle)),
		uintptr(p.Handle),
		0, 0, 0,
	)
	if r1 != 0 {
		return merr.Wrap(merr.AddressNotAvailable, err, "midiOutOpen failed")
	}
	o.open = true
	return nil
}

func (o *out) OpenVirtualPort(localName string) error {
	return merr.New(merr.OperationNotSupported, "winmm has no virtual MIDI port concept")
}

func (o *out) ClosePort() error {
	if !o.open {
		return nil
	}
	r1, _, err := procMidiOutClose.Call(uintptr(o.handle))
	o.open = false
	if r1 != 0 {
		return merr.Wrap(merr.IOError, err, "midiOutClose failed")
	}
	return nil
}

func (o *out) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "winmm output ports cannot be renamed after opening")
}

func (o *out) IsPortOpen() bool { return o.open }

func (o *out) SendMessage(b []byte) error {
	if !o.open {
		return merr.New(merr.NotConnected, "output port not open")
	}
	if len(b) == 0 || len(b) > 3 {
		return merr.New(merr.OperationNotSupported, "midiOutShortMsg carries only 1-3 byte channel/system messages; use a future SysEx path for longer ones")
	}
	var packed uint32
	for i, bb := range b {
		packed |= uint32(bb) << (8 * i)
	}
	r1, _, err := procMidiOutShortMsg.Call(uintptr(o.handle), uintptr(packed))
	if r1 != 0 {
		return merr.Wrap(merr.IOError, err, "midiOutShortMsg failed")
	}
	return nil
}

func (o *out) SendUMP(words []uint32) error {
	return merr.New(merr.OperationNotSupported, "winmm backend carries MIDI 1 only")
}
