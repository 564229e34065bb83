//go:build linux

// Package alsaraw talks to ALSA raw MIDI character devices directly via
// cgo against libasound, in the shape shyrobbiani/audio's portmidi
// wrapper uses for its own C MIDI library: a small cgo preamble, an
// errno-to-error translator, and a SystemPort-style struct pairing a
// system stream handle with a Go channel loop. Hotplug is reported via
// github.com/jochenvg/go-udev rather than polling, since ALSA raw MIDI
// itself has no add/remove callback.
package alsaraw

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

func init() {
	coredrivers.Register(backend{})
}

type backend struct{}

func (backend) API() coredrivers.API { return coredrivers.AlsaRaw }
func (backend) Name() string         { return "alsa_raw" }
func (backend) DisplayName() string  { return "ALSA raw MIDI" }

func (backend) Available() bool {
	var info *C.snd_ctl_card_info_t
	if C.snd_ctl_card_info_malloc(&info) != 0 {
		return false
	}
	defer C.snd_ctl_card_info_free(info)
	return true
}

func (backend) NewIn(cfg coredrivers.Config) (coredrivers.In, error) {
	return newIn(cfg), nil
}

func (backend) NewOut(cfg coredrivers.Config) (coredrivers.Out, error) {
	return &out{cfg: cfg}, nil
}

func (backend) NewObserver(cfg coredrivers.Config, cb coredrivers.ObserverCallbacks) (coredrivers.Observer, error) {
	return newObserver(cb)
}

func alsaErr(cat merr.Category, rc C.int, msg string) error {
	if rc >= 0 {
		return nil
	}
	return merr.Native(cat, int(rc), "alsa", msg+": "+C.GoString(C.snd_strerror(rc)))
}

// enumerateCards walks ALSA's card list via snd_card_next and, for each
// card, its rawmidi devices via snd_ctl_rawmidi_next_device, building
// the hw:card,device identifier string ALSA's snd_rawmidi_open expects.
func enumerateCards(wantInput bool) ([]port.Info, error) {
	var out []port.Info
	card := C.int(-1)
	for {
		if C.snd_card_next(&card) < 0 || card < 0 {
			break
		}
		ctlName := C.CString("hw:" + itoa(int(card)))
		var ctl *C.snd_ctl_t
		if C.snd_ctl_open(&ctl, ctlName, 0) != 0 {
			C.free(unsafe.Pointer(ctlName))
			continue
		}
		C.free(unsafe.Pointer(ctlName))

		device := C.int(-1)
		for {
			if C.snd_ctl_rawmidi_next_device(ctl, &device) < 0 || device < 0 {
				break
			}
			var info *C.snd_rawmidi_info_t
			C.snd_rawmidi_info_malloc(&info)
			C.snd_rawmidi_info_set_device(info, C.uint(device))
			if wantInput {
				C.snd_rawmidi_info_set_stream(info, C.SND_RAWMIDI_STREAM_INPUT)
			} else {
				C.snd_rawmidi_info_set_stream(info, C.SND_RAWMIDI_STREAM_OUTPUT)
			}
			if C.snd_ctl_rawmidi_info(ctl, info) == 0 {
				name := C.GoString(C.snd_rawmidi_info_get_name(info))
				out = append(out, port.Info{
					API:       coredrivers.AlsaRaw.String(),
					Handle:    port.PackALSAHandle(uint16(card), uint16(device), 0),
					Device:    "hw:" + itoa(int(card)) + "," + itoa(int(device)),
					Display:   name,
					Transport: port.Hardware,
				})
			}
			C.snd_rawmidi_info_free(info)
		}
		C.snd_ctl_close(ctl)
	}
	return out, nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
