// Package unimplemented registers a placeholder drivers.Backend for
// every API enumerator spec.md §6 names but this core carries no
// concrete transport for (JACK, PipeWire, the *_ump variants, Windows
// UWP/MIDI Services, WebMIDI, Android AMidi, the software keyboard
// input, and KDMAPI). Each reports Available() == false, so
// drivers.FirstAvailable never selects one. The closed API enumeration
// names every tag; drivers.All() lists only registered backends, so the
// platform-specific tags (coremidi, windows_mm, alsa_raw, alsa_seq) are
// absent from it on other platforms.
package unimplemented

import (
	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
)

// apis lists every enumerator with no backend package elsewhere in this
// module. CoreMIDI, AlsaSeq (via rtmidi), AlsaRaw, WindowsMM, Network,
// and Dummy each have a real package and are excluded here.
var apis = []coredrivers.API{
	coredrivers.JackMIDI,
	coredrivers.WindowsUWP,
	coredrivers.WebMIDI,
	coredrivers.PipeWire,
	coredrivers.AlsaRawUMP,
	coredrivers.AlsaSeqUMP,
	coredrivers.CoreMIDIUMP,
	coredrivers.WindowsMIDIServices,
	coredrivers.NetworkUMP,
	coredrivers.AndroidAMidi,
	coredrivers.Keyboard,
	coredrivers.KDMAPI,
	coredrivers.JackUMP,
	coredrivers.PipeWireUMP,
}

func init() {
	for _, api := range apis {
		coredrivers.Register(backend{api: api})
	}
}

type backend struct {
	api coredrivers.API
}

func (b backend) API() coredrivers.API { return b.api }
func (b backend) Name() string         { return b.api.String() }
func (b backend) DisplayName() string  { return b.api.String() + " (not built)" }
func (b backend) Available() bool      { return false }

func (b backend) NewIn(cfg coredrivers.Config) (coredrivers.In, error) {
	return nil, b.err()
}

func (b backend) NewOut(cfg coredrivers.Config) (coredrivers.Out, error) {
	return nil, b.err()
}

func (b backend) NewObserver(cfg coredrivers.Config, cb coredrivers.ObserverCallbacks) (coredrivers.Observer, error) {
	return nil, b.err()
}

func (b backend) err() error {
	return merr.Newf(merr.FunctionNotSupported, "backend %s is not implemented in this build", b.api)
}
