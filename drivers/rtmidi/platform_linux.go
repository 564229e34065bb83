//go:build linux

package rtmidi

import coredrivers "github.com/odaacabeef/midicore/drivers"

// RtMidi on Linux is built against the ALSA sequencer API.
const platformAPI = coredrivers.AlsaSeq

func init() { registerSelf() }
