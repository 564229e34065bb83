//go:build !linux && !darwin && !windows

package rtmidi

import coredrivers "github.com/odaacabeef/midicore/drivers"

// No native RtMidi API on this host platform; platformAPI is unused (the
// backend never registers itself, see registerSelf callers) but must
// still type-check against coredrivers.API.
const platformAPI = coredrivers.Dummy
