//go:build darwin

package rtmidi

import coredrivers "github.com/odaacabeef/midicore/drivers"

// RtMidi on macOS is built against CoreMIDI. This module carries a
// dedicated direct CoreMIDI backend (drivers/coremidi) for that API tag,
// so rtmidi does not also register itself here — drivers.Register panics
// on a duplicate API, and two backends both claiming CoreMIDI would be a
// bug, not a feature. platformAPI is still defined so runtimeAPI/String
// compile, but registerSelf is never called on darwin.
const platformAPI = coredrivers.CoreMIDI
