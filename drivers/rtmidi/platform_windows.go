//go:build windows

package rtmidi

import coredrivers "github.com/odaacabeef/midicore/drivers"

// RtMidi on Windows is built against the classic WinMM API. This module
// carries a dedicated direct WinMM backend (drivers/winmm) for that API
// tag, so rtmidi does not also register itself here — see the darwin
// variant of this file for the same reasoning. platformAPI is still
// defined so runtimeAPI/String compile, but registerSelf is never called
// on windows.
const platformAPI = coredrivers.WindowsMM
