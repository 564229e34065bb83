//go:build windows

// Package winmm adapts the Win32 winmm.dll MIDI API onto the
// drivers.Backend contract, grounded on leandrodaf/midi's Windows client
// (internal/midi/midiwindows/client_windows.go): windows.NewLazySystemDLL
// + NewProc syscalls for midiInOpen/midiInStart/midiInStop/midiInClose,
// extended here with the midiOut family for output, using
// golang.org/x/sys/windows the same way the reference client does.
package winmm

import (
	"unsafe"

	"golang.org/x/sys/windows"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

func init() {
	coredrivers.Register(backend{})
}

const (
	callbackFunction = 0x00030000
	midiIOStatus     = 0x00000020

	mimOpen      = 0x3C1
	mimClose     = 0x3C2
	mimData      = 0x3C3
	mimError     = 0x3C5
	mimLongError = 0x3C6
	mimMoreData  = 0x3CC
)

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

var (
	winmmDLL = windows.NewLazySystemDLL("winmm.dll")

	procMidiInGetNumDevs  = winmmDLL.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps  = winmmDLL.NewProc("midiInGetDevCapsW")
	procMidiInOpen        = winmmDLL.NewProc("midiInOpen")
	procMidiInStart       = winmmDLL.NewProc("midiInStart")
	procMidiInStop        = winmmDLL.NewProc("midiInStop")
	procMidiInClose       = winmmDLL.NewProc("midiInClose")

	procMidiOutGetNumDevs = winmmDLL.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmmDLL.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmmDLL.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmmDLL.NewProc("midiOutShortMsg")
	procMidiOutLongMsg    = winmmDLL.NewProc("midiOutLongMsg")
	procMidiOutPrepareHdr = winmmDLL.NewProc("midiOutPrepareHeader")
	procMidiOutClose      = winmmDLL.NewProc("midiOutClose")
)

type backend struct{}

func (backend) API() coredrivers.API { return coredrivers.WindowsMM }
func (backend) Name() string         { return "windows_mm" }
func (backend) DisplayName() string  { return "Windows Multimedia (winmm)" }

func (backend) Available() bool {
	r0, _, _ := procMidiInGetNumDevs.Call()
	return r0 >= 0
}

func (backend) NewIn(cfg coredrivers.Config) (coredrivers.In, error) {
	return newIn(cfg), nil
}

func (backend) NewOut(cfg coredrivers.Config) (coredrivers.Out, error) {
	return &out{cfg: cfg}, nil
}

func (backend) NewObserver(cfg coredrivers.Config, cb coredrivers.ObserverCallbacks) (coredrivers.Observer, error) {
	return &observer{}, nil
}

func listInputs() ([]port.Info, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	n := uint32(r0)
	out := make([]port.Info, 0, n)
	for i := uint32(0); i < n; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		out = append(out, port.Info{
			API:       coredrivers.WindowsMM.String(),
			Handle:    uint64(i),
			Device:    name,
			Display:   name,
			Transport: port.Hardware,
		})
	}
	return out, nil
}

func listOutputs() ([]port.Info, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	n := uint32(r0)
	out := make([]port.Info, 0, n)
	for i := uint32(0); i < n; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		out = append(out, port.Info{
			API:       coredrivers.WindowsMM.String(),
			Handle:    uint64(i),
			Device:    name,
			Display:   name,
			Transport: port.Hardware,
		})
	}
	return out, nil
}

func mmrcError(cat merr.Category, rc uintptr, msg string) error {
	if rc == 0 {
		return nil
	}
	return merr.Native(cat, int(rc), "winmm", msg)
}
