//go:build windows

package winmm

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/instate"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/message"
	"github.com/odaacabeef/midicore/port"
)

// instances maps the callback's dwInstance token back to the owning *in,
// avoiding the teacher reference client's unsafe.Pointer round-trip
// through a raw Go pointer, which the Go runtime does not guarantee
// survives a call into foreign (non-Go-managed) memory.
var (
	instancesMu sync.Mutex
	instances   = map[uintptr]*in{}
	nextToken   uintptr
)

type in struct {
	cfg coredrivers.Config
	dec *instate.Decoder

	handle   windows.Handle
	callback uintptr
	token    uintptr
	open     bool
	lastTS   atomic.Int64
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

func (i *in) API() coredrivers.API { return coredrivers.WindowsMM }

func (i *in) OpenPort(p port.Info, localName string) error {
	if i.open {
		return merr.New(merr.InvalidArgument, "port already open")
	}

	instancesMu.Lock()
	nextToken++
	i.token = nextToken
	instances[i.token] = i
	instancesMu.Unlock()

	i.callback = windows.NewCallback(midiInCallback)
	fdwOpen := uintptr(callbackFunction | midiIOStatus)

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&i.handle)),
		uintptr(p.Handle),
		i.callback,
		i.token,
		fdwOpen,
	)
	if r1 != 0 {
		instancesMu.Lock()
		delete(instances, i.token)
		instancesMu.Unlock()
		return merr.Wrap(merr.AddressNotAvailable, err, "midiInOpen failed")
	}

	if r1, _, err := procMidiInStart.Call(uintptr(i.handle)); r1 != 0 {
		return merr.Wrap(merr.IOError, err, "midiInStart failed")
	}
	i.open = true
	return nil
}

func (i *in) OpenVirtualPort(localName string) error {
	return merr.New(merr.OperationNotSupported, "winmm has no virtual MIDI port concept")
}

func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	instancesMu.Lock()
	i := instances[dwInstance]
	instancesMu.Unlock()
	if i == nil {
		return 0
	}

	switch wMsg {
	case mimData:
		status := byte(dwParam1 & 0xFF)
		d1 := byte((dwParam1 >> 8) & 0xFF)
		d2 := byte((dwParam1 >> 16) & 0xFF)
		n := message.DataLen(status)
		raw := []byte{status, d1, d2}
		if n < 0 {
			n = 2
		}
		now := merr.SteadyNow()
		i.lastTS.Store(int64(now))
		_ = i.dec.Feed(raw[:1+n], now, 0, func(m message.Message) {
			if i.cfg.OnMessage != nil {
				i.cfg.OnMessage(m)
			}
		})
	case mimError, mimLongError:
		if i.cfg.OnWarn != nil {
			i.cfg.OnWarn("winmm MIDI input error")
		}
	case mimOpen, mimClose, mimMoreData:
	}
	return 0
}

func (i *in) ClosePort() error {
	if !i.open {
		return nil
	}
	procMidiInStop.Call(uintptr(i.handle))
	r1, _, err := procMidiInClose.Call(uintptr(i.handle))
	instancesMu.Lock()
	delete(instances, i.token)
	instancesMu.Unlock()
	i.open = false
	if r1 != 0 {
		return merr.Wrap(merr.IOError, err, "midiInClose failed")
	}
	return nil
}

func (i *in) SetPortName(name string) error {
	return merr.New(merr.OperationNotSupported, "winmm input ports cannot be renamed after opening")
}

func (i *in) IsPortOpen() bool          { return i.open }
func (i *in) IsPortConnected() bool     { return i.open }
func (i *in) AbsoluteTimestamp() int64  { return i.lastTS.Load() }
