// Package rtmidi adapts gitlab.com/gomidi/midi/v2's drivers/rtmididrv —
// the exact dependency the teacher (odaacabeef/midi-cable) already uses —
// onto the drivers.Backend contract. RtMidi itself picks ALSA sequencer
// on Linux, CoreMIDI on macOS, or WinMM on Windows; which concrete API
// enumerator this backend reports is therefore platform-dependent and is
// fixed at build time by the platform_*.go files. Only platform_linux.go
// registers the backend (as AlsaSeq).
package rtmidi

import (
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/instate"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

// registerSelf is called only from platform_linux.go's init(); on every
// other platform this backend is never registered, so it does not collide
// with the coremidi or winmm backends' API tags.
func registerSelf() {
	coredrivers.Register(backend{})
}

// runtimeAPI maps this platform's RtMidi driver choice onto the closed
// drivers.API enumeration. RtMidi is compiled against exactly one native
// API per platform, so this returns the build-time constant platformAPI
// defined by the platform_*.go file in use.
func runtimeAPI() coredrivers.API {
	return platformAPI
}

type backend struct{}

func (backend) API() coredrivers.API { return runtimeAPI() }
func (backend) Name() string         { return runtimeAPI().String() }
func (backend) DisplayName() string  { return "RtMidi (" + runtimeAPI().String() + ")" }

func (backend) Available() bool {
	_, err := rtmidiDriver()
	return err == nil
}

func (backend) NewIn(cfg coredrivers.Config) (coredrivers.In, error) {
	drv, err := rtmidiDriver()
	if err != nil {
		return nil, merr.Wrap(merr.NotConnected, err, "rtmidi driver unavailable")
	}
	dec := instate.NewDecoder(instate.Options{
		Mode: cfg.Mode,
		Caps: merr.Capabilities{Absolute: true},
		Ignore: instate.IgnoreMask{
			SysEx:   cfg.Ignore.SysEx,
			Timing:  cfg.Ignore.Timing,
			Sensing: cfg.Ignore.Sensing,
		},
	})
	return &in{cfg: cfg, drv: drv, dec: dec}, nil
}

func (backend) NewOut(cfg coredrivers.Config) (coredrivers.Out, error) {
	drv, err := rtmidiDriver()
	if err != nil {
		return nil, merr.Wrap(merr.NotConnected, err, "rtmidi driver unavailable")
	}
	return &out{cfg: cfg, drv: drv}, nil
}

func (backend) NewObserver(cfg coredrivers.Config, cb coredrivers.ObserverCallbacks) (coredrivers.Observer, error) {
	drv, err := rtmidiDriver()
	if err != nil {
		return nil, merr.Wrap(merr.NotConnected, err, "rtmidi driver unavailable")
	}
	obs := &observer{drv: drv, cb: cb}
	obs.startPolling(time.Second)
	return obs, nil
}

var (
	driverOnce sync.Once
	driver     *rtmididrv.Driver
	driverErr  error
)

// rtmidiDriver lazily opens the process-wide RtMidi driver once, mirroring
// the teacher's drivers.Get().(*rtmididrv.Driver) pattern in port.go.
func rtmidiDriver() (*rtmididrv.Driver, error) {
	driverOnce.Do(func() {
		driver, driverErr = rtmididrv.New()
	})
	return driver, driverErr
}

func toPortInfo(p drivers.Port, api coredrivers.API) port.Info {
	return port.Info{
		API:     api.String(),
		Handle:  uint64(p.Number()),
		Device:  p.String(),
		Display: p.String(),
	}
}

// findIn locates the gomidi drivers.In matching info, the same linear
// scan the teacher's fwd.go performs by name.
func findIn(drv *rtmididrv.Driver, info port.Info) (drivers.In, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		if uint64(in.Number()) == info.Handle || in.String() == info.Display {
			return in, nil
		}
	}
	return nil, merr.New(merr.AddressNotAvailable, "rtmidi port not found")
}

func findOut(drv *rtmididrv.Driver, info port.Info) (drivers.Out, error) {
	outs, err := drv.Outs()
	if err != nil {
		return nil, err
	}
	for _, out := range outs {
		if uint64(out.Number()) == info.Handle || out.String() == info.Display {
			return out, nil
		}
	}
	return nil, merr.New(merr.AddressNotAvailable, "rtmidi port not found")
}
