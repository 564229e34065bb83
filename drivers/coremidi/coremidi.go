//go:build darwin

// Package coremidi adapts github.com/youpy/go-coremidi onto the
// drivers.Backend contract, grounded on leandrodaf/midi's Darwin client
// (internal/midi/mididarwin/client_darwin.go): one process-wide
// coremidi.Client, coremidi.AllSources()/AllDestinations() for
// enumeration, and a callback-based InputPort.Connect for receiving.
package coremidi

import (
	"sync"

	gocoremidi "github.com/youpy/go-coremidi"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

func init() {
	coredrivers.Register(backend{})
}

type backend struct{}

func (backend) API() coredrivers.API { return coredrivers.CoreMIDI }
func (backend) Name() string         { return "coremidi" }
func (backend) DisplayName() string  { return "CoreMIDI" }

func (backend) Available() bool {
	_, err := sharedClient()
	return err == nil
}

func (backend) NewIn(cfg coredrivers.Config) (coredrivers.In, error) {
	client, err := sharedClient()
	if err != nil {
		return nil, merr.Wrap(merr.NotConnected, err, "CoreMIDI client unavailable")
	}
	return &in{cfg: cfg, client: client}, nil
}

func (backend) NewOut(cfg coredrivers.Config) (coredrivers.Out, error) {
	client, err := sharedClient()
	if err != nil {
		return nil, merr.Wrap(merr.NotConnected, err, "CoreMIDI client unavailable")
	}
	return &out{cfg: cfg, client: client}, nil
}

func (backend) NewObserver(cfg coredrivers.Config, cb coredrivers.ObserverCallbacks) (coredrivers.Observer, error) {
	client, err := sharedClient()
	if err != nil {
		return nil, merr.Wrap(merr.NotConnected, err, "CoreMIDI client unavailable")
	}
	return &observer{client: client}, nil
}

var (
	clientOnce sync.Once
	client     gocoremidi.Client
	clientErr  error
)

// sharedClient lazily opens the one process-wide coremidi.Client every
// port shares, the same pattern as ClientMid.client in the Darwin
// reference client.
func sharedClient() (gocoremidi.Client, error) {
	clientOnce.Do(func() {
		client, clientErr = gocoremidi.NewClient("midicore")
	})
	return client, clientErr
}

func sourceToInfo(s gocoremidi.Source) port.Info {
	entity := s.Entity()
	return port.Info{
		API:          coredrivers.CoreMIDI.String(),
		Manufacturer: entity.Manufacturer(),
		Device:       s.Name(),
		Display:      s.Name(),
		Handle:       fnv64(s.Name()),
		Transport:    port.Hardware,
	}
}

func destinationToInfo(d gocoremidi.Destination) port.Info {
	entity := d.Entity()
	return port.Info{
		API:          coredrivers.CoreMIDI.String(),
		Manufacturer: entity.Manufacturer(),
		Device:       d.Name(),
		Display:      d.Name(),
		Handle:       fnv64(d.Name()),
		Transport:    port.Hardware,
	}
}

// fnv64 derives a stable Handle from a port name, since go-coremidi's
// Source/Destination expose no numeric unique ID.
func fnv64(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

func findSource(info port.Info) (gocoremidi.Source, error) {
	sources, err := gocoremidi.AllSources()
	if err != nil {
		return gocoremidi.Source{}, err
	}
	for _, s := range sources {
		if s.Name() == info.Display || s.Name() == info.Device {
			return s, nil
		}
	}
	return gocoremidi.Source{}, merr.New(merr.AddressNotAvailable, "CoreMIDI source not found")
}

func findDestination(info port.Info) (gocoremidi.Destination, error) {
	destinations, err := gocoremidi.AllDestinations()
	if err != nil {
		return gocoremidi.Destination{}, err
	}
	for _, d := range destinations {
		if d.Name() == info.Display || d.Name() == info.Device {
			return d, nil
		}
	}
	return gocoremidi.Destination{}, merr.New(merr.AddressNotAvailable, "CoreMIDI destination not found")
}
