// Package observer is the façade over drivers.Observer that spec.md §4.5
// describes: a snapshot of currently available ports plus hotplug
// notification, aggregated across every registered backend rather than
// one API at a time.
package observer

import (
	"sync"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/merr"
	"github.com/odaacabeef/midicore/port"
)

// Config selects which backend(s) to observe and how to filter hotplug
// events, mirroring coredrivers.ObserverCallbacks plus an API selector.
type Config struct {
	API coredrivers.API // not read by New; backend selection uses APIs only

	// APIs, when non-empty, restricts observation to these backends
	// instead of a single API. An empty Config observes every backend
	// FirstAvailable would ever return one of, i.e. drivers.All().
	APIs []coredrivers.API

	InputAdded    func(port.Info)
	InputRemoved  func(port.Info)
	OutputAdded   func(port.Info)
	OutputRemoved func(port.Info)

	TrackHardware bool
	TrackVirtual  bool
	TrackAny      bool
}

// Observer aggregates one or more backend-native observers behind a
// single InputPorts/OutputPorts/Close surface.
type Observer struct {
	mu    sync.Mutex
	inner []coredrivers.Observer
}

// New constructs an Observer over every backend selected by cfg, skipping
// any backend reporting Available() == false.
func New(cfg Config) (*Observer, error) {
	backends := selectBackends(cfg)
	if len(backends) == 0 {
		return nil, merr.New(merr.AddressNotAvailable, "no available backend matches observer config")
	}

	cb := coredrivers.ObserverCallbacks{
		InputAdded:    cfg.InputAdded,
		InputRemoved:  cfg.InputRemoved,
		OutputAdded:   cfg.OutputAdded,
		OutputRemoved: cfg.OutputRemoved,
		TrackHardware: cfg.TrackHardware,
		TrackVirtual:  cfg.TrackVirtual,
		TrackAny:      cfg.TrackAny,
	}

	o := &Observer{}
	for _, b := range backends {
		obs, err := b.NewObserver(coredrivers.Config{}, cb)
		if err != nil {
			o.Close()
			return nil, merr.Wrap(merr.IOError, err, "failed to start observer for backend "+b.Name())
		}
		o.inner = append(o.inner, obs)
	}
	return o, nil
}

func selectBackends(cfg Config) []coredrivers.Backend {
	if len(cfg.APIs) > 0 {
		out := make([]coredrivers.Backend, 0, len(cfg.APIs))
		for _, api := range cfg.APIs {
			if b, ok := coredrivers.Get(api); ok && b.Available() {
				out = append(out, b)
			}
		}
		return out
	}
	out := make([]coredrivers.Backend, 0)
	for _, b := range coredrivers.All() {
		if b.Available() {
			out = append(out, b)
		}
	}
	return out
}

// InputPorts returns the union of every backend's currently visible
// input ports.
func (o *Observer) InputPorts() ([]port.Info, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var all []port.Info
	for _, obs := range o.inner {
		ports, err := obs.InputPorts()
		if err != nil {
			return nil, err
		}
		all = append(all, ports...)
	}
	return all, nil
}

// OutputPorts returns the union of every backend's currently visible
// output ports.
func (o *Observer) OutputPorts() ([]port.Info, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var all []port.Info
	for _, obs := range o.inner {
		ports, err := obs.OutputPorts()
		if err != nil {
			return nil, err
		}
		all = append(all, ports...)
	}
	return all, nil
}

// Close stops hotplug notification on every underlying backend observer.
func (o *Observer) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var firstErr error
	for _, obs := range o.inner {
		if err := obs.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	o.inner = nil
	return firstErr
}
