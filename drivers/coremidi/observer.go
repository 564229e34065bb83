//go:build darwin

package coremidi

import (
	gocoremidi "github.com/youpy/go-coremidi"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/port"
)

// observer reports a static snapshot of CoreMIDI sources/destinations.
// go-coremidi exposes no MIDIObjectAddNotification-style callback, so
// this backend never fires hotplug events, matching the
// everything-is-a-snapshot fallback of spec.md §4.5 when a native
// hotplug API is unavailable.
type observer struct {
	client gocoremidi.Client
}

func (o *observer) API() coredrivers.API { return coredrivers.CoreMIDI }

func (o *observer) InputPorts() ([]port.Info, error) {
	sources, err := gocoremidi.AllSources()
	if err != nil {
		return nil, err
	}
	out := make([]port.Info, 0, len(sources))
	for _, s := range sources {
		out = append(out, sourceToInfo(s))
	}
	return out, nil
}

func (o *observer) OutputPorts() ([]port.Info, error) {
	destinations, err := gocoremidi.AllDestinations()
	if err != nil {
		return nil, err
	}
	out := make([]port.Info, 0, len(destinations))
	for _, d := range destinations {
		out = append(out, destinationToInfo(d))
	}
	return out, nil
}

func (o *observer) Close() error { return nil }
