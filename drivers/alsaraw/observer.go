//go:build linux

package alsaraw

import (
	"sync"

	"github.com/jochenvg/go-udev"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/port"
)

// observer watches udev for "sound" subsystem add/remove events and
// re-enumerates ALSA raw MIDI devices on each one, rather than polling,
// matching SPEC_FULL.md's decision to wire go-udev into the Linux
// hotplug path.
type observer struct {
	cb coredrivers.ObserverCallbacks

	u        udev.Udev
	deviceCh <-chan *udev.Device

	mu      sync.Mutex
	stop    chan struct{}
	wg      sync.WaitGroup
	lastIn  map[uint64]port.Info
	lastOut map[uint64]port.Info
}

func newObserver(cb coredrivers.ObserverCallbacks) (*observer, error) {
	o := &observer{cb: cb, u: udev.Udev{}}
	o.lastIn, _ = indexBy(func() ([]port.Info, error) { return enumerateCards(true) })
	o.lastOut, _ = indexBy(func() ([]port.Info, error) { return enumerateCards(false) })

	if cb.InputAdded == nil && cb.InputRemoved == nil && cb.OutputAdded == nil && cb.OutputRemoved == nil {
		return o, nil
	}

	mon := o.u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("sound"); err != nil {
		return nil, err
	}
	deviceCh, err := mon.DeviceChan(make(chan struct{}))
	if err != nil {
		return nil, err
	}
	o.deviceCh = deviceCh
	o.stop = make(chan struct{})
	o.wg.Add(1)
	go o.watch()
	return o, nil
}

func (o *observer) watch() {
	defer o.wg.Done()
	for {
		select {
		case <-o.stop:
			return
		case _, ok := <-o.deviceCh:
			if !ok {
				return
			}
			o.refresh()
		}
	}
}

func (o *observer) refresh() {
	o.mu.Lock()
	defer o.mu.Unlock()

	curIn, _ := indexBy(func() ([]port.Info, error) { return enumerateCards(true) })
	diff(o.lastIn, curIn, o.cb.InputAdded, o.cb.InputRemoved)
	o.lastIn = curIn

	curOut, _ := indexBy(func() ([]port.Info, error) { return enumerateCards(false) })
	diff(o.lastOut, curOut, o.cb.OutputAdded, o.cb.OutputRemoved)
	o.lastOut = curOut
}

func indexBy(list func() ([]port.Info, error)) (map[uint64]port.Info, error) {
	ports, err := list()
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]port.Info, len(ports))
	for _, p := range ports {
		m[p.Handle] = p
	}
	return m, nil
}

func diff(prev, cur map[uint64]port.Info, added, removed func(port.Info)) {
	for h, p := range cur {
		if _, ok := prev[h]; !ok && added != nil {
			added(p)
		}
	}
	for h, p := range prev {
		if _, ok := cur[h]; !ok && removed != nil {
			removed(p)
		}
	}
}

func (o *observer) API() coredrivers.API { return coredrivers.AlsaRaw }

func (o *observer) InputPorts() ([]port.Info, error)  { return enumerateCards(true) }
func (o *observer) OutputPorts() ([]port.Info, error) { return enumerateCards(false) }

func (o *observer) Close() error {
	o.mu.Lock()
	stop := o.stop
	o.stop = nil
	o.mu.Unlock()
	if stop != nil {
		close(stop)
		o.wg.Wait()
	}
	return nil
}
