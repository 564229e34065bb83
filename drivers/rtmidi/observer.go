package rtmidi

import (
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	coredrivers "github.com/odaacabeef/midicore/drivers"
	"github.com/odaacabeef/midicore/port"
)

// observer polls drivers.Ins()/Outs() for additions/removals on a timer.
// RtMidi has no portable hotplug callback, the same limitation the
// teacher's midi-cable inherits from rtmididrv (see SPEC_FULL.md §4.5).
type observer struct {
	drv *rtmididrv.Driver
	cb  coredrivers.ObserverCallbacks

	mu       sync.Mutex
	stop     chan struct{}
	wg       sync.WaitGroup
	lastIn   map[uint64]port.Info
	lastOut  map[uint64]port.Info
}

func (o *observer) API() coredrivers.API { return runtimeAPI() }

func (o *observer) InputPorts() ([]port.Info, error) {
	ins, err := o.drv.Ins()
	if err != nil {
		return nil, err
	}
	out := make([]port.Info, 0, len(ins))
	for _, p := range ins {
		out = append(out, toPortInfo(p, runtimeAPI()))
	}
	return out, nil
}

func (o *observer) OutputPorts() ([]port.Info, error) {
	outs, err := o.drv.Outs()
	if err != nil {
		return nil, err
	}
	out := make([]port.Info, 0, len(outs))
	for _, p := range outs {
		out = append(out, toPortInfo(p, runtimeAPI()))
	}
	return out, nil
}

// startPolling begins the hotplug-simulating poll loop if any callback
// was supplied; safe to call multiple times.
func (o *observer) startPolling(interval time.Duration) {
	if o.cb.InputAdded == nil && o.cb.InputRemoved == nil && o.cb.OutputAdded == nil && o.cb.OutputRemoved == nil {
		return
	}
	o.mu.Lock()
	if o.stop != nil {
		o.mu.Unlock()
		return
	}
	o.stop = make(chan struct{})
	o.lastIn, _ = o.snapshotIns()
	o.lastOut, _ = o.snapshotOuts()
	stop := o.stop
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				o.poll()
			}
		}
	}()
}

func (o *observer) snapshotIns() (map[uint64]port.Info, error) {
	ports, err := o.InputPorts()
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]port.Info, len(ports))
	for _, p := range ports {
		m[p.Handle] = p
	}
	return m, nil
}

func (o *observer) snapshotOuts() (map[uint64]port.Info, error) {
	ports, err := o.OutputPorts()
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]port.Info, len(ports))
	for _, p := range ports {
		m[p.Handle] = p
	}
	return m, nil
}

func (o *observer) poll() {
	curIn, err := o.snapshotIns()
	if err == nil {
		o.diff(o.lastIn, curIn, o.cb.InputAdded, o.cb.InputRemoved)
		o.lastIn = curIn
	}
	curOut, err := o.snapshotOuts()
	if err == nil {
		o.diff(o.lastOut, curOut, o.cb.OutputAdded, o.cb.OutputRemoved)
		o.lastOut = curOut
	}
}

func (o *observer) diff(prev, cur map[uint64]port.Info, added, removed func(port.Info)) {
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
