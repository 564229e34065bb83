// Package shared implements the multiplexing support spec.md §4.4 calls
// for: several library-level In/Out/Observer connections sharing one
// native client handle on backends (JACK, ALSA sequencer, CoreMIDI,
// PipeWire) where opening a second native client per connection is
// either impossible or wasteful. Grounded on the forwarder lifecycle in
// odaacabeef/midi-cable's fwd.go: a context.Context drives shutdown, and
// every subscriber is unregistered exactly once.
package shared

import (
	"context"
	"sync"

	"github.com/odaacabeef/midicore/merr"
)

// Client owns a single native handle (an ALSA seq client, a JACK client,
// a CoreMIDI client) on behalf of any number of library-level In/Out
// connections. OpenFunc/CloseFunc wrap the backend's actual native
// open/close calls; Client only arbitrates when they run.
type Client struct {
	OpenFunc  func() (any, error)
	CloseFunc func(native any) error

	mu       sync.Mutex
	native   any
	refCount int
}

// Acquire opens the native client on the first call and returns the same
// handle to every subsequent caller until refcount drops back to zero.
func (c *Client) Acquire() (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refCount == 0 {
		native, err := c.OpenFunc()
		if err != nil {
			return nil, merr.Wrap(merr.IOError, err, "failed to open shared native client")
		}
		c.native = native
	}
	c.refCount++
	return c.native, nil
}

// Release decrements the refcount and closes the native client once no
// connection still holds it.
func (c *Client) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refCount == 0 {
		return nil
	}
	c.refCount--
	if c.refCount == 0 && c.CloseFunc != nil {
		native := c.native
		c.native = nil
		if err := c.CloseFunc(native); err != nil {
			return merr.Wrap(merr.IOError, err, "failed to close shared native client")
		}
	}
	return nil
}

// RefCount reports how many connections currently hold the client open.
func (c *Client) RefCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refCount
}

// Dispatcher runs one native callback loop (one JACK process callback,
// one ALSA seq poll loop) and fans events out to per-connection
// subscribers, mirroring the single Listen-goroutine-per-native-client
// shape of the teacher's Forwarder.Start.
type Dispatcher struct {
	mu          sync.Mutex
	subscribers map[int]func(any)
	nextID      int

	runOnce sync.Once
	cancel  context.CancelFunc
}

// NewDispatcher constructs an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{subscribers: make(map[int]func(any))}
}

// Subscribe registers fn to receive every event published via Publish and
// returns an unsubscribe function, safe to call more than once.
func (d *Dispatcher) Subscribe(fn func(any)) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subscribers[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.subscribers, id)
			d.mu.Unlock()
		})
	}
}

// Publish delivers event to every current subscriber. Subscribers run
// synchronously on the caller's goroutine, the same native-callback
// thread the backend's own driver dispatches on.
func (d *Dispatcher) Publish(event any) {
	d.mu.Lock()
	fns := make([]func(any), 0, len(d.subscribers))
	for _, fn := range d.subscribers {
		fns = append(fns, fn)
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(event)
	}
}

// Run starts loop on a new goroutine with a context derived from ctx and
// returns at once; loop's context is cancelled by Stop or by ctx's own
// cancellation. Calling Run more than once on the
// same Dispatcher has no additional effect, mirroring fwd.go's single
// <-ctx.Done() shutdown path.
func (d *Dispatcher) Run(ctx context.Context, loop func(context.Context)) {
	d.runOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		d.cancel = cancel
		go func() {
			loop(ctx)
		}()
	})
}

// Stop cancels the context passed to Run, if Run was called.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
