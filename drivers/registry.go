package drivers

import (
	"fmt"
	"sync"
)

var (
	mu       sync.Mutex
	registry []Backend
	byAPI    = map[API]Backend{}
)

// Register adds a backend to the ordered registry. Backend packages call
// this from their init(), the same pattern as the teacher's blank import
// of gitlab.com/gomidi/midi/v2/drivers/rtmididrv. Register panics if a
// backend is already registered for the same API, enforcing spec.md
// §4.1's "for any API tag there is exactly one backend".
func Register(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := byAPI[b.API()]; dup {
		panic(fmt.Sprintf("drivers: backend already registered for API %s", b.API()))
	}
	byAPI[b.API()] = b
	registry = append(registry, b)
}

// All returns the registered backends in registration order.
func All() []Backend {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Backend, len(registry))
	copy(out, registry)
	return out
}

// Get returns the backend registered for api, if any.
func Get(api API) (Backend, bool) {
	mu.Lock()
	defer mu.Unlock()
	b, ok := byAPI[api]
	return b, ok
}

// FirstAvailable walks the registry in declared order and returns the
// first backend whose Available() is true, implementing the platform
// fallback chain of spec.md §4.1 (e.g. on Linux: ALSA seq, then ALSA raw,
// then JACK, then PipeWire, then dummy — whichever order backend packages
// were imported in by the calling program).
func FirstAvailable() (Backend, bool) {
	for _, b := range All() {
		if b.Available() {
			return b, true
		}
	}
	return nil, false
}
