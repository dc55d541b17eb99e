// Package events fans out notifications from a running pipeline to whoever is
// watching it (progress reporting, summaries).
package events

import (
	"sync"

	"github.com/BitPonyLLC/carhues/pkg/util"
)

// Event is an interface to allow any kind of message to be produced to
// Watchers.
type Event interface{}

// Manager delivers every emitted Event to every registered Watcher.
type Manager struct {
	mutex    sync.RWMutex
	watchers map[*Watcher]struct{}
}

// Watcher is the type used to process Events that have been emitted on the Ch
// channel.
type Watcher struct {
	Ch chan Event

	manager *Manager
	done    chan struct{}
}

// Watch registers a Watcher. Emit blocks while a watcher's channel is full, so
// the caller must keep draining Ch until the watcher is stopped.
func (m *Manager) Watch(size int) *Watcher {
	if size < 1 {
		size = 1
	}

	watcher := &Watcher{
		Ch:      make(chan Event, size),
		manager: m,
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.watchers == nil {
		m.watchers = map[*Watcher]struct{}{}
	}

	m.watchers[watcher] = struct{}{}
	return watcher
}

// Handle registers a Watcher whose events are passed to fn on a separate
// goroutine, in the order they were emitted. A panic in fn is logged and the
// next event is still delivered. Stopping the returned Watcher waits for fn to
// finish with everything already emitted.
func (m *Manager) Handle(fn func(Event)) *Watcher {
	watcher := m.Watch(16)
	watcher.done = make(chan struct{})

	go func() {
		defer close(watcher.done)
		for event := range watcher.Ch {
			handle(fn, event)
		}
	}()

	return watcher
}

// Emit sends event to all watchers. It is a no-op on a nil Manager.
func (m *Manager) Emit(event Event) {
	if m == nil {
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for watcher := range m.watchers {
		watcher.Ch <- event
	}
}

// Stop unregisters watcher and closes its Ch channel.
func (m *Manager) Stop(watcher *Watcher) {
	m.mutex.Lock()
	_, ok := m.watchers[watcher]
	delete(m.watchers, watcher)
	m.mutex.Unlock()

	if !ok {
		return
	}

	close(watcher.Ch)

	if watcher.done != nil {
		<-watcher.done
	}
}

// Stop will unregister a Watcher and close its Ch channel.
func (w *Watcher) Stop() {
	w.manager.Stop(w)
}

//--------------------------------------------------------------------------------
// private

func handle(fn func(Event), event Event) {
	defer util.LogRecover()
	fn(event)
}
