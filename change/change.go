// Package change implements the ChangeManager: a stack of open
// change-block scopes that accumulate edit events and, on the outermost
// scope's close, flush a single deduplicated, ordered notification to
// registered listeners. The notification fan-out is modeled as a
// docker/go-events Sink/Broadcaster pair, fanning a single write out to
// many synchronous listeners.
package change

import (
	"sort"
	"sync"

	"github.com/docker/go-events"

	"scenedesc.dev/sdf/path"
)

// LayerHandle is the minimal identity a Layer exposes to the change
// package, avoiding an import cycle between change and layer.
type LayerHandle interface {
	Identifier() string
}

// Event is a single structured change: a field write, a field erase, or a
// coarser subtree/spec change (Field == "" in that case).
type Event struct {
	Layer   LayerHandle
	Path    path.Path
	Field   path.Token
	Subtree bool
}

// Notification is the single composite event emitted when the outermost
// scope closes.
type Notification struct {
	Events []Event
}

// funcSink adapts a plain callback to events.Sink.
type funcSink struct {
	fn func(Notification)
}

func (f funcSink) Write(ev events.Event) error {
	if n, ok := ev.(Notification); ok {
		f.fn(n)
	}
	return nil
}

func (f funcSink) Close() error { return nil }

// Manager is the ChangeManager: an open-scope stack plus an accumulator of
// pending events. Concurrent scope nesting on the same Manager from
// multiple goroutines is undefined; callers are expected to serialize
// writes to a given Layer (and thus its Manager) themselves.
type Manager struct {
	mu          sync.Mutex
	depth       int
	acc         []Event
	broadcaster *events.Broadcaster
}

// NewManager returns an empty ChangeManager.
func NewManager() *Manager {
	return &Manager{broadcaster: events.NewBroadcaster()}
}

// Listen registers fn to be called with the composite Notification each
// time the outermost scope closes. The returned remove func unregisters
// it.
func (m *Manager) Listen(fn func(Notification)) (remove func()) {
	sink := &funcSink{fn: fn}
	m.broadcaster.Add(sink)
	return func() { m.broadcaster.Remove(sink) }
}

// Scope is an open change block. Close releases it; closing the outermost
// scope drains and notifies.
type Scope struct {
	mgr    *Manager
	closed bool
}

// OpenScope pushes a new scope handle, arming the notifier if the stack
// was previously empty.
func (m *Manager) OpenScope() *Scope {
	m.mu.Lock()
	m.depth++
	m.mu.Unlock()
	return &Scope{mgr: m}
}

// Post enqueues ev onto the accumulator. An event posted with no scope
// open stays in the accumulator and is delivered with the notification of
// the next outermost scope to close.
func (m *Manager) Post(ev Event) {
	m.mu.Lock()
	m.acc = append(m.acc, ev)
	m.mu.Unlock()
}

// Close releases the scope. If this was the outermost scope, the
// accumulator is deduplicated, ordered, and flushed as a single
// Notification to every registered listener, synchronously, before Close
// returns. Close is safe to call more than once; only the first call has
// effect, so a deferred Close after an earlier explicit Close is
// harmless.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	m := s.mgr

	m.mu.Lock()
	m.depth--
	outermost := m.depth == 0
	var notification Notification
	if outermost {
		notification = Notification{Events: dedupeOrder(m.acc)}
		m.acc = nil
	}
	m.mu.Unlock()

	if outermost {
		m.broadcaster.Write(notification)
		// The broadcaster delivers on its own goroutine and accepts the
		// next write only after every sink has received the previous one,
		// so this second write returns once all listeners have run.
		// funcSink ignores anything that is not a Notification.
		m.broadcaster.Write(struct{}{})
	}
}

func dedupeOrder(acc []Event) []Event {
	if len(acc) == 0 {
		return nil
	}
	seen := make(map[Event]bool, len(acc))
	out := make([]Event, 0, len(acc))
	for _, e := range acc {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Layer.Identifier() != b.Layer.Identifier() {
			return a.Layer.Identifier() < b.Layer.Identifier()
		}
		if !a.Path.Equals(b.Path) {
			return path.Less(a.Path, b.Path)
		}
		return a.Field.String() < b.Field.String()
	})
	return out
}
