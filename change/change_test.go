package change

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/go-quicktest/qt"

	"scenedesc.dev/sdf/path"
)

type fakeLayer string

func (f fakeLayer) Identifier() string { return string(f) }

// TestNestedScopesCoalesce opens two nested scope handles, performs 100
// field mutations, then closes inner then outer; the listener must be
// called exactly once, covering all 100 changes.
func TestNestedScopesCoalesce(t *testing.T) {
	m := NewManager()
	var calls int32
	var gotEvents int
	m.Listen(func(n Notification) {
		atomic.AddInt32(&calls, 1)
		gotEvents = len(n.Events)
	})

	outer := m.OpenScope()
	inner := m.OpenScope()
	layer := fakeLayer("layer-1")
	for i := 0; i < 100; i++ {
		m.Post(Event{
			Layer: layer,
			Path:  path.FromString("/A"),
			Field: path.Intern(fmt.Sprintf("f%d", i)),
		})
	}
	inner.Close()
	qt.Assert(t, qt.Equals(atomic.LoadInt32(&calls), int32(0)))

	outer.Close()
	qt.Assert(t, qt.Equals(atomic.LoadInt32(&calls), int32(1)))
	qt.Assert(t, qt.Equals(gotEvents, 100))
}

func TestCloseIsIdempotent(t *testing.T) {
	m := NewManager()
	var calls int32
	m.Listen(func(Notification) { atomic.AddInt32(&calls, 1) })

	s := m.OpenScope()
	m.Post(Event{Layer: fakeLayer("l"), Path: path.FromString("/A")})
	s.Close()
	s.Close() // second close must not re-notify
	qt.Assert(t, qt.Equals(atomic.LoadInt32(&calls), int32(1)))
}

func TestDedupeOrderRemovesDuplicateEvents(t *testing.T) {
	m := NewManager()
	var got Notification
	m.Listen(func(n Notification) { got = n })

	s := m.OpenScope()
	layer := fakeLayer("l")
	field := path.Intern("size")
	ev := Event{Layer: layer, Path: path.FromString("/A"), Field: field}
	m.Post(ev)
	m.Post(ev)
	m.Post(ev)
	s.Close()

	qt.Assert(t, qt.Equals(len(got.Events), 1))
}

func TestRemoveListenerStopsNotifications(t *testing.T) {
	m := NewManager()
	var calls int32
	remove := m.Listen(func(Notification) { atomic.AddInt32(&calls, 1) })
	remove()

	s := m.OpenScope()
	m.Post(Event{Layer: fakeLayer("l"), Path: path.FromString("/A")})
	s.Close()

	qt.Assert(t, qt.Equals(atomic.LoadInt32(&calls), int32(0)))
}
