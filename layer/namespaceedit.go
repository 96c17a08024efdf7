package layer

import (
	"fmt"
	"sort"

	"scenedesc.dev/sdf/change"
	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/path"
)

// EditKind enumerates the namespace-edit operations a BatchNamespaceEdit
// can describe.
type EditKind int

const (
	EditRemove EditKind = iota
	EditRename
	EditReparent
	EditReorder
)

// NamespaceEdit describes one edit in a BatchNamespaceEdit.
type NamespaceEdit struct {
	Kind        EditKind
	CurrentPath path.Path
	NewPath     path.Path // Rename/Reparent target; ignored otherwise
	Index       int       // Reorder: new sibling index; ignored otherwise
}

// BatchNamespaceEdit is an ordered list of namespace edits applied as one
// unit: CanApply validates, Apply performs.
type BatchNamespaceEdit struct {
	Edits []NamespaceEdit
}

// CanApply validates batch against l's current content without mutating
// it, returning false plus a list of human-readable reasons for every
// edit that would fail.
func (l *Layer) CanApply(batch BatchNamespaceEdit) (bool, []string) {
	l.mu.RLock()
	store := l.store
	l.mu.RUnlock()

	var details []string
	ok := true
	fail := func(format string, args ...interface{}) {
		details = append(details, fmt.Sprintf(format, args...))
		ok = false
	}
	for i, e := range batch.Edits {
		switch e.Kind {
		case EditRemove:
			if !store.HasSpec(e.CurrentPath) {
				fail("edit %d: no spec at %s", i, e.CurrentPath)
			}
		case EditRename, EditReparent:
			if !store.HasSpec(e.CurrentPath) {
				fail("edit %d: no spec at %s", i, e.CurrentPath)
				continue
			}
			if e.NewPath.Equals(e.CurrentPath) {
				continue
			}
			if store.HasSpec(e.NewPath) {
				fail("edit %d: destination %s already occupied", i, e.NewPath)
			}
		case EditReorder:
			if !store.HasSpec(e.CurrentPath) {
				fail("edit %d: no spec at %s", i, e.CurrentPath)
			}
		default:
			fail("edit %d: unknown edit kind %d", i, e.Kind)
		}
	}
	return ok, details
}

// Apply validates then performs batch as a single scoped edit. It fails
// (and changes nothing) if CanApply rejects batch.
func (l *Layer) Apply(batch BatchNamespaceEdit) bool {
	if ok, _ := l.CanApply(batch); !ok {
		return false
	}
	return l.withEditScope(func() bool {
		for _, e := range batch.Edits {
			switch e.Kind {
			case EditRemove:
				l.eraseSubtreeLocked(e.CurrentPath)
			case EditRename, EditReparent:
				if !e.NewPath.Equals(e.CurrentPath) {
					if !l.moveSubtreeLocked(e.CurrentPath, e.NewPath) {
						return false
					}
				}
			case EditReorder:
				// Sibling order is not separately modeled by this engine's
				// AbstractData contract; CanApply has already confirmed the
				// spec exists.
			}
			DefaultChangeManager.Post(change.Event{Layer: l, Path: e.CurrentPath, Subtree: true})
		}
		l.dirty = true
		return true
	})
}

// eraseSubtreeLocked removes p and every descendant spec. l.mu must
// already be held (via withEditScope).
func (l *Layer) eraseSubtreeLocked(p path.Path) {
	var toErase []path.Path
	l.store.VisitSpecs(func(_ data.AbstractData, q path.Path) bool {
		if q.Equals(p) || q.HasPrefix(p) {
			toErase = append(toErase, q)
		}
		return true
	})
	for _, q := range toErase {
		l.store.EraseSpec(q)
	}
}

// moveSubtreeLocked relocates old and every descendant to the
// corresponding path under newPrefix. Moves are ordered deepest-path-first
// so that a destination transiently coinciding with an as-yet-unmoved
// source never collides. l.mu must already be held.
func (l *Layer) moveSubtreeLocked(old, newPrefix path.Path) bool {
	type move struct{ from, to path.Path }
	var moves []move
	l.store.VisitSpecs(func(_ data.AbstractData, q path.Path) bool {
		if q.Equals(old) || q.HasPrefix(old) {
			moves = append(moves, move{from: q, to: q.ReplacePrefix(old, newPrefix, true)})
		}
		return true
	})
	sort.Slice(moves, func(i, j int) bool { return !path.Less(moves[i].from, moves[j].from) })
	for _, m := range moves {
		if !l.store.MoveSpec(m.from, m.to) {
			return false
		}
	}
	return true
}
