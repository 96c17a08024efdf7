// Package pathtable implements a path-keyed associative container: a hash
// table keyed by path.Path plus a slice of its keys kept sorted by
// path.Compare, so that a subtree can be listed in DFS preorder with a
// binary search.
package pathtable

import (
	"sort"
	"sync"

	"scenedesc.dev/sdf/path"
)

type entry[V any] struct {
	path     path.Path
	value    V
	inserted bool // true once an explicit (not ancestor-filled) value was set
}

// Table is a hash table keyed by path.Path, ordered for subtree iteration.
// A Table is not safe for concurrent mutation; ParallelForEach and
// ClearInParallel fan a read-only or destructive pass across goroutines.
type Table[V any] struct {
	mu      sync.RWMutex
	entries map[path.Path]*entry[V]
	order   []path.Path // kept sorted by path.Compare for range queries
	dirty   bool
}

// New returns an empty Table.
func New[V any]() *Table[V] {
	return &Table[V]{entries: make(map[path.Path]*entry[V])}
}

// Insert inserts v at k. Any ancestor of k absent from the table is
// implicitly inserted with v's zero value first. It returns inserted=false
// iff k was already present, in which case v is NOT written.
func (t *Table[V]) Insert(k path.Path, v V) (existing V, inserted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ensureAncestors(k)

	if e, ok := t.entries[k]; ok {
		return e.value, false
	}
	e := &entry[V]{path: k, value: v, inserted: true}
	t.entries[k] = e
	t.order = append(t.order, k)
	t.dirty = true
	return v, true
}

// ensureAncestors implicitly inserts every ancestor of k (excluding k
// itself) with a zero-valued entry, if not already present. Caller holds
// t.mu.
func (t *Table[V]) ensureAncestors(k path.Path) {
	var zero V
	var missing []path.Path
	for n := k.Parent(); !n.IsEmpty(); n = n.Parent() {
		if _, ok := t.entries[n]; ok {
			break
		}
		missing = append(missing, n)
	}
	for _, m := range missing {
		t.entries[m] = &entry[V]{path: m, value: zero}
		t.order = append(t.order, m)
		t.dirty = true
	}
}

// Find returns the value at k and whether it is present.
func (t *Table[V]) Find(k path.Path) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.entries[k]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Has reports whether k is present.
func (t *Table[V]) Has(k path.Path) bool {
	_, ok := t.Find(k)
	return ok
}

// Set overwrites the value at k, implicitly inserting k (and its ancestors)
// if absent.
func (t *Table[V]) Set(k path.Path, v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureAncestors(k)
	if e, ok := t.entries[k]; ok {
		e.value = v
		return
	}
	t.entries[k] = &entry[V]{path: k, value: v, inserted: true}
	t.order = append(t.order, k)
	t.dirty = true
}

// Erase removes k and every descendant of k. It returns the number of
// entries removed.
func (t *Table[V]) Erase(k path.Path) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	kept := t.order[:0]
	for _, p := range t.order {
		if p.Equals(k) || p.HasPrefix(k) {
			delete(t.entries, p)
			removed++
			continue
		}
		kept = append(kept, p)
	}
	t.order = kept
	return removed
}

func (t *Table[V]) sortLocked() {
	if !t.dirty {
		return
	}
	sort.Slice(t.order, func(i, j int) bool { return path.Less(t.order[i], t.order[j]) })
	t.dirty = false
}

// FindSubtreeRange returns, in DFS preorder, k and every descendant of k
// currently in the table.
func (t *Table[V]) FindSubtreeRange(k path.Path) []path.Path {
	t.mu.Lock()
	t.sortLocked()
	order := t.order
	t.mu.Unlock()

	lo := sort.Search(len(order), func(i int) bool { return !path.Less(order[i], k) })
	hi := lo
	for hi < len(order) && (order[hi].Equals(k) || order[hi].HasPrefix(k)) {
		hi++
	}
	out := make([]path.Path, hi-lo)
	copy(out, order[lo:hi])
	return out
}

// Len reports the number of entries in the table.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// ParallelForEach applies fn to every (path, value) pair using a fixed pool
// of worker goroutines. fn is responsible for its own synchronization if it
// touches shared state.
func (t *Table[V]) ParallelForEach(fn func(path.Path, V)) {
	t.mu.RLock()
	paths := make([]path.Path, 0, len(t.entries))
	values := make([]V, 0, len(t.entries))
	for p, e := range t.entries {
		paths = append(paths, p)
		values = append(values, e.value)
	}
	t.mu.RUnlock()

	workers := 8
	if len(paths) < workers {
		workers = len(paths)
	}
	if workers == 0 {
		return
	}
	var wg sync.WaitGroup
	chunk := (len(paths) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if lo >= len(paths) {
			break
		}
		if hi > len(paths) {
			hi = len(paths)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(paths[i], values[i])
			}
		}(lo, hi)
	}
	wg.Wait()
}

// ClearInParallel destroys every entry in the table using a worker pool,
// for use when V's cleanup is itself thread-safe.
func (t *Table[V]) ClearInParallel(destroy func(V)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if destroy != nil {
		values := make([]V, 0, len(t.entries))
		for _, e := range t.entries {
			values = append(values, e.value)
		}
		workers := 8
		if len(values) < workers {
			workers = len(values)
		}
		if workers > 0 {
			var wg sync.WaitGroup
			chunk := (len(values) + workers - 1) / workers
			for w := 0; w < workers; w++ {
				lo := w * chunk
				hi := lo + chunk
				if lo >= len(values) {
					break
				}
				if hi > len(values) {
					hi = len(values)
				}
				wg.Add(1)
				go func(lo, hi int) {
					defer wg.Done()
					for i := lo; i < hi; i++ {
						destroy(values[i])
					}
				}(lo, hi)
			}
			wg.Wait()
		}
	}
	t.entries = make(map[path.Path]*entry[V])
	t.order = nil
	t.dirty = false
}
