// Package listop implements the five-slot list-op algebra: a tagged
// structure used for every orderable list in the model (references,
// payloads, connections, inherits, specializes, variant sets, sublayers).
package listop

import "scenedesc.dev/sdf/diag"

// ListOp is the five-slot (plus explicit) edit operator. T must be
// comparable so slots can be de-duplicated by value/identity (for
// path.Path this is pointer identity after interning; for scalar element
// types it is ordinary value equality).
type ListOp[T comparable] struct {
	isExplicit bool
	explicit   []T
	added      []T
	prepended  []T
	appended   []T
	deleted    []T
	ordered    []T
}

// NewExplicit returns an explicit ListOp holding items (de-duplicated,
// first occurrence wins).
func NewExplicit[T comparable](items []T) ListOp[T] {
	return ListOp[T]{isExplicit: true, explicit: dedupe(items)}
}

// IsExplicit reports whether only the Explicit slot is meaningful.
func (l ListOp[T]) IsExplicit() bool { return l.isExplicit }

func (l ListOp[T]) Explicit() []T  { return clone(l.explicit) }
func (l ListOp[T]) Added() []T     { return clone(l.added) }
func (l ListOp[T]) Prepended() []T { return clone(l.prepended) }
func (l ListOp[T]) Appended() []T  { return clone(l.appended) }
func (l ListOp[T]) Deleted() []T   { return clone(l.deleted) }
func (l ListOp[T]) Ordered() []T   { return clone(l.ordered) }

// withNonExplicit returns l ready to receive a non-explicit slot mutation:
// switching modes clears all vectors.
func (l ListOp[T]) withNonExplicit() ListOp[T] {
	if l.isExplicit {
		return ListOp[T]{}
	}
	return l
}

func (l ListOp[T]) SetExplicit(items []T) ListOp[T] {
	return ListOp[T]{isExplicit: true, explicit: dedupe(items)}
}
func (l ListOp[T]) SetAdded(items []T) ListOp[T] {
	l = l.withNonExplicit()
	l.added = dedupe(items)
	return l
}
func (l ListOp[T]) SetPrepended(items []T) ListOp[T] {
	l = l.withNonExplicit()
	l.prepended = dedupe(items)
	return l
}
func (l ListOp[T]) SetAppended(items []T) ListOp[T] {
	l = l.withNonExplicit()
	l.appended = dedupe(items)
	return l
}
func (l ListOp[T]) SetDeleted(items []T) ListOp[T] {
	l = l.withNonExplicit()
	l.deleted = dedupe(items)
	return l
}
func (l ListOp[T]) SetOrdered(items []T) ListOp[T] {
	l = l.withNonExplicit()
	l.ordered = dedupe(items)
	return l
}

// Clear returns a non-explicit, empty ListOp.
func (l ListOp[T]) Clear() ListOp[T] { return ListOp[T]{} }

// ClearAndMakeExplicit returns an explicit, empty ListOp.
func (l ListOp[T]) ClearAndMakeExplicit() ListOp[T] { return ListOp[T]{isExplicit: true} }

// --- application ---------------------------------------------------------

// Apply applies l to input, returning the resulting vector. translate, if
// non-nil, is invoked for every element of every slot before
// it participates in the application; returning ok=false drops that
// element, otherwise the returned value is used in its place (this is how
// CopyEngine rewrites path-valued list-ops while copying).
func (l ListOp[T]) Apply(input []T, translate func(T) (v T, ok bool)) []T {
	tr := func(x T) (T, bool) {
		if translate == nil {
			return x, true
		}
		return translate(x)
	}

	if l.isExplicit {
		var out []T
		for _, x := range l.explicit {
			if y, ok := tr(x); ok {
				out = append(out, y)
			}
		}
		return dedupe(out)
	}

	vec := clone(input)

	// a. delete
	if len(l.deleted) > 0 {
		del := translateSet(l.deleted, tr)
		vec = filterOut(vec, del)
	}

	// b. add: append only if absent
	present := toSet(vec)
	for _, x := range l.added {
		y, ok := tr(x)
		if !ok {
			continue
		}
		if _, found := present[y]; found {
			continue
		}
		vec = append(vec, y)
		present[y] = struct{}{}
	}

	// c. prepend: move the whole (translated, de-duplicated) block to the front
	if len(l.prepended) > 0 {
		block := translateDedupe(l.prepended, tr)
		blockSet := toSet(block)
		vec = append(append([]T{}, block...), filterOut(vec, blockSet)...)
	}

	// d. append: move the whole block to the back
	if len(l.appended) > 0 {
		block := translateDedupe(l.appended, tr)
		blockSet := toSet(block)
		vec = append(filterOut(vec, blockSet), block...)
	}

	// e. reorder: order entries appear, as a contiguous block inserted at
	// the position of the first ordered element originally present,
	// relative to each other in the order given; everything else keeps its
	// relative position.
	if len(l.ordered) > 0 {
		orderedSeq := translateDedupePresent(l.ordered, tr, vec)
		if len(orderedSeq) > 0 {
			orderSet := toSet(orderedSeq)
			firstIdx := -1
			for i, x := range vec {
				if _, ok := orderSet[x]; ok {
					firstIdx = i
					break
				}
			}
			insertAt := 0
			for i := 0; i < firstIdx; i++ {
				if _, ok := orderSet[vec[i]]; !ok {
					insertAt++
				}
			}
			remainder := filterOut(vec, orderSet)
			newVec := make([]T, 0, len(remainder)+len(orderedSeq))
			newVec = append(newVec, remainder[:insertAt]...)
			newVec = append(newVec, orderedSeq...)
			newVec = append(newVec, remainder[insertAt:]...)
			vec = newVec
		}
	}

	return vec
}

// --- composition -----------------------------------------------------

// ComposeOperations returns the ListOp equivalent to applying self on top
// of inner, if representable. self must be explicit, or have empty Added
// and Ordered slots; otherwise ok is false.
func (self ListOp[T]) ComposeOperations(inner ListOp[T]) (composed ListOp[T], ok bool) {
	if self.isExplicit {
		return NewExplicit(clone(self.explicit)), true
	}
	if len(self.added) != 0 || len(self.ordered) != 0 {
		return ListOp[T]{}, false
	}
	if inner.isExplicit {
		return NewExplicit(self.Apply(inner.explicit, nil)), true
	}

	innerPrepended := removeAll(inner.prepended, self.deleted)
	innerAppended := removeAll(inner.appended, self.deleted)
	innerAdded := removeAll(inner.added, self.deleted)

	mergedDeleted := dedupe(append(append([]T{}, inner.deleted...), self.deleted...))
	mergedDeleted = removeAll(mergedDeleted, self.prepended)
	mergedDeleted = removeAll(mergedDeleted, self.appended)

	mergedPrepended := unionFrontWins(self.prepended, innerPrepended)
	mergedAppended := unionBackWins(innerAppended, self.appended)

	return ListOp[T]{
		added:     clone(innerAdded),
		deleted:   mergedDeleted,
		prepended: mergedPrepended,
		appended:  mergedAppended,
		ordered:   clone(inner.ordered),
	}, true
}

// ModifyOperations runs f over every element of every slot; an element for
// which f returns ok=false is dropped, otherwise it is replaced by f's
// return value (re-deduplicated afterwards).
func (l ListOp[T]) ModifyOperations(f func(T) (T, bool)) ListOp[T] {
	apply := func(s []T) []T {
		if s == nil {
			return nil
		}
		var out []T
		for _, x := range s {
			if y, ok := f(x); ok {
				out = append(out, y)
			}
		}
		return dedupe(out)
	}
	return ListOp[T]{
		isExplicit: l.isExplicit,
		explicit:   apply(l.explicit),
		added:      apply(l.added),
		prepended:  apply(l.prepended),
		appended:   apply(l.appended),
		deleted:    apply(l.deleted),
		ordered:    apply(l.ordered),
	}
}

// Slot names one of the six vectors a ListOp carries.
type Slot int

const (
	SlotExplicit Slot = iota
	SlotAdded
	SlotPrepended
	SlotAppended
	SlotDeleted
	SlotOrdered
)

// ReplaceOperations replaces the subrange [index, index+n) of the named
// slot with newItems, re-deduplicating the result. It reports a coding
// error and returns l unchanged if the range is out of bounds.
func (l ListOp[T]) ReplaceOperations(slot Slot, index, n int, newItems []T) ListOp[T] {
	get := func(s Slot) []T {
		switch s {
		case SlotExplicit:
			return l.explicit
		case SlotAdded:
			return l.added
		case SlotPrepended:
			return l.prepended
		case SlotAppended:
			return l.appended
		case SlotDeleted:
			return l.deleted
		case SlotOrdered:
			return l.ordered
		}
		return nil
	}
	cur := get(slot)
	if index < 0 || n < 0 || index > len(cur) || index+n > len(cur) {
		diag.Report(diag.CodingError, "replace-operations: range [%d,%d) out of bounds for slot of length %d", index, index+n, len(cur))
		return l
	}
	next := make([]T, 0, len(cur)-n+len(newItems))
	next = append(next, cur[:index]...)
	next = append(next, newItems...)
	next = append(next, cur[index+n:]...)
	next = dedupe(next)

	out := l
	switch slot {
	case SlotExplicit:
		out.explicit = next
	case SlotAdded:
		out.added = next
	case SlotPrepended:
		out.prepended = next
	case SlotAppended:
		out.appended = next
	case SlotDeleted:
		out.deleted = next
	case SlotOrdered:
		out.ordered = next
	}
	return out
}

// --- helpers -----------------------------------------------------------

func clone[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func dedupe[T comparable](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[T]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

func toSet[T comparable](items []T) map[T]struct{} {
	s := make(map[T]struct{}, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

func translateSet[T comparable](items []T, tr func(T) (T, bool)) map[T]struct{} {
	s := make(map[T]struct{}, len(items))
	for _, x := range items {
		if y, ok := tr(x); ok {
			s[y] = struct{}{}
		}
	}
	return s
}

func translateDedupe[T comparable](items []T, tr func(T) (T, bool)) []T {
	seen := make(map[T]struct{}, len(items))
	var out []T
	for _, x := range items {
		y, ok := tr(x)
		if !ok {
			continue
		}
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	return out
}

// translateDedupePresent is translateDedupe restricted to elements that
// are present in vec.
func translateDedupePresent[T comparable](items []T, tr func(T) (T, bool), vec []T) []T {
	present := toSet(vec)
	seen := make(map[T]struct{}, len(items))
	var out []T
	for _, x := range items {
		y, ok := tr(x)
		if !ok {
			continue
		}
		if _, ok := present[y]; !ok {
			continue
		}
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	return out
}

func filterOut[T comparable](vec []T, remove map[T]struct{}) []T {
	out := make([]T, 0, len(vec))
	for _, x := range vec {
		if _, ok := remove[x]; ok {
			continue
		}
		out = append(out, x)
	}
	return out
}

func removeAll[T comparable](items, remove []T) []T {
	if len(remove) == 0 {
		return clone(items)
	}
	rm := toSet(remove)
	return filterOut(items, rm)
}

// unionFrontWins returns front followed by the elements of rest not
// already in front, de-duplicated, preserving front's own order.
func unionFrontWins[T comparable](front, rest []T) []T {
	out := dedupe(front)
	seen := toSet(out)
	for _, x := range rest {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}

// unionBackWins returns the elements of rest not in back, followed by
// back, de-duplicated, preserving back's own order.
func unionBackWins[T comparable](rest, back []T) []T {
	backSet := toSet(dedupe(back))
	out := filterOut(dedupe(rest), backSet)
	out = append(out, dedupe(back)...)
	return out
}
