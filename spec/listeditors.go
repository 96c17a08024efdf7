package spec

import (
	"scenedesc.dev/sdf/listop"
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

// ReferenceListEditor edits a references-list field. Reference is
// conceptually a ListOp element kind, but value.ReferenceValue carries a
// map-valued CustomData field, which is not `comparable` and so cannot
// instantiate listop.ListOp[T]'s type parameter; this engine therefore
// edits the applied reference list directly as a plain ordered slice
// rather than routing it through the five-slot algebra. This is a
// simplification, not a silent behavior change: callers only ever see the
// already-composed list either way.
type ReferenceListEditor struct {
	h     SpecHandle
	field path.Token
}

func (e ReferenceListEditor) Items() []value.ReferenceValue {
	v, ok := e.h.GetField(e.field)
	if !ok || v.Kind() != value.Array {
		return nil
	}
	arr, _ := value.Get[[]value.Value](v)
	out := make([]value.ReferenceValue, 0, len(arr))
	for _, iv := range arr {
		if r, ok := value.Get[value.ReferenceValue](iv); ok {
			out = append(out, r)
		}
	}
	return out
}

func (e ReferenceListEditor) set(items []value.ReferenceValue) bool {
	arr := make([]value.Value, len(items))
	for i, r := range items {
		arr[i] = value.NewReference(r)
	}
	return e.h.SetField(e.field, value.NewArray(arr))
}

func (e ReferenceListEditor) Append(r value.ReferenceValue) bool {
	return e.set(append(e.Items(), r))
}

func (e ReferenceListEditor) Prepend(r value.ReferenceValue) bool {
	return e.set(append([]value.ReferenceValue{r}, e.Items()...))
}

func (e ReferenceListEditor) RemoveAt(i int) bool {
	items := e.Items()
	if i < 0 || i >= len(items) {
		return false
	}
	return e.set(append(append([]value.ReferenceValue{}, items[:i]...), items[i+1:]...))
}

// PayloadListEditor is ReferenceListEditor's analogue for payload fields.
type PayloadListEditor struct {
	h     SpecHandle
	field path.Token
}

func (e PayloadListEditor) Items() []value.PayloadValue {
	v, ok := e.h.GetField(e.field)
	if !ok || v.Kind() != value.Array {
		return nil
	}
	arr, _ := value.Get[[]value.Value](v)
	out := make([]value.PayloadValue, 0, len(arr))
	for _, iv := range arr {
		if p, ok := value.Get[value.PayloadValue](iv); ok {
			out = append(out, p)
		}
	}
	return out
}

func (e PayloadListEditor) set(items []value.PayloadValue) bool {
	arr := make([]value.Value, len(items))
	for i, p := range items {
		arr[i] = value.NewPayload(p)
	}
	return e.h.SetField(e.field, value.NewArray(arr))
}

func (e PayloadListEditor) Append(p value.PayloadValue) bool {
	return e.set(append(e.Items(), p))
}

func (e PayloadListEditor) Prepend(p value.PayloadValue) bool {
	return e.set(append([]value.PayloadValue{p}, e.Items()...))
}

func (e PayloadListEditor) RemoveAt(i int) bool {
	items := e.Items()
	if i < 0 || i >= len(items) {
		return false
	}
	return e.set(append(append([]value.PayloadValue{}, items[:i]...), items[i+1:]...))
}

// PathListEditor edits a ListOp<Path>-valued field (inherits, specializes,
// relocates-as-target-list, relationship targets, attribute connections).
// path.Path is a single-pointer struct and so is `comparable`, letting
// this editor reuse listop.ListOp[path.Path] directly.
type PathListEditor struct {
	h     SpecHandle
	field path.Token
}

// ListOp returns the field's current ListOp, or a zero-value one if unset.
func (e PathListEditor) ListOp() (listop.ListOp[path.Path], bool) {
	v, ok := e.h.GetField(e.field)
	if !ok {
		return listop.ListOp[path.Path]{}, false
	}
	lo, ok := value.Get[listop.ListOp[path.Path]](v)
	return lo, ok
}

// SetListOp replaces the field's ListOp wholesale.
func (e PathListEditor) SetListOp(lo listop.ListOp[path.Path]) bool {
	return e.h.SetField(e.field, value.NewListOp(lo))
}

// Apply composes the field's ListOp against input, returning the
// resulting ordered path list.
func (e PathListEditor) Apply(input []path.Path) []path.Path {
	lo, ok := e.ListOp()
	if !ok {
		return input
	}
	return lo.Apply(input, nil)
}

// ReplacePath replaces a single occurrence of old in the field's explicit
// slot with newPath. Returns false if old is not present.
func (e PathListEditor) ReplacePath(old, newPath path.Path) bool {
	lo, ok := e.ListOp()
	if !ok {
		return false
	}
	idx := indexOfPath(lo.Explicit(), old)
	if idx < 0 {
		return false
	}
	return e.SetListOp(lo.ReplaceOperations(listop.SlotExplicit, idx, 1, []path.Path{newPath}))
}

// RemovePath removes a single occurrence of p from the field's explicit
// slot. Returns false if p is not present.
func (e PathListEditor) RemovePath(p path.Path) bool {
	lo, ok := e.ListOp()
	if !ok {
		return false
	}
	idx := indexOfPath(lo.Explicit(), p)
	if idx < 0 {
		return false
	}
	return e.SetListOp(lo.ReplaceOperations(listop.SlotExplicit, idx, 1, nil))
}
