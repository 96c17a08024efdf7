// Package spec implements the Spec facade: thin, cheaply-copied (Layer,
// Path) handles over individual records in a layer's data store, plus the
// typed views (PrimSpec, PropertySpec, AttributeSpec, RelationshipSpec,
// VariantSetSpec, VariantSpec) over those records.
//
// A handle is a thin wrapper over a mutable store, re-resolved on every
// access: like a cheap pointer into a shared, separately-owned tree
// rather than an owning copy, it goes dormant rather than dangling when
// the underlying record disappears.
package spec

import (
	"fmt"

	"scenedesc.dev/sdf/layer"
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

// SpecHandle is a (Layer, Path) pair. It does not own the underlying
// record: the record lives in Layer's data store, and the handle goes
// dormant if that record is removed.
type SpecHandle struct {
	l *layer.Layer
	p path.Path
}

// NewHandle constructs a handle. Construction never verifies that a
// record exists at p; callers check IsDormant or rely on accessors
// reporting their own ok=false.
func NewHandle(l *layer.Layer, p path.Path) SpecHandle {
	return SpecHandle{l: l, p: p}
}

// IsDormant reports whether the record this handle names has been
// removed (or the handle was never valid).
func (h SpecHandle) IsDormant() bool {
	if h.l == nil || h.p.IsEmpty() {
		return true
	}
	return !h.l.Data().HasSpec(h.p)
}

// GetPath returns the handle's path.
func (h SpecHandle) GetPath() path.Path { return h.p }

// GetLayer returns the handle's layer.
func (h SpecHandle) GetLayer() *layer.Layer { return h.l }

// GetName returns the handle's final path component name.
func (h SpecHandle) GetName() path.Token { return h.p.Name() }

// SetName renames the record at h's path, moving it (and any descendants)
// to a sibling with the new name. It fails if a sibling of that name
// already exists.
func (h *SpecHandle) SetName(newName path.Token, validate bool) error {
	if h.IsDormant() {
		return fmt.Errorf("spec: rename: handle at %s is dormant", h.p)
	}
	var newPath path.Path
	if h.p.IsPropertyPath() {
		newPath = h.p.Parent().AppendProperty(newName)
	} else {
		newPath = h.p.Parent().AppendChild(newName)
	}
	batch := layer.BatchNamespaceEdit{Edits: []layer.NamespaceEdit{
		{Kind: layer.EditRename, CurrentPath: h.p, NewPath: newPath},
	}}
	if ok, details := h.l.CanApply(batch); !ok {
		return fmt.Errorf("spec: rename %s to %s: %v", h.p, newPath, details)
	}
	if !h.l.Apply(batch) {
		return fmt.Errorf("spec: rename %s to %s failed", h.p, newPath)
	}
	h.p = newPath
	return nil
}

// --- generic field accessors ---------------------------------------------

// HasField reports whether field is set on h's record.
func (h SpecHandle) HasField(field path.Token) bool {
	if h.IsDormant() {
		return false
	}
	return h.l.Data().Has(h.p, field)
}

// GetField reads field from h's record.
func (h SpecHandle) GetField(field path.Token) (value.Value, bool) {
	if h.IsDormant() {
		return value.Empty, false
	}
	return h.l.Data().Get(h.p, field)
}

// SetField writes field on h's record, through the layer's scoped editing
// protocol.
func (h SpecHandle) SetField(field path.Token, v value.Value) bool {
	if h.IsDormant() {
		return false
	}
	return h.l.SetField(h.p, field, v)
}

// ClearField erases field from h's record.
func (h SpecHandle) ClearField(field path.Token) bool {
	if h.IsDormant() {
		return false
	}
	return h.l.EraseField(h.p, field)
}

// ListFields returns every field name set on h's record.
func (h SpecHandle) ListFields() []path.Token {
	if h.IsDormant() {
		return nil
	}
	return h.l.Data().List(h.p)
}

// HasOnlyRequiredFields reports whether h's record carries no fields
// beyond the minimal set its spec type requires: specifier for prims,
// variability for properties, and typeName as well for attributes.
func (h SpecHandle) HasOnlyRequiredFields() bool {
	if h.IsDormant() {
		return false
	}
	required := requiredFields[h.l.Data().GetSpecType(h.p)]
	for _, f := range h.ListFields() {
		found := false
		for _, r := range required {
			if f == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
