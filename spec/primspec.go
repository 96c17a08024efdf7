package spec

import (
	"sort"

	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

// PrimSpec is the typed view over a prim record.
type PrimSpec struct {
	SpecHandle
}

// NewPrimSpec wraps h as a PrimSpec.
func NewPrimSpec(h SpecHandle) PrimSpec { return PrimSpec{h} }

func (p PrimSpec) Specifier() (string, bool)     { return getTokenField(p.SpecHandle, fieldSpecifier) }
func (p PrimSpec) SetSpecifier(s string) bool    { return p.SetField(fieldSpecifier, value.NewToken(s)) }
func (p PrimSpec) TypeName() (string, bool)      { return getTokenField(p.SpecHandle, fieldTypeName) }
func (p PrimSpec) SetTypeName(s string) bool     { return p.SetField(fieldTypeName, value.NewToken(s)) }
func (p PrimSpec) Kind() (string, bool)          { return getTokenField(p.SpecHandle, fieldKind) }
func (p PrimSpec) SetKind(s string) bool         { return p.SetField(fieldKind, value.NewToken(s)) }
func (p PrimSpec) Active() (bool, bool)          { return getBoolField(p.SpecHandle, fieldActive) }
func (p PrimSpec) SetActive(v bool) bool         { return p.SetField(fieldActive, value.NewBool(v)) }
func (p PrimSpec) Hidden() (bool, bool)          { return getBoolField(p.SpecHandle, fieldHidden) }
func (p PrimSpec) SetHidden(v bool) bool         { return p.SetField(fieldHidden, value.NewBool(v)) }
func (p PrimSpec) Comment() (string, bool)       { return getTokenField(p.SpecHandle, fieldComment) }
func (p PrimSpec) SetComment(s string) bool      { return p.SetField(fieldComment, value.NewString(s)) }
func (p PrimSpec) Documentation() (string, bool) { return getTokenField(p.SpecHandle, fieldDocumentation) }
func (p PrimSpec) SetDocumentation(s string) bool {
	return p.SetField(fieldDocumentation, value.NewString(s))
}

// CustomData/AssetInfo are dictionary-valued fields.
func (p PrimSpec) CustomData() (map[string]value.Value, bool) {
	return dictField(p.SpecHandle, fieldCustomData)
}

func (p PrimSpec) AssetInfo() (map[string]value.Value, bool) {
	return dictField(p.SpecHandle, fieldAssetInfo)
}

func dictField(h SpecHandle, f path.Token) (map[string]value.Value, bool) {
	v, ok := h.GetField(f)
	if !ok || v.Kind() != value.Dictionary {
		return nil, false
	}
	return value.Get[map[string]value.Value](v)
}

func (p PrimSpec) SetCustomDataKey(key string, v value.Value) bool {
	return setDictKey(p.SpecHandle, fieldCustomData, key, v)
}

func (p PrimSpec) SetAssetInfoKey(key string, v value.Value) bool {
	return setDictKey(p.SpecHandle, fieldAssetInfo, key, v)
}

func setDictKey(h SpecHandle, field path.Token, key string, v value.Value) bool {
	m := map[string]value.Value{}
	if existing, ok := dictField(h, field); ok {
		for k, ev := range existing {
			m[k] = ev
		}
	}
	m[key] = v
	return h.SetField(field, value.NewDictionary(m))
}

// --- children views -------------------------------------------------------

func (p PrimSpec) children(match func(data.SpecType) bool) []path.Token {
	var out []path.Token
	p.l.Data().VisitSpecs(func(d data.AbstractData, q path.Path) bool {
		if q.Parent().Equals(p.p) && match(d.GetSpecType(q)) {
			out = append(out, q.Name())
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// NameChildren returns the names of this prim's child prims.
func (p PrimSpec) NameChildren() []path.Token {
	return p.children(func(t data.SpecType) bool { return t == data.Prim })
}

// Properties returns the names of this prim's direct properties
// (attributes and relationships).
func (p PrimSpec) Properties() []path.Token {
	return p.children(func(t data.SpecType) bool { return t == data.Attribute || t == data.Relationship })
}

// VariantSets returns the names of this prim's variant sets. Variant-set
// and variant records all share the prim itself as their path parent (a
// variant-selection component chains directly off the prim node), so sets
// are distinguished by the selection's variant-set name rather than by
// path nesting.
func (p PrimSpec) VariantSets() []path.Token {
	seen := map[path.Token]bool{}
	var out []path.Token
	p.l.Data().VisitSpecs(func(d data.AbstractData, q path.Path) bool {
		if d.GetSpecType(q) != data.VariantSet || !q.Parent().Equals(p.p) {
			return true
		}
		setName, _ := q.VariantSelection()
		if !seen[setName] {
			seen[setName] = true
			out = append(out, setName)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// VariantSet returns the handle for the named variant set, addressed by
// the sentinel selection (setName, "").
func (p PrimSpec) VariantSet(setName path.Token) VariantSetSpec {
	return NewVariantSetSpec(NewHandle(p.l, p.p.AppendVariantSelection(setName, "")))
}

// --- list editors ----------------------------------------------------------

func (p PrimSpec) ReferenceList() ReferenceListEditor {
	return ReferenceListEditor{h: p.SpecHandle, field: fieldReferences}
}

func (p PrimSpec) PayloadList() PayloadListEditor {
	return PayloadListEditor{h: p.SpecHandle, field: fieldPayloads}
}

func (p PrimSpec) InheritPathList() PathListEditor {
	return PathListEditor{h: p.SpecHandle, field: fieldInherits}
}

func (p PrimSpec) SpecializesList() PathListEditor {
	return PathListEditor{h: p.SpecHandle, field: fieldSpecializes}
}

func (p PrimSpec) RelocatesList() PathListEditor {
	return PathListEditor{h: p.SpecHandle, field: fieldRelocates}
}

// --- variant selections ----------------------------------------------------

// VariantSelections returns the (variant-set -> selected-variant) map.
func (p PrimSpec) VariantSelections() map[path.Token]path.Token {
	v, ok := p.GetField(fieldVariantSelection)
	if !ok || v.Kind() != value.Dictionary {
		return nil
	}
	m, _ := value.Get[map[string]value.Value](v)
	out := make(map[path.Token]path.Token, len(m))
	for k, vv := range m {
		s, _ := valueString(vv)
		out[path.Intern(k)] = path.Intern(s)
	}
	return out
}

// SetVariantSelection records that setName is currently pinned to
// variantName.
func (p PrimSpec) SetVariantSelection(setName, variantName path.Token) bool {
	return setDictKey(p.SpecHandle, fieldVariantSelection, setName.String(), value.NewToken(variantName.String()))
}
