package spec

import (
	"sort"

	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/path"
)

// VariantSetSpec is the typed view over a variant-set record: a container
// of named VariantSpecs.
type VariantSetSpec struct {
	SpecHandle
}

// NewVariantSetSpec wraps h as a VariantSetSpec.
func NewVariantSetSpec(h SpecHandle) VariantSetSpec { return VariantSetSpec{h} }

// Variants returns the names of this variant set's variants. vs is
// addressed by its (setName, "") sentinel selection; its variants share
// the same owning prim and variant-set name but carry a non-empty
// variant-selection name.
func (vs VariantSetSpec) Variants() []path.Token {
	setName, _ := vs.p.VariantSelection()
	prim := vs.p.Parent()
	var out []path.Token
	vs.l.Data().VisitSpecs(func(d data.AbstractData, q path.Path) bool {
		if d.GetSpecType(q) != data.Variant || !q.Parent().Equals(prim) {
			return true
		}
		qSet, qVariant := q.VariantSelection()
		if qSet == setName && qVariant != "" {
			out = append(out, qVariant)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Variant returns the handle for the named variant within vs.
func (vs VariantSetSpec) Variant(variantName path.Token) VariantSpec {
	setName, _ := vs.p.VariantSelection()
	return NewVariantSpec(NewHandle(vs.l, vs.p.Parent().AppendVariantSelection(setName, variantName)))
}

// VariantSpec is the typed view over a single variant: it owns a nested
// PrimSpec-like view of its own content.
type VariantSpec struct {
	SpecHandle
}

// NewVariantSpec wraps h as a VariantSpec.
func NewVariantSpec(h SpecHandle) VariantSpec { return VariantSpec{h} }

// Prim returns the nested PrimSpec-like view owned by this variant: the
// variant's own record doubles as the root of its override namespace.
func (v VariantSpec) Prim() PrimSpec { return NewPrimSpec(v.SpecHandle) }
