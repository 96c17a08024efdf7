// Package copyengine implements copy-spec: copying a record and,
// recursively, its children from one layer/path to another, with caller
// hooks to steer per-value and per-child-set copying.
//
// The overall shape is validate-then-walk (check path-kind compatibility
// up front, then walk), generalized from a filesystem tree to a
// path-keyed record tree walked with an explicit work deque instead of
// recursion, since copy-spec must detect the same-layer prefix-overlap
// case before it starts moving records.
package copyengine

import (
	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/diag"
	"scenedesc.dev/sdf/layer"
	"scenedesc.dev/sdf/listop"
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

// well-known field tokens this engine rewrites path-valued data for.
// Duplicated from the facade's private field set deliberately: this
// engine operates at the AbstractData level, below the spec facade, and
// has no reason to depend on it.
var (
	fieldSpecifier   = path.Intern("specifier")
	fieldTypeName    = path.Intern("typeName")
	fieldReferences  = path.Intern("references")
	fieldPayloads    = path.Intern("payload")
	fieldInherits    = path.Intern("inheritPaths")
	fieldSpecializes = path.Intern("specializes")
	fieldRelocates   = path.Intern("relocates")
	fieldConnections = path.Intern("connectionPaths")
	fieldTargetPaths = path.Intern("targetPaths")
)

var pathValuedListOpFields = []path.Token{
	fieldInherits, fieldSpecializes, fieldRelocates, fieldConnections, fieldTargetPaths,
}

// ChildrenCategory distinguishes the four parent/child relationships this
// engine's tree derives from path shape rather than from a literal
// "children" field.
type ChildrenCategory int

const (
	CategoryNameChildren ChildrenCategory = iota
	CategoryProperties
	CategoryVariantSets
	CategoryVariants
)

// CopySpecsValueEdit is invoked with (dstLayer, dstPath) after the
// destination record exists, letting a should-copy-value callback defer
// a field edit until the record is in place.
type CopySpecsValueEdit func(dstLayer *layer.Layer, dstPath path.Path, field path.Token)

// ShouldCopyValueFunc decides, for one field at one work item, whether
// and how to copy it. Returning copy=false skips the field entirely.
// Returning a non-nil edit defers the write to after spec creation;
// otherwise newValue is written immediately. The default behavior
// (DefaultShouldCopyValue) copies src verbatim, rewriting path-valued
// list-ops and the prim paths of references and payloads by replacing any
// srcRoot-rooted prefix with dstRoot.
type ShouldCopyValueFunc func(srcPath, dstPath path.Path, field path.Token, srcValue value.Value, dstHasValue bool, dstValue value.Value) (copy bool, newValue value.Value, edit CopySpecsValueEdit)

// ShouldCopyChildrenFunc decides, for one children category at one work
// item, which children to copy and under what destination names. The two
// returned slices must have equal length; element i pairs
// newSrcChildren[i] with newDstChildren[i]. Returning copy=false skips
// the category (neither copies new children nor removes existing dst
// children in that category).
type ShouldCopyChildrenFunc func(category ChildrenCategory, srcPath, dstPath path.Path, srcChildren, dstChildren []path.Token) (newSrcChildren, newDstChildren []path.Token, copy bool)

// CopySpec copies the record tree rooted at srcPath in srcLayer to
// dstPath in dstLayer. shouldCopyValue/shouldCopyChildren may be nil to
// take the default behavior.
func CopySpec(srcLayer *layer.Layer, srcPath path.Path, dstLayer *layer.Layer, dstPath path.Path, shouldCopyValue ShouldCopyValueFunc, shouldCopyChildren ShouldCopyChildrenFunc) bool {
	if !compatibleKinds(srcPath, dstPath) {
		diag.Report(diag.CodingError, "copyengine: incompatible src/dst path kinds: %s, %s", srcPath, dstPath)
		return false
	}
	if shouldCopyValue == nil {
		shouldCopyValue = DefaultShouldCopyValue(srcPath, dstPath)
	}
	if shouldCopyChildren == nil {
		shouldCopyChildren = DefaultShouldCopyChildren
	}

	if srcLayer == dstLayer && (srcPath.HasPrefix(dstPath) || dstPath.HasPrefix(srcPath)) {
		tmp := layer.CreateAnonymous("copy-spec", nil)
		if !CopySpec(srcLayer, srcPath, tmp, srcPath, nil, nil) {
			return false
		}
		return CopySpec(tmp, srcPath, dstLayer, dstPath, shouldCopyValue, shouldCopyChildren)
	}

	type workItem struct {
		src, dst path.Path
		erase    bool
	}
	deque := []workItem{{src: srcPath, dst: dstPath}}

	for len(deque) > 0 {
		item := deque[0]
		deque = deque[1:]

		if item.erase {
			eraseSubtree(dstLayer, item.dst)
			continue
		}

		srcType := srcLayer.Data().GetSpecType(item.src)
		if srcType == data.Unknown {
			eraseSubtree(dstLayer, item.dst)
			continue
		}

		fieldSet := unionFields(srcLayer.Data(), item.src, dstLayer.Data(), item.dst)
		dstType := srcType
		if dstLayer.Data().HasSpec(item.dst) {
			dstType = dstLayer.Data().GetSpecType(item.dst)
		}
		isPrimToVariant := item.dst.IsPrimVariantSelectionPath() && !item.src.IsPrimVariantSelectionPath()
		isVariantToPrim := item.src.IsPrimVariantSelectionPath() && !item.dst.IsPrimVariantSelectionPath()

		pending := map[path.Token]value.Value{}
		var deferred []struct {
			field path.Token
			edit  CopySpecsValueEdit
		}
		for _, f := range fieldSet {
			if (isPrimToVariant || isVariantToPrim) && (f == fieldSpecifier || f == fieldTypeName) {
				continue // handled by the prim<->variant allowance below
			}
			srcVal, srcHas := srcLayer.Data().Get(item.src, f)
			dstVal, dstHas := dstLayer.Data().Get(item.dst, f)
			doCopy, newVal, edit := shouldCopyValue(item.src, item.dst, f, srcVal, dstHas, dstVal)
			if !doCopy {
				continue
			}
			_ = srcHas
			if edit != nil {
				deferred = append(deferred, struct {
					field path.Token
					edit  CopySpecsValueEdit
				}{f, edit})
				continue
			}
			pending[f] = newVal
		}

		if !dstLayer.Data().HasSpec(item.dst) {
			specType := srcType
			if isPrimToVariant {
				specType = data.Variant
			} else if isVariantToPrim {
				specType = data.Prim
			}
			if !dstLayer.CreateSpec(item.dst, specType) {
				return false
			}
			dstType = specType
		}

		switch {
		case isPrimToVariant:
			dstLayer.SetField(item.dst, fieldSpecifier, specifierOver())
		case isVariantToPrim:
			if v, ok := srcLayer.Data().Get(item.src.Parent().PrimPath(), fieldSpecifier); ok {
				dstLayer.SetField(item.dst, fieldSpecifier, v)
			}
			if v, ok := srcLayer.Data().Get(item.src.Parent().PrimPath(), fieldTypeName); ok {
				dstLayer.SetField(item.dst, fieldTypeName, v)
			}
		}

		for f, v := range pending {
			if v.IsEmpty() {
				dstLayer.EraseField(item.dst, f)
				continue
			}
			dstLayer.SetField(item.dst, f, v)
		}
		for _, d := range deferred {
			d.edit(dstLayer, item.dst, d.field)
		}

		_ = dstType

		for _, cat := range categoriesFor(item.src) {
			srcChildren := listChildren(srcLayer.Data(), item.src, cat)
			dstChildren := listChildren(dstLayer.Data(), item.dst, cat)
			newSrc, newDst, ok := shouldCopyChildren(cat, item.src, item.dst, srcChildren, dstChildren)
			if !ok {
				continue
			}
			if len(newSrc) != len(newDst) {
				diag.Report(diag.CodingError, "copyengine: should-copy-children returned mismatched lengths for category %d", cat)
				return false
			}
			kept := map[path.Token]bool{}
			for i := range newSrc {
				kept[newDst[i]] = true
				deque = append(deque, workItem{
					src: childPath(item.src, cat, newSrc[i]),
					dst: childPath(item.dst, cat, newDst[i]),
				})
			}
			for _, existing := range dstChildren {
				if !kept[existing] {
					deque = append(deque, workItem{dst: childPath(item.dst, cat, existing), erase: true})
				}
			}
		}
	}
	return true
}

func specifierOver() value.Value { return value.NewToken("over") }

func compatibleKinds(src, dst path.Path) bool {
	switch {
	case (src.IsPrimPath() || src.IsPrimVariantSelectionPath()) && (dst.IsPrimPath() || dst.IsPrimVariantSelectionPath()):
		return true
	case src.IsPropertyPath() && dst.IsPropertyPath():
		return true
	case src.IsTargetPath() && dst.IsTargetPath():
		return true
	default:
		return false
	}
}

func unionFields(srcData data.AbstractData, src path.Path, dstData data.AbstractData, dst path.Path) []path.Token {
	seen := map[path.Token]bool{}
	var out []path.Token
	for _, f := range srcData.List(src) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, f := range dstData.List(dst) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func isPathValuedField(f path.Token) bool {
	for _, pf := range pathValuedListOpFields {
		if pf == f {
			return true
		}
	}
	return false
}

// DefaultShouldCopyValue returns the default should-copy-value behavior
// for a copy from srcRoot to dstRoot: copy every field verbatim from src,
// except that list-ops of Path (inherits, specializes,
// relocates, connection paths, relationship targets) have every embedded
// path rewritten by replacing an srcRoot-rooted prefix with dstRoot, and
// the references and payload arrays have their target prim paths
// rewritten the same way.
func DefaultShouldCopyValue(srcRoot, dstRoot path.Path) ShouldCopyValueFunc {
	strippedSrc := srcRoot.StripAllVariantSelections()
	strippedDst := dstRoot.StripAllVariantSelections()
	return func(srcPath, dstPath path.Path, field path.Token, srcValue value.Value, dstHasValue bool, dstValue value.Value) (bool, value.Value, CopySpecsValueEdit) {
		if srcValue.IsEmpty() {
			return true, value.Empty, nil
		}
		if isPathValuedField(field) {
			if lo, ok := value.Get[listop.ListOp[path.Path]](srcValue); ok {
				return true, value.NewListOp(rewriteListOp(lo, strippedSrc, strippedDst)), nil
			}
		}
		if field == fieldReferences {
			if arr, ok := value.Get[[]value.Value](srcValue); ok {
				return true, value.NewArray(rewriteReferenceTargets(arr, strippedSrc, strippedDst)), nil
			}
		}
		if field == fieldPayloads {
			if arr, ok := value.Get[[]value.Value](srcValue); ok {
				return true, value.NewArray(rewritePayloadTargets(arr, strippedSrc, strippedDst)), nil
			}
		}
		return true, srcValue, nil
	}
}

func rewriteListOp(lo listop.ListOp[path.Path], srcRoot, dstRoot path.Path) listop.ListOp[path.Path] {
	return lo.ModifyOperations(func(p path.Path) (path.Path, bool) {
		return rewritePath(p, srcRoot, dstRoot), true
	})
}

func rewritePath(p, srcRoot, dstRoot path.Path) path.Path {
	if !p.HasPrefix(srcRoot) {
		return p
	}
	return p.ReplacePrefix(srcRoot, dstRoot, true)
}

// rewritePrimPathString applies replace-prefix to a reference/payload's
// target prim-path string. These are embedded paths inside non-ListOp
// fields and stay plain strings, so the rewrite operates on the string
// form rather than parsing into path.Path.
func rewritePrimPathString(s string, srcRoot, dstRoot path.Path) string {
	if s == "" {
		return s
	}
	prefix := srcRoot.String()
	if s == prefix {
		return dstRoot.String()
	}
	if len(s) > len(prefix) && s[:len(prefix)] == prefix && s[len(prefix)] == '/' {
		return dstRoot.String() + s[len(prefix):]
	}
	return s
}

func rewriteReferenceTargets(arr []value.Value, srcRoot, dstRoot path.Path) []value.Value {
	out := make([]value.Value, len(arr))
	for i, v := range arr {
		r, ok := value.Get[value.ReferenceValue](v)
		if !ok {
			out[i] = v
			continue
		}
		r.PrimPath = rewritePrimPathString(r.PrimPath, srcRoot, dstRoot)
		out[i] = value.NewReference(r)
	}
	return out
}

func rewritePayloadTargets(arr []value.Value, srcRoot, dstRoot path.Path) []value.Value {
	out := make([]value.Value, len(arr))
	for i, v := range arr {
		p, ok := value.Get[value.PayloadValue](v)
		if !ok {
			out[i] = v
			continue
		}
		p.PrimPath = rewritePrimPathString(p.PrimPath, srcRoot, dstRoot)
		out[i] = value.NewPayload(p)
	}
	return out
}

// DefaultShouldCopyChildren copies every src child under its own name and
// removes dst children absent from src.
func DefaultShouldCopyChildren(category ChildrenCategory, srcPath, dstPath path.Path, srcChildren, dstChildren []path.Token) ([]path.Token, []path.Token, bool) {
	return srcChildren, srcChildren, true
}

// categoriesFor reports which children categories apply to a work item
// at path p: a prim-like path (a plain prim, or a selected variant, which
// is itself prim-like) has name-children/properties/variant-sets; the
// sentinel (setName, "") path addressing a variant set itself has
// variants.
func categoriesFor(p path.Path) []ChildrenCategory {
	if p.IsPrimVariantSelectionPath() {
		if _, variantName := p.VariantSelection(); variantName == "" {
			return []ChildrenCategory{CategoryVariants}
		}
	}
	if p.IsPrimPath() || p.IsPrimVariantSelectionPath() {
		return []ChildrenCategory{CategoryNameChildren, CategoryProperties, CategoryVariantSets}
	}
	return nil
}

// listChildren enumerates p's children in category cat. Variant-set and
// variant records all share their owning prim as path parent (a
// variant-selection component chains directly off the prim node), so
// CategoryVariantSets/CategoryVariants are identified by the selection's
// (variantSet, variantSel) tokens rather than by path nesting.
func listChildren(d data.AbstractData, p path.Path, cat ChildrenCategory) []path.Token {
	if p.IsEmpty() {
		return nil
	}
	seen := map[path.Token]bool{}
	var out []path.Token
	add := func(name path.Token) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	switch cat {
	case CategoryVariantSets:
		d.VisitSpecs(func(_ data.AbstractData, q path.Path) bool {
			if d.GetSpecType(q) == data.VariantSet && q.Parent().Equals(p) {
				setName, _ := q.VariantSelection()
				add(setName)
			}
			return true
		})
	case CategoryVariants:
		setName, _ := p.VariantSelection()
		prim := p.Parent()
		d.VisitSpecs(func(_ data.AbstractData, q path.Path) bool {
			if d.GetSpecType(q) != data.Variant || !q.Parent().Equals(prim) {
				return true
			}
			qSet, qVariant := q.VariantSelection()
			if qSet == setName && qVariant != "" {
				add(qVariant)
			}
			return true
		})
	default:
		d.VisitSpecs(func(_ data.AbstractData, q path.Path) bool {
			if !q.Parent().Equals(p) {
				return true
			}
			t := d.GetSpecType(q)
			switch cat {
			case CategoryNameChildren:
				if t == data.Prim {
					add(q.Name())
				}
			case CategoryProperties:
				if t == data.Attribute || t == data.Relationship {
					add(q.Name())
				}
			}
			return true
		})
	}
	return out
}

func childPath(parent path.Path, cat ChildrenCategory, name path.Token) path.Path {
	switch cat {
	case CategoryNameChildren:
		return parent.AppendChild(name)
	case CategoryProperties:
		return parent.AppendProperty(name)
	case CategoryVariantSets:
		return parent.AppendVariantSelection(name, "")
	case CategoryVariants:
		setName, _ := parent.VariantSelection()
		return parent.Parent().AppendVariantSelection(setName, name)
	default:
		return parent
	}
}

func eraseSubtree(l *layer.Layer, p path.Path) {
	if p.IsEmpty() || !l.Data().HasSpec(p) {
		return
	}
	var toErase []path.Path
	l.Data().VisitSpecs(func(_ data.AbstractData, q path.Path) bool {
		if q.Equals(p) || q.HasPrefix(p) {
			toErase = append(toErase, q)
		}
		return true
	})
	for i := len(toErase) - 1; i >= 0; i-- {
		l.EraseSpec(toErase[i])
	}
}
