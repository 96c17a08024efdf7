// Package path implements the canonical, interned, hierarchical identifier
// for a node in a scene: an immutable cons-list of components, shared-tail
// interned so that equal paths are identical by address, with a defined
// total order and a family of arithmetic and prefix operations.
package path

import (
	"strings"

	"scenedesc.dev/sdf/diag"
)

// Path is an immutable, interned identifier for a node in the scene
// hierarchy. The zero value is the empty path, which sorts before every
// other path.
type Path struct {
	n *node
}

// Empty is the zero-value Path, reported here for readability at call
// sites instead of a bare Path{}.
var Empty = Path{}

// AbsoluteRoot is the path "/".
var AbsoluteRoot = Path{n: rootNode}

// IsEmpty reports whether p is the zero path.
func (p Path) IsEmpty() bool { return p.n == nil }

// Equals reports whether p and q are the same interned path.
func (p Path) Equals(q Path) bool { return p.n == q.n }

func firstNode(n *node) *node {
	for n != nil && n.parent != nil {
		n = n.parent
	}
	return n
}

// IsAbsolute reports whether p is rooted at "/".
func (p Path) IsAbsolute() bool {
	if p.n == nil {
		return false
	}
	return firstNode(p.n).comp.kind == kindRoot
}

// IsAbsoluteRootPath reports whether p is exactly "/".
func (p Path) IsAbsoluteRootPath() bool { return p.n == rootNode }

// IsPrimPath reports whether p names a prim: it is absolute-root or its
// final component is a prim name (no trailing property/target/variant
// suffix).
func (p Path) IsPrimPath() bool {
	if p.n == nil {
		return false
	}
	return p.n.comp.kind == kindRoot || p.n.comp.kind == kindPrimName
}

// IsRootPrimPath reports whether p is an immediate child of the absolute
// root, e.g. "/World".
func (p Path) IsRootPrimPath() bool {
	return p.n != nil && p.n.comp.kind == kindPrimName && p.n.parent == rootNode
}

// IsPropertyPath reports whether p's final component is any property-like
// component: a plain property, a relational attribute, a mapper arg, or the
// expression marker.
func (p Path) IsPropertyPath() bool {
	if p.n == nil {
		return false
	}
	switch p.n.comp.kind {
	case kindPropertyName, kindRelationalAttribute, kindMapperArg, kindExpression:
		return true
	}
	return false
}

// IsPrimPropertyPath reports whether p is a plain, unnamespaced property
// directly on a prim (not a relational attribute, mapper arg, or nested
// target/mapper suffix).
func (p Path) IsPrimPropertyPath() bool {
	return p.n != nil && p.n.comp.kind == kindPropertyName && isPrimlike(p.n.parent)
}

// IsNamespacedPropertyPath reports whether p is a property path whose name
// contains a namespace separator (":").
func (p Path) IsNamespacedPropertyPath() bool {
	return p.n != nil && p.n.comp.kind == kindPropertyName && strings.Contains(string(p.n.comp.name), ":")
}

// IsPrimVariantSelectionPath reports whether p's final component selects a
// variant, e.g. "/Prim{set=variant}".
func (p Path) IsPrimVariantSelectionPath() bool {
	return p.n != nil && p.n.comp.kind == kindPrimVariantSelection
}

// IsTargetPath reports whether p's final component is a relationship or
// connection target, e.g. "/Prim.rel[/Other]".
func (p Path) IsTargetPath() bool {
	return p.n != nil && p.n.comp.kind == kindTarget
}

// IsMapperPath reports whether p's final component selects a mapper
// handler, e.g. "/Prim.attr.mapper[/Other]".
func (p Path) IsMapperPath() bool {
	return p.n != nil && p.n.comp.kind == kindMapper
}

// IsMapperArgPath reports whether p's final component names a mapper
// argument.
func (p Path) IsMapperArgPath() bool {
	return p.n != nil && p.n.comp.kind == kindMapperArg
}

// IsExpressionPath reports whether p's final component is the ".expression"
// marker.
func (p Path) IsExpressionPath() bool {
	return p.n != nil && p.n.comp.kind == kindExpression
}

// IsRelationalAttributePath reports whether p's final component is an
// attribute namespaced under a relationship target.
func (p Path) IsRelationalAttributePath() bool {
	return p.n != nil && p.n.comp.kind == kindRelationalAttribute
}

func isPrimlike(n *node) bool {
	return n == nil || n.comp.kind == kindRoot || n.comp.kind == kindPrimName || n.comp.kind == kindPrimVariantSelection
}

// --- accessors --------------------------------------------------------

// Name returns the last component's name as an interned Token, or "" if the
// final component carries no name (root, target, mapper, variant
// selection, expression).
func (p Path) Name() Token {
	if p.n == nil {
		return ""
	}
	switch p.n.comp.kind {
	case kindPrimName, kindPropertyName, kindRelationalAttribute, kindMapperArg:
		return p.n.comp.name
	}
	return ""
}

// TargetPath returns the path embedded in a target or mapper component, or
// Empty if p is not a target/mapper path.
func (p Path) TargetPath() Path {
	if p.n == nil {
		return Empty
	}
	switch p.n.comp.kind {
	case kindTarget, kindMapper:
		return Path{n: p.n.comp.target}
	}
	return Empty
}

// VariantSelection returns the (setName, variantName) pair of a variant
// selection path, or ("", "") if p is not one.
func (p Path) VariantSelection() (setName, variantName Token) {
	if p.n == nil || p.n.comp.kind != kindPrimVariantSelection {
		return "", ""
	}
	return p.n.comp.variantSet, p.n.comp.variantSel
}

// ElementString returns the shortest suffix that, appended to p.Parent()'s
// string, reconstructs p's string form.
func (p Path) ElementString() string {
	if p.n == nil {
		return ""
	}
	if p.n == rootNode {
		return "/"
	}
	sep := separatorBefore(p.n)
	if p.n.parent == nil || (sep == "/" && p.n.parent == rootNode) {
		sep = ""
	}
	return sep + nodeText(p.n)
}

// --- string form --------------------------------------------------------

func nodeText(n *node) string {
	switch n.comp.kind {
	case kindPrimName, kindPropertyName, kindRelationalAttribute, kindMapperArg:
		return string(n.comp.name)
	case kindPrimVariantSelection:
		return "{" + string(n.comp.variantSet) + "=" + string(n.comp.variantSel) + "}"
	case kindTarget:
		return "[" + pathString(n.comp.target) + "]"
	case kindMapper:
		return "mapper[" + pathString(n.comp.target) + "]"
	case kindExpression:
		return "expression"
	}
	return ""
}

func separatorBefore(n *node) string {
	switch n.comp.kind {
	case kindPrimName:
		return "/"
	case kindPropertyName, kindRelationalAttribute, kindMapperArg, kindMapper, kindExpression:
		return "."
	}
	return ""
}

func pathString(n *node) string {
	if n == nil {
		return ""
	}
	if n == rootNode {
		return "/"
	}
	parent := pathString(n.parent)
	sep := separatorBefore(n)
	if n.parent == nil {
		sep = ""
	} else if sep == "/" && strings.HasSuffix(parent, "/") {
		sep = ""
	}
	return parent + sep + nodeText(n)
}

// String reports the canonical textual form of p.
func (p Path) String() string {
	return pathString(p.n)
}

// --- arithmetic ---------------------------------------------------------

func reportCoding(format string, args ...interface{}) Path {
	diag.Report(diag.CodingError, format, args...)
	return Empty
}

// Parent returns p's immediate parent, or Empty if p is already the
// absolute root or the empty path.
func (p Path) Parent() Path {
	if p.n == nil {
		return Empty
	}
	return Path{n: p.n.parent}
}

// PrimPath strips any trailing property/target/mapper/variant-selection
// suffix, returning the owning prim's path.
func (p Path) PrimPath() Path {
	n := p.n
	for n != nil && n.comp.kind != kindRoot && n.comp.kind != kindPrimName {
		n = n.parent
	}
	return Path{n: n}
}

// PrimOrPrimVariantSelectionPath is like PrimPath but keeps a trailing
// variant selection.
func (p Path) PrimOrPrimVariantSelectionPath() Path {
	n := p.n
	for n != nil && n.comp.kind != kindRoot && n.comp.kind != kindPrimName && n.comp.kind != kindPrimVariantSelection {
		n = n.parent
	}
	return Path{n: n}
}

// AppendChild returns p with a child prim named name appended. p must be
// the absolute root, a prim path, or a prim-variant-selection path.
func (p Path) AppendChild(name Token) Path {
	if !isPrimlike(p.n) {
		return reportCoding("cannot append child %q to non-prim path %v", name, p)
	}
	return Path{n: intern(p.n, component{kind: kindPrimName, name: name})}
}

// AppendProperty returns p with a property named name appended. p must be
// a prim path or a prim-variant-selection path.
func (p Path) AppendProperty(name Token) Path {
	if !isPrimlike(p.n) || p.n == nil {
		return reportCoding("cannot append property %q to non-prim path %v", name, p)
	}
	return Path{n: intern(p.n, component{kind: kindPropertyName, name: name})}
}

// AppendVariantSelection returns p with a variant selection appended. p
// must be a prim path or a prim-variant-selection path.
func (p Path) AppendVariantSelection(setName, variantName Token) Path {
	if !isPrimlike(p.n) || p.n == nil {
		return reportCoding("cannot append variant selection to non-prim path %v", p)
	}
	return Path{n: intern(p.n, component{kind: kindPrimVariantSelection, variantSet: setName, variantSel: variantName})}
}

// AppendTarget returns p with a relationship/connection target appended. p
// must be a property path.
func (p Path) AppendTarget(target Path) Path {
	if p.n == nil || !p.IsPropertyPath() {
		return reportCoding("cannot append target to non-property path %v", p)
	}
	return Path{n: intern(p.n, component{kind: kindTarget, target: target.n})}
}

// AppendRelationalAttribute returns p with a relational attribute appended.
// p must be a target path.
func (p Path) AppendRelationalAttribute(name Token) Path {
	if p.n == nil || p.n.comp.kind != kindTarget {
		return reportCoding("cannot append relational attribute %q to non-target path %v", name, p)
	}
	return Path{n: intern(p.n, component{kind: kindRelationalAttribute, name: name})}
}

// AppendMapper returns p with a mapper handler appended. p must be a
// property path.
func (p Path) AppendMapper(target Path) Path {
	if p.n == nil || !p.IsPropertyPath() {
		return reportCoding("cannot append mapper to non-property path %v", p)
	}
	return Path{n: intern(p.n, component{kind: kindMapper, target: target.n})}
}

// AppendMapperArg returns p with a mapper argument appended. p must be a
// mapper path.
func (p Path) AppendMapperArg(name Token) Path {
	if p.n == nil || p.n.comp.kind != kindMapper {
		return reportCoding("cannot append mapper arg %q to non-mapper path %v", name, p)
	}
	return Path{n: intern(p.n, component{kind: kindMapperArg, name: name})}
}

// AppendExpression returns p with the ".expression" marker appended. p
// must be a property path.
func (p Path) AppendExpression() Path {
	if p.n == nil || !p.IsPropertyPath() {
		return reportCoding("cannot append expression marker to non-property path %v", p)
	}
	return Path{n: intern(p.n, component{kind: kindExpression})}
}

// AppendElementString parses a single path element (e.g. ".size",
// "{set=var}", "[/Other]") and appends it to p.
func (p Path) AppendElementString(element string) Path {
	rel, err := parseRelativeFrom(p, element)
	if err != nil {
		diag.Report(diag.ParseError, "invalid path element %q: %v", element, err)
		return Empty
	}
	return rel
}

// AppendPath appends a relative path's components on top of p.
func (p Path) AppendPath(relative Path) Path {
	if relative.n == nil {
		return p
	}
	if relative.IsAbsolute() {
		return reportCoding("cannot append absolute path %v to %v", relative, p)
	}
	var comps []component
	for n := relative.n; n != nil; n = n.parent {
		comps = append(comps, n.comp)
	}
	result := p.n
	for i := len(comps) - 1; i >= 0; i-- {
		result = intern(result, comps[i])
	}
	return Path{n: result}
}

// --- prefix / relative ops ----------------------------------------------

// HasPrefix reports whether q is an ancestor of (or equal to) p. The empty
// path has itself, and only itself, as a prefix.
func (p Path) HasPrefix(q Path) bool {
	if q.n == nil {
		return p.n == nil
	}
	for n := p.n; n != nil; n = n.parent {
		if n == q.n {
			return true
		}
	}
	return false
}

// ReplacePrefix returns p with the leading old replaced by newPrefix. If
// old does not prefix p, p is returned unchanged. When fixTargetPaths is
// true, any path embedded in a target/mapper component encountered along
// the way is itself rewritten by the same replacement.
func (p Path) ReplacePrefix(old, newPrefix Path, fixTargetPaths bool) Path {
	if !p.HasPrefix(old) {
		return p
	}
	var comps []component
	for n := p.n; n != old.n; n = n.parent {
		comps = append(comps, n.comp)
	}
	result := newPrefix.n
	for i := len(comps) - 1; i >= 0; i-- {
		c := comps[i]
		if fixTargetPaths && (c.kind == kindTarget || c.kind == kindMapper) {
			inner := Path{n: c.target}.ReplacePrefix(old, newPrefix, fixTargetPaths)
			c.target = inner.n
		}
		result = intern(result, c)
	}
	return Path{n: result}
}

// GetCommonPrefix returns the longest path that is an ancestor of both p
// and q.
func (p Path) GetCommonPrefix(q Path) Path {
	pa, qa := chainFromRoot(p.n), chainFromRoot(q.n)
	n := len(pa)
	if len(qa) < n {
		n = len(qa)
	}
	var last *node
	for i := 0; i < n; i++ {
		if pa[i] != qa[i] {
			break
		}
		last = pa[i]
	}
	return Path{n: last}
}

func chainFromRoot(n *node) []*node {
	var rev []*node
	for c := n; c != nil; c = c.parent {
		rev = append(rev, c)
	}
	out := make([]*node, len(rev))
	for i, c := range rev {
		out[len(rev)-1-i] = c
	}
	return out
}

// RemoveCommonSuffix strips the longest common suffix shared by p and q
// from both, returning the two remainders. If stopAtRootPrim is true, the
// strip never proceeds above either path's root prim.
func (p Path) RemoveCommonSuffix(q Path, stopAtRootPrim bool) (Path, Path) {
	a, b := p.n, q.n
	for a != nil && b != nil && a != rootNode && b != rootNode {
		if stopAtRootPrim && (a.parent == rootNode || b.parent == rootNode) {
			break
		}
		if !sameComponent(a.comp, b.comp) {
			break
		}
		a, b = a.parent, b.parent
	}
	return Path{n: a}, Path{n: b}
}

func sameComponent(x, y component) bool {
	return compareComponent(x, y) == 0
}

// ReplaceName returns p with its final name-bearing component's name
// changed to newName.
func (p Path) ReplaceName(newName Token) Path {
	if p.n == nil {
		return reportCoding("cannot replace name on empty path")
	}
	switch p.n.comp.kind {
	case kindPrimName, kindPropertyName, kindRelationalAttribute, kindMapperArg:
		c := p.n.comp
		c.name = newName
		return Path{n: intern(p.n.parent, c)}
	}
	return reportCoding("path %v has no name to replace", p)
}

// ReplaceTargetPath returns p with its final target/mapper component's
// embedded path changed to newTarget.
func (p Path) ReplaceTargetPath(newTarget Path) Path {
	if p.n == nil {
		return reportCoding("cannot replace target on empty path")
	}
	switch p.n.comp.kind {
	case kindTarget, kindMapper:
		c := p.n.comp
		c.target = newTarget.n
		return Path{n: intern(p.n.parent, c)}
	}
	return reportCoding("path %v is not a target/mapper path", p)
}

// MakeAbsolutePath anchors a relative p at anchor, which must be absolute.
// If p is already absolute it is returned unchanged.
func (p Path) MakeAbsolutePath(anchor Path) Path {
	if p.IsAbsolute() {
		return p
	}
	if !anchor.IsAbsolute() {
		return reportCoding("anchor %v is not absolute", anchor)
	}
	return anchor.AppendPath(p)
}

// MakeRelativePath returns p expressed relative to anchor, when anchor
// prefixes p. If it does not, p is returned unchanged.
func (p Path) MakeRelativePath(anchor Path) Path {
	if !p.HasPrefix(anchor) {
		return p
	}
	var comps []component
	for n := p.n; n != anchor.n; n = n.parent {
		comps = append(comps, n.comp)
	}
	var result *node
	for i := len(comps) - 1; i >= 0; i-- {
		result = intern(result, comps[i])
	}
	return Path{n: result}
}

// StripAllVariantSelections removes every variant-selection component from
// p, producing the equivalent path over plain prim names only.
func (p Path) StripAllVariantSelections() Path {
	var comps []component
	for n := p.n; n != nil; n = n.parent {
		if n.comp.kind == kindPrimVariantSelection {
			continue
		}
		comps = append(comps, n.comp)
	}
	var result *node
	for i := len(comps) - 1; i >= 0; i-- {
		result = intern(result, comps[i])
	}
	return Path{n: result}
}

// --- enumeration ---------------------------------------------------------

// GetPrefixes returns every prefix of p with at most n path elements, in
// root-to-leaf order. The absolute root is not counted as an element and
// is not returned. n <= 0 means "no limit".
func (p Path) GetPrefixes(n int) []Path {
	chain := chainFromRoot(p.n)
	if len(chain) > 0 && chain[0] == rootNode {
		chain = chain[1:]
	}
	if n > 0 && n < len(chain) {
		chain = chain[:n]
	}
	out := make([]Path, len(chain))
	for i, c := range chain {
		out[i] = Path{n: c}
	}
	return out
}

// AncestorsRange yields p, Parent(p), Parent(Parent(p)), ... down to (but
// not past) the empty path.
type AncestorsRange struct {
	cur *node
	started bool
}

// NewAncestorsRange builds an iterator over p and its ancestors.
func NewAncestorsRange(p Path) *AncestorsRange {
	return &AncestorsRange{cur: p.n}
}

// Next advances the iterator, returning false once it has yielded the
// empty path's predecessor (i.e. iteration is exhausted).
func (r *AncestorsRange) Next() (Path, bool) {
	if !r.started {
		r.started = true
		if r.cur == nil {
			return Empty, false
		}
		return Path{n: r.cur}, true
	}
	if r.cur == nil {
		return Empty, false
	}
	r.cur = r.cur.parent
	if r.cur == nil {
		return Empty, false
	}
	return Path{n: r.cur}, true
}
