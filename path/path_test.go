package path

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func prim(names ...string) Path {
	p := AbsoluteRoot
	for _, n := range names {
		p = p.AppendChild(Intern(n))
	}
	return p
}

func TestAppendChildParentRoundTrip(t *testing.T) {
	p := prim("World", "Geom")
	qt.Assert(t, qt.Equals(p.Parent().AppendChild(p.Name()), p))
}

func TestAppendPropertyRoundTrip(t *testing.T) {
	p := prim("World").AppendProperty(Intern("size"))
	qt.Assert(t, qt.IsTrue(p.IsPrimPropertyPath()))
	qt.Assert(t, qt.Equals(p.Name(), Token("size")))
}

func TestMakeAbsoluteRelativeRoundTrip(t *testing.T) {
	anchor := prim("World", "Geom")
	rel := Empty.AppendChild(Intern("Child")).AppendProperty(Intern("attr"))
	abs := rel.MakeAbsolutePath(anchor)
	qt.Assert(t, qt.Equals(abs.String(), "/World/Geom/Child.attr"))
	qt.Assert(t, qt.Equals(abs.MakeRelativePath(anchor), rel))
}

func TestReplacePrefixIdentity(t *testing.T) {
	p := prim("A", "B", "C")
	qt.Assert(t, qt.Equals(p.ReplacePrefix(p, p, false), p))
}

func TestReplacePrefixSubtree(t *testing.T) {
	src := prim("A", "X")
	dst := prim("Dest")
	p := prim("A", "X", "Y")
	got := p.ReplacePrefix(src, dst, false)
	qt.Assert(t, qt.Equals(got.String(), "/Dest/Y"))
}

func TestHasPrefix(t *testing.T) {
	root := prim("A")
	child := prim("A", "B")
	qt.Assert(t, qt.IsTrue(child.HasPrefix(root)))
	qt.Assert(t, qt.IsFalse(root.HasPrefix(child)))
	qt.Assert(t, qt.IsTrue(root.HasPrefix(root)))
}

func TestFindPrefixedRangeLaw(t *testing.T) {
	paths := []Path{
		prim("A"),
		prim("A", "B"),
		prim("A", "B", "C"),
		prim("A", "D"),
		prim("Z"),
	}
	q := prim("A", "B")
	var got []Path
	for _, p := range paths {
		if p.Equals(q) || p.HasPrefix(q) {
			got = append(got, p)
		}
	}
	qt.Assert(t, qt.DeepEquals(got, []Path{prim("A", "B"), prim("A", "B", "C")}))
}

func TestCompareOrdersAncestorBeforeDescendant(t *testing.T) {
	a := prim("A")
	b := prim("A", "B")
	qt.Assert(t, qt.IsTrue(Compare(a, b) < 0))
	qt.Assert(t, qt.IsTrue(Compare(Empty, a) < 0))
	qt.Assert(t, qt.Equals(Compare(a, a), 0))
}

func TestAncestorsRange(t *testing.T) {
	p := prim("A", "B", "C")
	var got []string
	r := NewAncestorsRange(p)
	for {
		cur, ok := r.Next()
		if !ok {
			break
		}
		got = append(got, cur.String())
	}
	qt.Assert(t, qt.DeepEquals(got, []string{"/A/B/C", "/A/B", "/A", "/"}))
}

func TestVariantSelectionAndStrip(t *testing.T) {
	p := prim("A").AppendVariantSelection(Intern("look"), Intern("red"))
	qt.Assert(t, qt.IsTrue(p.IsPrimVariantSelectionPath()))
	set, variant := p.VariantSelection()
	qt.Assert(t, qt.Equals(set, Token("look")))
	qt.Assert(t, qt.Equals(variant, Token("red")))
	stripped := p.AppendChild(Intern("Child")).StripAllVariantSelections()
	qt.Assert(t, qt.Equals(stripped.String(), "/A/Child"))
}

func TestTargetPathAndFromString(t *testing.T) {
	p := FromString("/A.rel[/B]")
	qt.Assert(t, qt.IsTrue(p.IsTargetPath()))
	qt.Assert(t, qt.Equals(p.TargetPath().String(), "/B"))
	qt.Assert(t, qt.Equals(p.String(), "/A.rel[/B]"))
}

func TestFromStringVariant(t *testing.T) {
	p := FromString("/A{set=var}/Child.attr")
	qt.Assert(t, qt.Equals(p.String(), "/A{set=var}/Child.attr"))
}

func TestFromStringMalformed(t *testing.T) {
	p := FromString("/A[unterminated")
	qt.Assert(t, qt.IsTrue(p.IsEmpty()))
}

func TestGetPrefixes(t *testing.T) {
	p := prim("A", "B", "C")
	prefixes := p.GetPrefixes(2)
	qt.Assert(t, qt.DeepEquals(prefixes, []Path{prim("A"), prim("A", "B")}))
}
