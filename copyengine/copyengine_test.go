package copyengine

import (
	"testing"

	"github.com/go-quicktest/qt"

	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/layer"
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

func newTestLayer(t *testing.T) *layer.Layer {
	t.Helper()
	l, err := layer.CreateNew("copyengine-test:"+layer.NewAnonymousIdentifier(t.Name()), nil)
	qt.Assert(t, qt.IsNil(err))
	return l
}

func mustPrim(t *testing.T, l *layer.Layer, p path.Path) {
	t.Helper()
	qt.Assert(t, qt.IsTrue(l.CreateSpec(p, data.Prim)))
}

func TestCopySpecCopiesScalarFields(t *testing.T) {
	l1 := newTestLayer(t)
	src := path.AbsoluteRoot.AppendChild(path.Intern("A"))
	mustPrim(t, l1, src)
	qt.Assert(t, qt.IsTrue(l1.SetField(src, fieldTypeName, value.NewToken("Xform"))))

	l2 := newTestLayer(t)
	dst := path.AbsoluteRoot.AppendChild(path.Intern("Dest"))

	qt.Assert(t, qt.IsTrue(CopySpec(l1, src, l2, dst, nil, nil)))
	qt.Assert(t, qt.IsTrue(l2.Data().HasSpec(dst)))
	v, ok := l2.Data().Get(dst, fieldTypeName)
	qt.Assert(t, qt.IsTrue(ok))
	tn, _ := value.Get[string](v)
	qt.Assert(t, qt.Equals(tn, "Xform"))
}

// TestCopySpecRewritesReferencesInsideSubtree checks that a reference
// whose target lies inside the copied subtree rewrites to the
// destination root, while one whose target lies outside is unchanged.
func TestCopySpecRewritesReferencesInsideSubtree(t *testing.T) {
	l1 := newTestLayer(t)
	rootA := path.AbsoluteRoot.AppendChild(path.Intern("A"))
	mustPrim(t, l1, rootA)
	b := rootA.AppendChild(path.Intern("B"))
	mustPrim(t, l1, b)

	refInside := value.NewReference(value.ReferenceValue{AssetPath: "other.usd", PrimPath: "/A/X"})
	refOutside := value.NewReference(value.ReferenceValue{AssetPath: "other.usd", PrimPath: "/Unrelated/X"})
	qt.Assert(t, qt.IsTrue(l1.SetField(b, fieldReferences, value.NewArray([]value.Value{refInside, refOutside}))))

	l2 := newTestLayer(t)
	dest := path.AbsoluteRoot.AppendChild(path.Intern("Dest"))

	qt.Assert(t, qt.IsTrue(CopySpec(l1, rootA, l2, dest, nil, nil)))

	dstB := dest.AppendChild(path.Intern("B"))
	qt.Assert(t, qt.IsTrue(l2.Data().HasSpec(dstB)))
	v, ok := l2.Data().Get(dstB, fieldReferences)
	qt.Assert(t, qt.IsTrue(ok))
	arr, _ := value.Get[[]value.Value](v)
	qt.Assert(t, qt.Equals(len(arr), 2))

	r0, _ := value.Get[value.ReferenceValue](arr[0])
	qt.Assert(t, qt.Equals(r0.PrimPath, "/Dest/X"))
	r1, _ := value.Get[value.ReferenceValue](arr[1])
	qt.Assert(t, qt.Equals(r1.PrimPath, "/Unrelated/X"))
}

func TestCopySpecRecursesIntoChildren(t *testing.T) {
	l1 := newTestLayer(t)
	rootA := path.AbsoluteRoot.AppendChild(path.Intern("A"))
	mustPrim(t, l1, rootA)
	child := rootA.AppendChild(path.Intern("Child"))
	mustPrim(t, l1, child)
	attr := rootA.AppendProperty(path.Intern("size"))
	qt.Assert(t, qt.IsTrue(l1.CreateSpec(attr, data.Attribute)))

	l2 := newTestLayer(t)
	dest := path.AbsoluteRoot.AppendChild(path.Intern("Dest"))

	qt.Assert(t, qt.IsTrue(CopySpec(l1, rootA, l2, dest, nil, nil)))

	qt.Assert(t, qt.IsTrue(l2.Data().HasSpec(dest.AppendChild(path.Intern("Child")))))
	qt.Assert(t, qt.IsTrue(l2.Data().HasSpec(dest.AppendProperty(path.Intern("size")))))
}

func TestCopySpecRemovesDstChildrenNotInSrc(t *testing.T) {
	l1 := newTestLayer(t)
	rootA := path.AbsoluteRoot.AppendChild(path.Intern("A"))
	mustPrim(t, l1, rootA)
	mustPrim(t, l1, rootA.AppendChild(path.Intern("Keep")))

	l2 := newTestLayer(t)
	dest := path.AbsoluteRoot.AppendChild(path.Intern("Dest"))
	mustPrim(t, l2, dest)
	mustPrim(t, l2, dest.AppendChild(path.Intern("Stale")))

	qt.Assert(t, qt.IsTrue(CopySpec(l1, rootA, l2, dest, nil, nil)))

	qt.Assert(t, qt.IsTrue(l2.Data().HasSpec(dest.AppendChild(path.Intern("Keep")))))
	qt.Assert(t, qt.IsFalse(l2.Data().HasSpec(dest.AppendChild(path.Intern("Stale")))))
}

func TestCopySpecPrimToVariantAllowance(t *testing.T) {
	l1 := newTestLayer(t)
	src := path.AbsoluteRoot.AppendChild(path.Intern("A"))
	mustPrim(t, l1, src)
	qt.Assert(t, qt.IsTrue(l1.SetField(src, fieldSpecifier, value.NewToken("def"))))
	qt.Assert(t, qt.IsTrue(l1.SetField(src, fieldTypeName, value.NewToken("Xform"))))

	l2 := newTestLayer(t)
	prim := path.AbsoluteRoot.AppendChild(path.Intern("Prim"))
	mustPrim(t, l2, prim)
	variantPath := prim.AppendVariantSelection(path.Intern("look"), path.Intern("red"))

	qt.Assert(t, qt.IsTrue(CopySpec(l1, src, l2, variantPath, nil, nil)))
	qt.Assert(t, qt.Equals(l2.Data().GetSpecType(variantPath), data.Variant))
	v, ok := l2.Data().Get(variantPath, fieldSpecifier)
	qt.Assert(t, qt.IsTrue(ok))
	s, _ := value.Get[string](v)
	qt.Assert(t, qt.Equals(s, "over"))
}

func TestCopySpecVariantToPrimAllowance(t *testing.T) {
	l1 := newTestLayer(t)
	prim := path.AbsoluteRoot.AppendChild(path.Intern("A"))
	mustPrim(t, l1, prim)
	qt.Assert(t, qt.IsTrue(l1.SetField(prim, fieldSpecifier, value.NewToken("def"))))
	qt.Assert(t, qt.IsTrue(l1.SetField(prim, fieldTypeName, value.NewToken("Xform"))))
	variantPath := prim.AppendVariantSelection(path.Intern("look"), path.Intern("red"))
	qt.Assert(t, qt.IsTrue(l1.CreateSpec(variantPath, data.Variant)))

	l2 := newTestLayer(t)
	dst := path.AbsoluteRoot.AppendChild(path.Intern("Dest"))

	qt.Assert(t, qt.IsTrue(CopySpec(l1, variantPath, l2, dst, nil, nil)))
	qt.Assert(t, qt.Equals(l2.Data().GetSpecType(dst), data.Prim))
	v, ok := l2.Data().Get(dst, fieldSpecifier)
	qt.Assert(t, qt.IsTrue(ok))
	s, _ := value.Get[string](v)
	qt.Assert(t, qt.Equals(s, "def"))
}
