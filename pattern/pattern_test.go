package pattern

import (
	"testing"

	"github.com/go-quicktest/qt"

	"scenedesc.dev/sdf/path"
)

func isModelPredicate(p path.Path) PredicateResult {
	return VaryingResult(p.Name() == path.Intern("modelA"))
}

// TestIncrementalSearchTracksConstancyAcrossTraversal compiles
// "/World//{isModel}/*.prop" and traverses /World, /World/geom,
// /World/geom/modelA, /World/geom/modelA.prop; Next returns
// varying-false, varying-false, varying-false, varying-true.
func TestIncrementalSearchTracksConstancyAcrossTraversal(t *testing.T) {
	lib := Library{"isModel": isModelPredicate}
	pat, err := Compile("/World//{isModel}/*.prop", lib)
	qt.Assert(t, qt.IsNil(err))

	search := pat.NewSearch()

	world := path.AbsoluteRoot.AppendChild(path.Intern("World"))
	geom := world.AppendChild(path.Intern("geom"))
	modelA := geom.AppendChild(path.Intern("modelA"))
	prop := modelA.AppendProperty(path.Intern("prop"))

	steps := []path.Path{world, geom, modelA, prop}
	want := []PredicateResult{
		VaryingResult(false),
		VaryingResult(false),
		VaryingResult(false),
		VaryingResult(true),
	}
	for i, p := range steps {
		got := search.Next(p)
		qt.Assert(t, qt.Equals(got.Value, want[i].Value))
		qt.Assert(t, qt.Equals(got.Constant, want[i].Constant))
	}
}

func TestMatchLiteralPrefixOnly(t *testing.T) {
	pat, err := Compile("/World/geom", nil)
	qt.Assert(t, qt.IsNil(err))

	world := path.AbsoluteRoot.AppendChild(path.Intern("World"))
	geom := world.AppendChild(path.Intern("geom"))
	other := world.AppendChild(path.Intern("other"))

	qt.Assert(t, qt.IsTrue(pat.Match(geom).Value))
	qt.Assert(t, qt.IsFalse(pat.Match(other).Value))
	qt.Assert(t, qt.Equals(pat.Match(other).Constant, Constant))
}

func TestMatchGlobComponent(t *testing.T) {
	pat, err := Compile("/World/geom_*", nil)
	qt.Assert(t, qt.IsNil(err))

	world := path.AbsoluteRoot.AppendChild(path.Intern("World"))
	match := world.AppendChild(path.Intern("geom_A"))
	noMatch := world.AppendChild(path.Intern("mesh_A"))

	qt.Assert(t, qt.IsTrue(pat.Match(match).Value))
	qt.Assert(t, qt.IsFalse(pat.Match(noMatch).Value))
}

func TestMatchTrailingStretchIsConstantTrue(t *testing.T) {
	pat, err := Compile("/World//", nil)
	qt.Assert(t, qt.IsNil(err))

	world := path.AbsoluteRoot.AppendChild(path.Intern("World"))
	deep := world.AppendChild(path.Intern("a")).AppendChild(path.Intern("b"))

	r := pat.Match(deep)
	qt.Assert(t, qt.IsTrue(r.Value))
	qt.Assert(t, qt.Equals(r.Constant, Constant))
}

func TestCompileExpressionAndOr(t *testing.T) {
	lib := Library{"isModel": isModelPredicate}
	expr, err := CompileExpression("/World//{isModel} || /World/geom", lib)
	qt.Assert(t, qt.IsNil(err))

	world := path.AbsoluteRoot.AppendChild(path.Intern("World"))
	geom := world.AppendChild(path.Intern("geom"))

	qt.Assert(t, qt.IsTrue(expr.Match(geom).Value))
}

func TestCompileExpressionNot(t *testing.T) {
	pat, err := CompileExpression("!/World/geom", nil)
	qt.Assert(t, qt.IsNil(err))

	world := path.AbsoluteRoot.AppendChild(path.Intern("World"))
	geom := world.AppendChild(path.Intern("geom"))
	other := world.AppendChild(path.Intern("other"))

	qt.Assert(t, qt.IsFalse(pat.Match(geom).Value))
	qt.Assert(t, qt.IsTrue(pat.Match(other).Value))
}
