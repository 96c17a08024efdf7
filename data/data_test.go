package data

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

func TestCreateSpecAndFields(t *testing.T) {
	d := NewInMemoryData()
	p := path.FromString("/Hello")
	qt.Assert(t, qt.IsTrue(d.CreateSpec(p, Prim)))
	qt.Assert(t, qt.IsTrue(d.HasSpec(p)))
	qt.Assert(t, qt.Equals(d.GetSpecType(p), Prim))

	field := path.Intern("size")
	qt.Assert(t, qt.IsTrue(d.Set(p, field, value.NewFloat(1.0))))
	v, ok := d.Get(p, field)
	qt.Assert(t, qt.IsTrue(ok))
	f, _ := value.Get[float32](v)
	qt.Assert(t, qt.Equals(f, float32(1.0)))

	qt.Assert(t, qt.DeepEquals(d.List(p), []path.Token{field}))

	qt.Assert(t, qt.IsTrue(d.Erase(p, field)))
	qt.Assert(t, qt.IsFalse(d.Has(p, field)))
}

func TestSetEmptyValueErasesField(t *testing.T) {
	d := NewInMemoryData()
	p := path.FromString("/A")
	d.CreateSpec(p, Prim)
	field := path.Intern("f")
	d.Set(p, field, value.NewInt(1))
	qt.Assert(t, qt.IsTrue(d.Has(p, field)))
	d.Set(p, field, value.Empty)
	qt.Assert(t, qt.IsFalse(d.Has(p, field)))
}

func TestMoveSpecFailsIfDestinationOccupied(t *testing.T) {
	d := NewInMemoryData()
	a := path.FromString("/A")
	b := path.FromString("/B")
	d.CreateSpec(a, Prim)
	d.CreateSpec(b, Prim)
	qt.Assert(t, qt.IsFalse(d.MoveSpec(a, b)))
	qt.Assert(t, qt.IsTrue(d.HasSpec(a)))
}

func TestMoveSpecRelocates(t *testing.T) {
	d := NewInMemoryData()
	a := path.FromString("/A")
	c := path.FromString("/C")
	d.CreateSpec(a, Prim)
	field := path.Intern("f")
	d.Set(a, field, value.NewInt(7))

	qt.Assert(t, qt.IsTrue(d.MoveSpec(a, c)))
	qt.Assert(t, qt.IsFalse(d.HasSpec(a)))
	qt.Assert(t, qt.IsTrue(d.HasSpec(c)))
	v, ok := d.Get(c, field)
	qt.Assert(t, qt.IsTrue(ok))
	n, _ := value.Get[int32](v)
	qt.Assert(t, qt.Equals(n, int32(7)))
}

// TestTimeSampleBracketing exercises bracketing at, between, and outside
// the recorded sample times.
func TestTimeSampleBracketing(t *testing.T) {
	d := NewInMemoryData()
	p := path.FromString("/A")
	d.CreateSpec(p, Attribute)
	d.SetTimeSample(p, 1.0, value.NewDouble(1))
	d.SetTimeSample(p, 2.0, value.NewDouble(2))

	qt.Assert(t, qt.DeepEquals(d.ListTimeSamplesForPath(p), []float64{1.0, 2.0}))

	lo, hi, ok := d.GetBracketingTimeSamplesForPath(p, 1.5)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lo, 1.0))
	qt.Assert(t, qt.Equals(hi, 2.0))

	lo, hi, ok = d.GetBracketingTimeSamplesForPath(p, 0.5)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lo, 1.0))
	qt.Assert(t, qt.Equals(hi, 1.0))

	lo, hi, ok = d.GetBracketingTimeSamplesForPath(p, 2.5)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(lo, 2.0))
	qt.Assert(t, qt.Equals(hi, 2.0))
}

func TestPreviousTimeSample(t *testing.T) {
	d := NewInMemoryData()
	p := path.FromString("/A")
	d.CreateSpec(p, Attribute)
	d.SetTimeSample(p, 1.0, value.NewDouble(1))
	d.SetTimeSample(p, 2.0, value.NewDouble(2))

	_, ok := d.GetPreviousTimeSampleForPath(p, 1.0)
	qt.Assert(t, qt.IsFalse(ok))

	prev, ok := d.GetPreviousTimeSampleForPath(p, 1.5)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(prev, 1.0))

	prev, ok = d.GetPreviousTimeSampleForPath(p, 2.0)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(prev, 1.0))

	prev, ok = d.GetPreviousTimeSampleForPath(p, 10.0)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(prev, 2.0))
}

// TestPreviousTimeSampleEdgeNearSample checks that a query time just
// below an existing sample still resolves to the previous sample, not
// the one it's nearly touching.
func TestPreviousTimeSampleEdgeNearSample(t *testing.T) {
	d := NewInMemoryData()
	p := path.FromString("/A")
	d.CreateSpec(p, Attribute)
	d.SetTimeSample(p, 1.0, value.NewDouble(1))
	d.SetTimeSample(p, 2.0, value.NewDouble(2))
	d.SetTimeSample(p, 3.0, value.NewDouble(3))

	_, ok := d.GetPreviousTimeSampleForPath(p, 1.0)
	qt.Assert(t, qt.IsFalse(ok))

	prev, ok := d.GetPreviousTimeSampleForPath(p, 2.0)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(prev, 1.0))

	// nexttoward(2.0, -inf): a value just under 2.0, still greater than 1.0.
	justUnder2 := 2.0 - 1e-9
	prev, ok = d.GetPreviousTimeSampleForPath(p, justUnder2)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(prev, 1.0))
}

func TestDictionaryKeyHelpers(t *testing.T) {
	d := NewInMemoryData()
	p := path.FromString("/A")
	d.CreateSpec(p, Prim)
	field := path.Intern("customData")

	d.SetDictValueByKey(p, field, "a.b.c", value.NewInt(42))
	qt.Assert(t, qt.IsTrue(d.HasDictKey(p, field, "a.b.c")))
	v, ok := d.GetDictValueByKey(p, field, "a.b.c")
	qt.Assert(t, qt.IsTrue(ok))
	n, _ := value.Get[int32](v)
	qt.Assert(t, qt.Equals(n, int32(42)))

	d.SetDictValueByKey(p, field, "a.other", value.NewBool(true))
	keys := d.ListDictKeys(p, field)
	qt.Assert(t, qt.DeepEquals(keys, []string{"a"}))

	d.EraseDictValueByKey(p, field, "a.b.c")
	qt.Assert(t, qt.IsFalse(d.HasDictKey(p, field, "a.b.c")))
	qt.Assert(t, qt.IsTrue(d.HasDictKey(p, field, "a.other")))
}

func TestEraseDictValueByKeyRemovesFieldWhenEmpty(t *testing.T) {
	d := NewInMemoryData()
	p := path.FromString("/A")
	d.CreateSpec(p, Prim)
	field := path.Intern("customData")

	d.SetDictValueByKey(p, field, "only", value.NewInt(1))
	qt.Assert(t, qt.IsTrue(d.Has(p, field)))
	d.EraseDictValueByKey(p, field, "only")
	qt.Assert(t, qt.IsFalse(d.Has(p, field)))
}

func TestVisitSpecsSortedOrderAndEquals(t *testing.T) {
	d := NewInMemoryData()
	for _, s := range []string{"/C", "/A", "/B"} {
		d.CreateSpec(path.FromString(s), Prim)
	}
	var seen []string
	d.VisitSpecs(func(_ AbstractData, p path.Path) bool {
		seen = append(seen, p.String())
		return true
	})
	qt.Assert(t, qt.DeepEquals(seen, []string{"/A", "/B", "/C"}))

	other := NewInMemoryData()
	for _, s := range []string{"/A", "/B", "/C"} {
		other.CreateSpec(path.FromString(s), Prim)
	}
	qt.Assert(t, qt.IsTrue(d.Equals(other)))

	other.Erase(path.FromString("/A"), path.Intern("nonexistent"))
	qt.Assert(t, qt.IsTrue(d.Equals(other)))

	other.CreateSpec(path.FromString("/D"), Prim)
	qt.Assert(t, qt.IsFalse(d.Equals(other)))
}

func TestVisitSpecsFieldSnapshotDiff(t *testing.T) {
	d := NewInMemoryData()
	for _, tc := range []struct {
		path   string
		fields map[string]value.Value
	}{
		{"/World", map[string]value.Value{"specifier": value.NewToken("def")}},
		{"/World/Geo", map[string]value.Value{"specifier": value.NewToken("def"), "active": value.NewBool(true)}},
	} {
		p := path.FromString(tc.path)
		d.CreateSpec(p, Prim)
		for name, v := range tc.fields {
			d.Set(p, path.Intern(name), v)
		}
	}

	got := map[string][]string{}
	d.VisitSpecs(func(dd AbstractData, p path.Path) bool {
		var names []string
		for _, f := range dd.List(p) {
			names = append(names, f.String())
		}
		got[p.String()] = names
		return true
	})

	want := map[string][]string{
		"/World":     {"specifier"},
		"/World/Geo": {"active", "specifier"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestCrateDataWrapsInMemoryRecords(t *testing.T) {
	c := NewCrateData([]byte("fake-crate-bytes"), false)
	qt.Assert(t, qt.IsTrue(c.StreamsData()))
	qt.Assert(t, qt.IsFalse(c.IsDetached()))

	p := path.FromString("/Root")
	c.CreateSpec(p, PseudoRoot)
	qt.Assert(t, qt.IsTrue(c.HasSpec(p)))
	qt.Assert(t, qt.Not(qt.Equals(c.Digest().String(), "")))
}
