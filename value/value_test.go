package value

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestScalarEqualityAndHash(t *testing.T) {
	a := NewDouble(1.0)
	b := NewDouble(1.0)
	qt.Assert(t, qt.IsTrue(a.Equals(b)))
	qt.Assert(t, qt.Equals(a.Hash(), b.Hash()))

	c := NewDouble(2.0)
	qt.Assert(t, qt.IsFalse(a.Equals(c)))
}

func TestAsNumericCast(t *testing.T) {
	v := NewInt(3)
	d, ok := v.As(Double)
	qt.Assert(t, qt.IsTrue(ok))
	f, ok := Get[float64](d)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(f, 3.0))
}

func TestTokenStringCast(t *testing.T) {
	v := NewToken("hello")
	s, ok := v.As(String)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(s.Kind(), String))
	qt.Assert(t, qt.Equals(s.String(), "hello"))
}

func TestVectorRegistryRoundTrip(t *testing.T) {
	ty, ok := Builtins.Lookup("point3f")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(ty.Dim, 3))
	qt.Assert(t, qt.Equals(ty.Role, RolePoint))

	v := NewVector(ty, []float64{1, 2, 3})
	vec, ok := Get[Vector](v)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(vec.Elems, []float64{1, 2, 3}))
}

func TestIsEmpty(t *testing.T) {
	qt.Assert(t, qt.IsTrue(Empty.IsEmpty()))
	qt.Assert(t, qt.IsFalse(NewBool(false).IsEmpty()))
}
