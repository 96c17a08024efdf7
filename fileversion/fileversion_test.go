package fileversion

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestStringRoundTrip(t *testing.T) {
	v := FromString("1.2.3")
	qt.Assert(t, qt.Equals(v.AsFullString(), "1.2.3"))
	qt.Assert(t, qt.Equals(v.AsString(), "1.2.3"))

	v2 := FromString("1.0.0")
	qt.Assert(t, qt.Equals(v2.AsString(), "1.0"))
}

func TestCanRead(t *testing.T) {
	qt.Assert(t, qt.IsFalse(FromString("1.2").CanRead(FromString("1.3"))))
	qt.Assert(t, qt.IsTrue(FromString("1.3").CanRead(FromString("1.2"))))
	qt.Assert(t, qt.IsTrue(FromString("1.3.5").CanRead(FromString("1.3.9"))))
}

func TestCanWrite(t *testing.T) {
	self := FromString("1.3.5")
	qt.Assert(t, qt.IsTrue(self.CanWrite(FromString("1.2.9"))))
	qt.Assert(t, qt.IsTrue(self.CanWrite(FromString("1.3.5"))))
	qt.Assert(t, qt.IsFalse(self.CanWrite(FromString("1.3.6"))))
	qt.Assert(t, qt.IsFalse(self.CanWrite(FromString("1.4.0"))))
	qt.Assert(t, qt.IsFalse(self.CanWrite(FromString("2.0.0"))))
}

func TestMalformedVersionReportsAndReturnsZero(t *testing.T) {
	v := FromString("not-a-version")
	qt.Assert(t, qt.Equals(v, FileVersion{}))
}

func TestLessUsesSemver(t *testing.T) {
	qt.Assert(t, qt.IsTrue(FromString("1.2.0").Less(FromString("1.10.0"))))
}
