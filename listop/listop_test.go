package listop

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestApplyWorkedExample(t *testing.T) {
	// explicit=[], added=[A], prepended=[B], appended=[C], deleted=[D],
	// ordered=[C,B,A]; input=[D,A,X] -> [C,B,A,X].
	l := ListOp[string]{}.
		SetAdded([]string{"A"})
	l = l.SetPrepended([]string{"B"})
	l = l.SetAppended([]string{"C"})
	l = l.SetDeleted([]string{"D"})
	l = l.SetOrdered([]string{"C", "B", "A"})

	got := l.Apply([]string{"D", "A", "X"}, nil)
	qt.Assert(t, qt.DeepEquals(got, []string{"C", "B", "A", "X"}))
}

func TestApplyExplicitReplacesEntirely(t *testing.T) {
	l := NewExplicit([]string{"X", "Y", "X"})
	got := l.Apply([]string{"anything", "else"}, nil)
	qt.Assert(t, qt.DeepEquals(got, []string{"X", "Y"}))
}

func TestApplyAddedDoesNotMoveExistingItem(t *testing.T) {
	l := ListOp[string]{}.SetAdded([]string{"A"})
	got := l.Apply([]string{"Z", "A", "W"}, nil)
	qt.Assert(t, qt.DeepEquals(got, []string{"Z", "A", "W"}))
}

func TestApplyPrependedMovesExistingBlockToFront(t *testing.T) {
	l := ListOp[string]{}.SetPrepended([]string{"B", "A"})
	got := l.Apply([]string{"X", "A", "Y", "B"}, nil)
	qt.Assert(t, qt.DeepEquals(got, []string{"B", "A", "X", "Y"}))
}

func TestApplyAppendedMovesExistingBlockToBack(t *testing.T) {
	l := ListOp[string]{}.SetAppended([]string{"B", "A"})
	got := l.Apply([]string{"B", "X", "A", "Y"}, nil)
	qt.Assert(t, qt.DeepEquals(got, []string{"X", "Y", "B", "A"}))
}

func TestApplyTranslateDropsElement(t *testing.T) {
	l := ListOp[string]{}.SetAdded([]string{"A", "B"})
	tr := func(s string) (string, bool) {
		if s == "B" {
			return "", false
		}
		return s, true
	}
	got := l.Apply(nil, tr)
	qt.Assert(t, qt.DeepEquals(got, []string{"A"}))
}

func TestComposeOperationsExplicitSelfCopiesSelf(t *testing.T) {
	self := NewExplicit([]string{"A", "B"})
	inner := ListOp[string]{}.SetAdded([]string{"Z"})
	composed, ok := self.ComposeOperations(inner)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(composed.IsExplicit()))
	qt.Assert(t, qt.DeepEquals(composed.Explicit(), []string{"A", "B"}))
}

func TestComposeOperationsRejectsSelfWithAddedOrOrdered(t *testing.T) {
	self := ListOp[string]{}.SetAdded([]string{"A"})
	_, ok := self.ComposeOperations(ListOp[string]{})
	qt.Assert(t, qt.IsFalse(ok))

	self2 := ListOp[string]{}.SetOrdered([]string{"A"})
	_, ok = self2.ComposeOperations(ListOp[string]{})
	qt.Assert(t, qt.IsFalse(ok))
}

func TestComposeOperationsInnerExplicit(t *testing.T) {
	self := ListOp[string]{}.SetDeleted([]string{"A"})
	inner := NewExplicit([]string{"A", "B", "C"})
	composed, ok := self.ComposeOperations(inner)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(composed.IsExplicit()))
	// composed must behave like self.Apply(inner.explicit)
	qt.Assert(t, qt.DeepEquals(composed.Explicit(), self.Apply(inner.Explicit(), nil)))
	qt.Assert(t, qt.DeepEquals(composed.Explicit(), []string{"B", "C"}))
}

// TestComposeOperationsLawHoldsForRepresentableSelf checks the law
// self.ComposeOperations(inner).Apply(v) == self.Apply(inner.Apply(v))
// over hand-picked self/inner/v triples, including one where self deletes
// an item inner prepended (so it must disappear from the merged prepend
// block) and one where self deletes an item inner added (so it must
// disappear from the merged add list too).
func TestComposeOperationsLawHoldsForRepresentableSelf(t *testing.T) {
	cases := []struct {
		name  string
		self  ListOp[string]
		inner ListOp[string]
		v     []string
	}{
		{
			name:  "self deletes item inner prepended, self prepends/appends its own",
			self:  ListOp[string]{}.SetDeleted([]string{"Dl1", "P1"}).SetPrepended([]string{"Sp1"}).SetAppended([]string{"Sa1"}),
			inner: ListOp[string]{}.SetPrepended([]string{"P1"}).SetAppended([]string{"AP1"}).SetDeleted([]string{"Dl1"}),
			v:     []string{"Dl1", "P1", "X", "AP1"},
		},
		{
			name:  "self deletes item inner added",
			self:  ListOp[string]{}.SetDeleted([]string{"Z"}),
			inner: ListOp[string]{}.SetAdded([]string{"Z"}),
			v:     nil,
		},
		{
			name:  "self reintroduces item inner deleted via append",
			self:  ListOp[string]{}.SetAppended([]string{"D"}),
			inner: ListOp[string]{}.SetDeleted([]string{"D"}),
			v:     []string{"D", "Y"},
		},
	}
	for _, c := range cases {
		composed, ok := c.self.ComposeOperations(c.inner)
		qt.Assert(t, qt.IsTrue(ok), qt.Commentf("case %s", c.name))

		want := c.self.Apply(c.inner.Apply(c.v, nil), nil)
		got := composed.Apply(c.v, nil)
		qt.Assert(t, qt.DeepEquals(got, want), qt.Commentf("case %s", c.name))
	}
}

func TestModifyOperationsRewritesAndDrops(t *testing.T) {
	l := ListOp[string]{}.SetAdded([]string{"a", "b", "c"})
	out := l.ModifyOperations(func(s string) (string, bool) {
		if s == "b" {
			return "", false
		}
		return s + "!", true
	})
	qt.Assert(t, qt.DeepEquals(out.Added(), []string{"a!", "c!"}))
}

func TestReplaceOperationsSplicesSlot(t *testing.T) {
	l := ListOp[string]{}.SetAdded([]string{"a", "b", "c", "d"})
	out := l.ReplaceOperations(SlotAdded, 1, 2, []string{"x", "y", "z"})
	qt.Assert(t, qt.DeepEquals(out.Added(), []string{"a", "x", "y", "z", "d"}))
}

func TestReplaceOperationsOutOfBoundsReportsAndReturnsUnchanged(t *testing.T) {
	l := ListOp[string]{}.SetAdded([]string{"a"})
	out := l.ReplaceOperations(SlotAdded, 5, 1, []string{"x"})
	qt.Assert(t, qt.DeepEquals(out.Added(), []string{"a"}))
}

func TestSwitchingModesClearsVectors(t *testing.T) {
	l := NewExplicit([]string{"A"})
	l2 := l.SetAdded([]string{"B"})
	qt.Assert(t, qt.IsFalse(l2.IsExplicit()))
	qt.Assert(t, qt.DeepEquals(l2.Explicit(), []string(nil)))
	qt.Assert(t, qt.DeepEquals(l2.Added(), []string{"B"}))
}

func TestClearAndMakeExplicit(t *testing.T) {
	l := ListOp[string]{}.SetAdded([]string{"A"}).SetDeleted([]string{"B"})
	l = l.ClearAndMakeExplicit()
	qt.Assert(t, qt.IsTrue(l.IsExplicit()))
	qt.Assert(t, qt.DeepEquals(l.Explicit(), []string(nil)))
}
