package pathtable

import (
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/go-quicktest/qt"

	"scenedesc.dev/sdf/path"
)

func p(names ...string) path.Path {
	out := path.AbsoluteRoot
	for _, n := range names {
		out = out.AppendChild(path.Intern(n))
	}
	return out
}

func TestInsertImplicitlyInsertsAncestors(t *testing.T) {
	tbl := New[int]()
	tbl.Insert(p("a", "b", "c"), 3)

	qt.Assert(t, qt.IsTrue(tbl.Has(p("a"))))
	qt.Assert(t, qt.IsTrue(tbl.Has(p("a", "b"))))
	qt.Assert(t, qt.IsTrue(tbl.Has(p("a", "b", "c"))))

	v, _ := tbl.Find(p("a"))
	qt.Assert(t, qt.Equals(v, 0))
}

func TestInsertDoesNotOverwrite(t *testing.T) {
	tbl := New[int]()
	tbl.Insert(p("a"), 1)
	_, inserted := tbl.Insert(p("a"), 2)
	qt.Assert(t, qt.IsFalse(inserted))
	v, _ := tbl.Find(p("a"))
	qt.Assert(t, qt.Equals(v, 1))
}

func TestEraseRemovesSubtree(t *testing.T) {
	tbl := New[int]()
	tbl.Insert(p("a", "b", "c"), 1)
	n := tbl.Erase(p("a", "b"))
	qt.Assert(t, qt.Equals(n, 2))
	qt.Assert(t, qt.IsTrue(tbl.Has(p("a"))))
	qt.Assert(t, qt.IsFalse(tbl.Has(p("a", "b"))))
	qt.Assert(t, qt.IsFalse(tbl.Has(p("a", "b", "c"))))
}

func TestFindSubtreeRangePreorder(t *testing.T) {
	tbl := New[int]()
	tbl.Insert(p("a"), 0)
	tbl.Insert(p("a", "b"), 1)
	tbl.Insert(p("a", "b", "c"), 2)
	tbl.Insert(p("a", "d"), 3)
	tbl.Insert(p("z"), 4)

	got := tbl.FindSubtreeRange(p("a"))
	qt.Assert(t, qt.DeepEquals(got, []path.Path{
		p("a"), p("a", "b"), p("a", "b", "c"), p("a", "d"),
	}))
}

func TestParallelForEachVisitsEveryEntry(t *testing.T) {
	tbl := New[int]()
	for i := 0; i < 200; i++ {
		leaf := p("root").AppendChild(path.Intern(string(rune('a' + i%26)))).AppendChild(path.Intern(strconv.Itoa(i)))
		tbl.Insert(leaf, i)
	}
	var count int64
	tbl.ParallelForEach(func(_ path.Path, v int) {
		atomic.AddInt64(&count, 1)
	})
	qt.Assert(t, qt.Equals(int(count), tbl.Len()))
}
