package pkgzip

import (
	"os"
	"path/filepath"

	"testing"

	"github.com/go-quicktest/qt"
)

func writeTempFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	qt.Assert(t, qt.IsNil(os.WriteFile(p, content, 0o644)))
	return p
}

func TestAddFileAlignsFirstEntryAt64(t *testing.T) {
	dir := t.TempDir()
	src := writeTempFile(t, dir, "file_1.usdc", []byte("hello layer"))

	w, err := CreateNew(filepath.Join(dir, "test.usdz"))
	qt.Assert(t, qt.IsNil(err))
	name, err := w.AddFile(src, "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(name, "file_1.usdc"))
	qt.Assert(t, qt.IsNil(w.Save()))

	zf, err := OpenFile(filepath.Join(dir, "test.usdz"))
	qt.Assert(t, qt.IsNil(err))
	defer zf.Close()

	e, ok := zf.FileInfo("file_1.usdc")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(e.DataOffset, int64(64)))
}

// TestOpenPackagedAssetNested builds a .usdz containing file_1.usdc, a
// nested nested.usdz, and a second copy of file_1.usdc, then checks that
// reading each path, including the doubly-nested one, yields the correct
// bytes, and every entry is 64-byte aligned.
func TestOpenPackagedAssetNested(t *testing.T) {
	dir := t.TempDir()
	file1Content := []byte("root layer contents")
	nestedFile1Content := []byte("nested layer contents, longer than the outer one")

	file1 := writeTempFile(t, dir, "file_1.usdc", file1Content)
	nestedFile1 := writeTempFile(t, dir, "nested_file_1.usdc", nestedFile1Content)

	nw, err := CreateNew(filepath.Join(dir, "nested.usdz"))
	qt.Assert(t, qt.IsNil(err))
	_, err = nw.AddFile(nestedFile1, "file_1.usdc")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(nw.Save()))
	nestedZipPath := filepath.Join(dir, "nested.usdz")

	outerPath := filepath.Join(dir, "test.usdz")
	ow, err := CreateNew(outerPath)
	qt.Assert(t, qt.IsNil(err))
	_, err = ow.AddFile(file1, "file_1.usdc")
	qt.Assert(t, qt.IsNil(err))
	_, err = ow.AddFile(nestedZipPath, "nested.usdz")
	qt.Assert(t, qt.IsNil(err))
	_, err = ow.AddFile(file1, "file_1_copy.usdc")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(ow.Save()))

	zf, err := OpenFile(outerPath)
	qt.Assert(t, qt.IsNil(err))
	defer zf.Close()

	for _, e := range zf.Entries() {
		qt.Assert(t, qt.Equals(e.DataOffset%alignment, int64(0)))
	}

	a, err := zf.OpenEntry("file_1.usdc")
	qt.Assert(t, qt.IsNil(err))
	buf := make([]byte, a.Size())
	_, err = a.ReadAt(buf, 0)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(buf), string(file1Content)))

	a2, err := zf.OpenEntry("file_1_copy.usdc")
	qt.Assert(t, qt.IsNil(err))
	buf2 := make([]byte, a2.Size())
	_, err = a2.ReadAt(buf2, 0)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(buf2), string(file1Content)))

	root, ok := zf.RootLayerPath()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(root, "file_1.usdc"))

	asset, err := OpenPackagedAsset(outerPath + "[nested.usdz[file_1.usdc]]")
	qt.Assert(t, qt.IsNil(err))
	nbuf := make([]byte, asset.Size())
	_, err = asset.ReadAt(nbuf, 0)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(nbuf), string(nestedFile1Content)))

	f, off := asset.GetFileUnsafe()
	qt.Assert(t, qt.IsNotNil(f))
	qt.Assert(t, qt.Equals(off%alignment, int64(0)))
}

func TestOpenEntryRejectsCompressedMethod(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bogus.usdz")
	w, err := CreateNew(path)
	qt.Assert(t, qt.IsNil(err))
	_, err = w.AddFile(writeTempFile(t, dir, "a.usdc", []byte("x")), "a.usdc")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(w.Save()))

	zf, err := OpenFile(path)
	qt.Assert(t, qt.IsNil(err))
	defer zf.Close()

	zf.entries[0].Method = 8 // force a deflate method to exercise the rejection path
	_, err = zf.OpenEntry("a.usdc")
	qt.Assert(t, qt.IsNotNil(err))
}

func TestDiscardRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abandoned.usdz")
	w, err := CreateNew(path)
	qt.Assert(t, qt.IsNil(err))
	_, err = w.AddFile(writeTempFile(t, dir, "a.usdc", []byte("x")), "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(w.Discard()))

	_, err = os.Stat(path)
	qt.Assert(t, qt.IsTrue(os.IsNotExist(err)))
}

func TestEntryDigestIsStable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d.usdz")
	w, err := CreateNew(path)
	qt.Assert(t, qt.IsNil(err))
	_, err = w.AddFile(writeTempFile(t, dir, "a.usdc", []byte("stable content")), "")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(w.Save()))

	zf, err := OpenFile(path)
	qt.Assert(t, qt.IsNil(err))
	defer zf.Close()

	d1, err := zf.EntryDigest("a.usdc")
	qt.Assert(t, qt.IsNil(err))
	d2, err := zf.EntryDigest("a.usdc")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(d1, d2))
}
