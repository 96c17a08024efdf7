package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"

	"scenedesc.dev/sdf/pkgzip"
)

func TestResolveAndOpenPlainFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "layer.sdflayer")
	qt.Assert(t, qt.IsNil(os.WriteFile(p, []byte("specs: []\n"), 0o644)))

	var r FileResolver
	resolved, err := r.Resolve(p)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(resolved, p))

	asset, err := r.OpenAsset(resolved)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(asset.Size(), int64(len("specs: []\n"))))
}

func TestResolveMissingFile(t *testing.T) {
	var r FileResolver
	_, err := r.Resolve(filepath.Join(t.TempDir(), "missing.sdflayer"))
	qt.Assert(t, qt.IsNotNil(err))
}

func TestResolveAndOpenPackageRelative(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "file_1.usdc")
	qt.Assert(t, qt.IsNil(os.WriteFile(src, []byte("payload"), 0o644)))

	w, err := pkgzip.CreateNew(filepath.Join(dir, "test.usdz"))
	qt.Assert(t, qt.IsNil(err))
	_, err = w.AddFile(src, "file_1.usdc")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(w.Save()))

	id := filepath.Join(dir, "test.usdz") + "[file_1.usdc]"

	var r FileResolver
	resolved, err := r.Resolve(id)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(resolved, id))

	asset, err := r.OpenAsset(resolved)
	qt.Assert(t, qt.IsNil(err))
	buf := make([]byte, asset.Size())
	_, err = asset.Read(buf)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(buf), "payload"))
}
