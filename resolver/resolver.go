// Package resolver implements layer.AssetResolver over the local
// filesystem, including package-relative identifiers of the form
// "pkg.usdz[inner.path]", by delegating to pkgzip. This is the concrete
// collaborator layer/externalinterfaces.go declares only the shape of.
package resolver

import (
	"os"

	"scenedesc.dev/sdf/diag"
	"scenedesc.dev/sdf/layer"
	"scenedesc.dev/sdf/pkgzip"
)

// FileResolver resolves plain filesystem paths and package-relative
// identifiers nested inside a zip package.
type FileResolver struct{}

var _ layer.AssetResolver = FileResolver{}

// Resolve reports whether identifier names a reachable asset, returning it
// unchanged as the resolved path: package-relative identifiers are
// re-parsed by OpenAsset, and plain paths need no rewriting since this
// resolver never searches a path list.
func (FileResolver) Resolve(identifier string) (string, error) {
	if outer, _, ok := pkgzip.ParsePackageRelativePath(identifier); ok {
		if _, err := os.Stat(outer); err != nil {
			return "", diag.Errorf(diag.RuntimeError, "resolver: %s: %w", outer, err)
		}
		return identifier, nil
	}
	if _, err := os.Stat(identifier); err != nil {
		return "", diag.Errorf(diag.RuntimeError, "resolver: %s: %w", identifier, err)
	}
	return identifier, nil
}

// OpenAsset opens resolvedPath, which may be a plain file or a
// package-relative identifier.
func (FileResolver) OpenAsset(resolvedPath string) (layer.Asset, error) {
	if _, _, ok := pkgzip.ParsePackageRelativePath(resolvedPath); ok {
		return pkgzip.OpenPackagedAsset(resolvedPath)
	}
	f, err := os.Open(resolvedPath)
	if err != nil {
		return nil, diag.Errorf(diag.RuntimeError, "resolver: open %s: %w", resolvedPath, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, diag.Errorf(diag.RuntimeError, "resolver: stat %s: %w", resolvedPath, err)
	}
	return &plainFileAsset{f: f, size: fi.Size()}, nil
}

// plainFileAsset adapts *os.File to layer.Asset's narrow Size/Read shape.
type plainFileAsset struct {
	f    *os.File
	size int64
}

func (a *plainFileAsset) Size() int64 { return a.size }

func (a *plainFileAsset) Read(buf []byte) (int, error) { return a.f.Read(buf) }
