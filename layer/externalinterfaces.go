package layer

import "io"

// Asset is the minimal handle an AssetResolver hands back for a resolved
// identifier. Concrete resolvers (filesystem, package-relative,
// URL-backed) live outside this engine; only the interface is specified
// here.
type Asset interface {
	Size() int64
	Read(buf []byte) (int, error)
}

// AssetResolver resolves a layer identifier to a concrete, readable asset.
// It is an external collaborator: this package only declares the shape it
// depends on.
type AssetResolver interface {
	Resolve(identifier string) (resolvedPath string, err error)
	OpenAsset(resolvedPath string) (Asset, error)
}

// FileFormat is the external collaborator that knows how to parse and
// serialize one on-disk representation of a Layer's content. Text-format
// parsing/printing and binary crate (de)serialization plug in behind this
// interface; this package only declares the shape it depends on, and no
// concrete text/crate format is implemented here.
type FileFormat interface {
	// CanRead reports whether this format recognizes resolvedPath (by
	// extension, magic bytes, or both).
	CanRead(resolvedPath string) bool

	// Read populates l's data store by parsing the asset at resolvedPath.
	Read(l *Layer, resolvedPath string, metadataOnly bool) error

	// WriteToFile serializes l's current content to a brand new file at
	// path, under the given format args.
	WriteToFile(l *Layer, path, comment string, args map[string]string) error

	// WriteToStream serializes l's current content as text to out, for
	// debugging/export.
	WriteToStream(l *Layer, out io.Writer) error
}
