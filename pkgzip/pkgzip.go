// Package pkgzip implements ZipPackage: reading and writing the
// uncompressed zip envelope that backs .usdz package layers, plus the
// package-relative asset resolution ("pkg.usdz[inner.path]") that sits
// underneath package-aware layer opening.
//
// The overall archive-handling shape (central-directory walk,
// stored-entry restriction, collision checking) is the classic
// zip-reader approach, extended here with the byte-offset/memory-map/
// EOCD-scan/64-byte-alignment support a plain archive reader doesn't
// need, since it never hands offsets back to a caller.
package pkgzip

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"

	"scenedesc.dev/sdf/diag"
)

const (
	localFileHeaderSig = 0x04034b50
	centralDirSig      = 0x02014b50
	eocdSig            = 0x06054b50

	eocdMinSize = 22
	// maxEOCDScan bounds the trailing-bytes scan for the EOCD signature,
	// matching the classic zip-reader convention of 64KiB comment + record.
	maxEOCDScan = 65536 + eocdMinSize

	// alignPadExtraID is the extra-field id this writer stamps on padding
	// subfields; it has no meaning beyond "ignore these bytes" to any
	// reader, including ours.
	alignPadExtraID = 0xd935

	alignment = 64
)

// Entry describes one stored member of a zip archive: its data offset,
// compressed and uncompressed size, CRC32, compression method, and
// whether it's encrypted.
type Entry struct {
	Name             string
	DataOffset       int64
	Size             int64
	UncompressedSize int64
	CRC32            uint32
	Method           uint16
	Encrypted        bool
}

// ZipFile is an opened archive: a random-access reader over entry bytes
// plus the entry table read from the central directory (or, failing
// that, a partial scan of local headers).
type ZipFile struct {
	ra      io.ReaderAt
	file    *os.File // the real, closeable file backing the whole nest; nil for reader-only opens
	base    int64    // offset of this archive's own start within file
	size    int64
	entries []Entry
}

// OpenFile opens the archive at path for reading.
func OpenFile(path string) (*ZipFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.Errorf(diag.RuntimeError, "pkgzip: open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, diag.Errorf(diag.RuntimeError, "pkgzip: stat %s: %w", path, err)
	}
	zf, err := openZip(f, st.Size(), f, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	zf.file = f
	return zf, nil
}

func openZip(ra io.ReaderAt, size int64, file *os.File, base int64) (*ZipFile, error) {
	zf := &ZipFile{ra: ra, file: file, base: base, size: size}
	entries, err := readCentralDirectory(ra, size)
	if err != nil {
		entries, err = scanLocalHeaders(ra, size)
		if err != nil {
			return nil, err
		}
	}
	zf.entries = entries
	return zf, nil
}

// Close releases the underlying file, if this ZipFile owns one.
func (z *ZipFile) Close() error {
	if z.file != nil {
		return z.file.Close()
	}
	return nil
}

// Entries returns the archive's members in the order they were listed in
// the zip (the first entry is the package's root layer).
func (z *ZipFile) Entries() []Entry { return z.entries }

// FileInfo reports the entry named name.
func (z *ZipFile) FileInfo(name string) (Entry, bool) {
	for _, e := range z.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// RootLayerPath returns the name of the first entry listed in the
// archive, per GetPackageRootLayerPath.
func (z *ZipFile) RootLayerPath() (string, bool) {
	if len(z.entries) == 0 {
		return "", false
	}
	return z.entries[0].Name, true
}

// OpenEntry returns an Asset presenting the raw, uncompressed bytes of
// the named entry. Only stored (method 0), unencrypted entries are
// supported; anything else is a RuntimeError raised here, at extraction
// time, not at open time.
func (z *ZipFile) OpenEntry(name string) (*Asset, error) {
	e, ok := z.FileInfo(name)
	if !ok {
		return nil, diag.Errorf(diag.RuntimeError, "pkgzip: no such entry %q", name)
	}
	if e.Method != 0 {
		return nil, diag.Errorf(diag.RuntimeError, "pkgzip: entry %q uses unsupported compression method %d", name, e.Method)
	}
	if e.Encrypted {
		return nil, diag.Errorf(diag.RuntimeError, "pkgzip: entry %q is encrypted", name)
	}
	return &Asset{
		sr:   io.NewSectionReader(z.ra, e.DataOffset, e.UncompressedSize),
		file: z.file,
		off:  z.base + e.DataOffset,
		size: e.UncompressedSize,
	}, nil
}

// OpenNestedZip opens the entry named name as a zip archive in its own
// right, for package-within-package resolution
// ("test.usdz[nested.usdz[...]]").
func (z *ZipFile) OpenNestedZip(name string) (*ZipFile, error) {
	e, ok := z.FileInfo(name)
	if !ok {
		return nil, diag.Errorf(diag.RuntimeError, "pkgzip: no such entry %q", name)
	}
	if e.Method != 0 || e.Encrypted {
		return nil, diag.Errorf(diag.RuntimeError, "pkgzip: entry %q uses unsupported compression/encryption", name)
	}
	sr := io.NewSectionReader(z.ra, e.DataOffset, e.UncompressedSize)
	return openZip(sr, e.UncompressedSize, z.file, z.base+e.DataOffset)
}

// EntryDigest content-addresses the named entry's bytes, so a caller
// doing asset-dependency analysis (Layer.GetExternalAssetDependencies)
// can report a stable hash for a packaged asset without reading it
// twice.
func (z *ZipFile) EntryDigest(name string) (digest.Digest, error) {
	a, err := z.OpenEntry(name)
	if err != nil {
		return "", err
	}
	buf := make([]byte, a.size)
	if _, err := a.ReadAt(buf, 0); err != nil && err != io.EOF {
		return "", diag.Errorf(diag.RuntimeError, "pkgzip: reading %q: %w", name, err)
	}
	return digest.FromBytes(buf), nil
}

// Asset is the handle pkgzip hands back for a resolved package-relative
// path: it presents an entry's raw bytes, supports random-access reads,
// and exposes a file-handle/offset pair for memory-mapping callers.
type Asset struct {
	sr   *io.SectionReader
	file *os.File
	off  int64
	size int64
}

// Size implements layer.Asset.
func (a *Asset) Size() int64 { return a.size }

// Read implements layer.Asset: sequential reads advance an internal
// cursor over the entry's bytes.
func (a *Asset) Read(buf []byte) (int, error) { return a.sr.Read(buf) }

// ReadAt implements io.ReaderAt for random-access reads at arbitrary
// offsets within the entry.
func (a *Asset) ReadAt(buf []byte, off int64) (int, error) { return a.sr.ReadAt(buf, off) }

// GetFileUnsafe reports the real file backing this asset and the byte
// offset within it where the entry's data begins, for callers that want
// to memory-map the packaged asset directly.
func (a *Asset) GetFileUnsafe() (*os.File, int64) { return a.file, a.off }

func readCentralDirectory(ra io.ReaderAt, size int64) ([]Entry, error) {
	eocdOff, err := findEOCD(ra, size)
	if err != nil {
		return nil, err
	}
	eocd := make([]byte, eocdMinSize)
	if _, err := ra.ReadAt(eocd, eocdOff); err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint16(eocd[10:12])
	cdOffset := int64(binary.LittleEndian.Uint32(eocd[16:20]))

	entries := make([]Entry, 0, count)
	pos := cdOffset
	for i := uint16(0); i < count; i++ {
		hdr := make([]byte, 46)
		if _, err := ra.ReadAt(hdr, pos); err != nil {
			return nil, err
		}
		if binary.LittleEndian.Uint32(hdr[0:4]) != centralDirSig {
			return nil, diag.Errorf(diag.ParseError, "pkgzip: malformed central directory entry at %d", pos)
		}
		flags := binary.LittleEndian.Uint16(hdr[8:10])
		method := binary.LittleEndian.Uint16(hdr[10:12])
		crc := binary.LittleEndian.Uint32(hdr[16:20])
		compSize := int64(binary.LittleEndian.Uint32(hdr[20:24]))
		uncompSize := int64(binary.LittleEndian.Uint32(hdr[24:28]))
		nameLen := int(binary.LittleEndian.Uint16(hdr[28:30]))
		extraLen := int(binary.LittleEndian.Uint16(hdr[30:32]))
		commentLen := int(binary.LittleEndian.Uint16(hdr[32:34]))
		localOffset := int64(binary.LittleEndian.Uint32(hdr[42:46]))

		name := make([]byte, nameLen)
		if _, err := ra.ReadAt(name, pos+46); err != nil {
			return nil, err
		}

		dataOffset, err := localFileDataOffset(ra, localOffset)
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			Name:             string(name),
			DataOffset:       dataOffset,
			Size:             compSize,
			UncompressedSize: uncompSize,
			CRC32:            crc,
			Method:           method,
			Encrypted:        flags&0x1 != 0,
		})
		pos += int64(46 + nameLen + extraLen + commentLen)
	}
	return entries, nil
}

func findEOCD(ra io.ReaderAt, size int64) (int64, error) {
	scanLen := size
	if scanLen > maxEOCDScan {
		scanLen = maxEOCDScan
	}
	buf := make([]byte, scanLen)
	if _, err := ra.ReadAt(buf, size-scanLen); err != nil && err != io.EOF {
		return 0, err
	}
	sig := make([]byte, 4)
	binary.LittleEndian.PutUint32(sig, eocdSig)
	idx := bytes.LastIndex(buf, sig)
	if idx < 0 {
		return 0, diag.Errorf(diag.ParseError, "pkgzip: end-of-central-directory record not found")
	}
	return size - scanLen + int64(idx), nil
}

// localFileDataOffset reads the local file header at localOffset to
// compute where its data actually begins: the central directory's
// extra-field length does not always match the local header's, so the
// two must be read separately.
func localFileDataOffset(ra io.ReaderAt, localOffset int64) (int64, error) {
	hdr := make([]byte, 30)
	if _, err := ra.ReadAt(hdr, localOffset); err != nil {
		return 0, err
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != localFileHeaderSig {
		return 0, diag.Errorf(diag.ParseError, "pkgzip: malformed local file header at %d", localOffset)
	}
	nameLen := int64(binary.LittleEndian.Uint16(hdr[26:28]))
	extraLen := int64(binary.LittleEndian.Uint16(hdr[28:30]))
	return localOffset + 30 + nameLen + extraLen, nil
}

// scanLocalHeaders is the fallback reader used when the EOCD record is
// missing or truncated: it walks local file headers sequentially from
// the start of the archive until one fails to match, so open tolerates a
// missing EOCD by falling back to this partial-read scan.
func scanLocalHeaders(ra io.ReaderAt, size int64) ([]Entry, error) {
	var entries []Entry
	pos := int64(0)
	for pos+30 <= size {
		hdr := make([]byte, 30)
		if _, err := ra.ReadAt(hdr, pos); err != nil {
			break
		}
		if binary.LittleEndian.Uint32(hdr[0:4]) != localFileHeaderSig {
			break
		}
		flags := binary.LittleEndian.Uint16(hdr[6:8])
		method := binary.LittleEndian.Uint16(hdr[8:10])
		crc := binary.LittleEndian.Uint32(hdr[14:18])
		compSize := int64(binary.LittleEndian.Uint32(hdr[18:22]))
		uncompSize := int64(binary.LittleEndian.Uint32(hdr[22:26]))
		nameLen := int64(binary.LittleEndian.Uint16(hdr[26:28]))
		extraLen := int64(binary.LittleEndian.Uint16(hdr[28:30]))

		name := make([]byte, nameLen)
		if _, err := ra.ReadAt(name, pos+30); err != nil {
			break
		}
		dataOffset := pos + 30 + nameLen + extraLen

		entries = append(entries, Entry{
			Name:             string(name),
			DataOffset:       dataOffset,
			Size:             compSize,
			UncompressedSize: uncompSize,
			CRC32:            crc,
			Method:           method,
			Encrypted:        flags&0x1 != 0,
		})
		pos = dataOffset + compSize
	}
	if len(entries) == 0 {
		return nil, diag.Errorf(diag.ParseError, "pkgzip: no recoverable entries found")
	}
	return entries, nil
}

// ParsePackageRelativePath splits an identifier of the form
// "pkg.usdz[inner.path]" into its outer archive path and inner
// package-relative path. inner may itself contain a further bracketed
// reference for a package nested inside this one.
func ParsePackageRelativePath(identifier string) (outer, inner string, ok bool) {
	i := strings.IndexByte(identifier, '[')
	if i < 0 || !strings.HasSuffix(identifier, "]") {
		return "", "", false
	}
	return identifier[:i], identifier[i+1 : len(identifier)-1], true
}

// OpenPackagedAsset resolves a "pkg.usdz[inner.path]" identifier all the
// way down, recursing through nested packages as needed, and returns an
// Asset over the innermost entry's bytes.
func OpenPackagedAsset(identifier string) (*Asset, error) {
	outer, inner, ok := ParsePackageRelativePath(identifier)
	if !ok {
		return nil, diag.Errorf(diag.CodingError, "pkgzip: %q is not a package-relative path", identifier)
	}
	zf, err := OpenFile(outer)
	if err != nil {
		return nil, err
	}
	return resolveWithin(zf, inner)
}

func resolveWithin(zf *ZipFile, inner string) (*Asset, error) {
	nestedOuter, nestedInner, hasNested := ParsePackageRelativePath(inner)
	if !hasNested {
		return zf.OpenEntry(inner)
	}
	nz, err := zf.OpenNestedZip(nestedOuter)
	if err != nil {
		return nil, err
	}
	return resolveWithin(nz, nestedInner)
}

// GetPackageRootLayerPath returns the name of the first file listed in
// the zip at pkgPath.
func GetPackageRootLayerPath(pkgPath string) (string, error) {
	zf, err := OpenFile(pkgPath)
	if err != nil {
		return "", err
	}
	defer zf.Close()
	name, ok := zf.RootLayerPath()
	if !ok {
		return "", diag.Errorf(diag.RuntimeError, "pkgzip: %s has no entries", pkgPath)
	}
	return name, nil
}

func crc32Of(b []byte) uint32 { return crc32.ChecksumIEEE(b) }
