package pkgzip

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"scenedesc.dev/sdf/diag"
)

type writtenEntry struct {
	name        string
	crc32       uint32
	size        uint32
	localOffset int64
	dataOffset  int64
}

// ZipFileWriter streams a new, uncompressed zip archive to disk.
type ZipFileWriter struct {
	f       *os.File
	path    string
	entries []writtenEntry
	closed  bool
}

// CreateNew opens path for writing a fresh archive, truncating any
// existing file.
func CreateNew(path string) (*ZipFileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, diag.Errorf(diag.RuntimeError, "pkgzip: create %s: %w", path, err)
	}
	return &ZipFileWriter{f: f, path: path}, nil
}

// AddFile appends the contents of sourcePath as a stored entry named
// packagePath (or filepath.Base(sourcePath) if packagePath is empty),
// 64-byte aligned per the .usdz convention, and returns the name the
// entry was written under.
func (w *ZipFileWriter) AddFile(sourcePath, packagePath string) (string, error) {
	if w.closed {
		return "", diag.Errorf(diag.CodingError, "pkgzip: AddFile on a closed writer")
	}
	if packagePath == "" {
		packagePath = filepath.Base(sourcePath)
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", diag.Errorf(diag.RuntimeError, "pkgzip: reading %s: %w", sourcePath, err)
	}

	pos, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
	}

	nameLen := len(packagePath)
	base := pos + 30 + int64(nameLen)
	pad := (alignment - base%alignment) % alignment
	if pad != 0 && pad < 4 {
		pad += alignment
	}
	extraLen := int(pad)

	hdr := make([]byte, 30)
	binary.LittleEndian.PutUint32(hdr[0:4], localFileHeaderSig)
	binary.LittleEndian.PutUint16(hdr[4:6], 20) // version needed
	binary.LittleEndian.PutUint16(hdr[6:8], 0)  // flags
	binary.LittleEndian.PutUint16(hdr[8:10], 0) // method: stored
	binary.LittleEndian.PutUint16(hdr[10:12], 0)
	binary.LittleEndian.PutUint16(hdr[12:14], 0)
	crc := crc32Of(data)
	binary.LittleEndian.PutUint32(hdr[14:18], crc)
	binary.LittleEndian.PutUint32(hdr[18:22], uint32(len(data)))
	binary.LittleEndian.PutUint32(hdr[22:26], uint32(len(data)))
	binary.LittleEndian.PutUint16(hdr[26:28], uint16(nameLen))
	binary.LittleEndian.PutUint16(hdr[28:30], uint16(extraLen))

	if _, err := w.f.Write(hdr); err != nil {
		return "", diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
	}
	if _, err := w.f.Write([]byte(packagePath)); err != nil {
		return "", diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
	}
	if extraLen > 0 {
		extra := make([]byte, extraLen)
		binary.LittleEndian.PutUint16(extra[0:2], alignPadExtraID)
		binary.LittleEndian.PutUint16(extra[2:4], uint16(extraLen-4))
		if _, err := w.f.Write(extra); err != nil {
			return "", diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
		}
	}

	dataOffset := base + int64(extraLen)
	if _, err := w.f.Write(data); err != nil {
		return "", diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
	}

	w.entries = append(w.entries, writtenEntry{
		name:        packagePath,
		crc32:       crc,
		size:        uint32(len(data)),
		localOffset: pos,
		dataOffset:  dataOffset,
	})
	return packagePath, nil
}

// Save writes the central directory and end-of-central-directory record,
// then closes the file.
func (w *ZipFileWriter) Save() error {
	if w.closed {
		return diag.Errorf(diag.CodingError, "pkgzip: Save on a closed writer")
	}
	cdStart, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
	}

	for _, e := range w.entries {
		hdr := make([]byte, 46)
		binary.LittleEndian.PutUint32(hdr[0:4], centralDirSig)
		binary.LittleEndian.PutUint16(hdr[4:6], 20)  // version made by
		binary.LittleEndian.PutUint16(hdr[6:8], 20)  // version needed
		binary.LittleEndian.PutUint16(hdr[8:10], 0)  // flags
		binary.LittleEndian.PutUint16(hdr[10:12], 0) // method
		binary.LittleEndian.PutUint16(hdr[12:14], 0)
		binary.LittleEndian.PutUint16(hdr[14:16], 0)
		binary.LittleEndian.PutUint32(hdr[16:20], e.crc32)
		binary.LittleEndian.PutUint32(hdr[20:24], e.size)
		binary.LittleEndian.PutUint32(hdr[24:28], e.size)
		binary.LittleEndian.PutUint16(hdr[28:30], uint16(len(e.name)))
		binary.LittleEndian.PutUint16(hdr[30:32], 0) // extra len (central dir copy omits padding)
		binary.LittleEndian.PutUint16(hdr[32:34], 0) // comment len
		binary.LittleEndian.PutUint16(hdr[34:36], 0) // disk number
		binary.LittleEndian.PutUint16(hdr[36:38], 0) // internal attrs
		binary.LittleEndian.PutUint32(hdr[38:42], 0) // external attrs
		binary.LittleEndian.PutUint32(hdr[42:46], uint32(e.localOffset))

		if _, err := w.f.Write(hdr); err != nil {
			return diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
		}
		if _, err := w.f.Write([]byte(e.name)); err != nil {
			return diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
		}
	}

	cdEnd, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
	}

	eocd := make([]byte, eocdMinSize)
	binary.LittleEndian.PutUint32(eocd[0:4], eocdSig)
	binary.LittleEndian.PutUint16(eocd[4:6], 0)
	binary.LittleEndian.PutUint16(eocd[6:8], 0)
	binary.LittleEndian.PutUint16(eocd[8:10], uint16(len(w.entries)))
	binary.LittleEndian.PutUint16(eocd[10:12], uint16(len(w.entries)))
	binary.LittleEndian.PutUint32(eocd[12:16], uint32(cdEnd-cdStart))
	binary.LittleEndian.PutUint32(eocd[16:20], uint32(cdStart))
	binary.LittleEndian.PutUint16(eocd[20:22], 0)

	if _, err := w.f.Write(eocd); err != nil {
		return diag.Errorf(diag.RuntimeError, "pkgzip: %w", err)
	}
	w.closed = true
	return w.f.Close()
}

// Discard aborts the archive without finalizing it, removing the
// partial file.
func (w *ZipFileWriter) Discard() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.f.Close()
	return os.Remove(w.path)
}
