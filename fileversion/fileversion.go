// Package fileversion implements FileVersion: a (major, minor, patch)
// triple packed for comparison, with CanRead/CanWrite compatibility
// rules. Ordering (Less) is delegated to golang.org/x/mod/semver;
// CanRead and CanWrite compare the components directly.
package fileversion

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"scenedesc.dev/sdf/diag"
)

// FileVersion is a (major, minor, patch) triple of 8-bit unsigned integers.
type FileVersion struct {
	Major, Minor, Patch uint8
}

// FromString parses a dotted-decimal version string ("1.2.3" or "1.2",
// patch defaulting to 0). Malformed input reports a parse error and
// returns the zero FileVersion.
func FromString(s string) FileVersion {
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		diag.Report(diag.ParseError, "fileversion: malformed version string %q", s)
		return FileVersion{}
	}
	nums := make([]uint8, 3)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			diag.Report(diag.ParseError, "fileversion: malformed version component %q in %q", p, s)
			return FileVersion{}
		}
		nums[i] = uint8(n)
	}
	return FileVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}
}

// Packed returns the triple packed into a 32-bit integer for comparison.
func (f FileVersion) Packed() uint32 {
	return uint32(f.Major)<<16 | uint32(f.Minor)<<8 | uint32(f.Patch)
}

// semverString renders f as a golang.org/x/mod/semver-compatible string.
func (f FileVersion) semverString() string {
	return fmt.Sprintf("v%d.%d.%d", f.Major, f.Minor, f.Patch)
}

// AsFullString renders the full dotted-decimal triple.
func (f FileVersion) AsFullString() string {
	return fmt.Sprintf("%d.%d.%d", f.Major, f.Minor, f.Patch)
}

// AsString renders the dotted-decimal triple, dropping the patch component
// when it is zero: FromString("1.0.0").AsString() == "1.0", but
// FromString("1.2.3").AsString() == "1.2.3".
func (f FileVersion) AsString() string {
	if f.Patch == 0 {
		return fmt.Sprintf("%d.%d", f.Major, f.Minor)
	}
	return f.AsFullString()
}

// compare returns semver.Compare's sense (-1, 0, 1) between f and other,
// ignoring major/minor/patch semantics beyond what semver.Compare already
// implements for a 3-component version string.
func (f FileVersion) compare(other FileVersion) int {
	return semver.Compare(f.semverString(), other.semverString())
}

// CanRead reports whether a file written at version f can be read by a
// reader of version self: same major, f.Minor <= self.Minor.
func (self FileVersion) CanRead(f FileVersion) bool {
	if f.Major != self.Major {
		return false
	}
	return f.Minor <= self.Minor
}

// CanWrite reports whether self can write a file claiming to be version f:
// same major, and f is not newer than self within that major (f.Minor <
// self.Minor, or equal minor with f.Patch <= self.Patch).
func (self FileVersion) CanWrite(f FileVersion) bool {
	if f.Major != self.Major {
		return false
	}
	if f.Minor < self.Minor {
		return true
	}
	return f.Minor == self.Minor && f.Patch <= self.Patch
}

// Less reports whether f precedes other under ordinary version ordering,
// via golang.org/x/mod/semver.
func (f FileVersion) Less(other FileVersion) bool {
	return f.compare(other) < 0
}
