package data

import (
	"github.com/opencontainers/go-digest"
)

// CrateData is the binary "crate" backend: a store that streams from an
// on-disk file rather than holding every value resident. The on-disk
// binary layout is an external collaborator this engine never parses
// itself; CrateData models the StreamsData/IsDetached distinction, and a
// stable content digest for external-reference analysis.
//
// Internally it reuses InMemoryData's record index (the parsed view of the
// crate payload) rather than re-implementing field/time-sample storage.
type CrateData struct {
	*InMemoryData
	rawDigest digest.Digest
	detached  bool
}

// NewCrateData wraps raw (the crate file's bytes, already parsed into
// records by an out-of-scope file-format plugin) and content-addresses it.
// detached should be false when records still reference the backing asset
// (e.g. large blob fields read lazily); true once fully materialized.
func NewCrateData(raw []byte, detached bool) *CrateData {
	return &CrateData{
		InMemoryData: NewInMemoryData(),
		rawDigest:    digest.Canonical.FromBytes(raw),
		detached:     detached,
	}
}

func (c *CrateData) StreamsData() bool { return true }
func (c *CrateData) IsDetached() bool  { return c.detached }

// Digest returns the content hash of the crate payload this store was
// parsed from.
func (c *CrateData) Digest() digest.Digest { return c.rawDigest }
