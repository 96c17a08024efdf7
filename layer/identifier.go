package layer

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	anonPrefix       = "anon:"
	formatArgsMarker = ":SDF_FORMAT_ARGS:"
)

// IsAnonymousIdentifier reports whether id has the anon:HEX[:TAG] form.
// An identifier carrying format arguments is never anonymous.
func IsAnonymousIdentifier(id string) bool {
	return strings.HasPrefix(id, anonPrefix) && !strings.Contains(id, formatArgsMarker)
}

// SplitIdentifier splits id into its asset-path portion and its
// format-arguments portion. args is "" if id carries no :SDF_FORMAT_ARGS:
// suffix.
func SplitIdentifier(id string) (assetPath, args string) {
	if i := strings.Index(id, formatArgsMarker); i >= 0 {
		return id[:i], id[i+len(formatArgsMarker):]
	}
	return id, ""
}

// JoinIdentifier is SplitIdentifier's inverse.
func JoinIdentifier(assetPath, args string) string {
	if args == "" {
		return assetPath
	}
	return assetPath + formatArgsMarker + args
}

// ParseFormatArgs parses the "k1=v1&k2=v2" grammar.
func ParseFormatArgs(args string) map[string]string {
	out := make(map[string]string)
	if args == "" {
		return out
	}
	for _, kv := range strings.Split(args, "&") {
		k, v, _ := strings.Cut(kv, "=")
		out[k] = v
	}
	return out
}

// FormatFormatArgs renders m back into the "k1=v1&k2=v2" grammar,
// preserving a stable (sorted) key order so callers get a deterministic
// identifier string.
func FormatFormatArgs(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, "&")
}

// NewAnonymousIdentifier mints a fresh anon:HEX[:TAG] identifier. HEX is
// derived from a random UUID via github.com/google/uuid, giving every
// anonymous layer a globally-unique identity without a shared counter.
func NewAnonymousIdentifier(tag string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	if tag == "" {
		return anonPrefix + hex
	}
	return anonPrefix + hex + ":" + tag
}
