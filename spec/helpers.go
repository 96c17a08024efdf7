package spec

import (
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

// valueString extracts a string payload from a Token, String, or AssetPath
// Value, the three text-shaped kinds the facade's string fields use.
func valueString(v value.Value) (string, bool) {
	switch v.Kind() {
	case value.Token, value.String, value.AssetPath:
		return value.Get[string](v)
	}
	return "", false
}

func valueBool(v value.Value) (bool, bool) {
	if v.Kind() != value.Bool {
		return false, false
	}
	return value.Get[bool](v)
}

// indexOfPath returns the index of target within items, or -1.
func indexOfPath(items []path.Path, target path.Path) int {
	for i, p := range items {
		if p.Equals(target) {
			return i
		}
	}
	return -1
}
