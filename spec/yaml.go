package spec

import (
	"gopkg.in/yaml.v3"

	"scenedesc.dev/sdf/value"
)

// CustomDataYAML renders p's custom-data dictionary as YAML, for debug
// dumps and export tooling.
func (p PrimSpec) CustomDataYAML() ([]byte, error) {
	m, ok := p.CustomData()
	if !ok {
		return nil, nil
	}
	return yaml.Marshal(dictToPlain(m))
}

// AssetInfoYAML renders p's asset-info dictionary as YAML.
func (p PrimSpec) AssetInfoYAML() ([]byte, error) {
	m, ok := p.AssetInfo()
	if !ok {
		return nil, nil
	}
	return yaml.Marshal(dictToPlain(m))
}

// dictToPlain converts a Value-valued dictionary to plain Go data
// (map[string]any, []any, string, float64, bool) so yaml.v3 can marshal it
// without reaching into Value's unexported fields.
func dictToPlain(m map[string]value.Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = valueToPlain(v)
	}
	return out
}

func valueToPlain(v value.Value) any {
	switch v.Kind() {
	case value.Dictionary:
		m, _ := value.Get[map[string]value.Value](v)
		return dictToPlain(m)
	case value.Array:
		arr, _ := value.Get[[]value.Value](v)
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = valueToPlain(e)
		}
		return out
	case value.Token, value.String, value.AssetPath:
		s, _ := valueString(v)
		return s
	case value.Bool:
		b, _ := value.Get[bool](v)
		return b
	case value.Int:
		n, _ := value.Get[int32](v)
		return n
	case value.Int64:
		n, _ := value.Get[int64](v)
		return n
	case value.Float:
		n, _ := value.Get[float32](v)
		return n
	case value.Double:
		n, _ := value.Get[float64](v)
		return n
	default:
		return v.String()
	}
}
