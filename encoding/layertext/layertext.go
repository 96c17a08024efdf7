// Package layertext implements a concrete, minimal layer.FileFormat: a
// YAML-backed scene description file, used by cmd/sdfdump and by tests
// that need a real on-disk round trip. Text-format parsing and binary
// crate (de)serialization are both out of scope for the engine itself, a
// FileFormat plugin interface is assumed instead, and this package is
// that plugin — not a reimplementation of a production ASCII or crate
// format.
//
// Only scalar field kinds round-trip; composite kinds (Vector, Array,
// Dictionary, TimeSamples, ListOp, Reference, Payload, ScenePath,
// LayerOffset) are reported via diag.Default and dropped on write, using
// yaml.v3 for best-effort debug rendering rather than a lossless codec.
package layertext

import (
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"scenedesc.dev/sdf/data"
	"scenedesc.dev/sdf/diag"
	"scenedesc.dev/sdf/layer"
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

// Ext is the file extension this format claims.
const Ext = ".sdflayer"

// Format is a layer.FileFormat backed by a YAML document of path/type/
// field-map records.
type Format struct{}

var _ layer.FileFormat = Format{}

type docFile struct {
	Comment string    `yaml:"comment,omitempty"`
	Specs   []docSpec `yaml:"specs"`
}

type docSpec struct {
	Path   string              `yaml:"path"`
	Type   string              `yaml:"type"`
	Fields map[string]docValue `yaml:"fields,omitempty"`
}

type docValue struct {
	Kind  string `yaml:"kind"`
	Value string `yaml:"value"`
}

// CanRead reports whether resolvedPath carries this format's extension.
func (Format) CanRead(resolvedPath string) bool {
	return strings.HasSuffix(resolvedPath, Ext)
}

// Read parses resolvedPath as a YAML layertext document and populates l via
// its public CreateSpec/SetField surface.
func (Format) Read(l *layer.Layer, resolvedPath string, metadataOnly bool) error {
	raw, err := os.ReadFile(resolvedPath)
	if err != nil {
		return diag.Errorf(diag.RuntimeError, "layertext: read %s: %w", resolvedPath, err)
	}
	var doc docFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return diag.Errorf(diag.ParseError, "layertext: parse %s: %w", resolvedPath, err)
	}
	for _, s := range doc.Specs {
		p := path.FromString(s.Path)
		if p.IsEmpty() {
			return diag.Errorf(diag.ParseError, "layertext: %s: invalid path %q", resolvedPath, s.Path)
		}
		specType, ok := specTypeFromString(s.Type)
		if !ok {
			return diag.Errorf(diag.ParseError, "layertext: %s: unknown spec type %q", resolvedPath, s.Type)
		}
		if !l.Data().HasSpec(p) && !l.CreateSpec(p, specType) {
			return diag.Errorf(diag.CodingError, "layertext: %s: cannot create spec at %s", resolvedPath, s.Path)
		}
		if metadataOnly {
			continue
		}
		for name, dv := range s.Fields {
			v, ok := decodeValue(dv.Kind, dv.Value)
			if !ok {
				diag.Default.Post(diag.Errorf(diag.ParseError, "layertext: %s: %s.%s: unsupported kind %q, skipped", resolvedPath, s.Path, name, dv.Kind))
				continue
			}
			l.SetField(p, path.Intern(name), v)
		}
	}
	return nil
}

// WriteToFile renders l's specs and scalar fields as a YAML layertext
// document at path. comment is stored as the document's top-level
// comment; args is unused (this format has no format-specific args).
func (Format) WriteToFile(l *layer.Layer, outPath, comment string, args map[string]string) error {
	doc := docFile{Comment: comment}
	l.Data().VisitSpecs(func(d data.AbstractData, p path.Path) bool {
		s := docSpec{Path: p.String(), Type: d.GetSpecType(p).String()}
		for _, f := range d.List(p) {
			v, ok := d.Get(p, f)
			if !ok {
				continue
			}
			kind, str, ok := encodeValue(v)
			if !ok {
				diag.Default.Post(diag.Errorf(diag.CodingError, "layertext: %s.%s: cannot encode %s value, dropped", p, f, v.Kind()))
				continue
			}
			if s.Fields == nil {
				s.Fields = make(map[string]docValue)
			}
			s.Fields[f.String()] = docValue{Kind: kind, Value: str}
		}
		doc.Specs = append(doc.Specs, s)
		return true
	})
	out, err := yaml.Marshal(doc)
	if err != nil {
		return diag.Errorf(diag.CodingError, "layertext: marshal %s: %w", outPath, err)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return diag.Errorf(diag.RuntimeError, "layertext: write %s: %w", outPath, err)
	}
	return nil
}

// WriteToStream renders a pretty, non-round-tripping debug dump of l, the
// same shape Layer.ExportToString exposes, by delegating to the store's
// own kr/pretty-backed dump.
func (Format) WriteToStream(l *layer.Layer, out io.Writer) error {
	return l.Data().WriteToStream(out)
}

func specTypeFromString(s string) (data.SpecType, bool) {
	for t := data.Unknown; t <= data.VariantSet; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return data.Unknown, false
}

func encodeValue(v value.Value) (kind, str string, ok bool) {
	switch v.Kind() {
	case value.Bool:
		b, _ := value.Get[bool](v)
		return "bool", strconv.FormatBool(b), true
	case value.Int:
		n, _ := value.Get[int32](v)
		return "int", strconv.FormatInt(int64(n), 10), true
	case value.UInt:
		n, _ := value.Get[uint32](v)
		return "uint", strconv.FormatUint(uint64(n), 10), true
	case value.Int64:
		n, _ := value.Get[int64](v)
		return "int64", strconv.FormatInt(n, 10), true
	case value.UInt64:
		n, _ := value.Get[uint64](v)
		return "uint64", strconv.FormatUint(n, 10), true
	case value.Half:
		n, _ := value.Get[float32](v)
		return "half", strconv.FormatFloat(float64(n), 'g', -1, 32), true
	case value.Float:
		n, _ := value.Get[float32](v)
		return "float", strconv.FormatFloat(float64(n), 'g', -1, 32), true
	case value.Double:
		n, _ := value.Get[float64](v)
		return "double", strconv.FormatFloat(n, 'g', -1, 64), true
	case value.TimeCode:
		n, _ := value.Get[float64](v)
		return "timecode", strconv.FormatFloat(n, 'g', -1, 64), true
	case value.Token:
		s, _ := value.Get[string](v)
		return "token", s, true
	case value.String:
		s, _ := value.Get[string](v)
		return "string", s, true
	case value.AssetPath:
		s, _ := value.Get[string](v)
		return "asset-path", s, true
	case value.PathExpression:
		s, _ := value.Get[string](v)
		return "path-expression", s, true
	default:
		return "", "", false
	}
}

func decodeValue(kind, s string) (value.Value, bool) {
	switch kind {
	case "bool":
		b, err := strconv.ParseBool(s)
		return value.NewBool(b), err == nil
	case "int":
		n, err := strconv.ParseInt(s, 10, 32)
		return value.NewInt(int32(n)), err == nil
	case "uint":
		n, err := strconv.ParseUint(s, 10, 32)
		return value.NewUInt(uint32(n)), err == nil
	case "int64":
		n, err := strconv.ParseInt(s, 10, 64)
		return value.NewInt64(n), err == nil
	case "uint64":
		n, err := strconv.ParseUint(s, 10, 64)
		return value.NewUInt64(n), err == nil
	case "half":
		n, err := strconv.ParseFloat(s, 32)
		return value.NewHalf(float32(n)), err == nil
	case "float":
		n, err := strconv.ParseFloat(s, 32)
		return value.NewFloat(float32(n)), err == nil
	case "double":
		n, err := strconv.ParseFloat(s, 64)
		return value.NewDouble(n), err == nil
	case "timecode":
		n, err := strconv.ParseFloat(s, 64)
		return value.NewTimeCode(n), err == nil
	case "token":
		return value.NewToken(s), true
	case "string":
		return value.NewString(s), true
	case "asset-path":
		return value.NewAssetPath(s), true
	case "path-expression":
		return value.NewPathExpression(s), true
	default:
		return value.Empty, false
	}
}
