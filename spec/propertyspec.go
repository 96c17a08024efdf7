package spec

import (
	"scenedesc.dev/sdf/path"
	"scenedesc.dev/sdf/value"
)

// PropertySpec is the abstract base shared by AttributeSpec and
// RelationshipSpec.
type PropertySpec struct {
	SpecHandle
}

func (p PropertySpec) Variability() (string, bool)  { return getTokenField(p.SpecHandle, fieldVariability) }
func (p PropertySpec) SetVariability(s string) bool { return p.SetField(fieldVariability, value.NewToken(s)) }
func (p PropertySpec) Custom() (bool, bool)         { return getBoolField(p.SpecHandle, fieldCustom) }
func (p PropertySpec) SetCustom(v bool) bool        { return p.SetField(fieldCustom, value.NewBool(v)) }
func (p PropertySpec) DefaultValue() (value.Value, bool) { return p.GetField(fieldDefault) }
func (p PropertySpec) SetDefaultValue(v value.Value) bool { return p.SetField(fieldDefault, v) }
func (p PropertySpec) Permission() (string, bool)   { return getTokenField(p.SpecHandle, fieldPermission) }
func (p PropertySpec) SetPermission(s string) bool  { return p.SetField(fieldPermission, value.NewToken(s)) }
func (p PropertySpec) DisplayGroup() (string, bool) { return getTokenField(p.SpecHandle, fieldDisplayGroup) }
func (p PropertySpec) SetDisplayGroup(s string) bool {
	return p.SetField(fieldDisplayGroup, value.NewString(s))
}
func (p PropertySpec) DisplayName() (string, bool) { return getTokenField(p.SpecHandle, fieldDisplayName) }
func (p PropertySpec) SetDisplayName(s string) bool {
	return p.SetField(fieldDisplayName, value.NewString(s))
}
func (p PropertySpec) Prefix() (string, bool)  { return getTokenField(p.SpecHandle, fieldPrefix) }
func (p PropertySpec) SetPrefix(s string) bool { return p.SetField(fieldPrefix, value.NewString(s)) }
func (p PropertySpec) Suffix() (string, bool)  { return getTokenField(p.SpecHandle, fieldSuffix) }
func (p PropertySpec) SetSuffix(s string) bool { return p.SetField(fieldSuffix, value.NewString(s)) }
func (p PropertySpec) SymmetricPeer() (string, bool) {
	return getTokenField(p.SpecHandle, fieldSymmetricPeer)
}
func (p PropertySpec) SetSymmetricPeer(s string) bool {
	return p.SetField(fieldSymmetricPeer, value.NewToken(s))
}
func (p PropertySpec) SymmetryFunction() (string, bool) {
	return getTokenField(p.SpecHandle, fieldSymmetryFunction)
}
func (p PropertySpec) SetSymmetryFunction(s string) bool {
	return p.SetField(fieldSymmetryFunction, value.NewToken(s))
}
func (p PropertySpec) SymmetryArguments() (map[string]value.Value, bool) {
	return dictField(p.SpecHandle, fieldSymmetryArgs)
}
func (p PropertySpec) SetSymmetryArgument(key string, v value.Value) bool {
	return setDictKey(p.SpecHandle, fieldSymmetryArgs, key, v)
}

// AttributeSpec is the typed view over an attribute record.
type AttributeSpec struct {
	PropertySpec
}

// NewAttributeSpec wraps h as an AttributeSpec.
func NewAttributeSpec(h SpecHandle) AttributeSpec {
	return AttributeSpec{PropertySpec{h}}
}

func (a AttributeSpec) TypeName() (string, bool)   { return getTokenField(a.SpecHandle, fieldTypeName) }
func (a AttributeSpec) SetTypeName(s string) bool  { return a.SetField(fieldTypeName, value.NewToken(s)) }
func (a AttributeSpec) ColorSpace() (string, bool) { return getTokenField(a.SpecHandle, fieldColorSpace) }
func (a AttributeSpec) SetColorSpace(s string) bool {
	return a.SetField(fieldColorSpace, value.NewToken(s))
}
func (a AttributeSpec) DisplayUnit() (string, bool) {
	return getTokenField(a.SpecHandle, fieldDisplayUnit)
}
func (a AttributeSpec) SetDisplayUnit(s string) bool {
	return a.SetField(fieldDisplayUnit, value.NewToken(s))
}

func (a AttributeSpec) AllowedTokens() ([]string, bool) {
	v, ok := a.GetField(fieldAllowedTokens)
	if !ok || v.Kind() != value.Array {
		return nil, false
	}
	arr, _ := value.Get[[]value.Value](v)
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := valueString(e); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func (a AttributeSpec) SetAllowedTokens(tokens []string) bool {
	arr := make([]value.Value, len(tokens))
	for i, t := range tokens {
		arr[i] = value.NewToken(t)
	}
	return a.SetField(fieldAllowedTokens, value.NewArray(arr))
}

// ConnectionPathList edits the attribute's connection targets.
func (a AttributeSpec) ConnectionPathList() PathListEditor {
	return PathListEditor{h: a.SpecHandle, field: fieldConnectionPaths}
}

// --- time-sample API -------------------------------------------------------

func (a AttributeSpec) SetTimeSample(t float64, v value.Value) bool {
	return a.l.SetTimeSample(a.p, t, v)
}

func (a AttributeSpec) QueryTimeSample(t float64) (value.Value, bool) {
	return a.l.Data().QueryTimeSample(a.p, t)
}

func (a AttributeSpec) ListTimeSamples() []float64 {
	return a.l.Data().ListTimeSamplesForPath(a.p)
}

func (a AttributeSpec) GetBracketingTimeSamples(t float64) (lo, hi float64, ok bool) {
	return a.l.Data().GetBracketingTimeSamplesForPath(a.p, t)
}

func (a AttributeSpec) GetPreviousTimeSample(t float64) (prev float64, ok bool) {
	return a.l.Data().GetPreviousTimeSampleForPath(a.p, t)
}

// RelationshipSpec is the typed view over a relationship record.
type RelationshipSpec struct {
	PropertySpec
}

// NewRelationshipSpec wraps h as a RelationshipSpec.
func NewRelationshipSpec(h SpecHandle) RelationshipSpec {
	return RelationshipSpec{PropertySpec{h}}
}

// TargetPathList edits the relationship's target paths.
func (r RelationshipSpec) TargetPathList() PathListEditor {
	return PathListEditor{h: r.SpecHandle, field: fieldTargetPaths}
}

func (r RelationshipSpec) NoLoadHint() (bool, bool) {
	return getBoolField(r.SpecHandle, fieldNoLoadHint)
}

func (r RelationshipSpec) SetNoLoadHint(v bool) bool {
	return r.SetField(fieldNoLoadHint, value.NewBool(v))
}

// ReplaceTargetPath replaces a single occurrence of old with newPath in
// the relationship's target list, preserving its position.
func (r RelationshipSpec) ReplaceTargetPath(old, newPath path.Path) bool {
	return r.TargetPathList().ReplacePath(old, newPath)
}

// RemoveTargetPath removes a single occurrence of p from the target list.
func (r RelationshipSpec) RemoveTargetPath(p path.Path) bool {
	return r.TargetPathList().RemovePath(p)
}
