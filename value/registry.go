package value

import "sync"

// Type describes one entry in the type registry: the concrete shape
// behind a type-name token, plus its role and default display/conversion
// unit.
type Type struct {
	Name        string
	Kind        Kind
	Role        Role
	Dim         int // 0 for scalars; 2/3/4 for aggregates and matrices
	Precision   Precision
	DefaultUnit string
	IsArray     bool
}

// Registry maps type-name tokens to Types. A process normally uses the
// shared Builtins registry, but schema layers may extend a private one.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Type
}

// NewRegistry returns a Registry pre-populated with every built-in scalar
// and aggregate type, plus their array forms.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Type, 128)}
	r.registerBuiltins()
	return r
}

// Register adds or replaces the entry for t.Name.
func (r *Registry) Register(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[t.Name] = t
}

// Lookup returns the Type registered under name, if any.
func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Names returns every registered type name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	return out
}

// Builtins is the process-wide registry of the standard scalar/aggregate
// types, a single shared singleton rather than one instance per caller.
var Builtins = NewRegistry()

func (r *Registry) registerBuiltins() {
	scalar := func(name string, k Kind, unit string) {
		r.byName[name] = Type{Name: name, Kind: k, DefaultUnit: unit}
		r.byName[name+"[]"] = Type{Name: name + "[]", Kind: Array, IsArray: true, DefaultUnit: unit}
	}
	scalar("bool", Bool, "")
	scalar("uchar", UInt, "")
	scalar("int", Int, "")
	scalar("uint", UInt, "")
	scalar("int64", Int64, "")
	scalar("uint64", UInt64, "")
	scalar("half", Half, "")
	scalar("float", Float, "")
	scalar("double", Double, "")
	scalar("timecode", TimeCode, "")
	scalar("token", Token, "")
	scalar("string", String, "")
	scalar("asset", AssetPath, "")
	scalar("pathExpression", PathExpression, "")
	scalar("opaque", Opaque, "")

	prec := map[string]Precision{"h": PrecisionHalf, "f": PrecisionFloat, "d": PrecisionDouble}
	role := map[string]Role{
		"point":    RolePoint,
		"normal":   RoleNormal,
		"color":    RoleColor,
		"vector":   RoleVector,
		"texCoord": RoleTexCoord,
	}
	roleTag := map[string]string{
		"point": "point", "normal": "normal", "color": "color",
		"vector": "vector", "texCoord": "texCoord",
	}
	for roleName, roleVal := range role {
		dims := []int{2, 3, 4}
		if roleName == "texCoord" {
			dims = []int{2, 3}
		}
		for _, dim := range dims {
			for suffix, p := range prec {
				name := roleTagName(roleTag[roleName], dim, suffix)
				r.byName[name] = Type{Name: name, Kind: Vector, Role: roleVal, Dim: dim, Precision: p}
				r.byName[name+"[]"] = Type{Name: name + "[]", Kind: Array, IsArray: true, Role: roleVal, Dim: dim, Precision: p}
			}
		}
	}
	for _, dim := range []int{2, 3, 4} {
		for suffix, p := range prec {
			name := "matrix" + itoa(dim) + suffix
			r.byName[name] = Type{Name: name, Kind: Matrix, Role: RoleMatrix, Dim: dim, Precision: p}
			r.byName[name+"[]"] = Type{Name: name + "[]", Kind: Array, IsArray: true, Role: RoleMatrix, Dim: dim, Precision: p}
		}
		name := "int" + itoa(dim)
		r.byName[name] = Type{Name: name, Kind: IntVector, Dim: dim}
		r.byName[name+"[]"] = Type{Name: name + "[]", Kind: Array, IsArray: true, Dim: dim}
	}
	for suffix, p := range prec {
		name := "quat" + suffix
		r.byName[name] = Type{Name: name, Kind: Quaternion, Role: RoleQuaternion, Dim: 4, Precision: p}
	}
	r.byName["dictionary"] = Type{Name: "dictionary", Kind: Dictionary}
	r.byName["timeSamples"] = Type{Name: "timeSamples", Kind: TimeSamples}
	r.byName["listOp"] = Type{Name: "listOp", Kind: ListOp}
	r.byName["path"] = Type{Name: "path", Kind: ScenePath}
	r.byName["layerOffset"] = Type{Name: "layerOffset", Kind: LayerOffset}
	r.byName["reference"] = Type{Name: "reference", Kind: Reference}
	r.byName["payload"] = Type{Name: "payload", Kind: Payload}
}

func roleTagName(roleTag string, dim int, suffix string) string {
	if roleTag == "texCoord" {
		return roleTag + itoa(dim) + suffix
	}
	return roleTag + itoa(dim) + suffix
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return "?"
}
