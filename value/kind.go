// Package value implements the type-erased Value holder and the type
// registry: a discriminated union over every scalar, aggregate, array,
// and structural value kind the data store can hold, plus a registry
// mapping type-name tokens to their concrete shape.
package value

// Kind enumerates every concrete shape a Value can hold.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Int
	UInt
	Int64
	UInt64
	Half
	Float
	Double
	TimeCode
	Token
	String
	AssetPath
	PathExpression
	Opaque // opaque-placeholder sentinel

	Vector    // point/normal/color/vector/texcoord, dim 2/3/4, at half/float/double
	IntVector // int vector, dim 2/3/4
	Quaternion
	Matrix // dim 2/3/4

	Array // homogeneous array of any scalar/aggregate kind above
	Dictionary
	TimeSamples
	ListOp // one of {path, reference, payload, string, token, int32, uint32, int64, uint64, unregistered-value}
	ScenePath
	LayerOffset
	Reference
	Payload
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Int64:
		return "int64"
	case UInt64:
		return "uint64"
	case Half:
		return "half"
	case Float:
		return "float"
	case Double:
		return "double"
	case TimeCode:
		return "timecode"
	case Token:
		return "token"
	case String:
		return "string"
	case AssetPath:
		return "asset-path"
	case PathExpression:
		return "path-expression"
	case Opaque:
		return "opaque"
	case Vector:
		return "vector"
	case IntVector:
		return "int-vector"
	case Quaternion:
		return "quaternion"
	case Matrix:
		return "matrix"
	case Array:
		return "array"
	case Dictionary:
		return "dictionary"
	case TimeSamples:
		return "time-samples"
	case ListOp:
		return "list-op"
	case ScenePath:
		return "scene-path"
	case LayerOffset:
		return "layer-offset"
	case Reference:
		return "reference"
	case Payload:
		return "payload"
	default:
		return "unknown"
	}
}

// Precision distinguishes the floating-width family of an aggregate type.
type Precision uint8

const (
	PrecisionNone Precision = iota
	PrecisionHalf
	PrecisionFloat
	PrecisionDouble
)

// Role distinguishes the geometric role of an aggregate type, independent
// of its numeric shape: a Point3d and a Vector3d have the same dim and
// precision but different roles.
type Role uint8

const (
	RoleNone Role = iota
	RolePoint
	RoleNormal
	RoleColor
	RoleVector
	RoleTexCoord
	RoleQuaternion
	RoleMatrix
)

func (r Role) String() string {
	switch r {
	case RolePoint:
		return "point"
	case RoleNormal:
		return "normal"
	case RoleColor:
		return "color"
	case RoleVector:
		return "vector"
	case RoleTexCoord:
		return "texcoord"
	case RoleQuaternion:
		return "quaternion"
	case RoleMatrix:
		return "matrix"
	default:
		return "none"
	}
}
