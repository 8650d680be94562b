package reflection

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/mathx"
)

// ValueType is the declared type tag of a Property.
type ValueType uint8

const (
	TypeBool ValueType = iota + 1
	TypeU32
	TypeInt
	TypeFloat
	TypeString
	TypeVec2
	TypeVec3
	TypeVec4
	TypeQuat
	TypeEntity
)

var valueTypeNames = map[ValueType]string{
	TypeBool:   "Bool",
	TypeU32:    "U32",
	TypeInt:    "Int",
	TypeFloat:  "Float",
	TypeString: "String",
	TypeVec2:   "Vec2",
	TypeVec3:   "Vec3",
	TypeVec4:   "Vec4",
	TypeQuat:   "Quat",
	TypeEntity: "Entity",
}

var goTypes = map[ValueType]reflect.Type{
	TypeBool:   reflect.TypeFor[bool](),
	TypeU32:    reflect.TypeFor[uint32](),
	TypeInt:    reflect.TypeFor[int](),
	TypeFloat:  reflect.TypeFor[float32](),
	TypeString: reflect.TypeFor[string](),
	TypeVec2:   reflect.TypeFor[mgl32.Vec2](),
	TypeVec3:   reflect.TypeFor[mgl32.Vec3](),
	TypeVec4:   reflect.TypeFor[mgl32.Vec4](),
	TypeQuat:   reflect.TypeFor[mgl32.Quat](),
	TypeEntity: reflect.TypeFor[engine.EntityID](),
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return "ValueType(" + strconv.Itoa(int(t)) + ")"
}

func (t ValueType) Valid() bool {
	_, ok := goTypes[t]
	return ok
}

// GoType is the Go type values of t are held in.
func (t ValueType) GoType() reflect.Type {
	return goTypes[t]
}

// Components is the number of float components of a vector-like type, 0 otherwise.
// Quaternions count their three Euler angles.
func (t ValueType) Components() int {
	switch t {
	case TypeVec2:
		return 2
	case TypeVec3, TypeQuat:
		return 3
	case TypeVec4:
		return 4
	default:
		return 0
	}
}

// Zero returns the default value for t.
func Zero(t ValueType) any {
	switch t {
	case TypeQuat:
		return mgl32.QuatIdent()
	default:
		gt := goTypes[t]
		if gt == nil {
			return nil
		}
		return reflect.Zero(gt).Interface()
	}
}

// Coerce converts v to the Go type of t. Numeric conversions are allowed when
// they lose nothing but float precision.
func Coerce(t ValueType, v any) (any, error) {
	if t == TypeFloat {
		if f, ok := toFloat(v); ok {
			if !finite(f) {
				return nil, errors.Errorf("%s must be finite, got %v", t, f)
			}
			return float32(f), nil
		}
	}
	if gt := goTypes[t]; gt != nil && reflect.TypeOf(v) == gt {
		return v, nil
	}
	switch t {
	case TypeInt:
		if i, ok := toInteger(v); ok && i >= math.MinInt && i <= math.MaxInt {
			return int(i), nil
		}
	case TypeU32:
		if i, ok := toInteger(v); ok && i >= 0 && i <= math.MaxUint32 {
			return uint32(i), nil
		}
	case TypeEntity:
		if i, ok := toInteger(v); ok && i >= 0 && i <= math.MaxUint32 {
			return engine.EntityID(i), nil
		}
	case TypeVec2:
		if a, ok := v.([2]float32); ok {
			return mgl32.Vec2(a), nil
		}
	case TypeVec3:
		if a, ok := v.([3]float32); ok {
			return mgl32.Vec3(a), nil
		}
	case TypeVec4:
		if a, ok := v.([4]float32); ok {
			return mgl32.Vec4(a), nil
		}
	}
	return nil, errors.Errorf("cannot use %T as %s", v, t)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}

func toInteger(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case engine.EntityID:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return int64(n), true
		}
	}
	return 0, false
}

// FormatValue renders v in the text encoding used by override records:
// "true"/"false", decimal integers, shortest floats, comma-joined vectors and
// quaternions as raw x,y,z,w.
func FormatValue(t ValueType, v any) (string, error) {
	v, err := Coerce(t, v)
	if err != nil {
		return "", err
	}
	switch t {
	case TypeBool:
		return strconv.FormatBool(v.(bool)), nil
	case TypeU32:
		return strconv.FormatUint(uint64(v.(uint32)), 10), nil
	case TypeInt:
		return strconv.Itoa(v.(int)), nil
	case TypeFloat:
		return formatFloat(v.(float32)), nil
	case TypeString:
		return v.(string), nil
	case TypeVec2:
		a := v.(mgl32.Vec2)
		return joinFloats(a[:]), nil
	case TypeVec3:
		a := v.(mgl32.Vec3)
		return joinFloats(a[:]), nil
	case TypeVec4:
		a := v.(mgl32.Vec4)
		return joinFloats(a[:]), nil
	case TypeQuat:
		q := v.(mgl32.Quat)
		return joinFloats([]float32{q.V.X(), q.V.Y(), q.V.Z(), q.W}), nil
	case TypeEntity:
		return strconv.FormatUint(uint64(v.(engine.EntityID)), 10), nil
	}
	return "", errors.Errorf("format: unknown value type %s", t)
}

// ParseValue is the inverse of FormatValue. Quaternions also accept three
// Euler angles in degrees.
func ParseValue(t ValueType, s string) (any, error) {
	switch t {
	case TypeBool:
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, errors.Errorf("parse %s: %q is not true or false", t, s)
	case TypeU32:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", t)
		}
		return uint32(n), nil
	case TypeInt:
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", t)
		}
		return n, nil
	case TypeFloat:
		f, err := parseFloat(s)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", t)
		}
		return f, nil
	case TypeString:
		return s, nil
	case TypeVec2, TypeVec3, TypeVec4:
		fs, err := splitFloats(s)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", t)
		}
		return vectorFromFloats(t, fs)
	case TypeQuat:
		fs, err := splitFloats(s)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", t)
		}
		q, err := quatFromFloats(fs)
		if err != nil {
			return nil, err
		}
		return q, nil
	case TypeEntity:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", t)
		}
		return engine.EntityID(n), nil
	}
	return nil, errors.Errorf("parse: unknown value type %s", t)
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func joinFloats(fs []float32) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, ",")
}

func splitFloats(s string) ([]float32, error) {
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := parseFloat(p)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// parseFloat rejects NaN and infinities, which JSON cannot carry.
func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, err
	}
	if !finite(f) {
		return 0, errors.Errorf("%q is not a finite number", s)
	}
	return float32(f), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func vectorFromFloats(t ValueType, fs []float32) (any, error) {
	if len(fs) != t.Components() {
		return nil, errors.Errorf("%s needs %d components, got %d", t, t.Components(), len(fs))
	}
	switch t {
	case TypeVec2:
		return mgl32.Vec2{fs[0], fs[1]}, nil
	case TypeVec3:
		return mgl32.Vec3{fs[0], fs[1], fs[2]}, nil
	default:
		return mgl32.Vec4{fs[0], fs[1], fs[2], fs[3]}, nil
	}
}

// quatFromFloats reads three Euler degrees or a raw x,y,z,w quaternion.
func quatFromFloats(fs []float32) (mgl32.Quat, error) {
	switch len(fs) {
	case 3:
		return mathx.EulerToQuat(mgl32.Vec3{fs[0], fs[1], fs[2]}), nil
	case 4:
		return mgl32.Quat{W: fs[3], V: mgl32.Vec3{fs[0], fs[1], fs[2]}}, nil
	default:
		return mgl32.Quat{}, errors.Errorf("Quat needs 3 Euler angles or 4 components, got %d", len(fs))
	}
}
