package reflection

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/errs"
	"mirgoscene/internal/mathx"
)

// Path addresses a whole property ("Position") or one float component of a
// vector or quaternion property ("Position.x"). Quaternion components are the
// Euler angles in degrees.
type Path struct {
	Property string
	Index    int // -1 for the whole value
}

var componentNames = map[string]int{"x": 0, "y": 1, "z": 2, "w": 3}

// ParsePath splits a property path.
func ParsePath(s string) (Path, error) {
	name, sub, dotted := strings.Cut(s, ".")
	if name == "" {
		return Path{}, errs.Lookup("parse path", "empty property in %q", s)
	}
	if !dotted {
		return Path{Property: name, Index: -1}, nil
	}
	i, ok := componentNames[sub]
	if !ok {
		return Path{}, errs.Lookup("parse path", "unknown component %q in %q", sub, s)
	}
	return Path{Property: name, Index: i}, nil
}

func (p Path) String() string {
	if p.Index < 0 {
		return p.Property
	}
	return p.Property + "." + "xyzw"[p.Index:p.Index+1]
}

// Resolve finds the property a path addresses on m and checks the component
// index against the property type.
func Resolve(m *ComponentMetadata, path string) (*Property, Path, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, Path{}, err
	}
	prop, ok := m.Property(p.Property)
	if !ok {
		return nil, Path{}, errs.Lookup("resolve path", "%s has no property %q", m.Name(), p.Property)
	}
	if p.Index >= 0 && p.Index >= prop.Type().Components() {
		return nil, Path{}, errs.Lookup("resolve path", "%s.%s (%s) has no component %q",
			m.Name(), prop.Name(), prop.Type(), path)
	}
	return prop, p, nil
}

// GetPath reads the value a path addresses: the property value, or a float32
// for a component path.
func GetPath(m *ComponentMetadata, c engine.Component, path string) (any, error) {
	prop, p, err := Resolve(m, path)
	if err != nil {
		return nil, err
	}
	v, err := prop.Get(c)
	if err != nil {
		return nil, err
	}
	if p.Index < 0 {
		return v, nil
	}
	return floats(prop.Type(), v)[p.Index], nil
}

// SetPath writes v at path. Component paths take a number.
func SetPath(m *ComponentMetadata, c engine.Component, path string, v any) error {
	prop, p, err := Resolve(m, path)
	if err != nil {
		return err
	}
	if p.Index < 0 {
		return prop.Set(c, v)
	}
	f, ok := toFloat(v)
	if !ok {
		return errors.Errorf("path %s: cannot use %T as a float", path, v)
	}
	if !finite(f) {
		return errors.Errorf("path %s: %v is not a finite number", path, f)
	}
	cur, err := prop.Get(c)
	if err != nil {
		return err
	}
	fs := floats(prop.Type(), cur)
	fs[p.Index] = float32(f)
	next, err := fromFloats(prop.Type(), fs)
	if err != nil {
		return err
	}
	return prop.Set(c, next)
}

// GetPathString renders the value at path in the text encoding.
func GetPathString(m *ComponentMetadata, c engine.Component, path string) (string, error) {
	prop, p, err := Resolve(m, path)
	if err != nil {
		return "", err
	}
	if p.Index < 0 {
		return prop.ToString(c)
	}
	v, err := GetPath(m, c, path)
	if err != nil {
		return "", err
	}
	return formatFloat(v.(float32)), nil
}

// SetPathString parses s in the text encoding and writes it at path.
func SetPathString(m *ComponentMetadata, c engine.Component, path, s string) error {
	prop, p, err := Resolve(m, path)
	if err != nil {
		return err
	}
	if p.Index < 0 {
		return prop.FromString(c, s)
	}
	f, err := parseFloat(s)
	if err != nil {
		return errors.Wrapf(err, "path %s", path)
	}
	return SetPath(m, c, path, f)
}

func floats(t ValueType, v any) []float32 {
	switch t {
	case TypeVec2:
		a := v.(mgl32.Vec2)
		return a[:]
	case TypeVec3:
		a := v.(mgl32.Vec3)
		return a[:]
	case TypeVec4:
		a := v.(mgl32.Vec4)
		return a[:]
	case TypeQuat:
		e := mathx.QuatToEuler(v.(mgl32.Quat))
		return e[:]
	}
	return nil
}

func fromFloats(t ValueType, fs []float32) (any, error) {
	if t == TypeQuat {
		return mathx.EulerToQuat(mgl32.Vec3{fs[0], fs[1], fs[2]}), nil
	}
	return vectorFromFloats(t, fs)
}
