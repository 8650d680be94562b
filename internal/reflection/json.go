package reflection

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/mathx"
)

// EncodeJSON writes v in the document encoding: JSON scalars, vectors as
// arrays, quaternions as [pitch, yaw, roll] Euler degrees and entities as IDs.
func EncodeJSON(t ValueType, v any) (json.RawMessage, error) {
	v, err := Coerce(t, v)
	if err != nil {
		return nil, err
	}
	var out any
	switch t {
	case TypeQuat:
		out = mathx.QuatToEuler(v.(mgl32.Quat))
	case TypeEntity:
		out = uint32(v.(engine.EntityID))
	default:
		out = v
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", t)
	}
	return data, nil
}

// DecodeJSON reads a value written by EncodeJSON. A quaternion may also be a
// raw [x, y, z, w] array, the layout of version 1.0 prefab files.
func DecodeJSON(t ValueType, raw json.RawMessage) (any, error) {
	switch t {
	case TypeBool:
		return decodeAs[bool](t, raw)
	case TypeU32:
		return decodeAs[uint32](t, raw)
	case TypeInt:
		return decodeAs[int](t, raw)
	case TypeFloat:
		return decodeAs[float32](t, raw)
	case TypeString:
		return decodeAs[string](t, raw)
	case TypeVec2, TypeVec3, TypeVec4:
		var fs []float32
		if err := json.Unmarshal(raw, &fs); err != nil {
			return nil, errors.Wrapf(err, "decode %s", t)
		}
		return vectorFromFloats(t, fs)
	case TypeQuat:
		var fs []float32
		if err := json.Unmarshal(raw, &fs); err != nil {
			return nil, errors.Wrapf(err, "decode %s", t)
		}
		q, err := quatFromFloats(fs)
		if err != nil {
			return nil, err
		}
		return q, nil
	case TypeEntity:
		id, err := decodeAs[uint32](t, raw)
		if err != nil {
			return nil, err
		}
		return engine.EntityID(id.(uint32)), nil
	}
	return nil, errors.Errorf("decode: unknown value type %s", t)
}

func decodeAs[V any](t ValueType, raw json.RawMessage) (any, error) {
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(err, "decode %s", t)
	}
	return v, nil
}
