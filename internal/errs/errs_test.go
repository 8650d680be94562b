package errs

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := IO("open scene", "missing.json", os.ErrNotExist)

	assert.True(t, errors.Is(err, ErrIO))
	assert.False(t, errors.Is(err, ErrParse))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestIsThroughWrap(t *testing.T) {
	err := pkgerrors.Wrap(Schema("decode scene", "missing %q", "Entities"), "load")

	assert.True(t, errors.Is(err, ErrSchema))
	assert.Equal(t, KindSchema, KindOf(err))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := Parse("decode scene", 17, errors.New("invalid character"))
	assert.Equal(t, "ParseError: decode scene at offset 17: invalid character", err.Error())

	err = Lookup("instantiate", "prefab %d not found", 42)
	assert.Equal(t, "LookupError: instantiate: prefab 42 not found", err.Error())

	err = IO("write scene", "out.json", errors.New("denied"))
	assert.Equal(t, `IOError: write scene "out.json": denied`, err.Error())
}

func TestJSONKeepsOffset(t *testing.T) {
	var v map[string]any
	err := JSON("decode scene", json.Unmarshal([]byte(`{"a": }`), &v))
	assert.Equal(t, KindParse, err.Kind)
	assert.Equal(t, int64(7), err.Offset, "offset counts the offending byte")

	var n struct{ A int }
	err = JSON("decode scene", json.Unmarshal([]byte(`{"A": "x"}`), &n))
	assert.Equal(t, KindParse, err.Kind)
	assert.Greater(t, err.Offset, int64(0))

	err = JSON("decode scene", errors.New("other"))
	assert.Equal(t, int64(-1), err.Offset)
}
