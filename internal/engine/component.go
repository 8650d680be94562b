package engine

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"strconv"

	"github.com/google/uuid"
)

// Component is any pointer to a component struct. An entity holds at most one
// component per concrete type.
type Component interface{}

// GUID identifies a component instance across save and load.
type GUID uint64

// NewGUID returns a random non-zero GUID.
func NewGUID() GUID {
	for {
		u := uuid.New()
		g := GUID(binary.LittleEndian.Uint64(u[:8]) ^ binary.LittleEndian.Uint64(u[8:]))
		if g != 0 {
			return g
		}
	}
}

func (g GUID) String() string {
	return strconv.FormatUint(uint64(g), 10)
}

// ParseGUID reads the decimal form written by String.
func ParseGUID(s string) (GUID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse guid %q: %w", s, err)
	}
	return GUID(v), nil
}

// MarshalText writes the decimal form, so JSON carries GUIDs as strings.
func (g GUID) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(g), 10), nil
}

func (g *GUID) UnmarshalText(text []byte) error {
	v, err := ParseGUID(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// Identifiable is implemented by components carrying a GUID.
type Identifiable interface {
	ComponentGUID() GUID
	SetComponentGUID(g GUID)
}

// Identity provides the Identifiable implementation to embedding components.
type Identity struct {
	guid GUID
}

func NewIdentity() Identity {
	return Identity{guid: NewGUID()}
}

func (i *Identity) ComponentGUID() GUID {
	return i.guid
}

func (i *Identity) SetComponentGUID(g GUID) {
	i.guid = g
}

// GUIDOf returns the GUID of c, or 0 if c carries no identity.
func GUIDOf(c Component) GUID {
	if id, ok := c.(Identifiable); ok {
		return id.ComponentGUID()
	}
	return 0
}

// TypeOf returns the storage key of c.
func TypeOf(c Component) reflect.Type {
	return reflect.TypeOf(c)
}
