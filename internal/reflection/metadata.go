package reflection

import (
	"fmt"
	"reflect"

	"mirgoscene/internal/engine"
)

// Factory creates a zero component of a registered type.
type Factory func() engine.Component

// ComponentMetadata is the ordered property list of one component type.
type ComponentMetadata struct {
	name    string
	typ     reflect.Type
	factory Factory
	props   []*Property
	byName  map[string]*Property
	byKey   map[string]*Property
}

func newMetadata(name string, typ reflect.Type, factory Factory) *ComponentMetadata {
	return &ComponentMetadata{
		name:    name,
		typ:     typ,
		factory: factory,
		byName:  make(map[string]*Property),
		byKey:   make(map[string]*Property),
	}
}

func (m *ComponentMetadata) Name() string {
	return m.name
}

func (m *ComponentMetadata) Type() reflect.Type {
	return m.typ
}

// New returns a fresh component from the registered factory.
func (m *ComponentMetadata) New() engine.Component {
	return m.factory()
}

// Properties returns the properties in registration order.
func (m *ComponentMetadata) Properties() []*Property {
	return append([]*Property(nil), m.props...)
}

func (m *ComponentMetadata) Property(name string) (*Property, bool) {
	p, ok := m.byName[name]
	return p, ok
}

// PropertyForKey resolves a document key, accepting aliases.
func (m *ComponentMetadata) PropertyForKey(key string) (*Property, bool) {
	p, ok := m.byKey[key]
	return p, ok
}

// AddProperty appends a property. Names must be unique within the component;
// a duplicate is a registration bug and panics.
func (m *ComponentMetadata) AddProperty(name string, typ ValueType, get Getter, set Setter) *Property {
	if !typ.Valid() {
		panic(fmt.Sprintf("reflection: %s.%s has invalid value type %d", m.name, name, typ))
	}
	if get == nil || set == nil {
		panic(fmt.Sprintf("reflection: %s.%s needs a getter and a setter", m.name, name))
	}
	if _, dup := m.byKey[name]; dup {
		panic(fmt.Sprintf("reflection: duplicate property %s.%s", m.name, name))
	}
	p := &Property{name: name, typ: typ, owner: m.typ, get: get, set: set}
	m.props = append(m.props, p)
	m.byName[name] = p
	m.byKey[name] = p
	return p
}

// Alias makes alias an accepted key for the named property on read.
func (m *ComponentMetadata) Alias(name, alias string) *ComponentMetadata {
	p, ok := m.byName[name]
	if !ok {
		panic(fmt.Sprintf("reflection: alias %q for unknown property %s.%s", alias, m.name, name))
	}
	if _, dup := m.byKey[alias]; dup {
		panic(fmt.Sprintf("reflection: alias %q already used on %s", alias, m.name))
	}
	p.aliases = append(p.aliases, alias)
	m.byKey[alias] = p
	return m
}

// Field registers a property backed by a struct field. The accessor returns a
// pointer to the field of a component of type C.
//
//	reflection.Field(meta, "Mass", reflection.TypeFloat, func(c *Rigidbody) *float32 { return &c.Mass })
func Field[C engine.Component, V any](m *ComponentMetadata, name string, typ ValueType, field func(C) *V) *Property {
	if ct := reflect.TypeFor[C](); ct != m.typ {
		panic(fmt.Sprintf("reflection: %s.%s accessor takes %s, want %s", m.name, name, ct, m.typ))
	}
	if vt := reflect.TypeFor[V](); vt != typ.GoType() {
		panic(fmt.Sprintf("reflection: %s.%s is %s but declared %s", m.name, name, vt, typ))
	}
	return m.AddProperty(name, typ,
		func(c engine.Component) any { return *field(c.(C)) },
		func(c engine.Component, v any) { *field(c.(C)) = v.(V) },
	)
}
