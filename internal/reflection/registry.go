// Package reflection describes component types as ordered lists of typed
// properties so serializers can walk any registered component generically.
package reflection

import (
	"fmt"
	"reflect"
	"sort"

	"mirgoscene/internal/engine"
)

// Registry maps component types to their metadata. Registration happens once
// at startup on a single goroutine; lookups afterwards are read-only.
type Registry struct {
	byType map[reflect.Type]*ComponentMetadata
	byName map[string]reflect.Type
}

func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*ComponentMetadata),
		byName: make(map[string]reflect.Type),
	}
}

// Register creates the metadata for T under name and returns it for property
// registration. Registering a name or a type again replaces the earlier entry.
// A nil factory allocates a zero T.
func Register[T engine.Component](r *Registry, name string, factory func() T) *ComponentMetadata {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("reflection: component %s must be a pointer to a struct", typ))
	}
	if name == "" {
		panic(fmt.Sprintf("reflection: empty name for %s", typ))
	}
	newFn := func() engine.Component { return reflect.New(typ.Elem()).Interface() }
	if factory != nil {
		newFn = func() engine.Component { return factory() }
	}

	if old, ok := r.byName[name]; ok && old != typ {
		delete(r.byType, old)
	}
	if old, ok := r.byType[typ]; ok && old.name != name {
		delete(r.byName, old.name)
	}

	m := newMetadata(name, typ, newFn)
	r.byType[typ] = m
	r.byName[name] = typ
	return m
}

// MetadataOf returns the metadata registered for T.
func MetadataOf[T engine.Component](r *Registry) (*ComponentMetadata, bool) {
	return r.MetadataForType(reflect.TypeFor[T]())
}

func (r *Registry) MetadataForType(t reflect.Type) (*ComponentMetadata, bool) {
	m, ok := r.byType[t]
	return m, ok
}

// MetadataFor returns the metadata of c's concrete type.
func (r *Registry) MetadataFor(c engine.Component) (*ComponentMetadata, bool) {
	if c == nil {
		return nil, false
	}
	return r.MetadataForType(reflect.TypeOf(c))
}

// Lookup finds metadata by registered name.
func (r *Registry) Lookup(name string) (*ComponentMetadata, bool) {
	t, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.MetadataForType(t)
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Len() int {
	return len(r.byType)
}
