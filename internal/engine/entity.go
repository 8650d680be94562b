package engine

import (
	"reflect"
)

// EntityID is the handle of an entity inside its Scene. Zero is the null entity.
type EntityID uint32

const NullEntity EntityID = 0

// Entity is a lightweight handle; copying it is cheap and all state lives in
// the owning Scene.
type Entity struct {
	id    EntityID
	scene *Scene
}

type entityRecord struct {
	components []Component
	index      map[reflect.Type]int
}

func newEntityRecord() *entityRecord {
	return &entityRecord{
		components: make([]Component, 0, 4),
		index:      make(map[reflect.Type]int),
	}
}

func (r *entityRecord) reindex() {
	clear(r.index)
	for i, c := range r.components {
		r.index[reflect.TypeOf(c)] = i
	}
}

func (e Entity) ID() EntityID {
	return e.id
}

func (e Entity) Scene() *Scene {
	return e.scene
}

// Valid reports whether the entity still exists in its scene.
func (e Entity) Valid() bool {
	return e.record() != nil
}

func (e Entity) record() *entityRecord {
	if e.scene == nil || e.id == NullEntity {
		return nil
	}
	return e.scene.records[e.id]
}

// Name returns the TagComponent text, or "" if the entity is untagged.
func (e Entity) Name() string {
	if tag, ok := Get[*TagComponent](e); ok {
		return tag.Tag
	}
	return ""
}

// Components returns the attached components in the order they were added.
func (e Entity) Components() []Component {
	r := e.record()
	if r == nil {
		return nil
	}
	out := make([]Component, len(r.components))
	copy(out, r.components)
	return out
}

// AddComponent attaches c, replacing any component of the same type in place.
// Adding to an invalid entity is a no-op.
func (e Entity) AddComponent(c Component) Component {
	r := e.record()
	if r == nil || c == nil {
		return c
	}
	t := reflect.TypeOf(c)
	if i, ok := r.index[t]; ok {
		r.components[i] = c
		return c
	}
	r.index[t] = len(r.components)
	r.components = append(r.components, c)
	return c
}

func (e Entity) Component(t reflect.Type) (Component, bool) {
	r := e.record()
	if r == nil {
		return nil, false
	}
	i, ok := r.index[t]
	if !ok {
		return nil, false
	}
	return r.components[i], true
}

func (e Entity) HasComponentType(t reflect.Type) bool {
	_, ok := e.Component(t)
	return ok
}

func (e Entity) RemoveComponentType(t reflect.Type) bool {
	r := e.record()
	if r == nil {
		return false
	}
	i, ok := r.index[t]
	if !ok {
		return false
	}
	removed := r.components[i]
	r.components = append(r.components[:i], r.components[i+1:]...)
	r.reindex()
	e.scene.OnComponentRemoved.Invoke(ComponentEvent{Entity: e, Component: removed})
	return true
}

// FindByGUID returns the attached component with the given GUID.
func (e Entity) FindByGUID(g GUID) (Component, bool) {
	if g == 0 {
		return nil, false
	}
	r := e.record()
	if r == nil {
		return nil, false
	}
	for _, c := range r.components {
		if GUIDOf(c) == g {
			return c, true
		}
	}
	return nil, false
}

// RemoveByGUID detaches the component with the given GUID, whatever its type.
func (e Entity) RemoveByGUID(g GUID) bool {
	c, ok := e.FindByGUID(g)
	if !ok {
		return false
	}
	return e.RemoveComponentType(reflect.TypeOf(c))
}

// Get returns the component of type T attached to e.
func Get[T Component](e Entity) (T, bool) {
	var zero T
	c, ok := e.Component(reflect.TypeFor[T]())
	if !ok {
		return zero, false
	}
	typed, ok := c.(T)
	return typed, ok
}

func Has[T Component](e Entity) bool {
	return e.HasComponentType(reflect.TypeFor[T]())
}

func Remove[T Component](e Entity) bool {
	return e.RemoveComponentType(reflect.TypeFor[T]())
}

// Add attaches c and returns it typed, for chaining on construction.
func Add[T Component](e Entity, c T) T {
	e.AddComponent(c)
	return c
}
