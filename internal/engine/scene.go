package engine

import (
	"fmt"
)

// Scene owns entities and their components. It is not safe for concurrent use.
type Scene struct {
	name    string
	records map[EntityID]*entityRecord
	order   []EntityID
	nextID  EntityID

	OnEntityCreated    EventWithArg[Entity]
	OnEntityDestroyed  EventWithArg[Entity]
	OnComponentRemoved EventWithArg[ComponentEvent]
}

// ComponentEvent carries the entity a component was detached from.
type ComponentEvent struct {
	Entity    Entity
	Component Component
}

func NewScene(name string) *Scene {
	return &Scene{
		name:    name,
		records: make(map[EntityID]*entityRecord),
		order:   make([]EntityID, 0),
		nextID:  1,
	}
}

func (s *Scene) Name() string {
	return s.name
}

func (s *Scene) SetName(name string) {
	s.name = name
}

// CreateEntity creates an entity with a TagComponent and a default TransformComponent.
func (s *Scene) CreateEntity(name string) Entity {
	e := s.CreateEmptyEntity()
	e.AddComponent(NewTag(name))
	e.AddComponent(NewTransform())
	return e
}

// CreateEmptyEntity creates an entity with no components.
func (s *Scene) CreateEmptyEntity() Entity {
	for s.records[s.nextID] != nil || s.nextID == NullEntity {
		s.nextID++
	}
	id := s.nextID
	s.nextID++
	return s.insert(id)
}

// CreateEntityWithID creates an empty entity with a specific ID, used when
// restoring saved scenes.
func (s *Scene) CreateEntityWithID(id EntityID) (Entity, error) {
	if id == NullEntity {
		return Entity{}, fmt.Errorf("create entity: id 0 is reserved")
	}
	if s.records[id] != nil {
		return Entity{}, fmt.Errorf("create entity: id %d already in use", id)
	}
	if id >= s.nextID {
		s.nextID = id + 1
	}
	return s.insert(id), nil
}

func (s *Scene) insert(id EntityID) Entity {
	s.records[id] = newEntityRecord()
	s.order = append(s.order, id)
	e := Entity{id: id, scene: s}
	s.OnEntityCreated.Invoke(e)
	return e
}

// DestroyEntity removes e and its components. Children of e are detached
// rather than destroyed.
func (s *Scene) DestroyEntity(e Entity) bool {
	if e.scene != s || s.records[e.id] == nil {
		return false
	}
	s.OnEntityDestroyed.Invoke(e)
	delete(s.records, e.id)
	for i, id := range s.order {
		if id == e.id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	for _, other := range s.Entities() {
		if t, ok := Get[*TransformComponent](other); ok && t.Parent == e.id {
			t.Parent = NullEntity
		}
	}
	return true
}

// Entity resolves an ID. The null ID and unknown IDs report false.
func (s *Scene) Entity(id EntityID) (Entity, bool) {
	if s == nil || id == NullEntity || s.records[id] == nil {
		return Entity{}, false
	}
	return Entity{id: id, scene: s}, true
}

// Entities returns all entities in creation order.
func (s *Scene) Entities() []Entity {
	out := make([]Entity, len(s.order))
	for i, id := range s.order {
		out[i] = Entity{id: id, scene: s}
	}
	return out
}

func (s *Scene) EntityCount() int {
	return len(s.order)
}

// FindByTag returns the first entity whose TagComponent equals tag.
func (s *Scene) FindByTag(tag string) (Entity, bool) {
	for _, e := range s.Entities() {
		if t, ok := Get[*TagComponent](e); ok && t.Tag == tag {
			return e, true
		}
	}
	return Entity{}, false
}

// Clear destroys every entity and resets ID allocation.
func (s *Scene) Clear() {
	for _, e := range s.Entities() {
		s.OnEntityDestroyed.Invoke(e)
	}
	s.records = make(map[EntityID]*entityRecord)
	s.order = s.order[:0]
	s.nextID = 1
}

// ReplaceContents clears s and moves every entity and the name of other into
// it. Handles obtained from other become invalid.
func (s *Scene) ReplaceContents(other *Scene) {
	if other == s {
		return
	}
	s.Clear()
	s.name = other.name
	s.records = other.records
	s.order = append(s.order[:0], other.order...)
	s.nextID = other.nextID

	other.records = make(map[EntityID]*entityRecord)
	other.order = other.order[:0]
	other.nextID = 1

	for _, e := range s.Entities() {
		s.OnEntityCreated.Invoke(e)
	}
}
