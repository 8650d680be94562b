package engine

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Parent returns the entity referenced by e's TransformComponent.Parent.
func Parent(e Entity) (Entity, bool) {
	t, ok := Get[*TransformComponent](e)
	if !ok {
		return Entity{}, false
	}
	return e.scene.Entity(t.Parent)
}

// SetParent links child under parent. A zero-value parent detaches the child.
func SetParent(child, parent Entity) error {
	t, ok := Get[*TransformComponent](child)
	if !ok {
		return fmt.Errorf("set parent: entity %d has no transform", child.id)
	}
	if !parent.Valid() {
		t.Parent = NullEntity
		return nil
	}
	if parent.scene != child.scene {
		return fmt.Errorf("set parent: entities %d and %d belong to different scenes", child.id, parent.id)
	}
	seen := make(map[EntityID]bool)
	for p, ok := parent, true; ok && !seen[p.id]; p, ok = Parent(p) {
		seen[p.id] = true
		if p.id == child.id {
			return fmt.Errorf("set parent: %d is an ancestor of %d", child.id, parent.id)
		}
	}
	t.Parent = parent.id
	return nil
}

// Children returns the direct children of e in creation order.
func Children(e Entity) []Entity {
	var out []Entity
	for _, other := range e.scene.Entities() {
		if t, ok := Get[*TransformComponent](other); ok && t.Parent == e.id && other.id != e.id {
			out = append(out, other)
		}
	}
	return out
}

// Descendants returns every entity below e, depth first.
func Descendants(e Entity) []Entity {
	var out []Entity
	visited := map[EntityID]bool{e.id: true}
	var walk func(Entity)
	walk = func(n Entity) {
		for _, c := range Children(n) {
			if visited[c.id] {
				continue
			}
			visited[c.id] = true
			out = append(out, c)
			walk(c)
		}
	}
	walk(e)
	return out
}

// WorldMatrix multiplies the local matrices from the root down to e. A parent
// cycle in loaded data stops the walk at the first repeated entity.
func WorldMatrix(e Entity) mgl32.Mat4 {
	m := mgl32.Ident4()
	seen := make(map[EntityID]bool)
	for cur, ok := e, true; ok && !seen[cur.id]; cur, ok = Parent(cur) {
		seen[cur.id] = true
		t, has := Get[*TransformComponent](cur)
		if !has {
			break
		}
		m = t.LocalMatrix().Mul4(m)
	}
	return m
}

func WorldPosition(e Entity) mgl32.Vec3 {
	return WorldMatrix(e).Col(3).Vec3()
}
