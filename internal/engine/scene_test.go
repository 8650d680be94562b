package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSceneCreateEntity(t *testing.T) {
	scene := NewScene("Test")
	var created []EntityID
	scene.OnEntityCreated.AddListener(func(e Entity) { created = append(created, e.ID()) })

	e1 := scene.CreateEntity("Player")
	e2 := scene.CreateEntity("Enemy")

	if scene.EntityCount() != 2 {
		t.Errorf("Expected 2 entities, got %d", scene.EntityCount())
	}
	if e1.ID() == e2.ID() {
		t.Error("Entities should have unique IDs")
	}
	if e1.ID() == NullEntity {
		t.Error("ID should not be the null entity")
	}
	if len(created) != 2 {
		t.Errorf("Expected 2 created events, got %d", len(created))
	}
}

func TestSceneEntityLookup(t *testing.T) {
	scene := NewScene("Test")
	e := scene.CreateEntity("Player")

	found, ok := scene.Entity(e.ID())
	if !ok || found != e {
		t.Errorf("Entity lookup failed: expected %v, got %v", e, found)
	}

	if _, ok := scene.Entity(99999); ok {
		t.Error("Entity should report false for a non-existent ID")
	}
	if _, ok := scene.Entity(NullEntity); ok {
		t.Error("Entity should report false for the null ID")
	}

	var nilScene *Scene
	if _, ok := nilScene.Entity(1); ok {
		t.Error("nil scene should resolve nothing")
	}
}

func TestSceneDestroyEntity(t *testing.T) {
	scene := NewScene("Test")
	obj1 := scene.CreateEntity("Player")
	obj2 := scene.CreateEntity("Enemy")

	if !scene.DestroyEntity(obj1) {
		t.Fatal("DestroyEntity failed")
	}

	if scene.EntityCount() != 1 {
		t.Errorf("Expected 1 entity after removal, got %d", scene.EntityCount())
	}
	if scene.Entities()[0] != obj2 {
		t.Error("Wrong entity removed")
	}
	if obj1.Valid() {
		t.Error("Destroyed entity should be invalid")
	}
	if scene.DestroyEntity(obj1) {
		t.Error("Destroying twice should report false")
	}
}

func TestSceneDestroyDetachesChildren(t *testing.T) {
	scene := NewScene("Test")
	parent := scene.CreateEntity("Parent")
	child := scene.CreateEntity("Child")
	if err := SetParent(child, parent); err != nil {
		t.Fatalf("SetParent failed: %v", err)
	}

	scene.DestroyEntity(parent)

	if _, ok := Parent(child); ok {
		t.Error("Child should be detached after the parent is destroyed")
	}
}

func TestSceneFindByTag(t *testing.T) {
	scene := NewScene("Test")
	scene.CreateEntity("Enemy")
	player := scene.CreateEntity("UniquePlayer")

	found, ok := scene.FindByTag("UniquePlayer")
	if !ok || found != player {
		t.Error("FindByTag failed")
	}

	if _, ok := scene.FindByTag("DoesNotExist"); ok {
		t.Error("FindByTag should report false for a non-existent tag")
	}
}

func TestSceneCreateEntityWithID(t *testing.T) {
	scene := NewScene("Test")

	e, err := scene.CreateEntityWithID(7)
	if err != nil {
		t.Fatalf("CreateEntityWithID failed: %v", err)
	}
	if e.ID() != 7 {
		t.Errorf("Expected ID 7, got %d", e.ID())
	}
	if _, err := scene.CreateEntityWithID(7); err == nil {
		t.Error("Reusing an ID should fail")
	}
	if _, err := scene.CreateEntityWithID(NullEntity); err == nil {
		t.Error("ID 0 should be rejected")
	}

	next := scene.CreateEmptyEntity()
	if next.ID() != 8 {
		t.Errorf("Expected next ID 8, got %d", next.ID())
	}
}

func TestSceneClearAndReplace(t *testing.T) {
	scene := NewScene("Old")
	old, err := scene.CreateEntityWithID(50)
	if err != nil {
		t.Fatal(err)
	}

	staging := NewScene("New")
	a := staging.CreateEntity("A")
	staging.CreateEntity("B")

	scene.ReplaceContents(staging)

	if scene.Name() != "New" {
		t.Errorf("Expected name 'New', got '%s'", scene.Name())
	}
	if scene.EntityCount() != 2 {
		t.Errorf("Expected 2 entities, got %d", scene.EntityCount())
	}
	if old.Valid() {
		t.Error("Entity from the replaced content should be invalid")
	}
	moved, ok := scene.Entity(a.ID())
	if !ok || moved.Name() != "A" {
		t.Error("Moved entity should resolve in the target scene")
	}
	if staging.EntityCount() != 0 {
		t.Error("Source scene should be empty after ReplaceContents")
	}

	scene.Clear()
	if scene.EntityCount() != 0 {
		t.Error("Clear should remove every entity")
	}
}

func TestHierarchy(t *testing.T) {
	scene := NewScene("Test")
	root := scene.CreateEntity("Root")
	child := scene.CreateEntity("Child")
	grandchild := scene.CreateEntity("Grandchild")

	if err := SetParent(child, root); err != nil {
		t.Fatal(err)
	}
	if err := SetParent(grandchild, child); err != nil {
		t.Fatal(err)
	}
	if err := SetParent(root, grandchild); err == nil {
		t.Error("SetParent should reject cycles")
	}

	if len(Children(root)) != 1 {
		t.Errorf("Expected 1 child, got %d", len(Children(root)))
	}
	desc := Descendants(root)
	if len(desc) != 2 || desc[0] != child || desc[1] != grandchild {
		t.Errorf("Unexpected descendants %v", desc)
	}

	rootTr, _ := Get[*TransformComponent](root)
	rootTr.Position = mgl32.Vec3{1, 0, 0}
	childTr, _ := Get[*TransformComponent](child)
	childTr.Position = mgl32.Vec3{0, 2, 0}

	pos := WorldPosition(grandchild)
	if !pos.ApproxEqualThreshold(mgl32.Vec3{1, 2, 0}, 1e-5) {
		t.Errorf("Expected world position (1,2,0), got %v", pos)
	}

	if err := SetParent(child, Entity{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := Parent(child); ok {
		t.Error("Child should be detached")
	}
}

func TestEventRemoveListener(t *testing.T) {
	var ev EventWithArg[int]
	sum := 0
	id := ev.AddListener(func(v int) { sum += v })
	ev.AddListener(func(v int) { sum += 10 * v })

	if ev.AddListener(nil) != 0 {
		t.Error("nil listener should be ignored")
	}

	ev.Invoke(1)
	if sum != 11 {
		t.Errorf("Expected 11, got %d", sum)
	}

	if !ev.RemoveListener(id) {
		t.Fatal("RemoveListener failed")
	}
	ev.Invoke(1)
	if sum != 21 {
		t.Errorf("Expected 21, got %d", sum)
	}
	if ev.GetListenerCount() != 1 {
		t.Errorf("Expected 1 listener, got %d", ev.GetListenerCount())
	}
	ev.RemoveAllListeners()
	if ev.GetListenerCount() != 0 {
		t.Error("RemoveAllListeners should clear listeners")
	}
}
