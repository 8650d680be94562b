package prefab

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mirgoscene/internal/components"
	"mirgoscene/internal/engine"
	"mirgoscene/internal/errs"
	"mirgoscene/internal/log"
	"mirgoscene/internal/mathx"
	"mirgoscene/internal/serialize"
)

type testEnv struct {
	entities   *serialize.EntitySerializer
	serializer *Serializer
	logger     *log.Logger
	logs       *observer.ObservedLogs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger := log.FromZap(zap.New(core))
	entities := serialize.NewEntitySerializer(components.NewRegistry(), logger)
	return &testEnv{
		entities:   entities,
		serializer: NewSerializer(entities, logger),
		logger:     logger,
		logs:       logs,
	}
}

func (env *testEnv) instantiator(prefabs ...*Prefab) *Instantiator {
	return NewInstantiator(NewMemoryRegistry(prefabs...), env.entities, env.logger)
}

// buildCrate returns a tagged entity with a transform and a rigidbody.
func buildCrate(scene *engine.Scene) engine.Entity {
	e := scene.CreateEntity("Crate")
	tr, _ := engine.Get[*engine.TransformComponent](e)
	tr.Position = mgl32.Vec3{1, 2, 3}
	tr.SetEulerDegrees(mgl32.Vec3{0, 45, 0})
	rb := engine.Add(e, components.NewRigidbody())
	rb.Mass = 4
	return e
}

func TestLoadFromFileMissingPath(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.serializer.LoadFromFile(filepath.Join(t.TempDir(), "missing.prefab"))
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrIO))

	entries := env.logs.FilterMessage("load prefab failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "IOError", entries[0].ContextMap()["kind"])
}

func TestEntityPrefabFileRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	scene := engine.NewScene("Edit")
	crate := buildCrate(scene)

	p, err := env.serializer.FromEntity(crate, "Crate")
	require.NoError(t, err)
	assert.NotZero(t, p.GUID)

	path := filepath.Join(t.TempDir(), "crate.prefab")
	require.NoError(t, env.serializer.SaveToFile(p, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"PrefabVersion": "2.0"`)
	assert.Contains(t, string(raw), `"GUID": "`+p.GUID.String()+`"`)
	assert.Contains(t, string(raw), `"EntityData": "[`)
	assert.NotContains(t, string(raw), `"SceneData"`)

	loaded, err := env.serializer.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, TypeEntity, loaded.Type)
	assert.Equal(t, "Crate", loaded.Name)
	assert.Equal(t, p.GUID, loaded.GUID)
	require.Len(t, loaded.Entities, 1)
	assert.Len(t, loaded.Entities[0].Components, 3)
}

func TestInstantiateEntityPrefab(t *testing.T) {
	env := newTestEnv(t)
	edit := engine.NewScene("Edit")
	crate := buildCrate(edit)
	rb, _ := engine.Get[*components.Rigidbody](crate)
	p, err := env.serializer.FromEntity(crate, "Crate")
	require.NoError(t, err)

	scene := engine.NewScene("Game")
	in := env.instantiator(p)
	e, err := in.InstantiateEntityPrefab(scene, p.GUID)
	require.NoError(t, err)

	assert.Equal(t, "Crate", e.Name())
	tr, ok := engine.Get[*engine.TransformComponent](e)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Position)
	got, ok := engine.Get[*components.Rigidbody](e)
	require.True(t, ok)
	assert.Equal(t, float32(4), got.Mass)
	assert.Equal(t, rb.ComponentGUID(), got.ComponentGUID(), "instances keep template GUIDs")

	pc, ok := engine.Get[*components.PrefabComponent](e)
	require.True(t, ok)
	assert.Equal(t, p.GUID, pc.PrefabGUID)
	assert.Empty(t, pc.Overrides)

	_, err = in.InstantiateEntityPrefab(scene, engine.NewGUID())
	assert.True(t, errors.Is(err, errs.ErrLookup))
	_, err = in.InstantiateScenePrefab(scene, p.GUID)
	assert.True(t, errors.Is(err, errs.ErrSchema))
}

func TestLegacyPrefabVersion(t *testing.T) {
	env := newTestEnv(t)
	data := []byte(`{
		"PrefabVersion": "1.0",
		"Name": "Speaker",
		"GUID": "77",
		"Type": "Entity",
		"EntityData": "[{\"Type\":\"TagComponent\",\"Properties\":{\"Tag\":\"Speaker\"}},{\"Type\":\"TransformComponent\",\"Properties\":{\"Position\":[0,1,0],\"Rotation\":[0,0.70710677,0,0.70710677],\"Scale\":[1,1,1]}},{\"Type\":\"AudioComponent\",\"Properties\":{\"AudioFilePath\":\"hum.wav\",\"Loop\":true}}]"
	}`)

	p, err := env.serializer.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, engine.GUID(77), p.GUID)

	scene := engine.NewScene("Game")
	e, err := env.instantiator(p).InstantiateEntityPrefab(scene, 77)
	require.NoError(t, err)

	tr, _ := engine.Get[*engine.TransformComponent](e)
	want := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	assert.True(t, mathx.QuatApproxEqual(want, tr.Rotation, 1e-5))
	audio, ok := engine.Get[*components.Audio](e)
	require.True(t, ok)
	assert.Equal(t, "hum.wav", audio.FilePath)
	assert.True(t, audio.Loop)
	assert.Empty(t, env.logs.FilterMessage("unexpected prefab version").All())

	// Writing it back upgrades the encoding.
	out, err := env.serializer.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"PrefabVersion": "2.0"`)
}

func TestUnmarshalSchemaErrors(t *testing.T) {
	env := newTestEnv(t)
	cases := map[string]string{
		"no type":       `{"PrefabVersion":"2.0","Name":"X","GUID":"1"}`,
		"unknown type":  `{"PrefabVersion":"2.0","Name":"X","GUID":"1","Type":"Level"}`,
		"no payload":    `{"PrefabVersion":"2.0","Name":"X","GUID":"1","Type":"Entity"}`,
		"empty scene":   `{"PrefabVersion":"2.0","Name":"X","GUID":"1","Type":"Scene","SceneData":"[]"}`,
		"bad root guid": `{"PrefabVersion":"2.0","Name":"X","GUID":"1","Type":"Scene","SceneData":"[{\"ID\":1,\"Components\":[]}]","RootEntityGUID":"abc"}`,
	}
	for name, data := range cases {
		_, err := env.serializer.Unmarshal([]byte(data))
		assert.True(t, errors.Is(err, errs.ErrSchema), name)
	}

	_, err := env.serializer.Unmarshal([]byte(`{"Type":"Entity","EntityData":"[{"}`))
	assert.True(t, errors.Is(err, errs.ErrParse))
	_, err = env.serializer.Unmarshal([]byte(`{`))
	assert.True(t, errors.Is(err, errs.ErrParse))
}

func TestRootEntityNotInPayloadFallsBack(t *testing.T) {
	const sceneData = `"SceneData":"[{\"ID\":1,\"Components\":[{\"Type\":\"TagComponent\",\"Properties\":{\"Tag\":\"Shed\"}}]},{\"ID\":2,\"Components\":[{\"Type\":\"TagComponent\",\"Properties\":{\"Tag\":\"Door\"}}]}]"`
	cases := map[string]string{
		"legacy entity guid":  `{"PrefabVersion":"1.0","Name":"Shed","GUID":"5","Type":"Scene",` + sceneData + `,"RootEntityGUID":"12345678901234567"}`,
		"legacy non-numeric":  `{"PrefabVersion":"1.0","Name":"Shed","GUID":"5","Type":"Scene",` + sceneData + `,"RootEntityGUID":"root"}`,
		"current unknown id":  `{"PrefabVersion":"2.0","Name":"Shed","GUID":"5","Type":"Scene",` + sceneData + `,"RootEntityGUID":"9"}`,
		"current wide number": `{"PrefabVersion":"2.0","Name":"Shed","GUID":"5","Type":"Scene",` + sceneData + `,"RootEntityGUID":"4294967297"}`,
	}
	for name, data := range cases {
		env := newTestEnv(t)
		p, err := env.serializer.Unmarshal([]byte(data))
		require.NoError(t, err, name)
		assert.Equal(t, engine.EntityID(1), p.RootEntity, name)
		assert.Equal(t, 1, env.logs.FilterMessage("root entity not in payload, using the first entity").Len(), name)

		scene := engine.NewScene("Game")
		root, err := env.instantiator(p).InstantiateScenePrefab(scene, 5)
		require.NoError(t, err, name)
		assert.Equal(t, "Shed", root.Name(), name)
		assert.Equal(t, 2, scene.EntityCount(), name)
	}

	env := newTestEnv(t)
	p, err := env.serializer.Unmarshal([]byte(`{"PrefabVersion":"2.0","Name":"Shed","GUID":"5","Type":"Scene",` + sceneData + `,"RootEntityGUID":"2"}`))
	require.NoError(t, err)
	assert.Equal(t, engine.EntityID(2), p.RootEntity)
	assert.Zero(t, env.logs.FilterMessage("root entity not in payload, using the first entity").Len())
	root, err := env.instantiator(p).InstantiateScenePrefab(engine.NewScene("Game"), 5)
	require.NoError(t, err)
	assert.Equal(t, "Door", root.Name())
}

func buildHierarchy(scene *engine.Scene) (world, root, child, grandchild engine.Entity) {
	world = scene.CreateEntity("World")
	root = scene.CreateEntity("Tank")
	child = scene.CreateEntity("Turret")
	grandchild = scene.CreateEntity("Barrel")
	for _, link := range [][2]engine.Entity{{root, world}, {child, root}, {grandchild, child}} {
		if err := engine.SetParent(link[0], link[1]); err != nil {
			panic(err)
		}
	}
	return world, root, child, grandchild
}

func TestScenePrefabRemapsHierarchy(t *testing.T) {
	env := newTestEnv(t)
	edit := engine.NewScene("Edit")
	_, root, child, _ := buildHierarchy(edit)

	p, err := env.serializer.FromHierarchy(root, "Tank")
	require.NoError(t, err)
	require.Len(t, p.Entities, 3)
	assert.Equal(t, root.ID(), p.RootEntity)

	data, err := env.serializer.Marshal(p)
	require.NoError(t, err)
	loaded, err := env.serializer.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, root.ID(), loaded.RootEntity)

	scene := engine.NewScene("Game")
	scene.CreateEntity("Existing")
	in := env.instantiator(loaded)

	first, err := in.InstantiateScenePrefab(scene, loaded.GUID)
	require.NoError(t, err)
	second, err := in.InstantiateScenePrefab(scene, loaded.GUID)
	require.NoError(t, err)
	assert.Equal(t, 7, scene.EntityCount())

	for _, r := range []engine.Entity{first, second} {
		assert.Equal(t, "Tank", r.Name())
		_, hasParent := engine.Parent(r)
		assert.False(t, hasParent, "the parent outside the prefab is dropped")

		kids := engine.Children(r)
		require.Len(t, kids, 1)
		assert.Equal(t, "Turret", kids[0].Name())
		grandkids := engine.Children(kids[0])
		require.Len(t, grandkids, 1)
		assert.Equal(t, "Barrel", grandkids[0].Name())

		pc, ok := engine.Get[*components.PrefabComponent](kids[0])
		require.True(t, ok, "every instantiated entity is linked")
		assert.Equal(t, loaded.GUID, pc.PrefabGUID)
		assert.Equal(t, child.ID(), pc.SourceEntity)
	}
	assert.NotEqual(t, engine.Children(first)[0], engine.Children(second)[0])
}

func TestApplyOverrides(t *testing.T) {
	env := newTestEnv(t)
	edit := engine.NewScene("Edit")
	p, err := env.serializer.FromEntity(buildCrate(edit), "Crate")
	require.NoError(t, err)

	scene := engine.NewScene("Game")
	in := env.instantiator(p)
	e, err := in.InstantiateEntityPrefab(scene, p.GUID)
	require.NoError(t, err)

	tr, _ := engine.Get[*engine.TransformComponent](e)
	rb, _ := engine.Get[*components.Rigidbody](e)
	pc, _ := engine.Get[*components.PrefabComponent](e)
	cam := components.NewCamera()

	pc.AddOverride(tr.ComponentGUID(), "Position.y", "10")
	pc.AddOverride(tr.ComponentGUID(), "Scale", "2,2,2")
	pc.MarkDeleted(rb.ComponentGUID())
	require.NoError(t, in.MarkAdded(e, cam))
	cam.FOV = 70

	require.NoError(t, in.ApplyOverrides(e))
	assert.Equal(t, mgl32.Vec3{1, 10, 3}, tr.Position)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, tr.Scale)
	assert.False(t, engine.Has[*components.Rigidbody](e))
	added, ok := engine.Get[*components.Camera](e)
	require.True(t, ok)
	assert.Equal(t, float32(70), added.FOV, "added components are left alone")
}

func TestApplyOverridesAggregatesErrors(t *testing.T) {
	env := newTestEnv(t)
	edit := engine.NewScene("Edit")
	p, err := env.serializer.FromEntity(buildCrate(edit), "Crate")
	require.NoError(t, err)

	scene := engine.NewScene("Game")
	in := env.instantiator(p)
	e, err := in.InstantiateEntityPrefab(scene, p.GUID)
	require.NoError(t, err)
	tr, _ := engine.Get[*engine.TransformComponent](e)
	pc, _ := engine.Get[*components.PrefabComponent](e)

	pc.AddOverride(engine.NewGUID(), "Mass", "3")
	pc.AddOverride(tr.ComponentGUID(), "Nope", "1")
	pc.AddOverride(tr.ComponentGUID(), "Position.x", "7")

	err = in.ApplyOverrides(e)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.True(t, errors.Is(err, errs.ErrLookup))
	assert.Equal(t, float32(7), tr.Position.X(), "valid overrides still apply")
	assert.Equal(t, 2, env.logs.FilterMessage("override not applied").Len())

	plain := scene.CreateEntity("Plain")
	assert.True(t, errors.Is(in.ApplyOverrides(plain), errs.ErrLookup))
}

func TestRecordOverrideAndReconcile(t *testing.T) {
	env := newTestEnv(t)
	edit := engine.NewScene("Edit")
	crate := buildCrate(edit)
	p, err := env.serializer.FromEntity(crate, "Crate")
	require.NoError(t, err)

	registry := NewMemoryRegistry(p)
	in := NewInstantiator(registry, env.entities, env.logger)
	scene := engine.NewScene("Game")
	e, err := in.InstantiateEntityPrefab(scene, p.GUID)
	require.NoError(t, err)

	tr, _ := engine.Get[*engine.TransformComponent](e)
	tr.Position = mgl32.Vec3{5, 2, 3}
	require.NoError(t, in.RecordOverride(e, tr, "Position.x"))
	require.NoError(t, in.RecordOverride(e, tr, "Position.x"))
	pc, _ := engine.Get[*components.PrefabComponent](e)
	require.Len(t, pc.Overrides, 1)
	assert.Equal(t, "5", pc.Overrides[0].Value)

	rb, _ := engine.Get[*components.Rigidbody](e)
	require.NoError(t, in.MarkDeleted(e, rb.ComponentGUID()))
	assert.Error(t, in.MarkDeleted(e, rb.ComponentGUID()))
	light := components.NewPointLight()
	require.NoError(t, in.MarkAdded(e, light))

	tag, _ := engine.Get[*engine.TagComponent](e)
	tag.Tag = "Crate (1)"

	// The template changes: the crate moves up and gets a camera.
	edTr, _ := engine.Get[*engine.TransformComponent](crate)
	edTr.Position = mgl32.Vec3{1, 8, 3}
	engine.Add(crate, components.NewCamera())
	updated, err := env.serializer.FromEntity(crate, "Crate")
	require.NoError(t, err)
	updated.GUID = p.GUID
	registry.Add(updated)

	require.NoError(t, in.Reconcile(e))

	tr, _ = engine.Get[*engine.TransformComponent](e)
	assert.Equal(t, mgl32.Vec3{5, 8, 3}, tr.Position, "override wins over the template, the rest follows it")
	assert.False(t, engine.Has[*components.Rigidbody](e))
	assert.True(t, engine.Has[*components.Camera](e))
	gotLight, ok := engine.Get[*components.PointLight](e)
	require.True(t, ok)
	assert.Same(t, light, gotLight)
	assert.Equal(t, "Crate (1)", e.Name())
	assert.True(t, engine.Has[*components.PrefabComponent](e))
}

func TestMarkAddedRejectsAttachedType(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.serializer.FromEntity(buildCrate(engine.NewScene("Edit")), "Crate")
	require.NoError(t, err)
	in := env.instantiator(p)
	e, err := in.InstantiateEntityPrefab(engine.NewScene("Game"), p.GUID)
	require.NoError(t, err)
	original, _ := engine.Get[*components.Rigidbody](e)

	err = in.MarkAdded(e, components.NewRigidbody())
	assert.True(t, errors.Is(err, errs.ErrSchema))
	rb, _ := engine.Get[*components.Rigidbody](e)
	assert.Same(t, original, rb)
	pc, _ := engine.Get[*components.PrefabComponent](e)
	assert.Empty(t, pc.Added)
	assert.Empty(t, pc.Deleted)

	// Replacing goes through a recorded deletion first.
	require.NoError(t, in.MarkDeleted(e, original.ComponentGUID()))
	replacement := components.NewRigidbody()
	require.NoError(t, in.MarkAdded(e, replacement))
	assert.Equal(t, []engine.GUID{original.ComponentGUID()}, pc.Deleted)
	assert.Equal(t, []engine.GUID{replacement.ComponentGUID()}, pc.Added)
}

func TestReconcileKeepsEntityReferences(t *testing.T) {
	env := newTestEnv(t)
	edit := engine.NewScene("Edit")
	_, root, _, _ := buildHierarchy(edit)
	p, err := env.serializer.FromHierarchy(root, "Tank")
	require.NoError(t, err)

	in := env.instantiator(p)
	scene := engine.NewScene("Game")
	r, err := in.InstantiateScenePrefab(scene, p.GUID)
	require.NoError(t, err)
	turret := engine.Children(r)[0]

	require.NoError(t, in.Reconcile(turret))
	parent, ok := engine.Parent(turret)
	require.True(t, ok)
	assert.Equal(t, r, parent)
}

func TestInstanceSurvivesSceneReload(t *testing.T) {
	env := newTestEnv(t)
	edit := engine.NewScene("Edit")
	p, err := env.serializer.FromEntity(buildCrate(edit), "Crate")
	require.NoError(t, err)
	in := env.instantiator(p)

	scene := engine.NewScene("Game")
	e, err := in.InstantiateEntityPrefab(scene, p.GUID)
	require.NoError(t, err)
	tr, _ := engine.Get[*engine.TransformComponent](e)
	tr.Position = mgl32.Vec3{0, 0, 9}
	require.NoError(t, in.RecordOverride(e, tr, "Position.z"))

	scenes := serialize.NewSceneSerializer(env.entities, env.logger, serialize.Options{})
	data, err := scenes.Serialize(scene)
	require.NoError(t, err)
	reloaded := engine.NewScene("")
	require.NoError(t, scenes.Deserialize(reloaded, data))

	again := reloaded.Entities()[0]
	require.NoError(t, in.Reconcile(again))
	tr, _ = engine.Get[*engine.TransformComponent](again)
	assert.Equal(t, mgl32.Vec3{1, 2, 9}, tr.Position)
}
