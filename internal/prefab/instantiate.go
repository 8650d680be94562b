package prefab

import (
	"go.uber.org/multierr"

	"mirgoscene/internal/components"
	"mirgoscene/internal/engine"
	"mirgoscene/internal/errs"
	"mirgoscene/internal/log"
	"mirgoscene/internal/reflection"
	"mirgoscene/internal/serialize"
)

// Instantiator creates scene entities from prefabs and maintains the link
// between an instance and its prefab.
type Instantiator struct {
	prefabs  Registry
	entities *serialize.EntitySerializer
	log      *log.Logger
}

func NewInstantiator(prefabs Registry, entities *serialize.EntitySerializer, logger *log.Logger) *Instantiator {
	return &Instantiator{prefabs: prefabs, entities: entities, log: logger.Named("instantiate")}
}

func (in *Instantiator) lookup(op string, guid engine.GUID, want Type) (*Prefab, error) {
	p, ok := in.prefabs.GetPrefab(guid)
	if !ok {
		err := errs.Lookup(op, "prefab %s not found", guid)
		in.log.Warn("prefab lookup failed", log.String("guid", guid.String()), log.Error(err), log.Kind(err))
		return nil, err
	}
	if p.Type != want {
		err := errs.Schema(op, "prefab %q is a %s prefab", p.Name, p.Type)
		in.log.Warn("prefab type mismatch", log.String("guid", guid.String()), log.Error(err), log.Kind(err))
		return nil, err
	}
	return p, nil
}

// InstantiateEntityPrefab creates one entity from an entity prefab.
func (in *Instantiator) InstantiateEntityPrefab(scene *engine.Scene, guid engine.GUID) (engine.Entity, error) {
	p, err := in.lookup("instantiate entity prefab", guid, TypeEntity)
	if err != nil {
		return engine.Entity{}, err
	}
	if len(p.Entities) != 1 {
		return engine.Entity{}, errs.Schema("instantiate entity prefab", "prefab %q has %d entities", p.Name, len(p.Entities))
	}
	created := in.Instantiate(scene, p)
	for i, ed := range p.Entities {
		if ed.ID == p.RootEntity {
			return created[i], nil
		}
	}
	return created[0], nil
}

// InstantiateScenePrefab creates every entity of a scene prefab and returns
// the first, its root.
func (in *Instantiator) InstantiateScenePrefab(scene *engine.Scene, guid engine.GUID) (engine.Entity, error) {
	p, err := in.lookup("instantiate scene prefab", guid, TypeScene)
	if err != nil {
		return engine.Entity{}, err
	}
	if len(p.Entities) == 0 {
		return engine.Entity{}, errs.Schema("instantiate scene prefab", "prefab %q is empty", p.Name)
	}
	created := in.Instantiate(scene, p)
	for i, ed := range p.Entities {
		if ed.ID == p.RootEntity {
			return created[i], nil
		}
	}
	return created[0], nil
}

// Instantiate creates fresh entities for the payload of p in payload order.
// Entity references between payload entities are rewritten to the new IDs;
// references leaving the payload become null. Every created entity gets its
// own PrefabComponent.
func (in *Instantiator) Instantiate(scene *engine.Scene, p *Prefab) []engine.Entity {
	created := make([]engine.Entity, len(p.Entities))
	ids := make(map[engine.EntityID]engine.EntityID, len(p.Entities))
	for i, ed := range p.Entities {
		created[i] = scene.CreateEmptyEntity()
		if ed.ID != engine.NullEntity {
			ids[ed.ID] = created[i].ID()
		}
	}
	remap := func(id engine.EntityID) engine.EntityID {
		return ids[id]
	}

	for i, ed := range p.Entities {
		in.entities.DeserializeEntity(created[i], templateOnly(ed), remap)
		created[i].AddComponent(components.NewPrefabComponent(p.GUID, ed.ID))
	}
	in.log.Debug("prefab instantiated", log.String("prefab", p.Name), log.Int("entities", len(created)))
	return created
}

func templateOnly(ed serialize.EntityDocument) serialize.EntityDocument {
	out := serialize.EntityDocument{ID: ed.ID, Components: make([]serialize.ComponentDocument, 0, len(ed.Components))}
	for _, cd := range ed.Components {
		if cd.Type != "PrefabComponent" {
			out.Components = append(out.Components, cd)
		}
	}
	return out
}

func prefabLink(op string, e engine.Entity) (*components.PrefabComponent, error) {
	pc, ok := engine.Get[*components.PrefabComponent](e)
	if !ok {
		return nil, errs.Lookup(op, "entity %d is not a prefab instance", e.ID())
	}
	return pc, nil
}

// ApplyOverrides brings an instance in line with its recorded changes:
// components listed as deleted are removed and every override is written
// through the reflection registry. Added components are left alone.
// All failures are returned together.
func (in *Instantiator) ApplyOverrides(e engine.Entity) error {
	pc, err := prefabLink("apply overrides", e)
	if err != nil {
		return err
	}

	var errList error
	for _, guid := range pc.Deleted {
		if e.RemoveByGUID(guid) {
			in.log.Debug("removed deleted component", log.Uint32("entity", uint32(e.ID())), log.String("guid", guid.String()))
		}
	}

	registry := in.entities.Registry()
	for _, o := range pc.Overrides {
		if pc.IsDeleted(o.ComponentGUID) {
			continue
		}
		c, ok := e.FindByGUID(o.ComponentGUID)
		if !ok {
			errList = multierr.Append(errList, errs.Lookup("apply override",
				"entity %d has no component %s for %q", e.ID(), o.ComponentGUID, o.PropertyPath))
			continue
		}
		meta, ok := registry.MetadataFor(c)
		if !ok {
			errList = multierr.Append(errList, errs.Lookup("apply override",
				"component %s is not registered", engine.TypeOf(c)))
			continue
		}
		if err := reflection.SetPathString(meta, c, o.PropertyPath, o.Value); err != nil {
			errList = multierr.Append(errList, err)
		}
	}

	for _, err := range multierr.Errors(errList) {
		in.log.Warn("override not applied", log.Uint32("entity", uint32(e.ID())), log.Error(err), log.Kind(err))
	}
	return errList
}

// RecordOverride stores the current value at path on c as an override.
func (in *Instantiator) RecordOverride(e engine.Entity, c engine.Component, path string) error {
	pc, err := prefabLink("record override", e)
	if err != nil {
		return err
	}
	guid := engine.GUIDOf(c)
	if guid == 0 {
		return errs.Lookup("record override", "%s has no GUID", engine.TypeOf(c))
	}
	meta, ok := in.entities.Registry().MetadataFor(c)
	if !ok {
		return errs.Lookup("record override", "component %s is not registered", engine.TypeOf(c))
	}
	value, err := reflection.GetPathString(meta, c, path)
	if err != nil {
		return err
	}
	pc.AddOverride(guid, path, value)
	return nil
}

// MarkAdded attaches c to the instance and records it as instance-only. An
// entity holds one component per type, so c must be of a type e lacks.
func (in *Instantiator) MarkAdded(e engine.Entity, c engine.Component) error {
	pc, err := prefabLink("mark added", e)
	if err != nil {
		return err
	}
	guid := engine.GUIDOf(c)
	if guid == 0 {
		return errs.Lookup("mark added", "%s has no GUID", engine.TypeOf(c))
	}
	// Adding would replace the template's component and lose it silently.
	if e.HasComponentType(engine.TypeOf(c)) {
		return errs.Schema("mark added", "entity %d already has a %s", e.ID(), engine.TypeOf(c))
	}
	e.AddComponent(c)
	pc.MarkAdded(guid)
	return nil
}

// MarkDeleted removes the component with guid and records the deletion.
func (in *Instantiator) MarkDeleted(e engine.Entity, guid engine.GUID) error {
	pc, err := prefabLink("mark deleted", e)
	if err != nil {
		return err
	}
	if !e.RemoveByGUID(guid) {
		return errs.Lookup("mark deleted", "entity %d has no component %s", e.ID(), guid)
	}
	pc.MarkDeleted(guid)
	return nil
}

// Reconcile rebuilds an instance from the current version of its prefab.
// Added components are kept and deleted ones stay deleted before overrides
// are replayed. Entity references on components that survive keep their
// values.
func (in *Instantiator) Reconcile(e engine.Entity) error {
	pc, err := prefabLink("reconcile", e)
	if err != nil {
		return err
	}
	p, ok := in.prefabs.GetPrefab(pc.PrefabGUID)
	if !ok {
		return errs.Lookup("reconcile", "prefab %s not found", pc.PrefabGUID)
	}
	src, ok := p.Source(pc.SourceEntity)
	if !ok {
		return errs.Lookup("reconcile", "prefab %q has no entity %d", p.Name, pc.SourceEntity)
	}

	registry := in.entities.Registry()
	previous := make(map[engine.GUID]engine.Component)
	for _, c := range e.Components() {
		// Components without a GUID (the tag, the prefab link) cannot carry
		// overrides, so the instance keeps its own.
		guid := engine.GUIDOf(c)
		if guid == 0 || pc.IsAdded(guid) {
			continue
		}
		previous[guid] = c
		e.RemoveComponentType(engine.TypeOf(c))
	}

	var errList error
	for _, cd := range templateOnly(src).Components {
		if cd.GUID != 0 && pc.IsDeleted(cd.GUID) {
			continue
		}
		c, err := in.entities.DeserializeComponent(cd, nil)
		errList = multierr.Append(errList, err)
		if c == nil || e.HasComponentType(engine.TypeOf(c)) {
			continue
		}
		if old, ok := previous[engine.GUIDOf(c)]; ok {
			keepEntityRefs(registry, old, c)
		}
		e.AddComponent(c)
	}
	in.log.Debug("instance reconciled", log.Uint32("entity", uint32(e.ID())), log.String("prefab", p.Name))
	return multierr.Append(errList, in.ApplyOverrides(e))
}

func keepEntityRefs(registry *reflection.Registry, from, to engine.Component) {
	meta, ok := registry.MetadataFor(to)
	if !ok || engine.TypeOf(from) != engine.TypeOf(to) {
		return
	}
	for _, p := range meta.Properties() {
		if p.Type() != reflection.TypeEntity {
			continue
		}
		if v, err := p.Get(from); err == nil {
			_ = p.Set(to, v)
		}
	}
}
