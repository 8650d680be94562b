package components

import (
	"encoding/json"
	"slices"

	"github.com/pkg/errors"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/reflection"
)

// Override records one property of one component that differs from the prefab.
// Value is in the reflection text encoding.
type Override struct {
	ComponentGUID engine.GUID
	PropertyPath  string
	Value         string
}

// PrefabComponent links an instantiated entity back to its prefab and tracks
// how the instance diverged from it.
type PrefabComponent struct {
	PrefabGUID   engine.GUID
	SourceEntity engine.EntityID // entity ID inside the prefab payload
	Added        []engine.GUID
	Deleted      []engine.GUID
	Overrides    []Override
}

func NewPrefabComponent(prefab engine.GUID, source engine.EntityID) *PrefabComponent {
	return &PrefabComponent{PrefabGUID: prefab, SourceEntity: source}
}

func registerPrefabComponent(r *reflection.Registry) {
	// The lists are written by MarshalProperties, so no properties are reflected.
	reflection.Register(r, "PrefabComponent", func() *PrefabComponent { return &PrefabComponent{} })
}

// AddOverride records value for (guid, path), updating an existing entry in place.
func (p *PrefabComponent) AddOverride(guid engine.GUID, path, value string) {
	for i := range p.Overrides {
		if p.Overrides[i].ComponentGUID == guid && p.Overrides[i].PropertyPath == path {
			p.Overrides[i].Value = value
			return
		}
	}
	p.Overrides = append(p.Overrides, Override{ComponentGUID: guid, PropertyPath: path, Value: value})
}

func (p *PrefabComponent) RemoveOverride(guid engine.GUID, path string) bool {
	for i, o := range p.Overrides {
		if o.ComponentGUID == guid && o.PropertyPath == path {
			p.Overrides = slices.Delete(p.Overrides, i, i+1)
			return true
		}
	}
	return false
}

func (p *PrefabComponent) Override(guid engine.GUID, path string) (Override, bool) {
	for _, o := range p.Overrides {
		if o.ComponentGUID == guid && o.PropertyPath == path {
			return o, true
		}
	}
	return Override{}, false
}

// OverridesFor returns the overrides recorded against one component.
func (p *PrefabComponent) OverridesFor(guid engine.GUID) []Override {
	var out []Override
	for _, o := range p.Overrides {
		if o.ComponentGUID == guid {
			out = append(out, o)
		}
	}
	return out
}

// MarkAdded records a component that exists only on the instance.
func (p *PrefabComponent) MarkAdded(guid engine.GUID) {
	if guid == 0 || slices.Contains(p.Added, guid) {
		return
	}
	p.Deleted = slices.DeleteFunc(p.Deleted, func(g engine.GUID) bool { return g == guid })
	p.Added = append(p.Added, guid)
}

// MarkDeleted records a prefab component removed from the instance. Deleting a
// component that was itself added only forgets the addition. Overrides on the
// component are dropped either way.
func (p *PrefabComponent) MarkDeleted(guid engine.GUID) {
	if guid == 0 {
		return
	}
	p.Overrides = slices.DeleteFunc(p.Overrides, func(o Override) bool { return o.ComponentGUID == guid })
	if i := slices.Index(p.Added, guid); i >= 0 {
		p.Added = slices.Delete(p.Added, i, i+1)
		return
	}
	if !slices.Contains(p.Deleted, guid) {
		p.Deleted = append(p.Deleted, guid)
	}
}

func (p *PrefabComponent) IsAdded(guid engine.GUID) bool {
	return slices.Contains(p.Added, guid)
}

func (p *PrefabComponent) IsDeleted(guid engine.GUID) bool {
	return slices.Contains(p.Deleted, guid)
}

type prefabProperties struct {
	PrefabGUID   engine.GUID     `json:"PrefabGUID"`
	SourceEntity engine.EntityID `json:"SourceEntity,omitempty"`
	Added        []engine.GUID   `json:"AddedComponents"`
	Deleted      []engine.GUID   `json:"DeletedComponents"`
	Overrides    []Override      `json:"Overrides"`
}

// MarshalProperties writes the Properties object of a PrefabComponent.
func (p *PrefabComponent) MarshalProperties() (json.RawMessage, error) {
	doc := prefabProperties{
		PrefabGUID:   p.PrefabGUID,
		SourceEntity: p.SourceEntity,
		Added:        nonNil(p.Added),
		Deleted:      nonNil(p.Deleted),
		Overrides:    nonNil(p.Overrides),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal prefab component")
	}
	return data, nil
}

func (p *PrefabComponent) UnmarshalProperties(raw json.RawMessage) error {
	var doc prefabProperties
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.Wrap(err, "unmarshal prefab component")
	}
	p.PrefabGUID = doc.PrefabGUID
	p.SourceEntity = doc.SourceEntity
	p.Added = doc.Added
	p.Deleted = doc.Deleted
	p.Overrides = doc.Overrides
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
