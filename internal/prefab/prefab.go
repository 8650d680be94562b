// Package prefab stores reusable entity templates and creates scene entities
// from them, tracking how each instance diverges from its template.
package prefab

import (
	"encoding/json"
	"os"
	"strconv"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/errs"
	"mirgoscene/internal/log"
	"mirgoscene/internal/serialize"
)

// Type tells a single-entity prefab from an entity subgraph.
type Type string

const (
	TypeEntity Type = "Entity"
	TypeScene  Type = "Scene"
)

const (
	// FileVersion is written by Marshal. Payloads use the scene component
	// encoding: rotations as Euler degrees, audio paths under FilePath.
	FileVersion = "2.0"
	// LegacyVersion files store raw quaternions and AudioFilePath; they are
	// read through the same decoder.
	LegacyVersion = "1.0"
)

// Prefab is an immutable template. Entity prefabs hold exactly one entity.
// Scene prefabs list their root first; RootEntity is its payload ID.
type Prefab struct {
	Type       Type
	Name       string
	GUID       engine.GUID
	Entities   []serialize.EntityDocument
	RootEntity engine.EntityID
}

// Root returns the payload of the root entity.
func (p *Prefab) Root() (serialize.EntityDocument, bool) {
	if p == nil || len(p.Entities) == 0 {
		return serialize.EntityDocument{}, false
	}
	return p.Entities[0], true
}

// Source returns the payload entity with the given ID. Entity prefabs match
// any ID.
func (p *Prefab) Source(id engine.EntityID) (serialize.EntityDocument, bool) {
	if p == nil {
		return serialize.EntityDocument{}, false
	}
	if p.Type == TypeEntity {
		return p.Root()
	}
	for _, ed := range p.Entities {
		if ed.ID == id {
			return ed, true
		}
	}
	return serialize.EntityDocument{}, false
}

// --- JSON types ---

type fileDocument struct {
	PrefabVersion  string      `json:"PrefabVersion"`
	Name           string      `json:"Name"`
	GUID           engine.GUID `json:"GUID"`
	Type           Type        `json:"Type"`
	EntityData     string      `json:"EntityData,omitempty"`
	SceneData      string      `json:"SceneData,omitempty"`
	RootEntityGUID string      `json:"RootEntityGUID,omitempty"`
}

// Serializer converts prefabs to and from files and builds them from scene
// entities.
type Serializer struct {
	entities *serialize.EntitySerializer
	log      *log.Logger
}

func NewSerializer(entities *serialize.EntitySerializer, logger *log.Logger) *Serializer {
	return &Serializer{entities: entities, log: logger.Named("prefab")}
}

// FromEntity captures e as an entity prefab with a new GUID. A PrefabComponent
// on e is not part of the template.
func (s *Serializer) FromEntity(e engine.Entity, name string) (*Prefab, error) {
	ed, err := s.capture(e)
	if err != nil {
		return nil, err
	}
	ed.ID = engine.NullEntity
	return &Prefab{Type: TypeEntity, Name: name, GUID: engine.NewGUID(), Entities: []serialize.EntityDocument{ed}}, nil
}

// FromHierarchy captures root and every descendant as a scene prefab, root
// first. Parent references outside the subgraph are dropped on instantiation.
func (s *Serializer) FromHierarchy(root engine.Entity, name string) (*Prefab, error) {
	members := append([]engine.Entity{root}, engine.Descendants(root)...)
	p := &Prefab{Type: TypeScene, Name: name, GUID: engine.NewGUID(), RootEntity: root.ID()}
	for _, e := range members {
		ed, err := s.capture(e)
		if err != nil {
			return nil, err
		}
		p.Entities = append(p.Entities, ed)
	}
	return p, nil
}

func (s *Serializer) capture(e engine.Entity) (serialize.EntityDocument, error) {
	if !e.Valid() {
		return serialize.EntityDocument{}, errs.Lookup("capture prefab", "entity %d does not exist", e.ID())
	}
	ed, err := s.entities.SerializeEntity(e)
	if err != nil {
		return serialize.EntityDocument{}, err
	}
	kept := ed.Components[:0]
	for _, cd := range ed.Components {
		if cd.Type != "PrefabComponent" {
			kept = append(kept, cd)
		}
	}
	ed.Components = kept
	return ed, nil
}

// Marshal writes p in the current file version.
func (s *Serializer) Marshal(p *Prefab) ([]byte, error) {
	doc := fileDocument{PrefabVersion: FileVersion, Name: p.Name, GUID: p.GUID, Type: p.Type}
	switch p.Type {
	case TypeEntity:
		if len(p.Entities) != 1 {
			return nil, errs.Schema("marshal prefab", "entity prefab %q has %d entities", p.Name, len(p.Entities))
		}
		data, err := json.Marshal(p.Entities[0].Components)
		if err != nil {
			return nil, errs.Schema("marshal prefab", "%v", err)
		}
		doc.EntityData = string(data)
	case TypeScene:
		data, err := json.Marshal(p.Entities)
		if err != nil {
			return nil, errs.Schema("marshal prefab", "%v", err)
		}
		doc.SceneData = string(data)
		doc.RootEntityGUID = strconv.FormatUint(uint64(p.RootEntity), 10)
	default:
		return nil, errs.Schema("marshal prefab", "unknown prefab type %q", p.Type)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errs.Schema("marshal prefab", "%v", err)
	}
	return data, nil
}

// Unmarshal parses a prefab file of either version.
func (s *Serializer) Unmarshal(data []byte) (*Prefab, error) {
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.JSON("decode prefab", err)
	}
	switch doc.PrefabVersion {
	case FileVersion, LegacyVersion:
	default:
		s.log.Warn("unexpected prefab version", log.String("version", doc.PrefabVersion), log.String("name", doc.Name))
	}

	p := &Prefab{Type: doc.Type, Name: doc.Name, GUID: doc.GUID}
	switch doc.Type {
	case TypeEntity:
		if doc.EntityData == "" {
			return nil, errs.Schema("decode prefab", "%q has no EntityData", doc.Name)
		}
		var comps []serialize.ComponentDocument
		if err := json.Unmarshal([]byte(doc.EntityData), &comps); err != nil {
			return nil, errs.JSON("decode prefab EntityData", err)
		}
		p.Entities = []serialize.EntityDocument{{Components: comps}}
	case TypeScene:
		if doc.SceneData == "" {
			return nil, errs.Schema("decode prefab", "%q has no SceneData", doc.Name)
		}
		if err := json.Unmarshal([]byte(doc.SceneData), &p.Entities); err != nil {
			return nil, errs.JSON("decode prefab SceneData", err)
		}
		if len(p.Entities) == 0 {
			return nil, errs.Schema("decode prefab", "%q has no entities", doc.Name)
		}
		p.RootEntity = p.Entities[0].ID
		if doc.RootEntityGUID != "" {
			// Legacy files may store a 64-bit entity GUID here, which is not
			// a payload ID. Fall back to the first entity when it matches none.
			root, err := strconv.ParseUint(doc.RootEntityGUID, 10, 64)
			if err != nil && doc.PrefabVersion != LegacyVersion {
				return nil, errs.Schema("decode prefab", "bad RootEntityGUID %q", doc.RootEntityGUID)
			}
			if id, ok := payloadEntity(p.Entities, root); err == nil && ok {
				p.RootEntity = id
			} else {
				s.log.Warn("root entity not in payload, using the first entity",
					log.String("name", doc.Name), log.String("root", doc.RootEntityGUID),
					log.Uint32("entity", uint32(p.RootEntity)))
			}
		}
	case "":
		return nil, errs.Schema("decode prefab", "missing Type")
	default:
		return nil, errs.Schema("decode prefab", "unknown prefab type %q", doc.Type)
	}
	return p, nil
}

func payloadEntity(entities []serialize.EntityDocument, id uint64) (engine.EntityID, bool) {
	for _, ed := range entities {
		if uint64(ed.ID) == id {
			return ed.ID, true
		}
	}
	return 0, false
}

func (s *Serializer) SaveToFile(p *Prefab, path string) error {
	data, err := s.Marshal(p)
	if err != nil {
		s.log.Error("serialize prefab failed", log.String("name", p.Name), log.Error(err), log.Kind(err))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		ioErr := errs.IO("write prefab", path, err)
		s.log.Error("save prefab failed", log.Error(ioErr), log.Kind(ioErr))
		return ioErr
	}
	return nil
}

// LoadFromFile reads a prefab file. On failure it logs the error and returns
// a nil prefab.
func (s *Serializer) LoadFromFile(path string) (*Prefab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		ioErr := errs.IO("read prefab", path, err)
		s.log.Error("load prefab failed", log.Error(ioErr), log.Kind(ioErr))
		return nil, ioErr
	}
	p, err := s.Unmarshal(data)
	if err != nil {
		s.log.Error("load prefab failed", log.String("path", path), log.Error(err), log.Kind(err))
		return nil, err
	}
	return p, nil
}
