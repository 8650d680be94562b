package serialize

import (
	"encoding/json"
	"os"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/errs"
	"mirgoscene/internal/log"
)

type Options struct {
	// AtomicLoad loads into a staging scene and swaps it in only on success.
	// Without it Deserialize clears the target first and a failure leaves it
	// empty or partially populated.
	AtomicLoad bool
	Indent     bool
}

type SceneSerializer struct {
	entities *EntitySerializer
	log      *log.Logger
	opts     Options
}

func NewSceneSerializer(entities *EntitySerializer, logger *log.Logger, opts Options) *SceneSerializer {
	return &SceneSerializer{entities: entities, log: logger.Named("scene"), opts: opts}
}

func (s *SceneSerializer) Options() Options {
	return s.opts
}

// Encode builds the document for scene. Entities without a TagComponent are
// not part of the saved scene.
func (s *SceneSerializer) Encode(scene *engine.Scene) (SceneDocument, error) {
	doc := SceneDocument{Scene: scene.Name(), Version: SceneVersion, Entities: make([]EntityDocument, 0, scene.EntityCount())}
	for _, e := range scene.Entities() {
		if !engine.Has[*engine.TagComponent](e) {
			continue
		}
		ed, err := s.entities.SerializeEntity(e)
		if err != nil {
			return SceneDocument{}, err
		}
		doc.Entities = append(doc.Entities, ed)
	}
	return doc, nil
}

func (s *SceneSerializer) Serialize(scene *engine.Scene) ([]byte, error) {
	doc, err := s.Encode(scene)
	if err != nil {
		return nil, err
	}
	return s.marshal(doc)
}

func (s *SceneSerializer) marshal(doc SceneDocument) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if s.opts.Indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, errs.Schema("marshal scene", "%v", err)
	}
	return data, nil
}

// Deserialize replaces the entities of scene with those in data.
func (s *SceneSerializer) Deserialize(scene *engine.Scene, data []byte) error {
	if !s.opts.AtomicLoad {
		scene.Clear()
		return s.load(scene, data)
	}
	staging := engine.NewScene(scene.Name())
	if err := s.load(staging, data); err != nil {
		s.log.Warn("scene left unchanged", log.String("scene", scene.Name()))
		return err
	}
	scene.ReplaceContents(staging)
	return nil
}

func (s *SceneSerializer) load(scene *engine.Scene, data []byte) error {
	doc, err := DecodeScene(data)
	if err != nil {
		s.log.Error("parse scene failed", log.Error(err), log.Kind(err))
		return err
	}
	s.Populate(scene, doc)
	return nil
}

// DecodeScene parses and validates a scene document without touching any scene.
func DecodeScene(data []byte) (SceneDocument, error) {
	var doc SceneDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return SceneDocument{}, errs.JSON("decode scene", err)
	}
	if doc.Entities == nil {
		return SceneDocument{}, errs.Schema("decode scene", "missing Entities array")
	}
	return doc, nil
}

// Populate adds the entities of doc to scene. Stored IDs are restored when
// free; other entities get fresh IDs and references to them are rewritten.
func (s *SceneSerializer) Populate(scene *engine.Scene, doc SceneDocument) []engine.Entity {
	if doc.Version != SceneVersion {
		s.log.Warn("unexpected scene version", log.String("version", doc.Version), log.String("want", SceneVersion))
	}
	scene.SetName(doc.Scene)

	created := make([]engine.Entity, len(doc.Entities))
	restored := make(map[engine.EntityID]bool, len(doc.Entities))
	var pending []int
	for i, ed := range doc.Entities {
		e, err := scene.CreateEntityWithID(ed.ID)
		if err != nil {
			pending = append(pending, i)
			continue
		}
		created[i] = e
		restored[ed.ID] = true
	}

	moved := make(map[engine.EntityID]engine.EntityID, len(pending))
	for _, i := range pending {
		e := scene.CreateEmptyEntity()
		created[i] = e
		s.log.Warn("entity id unavailable, assigned a new one",
			log.Uint32("stored", uint32(doc.Entities[i].ID)), log.Uint32("assigned", uint32(e.ID())))
		// References keep pointing at the entity that kept the stored ID.
		if id := doc.Entities[i].ID; id != engine.NullEntity && !restored[id] {
			if _, dup := moved[id]; !dup {
				moved[id] = e.ID()
			}
		}
	}

	var remap EntityRemap
	if len(moved) > 0 {
		remap = func(id engine.EntityID) engine.EntityID {
			if n, ok := moved[id]; ok {
				return n
			}
			return id
		}
	}
	for i, ed := range doc.Entities {
		s.entities.DeserializeEntity(created[i], ed, remap)
	}
	s.log.Debug("scene populated", log.String("scene", doc.Scene), log.Int("entities", len(created)))
	return created
}

// SaveToFile writes scene to path. The document is fully built before the
// file is opened.
func (s *SceneSerializer) SaveToFile(scene *engine.Scene, path string) error {
	data, err := s.Serialize(scene)
	if err != nil {
		s.log.Error("serialize scene failed", log.String("path", path), log.Error(err), log.Kind(err))
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		ioErr := errs.IO("write scene", path, err)
		s.log.Error("save scene failed", log.Error(ioErr), log.Kind(ioErr))
		return ioErr
	}
	s.log.Info("scene saved", log.String("path", path), log.String("scene", scene.Name()))
	return nil
}

// LoadFromFile reads path into scene. An unreadable file leaves scene as it was.
func (s *SceneSerializer) LoadFromFile(scene *engine.Scene, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		ioErr := errs.IO("read scene", path, err)
		s.log.Error("load scene failed", log.Error(ioErr), log.Kind(ioErr))
		return ioErr
	}
	if err := s.Deserialize(scene, data); err != nil {
		return err
	}
	s.log.Info("scene loaded", log.String("path", path), log.String("scene", scene.Name()),
		log.Int("entities", scene.EntityCount()))
	return nil
}
