package serialize

import (
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/errs"
	"mirgoscene/internal/log"
	"mirgoscene/internal/reflection"
)

// EntityRemap rewrites Entity-typed property values while reading a document.
// A nil remap keeps stored IDs.
type EntityRemap func(engine.EntityID) engine.EntityID

// EntitySerializer converts between entities and EntityDocuments using the
// metadata in a reflection registry.
type EntitySerializer struct {
	registry *reflection.Registry
	log      *log.Logger
}

func NewEntitySerializer(registry *reflection.Registry, logger *log.Logger) *EntitySerializer {
	return &EntitySerializer{registry: registry, log: logger.Named("entity")}
}

func (s *EntitySerializer) Registry() *reflection.Registry {
	return s.registry
}

// SerializeComponent writes c through its metadata.
func (s *EntitySerializer) SerializeComponent(meta *reflection.ComponentMetadata, c engine.Component) (ComponentDocument, error) {
	doc := ComponentDocument{Type: meta.Name(), GUID: engine.GUIDOf(c)}

	if pm, ok := c.(PropertyMarshaler); ok {
		raw, err := pm.MarshalProperties()
		if err != nil {
			return ComponentDocument{}, errors.Wrapf(err, "serialize %s", meta.Name())
		}
		doc.Properties = raw
		return doc, nil
	}

	var w objectWriter
	for _, p := range meta.Properties() {
		raw, err := p.MarshalValue(c)
		if err != nil {
			return ComponentDocument{}, errors.Wrapf(err, "serialize %s", meta.Name())
		}
		w.add(p.Name(), raw)
	}
	doc.Properties = w.bytes()
	return doc, nil
}

// DeserializeComponent builds a component from doc. Properties missing from
// the document keep their factory defaults and unknown keys are ignored.
//
// An absent Type is a SchemaError and an unregistered one a LookupError; both
// return a nil component. Malformed property values leave that property at its
// default and are reported together with the component.
func (s *EntitySerializer) DeserializeComponent(doc ComponentDocument, remap EntityRemap) (engine.Component, error) {
	if doc.Type == "" {
		return nil, errs.Schema("deserialize component", "missing Type")
	}
	meta, ok := s.registry.Lookup(doc.Type)
	if !ok {
		return nil, errs.Lookup("deserialize component", "unknown component type %q", doc.Type)
	}

	c := meta.New()
	if id, ok := c.(engine.Identifiable); ok && doc.GUID != 0 {
		id.SetComponentGUID(doc.GUID)
	}
	if len(doc.Properties) == 0 || string(doc.Properties) == "null" {
		return c, nil
	}

	if pm, ok := c.(PropertyMarshaler); ok {
		if err := pm.UnmarshalProperties(doc.Properties); err != nil {
			return nil, errs.Schema("deserialize component", "%s: %v", doc.Type, err)
		}
		return c, nil
	}

	var props map[string]json.RawMessage
	if err := json.Unmarshal(doc.Properties, &props); err != nil {
		return nil, errs.Schema("deserialize component", "%s: Properties is not an object", doc.Type)
	}

	// Walk properties in registration order so a canonical key always wins
	// over an alias of the same property.
	seen := make(map[string]bool, len(props))
	var errList error
	for _, p := range meta.Properties() {
		key := p.Name()
		raw, ok := props[key]
		seen[key] = true
		for _, alias := range p.Aliases() {
			if r, found := props[alias]; found && !ok {
				key, raw, ok = alias, r, true
			}
			seen[alias] = true
		}
		if !ok {
			continue
		}
		if err := p.UnmarshalValue(c, raw); err != nil {
			errList = multierr.Append(errList, errs.Schema("deserialize component", "%s.%s: %v", doc.Type, key, err))
			continue
		}
		if remap != nil && p.Type() == reflection.TypeEntity {
			v, _ := p.Get(c)
			if id := v.(engine.EntityID); id != engine.NullEntity {
				_ = p.Set(c, remap(id))
			}
		}
	}
	for key := range props {
		if !seen[key] {
			s.log.Debug("ignoring unknown property",
				log.String("component", doc.Type), log.String("property", key))
		}
	}
	return c, errList
}

// SerializeEntity writes every registered component of e in attachment order.
// Components without metadata are runtime-only and left out.
func (s *EntitySerializer) SerializeEntity(e engine.Entity) (EntityDocument, error) {
	doc := EntityDocument{ID: e.ID(), Components: make([]ComponentDocument, 0, len(e.Components()))}
	for _, c := range e.Components() {
		meta, ok := s.registry.MetadataFor(c)
		if !ok {
			s.log.Debug("skipping unregistered component",
				log.Uint32("entity", uint32(e.ID())), log.String("type", engine.TypeOf(c).String()))
			continue
		}
		cd, err := s.SerializeComponent(meta, c)
		if err != nil {
			return EntityDocument{}, err
		}
		doc.Components = append(doc.Components, cd)
	}
	return doc, nil
}

// DeserializeEntity attaches the components of doc to e. Unknown or untyped
// components are logged and skipped so the rest of the entity still loads.
func (s *EntitySerializer) DeserializeEntity(e engine.Entity, doc EntityDocument, remap EntityRemap) {
	for i, cd := range doc.Components {
		c, err := s.DeserializeComponent(cd, remap)
		if err != nil {
			fields := []log.Field{
				log.Uint32("entity", uint32(doc.ID)), log.Int("index", i),
				log.String("type", cd.Type), log.Error(err), log.Kind(err),
			}
			if c == nil {
				s.log.Warn("skipping component", fields...)
			} else {
				s.log.Warn("component loaded with errors", fields...)
			}
		}
		if c != nil {
			e.AddComponent(c)
		}
	}
}
