// Package serialize reads and writes entities and scenes as JSON documents by
// walking the reflection metadata of each component.
package serialize

import (
	"bytes"
	"encoding/json"

	"mirgoscene/internal/engine"
)

// SceneVersion is written to every scene document.
const SceneVersion = "1.0"

// --- JSON types ---

type SceneDocument struct {
	Scene    string           `json:"Scene"`
	Version  string           `json:"Version"`
	Entities []EntityDocument `json:"Entities"`
}

type EntityDocument struct {
	ID         engine.EntityID     `json:"ID"`
	Components []ComponentDocument `json:"Components"`
}

// ComponentDocument is one component. Properties is a JSON object whose keys
// follow the registration order of the component's properties.
type ComponentDocument struct {
	Type       string          `json:"Type"`
	GUID       engine.GUID     `json:"GUID,omitempty"`
	Properties json.RawMessage `json:"Properties,omitempty"`
}

// PropertyMarshaler is implemented by components whose Properties object is
// not a flat list of reflected properties.
type PropertyMarshaler interface {
	MarshalProperties() (json.RawMessage, error)
	UnmarshalProperties(raw json.RawMessage) error
}

// Tag returns the TagComponent text of an entity document, or "".
func (d EntityDocument) Tag() string {
	for _, c := range d.Components {
		if c.Type != "TagComponent" {
			continue
		}
		var props struct{ Tag string }
		if json.Unmarshal(c.Properties, &props) == nil {
			return props.Tag
		}
	}
	return ""
}

// Component returns the first component document of the given type.
func (d EntityDocument) Component(typ string) (ComponentDocument, bool) {
	for _, c := range d.Components {
		if c.Type == typ {
			return c, true
		}
	}
	return ComponentDocument{}, false
}

// objectWriter builds a JSON object with keys in insertion order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
}

func (w *objectWriter) add(key string, value json.RawMessage) {
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(value)
	w.n++
}

func (w *objectWriter) bytes() json.RawMessage {
	if w.n == 0 {
		return json.RawMessage("{}")
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes()
}
