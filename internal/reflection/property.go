package reflection

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"

	"mirgoscene/internal/engine"
)

// Getter reads a property from a component of the owning type.
type Getter func(c engine.Component) any

// Setter writes an already coerced value to a component of the owning type.
type Setter func(c engine.Component, v any)

// Property is a type-erased accessor for one named field of one component type.
// It is immutable once its metadata has been registered.
type Property struct {
	name    string
	typ     ValueType
	owner   reflect.Type
	get     Getter
	set     Setter
	aliases []string
}

func (p *Property) Name() string {
	return p.name
}

func (p *Property) Type() ValueType {
	return p.typ
}

// Aliases lists alternative keys accepted when reading documents.
func (p *Property) Aliases() []string {
	return append([]string(nil), p.aliases...)
}

func (p *Property) check(c engine.Component) error {
	if c == nil {
		return errors.Errorf("property %s: nil component", p.name)
	}
	if t := reflect.TypeOf(c); t != p.owner {
		return errors.Errorf("property %s: component is %s, want %s", p.name, t, p.owner)
	}
	return nil
}

func (p *Property) Get(c engine.Component) (any, error) {
	if err := p.check(c); err != nil {
		return nil, err
	}
	return p.get(c), nil
}

// Set coerces v to the declared type and stores it.
func (p *Property) Set(c engine.Component, v any) error {
	if err := p.check(c); err != nil {
		return err
	}
	v, err := Coerce(p.typ, v)
	if err != nil {
		return errors.Wrapf(err, "property %s", p.name)
	}
	p.set(c, v)
	return nil
}

// ToString renders the current value with FormatValue.
func (p *Property) ToString(c engine.Component) (string, error) {
	v, err := p.Get(c)
	if err != nil {
		return "", err
	}
	s, err := FormatValue(p.typ, v)
	if err != nil {
		return "", errors.Wrapf(err, "property %s", p.name)
	}
	return s, nil
}

// FromString parses s with ParseValue and stores it.
func (p *Property) FromString(c engine.Component, s string) error {
	if err := p.check(c); err != nil {
		return err
	}
	v, err := ParseValue(p.typ, s)
	if err != nil {
		return errors.Wrapf(err, "property %s", p.name)
	}
	p.set(c, v)
	return nil
}

func (p *Property) MarshalValue(c engine.Component) (json.RawMessage, error) {
	v, err := p.Get(c)
	if err != nil {
		return nil, err
	}
	data, err := EncodeJSON(p.typ, v)
	if err != nil {
		return nil, errors.Wrapf(err, "property %s", p.name)
	}
	return data, nil
}

func (p *Property) UnmarshalValue(c engine.Component, raw json.RawMessage) error {
	if err := p.check(c); err != nil {
		return err
	}
	v, err := DecodeJSON(p.typ, raw)
	if err != nil {
		return errors.Wrapf(err, "property %s", p.name)
	}
	p.set(c, v)
	return nil
}
