package components

import (
	"mirgoscene/internal/engine"
	"mirgoscene/internal/reflection"
)

// Listener marks the entity audio is heard from.
type Listener struct {
	engine.Identity
	Active bool
}

func NewListener() *Listener {
	return &Listener{Identity: engine.NewIdentity(), Active: true}
}

func registerListener(r *reflection.Registry) {
	m := reflection.Register(r, "ListenerComponent", NewListener)
	reflection.Field(m, "Active", reflection.TypeBool, func(c *Listener) *bool { return &c.Active })
}

// ActiveListener returns the first entity with an active listener.
func ActiveListener(s *engine.Scene) (engine.Entity, bool) {
	for _, e := range s.Entities() {
		if l, ok := engine.Get[*Listener](e); ok && l.Active {
			return e, true
		}
	}
	return engine.Entity{}, false
}
