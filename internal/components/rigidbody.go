package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/reflection"
)

type Rigidbody struct {
	engine.Identity
	Mass        float32
	IsKinematic bool // moves but doesn't get pushed by physics
	UseGravity  bool
	Velocity    mgl32.Vec3

	// Runtime state, not serialized
	sleeping bool
}

func NewRigidbody() *Rigidbody {
	return &Rigidbody{
		Identity:   engine.NewIdentity(),
		Mass:       1.0,
		UseGravity: true,
	}
}

func registerRigidbody(r *reflection.Registry) {
	m := reflection.Register(r, "RigidbodyComponent", NewRigidbody)
	reflection.Field(m, "Mass", reflection.TypeFloat, func(c *Rigidbody) *float32 { return &c.Mass })
	reflection.Field(m, "IsKinematic", reflection.TypeBool, func(c *Rigidbody) *bool { return &c.IsKinematic })
	reflection.Field(m, "UseGravity", reflection.TypeBool, func(c *Rigidbody) *bool { return &c.UseGravity })
	reflection.Field(m, "Velocity", reflection.TypeVec3, func(c *Rigidbody) *mgl32.Vec3 { return &c.Velocity })
}

func (r *Rigidbody) IsSleeping() bool {
	return r.sleeping
}

// Sleep zeroes the velocity and marks the body as resting.
func (r *Rigidbody) Sleep() {
	r.sleeping = true
	r.Velocity = mgl32.Vec3{}
}

// Wake forces the rigidbody out of sleep state
func (r *Rigidbody) Wake() {
	r.sleeping = false
}
