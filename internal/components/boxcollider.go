package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/reflection"
)

type BoxCollider struct {
	engine.Identity
	Size      mgl32.Vec3
	Offset    mgl32.Vec3
	IsTrigger bool
}

func NewBoxCollider(size mgl32.Vec3) *BoxCollider {
	return &BoxCollider{
		Identity: engine.NewIdentity(),
		Size:     size,
	}
}

func registerBoxCollider(r *reflection.Registry) {
	m := reflection.Register(r, "BoxColliderComponent", func() *BoxCollider { return NewBoxCollider(mgl32.Vec3{1, 1, 1}) })
	reflection.Field(m, "Size", reflection.TypeVec3, func(c *BoxCollider) *mgl32.Vec3 { return &c.Size })
	reflection.Field(m, "Offset", reflection.TypeVec3, func(c *BoxCollider) *mgl32.Vec3 { return &c.Offset })
	reflection.Field(m, "IsTrigger", reflection.TypeBool, func(c *BoxCollider) *bool { return &c.IsTrigger })
}

// Bounds returns the world-space min and max corners, ignoring rotation.
func (b *BoxCollider) Bounds(e engine.Entity) (mgl32.Vec3, mgl32.Vec3) {
	center := engine.WorldPosition(e).Add(b.Offset)
	half := b.Size.Mul(0.5)
	return center.Sub(half), center.Add(half)
}
