package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/reflection"
)

type PointLight struct {
	engine.Identity
	Color     mgl32.Vec3 // linear RGB, 0..1
	Intensity float32
	Range     float32 // falloff distance
}

func NewPointLight() *PointLight {
	return &PointLight{
		Identity:  engine.NewIdentity(),
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1.0,
		Range:     10.0,
	}
}

func registerPointLight(r *reflection.Registry) {
	m := reflection.Register(r, "PointLightComponent", NewPointLight)
	reflection.Field(m, "Color", reflection.TypeVec3, func(c *PointLight) *mgl32.Vec3 { return &c.Color })
	reflection.Field(m, "Intensity", reflection.TypeFloat, func(c *PointLight) *float32 { return &c.Intensity })
	reflection.Field(m, "Range", reflection.TypeFloat, func(c *PointLight) *float32 { return &c.Range })
}

// Radiance is the color scaled by intensity.
func (p *PointLight) Radiance() mgl32.Vec3 {
	return p.Color.Mul(p.Intensity)
}
