package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/reflection"
)

type Camera struct {
	engine.Identity
	FOV      float32 // vertical, degrees
	NearClip float32
	FarClip  float32
	Primary  bool // If true, this is the active game camera
}

func NewCamera() *Camera {
	return &Camera{
		Identity: engine.NewIdentity(),
		FOV:      45.0,
		NearClip: 0.1,
		FarClip:  1000.0,
	}
}

func registerCamera(r *reflection.Registry) {
	m := reflection.Register(r, "CameraComponent", NewCamera)
	reflection.Field(m, "FOV", reflection.TypeFloat, func(c *Camera) *float32 { return &c.FOV })
	reflection.Field(m, "NearClip", reflection.TypeFloat, func(c *Camera) *float32 { return &c.NearClip })
	reflection.Field(m, "FarClip", reflection.TypeFloat, func(c *Camera) *float32 { return &c.FarClip })
	reflection.Field(m, "Primary", reflection.TypeBool, func(c *Camera) *bool { return &c.Primary })
}

// Projection returns the perspective matrix for the given aspect ratio.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.NearClip, c.FarClip)
}

// View looks from the entity's world position along its rotated -Z axis.
func (c *Camera) View(e engine.Entity) mgl32.Mat4 {
	world := engine.WorldMatrix(e)
	eye := world.Col(3).Vec3()
	forward := world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	up := world.Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3()
	return mgl32.LookAtV(eye, eye.Add(forward), up)
}

// FindPrimaryCamera returns the first entity whose camera is marked primary.
func FindPrimaryCamera(s *engine.Scene) (engine.Entity, *Camera, bool) {
	for _, e := range s.Entities() {
		if cam, ok := engine.Get[*Camera](e); ok && cam.Primary {
			return e, cam, true
		}
	}
	return engine.Entity{}, nil, false
}
