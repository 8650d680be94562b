package engine

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgoscene/internal/mathx"
)

// TagComponent names an entity. Scene serialization only writes tagged
// entities.
type TagComponent struct {
	Tag string
}

func NewTag(tag string) *TagComponent {
	return &TagComponent{Tag: tag}
}

type TransformComponent struct {
	Identity
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Parent   EntityID
}

func NewTransform() *TransformComponent {
	return &TransformComponent{
		Identity: NewIdentity(),
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// EulerDegrees returns the rotation as pitch, yaw, roll in degrees.
func (t *TransformComponent) EulerDegrees() mgl32.Vec3 {
	return mathx.QuatToEuler(t.Rotation)
}

func (t *TransformComponent) SetEulerDegrees(deg mgl32.Vec3) {
	t.Rotation = mathx.EulerToQuat(deg)
}

// LocalMatrix composes translation, rotation and scale, applied scale first.
func (t *TransformComponent) LocalMatrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(t.Rotation.Normalize().Mat4()).Mul4(scale)
}
