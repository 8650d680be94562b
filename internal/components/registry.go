// Package components holds the concrete component types and registers them
// with the reflection registry.
package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirgoscene/internal/engine"
	"mirgoscene/internal/reflection"
)

// RegisterAll registers every serializable component with r. A type left out
// here is invisible to the serializers.
func RegisterAll(r *reflection.Registry) {
	registerTag(r)
	registerTransform(r)
	registerCamera(r)
	registerMeshRenderer(r)
	registerRigidbody(r)
	registerAudio(r)
	registerListener(r)
	registerBoxCollider(r)
	registerPointLight(r)
	registerPrefabComponent(r)
}

// NewRegistry returns a registry with every component registered.
func NewRegistry() *reflection.Registry {
	r := reflection.NewRegistry()
	RegisterAll(r)
	return r
}

func registerTag(r *reflection.Registry) {
	m := reflection.Register(r, "TagComponent", func() *engine.TagComponent { return engine.NewTag("") })
	reflection.Field(m, "Tag", reflection.TypeString, func(c *engine.TagComponent) *string { return &c.Tag })
}

func registerTransform(r *reflection.Registry) {
	m := reflection.Register(r, "TransformComponent", engine.NewTransform)
	reflection.Field(m, "Position", reflection.TypeVec3, func(c *engine.TransformComponent) *mgl32.Vec3 { return &c.Position })
	reflection.Field(m, "Rotation", reflection.TypeQuat, func(c *engine.TransformComponent) *mgl32.Quat { return &c.Rotation })
	reflection.Field(m, "Scale", reflection.TypeVec3, func(c *engine.TransformComponent) *mgl32.Vec3 { return &c.Scale })
	reflection.Field(m, "Parent", reflection.TypeEntity, func(c *engine.TransformComponent) *engine.EntityID { return &c.Parent })
}
