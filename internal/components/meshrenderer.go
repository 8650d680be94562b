package components

import (
	"mirgoscene/internal/engine"
	"mirgoscene/internal/reflection"
)

type MeshType int

const (
	MeshCube MeshType = iota
	MeshSphere
	MeshPlane
	MeshModel
)

func (t MeshType) String() string {
	switch t {
	case MeshCube:
		return "Cube"
	case MeshSphere:
		return "Sphere"
	case MeshPlane:
		return "Plane"
	case MeshModel:
		return "Model"
	default:
		return "Unknown"
	}
}

type MeshRenderer struct {
	engine.Identity
	Visible  bool
	MeshType MeshType
	Material string
	Texture  string
}

func NewMeshRenderer(meshType MeshType) *MeshRenderer {
	return &MeshRenderer{
		Identity: engine.NewIdentity(),
		Visible:  true,
		MeshType: meshType,
	}
}

func registerMeshRenderer(r *reflection.Registry) {
	m := reflection.Register(r, "MeshRendererComponent", func() *MeshRenderer { return NewMeshRenderer(MeshCube) })
	reflection.Field(m, "Visible", reflection.TypeBool, func(c *MeshRenderer) *bool { return &c.Visible })
	// MeshType is a named int, so it needs explicit accessors.
	m.AddProperty("MeshType", reflection.TypeInt,
		func(c engine.Component) any { return int(c.(*MeshRenderer).MeshType) },
		func(c engine.Component, v any) { c.(*MeshRenderer).MeshType = MeshType(v.(int)) },
	)
	reflection.Field(m, "Material", reflection.TypeString, func(c *MeshRenderer) *string { return &c.Material })
	reflection.Field(m, "Texture", reflection.TypeString, func(c *MeshRenderer) *string { return &c.Texture })
}
