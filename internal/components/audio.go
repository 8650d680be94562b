package components

import (
	"mirgoscene/internal/engine"
	"mirgoscene/internal/reflection"
)

type AudioType int

const (
	AudioSound AudioType = iota
	AudioStream
)

type AudioState int

const (
	AudioStopped AudioState = iota
	AudioPlaying
	AudioPaused
)

type Audio struct {
	engine.Identity

	// Serialized fields
	FilePath    string
	Type        AudioType
	State       AudioState
	Volume      float32
	Pitch       float32
	Loop        bool
	Mute        bool
	Reverb      bool
	Is3D        bool // 3D spatialization
	MinDistance float32
	MaxDistance float32

	// Runtime state
	handle uint64
}

func NewAudio() *Audio {
	return &Audio{
		Identity:    engine.NewIdentity(),
		Volume:      1.0,
		Pitch:       1.0,
		Is3D:        true,
		MinDistance: 1.0,
		MaxDistance: 50.0,
	}
}

func registerAudio(r *reflection.Registry) {
	m := reflection.Register(r, "AudioComponent", NewAudio)
	reflection.Field(m, "FilePath", reflection.TypeString, func(c *Audio) *string { return &c.FilePath })
	m.AddProperty("Type", reflection.TypeInt,
		func(c engine.Component) any { return int(c.(*Audio).Type) },
		func(c engine.Component, v any) { c.(*Audio).Type = AudioType(v.(int)) },
	)
	m.AddProperty("State", reflection.TypeInt,
		func(c engine.Component) any { return int(c.(*Audio).State) },
		func(c engine.Component, v any) { c.(*Audio).State = AudioState(v.(int)) },
	)
	reflection.Field(m, "Volume", reflection.TypeFloat, func(c *Audio) *float32 { return &c.Volume })
	reflection.Field(m, "Pitch", reflection.TypeFloat, func(c *Audio) *float32 { return &c.Pitch })
	reflection.Field(m, "Loop", reflection.TypeBool, func(c *Audio) *bool { return &c.Loop })
	reflection.Field(m, "Mute", reflection.TypeBool, func(c *Audio) *bool { return &c.Mute })
	reflection.Field(m, "Reverb", reflection.TypeBool, func(c *Audio) *bool { return &c.Reverb })
	reflection.Field(m, "Is3D", reflection.TypeBool, func(c *Audio) *bool { return &c.Is3D })
	reflection.Field(m, "MinDistance", reflection.TypeFloat, func(c *Audio) *float32 { return &c.MinDistance })
	reflection.Field(m, "MaxDistance", reflection.TypeFloat, func(c *Audio) *float32 { return &c.MaxDistance })
	// Prefab files before 2.0 wrote the path under this key.
	m.Alias("FilePath", "AudioFilePath")
}

// Handle is the playback handle of a loaded sound, 0 when nothing is bound.
func (a *Audio) Handle() uint64 {
	return a.handle
}

// Bind attaches a playback handle owned by the audio backend.
func (a *Audio) Bind(handle uint64) {
	a.handle = handle
}

func (a *Audio) Unbind() {
	a.handle = 0
	a.State = AudioStopped
}
