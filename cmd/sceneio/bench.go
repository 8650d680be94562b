package main

import (
	"fmt"
	"io"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"

	"mirgoscene/internal/app"
	"mirgoscene/internal/components"
	"mirgoscene/internal/engine"
)

func benchScene(n int) *engine.Scene {
	scene := engine.NewScene("Bench")
	for i := 0; i < n; i++ {
		e := scene.CreateEntity(fmt.Sprintf("Entity%d", i))
		tr, _ := engine.Get[*engine.TransformComponent](e)
		tr.Position = mgl32.Vec3{float32(i), 0, float32(-i)}
		tr.SetEulerDegrees(mgl32.Vec3{0, float32(i % 360), 0})
		engine.Add(e, components.NewMeshRenderer(components.MeshType(i%4)))
		engine.Add(e, components.NewRigidbody())
		engine.Add(e, components.NewBoxCollider(mgl32.Vec3{1, 1, 1}))
	}
	return scene
}

func runBench(a *app.App, args []string, out io.Writer) error {
	fs := newFlags("bench", out)
	entities := fs.Int("entities", 1000, "entities in the generated scene")
	rounds := fs.Int("rounds", 20, "serialize/deserialize round trips")
	mode := fs.String("profile", "", "profile to record: cpu|mem")
	dir := fs.String("profile-dir", ".", "directory for profile output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *entities < 1 || *rounds < 1 {
		return fmt.Errorf("-entities and -rounds must be positive")
	}

	switch *mode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*dir), profile.NoShutdownHook, profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(*dir), profile.NoShutdownHook, profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown profile %q", *mode)
	}

	src := benchScene(*entities)
	dst := engine.NewScene("")
	var (
		encode, decode time.Duration
		size           int
	)
	for range *rounds {
		t0 := time.Now()
		data, err := a.Scenes.Serialize(src)
		if err != nil {
			return err
		}
		t1 := time.Now()
		if err := a.Scenes.Deserialize(dst, data); err != nil {
			return err
		}
		encode += t1.Sub(t0)
		decode += time.Since(t1)
		size = len(data)
	}

	r := time.Duration(*rounds)
	fmt.Fprintf(out, "entities=%d rounds=%d bytes=%d\n", *entities, *rounds, size)
	fmt.Fprintf(out, "serialize   avg %v\n", encode/r)
	fmt.Fprintf(out, "deserialize avg %v\n", decode/r)
	return nil
}
