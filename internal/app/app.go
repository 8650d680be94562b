// Package app holds the services shared by the sceneio commands and the
// providers that build them from a Config.
package app

import (
	"github.com/google/wire"

	"mirgoscene/internal/components"
	"mirgoscene/internal/config"
	"mirgoscene/internal/log"
	"mirgoscene/internal/prefab"
	"mirgoscene/internal/reflection"
	"mirgoscene/internal/serialize"
)

type App struct {
	Config       *config.Config
	Log          *log.Logger
	Components   *reflection.Registry
	Entities     *serialize.EntitySerializer
	Scenes       *serialize.SceneSerializer
	Prefabs      *prefab.Serializer
	Library      *prefab.Library
	Instantiator *prefab.Instantiator
}

// ProviderSet builds an App from a *config.Config. The prefab library is
// the registry instances resolve against.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	components.NewRegistry,
	serialize.NewEntitySerializer,
	ProvideSceneOptions,
	serialize.NewSceneSerializer,
	prefab.NewSerializer,
	ProvideLibrary,
	wire.Bind(new(prefab.Registry), new(*prefab.Library)),
	prefab.NewInstantiator,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	return log.New(cfg.LoggerOptions())
}

func ProvideSceneOptions(cfg *config.Config) serialize.Options {
	return serialize.Options{AtomicLoad: cfg.Scene.AtomicLoad, Indent: cfg.Scene.Indent}
}

// ProvideLibrary returns an unscanned library; call Refresh before lookups.
func ProvideLibrary(cfg *config.Config, s *prefab.Serializer, logger *log.Logger) *prefab.Library {
	return prefab.NewLibrary(cfg.Prefabs.Dir, cfg.Prefabs.Extension, s, logger)
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.Log.Sync()
}
