// Package config loads the YAML settings shared by the sceneio tools.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"mirgoscene/internal/log"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Scene   SceneConfig   `yaml:"scene"`
	Prefabs PrefabsConfig `yaml:"prefabs"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type SceneConfig struct {
	// AtomicLoad parses into a staging scene and only replaces the target
	// when the whole document loaded.
	AtomicLoad bool `yaml:"atomic_load"`
	Indent     bool `yaml:"indent"`
}

type PrefabsConfig struct {
	Dir       string `yaml:"dir"`
	Extension string `yaml:"extension"`
}

func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Encoding: "console"},
		Scene:   SceneConfig{AtomicLoad: false, Indent: true},
		Prefabs: PrefabsConfig{Dir: "assets/prefabs", Extension: ".prefab"},
	}
}

// Load reads path on top of Default. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

func Decode(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config log.level: %w", err)
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("config log.encoding: unsupported %q", c.Log.Encoding)
	}
	if c.Prefabs.Extension != "" && !strings.HasPrefix(c.Prefabs.Extension, ".") {
		return fmt.Errorf("config prefabs.extension: %q must start with a dot", c.Prefabs.Extension)
	}
	return nil
}

// LoggerOptions maps the log section onto log.Options. Validate has already
// rejected bad levels, so the parse error is dropped.
func (c *Config) LoggerOptions() log.Options {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Options{Level: level, Encoding: c.Log.Encoding}
}
