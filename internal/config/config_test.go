package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirgoscene/internal/log"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	src := `
log:
  level: debug
scene:
  atomic_load: true
prefabs:
  dir: content/prefabs
`
	c, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "console", c.Log.Encoding)
	assert.True(t, c.Scene.AtomicLoad)
	assert.True(t, c.Scene.Indent)
	assert.Equal(t, "content/prefabs", c.Prefabs.Dir)
	assert.Equal(t, ".prefab", c.Prefabs.Extension)
	assert.Equal(t, log.LevelDebug, c.LoggerOptions().Level)
}

func TestDecodeEmptyDocument(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("scene:\n  atomic: true\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Log.Level = "verbose"
	assert.Error(t, c.Validate())

	c = Default()
	c.Log.Encoding = "xml"
	assert.Error(t, c.Validate())

	c = Default()
	c.Prefabs.Extension = "prefab"
	assert.Error(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sceneio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  encoding: json\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", c.Log.Encoding)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
