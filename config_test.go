package bytelayout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLoadConfig_DefaultValues(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)

	assert.Equal(t, "little", config.Endianness)
	assert.Equal(t, []string{"./layouts"}, config.LayoutDirs)
	assert.Equal(t, "table", config.Output.Format)
	assert.True(t, config.Output.ColorEnabled())
	assert.True(t, config.Interpreter.EchoEnabled())
	assert.Equal(t, DefaultMaxDepth, config.Interpreter.MaxDepth)
}

func TestConfig_YAMLNullHandling(t *testing.T) {
	config, err := ParseConfig([]byte(`
output:
  color: false
interpreter:
  echo: null
`))
	assert.NoError(t, err)

	assert.False(t, config.Output.ColorEnabled())
	assert.True(t, config.Interpreter.EchoEnabled())
}

func TestConfig_EnvironmentExpansion(t *testing.T) {
	t.Setenv("BYTELAYOUT_TEST_DIR", "/opt/layouts")

	config, err := ParseConfig([]byte(`
layout_dirs:
  - ${BYTELAYOUT_TEST_DIR}/saves
  - $BYTELAYOUT_TEST_DIR
`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"/opt/layouts/saves", "/opt/layouts"}, config.LayoutDirs)
}

func TestConfig_ResolveLayoutPath(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "save.xml")
	assert.NoError(t, os.WriteFile(layoutPath, []byte("<layout/>"), 0o644))

	config := &Config{LayoutDirs: []string{filepath.Join(dir, "nowhere"), dir}}

	resolved, err := config.ResolveLayoutPath("save.xml")
	assert.NoError(t, err)
	assert.Equal(t, layoutPath, resolved)

	_, err = config.ResolveLayoutPath("other.xml")
	assert.IsError(t, err, ErrConfigFileNotFound)
}
