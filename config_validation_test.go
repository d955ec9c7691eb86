package bytelayout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLoadConfig_StrictMode_UnknownKeys(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bytelayout.yaml")

	configContent := `
endianness: little
unknown_key: "should cause error"
output:
  format: json
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	_, err = LoadConfig(configPath)
	assert.Error(t, err, "expected error for unknown keys in strict mode")
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bytelayout.yaml")

	configContent := `
endianness: big
layout_dirs:
  - ./formats
output:
  format: yaml
interpreter:
  max_depth: 8
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	config, err := LoadConfig(configPath)
	assert.NoError(t, err)
	assert.Equal(t, "big", config.Endianness)
	assert.Equal(t, []string{"./formats"}, config.LayoutDirs)
	assert.Equal(t, "yaml", config.Output.Format)
	assert.Equal(t, 8, config.Interpreter.MaxDepth)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantMsg string
	}{
		{
			name:    "invalid endianness",
			config:  Config{Endianness: "middle"},
			wantMsg: "invalid endianness",
		},
		{
			name:    "invalid output format",
			config:  Config{Output: OutputConfig{Format: "xml"}},
			wantMsg: "output.format",
		},
		{
			name:    "negative max depth",
			config:  Config{Interpreter: InterpreterConfig{MaxDepth: -1}},
			wantMsg: "max_depth",
		},
		{
			name:    "empty layout dir",
			config:  Config{LayoutDirs: []string{""}},
			wantMsg: "layout_dirs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfig(&tt.config)
			assert.IsError(t, err, ErrConfigValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	config := getDefaultConfig()
	assert.NoError(t, validateConfig(config))
}
