package binaryfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/goccy/go-yaml"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/interpreter"
	"github.com/shibukawa/bytelayout/layoutscript"
	"github.com/stretchr/testify/require"
)

type expectedLayout struct {
	Endian  string            `yaml:"endian"`
	Size    int               `yaml:"size"`
	Echo    string            `yaml:"echo,omitempty"`
	Values  map[string]string `yaml:"values"`
	Offsets map[string]int    `yaml:"offsets,omitempty"`
}

// Every case directory holds data.bin, expected.yaml and the same layout in
// one or more surfaces (layout.xml, layout.yaml, layout.md).
func TestAcceptance(t *testing.T) {
	root := filepath.Join("..", "testdata", "acceptance")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		caseDir := filepath.Join(root, e.Name())

		t.Run(e.Name(), func(t *testing.T) {
			raw, err := os.ReadFile(filepath.Join(caseDir, "expected.yaml"))
			require.NoError(t, err)

			var expected expectedLayout
			require.NoError(t, yaml.UnmarshalWithOptions(raw, &expected, yaml.Strict()))

			endian, err := binarydata.ParseEndianness(expected.Endian)
			require.NoError(t, err)

			data, err := os.ReadFile(filepath.Join(caseDir, "data.bin"))
			require.NoError(t, err)

			var scripts []*layoutscript.LayoutScript

			for _, name := range []string{"layout.xml", "layout.yaml", "layout.md"} {
				path := filepath.Join(caseDir, name)
				if _, err := os.Stat(path); os.IsNotExist(err) {
					continue
				}

				script, err := layoutscript.Load(path)
				require.NoError(t, err, name)
				require.NoError(t, interpreter.New().Check(script), name)

				scripts = append(scripts, script)
			}

			require.NotEmpty(t, scripts)

			for _, script := range scripts {
				assert.True(t, scripts[0].Equal(script), "%s differs from %s", script.SourcePath, scripts[0].SourcePath)

				var echo bytes.Buffer

				f, err := Open(script, binarydata.FromBytes(data, endian), interpreter.WithOutput(&echo))
				require.NoError(t, err, script.SourcePath)

				assert.Equal(t, expected.Size, f.Size())
				assert.Equal(t, expected.Echo, echo.String())

				for name, value := range expected.Values {
					s, err := f.String(name)
					assert.NoError(t, err, name)
					assert.Equal(t, value, s, name)
				}

				for name, offset := range expected.Offsets {
					entry, err := f.Lookup(name)
					assert.NoError(t, err, name)
					assert.Equal(t, offset, entry.GlobalOffset, name)
				}
			}
		})
	}
}
