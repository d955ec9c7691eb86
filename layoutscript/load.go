package layoutscript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shibukawa/bytelayout"
)

// Format is a textual script surface.
type Format string

const (
	FormatXML      Format = "xml"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat indicates a file extension or format name no front-end reads.
var ErrUnknownFormat = errors.New("unknown layout script format")

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Parse reads src in the given format.
func Parse(src []byte, format Format) (*LayoutScript, error) {
	switch format {
	case FormatXML:
		return ParseXML(src)
	case FormatYAML:
		return ParseYAML(src)
	case FormatMarkdown:
		return ParseMarkdown(src)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Load reads and parses a script file. Faults carry the path as their layout.
func Load(path string) (*LayoutScript, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout script: %w", err)
	}

	script, err := Parse(src, format)
	if err != nil {
		var fault *bytelayout.Fault
		if errors.As(err, &fault) {
			fault.WithLayout(path)
		}

		return nil, err
	}

	script.SourcePath = path

	return script, nil
}
