// Package layoutscript reads layout scripts from their textual forms.
//
// XML is the primary surface. The same statement tree can be written in YAML,
// or embedded in a Markdown document as a fenced code block. Every front-end
// produces a LayoutScript whose Root carries source positions.
package layoutscript

import (
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/statement"
)

// RootKeyword is the keyword of the statement holding the top-level layout.
const RootKeyword = "layout"

// LayoutScript is a parsed layout document.
type LayoutScript struct {
	Version    bytelayout.Version
	SourcePath string
	Metadata   map[string]string
	Root       *statement.Statement
}

// Equal compares the statement trees only; version and metadata are descriptive.
func (s *LayoutScript) Equal(other *LayoutScript) bool {
	if s == nil || other == nil {
		return s == other
	}

	return s.Root.Equal(other.Root)
}

// Name identifies the script in diagnostics: its source path, or else its
// name or title metadata.
func (s *LayoutScript) Name() string {
	if s.SourcePath != "" {
		return s.SourcePath
	}

	if name := s.Metadata["name"]; name != "" {
		return name
	}

	return s.Metadata["title"]
}
