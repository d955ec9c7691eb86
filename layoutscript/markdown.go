package layoutscript

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/statement"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ErrInvalidFrontMatter indicates unreadable YAML front matter.
var ErrInvalidFrontMatter = fmt.Errorf("%w: invalid front matter", bytelayout.ErrInvalidScript)

// ParseMarkdown reads a layout embedded in a Markdown document. The first
// fenced code block tagged xml or yaml holds the script; front matter keys
// and the first level-one heading (as "title") become metadata. Positions
// refer to lines of the Markdown document.
func ParseMarkdown(src []byte) (*LayoutScript, error) {
	frontMatter, body, lineOffset, err := parseFrontMatter(string(src))
	if err != nil {
		return nil, bytelayout.NewFault(err, 1, 1)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	content := []byte(body)
	doc := md.Parser().Parse(text.NewReader(content))

	title, block := scanDocument(doc, content)
	if block == nil {
		return nil, bytelayout.NewFault(fmt.Errorf("%w: no xml or yaml code block", bytelayout.ErrInvalidScript), 0, 0)
	}

	code, firstLine := codeBlockContent(block, content)
	shift := lineOffset + firstLine - 1

	var script *LayoutScript

	switch codeBlockLanguage(block, content) {
	case "xml":
		script, err = ParseXML([]byte(code))
	default:
		script, err = ParseYAML([]byte(code))
	}

	if err != nil {
		var fault *bytelayout.Fault
		if errors.As(err, &fault) && fault.Line > 0 {
			fault.Line += shift
		}

		return nil, err
	}

	script.Root = shiftLines(script.Root, shift)

	if title != "" {
		if _, ok := script.Metadata["title"]; !ok {
			script.Metadata["title"] = title
		}
	}

	for key, value := range frontMatter {
		if key == "version" {
			v, err := bytelayout.ParseVersion(value)
			if err != nil {
				return nil, bytelayout.NewFault(err, 1, 1)
			}

			script.Version = v

			continue
		}

		script.Metadata[key] = value
	}

	return script, nil
}

// parseFrontMatter splits "---" delimited YAML front matter from content. The
// returned offset is the number of document lines before the first body line.
func parseFrontMatter(content string) (map[string]string, string, int, error) {
	if !strings.HasPrefix(content, "---\n") {
		return map[string]string{}, content, 0, nil
	}

	endIndex := strings.Index(content[4:], "\n---")
	if endIndex == -1 {
		return nil, "", 0, ErrInvalidFrontMatter
	}

	endIndex += 4

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(content[4:endIndex]), &raw); err != nil {
		return nil, "", 0, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}

	result := make(map[string]string, len(raw))

	for key, value := range raw {
		switch value.(type) {
		case map[string]any, map[any]any, []any:
			return nil, "", 0, fmt.Errorf("%w: '%s' must be a scalar", ErrInvalidFrontMatter, key)
		case nil:
			result[key] = ""
		default:
			result[key] = fmt.Sprint(value)
		}
	}

	// the body starts on the closing delimiter line
	return result, content[endIndex+4:], strings.Count(content[:endIndex+1], "\n"), nil
}

func scanDocument(doc ast.Node, content []byte) (string, *ast.FencedCodeBlock) {
	var (
		title string
		block *ast.FencedCodeBlock
	)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && title == "" {
				title = headingText(node, content)
			}

			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			if block == nil && codeBlockLanguage(node, content) != "" {
				block = node
			}

			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return title, block
}

func headingText(heading ast.Node, content []byte) string {
	var result strings.Builder

	_ = ast.Walk(heading, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			segment := node.Segment
			result.Write(content[segment.Start:segment.Stop])
		case *ast.String:
			result.Write(node.Value)
		}

		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(result.String())
}

// codeBlockLanguage returns "xml" or "yaml" for a layout code block, "" otherwise.
func codeBlockLanguage(block *ast.FencedCodeBlock, content []byte) string {
	if block.Info == nil {
		return ""
	}

	segment := block.Info.Segment
	fields := strings.Fields(string(content[segment.Start:segment.Stop]))

	if len(fields) == 0 {
		return ""
	}

	switch strings.ToLower(fields[0]) {
	case "xml":
		return "xml"
	case "yaml", "yml":
		return "yaml"
	default:
		return ""
	}
}

// codeBlockContent returns the block text and the 1-based line of its first
// line within content.
func codeBlockContent(block *ast.FencedCodeBlock, content []byte) (string, int) {
	lines := block.Lines()
	if lines == nil || lines.Len() == 0 {
		return "", 1
	}

	var result strings.Builder

	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		result.Write(line.Value(content))
	}

	first := lines.At(0).Start

	return result.String(), strings.Count(string(content[:first]), "\n") + 1
}

func shiftLines(s *statement.Statement, shift int) *statement.Statement {
	children := s.Children()
	for i, child := range children {
		children[i] = shiftLines(child, shift)
	}

	pos := s.Position()
	if pos.Line > 0 {
		pos.Line += shift
	}

	return statement.New(s.Keyword(), pos, s.Parameters(), children...)
}
