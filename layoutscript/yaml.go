package layoutscript

import (
	"fmt"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/statement"
)

// BodyKey is the YAML parameter holding nested statements.
const BodyKey = "body"

// ParseYAML reads a script such as:
//
//	version: 1.0.0
//	metadata:
//	  name: save
//	layout:
//	  - short: {name: Health}
//	  - struct:
//	      name: Weapons
//	      count: 4
//	      body:
//	        - uint: {name: Id}
//
// Every statement is a mapping with a single keyword key.
func ParseYAML(src []byte) (*LayoutScript, error) {
	file, err := parser.ParseBytes(src, 0)
	if err != nil {
		return nil, bytelayout.NewFault(fmt.Errorf("%w: %w", bytelayout.ErrInvalidScript, err), 0, 0)
	}

	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return nil, bytelayout.NewFault(fmt.Errorf("%w: document is empty", bytelayout.ErrInvalidScript), 0, 0)
	}

	body := file.Docs[0].Body

	entries, ok := mappingValues(body)
	if !ok {
		pos := nodePosition(body)
		return nil, bytelayout.NewFault(fmt.Errorf("%w: top level must be a mapping", bytelayout.ErrInvalidRootElement), pos.Line, pos.Column)
	}

	script := &LayoutScript{Version: bytelayout.CurrentVersion, Metadata: map[string]string{}}
	rootPos := statement.Position{Line: 1, Column: 1}

	var layout ast.Node

	for _, entry := range entries {
		key, _ := scalarText(entry.Key)
		pos := nodePosition(entry.Key)

		switch key {
		case "version":
			text, ok := scalarText(entry.Value)
			if !ok {
				return nil, bytelayout.NewFault(fmt.Errorf("%w: version must be a scalar", bytelayout.ErrMalformattedVersion), pos.Line, pos.Column)
			}

			v, err := bytelayout.ParseVersion(text)
			if err != nil {
				return nil, bytelayout.NewFault(err, pos.Line, pos.Column)
			}

			script.Version = v
		case "metadata":
			if err := readMetadata(entry.Value, script.Metadata); err != nil {
				return nil, err
			}
		case RootKeyword:
			layout = entry.Value
			rootPos = pos
		default:
			return nil, bytelayout.NewFault(fmt.Errorf("%w: unexpected top-level key '%s'", bytelayout.ErrInvalidRootElement, key), pos.Line, pos.Column)
		}
	}

	children, err := yamlStatements(layout)
	if err != nil {
		return nil, err
	}

	if len(children) == 0 {
		return nil, bytelayout.NewFault(bytelayout.ErrEmptyLayout, rootPos.Line, rootPos.Column)
	}

	script.Root = statement.New(RootKeyword, rootPos, nil, children...)

	return script, nil
}

func readMetadata(node ast.Node, metadata map[string]string) error {
	if isNull(node) {
		return nil
	}

	entries, ok := mappingValues(node)
	if !ok {
		pos := nodePosition(node)
		return bytelayout.NewFault(fmt.Errorf("%w: metadata must be a mapping", bytelayout.ErrInvalidScript), pos.Line, pos.Column)
	}

	for _, entry := range entries {
		key, _ := scalarText(entry.Key)

		value, ok := scalarText(entry.Value)
		if !ok {
			pos := nodePosition(entry.Value)
			return bytelayout.NewFault(fmt.Errorf("%w: metadata '%s' must be a scalar", bytelayout.ErrInvalidScript, key), pos.Line, pos.Column)
		}

		metadata[key] = value
	}

	return nil
}

// yamlStatements converts a sequence of single-key mappings.
func yamlStatements(node ast.Node) ([]*statement.Statement, error) {
	if node == nil || isNull(node) {
		return nil, nil
	}

	seq, ok := node.(*ast.SequenceNode)
	if !ok {
		pos := nodePosition(node)
		return nil, bytelayout.NewFault(fmt.Errorf("%w: expected a list of statements", bytelayout.ErrInvalidScript), pos.Line, pos.Column)
	}

	result := make([]*statement.Statement, 0, len(seq.Values))

	for _, item := range seq.Values {
		s, err := yamlStatement(item)
		if err != nil {
			return nil, err
		}

		result = append(result, s)
	}

	return result, nil
}

func yamlStatement(node ast.Node) (*statement.Statement, error) {
	entries, ok := mappingValues(node)
	if !ok || len(entries) != 1 {
		pos := nodePosition(node)
		return nil, bytelayout.NewFault(fmt.Errorf("%w: a statement is a mapping with exactly one keyword", bytelayout.ErrInvalidScript), pos.Line, pos.Column)
	}

	keyword, _ := scalarText(entries[0].Key)
	pos := nodePosition(entries[0].Key)

	if isNull(entries[0].Value) {
		return statement.New(keyword, pos, nil), nil
	}

	fields, ok := mappingValues(entries[0].Value)
	if !ok {
		if text, scalar := scalarText(entries[0].Value); scalar && text != "" {
			return nil, bytelayout.NewFault(fmt.Errorf("%w: %s has text '%s' instead of parameters", bytelayout.ErrUnexpectedText, keyword, text), pos.Line, pos.Column)
		}

		return nil, bytelayout.NewFault(fmt.Errorf("%w: parameters of %s must be a mapping", bytelayout.ErrInvalidScript, keyword), pos.Line, pos.Column)
	}

	var (
		params   []statement.Parameter
		children []*statement.Statement
	)

	for _, field := range fields {
		name, _ := scalarText(field.Key)

		if name == BodyKey {
			nested, err := yamlStatements(field.Value)
			if err != nil {
				return nil, err
			}

			children = append(children, nested...)

			continue
		}

		value, ok := scalarText(field.Value)
		if !ok {
			fieldPos := nodePosition(field.Key)
			return nil, bytelayout.NewFault(fmt.Errorf("%w: parameter '%s' of %s must be a scalar", bytelayout.ErrInvalidScript, name, keyword), fieldPos.Line, fieldPos.Column)
		}

		params = append(params, statement.Parameter{Name: name, Value: value})
	}

	return statement.New(keyword, pos, params, children...), nil
}

func mappingValues(node ast.Node) ([]*ast.MappingValueNode, bool) {
	switch n := node.(type) {
	case *ast.MappingNode:
		return n.Values, true
	case *ast.MappingValueNode:
		return []*ast.MappingValueNode{n}, true
	default:
		return nil, false
	}
}

func isNull(node ast.Node) bool {
	_, ok := node.(*ast.NullNode)
	return ok
}

// scalarText returns the text of a scalar node; null reads as "".
func scalarText(node ast.Node) (string, bool) {
	if node == nil || isNull(node) {
		return "", true
	}

	scalar, ok := node.(ast.ScalarNode)
	if !ok {
		return "", false
	}

	return fmt.Sprint(scalar.GetValue()), true
}

func nodePosition(node ast.Node) statement.Position {
	if node == nil {
		return statement.Position{}
	}

	token := node.GetToken()
	if token == nil || token.Position == nil {
		return statement.Position{}
	}

	return statement.Position{Line: token.Position.Line, Column: token.Position.Column}
}
