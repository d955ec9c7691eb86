package interpreter

import (
	"errors"
	"fmt"

	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/evaluator"
	"github.com/shibukawa/bytelayout/layoutscript"
	"github.com/shibukawa/bytelayout/statement"
	"github.com/shibukawa/bytelayout/symboltable"
)

// Check validates script without data: keywords, parameters, children, type
// definitions, field names and the syntax of expressions, templates and
// conditions. Faults that depend on field values, such as counts, bounds and
// assert results, surface only when the script is interpreted.
func (in *Interpreter) Check(script *layoutscript.LayoutScript) error {
	if script == nil {
		return bytelayout.NewFault(fmt.Errorf("%w: no script", bytelayout.ErrInvalidScript), 0, 0)
	}

	if err := script.Version.CheckSupported(); err != nil {
		return bytelayout.NewFault(err, 0, 0).WithLayout(script.Name())
	}

	root := script.Root
	if root == nil || root.ChildCount() == 0 {
		var pos statement.Position
		if root != nil {
			pos = root.Position()
		}

		return bytelayout.NewFault(bytelayout.ErrEmptyLayout, pos.Line, pos.Column).WithLayout(script.Name())
	}

	c := &checker{maxDepth: in.maxDepth}

	if err := c.block(root.Children(), newRegistry(nil)); err != nil {
		var fault *bytelayout.Fault
		if errors.As(err, &fault) {
			return fault.WithLayout(script.Name())
		}

		return err
	}

	return nil
}

type checker struct {
	maxDepth int
	depth    int
}

func (c *checker) block(stmts []*statement.Statement, parent *registry) error {
	types := newRegistry(parent)
	fields := map[string]bool{}

	for _, s := range stmts {
		if err := c.statement(s, types, fields); err != nil {
			pos := s.Position()
			return bytelayout.NewFault(err, pos.Line, pos.Column)
		}
	}

	return nil
}

func (c *checker) statement(s *statement.Statement, types *registry, fields map[string]bool) error {
	keyword := s.Keyword()

	class := statement.Lookup(keyword, types)
	if class == statement.Unknown {
		return fmt.Errorf("%w: '%s'", bytelayout.ErrUnknownIdentifier, keyword)
	}

	if err := checkParameters(s); err != nil {
		return err
	}

	switch class {
	case statement.Directive:
		return c.directive(s, types)
	case statement.CustomType:
		t, _ := types.lookup(keyword)
		if !t.composite {
			return c.field(s, fields, keyword, false)
		}

		if s.ChildCount() > 0 {
			return fmt.Errorf("%w: '%s' takes its fields from its typedef", bytelayout.ErrUnexpectedChildren, keyword)
		}

		return c.field(s, fields, keyword, true)
	default:
		if keyword == statement.KeywordStruct {
			if err := c.field(s, fields, keyword, true); err != nil {
				return err
			}

			return c.body(s.Children(), types)
		}

		return c.field(s, fields, keyword, false)
	}
}

// field checks the declaration part shared by every type statement.
func (c *checker) field(s *statement.Statement, fields map[string]bool, typeName string, composite bool) error {
	if !composite && s.ChildCount() > 0 {
		return fmt.Errorf("%w: %s is a primitive type", bytelayout.ErrUnexpectedChildren, typeName)
	}

	if err := checkExpression(s, statement.ParamCount); err != nil {
		return err
	}

	name, _ := s.Parameter(statement.ParamName)
	if !symboltable.ValidName(name) {
		return fmt.Errorf("%w: '%s'", bytelayout.ErrInvalidSymbolName, name)
	}

	if fields[name] {
		return fmt.Errorf("%w: '%s' is already declared in this scope", bytelayout.ErrDuplicateSymbol, name)
	}

	fields[name] = true

	return nil
}

func (c *checker) body(stmts []*statement.Statement, types *registry) error {
	if c.depth >= c.maxDepth {
		return fmt.Errorf("%w: nesting exceeds %d levels", bytelayout.ErrNestingTooDeep, c.maxDepth)
	}

	c.depth++
	defer func() { c.depth-- }()

	return c.block(stmts, types)
}

func (c *checker) directive(s *statement.Statement, types *registry) error {
	keyword := s.Keyword()

	if keyword != statement.KeywordTypedef && s.ChildCount() > 0 {
		return fmt.Errorf("%w: %s is a directive", bytelayout.ErrUnexpectedChildren, keyword)
	}

	switch keyword {
	case statement.KeywordAlign:
		return checkAlign(s, types)
	case statement.KeywordTypedef:
		if err := typedef(s, types); err != nil {
			return err
		}

		name, _ := s.Parameter(statement.ParamName)
		if t, _ := types.lookup(name); t.composite {
			return c.body(t.body, t.scope)
		}

		return nil
	case statement.KeywordEcho:
		message, _ := s.Parameter(statement.ParamMessage)
		return evaluator.CheckTemplate(message)
	case statement.KeywordAssert:
		condition, _ := s.Parameter(statement.ParamCondition)
		if _, err := referencedNames(condition); err != nil {
			return err
		}

		message, _ := s.Parameter(statement.ParamMessage)

		return evaluator.CheckTemplate(message)
	default:
		return fmt.Errorf("%w: directive '%s'", bytelayout.ErrUnknownIdentifier, keyword)
	}
}

func checkAlign(s *statement.Statement, types *registry) error {
	kindName, hasKind := s.Parameter(statement.ParamKind)
	if hasKind {
		if _, err := types.primitiveKind(kindName); err != nil {
			return err
		}
	}

	hasCount := s.HasParameter(statement.ParamCount)
	hasBoundary := s.HasParameter(statement.ParamBoundary)

	switch {
	case hasCount && hasBoundary:
		return fmt.Errorf("%w: align takes either count or boundary, not both", bytelayout.ErrInvalidCount)
	case !hasCount && !hasBoundary && !hasKind:
		return fmt.Errorf("%w: align requires '%s', '%s' or '%s'", bytelayout.ErrMissingParameter,
			statement.ParamCount, statement.ParamBoundary, statement.ParamKind)
	}

	if err := checkExpression(s, statement.ParamCount); err != nil {
		return err
	}

	return checkExpression(s, statement.ParamBoundary)
}

// checkExpression parses the optional expression parameter param.
func checkExpression(s *statement.Statement, param string) error {
	raw, ok := s.Parameter(param)
	if !ok {
		return nil
	}

	if _, err := evaluator.Parse(raw); err != nil {
		return fmt.Errorf("%s '%s': %w", param, raw, err)
	}

	return nil
}
