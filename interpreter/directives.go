package interpreter

import (
	"fmt"

	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/evaluator"
	"github.com/shibukawa/bytelayout/statement"
	"github.com/shibukawa/bytelayout/symboltable"
)

func (p *pass) directive(s *statement.Statement, scope symboltable.ScopeID, types *registry) error {
	keyword := s.Keyword()

	if keyword != statement.KeywordTypedef && s.ChildCount() > 0 {
		return fmt.Errorf("%w: %s is a directive", bytelayout.ErrUnexpectedChildren, keyword)
	}

	switch keyword {
	case statement.KeywordAlign:
		return p.align(s, scope, types)
	case statement.KeywordTypedef:
		return typedef(s, types)
	case statement.KeywordEcho:
		return p.echo(s, scope)
	case statement.KeywordAssert:
		return p.assert(s, scope)
	default:
		return fmt.Errorf("%w: directive '%s'", bytelayout.ErrUnknownIdentifier, keyword)
	}
}

// align pads the cursor of scope. The unit is the size of kind, one byte when
// kind is omitted:
//
//	count=N     pads N units
//	boundary=N  pads to the next multiple of N units from the scope start
//	kind alone  pads to the next multiple of one unit
func (p *pass) align(s *statement.Statement, scope symboltable.ScopeID, types *registry) error {
	unit := 1

	kindName, hasKind := s.Parameter(statement.ParamKind)
	if hasKind {
		kind, err := types.primitiveKind(kindName)
		if err != nil {
			return err
		}

		unit = kind.Size()
	}

	countRaw, hasCount := s.Parameter(statement.ParamCount)
	boundaryRaw, hasBoundary := s.Parameter(statement.ParamBoundary)
	cursor := p.table.Cursor(scope)

	var padding int

	switch {
	case hasCount && hasBoundary:
		return fmt.Errorf("%w: align takes either count or boundary, not both", bytelayout.ErrInvalidCount)
	case hasCount:
		n, err := p.evalInt(countRaw, scope, statement.ParamCount)
		if err != nil {
			return err
		}

		if n > p.data.Len() {
			return fmt.Errorf("%w: padding of %d units exceeds the %d byte buffer", bytelayout.ErrOutOfRange, n, p.data.Len())
		}

		padding = n * unit
	case hasBoundary:
		n, err := p.evalInt(boundaryRaw, scope, statement.ParamBoundary)
		if err != nil {
			return err
		}

		if n == 0 {
			return fmt.Errorf("%w: boundary must be at least 1", bytelayout.ErrInvalidCount)
		}

		padding = padTo(cursor, n*unit)
	case hasKind:
		padding = padTo(cursor, unit)
	default:
		return fmt.Errorf("%w: align requires '%s', '%s' or '%s'", bytelayout.ErrMissingParameter,
			statement.ParamCount, statement.ParamBoundary, statement.ParamKind)
	}

	if err := p.data.CheckRange(p.table.GlobalCursor(scope), 1, padding); err != nil {
		return err
	}

	p.table.Advance(scope, padding)

	return nil
}

func padTo(cursor, boundary int) int {
	return (boundary - cursor%boundary) % boundary
}

// typedef registers a custom type in the current statement list.
func typedef(s *statement.Statement, types *registry) error {
	name, _ := s.Parameter(statement.ParamName)
	kindName, _ := s.Parameter(statement.ParamKind)

	if !symboltable.ValidName(name) {
		return fmt.Errorf("%w: type name '%s'", bytelayout.ErrInvalidSymbolName, name)
	}

	t := &customType{name: name}

	switch {
	case kindName == statement.KeywordStruct:
		t.composite = true
		t.body = s.Children()
		t.scope = types
	case s.ChildCount() > 0:
		return fmt.Errorf("%w: only struct typedefs have fields", bytelayout.ErrUnexpectedChildren)
	default:
		if base, ok := types.lookup(kindName); ok {
			copied := *base
			copied.name = name
			t = &copied

			break
		}

		kind, err := types.primitiveKind(kindName)
		if err != nil {
			return err
		}

		t.kind = kind
	}

	return types.define(t)
}

// echo appends the interpolated message to the diagnostics of the pass.
func (p *pass) echo(s *statement.Statement, scope symboltable.ScopeID) error {
	message, _ := s.Parameter(statement.ParamMessage)

	text, err := evaluator.Interpolate(message, p.context(scope))
	if err != nil {
		return err
	}

	p.diagnostics.WriteString(text)
	p.diagnostics.WriteByte('\n')

	return nil
}
