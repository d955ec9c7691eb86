package interpreter

import (
	"fmt"
	"slices"

	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/evaluator"
	"github.com/shibukawa/bytelayout/statement"
	"github.com/shibukawa/bytelayout/symboltable"
	"github.com/shopspring/decimal"
)

// block interprets a statement list in scope. Types defined by the list are
// visible to the rest of it and to nested bodies.
func (p *pass) block(stmts []*statement.Statement, scope symboltable.ScopeID, parent *registry) error {
	types := newRegistry(parent)

	for _, s := range stmts {
		if err := p.statement(s, scope, types); err != nil {
			pos := s.Position()
			return bytelayout.NewFault(err, pos.Line, pos.Column)
		}
	}

	return nil
}

func (p *pass) statement(s *statement.Statement, scope symboltable.ScopeID, types *registry) error {
	keyword := s.Keyword()

	class := statement.Lookup(keyword, types)
	if class == statement.Unknown {
		return fmt.Errorf("%w: '%s'", bytelayout.ErrUnknownIdentifier, keyword)
	}

	if err := checkParameters(s); err != nil {
		return err
	}

	name, _ := s.Parameter(statement.ParamName)
	p.logger.Debug("statement",
		"keyword", keyword,
		"name", name,
		"scope", p.table.ScopeName(scope),
		"offset", p.table.GlobalCursor(scope),
		"line", s.Position().Line)

	switch class {
	case statement.Directive:
		return p.directive(s, scope, types)
	case statement.CustomType:
		t, _ := types.lookup(keyword)
		if !t.composite {
			return p.primitive(s, scope, t.kind, keyword)
		}

		if s.ChildCount() > 0 {
			return fmt.Errorf("%w: '%s' takes its fields from its typedef", bytelayout.ErrUnexpectedChildren, keyword)
		}

		return p.structField(s, scope, t.body, t.scope, keyword)
	default:
		if keyword == statement.KeywordStruct {
			return p.structField(s, scope, s.Children(), types, keyword)
		}

		kind, _ := statement.PrimitiveKind(keyword)

		return p.primitive(s, scope, kind, keyword)
	}
}

func checkParameters(s *statement.Statement) error {
	accepted := statement.AcceptedParameters(s.Keyword())

	for _, param := range s.Parameters() {
		if !slices.Contains(accepted, param.Name) {
			return fmt.Errorf("%w: '%s' is not a parameter of %s", bytelayout.ErrUnknownParameter, param.Name, s.Keyword())
		}
	}

	for _, name := range statement.RequiredParameters(s.Keyword()) {
		if !s.HasParameter(name) {
			return fmt.Errorf("%w: %s requires '%s'", bytelayout.ErrMissingParameter, s.Keyword(), name)
		}
	}

	return nil
}

func (p *pass) primitive(s *statement.Statement, scope symboltable.ScopeID, kind binarydata.Kind, typeName string) error {
	if s.ChildCount() > 0 {
		return fmt.Errorf("%w: %s is a primitive type", bytelayout.ErrUnexpectedChildren, typeName)
	}

	count, isCollection, err := p.count(s, scope)
	if err != nil {
		return err
	}

	elements := 1
	if isCollection {
		elements = count
	}

	size := kind.Size()
	if err := p.data.CheckRange(p.table.GlobalCursor(scope), size, elements); err != nil {
		return err
	}

	name, _ := s.Parameter(statement.ParamName)

	id, err := p.insert(scope, name, isCollection, count)
	if err != nil {
		return err
	}

	typ := symboltable.Type{Name: typeName, Kind: kind}

	if !isCollection {
		p.table.SetType(id, typ, size)
		p.table.Advance(scope, size)

		return nil
	}

	for _, element := range p.table.Elements(id) {
		p.table.Anchor(element)
		p.table.SetType(element, typ, size)
		p.table.Advance(scope, size)
	}

	p.table.SetType(id, typ, size*count)

	return nil
}

// structField reserves the field before laying out its body, so the body can
// refer to the field's own offset.
func (p *pass) structField(s *statement.Statement, scope symboltable.ScopeID, body []*statement.Statement, bodyTypes *registry, typeName string) error {
	count, isCollection, err := p.count(s, scope)
	if err != nil {
		return err
	}

	name, _ := s.Parameter(statement.ParamName)

	id, err := p.insert(scope, name, isCollection, count)
	if err != nil {
		return err
	}

	typ := symboltable.Type{Name: typeName, Composite: true}

	if !isCollection {
		length, err := p.structBody(id, body, bodyTypes)
		if err != nil {
			return err
		}

		p.table.SetType(id, typ, length)
		p.table.Advance(scope, length)

		return nil
	}

	start := p.table.Cursor(scope)

	for _, element := range p.table.Elements(id) {
		p.table.Anchor(element)

		length, err := p.structBody(element, body, bodyTypes)
		if err != nil {
			return err
		}

		p.table.SetType(element, typ, length)
		p.table.Advance(scope, length)
	}

	p.table.SetType(id, typ, p.table.Cursor(scope)-start)

	return nil
}

func (p *pass) structBody(id symboltable.EntryID, body []*statement.Statement, types *registry) (int, error) {
	if p.depth >= p.maxDepth {
		return 0, fmt.Errorf("%w: %s exceeds %d levels", bytelayout.ErrNestingTooDeep, p.table.FullName(id), p.maxDepth)
	}

	p.depth++
	defer func() { p.depth-- }()

	child := p.table.OpenScope(id)
	if err := p.block(body, child, types); err != nil {
		return 0, err
	}

	return p.table.Cursor(child), nil
}

func (p *pass) insert(scope symboltable.ScopeID, name string, isCollection bool, count int) (symboltable.EntryID, error) {
	if !symboltable.ValidName(name) {
		return symboltable.NoEntry, fmt.Errorf("%w: '%s'", bytelayout.ErrInvalidSymbolName, name)
	}

	id, ok := p.table.Insert(scope, name, isCollection, count)
	if !ok {
		return symboltable.NoEntry, fmt.Errorf("%w: '%s' is already declared in this scope", bytelayout.ErrDuplicateSymbol, name)
	}

	return id, nil
}

// count evaluates the optional count parameter. An explicit count makes the
// field a collection, even for 0 or 1.
func (p *pass) count(s *statement.Statement, scope symboltable.ScopeID) (int, bool, error) {
	raw, ok := s.Parameter(statement.ParamCount)
	if !ok {
		return 0, false, nil
	}

	n, err := p.evalInt(raw, scope, statement.ParamCount)
	if err != nil {
		return 0, false, err
	}

	if n > p.data.Len() {
		return 0, false, fmt.Errorf("%w: count %d exceeds the %d byte buffer", bytelayout.ErrOutOfRange, n, p.data.Len())
	}

	return n, true, nil
}

// evalInt evaluates a parameter that must produce a non-negative integer.
func (p *pass) evalInt(raw string, scope symboltable.ScopeID, param string) (int, error) {
	v, err := evaluator.Evaluate(raw, p.context(scope))
	if err != nil {
		return 0, fmt.Errorf("%s '%s': %w", param, raw, err)
	}

	// Division keeps decimal.DivisionPrecision digits, so 1/3*3 lands one
	// unit short of 1 in the last place.
	v = v.Round(int32(decimal.DivisionPrecision - 1))

	if !v.IsInteger() || v.IsNegative() || v.GreaterThan(decimal.NewFromInt(maxCount)) {
		return 0, fmt.Errorf("%w: %s '%s' evaluates to %s", bytelayout.ErrInvalidCount, param, raw, v)
	}

	return int(v.IntPart()), nil
}

const maxCount = 1<<31 - 1

func (p *pass) context(scope symboltable.ScopeID) evaluator.Context {
	return evaluator.Context{Symbols: p.table, Scope: scope, Data: p.data}
}
