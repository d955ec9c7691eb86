package interpreter

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/cel-go/cel"
	celast "github.com/google/cel-go/common/ast"
	"github.com/google/cel-go/common/decls"
	"github.com/google/uuid"
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/evaluator"
	"github.com/shibukawa/bytelayout/statement"
	"github.com/shibukawa/bytelayout/symboltable"
)

// assert evaluates a CEL condition over the fields visible from scope.
func (p *pass) assert(s *statement.Statement, scope symboltable.ScopeID) error {
	condition, _ := s.Parameter(statement.ParamCondition)

	names, err := referencedNames(condition)
	if err != nil {
		return err
	}

	values, err := p.visibleValues(scope, names)
	if err != nil {
		return err
	}

	ok, err := evalCondition(condition, values)
	if err != nil {
		return err
	}

	if ok {
		return nil
	}

	message, hasMessage := s.Parameter(statement.ParamMessage)
	if !hasMessage {
		return fmt.Errorf("%w: %s", bytelayout.ErrAssertionFailed, condition)
	}

	text, err := evaluator.Interpolate(message, p.context(scope))
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: %s", bytelayout.ErrAssertionFailed, text)
}

// referencedNames returns the identifiers used by condition. Fields outside
// this set are not declared, so a field named like a CEL type only clashes
// when the condition uses it.
func referencedNames(condition string) (map[string]bool, error) {
	env, err := cel.NewEnv()
	if err != nil {
		return nil, fmt.Errorf("%w: CEL environment error: %v", bytelayout.ErrInvalidExpression, err)
	}

	parsed, issues := env.Parse(condition)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: CEL expression error: %v", bytelayout.ErrInvalidExpression, issues.Err())
	}

	names := map[string]bool{}

	celast.PreOrderVisit(parsed.NativeRep().Expr(), celast.NewExprVisitor(func(e celast.Expr) {
		if e.Kind() == celast.IdentKind {
			names[e.AsIdent()] = true
		}
	}))

	return names, nil
}

func evalCondition(condition string, values map[string]any) (bool, error) {
	vars := make([]*decls.VariableDecl, 0, len(values))
	for name := range values {
		vars = append(vars, decls.NewVariable(name, cel.DynType))
	}

	env, err := cel.NewEnv(
		cel.HomogeneousAggregateLiterals(),
		cel.EagerlyValidateDeclarations(true),
		cel.CrossTypeNumericComparisons(true),
		cel.VariableDecls(vars...),
	)
	if err != nil {
		return false, fmt.Errorf("%w: CEL environment error: %v", bytelayout.ErrInvalidExpression, err)
	}

	ast, issues := env.Compile(condition)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("%w: CEL expression error: %v", bytelayout.ErrInvalidExpression, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("%w: CEL program creation error: %v", bytelayout.ErrInvalidExpression, err)
	}

	out, _, err := prg.Eval(values)
	if err != nil {
		return false, fmt.Errorf("%w: CEL evaluation error: %v", bytelayout.ErrInvalidExpression, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: condition '%s' yields %v, not a bool", bytelayout.ErrTypeMismatch, condition, out.Type())
	}

	return result, nil
}

// visibleValues collects the typed fields in names from scope and its
// ancestors; a name in an inner scope hides the same name further out.
func (p *pass) visibleValues(scope symboltable.ScopeID, names map[string]bool) (map[string]any, error) {
	values := map[string]any{}

	for sc := scope; sc != symboltable.NoScope; sc = p.table.Parent(sc) {
		for _, id := range p.table.Symbols(sc) {
			e := p.table.Entry(id)
			if !names[e.Name] {
				continue
			}

			if _, hidden := values[e.Name]; hidden || !e.Typed() || isElementName(e.Name) {
				continue
			}

			v, err := p.celValue(id)
			if err != nil {
				return nil, err
			}

			values[e.Name] = v
		}
	}

	return values, nil
}

// isElementName reports whether name is an indexed collection member such as
// "items[2]"; members are reached through the collection's list instead.
func isElementName(name string) bool {
	return strings.HasSuffix(name, "]")
}

// celValue converts an entry to a CEL-friendly value: structs become maps,
// collections lists, integers int64 where they fit.
func (p *pass) celValue(id symboltable.EntryID) (any, error) {
	e := p.table.Entry(id)

	switch {
	case e.IsCollection():
		if e.Type.Kind.IsChar() {
			return p.data.GetString(e.Type.Kind, e.GlobalOffset, e.ElementCount)
		}

		list := make([]any, 0, e.ElementCount)

		for _, element := range p.table.Elements(id) {
			v, err := p.celValue(element)
			if err != nil {
				return nil, err
			}

			list = append(list, v)
		}

		return list, nil
	case e.IsStruct():
		fields := map[string]any{}

		for _, field := range p.table.Symbols(e.Child) {
			fe := p.table.Entry(field)
			if isElementName(fe.Name) {
				continue
			}

			v, err := p.celValue(field)
			if err != nil {
				return nil, err
			}

			fields[fe.Name] = v
		}

		return fields, nil
	case e.Type.Kind.IsChar():
		return p.data.GetString(e.Type.Kind, e.GlobalOffset, 1)
	}

	v, err := p.data.Read(e.Type.Kind, e.GlobalOffset)
	if err != nil {
		return nil, err
	}

	return celScalar(v), nil
}

func celScalar(v any) any {
	switch v := v.(type) {
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v)
		}

		return v
	case float32:
		return float64(v)
	case binarydata.Bool8:
		return bool(v)
	case binarydata.Bool16:
		return bool(v)
	case binarydata.Bool32:
		return bool(v)
	case binarydata.Bool64:
		return bool(v)
	case uuid.UUID:
		return v.String()
	default:
		return v
	}
}
