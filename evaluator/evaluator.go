// Package evaluator computes the small arithmetic expressions embedded in
// layout scripts. Expressions reference the value stored at a symbol with
// ${path} and query positions with builtins such as $GlobalOffsetOf(path).
package evaluator

import (
	"fmt"
	"math"
	"math/big"

	"github.com/google/uuid"
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/symboltable"
	"github.com/shopspring/decimal"
)

// Context is what an expression is evaluated against. Names resolve from
// Scope outward; values are read from Data.
type Context struct {
	Symbols *symboltable.Table
	Scope   symboltable.ScopeID
	Data    *binarydata.BinaryData
}

type builtin func(e symboltable.Entry, path string) (decimal.Decimal, error)

var builtins = map[string]builtin{
	"OffsetOf": func(e symboltable.Entry, _ string) (decimal.Decimal, error) {
		return decimal.NewFromInt(int64(e.LocalOffset)), nil
	},
	"GlobalOffsetOf": func(e symboltable.Entry, _ string) (decimal.Decimal, error) {
		return decimal.NewFromInt(int64(e.GlobalOffset)), nil
	},
	"SizeOf": func(e symboltable.Entry, path string) (decimal.Decimal, error) {
		if !e.Typed() {
			return decimal.Zero, fmt.Errorf("%w: size of %s is not known until its declaration completes", bytelayout.ErrTypeMismatch, path)
		}

		return decimal.NewFromInt(int64(e.Length)), nil
	},
	"ElementCount": func(e symboltable.Entry, _ string) (decimal.Decimal, error) {
		return decimal.NewFromInt(int64(e.ElementCount)), nil
	},
}

// Evaluate parses and evaluates expr. Either the whole expression evaluates or
// an error is returned.
func Evaluate(expr string, ctx Context) (decimal.Decimal, error) {
	node, err := Parse(expr)
	if err != nil {
		return decimal.Zero, err
	}

	return ctx.eval(node)
}

// ExtractVariableNames returns the symbol paths expr refers to, through
// ${path} or builtin arguments, deduplicated in order of first appearance.
func ExtractVariableNames(expr string) ([]string, error) {
	node, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	var names []string

	seen := map[string]bool{}
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			names = append(names, path)
		}
	}

	var walk func(Node)

	walk = func(n Node) {
		switch n := n.(type) {
		case *VariableRef:
			add(n.Path)
		case *BuiltinCall:
			add(n.Path)
		case *UnaryExpr:
			walk(n.Operand)
		case *BinaryExpr:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(node)

	return names, nil
}

func (ctx Context) eval(n Node) (decimal.Decimal, error) {
	switch n := n.(type) {
	case *NumberLiteral:
		return n.Value, nil
	case *VariableRef:
		id, err := ctx.resolve(n.Path)
		if err != nil {
			return decimal.Zero, err
		}

		return Number(ctx, id)
	case *BuiltinCall:
		id, err := ctx.resolve(n.Path)
		if err != nil {
			return decimal.Zero, err
		}

		return builtins[n.Name](ctx.Symbols.Entry(id), n.Path)
	case *UnaryExpr:
		v, err := ctx.eval(n.Operand)
		if err != nil {
			return decimal.Zero, err
		}

		if n.Op == '-' {
			return v.Neg(), nil
		}

		return v, nil
	case *BinaryExpr:
		return ctx.evalBinary(n)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported node %T", bytelayout.ErrInvalidExpression, n)
	}
}

func (ctx Context) evalBinary(n *BinaryExpr) (decimal.Decimal, error) {
	left, err := ctx.eval(n.Left)
	if err != nil {
		return decimal.Zero, err
	}

	right, err := ctx.eval(n.Right)
	if err != nil {
		return decimal.Zero, err
	}

	switch n.Op {
	case '+':
		return left.Add(right), nil
	case '-':
		return left.Sub(right), nil
	case '*':
		return left.Mul(right), nil
	case '/':
		if right.IsZero() {
			return decimal.Zero, fmt.Errorf("%w: at position %d", bytelayout.ErrDivisionByZero, n.Position.Offset+1)
		}

		return left.Div(right), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown operator '%c'", bytelayout.ErrInvalidExpression, n.Op)
	}
}

func (ctx Context) resolve(path string) (symboltable.EntryID, error) {
	if ctx.Symbols == nil {
		return symboltable.NoEntry, fmt.Errorf("%w: %s (no symbols in scope)", bytelayout.ErrUnknownVariable, path)
	}

	id, ok := ctx.Symbols.Lookup(ctx.Scope, path)
	if !ok {
		return symboltable.NoEntry, fmt.Errorf("%w: %s", bytelayout.ErrUnknownVariable, path)
	}

	return id, nil
}

// Number reads the value of a scalar primitive entry as a decimal. Booleans
// read as 1 or 0 and characters as their code.
func Number(ctx Context, id symboltable.EntryID) (decimal.Decimal, error) {
	v, err := scalarValue(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	name := ctx.Symbols.FullName(id)

	switch v := v.(type) {
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint8:
		return decimal.NewFromInt(int64(v)), nil
	case uint16:
		return decimal.NewFromInt(int64(v)), nil
	case uint32:
		return decimal.NewFromInt(int64(v)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0), nil
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return decimal.Zero, fmt.Errorf("%w: %s holds %v", bytelayout.ErrTypeMismatch, name, v)
		}

		return decimal.NewFromFloat32(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, fmt.Errorf("%w: %s holds %v", bytelayout.ErrTypeMismatch, name, v)
		}

		return decimal.NewFromFloat(v), nil
	case binarydata.Bool8:
		return boolNumber(bool(v)), nil
	case binarydata.Bool16:
		return boolNumber(bool(v)), nil
	case binarydata.Bool32:
		return boolNumber(bool(v)), nil
	case binarydata.Bool64:
		return boolNumber(bool(v)), nil
	case binarydata.Char8:
		return decimal.NewFromInt(int64(v)), nil
	case binarydata.Char16:
		return decimal.NewFromInt(int64(v)), nil
	case uuid.UUID:
		return decimal.Zero, fmt.Errorf("%w: %s is a guid, not a number", bytelayout.ErrTypeMismatch, name)
	default:
		return decimal.Zero, fmt.Errorf("%w: %s holds %T", bytelayout.ErrTypeMismatch, name, v)
	}
}

func boolNumber(b bool) decimal.Decimal {
	if b {
		return decimal.NewFromInt(1)
	}

	return decimal.Zero
}

// scalarValue reads the stored value of a typed scalar primitive entry.
func scalarValue(ctx Context, id symboltable.EntryID) (any, error) {
	e := ctx.Symbols.Entry(id)
	name := ctx.Symbols.FullName(id)

	switch {
	case !e.Typed():
		return nil, fmt.Errorf("%w: %s has no value until its declaration completes", bytelayout.ErrTypeMismatch, name)
	case e.IsStruct():
		return nil, fmt.Errorf("%w: %s is a struct and has no value", bytelayout.ErrTypeMismatch, name)
	case e.IsCollection():
		return nil, fmt.Errorf("%w: %s is a collection; refer to one element", bytelayout.ErrTypeMismatch, name)
	case ctx.Data == nil:
		return nil, fmt.Errorf("%w: no data to read %s from", bytelayout.ErrTypeMismatch, name)
	}

	return ctx.Data.Read(e.Type.Kind, e.GlobalOffset)
}
