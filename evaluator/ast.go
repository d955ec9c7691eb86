package evaluator

import "github.com/shopspring/decimal"

// Position is the location of a node within the expression text. Offset is
// the 0-based rune index.
type Position struct {
	Offset int
	Length int
}

// Node is one element of a parsed expression.
type Node interface {
	Pos() Position
}

// NumberLiteral is a decimal or hexadecimal constant.
type NumberLiteral struct {
	Value    decimal.Decimal
	Position Position
}

// VariableRef is a ${path} reference to the value stored at a symbol.
type VariableRef struct {
	Path     string
	Position Position
}

// BuiltinCall is a $Name(path) positional query.
type BuiltinCall struct {
	Name     string
	Path     string
	Position Position
}

// UnaryExpr is a sign applied to an operand.
type UnaryExpr struct {
	Op       rune
	Operand  Node
	Position Position
}

// BinaryExpr is one of + - * / applied to two operands.
type BinaryExpr struct {
	Op       rune
	Left     Node
	Right    Node
	Position Position
}

func (n *NumberLiteral) Pos() Position { return n.Position }
func (n *VariableRef) Pos() Position   { return n.Position }
func (n *BuiltinCall) Pos() Position   { return n.Position }
func (n *UnaryExpr) Pos() Position     { return n.Position }
func (n *BinaryExpr) Pos() Position    { return n.Position }
