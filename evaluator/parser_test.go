package evaluator

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/bytelayout"
	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	node, err := Parse("1 + ${a} * $OffsetOf(b.c)")
	assert.NoError(t, err)

	sum, ok := node.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, '+', sum.Op)
	assert.Equal(t, Position{Offset: 0, Length: 25}, sum.Pos())

	one, ok := sum.Left.(*NumberLiteral)
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(1).Equal(one.Value))

	product, ok := sum.Right.(*BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, '*', product.Op)
	assert.Equal(t, Node(&VariableRef{Path: "a", Position: Position{Offset: 4, Length: 4}}), product.Left)
	assert.Equal(t, Node(&BuiltinCall{Name: "OffsetOf", Path: "b.c", Position: Position{Offset: 11, Length: 14}}), product.Right)
}

func TestParse_Unary(t *testing.T) {
	node, err := Parse("--2")
	assert.NoError(t, err)

	outer, ok := node.(*UnaryExpr)
	assert.True(t, ok)
	assert.Equal(t, Position{Offset: 0, Length: 3}, outer.Pos())

	_, ok = outer.Operand.(*UnaryExpr)
	assert.True(t, ok)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"dangling operator", "1 +"},
		{"unclosed paren", "(1"},
		{"unclosed variable", "${a"},
		{"empty variable", "${}"},
		{"unknown function", "$Unknown(a)"},
		{"function without parens", "$OffsetOf a"},
		{"unclosed function", "$OffsetOf(a"},
		{"juxtaposed numbers", "1 2"},
		{"non numeric index", "${a[x]}"},
		{"unclosed index", "${a[1}"},
		{"empty hex", "0x"},
		{"bare dollar", "$ 1"},
		{"trailing dot", "${a.}"},
		{"unknown character", "1 @ 2"},
		{"bare identifier", "a + 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.IsError(t, err, bytelayout.ErrInvalidExpression)
		})
	}
}
