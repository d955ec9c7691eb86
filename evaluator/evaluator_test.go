package evaluator

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/symboltable"
	"github.com/shopspring/decimal"
)

func declare(table *symboltable.Table, s symboltable.ScopeID, name string, kind binarydata.Kind) symboltable.EntryID {
	id, _ := table.Insert(s, name, false, 0)
	table.SetType(id, symboltable.Type{Name: kind.String(), Kind: kind}, kind.Size())
	table.Advance(s, kind.Size())

	return id
}

func declareArray(table *symboltable.Table, s symboltable.ScopeID, name string, kind binarydata.Kind, count int) {
	typ := symboltable.Type{Name: kind.String(), Kind: kind}
	id, _ := table.Insert(s, name, true, count)

	for _, element := range table.Elements(id) {
		table.Anchor(element)
		table.SetType(element, typ, kind.Size())
		table.Advance(s, kind.Size())
	}

	table.SetType(id, typ, kind.Size()*count)
}

// fixture lays out:
//
//	0  short a = 2
//	2  short b = 3
//	4  float f = 1.5
//	8  bool flag = true
//	9  char letter = 'A'
//	10 char name[4] = "Hi"
//	14 byte nums[3] = {1, 2, 3}
//	17 struct Pos { short X = -4; short Y = 7 }
func fixture() (Context, symboltable.ScopeID) {
	table := symboltable.New()

	declare(table, symboltable.Root, "a", binarydata.KindInt16)
	declare(table, symboltable.Root, "b", binarydata.KindInt16)
	declare(table, symboltable.Root, "f", binarydata.KindFloat32)
	declare(table, symboltable.Root, "flag", binarydata.KindBool8)
	declare(table, symboltable.Root, "letter", binarydata.KindChar8)
	declareArray(table, symboltable.Root, "name", binarydata.KindChar8, 4)
	declareArray(table, symboltable.Root, "nums", binarydata.KindUInt8, 3)

	pos, _ := table.Insert(symboltable.Root, "Pos", false, 0)
	inner := table.OpenScope(pos)
	declare(table, inner, "X", binarydata.KindInt16)
	declare(table, inner, "Y", binarydata.KindInt16)
	table.SetType(pos, symboltable.Type{Name: "struct", Composite: true}, table.Cursor(inner))
	table.Advance(symboltable.Root, table.Cursor(inner))

	data := binarydata.FromBytes([]byte{
		0x02, 0x00,
		0x03, 0x00,
		0x00, 0x00, 0xC0, 0x3F,
		0x01,
		'A',
		'H', 'i', 0x00, 0x00,
		0x01, 0x02, 0x03,
		0xFC, 0xFF,
		0x07, 0x00,
	}, binarydata.LittleEndian)

	return Context{Symbols: table, Scope: symboltable.Root, Data: data}, inner
}

func TestEvaluate(t *testing.T) {
	ctx, _ := fixture()

	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"10 - 4 - 3", "3"},
		{"-${a} + 10", "8"},
		{"${a} + ${b}", "5"},
		{"${b} / ${a}", "1.5"},
		{"0x10 + 1", "17"},
		{"1.25 - 0.25", "1"},
		{"${f} * 2", "3"},
		{"${flag} + ${letter}", "66"},
		{"${nums[2]} * ${Pos.X}", "-12"},
		{"$GlobalOffsetOf(Pos.Y)", "19"},
		{"$OffsetOf(Pos.Y)", "2"},
		{"$OffsetOf(nums[1])", "15"},
		{"$SizeOf(Pos)", "4"},
		{"$SizeOf(name)", "4"},
		{"$ElementCount(nums)", "3"},
		{"$ElementCount(a)", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr, ctx)
			assert.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestEvaluate_NestedScope(t *testing.T) {
	ctx, inner := fixture()
	ctx.Scope = inner

	got, err := Evaluate("${X} + ${a} + ${Pos.Y}", ctx)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(got), "got %s", got)
}

func TestEvaluate_Errors(t *testing.T) {
	ctx, _ := fixture()

	tests := []struct {
		expr    string
		wantErr error
		kind    bytelayout.Kind
	}{
		{"${missing}", bytelayout.ErrUnknownVariable, bytelayout.KindEval},
		{"$OffsetOf(Pos.Z)", bytelayout.ErrUnknownVariable, bytelayout.KindEval},
		{"${a} / (${b} - 3)", bytelayout.ErrDivisionByZero, bytelayout.KindEval},
		{"1 +", bytelayout.ErrInvalidExpression, bytelayout.KindEval},
		{"${Pos}", bytelayout.ErrTypeMismatch, bytelayout.KindLayout},
		{"${nums} + 1", bytelayout.ErrTypeMismatch, bytelayout.KindLayout},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Evaluate(tt.expr, ctx)
			assert.IsError(t, err, tt.wantErr)
			assert.Equal(t, tt.kind, bytelayout.KindOf(err))
		})
	}
}

func TestEvaluate_PendingEntry(t *testing.T) {
	table := symboltable.New()
	player, _ := table.Insert(symboltable.Root, "Player", false, 0)
	table.OpenScope(player)

	ctx := Context{Symbols: table, Data: binarydata.New(4, binarydata.LittleEndian)}

	got, err := Evaluate("$GlobalOffsetOf(Player)", ctx)
	assert.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = Evaluate("$SizeOf(Player)", ctx)
	assert.IsError(t, err, bytelayout.ErrTypeMismatch)
}

func TestExtractVariableNames(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"1 + 2", nil},
		{"${a} + $OffsetOf(Pos.Y) * ${a} - ${ b }", []string{"a", "Pos.Y", "b"}},
		{"${Weapons[02].Id}", []string{"Weapons[2].Id"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ExtractVariableNames(tt.expr)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ExtractVariableNames("${a")
	assert.IsError(t, err, bytelayout.ErrInvalidExpression)
}
