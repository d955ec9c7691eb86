package evaluator

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/symboltable"
	"github.com/shopspring/decimal"
)

func TestInterpolate(t *testing.T) {
	ctx, _ := fixture()

	tests := []struct {
		template string
		want     string
	}{
		{"no references", "no references"},
		{"${a} + ${b}", "2 + 3"},
		{"cost: $$5", "cost: $5"},
		{"price $ 3", "price $ 3"},
		{"trailing $", "trailing $"},
		{"cost ${a} $USD", "cost 2 $USD"},
		{"value $Size(a)", "value $Size(a)"},
		{"name=${name} nums=${nums}", "name=Hi nums=[1, 2, 3]"},
		{"${letter}${flag}", "Atrue"},
		{"f=${f}", "f=1.5"},
		{"at $GlobalOffsetOf(Pos) size $SizeOf(Pos)", "at 17 size 4"},
		{"${Pos.X},${Pos.Y}", "-4,7"},
		{"日本 ${a}", "日本 2"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			got, err := Interpolate(tt.template, ctx)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterpolate_Errors(t *testing.T) {
	ctx, _ := fixture()

	_, err := Interpolate("value ${missing}", ctx)
	assert.IsError(t, err, bytelayout.ErrUnknownVariable)

	_, err = Interpolate("value ${a", ctx)
	assert.IsError(t, err, bytelayout.ErrInvalidExpression)

	_, err = Interpolate("value $SizeOf a", ctx)
	assert.IsError(t, err, bytelayout.ErrInvalidExpression)

	_, err = Interpolate("${Pos}", ctx)
	assert.IsError(t, err, bytelayout.ErrTypeMismatch)
}

func TestCheckTemplate(t *testing.T) {
	assert.NoError(t, CheckTemplate("${Missing.Field} costs $$3 $USD at $OffsetOf(X)"))
	assert.IsError(t, CheckTemplate("value ${a"), bytelayout.ErrInvalidExpression)
	assert.IsError(t, CheckTemplate("$SizeOf a"), bytelayout.ErrInvalidExpression)
}

func TestDiagnosticExpression(t *testing.T) {
	table := symboltable.New()
	declare(table, symboltable.Root, "a", binarydata.KindInt32)
	declare(table, symboltable.Root, "b", binarydata.KindInt32)

	data := binarydata.New(8, binarydata.LittleEndian)
	assert.NoError(t, binarydata.Set(data, 0, int32(2)))
	assert.NoError(t, binarydata.Set(data, 4, int32(3)))

	ctx := Context{Symbols: table, Data: data}

	text, err := Interpolate("${a} + ${b}", ctx)
	assert.NoError(t, err)
	assert.Equal(t, "2 + 3", text)

	sum, err := Evaluate("${a} + ${b}", ctx)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(sum))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0.1", FormatValue(float32(0.1)))
	assert.Equal(t, "18446744073709551615", FormatValue(uint64(18446744073709551615)))
	assert.Equal(t, "false", FormatValue(binarydata.Bool64(false)))
	assert.Equal(t, "あ", FormatValue(binarydata.Char16('あ')))
}
