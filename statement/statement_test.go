package statement

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/bytelayout/binarydata"
)

func TestStatement_Parameters(t *testing.T) {
	s := New("int", Position{Line: 2, Column: 3}, Params("name", "Score", "count", "2", "name", "Points"))

	assert.Equal(t, "int", s.Keyword())
	assert.Equal(t, Position{Line: 2, Column: 3}, s.Position())
	assert.Equal(t, []Parameter{{Name: "name", Value: "Points"}, {Name: "count", Value: "2"}}, s.Parameters())

	v, ok := s.Parameter("count")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	_, ok = s.Parameter("comment")
	assert.False(t, ok)
	assert.True(t, s.HasParameter("name"))
}

func TestStatement_Immutable(t *testing.T) {
	params := Params("name", "A")
	child := New("byte", Position{}, Params("name", "B"))
	children := []*Statement{child}

	s := New("struct", Position{}, params, children...)
	params[0].Value = "changed"
	children[0] = nil

	got := s.Parameters()
	got[0].Value = "changed again"

	v, _ := s.Parameter("name")
	assert.Equal(t, "A", v)
	assert.Equal(t, 1, s.ChildCount())
	assert.True(t, s.Children()[0] == child)
}

func TestStatement_Equal(t *testing.T) {
	build := func(params []Parameter, children ...*Statement) *Statement {
		return New("struct", Position{Line: 1, Column: 1}, params, children...)
	}

	leaf := func(keyword string) *Statement {
		return New(keyword, Position{}, Params("name", "X"))
	}

	tests := []struct {
		name  string
		a, b  *Statement
		equal bool
	}{
		{
			name:  "parameter order does not matter",
			a:     build(Params("count", "4", "name", "Weapons"), leaf("uint")),
			b:     New("struct", Position{Line: 9, Column: 9}, Params("name", "Weapons", "count", "4"), leaf("uint")),
			equal: true,
		},
		{
			name:  "different parameter value",
			a:     build(Params("name", "A")),
			b:     build(Params("name", "B")),
			equal: false,
		},
		{
			name:  "missing parameter",
			a:     build(Params("name", "A", "count", "1")),
			b:     build(Params("name", "A")),
			equal: false,
		},
		{
			name:  "different child keywords",
			a:     build(Params("name", "A"), leaf("int"), leaf("short")),
			b:     build(Params("name", "A"), leaf("short"), leaf("int")),
			equal: false,
		},
		{
			name:  "different child count",
			a:     build(Params("name", "A"), leaf("int")),
			b:     build(Params("name", "A")),
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}

	var nilStatement *Statement
	assert.True(t, nilStatement.Equal(nil))
	assert.False(t, leaf("int").Equal(nil))
}

func TestStatement_String(t *testing.T) {
	s := New("echo", Position{}, Params("message", `say "hi"`))
	assert.Equal(t, `echo message="say \"hi\""`, s.String())
}

type customTypes map[string]bool

func (c customTypes) HasType(name string) bool {
	return c[name]
}

func TestLookup(t *testing.T) {
	custom := customTypes{"Vector3": true}

	tests := []struct {
		keyword string
		want    Class
	}{
		{"int", BuiltinType},
		{"char16", BuiltinType},
		{"struct", BuiltinType},
		{"align", Directive},
		{"typedef", Directive},
		{"echo", Directive},
		{"assert", Directive},
		{"Vector3", CustomType},
		{"vector3", Unknown},
		{"Int", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(tt.keyword, custom))
		})
	}

	assert.Equal(t, Unknown, Lookup("Vector3", nil))
}

func TestPrimitiveKind(t *testing.T) {
	kind, ok := PrimitiveKind("short")
	assert.True(t, ok)
	assert.Equal(t, binarydata.KindInt16, kind)

	kind, ok = PrimitiveKind("bool")
	assert.True(t, ok)
	assert.Equal(t, 1, kind.Size())

	_, ok = PrimitiveKind("struct")
	assert.False(t, ok)
}

func TestAcceptedParameters(t *testing.T) {
	assert.Equal(t, []string{"name", "count", "comment"}, AcceptedParameters("int"))
	assert.Equal(t, []string{"name", "count", "comment"}, AcceptedParameters("Vector3"))
	assert.Equal(t, []string{"message", "comment"}, AcceptedParameters("echo"))
}

func TestRequiredParameters(t *testing.T) {
	assert.Equal(t, []string{"name"}, RequiredParameters("struct"))
	assert.Equal(t, []string{"name", "kind"}, RequiredParameters("typedef"))
	assert.Equal(t, 0, len(RequiredParameters("align")))
}
