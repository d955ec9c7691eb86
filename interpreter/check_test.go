package interpreter

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/layoutscript"
	"github.com/shibukawa/bytelayout/statement"
	"github.com/stretchr/testify/require"
)

func script(root *statement.Statement) *layoutscript.LayoutScript {
	return &layoutscript.LayoutScript{
		Version:    bytelayout.CurrentVersion,
		SourcePath: "check.xml",
		Root:       root,
	}
}

func TestCheck(t *testing.T) {
	valid := layout(
		st("typedef", params("name", "Vec2", "kind", "struct"),
			field("float", "X"),
			field("float", "Y"),
		),
		st("typedef", params("name", "Node", "kind", "struct"),
			field("byte", "Value"),
			st("Node", params("name", "Next", "count", "${Value}")),
		),
		field("byte", "Count"),
		st("align", params("boundary", "4")),
		st("Vec2", params("name", "Position")),
		st("struct", params("name", "Items", "count", "${Count} * 2"),
			field("ushort", "Id"),
			st("align", params("kind", "uint")),
		),
		st("echo", params("message", "at $GlobalOffsetOf(Position) $USD")),
		st("assert", params("condition", "Count < 10", "message", "count is ${Count}")),
	)

	assert.NoError(t, New().Check(script(valid)))
}

func TestCheck_Errors(t *testing.T) {
	tests := []struct {
		name    string
		root    *statement.Statement
		wantErr error
		line    int
	}{
		{
			name:    "empty layout",
			root:    layout(),
			wantErr: bytelayout.ErrEmptyLayout,
			line:    1,
		},
		{
			name:    "unknown keyword after a field",
			root:    layout(field("byte", "A"), at(3, "bogus", params("name", "B"))),
			wantErr: bytelayout.ErrUnknownIdentifier,
			line:    3,
		},
		{
			name:    "unknown parameter",
			root:    layout(at(2, "byte", params("name", "A", "size", "2"))),
			wantErr: bytelayout.ErrUnknownParameter,
			line:    2,
		},
		{
			name:    "missing name",
			root:    layout(at(2, "int", params("count", "2"))),
			wantErr: bytelayout.ErrMissingParameter,
			line:    2,
		},
		{
			name: "typedef collision",
			root: layout(
				st("typedef", params("name", "Id", "kind", "uint")),
				at(3, "typedef", params("name", "Id", "kind", "byte")),
			),
			wantErr: bytelayout.ErrDuplicateTypeDefinition,
			line:    3,
		},
		{
			name:    "typedef of builtin keyword",
			root:    layout(at(2, "typedef", params("name", "echo", "kind", "byte"))),
			wantErr: bytelayout.ErrDuplicateTypeDefinition,
			line:    2,
		},
		{
			name:    "duplicate field",
			root:    layout(field("byte", "A"), at(3, "short", params("name", "A"))),
			wantErr: bytelayout.ErrDuplicateSymbol,
			line:    3,
		},
		{
			name:    "invalid field name",
			root:    layout(at(2, "byte", params("name", "1st"))),
			wantErr: bytelayout.ErrInvalidSymbolName,
			line:    2,
		},
		{
			name:    "children on primitive",
			root:    layout(at(2, "byte", params("name", "A"), field("byte", "B"))),
			wantErr: bytelayout.ErrUnexpectedChildren,
			line:    2,
		},
		{
			name:    "broken count expression",
			root:    layout(at(2, "byte", params("name", "A", "count", "${N"))),
			wantErr: bytelayout.ErrInvalidExpression,
			line:    2,
		},
		{
			name:    "align with count and boundary",
			root:    layout(at(2, "align", params("count", "1", "boundary", "4"))),
			wantErr: bytelayout.ErrInvalidCount,
			line:    2,
		},
		{
			name:    "align on struct kind",
			root:    layout(at(2, "align", params("kind", "struct"))),
			wantErr: bytelayout.ErrTypeMismatch,
			line:    2,
		},
		{
			name:    "broken echo template",
			root:    layout(field("byte", "A"), at(3, "echo", params("message", "value ${A"))),
			wantErr: bytelayout.ErrInvalidExpression,
			line:    3,
		},
		{
			name:    "broken assert condition",
			root:    layout(field("byte", "A"), at(3, "assert", params("condition", "A >"))),
			wantErr: bytelayout.ErrInvalidExpression,
			line:    3,
		},
		{
			name: "fault inside struct typedef body",
			root: layout(
				st("typedef", params("name", "S", "kind", "struct"),
					at(3, "bogus", params("name", "X")),
				),
			),
			wantErr: bytelayout.ErrUnknownIdentifier,
			line:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Check(script(tt.root))
			assert.IsError(t, err, tt.wantErr)

			var fault *bytelayout.Fault
			require.True(t, errors.As(err, &fault))
			assert.Equal(t, tt.line, fault.Line)
			assert.Equal(t, "check.xml", fault.Layout)
		})
	}
}

func TestCheck_MaxDepth(t *testing.T) {
	nested := layout(
		st("struct", params("name", "A"),
			st("struct", params("name", "B"),
				st("struct", params("name", "C"),
					field("byte", "X"),
				),
			),
		),
	)

	assert.NoError(t, New(WithMaxDepth(3)).Check(script(nested)))
	assert.IsError(t, New(WithMaxDepth(2)).Check(script(nested)), bytelayout.ErrNestingTooDeep)
}

func TestCheck_Version(t *testing.T) {
	s := script(layout(field("byte", "A")))
	s.Version = bytelayout.Version{Major: bytelayout.CurrentVersion.Major + 1}

	assert.IsError(t, New().Check(s), bytelayout.ErrUnsupportedVersion)
	assert.IsError(t, New().Check(nil), bytelayout.ErrInvalidScript)
}
