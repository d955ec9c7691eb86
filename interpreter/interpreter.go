// Package interpreter applies a layout script to a byte buffer.
//
// A pass walks the statement tree depth-first. Type statements reserve bytes
// at the cursor of the current scope and record them in a symbol table;
// directives pad the cursor, register custom types, print diagnostics or check
// conditions. The first violation aborts the pass with a *bytelayout.Fault and
// no symbol table is returned. The buffer is only read.
package interpreter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/layoutscript"
	"github.com/shibukawa/bytelayout/statement"
	"github.com/shibukawa/bytelayout/symboltable"
)

// Interpreter holds the settings shared by every pass. It is safe for
// concurrent use; each call to Interpret runs an independent pass.
type Interpreter struct {
	output   io.Writer
	logger   *slog.Logger
	maxDepth int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets where echo diagnostics are written after a successful pass.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		in.output = w
	}
}

// WithLogger sets the logger receiving a debug trace of every statement.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// WithMaxDepth limits struct nesting. Values below 1 keep the default.
func WithMaxDepth(depth int) Option {
	return func(in *Interpreter) {
		if depth > 0 {
			in.maxDepth = depth
		}
	}
}

func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		output:   io.Discard,
		logger:   slog.New(slog.DiscardHandler),
		maxDepth: bytelayout.DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Interpret checks the script version and runs a pass over its root.
func (in *Interpreter) Interpret(script *layoutscript.LayoutScript, data *binarydata.BinaryData) (*symboltable.Table, error) {
	if script == nil {
		return nil, bytelayout.NewFault(fmt.Errorf("%w: no script", bytelayout.ErrInvalidScript), 0, 0)
	}

	if err := script.Version.CheckSupported(); err != nil {
		return nil, bytelayout.NewFault(err, 0, 0).WithLayout(script.Name())
	}

	table, err := in.Run(script.Root, data)
	if err != nil {
		var fault *bytelayout.Fault
		if errors.As(err, &fault) {
			return nil, fault.WithLayout(script.Name())
		}

		return nil, err
	}

	return table, nil
}

// Run interprets the children of root against data.
func (in *Interpreter) Run(root *statement.Statement, data *binarydata.BinaryData) (*symboltable.Table, error) {
	if root == nil || root.ChildCount() == 0 {
		var pos statement.Position
		if root != nil {
			pos = root.Position()
		}

		return nil, bytelayout.NewFault(bytelayout.ErrEmptyLayout, pos.Line, pos.Column)
	}

	if data == nil {
		data = binarydata.New(0, binarydata.LittleEndian)
	}

	p := &pass{
		Interpreter: in,
		table:       symboltable.New(),
		data:        data,
	}

	if err := p.block(root.Children(), symboltable.Root, newRegistry(nil)); err != nil {
		in.logger.Debug("layout pass failed", "error", err)
		return nil, err
	}

	if p.diagnostics.Len() > 0 {
		if _, err := io.WriteString(in.output, p.diagnostics.String()); err != nil {
			return nil, fmt.Errorf("failed to write diagnostics: %w", err)
		}
	}

	in.logger.Debug("layout pass completed", "symbols", p.table.Len(), "size", p.table.Cursor(symboltable.Root))

	return p.table, nil
}

// pass is the state of one interpretation.
type pass struct {
	*Interpreter
	table       *symboltable.Table
	data        *binarydata.BinaryData
	diagnostics strings.Builder
	depth       int
}
