package bytelayout

import (
	"errors"
	"fmt"
	"strings"
)

// Fault is the error surfaced at the boundary of an interpretation pass or a
// script front-end. Line and Column are 1-based and 0 when unavailable.
type Fault struct {
	Kind    Kind
	Message string
	Line    int
	Column  int
	// Layout names the layout the fault originated from, usually its source path.
	Layout string
	Cause  error
}

// NewFault wraps cause with the position of the statement that raised it.
// The kind is derived from the sentinels in cause's chain.
func NewFault(cause error, line, column int) *Fault {
	var inner *Fault
	if errors.As(cause, &inner) {
		if inner.Line == 0 && inner.Column == 0 {
			inner.Line, inner.Column = line, column
		}

		return inner
	}

	return &Fault{
		Kind:    KindOf(cause),
		Message: cause.Error(),
		Line:    line,
		Column:  column,
		Cause:   cause,
	}
}

func (f *Fault) Error() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s(%d,%d): %s", f.Kind, f.Line, f.Column, f.Message)
	}

	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Cause
}

// WithLayout records the layout name on the fault and returns it.
func (f *Fault) WithLayout(name string) *Fault {
	f.Layout = name
	return f
}

// DetailedMessage builds a multi-line report for top-level display: the
// message, the chain of causes with their Go types, the layout and the position.
func (f *Fault) DetailedMessage() string {
	var b strings.Builder

	b.WriteString(f.Kind.String())
	b.WriteString(": ")
	b.WriteString(f.Message)

	depth := 0
	for cause := f.Cause; cause != nil; cause = errors.Unwrap(cause) {
		depth++
		fmt.Fprintf(&b, "\n%sCaused by %T: %s", strings.Repeat("  ", depth), cause, cause.Error())
	}

	if f.Layout != "" {
		fmt.Fprintf(&b, "\nLayout: %s", f.Layout)
	}

	if f.Line > 0 {
		fmt.Fprintf(&b, "\nLine: %d, Column: %d", f.Line, f.Column)
	}

	return b.String()
}
