package cli

import (
	"errors"

	"github.com/fatih/color"
	"github.com/shibukawa/bytelayout"
)

// FormatError renders err for the terminal. Faults show their detailed report
// when verbose.
func FormatError(err error, verbose bool) string {
	var fault *bytelayout.Fault
	if verbose && errors.As(err, &fault) {
		return fault.DetailedMessage()
	}

	return err.Error()
}

// Error prints err in red to stderr. Errors are shown even when quiet.
func (ctx *Context) Error(err error) {
	color.New(color.FgRed).Fprintf(ctx.Stderr, "Error: %s\n", FormatError(err, ctx.Verbose))
}
