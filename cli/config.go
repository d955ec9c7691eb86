package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/binaryfile"
	"github.com/shibukawa/bytelayout/interpreter"
	"github.com/shibukawa/bytelayout/layoutscript"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
	Endian  string
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewContext creates a command context writing to the process streams
func NewContext(config string, verbose, quiet bool, endian string) *Context {
	return &Context{
		Config:  config,
		Verbose: verbose,
		Quiet:   quiet,
		Endian:  endian,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// LoadConfig loads configuration from the specified file and applies the
// command line overrides
func (ctx *Context) LoadConfig() (*bytelayout.Config, error) {
	config, err := bytelayout.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	switch ctx.Endian {
	case "":
	case "little", "big":
		config.Endianness = ctx.Endian
	default:
		return nil, fmt.Errorf("%w: invalid --endian '%s': must be little or big", bytelayout.ErrConfigValidation, ctx.Endian)
	}

	if !config.Output.ColorEnabled() {
		color.NoColor = true
	}

	return config, nil
}

// Logger returns a debug logger on stderr when verbose, a silent one otherwise
func (ctx *Context) Logger() *slog.Logger {
	if !ctx.Verbose {
		return slog.New(slog.DiscardHandler)
	}

	return slog.New(slog.NewTextHandler(ctx.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Info prints a status line unless quiet
func (ctx *Context) Info(format string, args ...any) {
	if ctx.Quiet {
		return
	}

	color.New(color.FgGreen).Fprintf(ctx.Stderr, format+"\n", args...)
}

// Trace prints a progress line when verbose
func (ctx *Context) Trace(format string, args ...any) {
	if !ctx.Verbose {
		return
	}

	color.New(color.FgBlue).Fprintf(ctx.Stderr, format+"\n", args...)
}

// loadLayout resolves the layout path through the configured layout directories
func (ctx *Context) loadLayout(config *bytelayout.Config, name string) (*layoutscript.LayoutScript, error) {
	path, err := config.ResolveLayoutPath(name)
	if err != nil {
		return nil, err
	}

	ctx.Trace("Loading layout %s", path)

	return layoutscript.Load(path)
}

// openFile applies a layout to the contents of a data file
func (ctx *Context) openFile(config *bytelayout.Config, layoutName, dataPath string) (*binaryfile.File, error) {
	script, err := ctx.loadLayout(config, layoutName)
	if err != nil {
		return nil, err
	}

	endian, err := binarydata.ParseEndianness(config.Endianness)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	ctx.Trace("Applying %s to %s (%d bytes, %s endian)", script.Name(), dataPath, len(raw), endian)

	opts := []interpreter.Option{
		interpreter.WithLogger(ctx.Logger()),
		interpreter.WithMaxDepth(config.Interpreter.MaxDepth),
	}

	if config.Interpreter.EchoEnabled() && !ctx.Quiet {
		opts = append(opts, interpreter.WithOutput(ctx.Stdout))
	}

	return binaryfile.Open(script, binarydata.FromBytes(raw, endian), opts...)
}
