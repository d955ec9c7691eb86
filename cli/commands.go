package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/interpreter"
)

// AppVersion is the version reported by the version command
const AppVersion = "0.1.0"

// ErrValidationFailed is returned when at least one layout fails validation
var ErrValidationFailed = errors.New("layout validation failed")

// CLI represents the command-line interface
type CLI struct {
	Config   string      `help:"Configuration file path" default:"bytelayout.yaml"`
	Verbose  bool        `help:"Enable verbose output" short:"v"`
	Quiet    bool        `help:"Suppress output" short:"q"`
	Endian   string      `help:"Override the configured byte order (little, big)"`
	Apply    ApplyCmd    `cmd:"" help:"Apply a layout to a binary file and list its fields"`
	Get      GetCmd      `cmd:"" help:"Print the value of one field"`
	Set      SetCmd      `cmd:"" help:"Write the value of one field"`
	Validate ValidateCmd `cmd:"" help:"Check layout scripts for faults without data"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// Context builds the command context from the global flags
func (c *CLI) Context() *Context {
	return NewContext(c.Config, c.Verbose, c.Quiet, c.Endian)
}

// ApplyCmd represents the apply command
type ApplyCmd struct {
	Layout string `arg:"" help:"Layout script (.xml, .yaml, .md)"`
	Data   string `arg:"" help:"Binary data file" type:"existingfile"`
	Format string `help:"Output format: table, json, yaml, csv or markdown (defaults to output.format in the config)" short:"f"`
}

// Run executes the apply command
func (cmd *ApplyCmd) Run(ctx *Context) error {
	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	f, err := ctx.openFile(config, cmd.Layout, cmd.Data)
	if err != nil {
		return err
	}

	fields, err := f.Snapshot()
	if err != nil {
		return err
	}

	format := cmd.Format
	if format == "" {
		format = config.Output.Format
	}

	if err := NewFormatter(OutputFormat(format)).Write(fields, ctx.Stdout); err != nil {
		return err
	}

	ctx.Trace("Layout covers %d of %d bytes", f.Size(), f.Data().Len())

	return nil
}

// GetCmd represents the get command
type GetCmd struct {
	Layout string `arg:"" help:"Layout script"`
	Data   string `arg:"" help:"Binary data file" type:"existingfile"`
	Name   string `arg:"" help:"Field name, e.g. Weapons[2].Ammo"`
}

// Run executes the get command
func (cmd *GetCmd) Run(ctx *Context) error {
	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	f, err := ctx.openFile(config, cmd.Layout, cmd.Data)
	if err != nil {
		return err
	}

	value, err := f.String(cmd.Name)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(ctx.Stdout, value)

	return err
}

// SetCmd represents the set command
type SetCmd struct {
	Layout string `arg:"" help:"Layout script"`
	Data   string `arg:"" help:"Binary data file" type:"existingfile"`
	Name   string `arg:"" help:"Field name"`
	Value  string `arg:"" help:"New value, parsed according to the field type"`
	Output string `help:"Write the result here instead of modifying the data file" short:"o"`
}

// Run executes the set command
func (cmd *SetCmd) Run(ctx *Context) error {
	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	f, err := ctx.openFile(config, cmd.Layout, cmd.Data)
	if err != nil {
		return err
	}

	if err := f.SetText(cmd.Name, cmd.Value); err != nil {
		return err
	}

	output := cmd.Output
	if output == "" {
		output = cmd.Data
	}

	info, err := os.Stat(cmd.Data)
	if err != nil {
		return fmt.Errorf("failed to stat data file: %w", err)
	}

	if err := os.WriteFile(output, f.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}

	ctx.Info("Set %s = %s in %s", cmd.Name, cmd.Value, output)

	return nil
}

// ValidateCmd represents the validate command
type ValidateCmd struct {
	Layouts []string `arg:"" help:"Layout scripts to validate"`
}

// Run executes the validate command
func (cmd *ValidateCmd) Run(ctx *Context) error {
	config, err := ctx.LoadConfig()
	if err != nil {
		return err
	}

	failed := 0

	for _, name := range cmd.Layouts {
		if err := validateLayout(ctx, config, name); err != nil {
			failed++

			ctx.Error(err)

			continue
		}

		ctx.Info("OK %s", name)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d layouts", ErrValidationFailed, failed, len(cmd.Layouts))
	}

	return nil
}

func validateLayout(ctx *Context, config *bytelayout.Config, name string) error {
	script, err := ctx.loadLayout(config, name)
	if err != nil {
		return err
	}

	return interpreter.New(interpreter.WithMaxDepth(config.Interpreter.MaxDepth)).Check(script)
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Stdout, "bytelayout v%s (layout script %s)\n", AppVersion, bytelayout.CurrentVersion)
	return err
}
