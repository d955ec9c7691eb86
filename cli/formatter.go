package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/shibukawa/bytelayout/binaryfile"
)

// ErrInvalidOutputFormat is returned for an unknown --format value
var ErrInvalidOutputFormat = errors.New("invalid output format")

// OutputFormat represents the output format of a field listing
type OutputFormat string

const (
	FormatTable    OutputFormat = "table"
	FormatJSON     OutputFormat = "json"
	FormatYAML     OutputFormat = "yaml"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
)

var columns = []string{"name", "type", "offset", "length", "count", "value"}

// Formatter formats snapshots
type Formatter struct {
	Format OutputFormat
}

// NewFormatter creates a new snapshot formatter
func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{
		Format: format,
	}
}

// Write writes fields according to the specified format
func (f *Formatter) Write(fields []binaryfile.Field, output io.Writer) error {
	switch f.Format {
	case FormatTable:
		return f.formatAsTable(fields, output)
	case FormatJSON:
		return f.formatAsJSON(fields, output)
	case FormatCSV:
		return f.formatAsCSV(fields, output)
	case FormatYAML:
		return f.formatAsYAML(fields, output)
	case FormatMarkdown:
		return f.formatAsMarkdown(fields, output)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOutputFormat, f.Format)
	}
}

// formatAsTable aligns columns and indents struct fields by depth
func (f *Formatter) formatAsTable(fields []binaryfile.Field, output io.Writer) error {
	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.ToUpper(strings.Join(columns, "\t")))

	for _, field := range fields {
		row := fieldRow(field)
		row[0] = strings.Repeat("  ", field.Depth) + localName(field.Name)
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}

// formatAsMarkdown formats fields as a Markdown table
func (f *Formatter) formatAsMarkdown(fields []binaryfile.Field, output io.Writer) error {
	var b strings.Builder

	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(columns)) + "\n")

	for _, field := range fields {
		row := fieldRow(field)
		for i, cell := range row {
			row[i] = strings.ReplaceAll(cell, "|", `\|`)
		}

		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	_, err := io.WriteString(output, b.String())

	return err
}

// formatAsJSON formats fields as JSON
func (f *Formatter) formatAsJSON(fields []binaryfile.Field, output io.Writer) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")

	return encoder.Encode(map[string]any{
		"fields": nonNil(fields),
		"count":  len(fields),
	})
}

// formatAsCSV formats fields as CSV
func (f *Formatter) formatAsCSV(fields []binaryfile.Field, output io.Writer) error {
	writer := csv.NewWriter(output)

	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, field := range fields {
		if err := writer.Write(fieldRow(field)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// formatAsYAML formats fields as YAML
func (f *Formatter) formatAsYAML(fields []binaryfile.Field, output io.Writer) error {
	data, err := yaml.Marshal(map[string]any{
		"fields": nonNil(fields),
		"count":  len(fields),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal fields to YAML: %w", err)
	}

	_, err = output.Write(data)

	return err
}

func fieldRow(field binaryfile.Field) []string {
	count := ""
	if field.Count >= 0 {
		count = strconv.Itoa(field.Count)
	}

	return []string{
		field.Name,
		field.Type,
		strconv.Itoa(field.Offset),
		strconv.Itoa(field.Length),
		count,
		field.Value,
	}
}

// localName strips the parent path from a dotted name
func localName(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

func nonNil(fields []binaryfile.Field) []binaryfile.Field {
	if fields == nil {
		return []binaryfile.Field{}
	}

	return fields
}
