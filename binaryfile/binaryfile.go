// Package binaryfile pairs a buffer with the symbol table produced by applying
// a layout to it, and gives typed access to the fields by name.
//
// Names are dot-separated paths from the top level, with [i] selecting a
// collection element: "Weapons[2].Id".
package binaryfile

import (
	"fmt"

	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/evaluator"
	"github.com/shibukawa/bytelayout/interpreter"
	"github.com/shibukawa/bytelayout/layoutscript"
	"github.com/shibukawa/bytelayout/symboltable"
)

// File is a buffer with an applied layout. Writes go straight to the buffer;
// the layout is not re-run, so counts read from the data keep the value they
// had when the file was opened.
type File struct {
	script *layoutscript.LayoutScript
	data   *binarydata.BinaryData
	table  *symboltable.Table
}

// Open applies script to data.
func Open(script *layoutscript.LayoutScript, data *binarydata.BinaryData, opts ...interpreter.Option) (*File, error) {
	table, err := interpreter.New(opts...).Interpret(script, data)
	if err != nil {
		return nil, err
	}

	return &File{script: script, data: data, table: table}, nil
}

func (f *File) Script() *layoutscript.LayoutScript {
	return f.script
}

func (f *File) Table() *symboltable.Table {
	return f.table
}

func (f *File) Data() *binarydata.BinaryData {
	return f.data
}

// Bytes returns a copy of the buffer.
func (f *File) Bytes() []byte {
	return f.data.Bytes()
}

// Size is the number of bytes the layout covers.
func (f *File) Size() int {
	return f.table.Cursor(symboltable.Root)
}

// Lookup returns the entry declared under name.
func (f *File) Lookup(name string) (symboltable.Entry, error) {
	_, e, err := f.lookup(name)
	return e, err
}

func (f *File) lookup(name string) (symboltable.EntryID, symboltable.Entry, error) {
	id, ok := f.table.Lookup(symboltable.Root, name)
	if !ok {
		return symboltable.NoEntry, symboltable.Entry{}, fmt.Errorf("%w: '%s'", bytelayout.ErrUnknownVariable, name)
	}

	return id, f.table.Entry(id), nil
}

// primitive returns the entry of a scalar or collection of kind k.
func (f *File) primitive(name string, k binarydata.Kind, collection bool) (symboltable.Entry, error) {
	_, e, err := f.lookup(name)
	if err != nil {
		return e, err
	}

	switch {
	case e.IsStruct():
		return e, fmt.Errorf("%w: '%s' is a struct", bytelayout.ErrTypeMismatch, name)
	case e.IsCollection() != collection:
		if collection {
			return e, fmt.Errorf("%w: '%s' is not a collection", bytelayout.ErrTypeMismatch, name)
		}

		return e, fmt.Errorf("%w: '%s' is a collection", bytelayout.ErrTypeMismatch, name)
	case e.Type.Kind != k:
		return e, fmt.Errorf("%w: '%s' is %s, not %s", bytelayout.ErrTypeMismatch, name, e.Type.Kind, k)
	}

	return e, nil
}

// Get reads the scalar field name as T. T must match the declared kind
// exactly; a plain bool matches bool8.
func Get[T binarydata.Value](f *File, name string) (T, error) {
	var zero T

	e, err := f.primitive(name, kindOf[T](), false)
	if err != nil {
		return zero, err
	}

	return binarydata.Get[T](f.data, e.GlobalOffset)
}

// Set writes v into the scalar field name.
func Set[T binarydata.Value](f *File, name string, v T) error {
	e, err := f.primitive(name, kindOf[T](), false)
	if err != nil {
		return err
	}

	return binarydata.Set(f.data, e.GlobalOffset, v)
}

// GetSlice reads every element of the collection name.
func GetSlice[T binarydata.Value](f *File, name string) ([]T, error) {
	e, err := f.primitive(name, kindOf[T](), true)
	if err != nil {
		return nil, err
	}

	return binarydata.GetSlice[T](f.data, e.GlobalOffset, e.ElementCount)
}

// SetSlice overwrites the collection name; values must have one value per element.
func SetSlice[T binarydata.Value](f *File, name string, values []T) error {
	e, err := f.primitive(name, kindOf[T](), true)
	if err != nil {
		return err
	}

	if len(values) != e.ElementCount {
		return fmt.Errorf("%w: '%s' has %d elements, got %d values", bytelayout.ErrInvalidCount, name, e.ElementCount, len(values))
	}

	return binarydata.SetSlice(f.data, e.GlobalOffset, values)
}

func kindOf[T binarydata.Value]() binarydata.Kind {
	var zero T

	switch any(zero).(type) {
	case bool, binarydata.Bool8:
		return binarydata.KindBool8
	case binarydata.Bool16:
		return binarydata.KindBool16
	case binarydata.Bool32:
		return binarydata.KindBool32
	case binarydata.Bool64:
		return binarydata.KindBool64
	case binarydata.Char8:
		return binarydata.KindChar8
	case binarydata.Char16:
		return binarydata.KindChar16
	case int8:
		return binarydata.KindInt8
	case uint8:
		return binarydata.KindUInt8
	case int16:
		return binarydata.KindInt16
	case uint16:
		return binarydata.KindUInt16
	case int32:
		return binarydata.KindInt32
	case uint32:
		return binarydata.KindUInt32
	case int64:
		return binarydata.KindInt64
	case uint64:
		return binarydata.KindUInt64
	case float32:
		return binarydata.KindFloat32
	default:
		return binarydata.KindFloat64
	}
}

// Value reads name as a Go value: the kind's Go type for scalars, a string for
// character fields, []any for other collections and map[string]any for structs.
func (f *File) Value(name string) (any, error) {
	id, _, err := f.lookup(name)
	if err != nil {
		return nil, err
	}

	return f.value(id)
}

func (f *File) value(id symboltable.EntryID) (any, error) {
	e := f.table.Entry(id)

	switch {
	case e.IsStruct() && e.IsCollection():
		return f.elements(id)
	case e.IsStruct():
		fields := map[string]any{}

		for _, field := range f.table.Symbols(e.Child) {
			fe := f.table.Entry(field)
			if !isElement(fe.Name) {
				v, err := f.value(field)
				if err != nil {
					return nil, err
				}

				fields[fe.Name] = v
			}
		}

		return fields, nil
	case e.Type.Kind.IsChar():
		count := 1
		if e.IsCollection() {
			count = e.ElementCount
		}

		return f.data.GetString(e.Type.Kind, e.GlobalOffset, count)
	case e.IsCollection():
		return f.elements(id)
	default:
		return f.data.Read(e.Type.Kind, e.GlobalOffset)
	}
}

func (f *File) elements(id symboltable.EntryID) ([]any, error) {
	elements := f.table.Elements(id)
	list := make([]any, 0, len(elements))

	for _, element := range elements {
		v, err := f.value(element)
		if err != nil {
			return nil, err
		}

		list = append(list, v)
	}

	return list, nil
}

func isElement(name string) bool {
	return len(name) > 0 && name[len(name)-1] == ']'
}

// String renders name the way echo interpolation does.
func (f *File) String(name string) (string, error) {
	id, _, err := f.lookup(name)
	if err != nil {
		return "", err
	}

	return evaluator.Text(f.context(), id)
}

// SetText parses text according to the kind of name and writes it. Character
// fields take the whole string, padded with NUL.
func (f *File) SetText(name, text string) error {
	_, e, err := f.lookup(name)
	if err != nil {
		return err
	}

	if e.IsStruct() {
		return fmt.Errorf("%w: '%s' is a struct", bytelayout.ErrTypeMismatch, name)
	}

	if e.Type.Kind.IsChar() {
		count := 1
		if e.IsCollection() {
			count = e.ElementCount
		}

		return f.data.SetString(e.Type.Kind, e.GlobalOffset, count, text)
	}

	if e.IsCollection() {
		return fmt.Errorf("%w: '%s' is a collection, set its elements", bytelayout.ErrTypeMismatch, name)
	}

	v, err := binarydata.ParseValue(e.Type.Kind, text)
	if err != nil {
		return err
	}

	return f.data.Write(e.Type.Kind, e.GlobalOffset, v)
}

// Evaluate computes an expression against the top-level scope.
func (f *File) Evaluate(expr string) (string, error) {
	v, err := evaluator.Evaluate(expr, f.context())
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

func (f *File) context() evaluator.Context {
	return evaluator.Context{Symbols: f.table, Scope: symboltable.Root, Data: f.data}
}
