package binaryfile

import (
	"github.com/shibukawa/bytelayout/evaluator"
	"github.com/shibukawa/bytelayout/symboltable"
)

// Field is one row of a snapshot.
type Field struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Offset int    `json:"offset" yaml:"offset"`
	Length int    `json:"length" yaml:"length"`
	// Count is -1 for scalars.
	Count int    `json:"count" yaml:"count"`
	Depth int    `json:"depth" yaml:"depth"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Snapshot flattens every entry in declaration order, struct fields after
// their struct. Structs have no value; collections render as a list and are
// followed by their elements.
func (f *File) Snapshot() ([]Field, error) {
	var (
		fields  []Field
		walkErr error
	)

	ctx := f.context()

	f.table.Walk(func(id symboltable.EntryID, depth int) bool {
		e := f.table.Entry(id)

		field := Field{
			Name:   f.table.FullName(id),
			Type:   e.Type.String(),
			Offset: e.GlobalOffset,
			Length: e.Length,
			Count:  e.ElementCount,
			Depth:  depth,
		}

		if !e.IsStruct() {
			text, err := evaluator.Text(ctx, id)
			if err != nil {
				walkErr = err
				return false
			}

			field.Value = text
		}

		fields = append(fields, field)

		return true
	})

	if walkErr != nil {
		return nil, walkErr
	}

	return fields, nil
}
