package interpreter

import (
	"fmt"

	"github.com/shibukawa/bytelayout"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/shibukawa/bytelayout/statement"
)

// customType is a name registered by typedef. It aliases either a primitive
// kind or a struct body.
type customType struct {
	name      string
	kind      binarydata.Kind
	composite bool
	// body and scope are set for struct types; scope is the registry the body
	// resolves its own type names in.
	body  []*statement.Statement
	scope *registry
}

// registry holds the custom types of one statement list. Lookups fall back to
// the enclosing lists.
type registry struct {
	parent *registry
	types  map[string]*customType
}

func newRegistry(parent *registry) *registry {
	return &registry{parent: parent, types: map[string]*customType{}}
}

func (r *registry) lookup(name string) (*customType, bool) {
	for cur := r; cur != nil; cur = cur.parent {
		if t, ok := cur.types[name]; ok {
			return t, true
		}
	}

	return nil, false
}

// HasType implements statement.CustomTypes.
func (r *registry) HasType(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

func (r *registry) define(t *customType) error {
	if statement.IsReserved(t.name) {
		return fmt.Errorf("%w: '%s' is a builtin keyword", bytelayout.ErrDuplicateTypeDefinition, t.name)
	}

	if r.HasType(t.name) {
		return fmt.Errorf("%w: type '%s' is already defined", bytelayout.ErrDuplicateTypeDefinition, t.name)
	}

	r.types[t.name] = t

	return nil
}

// primitiveKind resolves a keyword naming a primitive, builtin or custom.
func (r *registry) primitiveKind(keyword string) (binarydata.Kind, error) {
	if kind, ok := statement.PrimitiveKind(keyword); ok {
		return kind, nil
	}

	if t, ok := r.lookup(keyword); ok {
		if t.composite {
			return binarydata.Invalid, fmt.Errorf("%w: '%s' is a struct, not a primitive", bytelayout.ErrTypeMismatch, keyword)
		}

		return t.kind, nil
	}

	if statement.IsReserved(keyword) {
		return binarydata.Invalid, fmt.Errorf("%w: '%s' is not a primitive type", bytelayout.ErrTypeMismatch, keyword)
	}

	return binarydata.Invalid, fmt.Errorf("%w: '%s'", bytelayout.ErrUnknownIdentifier, keyword)
}
