// Package statement defines the layout script syntax tree.
//
// A Statement is one node of the tree: a keyword naming a type or a directive,
// its parameters, its nested statements and where it came from in the source.
// Statements are produced by a front-end and are immutable once built.
package statement

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Position is the 1-based location of a statement in its source. The zero
// value means the position is unknown.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Parameter is one named raw-text parameter of a statement.
type Parameter struct {
	Name  string
	Value string
}

// Statement is an immutable layout script node.
type Statement struct {
	keyword  string
	params   []Parameter
	index    map[string]int
	children []*Statement
	pos      Position
}

// New builds a statement. Parameters keep their insertion order; when a name
// repeats, the later value replaces the earlier one in place. The parameter
// and children slices are copied.
func New(keyword string, pos Position, params []Parameter, children ...*Statement) *Statement {
	s := &Statement{
		keyword:  keyword,
		index:    make(map[string]int, len(params)),
		children: slices.Clone(children),
		pos:      pos,
	}

	for _, p := range params {
		if i, ok := s.index[p.Name]; ok {
			s.params[i].Value = p.Value
			continue
		}

		s.index[p.Name] = len(s.params)
		s.params = append(s.params, p)
	}

	return s
}

// Params builds a parameter list from alternating names and values.
func Params(nameValues ...string) []Parameter {
	if len(nameValues)%2 != 0 {
		panic("statement.Params: odd number of arguments")
	}

	params := make([]Parameter, 0, len(nameValues)/2)
	for i := 0; i < len(nameValues); i += 2 {
		params = append(params, Parameter{Name: nameValues[i], Value: nameValues[i+1]})
	}

	return params
}

func (s *Statement) Keyword() string {
	return s.keyword
}

func (s *Statement) Position() Position {
	return s.pos
}

// Parameters returns the parameters in insertion order.
func (s *Statement) Parameters() []Parameter {
	return slices.Clone(s.params)
}

// Parameter returns the raw value of the named parameter.
func (s *Statement) Parameter(name string) (string, bool) {
	i, ok := s.index[name]
	if !ok {
		return "", false
	}

	return s.params[i].Value, true
}

func (s *Statement) HasParameter(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Children returns the nested statements in order.
func (s *Statement) Children() []*Statement {
	return slices.Clone(s.children)
}

func (s *Statement) ChildCount() int {
	return len(s.children)
}

// Equal reports structural equality: same keyword, same parameter set in any
// order, and pairwise equal children. Positions are ignored.
func (s *Statement) Equal(other *Statement) bool {
	if s == nil || other == nil {
		return s == other
	}

	if s.keyword != other.keyword || len(s.params) != len(other.params) || len(s.children) != len(other.children) {
		return false
	}

	if !maps.Equal(s.valueMap(), other.valueMap()) {
		return false
	}

	for i, child := range s.children {
		if !child.Equal(other.children[i]) {
			return false
		}
	}

	return true
}

func (s *Statement) valueMap() map[string]string {
	m := make(map[string]string, len(s.params))
	for _, p := range s.params {
		m[p.Name] = p.Value
	}

	return m
}

// String renders the statement header for diagnostics, e.g. `int name="Score"`.
func (s *Statement) String() string {
	var b strings.Builder

	b.WriteString(s.keyword)

	for _, p := range s.params {
		fmt.Fprintf(&b, " %s=%q", p.Name, p.Value)
	}

	return b.String()
}
