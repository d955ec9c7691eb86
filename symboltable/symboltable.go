// Package symboltable records where every declared field of a layout lives.
//
// Scopes and entries are kept in arenas and refer to each other by handle, so a
// scope knows its parent without owning it. An entry is reserved first, which
// fixes its offset, and typed exactly once later, after nested fields have been
// laid out.
package symboltable

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shibukawa/bytelayout/binarydata"
)

// ScopeID addresses a scope within a Table.
type ScopeID int

// EntryID addresses an entry within a Table.
type EntryID int

const (
	// Root is the scope every table starts with.
	Root ScopeID = 0
	// NoScope marks the absence of a scope.
	NoScope ScopeID = -1
	// NoEntry marks the absence of an entry.
	NoEntry EntryID = -1
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name can be declared as a symbol.
func ValidName(name string) bool {
	return identifierPattern.MatchString(name)
}

// Type describes what an entry holds: a primitive kind, or a composite.
type Type struct {
	// Name is the type as written in the script, e.g. "int" or a typedef name.
	Name      string
	Kind      binarydata.Kind
	Composite bool
}

func (t Type) String() string {
	if t.Composite || t.Name != "" {
		return t.Name
	}

	return t.Kind.String()
}

// Entry is the metadata of one declared symbol.
type Entry struct {
	// Name is the local symbol; collection members carry their [i] suffix.
	Name         string
	LocalOffset  int
	GlobalOffset int
	Length       int
	// ElementCount is -1 for scalars and the number of elements for collections.
	ElementCount int
	Type         Type
	// Scope is the scope the entry is declared in.
	Scope ScopeID
	// Child is the scope holding the fields of a struct, NoScope otherwise.
	Child ScopeID

	typed    bool
	elements []EntryID
}

func (e Entry) IsCollection() bool {
	return e.ElementCount >= 0
}

func (e Entry) IsStruct() bool {
	return e.Type.Composite
}

// Typed reports whether the entry has left the reserved state.
func (e Entry) Typed() bool {
	return e.typed
}

type scope struct {
	name    string
	parent  ScopeID
	owner   EntryID
	symbols map[string]EntryID
	order   []EntryID
	cursor  int
}

// Table is the hierarchical namespace built by one interpretation pass.
type Table struct {
	scopes  []scope
	entries []Entry
}

// New returns a table holding only the root scope.
func New() *Table {
	return &Table{
		scopes: []scope{{parent: NoScope, owner: NoEntry, symbols: map[string]EntryID{}}},
	}
}

// Insert reserves name in scope s at the scope's cursor. With isCollection it
// also reserves count indexed entries name[0] .. name[count-1]; the returned
// handle is then the umbrella entry describing the whole collection. Insert
// fails when name is not a valid identifier, already exists in s, or count is
// negative for a collection.
func (t *Table) Insert(s ScopeID, name string, isCollection bool, count int) (EntryID, bool) {
	if !ValidName(name) || (isCollection && count < 0) {
		return NoEntry, false
	}

	sc := &t.scopes[s]
	if _, exists := sc.symbols[name]; exists {
		return NoEntry, false
	}

	elementCount := -1
	if isCollection {
		elementCount = count
	}

	umbrella := t.addEntry(s, name, elementCount)

	if isCollection {
		elements := make([]EntryID, count)
		for i := range count {
			elements[i] = t.addEntry(s, fmt.Sprintf("%s[%d]", name, i), -1)
		}

		t.entries[umbrella].elements = elements
	}

	return umbrella, true
}

func (t *Table) addEntry(s ScopeID, name string, elementCount int) EntryID {
	id := EntryID(len(t.entries))
	sc := &t.scopes[s]

	t.entries = append(t.entries, Entry{
		Name:         name,
		LocalOffset:  sc.cursor,
		GlobalOffset: t.base(s) + sc.cursor,
		ElementCount: elementCount,
		Scope:        s,
		Child:        NoScope,
	})
	sc.symbols[name] = id
	sc.order = append(sc.order, id)

	return id
}

func (t *Table) base(s ScopeID) int {
	owner := t.scopes[s].owner
	if owner == NoEntry {
		return 0
	}

	return t.entries[owner].GlobalOffset
}

// Anchor moves a reserved entry to the current cursor of its scope. It is used
// to place collection elements one after another.
func (t *Table) Anchor(id EntryID) {
	e := &t.entries[id]
	if e.typed {
		panic(fmt.Sprintf("symboltable: cannot move typed entry %s", e.Name))
	}

	cursor := t.scopes[e.Scope].cursor
	e.LocalOffset = cursor
	e.GlobalOffset = t.base(e.Scope) + cursor
}

// SetType is the single transition of an entry from reserved to typed. A second
// call is a programming error and panics.
func (t *Table) SetType(id EntryID, typ Type, length int) {
	e := &t.entries[id]
	if e.typed {
		panic(fmt.Sprintf("symboltable: type of %s already set to %s", t.FullName(id), e.Type))
	}

	e.Type = typ
	e.Length = length
	e.typed = true
}

// OpenScope creates the child scope that will hold the fields of entry id.
func (t *Table) OpenScope(id EntryID) ScopeID {
	e := &t.entries[id]
	if e.Child != NoScope {
		panic(fmt.Sprintf("symboltable: scope of %s already open", e.Name))
	}

	child := ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, scope{
		name:    e.Name,
		parent:  e.Scope,
		owner:   id,
		symbols: map[string]EntryID{},
	})
	t.entries[id].Child = child

	return child
}

// Advance moves the cursor of scope s forward by n bytes.
func (t *Table) Advance(s ScopeID, n int) {
	t.scopes[s].cursor += n
}

// Cursor returns the cursor of scope s relative to the scope's start.
func (t *Table) Cursor(s ScopeID) int {
	return t.scopes[s].cursor
}

// GlobalCursor returns the cursor of scope s relative to the buffer start.
func (t *Table) GlobalCursor(s ScopeID) int {
	return t.base(s) + t.scopes[s].cursor
}

// Entry returns a copy of the entry metadata.
func (t *Table) Entry(id EntryID) Entry {
	return t.entries[id]
}

// Elements returns the indexed entries of a collection umbrella entry.
func (t *Table) Elements(id EntryID) []EntryID {
	return append([]EntryID(nil), t.entries[id].elements...)
}

// ScopeOf returns the scope entry id is declared in.
func (t *Table) ScopeOf(id EntryID) ScopeID {
	return t.entries[id].Scope
}

// ChildScope returns the scope holding the fields of id, NoScope when it has none.
func (t *Table) ChildScope(id EntryID) ScopeID {
	return t.entries[id].Child
}

// Parent returns the enclosing scope of s, NoScope for the root.
func (t *Table) Parent(s ScopeID) ScopeID {
	return t.scopes[s].parent
}

// ScopeName returns the local name of s; the root scope has none.
func (t *Table) ScopeName(s ScopeID) string {
	return t.scopes[s].name
}

// Owner returns the entry whose fields scope s holds, NoEntry for the root.
func (t *Table) Owner(s ScopeID) EntryID {
	return t.scopes[s].owner
}

// Symbols returns the entries declared directly in s, in declaration order.
func (t *Table) Symbols(s ScopeID) []EntryID {
	return append([]EntryID(nil), t.scopes[s].order...)
}

// Len returns the number of entries in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup resolves a dotted name such as "Player.Weapons[2].Ammo". The first
// segment is searched in s and then outward through its ancestors; every
// further segment is searched strictly inside the previous segment's scope.
func (t *Table) Lookup(s ScopeID, name string) (EntryID, bool) {
	segments := strings.Split(strings.TrimSpace(name), ".")
	for _, seg := range segments {
		if seg == "" {
			return NoEntry, false
		}
	}

	id, ok := t.lookupOutward(s, segments[0])
	if !ok {
		return NoEntry, false
	}

	for _, seg := range segments[1:] {
		child := t.entries[id].Child
		if child == NoScope {
			return NoEntry, false
		}

		id, ok = t.scopes[child].symbols[seg]
		if !ok {
			return NoEntry, false
		}
	}

	return id, true
}

func (t *Table) lookupOutward(s ScopeID, name string) (EntryID, bool) {
	for sc := s; sc != NoScope; sc = t.scopes[sc].parent {
		if id, ok := t.scopes[sc].symbols[name]; ok {
			return id, true
		}
	}

	return NoEntry, false
}

// LookupLocal resolves name in s only.
func (t *Table) LookupLocal(s ScopeID, name string) (EntryID, bool) {
	id, ok := t.scopes[s].symbols[name]
	return id, ok
}

// ElementCount returns the element count of the named entry, -1 when it is not
// a collection.
func (t *Table) ElementCount(s ScopeID, name string) (int, bool) {
	id, ok := t.Lookup(s, name)
	if !ok {
		return 0, false
	}

	return t.entries[id].ElementCount, true
}

func (t *Table) IsCollection(s ScopeID, name string) bool {
	id, ok := t.Lookup(s, name)
	return ok && t.entries[id].IsCollection()
}

func (t *Table) IsStruct(s ScopeID, name string) bool {
	id, ok := t.Lookup(s, name)
	return ok && t.entries[id].IsStruct()
}

// FullName returns the dot-joined chain of local names from the root to id.
func (t *Table) FullName(id EntryID) string {
	var names []string

	for cur := id; cur != NoEntry; cur = t.scopes[t.entries[cur].Scope].owner {
		names = append(names, t.entries[cur].Name)
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	return strings.Join(names, ".")
}

// Walk visits every entry depth-first in declaration order: each entry is
// followed by the fields of its scope. Returning false from fn stops the walk.
func (t *Table) Walk(fn func(id EntryID, depth int) bool) {
	t.walk(Root, 0, fn)
}

func (t *Table) walk(s ScopeID, depth int, fn func(EntryID, int) bool) bool {
	for _, id := range t.scopes[s].order {
		if !fn(id, depth) {
			return false
		}

		if child := t.entries[id].Child; child != NoScope {
			if !t.walk(child, depth+1, fn) {
				return false
			}
		}
	}

	return true
}
