package symboltable

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shibukawa/bytelayout/binarydata"
	"github.com/stretchr/testify/require"
)

var intType = Type{Name: "int", Kind: binarydata.KindInt32}

func TestInsert_Scalar(t *testing.T) {
	table := New()
	table.Advance(Root, 6)

	id, ok := table.Insert(Root, "Score", false, 0)
	require.True(t, ok)

	e := table.Entry(id)
	assert.Equal(t, "Score", e.Name)
	assert.Equal(t, 6, e.LocalOffset)
	assert.Equal(t, 6, e.GlobalOffset)
	assert.Equal(t, -1, e.ElementCount)
	assert.False(t, e.IsCollection())
	assert.False(t, e.Typed())
	assert.Equal(t, NoScope, e.Child)
}

func TestInsert_Rejects(t *testing.T) {
	table := New()
	_, ok := table.Insert(Root, "Health", false, 0)
	require.True(t, ok)

	tests := []struct {
		name         string
		symbol       string
		isCollection bool
		count        int
	}{
		{"duplicate", "Health", false, 0},
		{"duplicate as collection", "Health", true, 2},
		{"empty", "", false, 0},
		{"whitespace", "  ", false, 0},
		{"leading digit", "1st", false, 0},
		{"dotted", "a.b", false, 0},
		{"indexed", "a[0]", false, 0},
		{"negative count", "Items", true, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := table.Insert(Root, tt.symbol, tt.isCollection, tt.count)
			assert.False(t, ok)
			assert.Equal(t, NoEntry, id)
		})
	}

	assert.Equal(t, 1, table.Len())
}

func TestInsert_Collection(t *testing.T) {
	table := New()

	id, ok := table.Insert(Root, "weapons", true, 4)
	require.True(t, ok)

	e := table.Entry(id)
	assert.True(t, e.IsCollection())
	assert.Equal(t, 4, e.ElementCount)

	elements := table.Elements(id)
	require.Equal(t, 4, len(elements))

	for i, name := range []string{"weapons[0]", "weapons[1]", "weapons[2]", "weapons[3]"} {
		assert.Equal(t, name, table.Entry(elements[i]).Name)

		found, ok := table.Lookup(Root, name)
		assert.True(t, ok)
		assert.Equal(t, elements[i], found)
	}

	count, ok := table.ElementCount(Root, "weapons")
	assert.True(t, ok)
	assert.Equal(t, 4, count)
	assert.True(t, table.IsCollection(Root, "weapons"))
	assert.False(t, table.IsCollection(Root, "weapons[0]"))
}

func TestInsert_SingleElementCollection(t *testing.T) {
	table := New()

	id, ok := table.Insert(Root, "Only", true, 1)
	require.True(t, ok)

	_, ok = table.Lookup(Root, "Only[0]")
	assert.True(t, ok)
	assert.Equal(t, 1, table.Entry(id).ElementCount)

	empty, ok := table.Insert(Root, "None", true, 0)
	require.True(t, ok)
	assert.Equal(t, 0, len(table.Elements(empty)))
	assert.True(t, table.Entry(empty).IsCollection())
}

func TestSetType_WriteOnce(t *testing.T) {
	table := New()
	id, _ := table.Insert(Root, "Score", false, 0)

	table.SetType(id, intType, 4)
	assert.True(t, table.Entry(id).Typed())
	assert.Equal(t, 4, table.Entry(id).Length)

	assert.Panics(t, func() {
		table.SetType(id, intType, 4)
	})
	assert.Panics(t, func() {
		table.Anchor(id)
	})
}

func TestScopes(t *testing.T) {
	table := New()
	table.Advance(Root, 8)

	player, _ := table.Insert(Root, "Player", false, 0)
	inner := table.OpenScope(player)

	assert.Equal(t, Root, table.Parent(inner))
	assert.Equal(t, "Player", table.ScopeName(inner))
	assert.Equal(t, player, table.Owner(inner))
	assert.Equal(t, inner, table.ChildScope(player))
	assert.Equal(t, 8, table.GlobalCursor(inner))

	table.Advance(inner, 2)
	hp, ok := table.Insert(inner, "Health", false, 0)
	require.True(t, ok)
	assert.Equal(t, 2, table.Entry(hp).LocalOffset)
	assert.Equal(t, 10, table.Entry(hp).GlobalOffset)
	assert.Equal(t, inner, table.ScopeOf(hp))
	assert.Equal(t, "Player.Health", table.FullName(hp))

	_, ok = table.Insert(Root, "Health", false, 0)
	assert.True(t, ok, "the same name may be declared in another scope")

	assert.Panics(t, func() {
		table.OpenScope(player)
	})
}

func TestLookup(t *testing.T) {
	table := New()

	count, _ := table.Insert(Root, "Count", false, 0)
	table.SetType(count, intType, 4)
	table.Advance(Root, 4)

	weapons, _ := table.Insert(Root, "Weapons", true, 2)

	var ammo EntryID

	for _, element := range table.Elements(weapons) {
		table.Anchor(element)
		s := table.OpenScope(element)

		id, _ := table.Insert(s, "Id", false, 0)
		table.SetType(id, intType, 4)
		table.Advance(s, 4)

		ammo, _ = table.Insert(s, "Ammo", false, 0)
		table.SetType(ammo, intType, 4)
		table.Advance(s, 4)

		table.SetType(element, Type{Name: "struct", Composite: true}, table.Cursor(s))
		table.Advance(Root, table.Cursor(s))
	}

	lastScope := table.ChildScope(table.Elements(weapons)[1])

	tests := []struct {
		name   string
		scope  ScopeID
		lookup string
		found  bool
		global int
	}{
		{"root field", Root, "Count", true, 0},
		{"element field", Root, "Weapons[1].Ammo", true, 16},
		{"outward from nested scope", lastScope, "Count", true, 0},
		{"local first", lastScope, "Ammo", true, 16},
		{"not visible downward without prefix", Root, "Ammo", false, 0},
		{"missing segment", Root, "Weapons[1].Power", false, 0},
		{"descend into scalar", Root, "Count.Value", false, 0},
		{"umbrella has no fields", Root, "Weapons.Id", false, 0},
		{"empty segment", Root, "Weapons[0]..Id", false, 0},
		{"empty", Root, "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := table.Lookup(tt.scope, tt.lookup)
			assert.Equal(t, tt.found, ok)

			if tt.found {
				assert.Equal(t, tt.global, table.Entry(id).GlobalOffset)
			}
		})
	}

	assert.Equal(t, ammo, mustLookup(t, table, Root, "Weapons[1].Ammo"))
	assert.Equal(t, "Weapons[1].Ammo", table.FullName(ammo))
	assert.True(t, table.IsStruct(Root, "Weapons[0]"))
	assert.False(t, table.IsStruct(Root, "Weapons"))
}

func TestWalk(t *testing.T) {
	table := New()

	a, _ := table.Insert(Root, "A", false, 0)
	s := table.OpenScope(a)
	_, _ = table.Insert(s, "X", false, 0)
	_, _ = table.Insert(s, "Y", false, 0)
	_, _ = table.Insert(Root, "B", true, 2)

	var visited []string

	table.Walk(func(id EntryID, depth int) bool {
		visited = append(visited, table.FullName(id))
		return true
	})

	assert.Equal(t, []string{"A", "A.X", "A.Y", "B", "B[0]", "B[1]"}, visited)
	assert.Equal(t, 3, len(table.Symbols(Root)))

	var stopped []string

	table.Walk(func(id EntryID, depth int) bool {
		stopped = append(stopped, table.FullName(id))
		return depth == 0
	})

	assert.Equal(t, []string{"A", "A.X"}, stopped)
}

func mustLookup(t *testing.T, table *Table, s ScopeID, name string) EntryID {
	t.Helper()

	id, ok := table.Lookup(s, name)
	require.True(t, ok, "lookup %s", name)

	return id
}
