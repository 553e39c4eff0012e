// Copyright © 2024 The ELPS authors

package subtype

import (
	"encoding/json"
	"testing"

	"github.com/luthersystems/subcheck/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	tests := []struct {
		key       Key
		qualified string
		str       string
	}{
		{FieldKey("a.C", "f"), "a.C.f", "field:a.C.f"},
		{ParamKey("a.C", "m", "p"), "a.C.m.p", "param:a.C.m.p"},
		{LocalKey("C", "<init>", "x"), "C.<init>.x", "local:C.<init>.x"},
		{LocalKey("", "m", "x"), "m.x", "local:m.x"},
	}
	for i, test := range tests {
		assert.Equal(t, test.qualified, test.key.Qualified(), "test %d", i)
		assert.Equal(t, test.str, test.key.String(), "test %d", i)
	}
	assert.Equal(t, "p", ParamKey("a.C", "m", "p").Bare())
	assert.NotEqual(t, ParamKey("C", "m", "x"), LocalKey("C", "m", "x"))
}

func TestParseScopes(t *testing.T) {
	scopes, err := ParseScopes(nil)
	require.NoError(t, err)
	assert.Equal(t, []ScopeKind{ScopeParam, ScopeLocal}, scopes)

	scopes, err = ParseScopes([]string{"Locals", " field ", "parameters"})
	require.NoError(t, err)
	assert.Equal(t, []ScopeKind{ScopeLocal, ScopeField, ScopeParam}, scopes)

	_, err = ParseScopes([]string{"param", "params"})
	assert.EqualError(t, err, `duplicate scope: "params"`)

	_, err = ParseScopes([]string{"global"})
	assert.EqualError(t, err, `unknown scope: "global"`)

	// the default list is not shared
	scopes, _ = ParseScopes(nil)
	scopes[0] = ScopeField
	assert.Equal(t, ScopeParam, DefaultScopes[0])
}

func TestTable(t *testing.T) {
	tab := newTable()
	first := &token.Location{File: "T.java", Line: 1, Col: 1}
	second := &token.Location{File: "T.java", Line: 2, Col: 1}
	tab.add(LocalKey("C", "m", "z"), "A", first)
	tab.add(LocalKey("C", "m", "b"), "B", first)
	tab.add(LocalKey("C", "m", "z"), "C", second)

	assert.Equal(t, 2, tab.Len())
	tag, ok := tab.Lookup(LocalKey("C", "m", "z"))
	assert.True(t, ok)
	assert.Equal(t, Tag("C"), tag)
	_, ok = tab.Lookup(ParamKey("C", "m", "z"))
	assert.False(t, ok)

	entries := tab.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Key.Name)
	assert.Equal(t, "z", entries[1].Key.Name)
	assert.Equal(t, second, entries[1].Pos)

	assert.Equal(t, []Collision{{
		Key:     LocalKey("C", "m", "z"),
		Old:     "A",
		New:     "C",
		Pos:     second,
		PrevPos: first,
	}}, tab.Collisions())

	b, err := json.Marshal(tab)
	require.NoError(t, err)
	assert.JSONEq(t, `{"C.m.b":"B","C.m.z":"C"}`, string(b))

	other := newTable()
	other.add(LocalKey("C", "m", "b"), "D", second)
	tab.merge(other)
	assert.Len(t, tab.Collisions(), 2)
	assert.Equal(t, map[string]Tag{"b": "D", "z": "C"}, tab.Bare())
}

func TestTableNil(t *testing.T) {
	var tab *Table
	assert.Equal(t, 0, tab.Len())
	assert.Nil(t, tab.Entries())
	assert.Nil(t, tab.Collisions())
	assert.Empty(t, tab.Qualified())
	assert.Empty(t, tab.Bare())
	_, ok := tab.Lookup(FieldKey("C", "f"))
	assert.False(t, ok)
}

func TestFindingJSON(t *testing.T) {
	b, err := json.Marshal(Finding{
		Kind:      Mismatch,
		Assign:    "b = a",
		Target:    "b",
		Value:     "a",
		TargetTag: "Y",
		ValueTag:  "X",
		End:       5,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "mismatch",
		"assign": "b = a",
		"target": "b",
		"value": "a",
		"target_tag": "Y",
		"value_tag": "X",
		"end": 5
	}`, string(b))
}
