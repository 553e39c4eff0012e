// Copyright © 2024 The ELPS authors

package subtype

import (
	"encoding/json"
	"sort"

	"github.com/luthersystems/subcheck/parser/token"
)

// Entry is one tagged declaration in a Table.
type Entry struct {
	Key Key
	Tag Tag
	Pos *token.Location
}

// Collision records a key that was declared more than once while a table
// was built.  The later declaration replaces the earlier one.
type Collision struct {
	Key     Key
	Old     Tag
	New     Tag
	Pos     *token.Location
	PrevPos *token.Location
}

// Table maps keys to tags.  Tables are filled by the Collect functions and
// are read only afterwards.  A nil *Table is empty.
type Table struct {
	entries    map[Key]Entry
	collisions []Collision
}

func newTable() *Table {
	return &Table{entries: make(map[Key]Entry)}
}

func (t *Table) add(key Key, tag Tag, pos *token.Location) {
	if prev, ok := t.entries[key]; ok {
		t.collisions = append(t.collisions, Collision{
			Key:     key,
			Old:     prev.Tag,
			New:     tag,
			Pos:     pos,
			PrevPos: prev.Pos,
		})
	}
	t.entries[key] = Entry{Key: key, Tag: tag, Pos: pos}
}

func (t *Table) merge(other *Table) {
	for _, e := range other.Entries() {
		t.add(e.Key, e.Tag, e.Pos)
	}
	t.collisions = append(t.collisions, other.collisions...)
}

// Lookup returns the tag recorded for key.
func (t *Table) Lookup(key Key) (Tag, bool) {
	if t == nil {
		return "", false
	}
	e, ok := t.entries[key]
	return e.Tag, ok
}

// Len returns the number of keys in t.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns the contents of t ordered by qualified key.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	entries := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		qi, qj := entries[i].Key.Qualified(), entries[j].Key.Qualified()
		if qi != qj {
			return qi < qj
		}
		return entries[i].Key.Scope < entries[j].Key.Scope
	})
	return entries
}

// Collisions returns the keys declared more than once, in the order the
// repeated declarations were found.
func (t *Table) Collisions() []Collision {
	if t == nil {
		return nil
	}
	return t.collisions
}

// Qualified returns t as a map from qualified key to tag.
func (t *Table) Qualified() map[string]Tag {
	m := make(map[string]Tag, t.Len())
	for _, e := range t.Entries() {
		m[e.Key.Qualified()] = e.Tag
	}
	return m
}

// Bare returns t as a map from simple name to tag.  When names repeat the
// entry with the greatest qualified key wins.
func (t *Table) Bare() map[string]Tag {
	m := make(map[string]Tag, t.Len())
	for _, e := range t.Entries() {
		m[e.Key.Bare()] = e.Tag
	}
	return m
}

// MarshalJSON encodes t as an object keyed by qualified name.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Qualified())
}
