// Copyright © 2024 The ELPS authors

package subtype

import (
	"fmt"
	"strings"
)

// Tag is a subtype tag.  Tags are compared by exact string equality.
type Tag string

// ScopeKind identifies the declaration scope a Key addresses.
type ScopeKind int

const (
	ScopeField ScopeKind = iota + 1
	ScopeParam
	ScopeLocal
)

func (s ScopeKind) String() string {
	switch s {
	case ScopeField:
		return "field"
	case ScopeParam:
		return "param"
	case ScopeLocal:
		return "local"
	default:
		return fmt.Sprintf("ScopeKind(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ScopeKind) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DefaultScopes is the resolution order used when Config.Scopes is empty.
// Parameters shadow locals and fields are never consulted.
var DefaultScopes = []ScopeKind{ScopeParam, ScopeLocal}

// ParseScope parses a scope name such as "param" or "locals".
func ParseScope(name string) (ScopeKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "field", "fields":
		return ScopeField, nil
	case "param", "params", "parameter", "parameters":
		return ScopeParam, nil
	case "local", "locals":
		return ScopeLocal, nil
	}
	return 0, fmt.Errorf("unknown scope: %q", name)
}

// ParseScopes parses an ordered resolution list.  An empty list yields
// DefaultScopes.  Each scope may appear at most once.
func ParseScopes(names []string) ([]ScopeKind, error) {
	if len(names) == 0 {
		return append([]ScopeKind(nil), DefaultScopes...), nil
	}
	var scopes []ScopeKind
	seen := make(map[ScopeKind]bool)
	for _, name := range names {
		s, err := ParseScope(name)
		if err != nil {
			return nil, err
		}
		if seen[s] {
			return nil, fmt.Errorf("duplicate scope: %q", name)
		}
		seen[s] = true
		scopes = append(scopes, s)
	}
	return scopes, nil
}

// Key identifies a tagged declaration.  Which of Class and Method are set
// depends on Scope.
type Key struct {
	Scope  ScopeKind
	Class  string
	Method string // empty for fields
	Name   string
}

// FieldKey returns the key of field name in class.
func FieldKey(class, name string) Key {
	return Key{Scope: ScopeField, Class: class, Name: name}
}

// ParamKey returns the key of parameter name of method in class.
func ParamKey(class, method, name string) Key {
	return Key{Scope: ScopeParam, Class: class, Method: method, Name: name}
}

// LocalKey returns the key of local variable name in method of class.
func LocalKey(class, method, name string) Key {
	return Key{Scope: ScopeLocal, Class: class, Method: method, Name: name}
}

// Qualified renders k as Class.field or Class.method.name.
func (k Key) Qualified() string {
	parts := make([]string, 0, 3)
	if k.Class != "" {
		parts = append(parts, k.Class)
	}
	if k.Scope != ScopeField && k.Method != "" {
		parts = append(parts, k.Method)
	}
	return strings.Join(append(parts, k.Name), ".")
}

// Bare renders k as its simple name.
func (k Key) Bare() string {
	return k.Name
}

func (k Key) String() string {
	return k.Scope.String() + ":" + k.Qualified()
}
