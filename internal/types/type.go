// Package types defines the C+ type model and the symbol/scope machinery
// shared by the semantic analyzer.
package types

import "fmt"

// Kind identifies a basic type.
type Kind int

const (
	Int Kind = iota
	Float
	String
	Bool
	Void
	Auto // transient: inference placeholder, must not normally reach IR

	kindCount
)

// kindNames maps kinds to their source-level spelling.
var kindNames = [...]string{
	Int:    "int",
	Float:  "float",
	String: "string",
	Bool:   "bool",
	Void:   "void",
	Auto:   "auto",
}

// String returns the source-level spelling of the kind.
func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type represents a C+ type. The Name preserves the spelling that appeared
// in source (it may differ from the kind's canonical name for unknown
// spellings, which map to Auto).
type Type struct {
	Kind Kind
	Name string
}

// New returns a Type with the canonical name for k.
func New(k Kind) *Type {
	return &Type{Kind: k, Name: k.String()}
}

// NewNamed returns a Type with an explicit source spelling.
func NewNamed(k Kind, name string) *Type {
	return &Type{Kind: k, Name: name}
}

// String returns the type's name, falling back to the kind spelling.
func (t *Type) String() string {
	if t == nil {
		return "void"
	}
	if t.Name != "" {
		return t.Name
	}
	return t.Kind.String()
}

// kindFromName maps a source spelling to a kind.
var kindFromName = map[string]Kind{
	"int":    Int,
	"float":  Float,
	"string": String,
	"bool":   Bool,
	"void":   Void,
	"auto":   Auto,
}

// FromName returns the kind for a source spelling.
// Unknown spellings map to Auto.
func FromName(name string) Kind {
	if k, ok := kindFromName[name]; ok {
		return k
	}
	return Auto
}

// Compatible reports whether two types are compatible.
// Compatibility is strict equality on the kind discriminant: there are no
// implicit numeric promotions in C+.
func Compatible(left, right *Type) bool {
	if left == nil || right == nil {
		return false
	}
	return left.Kind == right.Kind
}
