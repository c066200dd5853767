package types

import "fmt"

// SymbolKind identifies what a name is bound to.
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymFunction
	SymParameter
)

// symbolKindNames maps symbol kinds to their display names.
var symbolKindNames = [...]string{
	SymVariable:  "variable",
	SymFunction:  "function",
	SymParameter: "parameter",
}

// String returns the display name of the symbol kind.
func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// Symbol is a declared entity: a variable, function, or parameter.
// For functions, Type is the return type and ParamTypes lists the declared
// parameter types; an empty ParamTypes means the function does not record
// its parameters (variadic std functions) and skips arity checking.
type Symbol struct {
	Kind       SymbolKind
	Name       string
	Type       *Type
	ParamTypes []*Type
	IsConst    bool
	Line, Col  uint32
}

// NewSymbol creates a symbol with a declaration position.
func NewSymbol(kind SymbolKind, name string, typ *Type, isConst bool, line, col uint32) *Symbol {
	return &Symbol{Kind: kind, Name: name, Type: typ, IsConst: isConst, Line: line, Col: col}
}
