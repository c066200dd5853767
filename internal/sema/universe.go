package sema

import "github.com/Leorevoir/CPLUS-Compiler/internal/types"

// stdFunction describes one function of the C+ standard library.
// Variadic functions do not record parameter types, which disables arity
// and argument checking for them.
type stdFunction struct {
	name     string
	ret      types.Kind
	params   []types.Kind
	variadic bool
}

// stdFunctions is the fixed standard library function table.
var stdFunctions = []stdFunction{
	{"print", types.Void, []types.Kind{types.Auto}, true},
	{"println", types.Void, []types.Kind{types.Auto}, true},
	{"input", types.String, []types.Kind{types.String}, false},
	{"int", types.Int, []types.Kind{types.Auto}, false},
	{"float", types.Float, []types.Kind{types.Auto}, false},
	{"string", types.String, []types.Kind{types.Auto}, false},
	{"sqrt", types.Float, []types.Kind{types.Float}, false},
	{"abs", types.Int, []types.Kind{types.Int}, false},
}

// stdConstant describes one constant of the C+ standard library.
type stdConstant struct {
	name string
	typ  types.Kind
}

// stdConstants is the fixed standard library constant table.
var stdConstants = []stdConstant{
	{"PI", types.Float},
	{"E", types.Float},
	{"EPSILON", types.Float},
	{"MAX_INT", types.Int},
}

// declareUniverse binds the standard library in the current (outermost)
// scope, beneath the module scope.
func (c *Checker) declareUniverse() {
	for _, fn := range stdFunctions {
		sym := types.NewSymbol(types.SymFunction, fn.name, types.New(fn.ret), false, 0, 0)
		if !fn.variadic {
			for _, param := range fn.params {
				sym.ParamTypes = append(sym.ParamTypes, types.New(param))
			}
		}
		c.currentScope().Declare(fn.name, sym)
	}

	for _, cst := range stdConstants {
		sym := types.NewSymbol(types.SymVariable, cst.name, types.New(cst.typ), true, 0, 0)
		c.currentScope().Declare(cst.name, sym)
	}
}
