// Package sema implements the semantic analysis pass for C+: scope-stacked
// name resolution, type inference for auto variables, return-path checking,
// and call arity/type checking.
package sema

import (
	"github.com/Leorevoir/CPLUS-Compiler/internal/diag"
	"github.com/Leorevoir/CPLUS-Compiler/internal/syntax"
	"github.com/Leorevoir/CPLUS-Compiler/internal/types"
)

// Checker walks a module, resolving names and filling the type slot of
// every expression. Analysis stops at the first violation.
type Checker struct {
	module string

	// scopes is the scope stack: the live scopes along the path from the
	// universe scope to the current position. Index == depth.
	scopes []*types.Scope

	// returnTypes and hasReturn are parallel stacks tracking the enclosing
	// function's return type and whether a return was seen in its body.
	returnTypes []*types.Type
	hasReturn   []bool
}

// Analyze resolves and type-checks a module in place.
// On success every expression node carries a non-nil type and the scope
// stack is empty again; a non-empty stack afterwards is a bug.
func Analyze(module *syntax.Module) error {
	c := &Checker{module: module.Name}

	c.enterScope("universe")
	c.declareUniverse()
	c.enterScope("module")

	err := c.stmts(module.Decls)

	c.exitScope()
	c.exitScope()

	if err != nil {
		return err
	}
	if len(c.scopes) != 0 {
		return diag.Errorf("sema::analyze",
			"scope stack not empty after analyzing module: %s", c.module)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Scope stack

// enterScope pushes a fresh scope whose parent is the current top.
func (c *Checker) enterScope(comment string) {
	var parent *types.Scope
	if len(c.scopes) > 0 {
		parent = c.scopes[len(c.scopes)-1]
	}
	c.scopes = append(c.scopes, types.NewScope(parent, comment))
}

// exitScope pops the current scope, destroying its bindings.
func (c *Checker) exitScope() {
	if len(c.scopes) > 0 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

// currentScope returns the innermost live scope.
func (c *Checker) currentScope() *types.Scope {
	return c.scopes[len(c.scopes)-1]
}

// declare binds a symbol in the current scope.
// Reports false when the name is already bound there.
func (c *Checker) declare(name string, sym *types.Symbol) bool {
	return c.currentScope().Declare(name, sym)
}

// lookup resolves a name against the scope stack, innermost first.
func (c *Checker) lookup(name string) *types.Symbol {
	return c.currentScope().Lookup(name)
}

// ----------------------------------------------------------------------------
// Statements

// stmts checks a statement list, stopping at the first error.
func (c *Checker) stmts(list []syntax.Stmt) error {
	for _, s := range list {
		if err := c.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

// stmt checks a single statement.
func (c *Checker) stmt(s syntax.Stmt) error {
	switch s := s.(type) {
	case *syntax.ExprStmt:
		return c.expr(s.X)

	case *syntax.Block:
		c.enterScope("block")
		err := c.stmts(s.Stmts)
		c.exitScope()
		return err

	case *syntax.VarDecl:
		return c.varDecl(s)

	case *syntax.Return:
		return c.returnStmt(s)

	case *syntax.If:
		return c.ifStmt(s)

	case *syntax.For:
		return c.forStmt(s)

	case *syntax.Foreach:
		return c.foreachStmt(s)

	case *syntax.Case:
		return c.caseStmt(s)

	case *syntax.FuncDecl:
		return c.funcDecl(s)

	default:
		return diag.Errorf("sema::stmt", "unexpected statement %T in module: %s", s, c.module)
	}
}

// varDecl checks a variable declaration: the type comes from the explicit
// annotation, or failing that is inferred from the initializer.
func (c *Checker) varDecl(s *syntax.VarDecl) error {
	if s.Init != nil {
		if err := c.expr(s.Init); err != nil {
			return err
		}
	}

	var varType *types.Type
	switch {
	case s.DeclaredType != nil:
		varType = types.NewNamed(s.DeclaredType.Kind, s.DeclaredType.Name)
	case s.Init != nil:
		varType = s.Init.Type()
	default:
		return diag.Errorf("sema::variable",
			"Variable '%s' must have type or initializer in module: %s at %d:%d",
			s.Name, c.module, s.Line(), s.Col())
	}

	sym := types.NewSymbol(types.SymVariable, s.Name, varType, s.IsConst, s.Line(), s.Col())
	if !c.declare(s.Name, sym) {
		return diag.Errorf("sema::variable",
			"Variable '%s' already declared in module: %s at %d:%d",
			s.Name, c.module, s.Line(), s.Col())
	}

	if s.Init != nil && s.DeclaredType != nil {
		if !types.Compatible(s.DeclaredType, s.Init.Type()) {
			return diag.Errorf("sema::variable",
				"Type mismatch in initializer for variable '%s' in module: %s at %d:%d",
				s.Name, c.module, s.Line(), s.Col())
		}
	}
	return nil
}

// returnStmt checks a return statement against the enclosing function.
func (c *Checker) returnStmt(s *syntax.Return) error {
	if len(c.returnTypes) == 0 {
		return diag.Errorf("sema::return",
			"Return statement outside of function in module: %s at %d:%d",
			c.module, s.Line(), s.Col())
	}

	expected := c.returnTypes[len(c.returnTypes)-1]

	if s.Value != nil {
		if err := c.expr(s.Value); err != nil {
			return err
		}
		actual := s.Value.Type()
		if !types.Compatible(expected, actual) {
			return diag.Errorf("sema::return",
				"Return type mismatch: expected %s got %s in module: %s at %d:%d",
				typeName(expected), typeName(actual), c.module, s.Line(), s.Col())
		}
	} else if expected.Kind != types.Void {
		return diag.Errorf("sema::return",
			"Return type mismatch: expected %s got void in module: %s at %d:%d",
			typeName(expected), c.module, s.Line(), s.Col())
	}

	c.hasReturn[len(c.hasReturn)-1] = true
	return nil
}

// ifStmt checks a conditional. The branches do not get implicit scopes;
// braced branches are blocks and open their own.
func (c *Checker) ifStmt(s *syntax.If) error {
	if err := c.expr(s.Cond); err != nil {
		return err
	}
	if err := c.stmt(s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		return c.stmt(s.Else)
	}
	return nil
}

// forStmt checks a for loop; the initializer binding lives in the loop's
// own scope.
func (c *Checker) forStmt(s *syntax.For) error {
	c.enterScope("for")
	err := c.forParts(s)
	c.exitScope()
	return err
}

// forParts checks the loop clauses and body inside the loop scope.
func (c *Checker) forParts(s *syntax.For) error {
	if s.Init != nil {
		if err := c.stmt(s.Init); err != nil {
			return err
		}
	}
	if s.Cond != nil {
		if err := c.expr(s.Cond); err != nil {
			return err
		}
	}
	if s.Inc != nil {
		if err := c.expr(s.Inc); err != nil {
			return err
		}
	}
	return c.stmt(s.Body)
}

// foreachStmt checks a foreach loop. The iterator binding is always typed
// auto; no element type is inferred from the iterable.
func (c *Checker) foreachStmt(s *syntax.Foreach) error {
	c.enterScope("foreach")
	err := c.foreachParts(s)
	c.exitScope()
	return err
}

// foreachParts checks the iterable, the iterator binding, and the body
// inside the loop scope.
func (c *Checker) foreachParts(s *syntax.Foreach) error {
	if err := c.expr(s.Iterable); err != nil {
		return err
	}

	sym := types.NewSymbol(types.SymVariable, s.IterName, types.New(types.Auto), false, s.Line(), s.Col())
	if !c.declare(s.IterName, sym) {
		return diag.Errorf("sema::foreach",
			"Variable '%s' already declared in foreach in module: %s at %d:%d",
			s.IterName, c.module, s.Line(), s.Col())
	}

	return c.stmt(s.Body)
}

// caseStmt checks the scrutinee and every clause.
func (c *Checker) caseStmt(s *syntax.Case) error {
	if err := c.expr(s.Scrutinee); err != nil {
		return err
	}
	for _, clause := range s.Clauses {
		if clause.Value != nil {
			if err := c.expr(clause.Value); err != nil {
				return err
			}
		}
		if err := c.stmts(clause.Stmts); err != nil {
			return err
		}
	}
	return nil
}

// funcDecl checks a function declaration. Parameters occupy the function's
// own scope; the body block nests inside it. A non-void function whose body
// never returns is rejected (any return in the body satisfies the check; it
// is not a per-path analysis).
func (c *Checker) funcDecl(s *syntax.FuncDecl) error {
	retType := types.New(types.Void)
	if s.ReturnType != nil {
		retType = types.NewNamed(s.ReturnType.Kind, s.ReturnType.Name)
	}

	sym := types.NewSymbol(types.SymFunction, s.Name, retType, false, s.Line(), s.Col())
	for _, param := range s.Params {
		paramType := types.New(types.Auto)
		if param.Type != nil {
			paramType = types.NewNamed(param.Type.Kind, param.Type.Name)
		}
		sym.ParamTypes = append(sym.ParamTypes, paramType)
	}

	if !c.declare(s.Name, sym) {
		return diag.Errorf("sema::function",
			"Function '%s' already declared in module: %s at %d:%d",
			s.Name, c.module, s.Line(), s.Col())
	}

	c.returnTypes = append(c.returnTypes, retType)
	c.hasReturn = append(c.hasReturn, false)
	c.enterScope("function " + s.Name)

	err := c.funcParts(s, sym)
	seenReturn := c.hasReturn[len(c.hasReturn)-1]

	c.exitScope()
	c.returnTypes = c.returnTypes[:len(c.returnTypes)-1]
	c.hasReturn = c.hasReturn[:len(c.hasReturn)-1]

	if err != nil {
		return err
	}
	if retType.Kind != types.Void && !seenReturn {
		return diag.Errorf("sema::function",
			"Missing return statement in function '%s' in module: %s at %d:%d",
			s.Name, c.module, s.Line(), s.Col())
	}
	return nil
}

// funcParts declares the parameters and checks the body inside the
// function scope.
func (c *Checker) funcParts(s *syntax.FuncDecl, sym *types.Symbol) error {
	for i, param := range s.Params {
		paramSym := types.NewSymbol(types.SymParameter, param.Name, sym.ParamTypes[i], false, s.Line(), s.Col())
		if !c.declare(param.Name, paramSym) {
			return diag.Errorf("sema::function",
				"Parameter '%s' already declared in function '%s' in module: %s at %d:%d",
				param.Name, s.Name, c.module, s.Line(), s.Col())
		}
	}

	if s.Body != nil {
		return c.stmt(s.Body)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Expressions

// expr type-checks an expression and fills its type slot.
func (c *Checker) expr(e syntax.Expr) error {
	switch e := e.(type) {
	case *syntax.Literal:
		switch e.Kind {
		case syntax.IntLit:
			e.SetType(types.New(types.Int))
		case syntax.FloatLit:
			e.SetType(types.New(types.Float))
		case syntax.StringLit:
			e.SetType(types.New(types.String))
		case syntax.BoolLit:
			e.SetType(types.New(types.Bool))
		}
		return nil

	case *syntax.Identifier:
		sym := c.lookup(e.Name)
		if sym == nil {
			return diag.Errorf("sema::identifier",
				"Undefined identifier '%s' in module: %s at %d:%d",
				e.Name, c.module, e.Line(), e.Col())
		}
		e.SetType(types.NewNamed(sym.Type.Kind, sym.Type.Name))
		return nil

	case *syntax.Binary:
		return c.binaryExpr(e)

	case *syntax.Unary:
		if err := c.expr(e.Operand); err != nil {
			return err
		}
		e.SetType(e.Operand.Type())
		return nil

	case *syntax.Call:
		return c.callExpr(e)

	case *syntax.Assignment:
		return c.assignExpr(e)

	default:
		return diag.Errorf("sema::expr", "unexpected expression %T in module: %s", e, c.module)
	}
}

// binaryExpr requires both operands to have compatible types; the result
// type is the left operand's type.
func (c *Checker) binaryExpr(e *syntax.Binary) error {
	if err := c.expr(e.Left); err != nil {
		return err
	}
	if err := c.expr(e.Right); err != nil {
		return err
	}

	if !types.Compatible(e.Left.Type(), e.Right.Type()) {
		return diag.Errorf("sema::binary",
			"Type mismatch in binary expression in module: %s at %d:%d",
			c.module, e.Line(), e.Col())
	}

	left := e.Left.Type()
	e.SetType(types.NewNamed(left.Kind, left.Name))
	return nil
}

// callExpr resolves the callee and validates arity and argument types.
// Functions without recorded parameter types (variadic std functions) skip
// both checks; auto on either side of an argument skips the type check,
// since auto is an inference placeholder with no concrete requirement.
func (c *Checker) callExpr(e *syntax.Call) error {
	for _, arg := range e.Args {
		if err := c.expr(arg); err != nil {
			return err
		}
	}

	sym := c.lookup(e.Name)
	if sym == nil || sym.Kind != types.SymFunction {
		return diag.Errorf("sema::call",
			"Call to undefined function '%s' in module: %s at %d:%d",
			e.Name, c.module, e.Line(), e.Col())
	}

	if len(sym.ParamTypes) > 0 && len(sym.ParamTypes) != len(e.Args) {
		return diag.Errorf("sema::call",
			"Wrong number of arguments when calling '%s' in module: %s at %d:%d",
			e.Name, c.module, e.Line(), e.Col())
	}

	for i := 0; i < len(e.Args) && i < len(sym.ParamTypes); i++ {
		expected := sym.ParamTypes[i]
		actual := e.Args[i].Type()
		if expected.Kind == types.Auto || (actual != nil && actual.Kind == types.Auto) {
			continue
		}
		if !types.Compatible(expected, actual) {
			return diag.Errorf("sema::call",
				"Argument type mismatch in call to '%s': expected %s got %s in module: %s at %d:%d",
				e.Name, typeName(expected), typeName(actual), c.module, e.Line(), e.Col())
		}
	}

	e.SetType(types.NewNamed(sym.Type.Kind, sym.Type.Name))
	return nil
}

// assignExpr checks an assignment expression; the result type is the
// destination variable's type.
func (c *Checker) assignExpr(e *syntax.Assignment) error {
	if err := c.expr(e.Value); err != nil {
		return err
	}

	sym := c.lookup(e.Name)
	if sym == nil {
		return diag.Errorf("sema::assignment",
			"Assign to undefined variable '%s' in module: %s at %d:%d",
			e.Name, c.module, e.Line(), e.Col())
	}
	if sym.IsConst {
		return diag.Errorf("sema::assignment",
			"Cannot assign to constant '%s' in module: %s at %d:%d",
			e.Name, c.module, e.Line(), e.Col())
	}

	if !types.Compatible(sym.Type, e.Value.Type()) {
		return diag.Errorf("sema::assignment",
			"Type mismatch in assignment to variable '%s' in module: %s at %d:%d",
			e.Name, c.module, e.Line(), e.Col())
	}

	e.SetType(types.NewNamed(sym.Type.Kind, sym.Type.Name))
	return nil
}

// typeName renders a type for diagnostics, mapping a missing name to void.
func typeName(t *types.Type) string {
	if t == nil || t.Name == "" {
		return "void"
	}
	return t.Name
}
