// Package ir lowers a type-annotated C+ module to the textual SSA
// intermediate representation.
package ir

import (
	"sort"
	"strconv"
	"strings"

	"github.com/Leorevoir/CPLUS-Compiler/internal/diag"
	"github.com/Leorevoir/CPLUS-Compiler/internal/syntax"
	"github.com/Leorevoir/CPLUS-Compiler/internal/types"
)

// Emitter generates SSA IR text for one module. It assumes semantic
// analysis succeeded: every reachable expression carries a type and every
// identifier resolves.
type Emitter struct {
	module string
	out    strings.Builder

	// tempCounter numbers SSA temporaries. It is shared across all name
	// hints so distinct hints can never collide.
	tempCounter int

	// labelCounters number labels per hint, so the first conditional gets
	// if.then0/if.else0/if.end0.
	labelCounters map[string]int

	// valueMaps is the stack of scoped variable-to-SSA bindings.
	valueMaps []map[string]string

	// lastValue is the SSA name or immediate produced by the most recently
	// lowered expression.
	lastValue string

	currentFunction string
}

// Emit lowers a module to IR text.
// The value-map stack must be empty on completion; anything else is an
// internal invariant violation, not a user error.
func Emit(module *syntax.Module) (string, error) {
	e := &Emitter{
		module:        module.Name,
		labelCounters: make(map[string]int),
	}

	e.push()
	e.emit("; C+ generated IR for module " + module.Name)
	for _, decl := range module.Decls {
		e.stmt(decl)
	}
	e.pop()

	if len(e.valueMaps) != 0 {
		return "", diag.Errorf("ir::run",
			"value map stack not empty after processing module: %s", module.Name)
	}
	return e.out.String(), nil
}

// ----------------------------------------------------------------------------
// Output helpers

// emit appends one line of IR.
func (e *Emitter) emit(s string) {
	e.out.WriteString(s)
	e.out.WriteByte('\n')
}

// newTemp allocates a fresh SSA temporary named after hint. A hint ending
// in a digit gets a '_' separator, so x1 at 0 and x at 10 cannot both
// produce %x10.
func (e *Emitter) newTemp(hint string) string {
	if n := len(hint); n > 0 && hint[n-1] >= '0' && hint[n-1] <= '9' {
		hint += "_"
	}
	name := "%" + hint + strconv.Itoa(e.tempCounter)
	e.tempCounter++
	return name
}

// newLabel allocates a fresh label named after hint.
func (e *Emitter) newLabel(hint string) string {
	n := e.labelCounters[hint]
	e.labelCounters[hint]++
	return hint + strconv.Itoa(n)
}

// endsWithRet reports whether the last emitted line is a ret instruction.
func (e *Emitter) endsWithRet() bool {
	out := strings.TrimSuffix(e.out.String(), "\n")
	if i := strings.LastIndexByte(out, '\n'); i >= 0 {
		out = out[i+1:]
	}
	return out == "  ret" || strings.HasPrefix(out, "  ret ")
}

// ----------------------------------------------------------------------------
// Value map stack

// currentMap returns the top binding map, creating one if the stack is
// empty.
func (e *Emitter) currentMap() map[string]string {
	if len(e.valueMaps) == 0 {
		e.valueMaps = append(e.valueMaps, make(map[string]string))
	}
	return e.valueMaps[len(e.valueMaps)-1]
}

// push pushes a fresh, empty binding map (function entry).
func (e *Emitter) push() {
	e.valueMaps = append(e.valueMaps, make(map[string]string))
}

// pushCopy pushes a shallow copy of the top map (blocks and branches), so
// inner rebindings do not leak upward except through phi merges.
func (e *Emitter) pushCopy() {
	copied := make(map[string]string, len(e.currentMap()))
	for name, ssa := range e.currentMap() {
		copied[name] = ssa
	}
	e.valueMaps = append(e.valueMaps, copied)
}

// pop discards the top binding map.
func (e *Emitter) pop() {
	if len(e.valueMaps) > 0 {
		e.valueMaps = e.valueMaps[:len(e.valueMaps)-1]
	}
}

// setName binds a source variable to an SSA value in the top map.
func (e *Emitter) setName(name, ssa string) {
	e.currentMap()[name] = ssa
}

// lookup resolves a source variable against the map stack, top first.
// The fallback to the raw name should never trigger once semantic analysis
// has succeeded.
func (e *Emitter) lookup(name string) string {
	for i := len(e.valueMaps) - 1; i >= 0; i-- {
		if ssa, ok := e.valueMaps[i][name]; ok {
			return ssa
		}
	}
	return name
}

// ----------------------------------------------------------------------------
// Opcode tables

// binaryOpcodes maps source operators to IR opcodes.
var binaryOpcodes = [...]string{
	syntax.Add: "add",
	syntax.Sub: "sub",
	syntax.Mul: "mul",
	syntax.Div: "sdiv",
	syntax.Mod: "srem",
	syntax.Eq:  "icmp.eq",
	syntax.Neq: "icmp.ne",
	syntax.Lt:  "icmp.slt",
	syntax.Lte: "icmp.sle",
	syntax.Gt:  "icmp.sgt",
	syntax.Gte: "icmp.sge",
	syntax.And: "and",
	syntax.Or:  "or",
}

// binaryOpcode returns the IR opcode for a binary operator.
func binaryOpcode(op syntax.BinaryOp) string {
	if int(op) < len(binaryOpcodes) {
		return binaryOpcodes[op]
	}
	return "op_unknown"
}

// kindOf renders the type kind of an expression for const.<ty> operands.
func kindOf(x syntax.Expr) string {
	if x.Type() == nil {
		return types.Auto.String()
	}
	return x.Type().Kind.String()
}

// ----------------------------------------------------------------------------
// Statement lowering

// stmt lowers one statement.
func (e *Emitter) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.ExprStmt:
		e.expr(s.X)
		e.lastValue = ""

	case *syntax.Block:
		e.pushCopy()
		for _, stmt := range s.Stmts {
			e.stmt(stmt)
		}
		e.pop()

	case *syntax.VarDecl:
		e.varDecl(s)

	case *syntax.Return:
		if s.Value != nil {
			e.expr(s.Value)
			e.emit("  ret " + e.lastValue)
		} else {
			e.emit("  ret")
		}

	case *syntax.If:
		e.ifStmt(s)

	case *syntax.For:
		e.emit("  ; for lowering not implemented")

	case *syntax.Foreach:
		e.emit("  ; foreach lowering not implemented")

	case *syntax.Case:
		e.emit("  ; case lowering not implemented")

	case *syntax.FuncDecl:
		e.funcDecl(s)
	}
}

// varDecl binds a fresh SSA name for the variable, moving the initializer
// in or leaving the value undefined.
func (e *Emitter) varDecl(s *syntax.VarDecl) {
	ssa := e.newTemp(s.Name)

	if s.Init != nil {
		e.expr(s.Init)
		e.emit("  " + ssa + " = mov " + e.lastValue)
		e.lastValue = ""
	} else {
		e.emit("  " + ssa + " = undef")
	}
	e.setName(s.Name, ssa)
}

// ifStmt lowers a conditional with a phi merge at the join. Both branch
// maps are captured; for every variable bound in the parent or either
// branch, differing SSA names at the join produce a phi.
func (e *Emitter) ifStmt(s *syntax.If) {
	e.expr(s.Cond)
	cond := e.lastValue
	e.lastValue = ""

	thenLabel := e.newLabel("if.then")
	var elseLabel string
	if s.Else != nil {
		elseLabel = e.newLabel("if.else")
	} else {
		elseLabel = e.newLabel("if.end")
	}
	endLabel := e.newLabel("if.end")

	e.emit("  br " + cond + ", %" + thenLabel + ", %" + elseLabel)

	parentMap := e.snapshot()

	// then branch
	e.emit("label %" + thenLabel + ":")
	e.pushCopy()
	if s.Then != nil {
		e.branch(s.Then)
	}
	thenMap := e.snapshot()
	e.pop()
	e.emit("  br %" + endLabel)

	// else branch (if any)
	var elseMap map[string]string
	e.emit("label %" + elseLabel + ":")
	if s.Else != nil {
		e.pushCopy()
		e.branch(s.Else)
		elseMap = e.snapshot()
		e.pop()
	} else {
		elseMap = parentMap
	}
	e.emit("  br %" + endLabel)

	// join: iterate the union of the three key sets so a variable rebound
	// in only one branch is not dropped
	e.emit("label %" + endLabel + ":")

	varset := make(map[string]bool)
	for name := range parentMap {
		varset[name] = true
	}
	for name := range thenMap {
		varset[name] = true
	}
	for name := range elseMap {
		varset[name] = true
	}

	vars := make([]string, 0, len(varset))
	for name := range varset {
		vars = append(vars, name)
	}
	sort.Strings(vars)

	for _, name := range vars {
		parentSSA, ok := parentMap[name]
		if !ok {
			parentSSA = "undef"
		}
		thenSSA, ok := thenMap[name]
		if !ok {
			thenSSA = parentSSA
		}
		elseSSA, ok := elseMap[name]
		if !ok {
			elseSSA = parentSSA
		}

		if thenSSA == elseSSA {
			e.setName(name, thenSSA)
			continue
		}

		phiSSA := e.newTemp(name + "_phi")
		e.emit("  " + phiSSA + " = phi [" + thenSSA + ", %" + thenLabel + "], [" + elseSSA + ", %" + elseLabel + "]")
		e.setName(name, phiSSA)
	}
}

// branch lowers an if branch into the branch's own binding map. A braced
// branch lowers its statements directly, without the extra map a Block
// would push, so rebindings stay visible to the phi merge at the join.
func (e *Emitter) branch(s syntax.Stmt) {
	if block, ok := s.(*syntax.Block); ok {
		for _, stmt := range block.Stmts {
			e.stmt(stmt)
		}
		return
	}
	e.stmt(s)
}

// snapshot returns a copy of the top binding map.
func (e *Emitter) snapshot() map[string]string {
	snap := make(map[string]string, len(e.currentMap()))
	for name, ssa := range e.currentMap() {
		snap[name] = ssa
	}
	return snap
}

// funcDecl lowers a function body inside a fresh binding map. Parameters
// bind to arg instructions; an implicit ret closes bodies that do not end
// with an explicit one.
func (e *Emitter) funcDecl(s *syntax.FuncDecl) {
	e.currentFunction = s.Name

	retKind := types.Void.String()
	if s.ReturnType != nil {
		retKind = s.ReturnType.Kind.String()
	}

	e.emit("func @" + s.Name + "() -> " + retKind)
	e.emit("{")
	e.push()

	for i, param := range s.Params {
		ssa := e.newTemp(param.Name)
		e.emit("  " + ssa + " = arg " + strconv.Itoa(i))
		e.setName(param.Name, ssa)
	}

	if s.Body != nil {
		e.stmt(s.Body)
	}

	if !e.endsWithRet() {
		e.emit("  ret")
	}

	e.emit("}")
	e.pop()
}

// ----------------------------------------------------------------------------
// Expression lowering

// expr lowers one expression, leaving its SSA name or immediate form in
// lastValue. Operands evaluate left to right.
func (e *Emitter) expr(x syntax.Expr) {
	switch x := x.(type) {
	case *syntax.Literal:
		e.literal(x)

	case *syntax.Identifier:
		e.lastValue = e.lookup(x.Name)

	case *syntax.Binary:
		e.expr(x.Left)
		left := e.lastValue
		e.expr(x.Right)
		right := e.lastValue

		tmp := e.newTemp("t")
		e.emit("  " + tmp + " = " + binaryOpcode(x.Op) + " " + left + ", " + right)
		e.lastValue = tmp

	case *syntax.Unary:
		e.unary(x)

	case *syntax.Call:
		args := make([]string, 0, len(x.Args))
		for _, arg := range x.Args {
			e.expr(arg)
			args = append(args, e.lastValue)
		}

		tmp := e.newTemp("call")
		e.emit("  " + tmp + " = call @" + x.Name + "(" + strings.Join(args, ", ") + ")")
		e.lastValue = tmp

	case *syntax.Assignment:
		e.expr(x.Value)
		value := e.lastValue

		ssa := e.newTemp(x.Name)
		e.emit("  " + ssa + " = mov " + value)
		e.setName(x.Name, ssa)
		e.lastValue = ssa
	}
}

// literal lowers a literal to its immediate or constant form.
func (e *Emitter) literal(x *syntax.Literal) {
	switch x.Kind {
	case syntax.IntLit:
		e.lastValue = "imm.i32 " + strconv.FormatInt(int64(x.Int), 10)
	case syntax.FloatLit:
		e.lastValue = "imm.f32 " + strconv.FormatFloat(float64(x.Float), 'g', -1, 32)
	case syntax.StringLit:
		e.lastValue = "const.str " + strconv.Quote(x.Str)
	case syntax.BoolLit:
		if x.Bool {
			e.lastValue = "imm.bool 1"
		} else {
			e.lastValue = "imm.bool 0"
		}
	}
}

// unary lowers a unary operation. When the operand is an identifier, INC
// and DEC rebind it to the freshly computed value.
func (e *Emitter) unary(x *syntax.Unary) {
	identName := ""
	if ident, ok := x.Operand.(*syntax.Identifier); ok {
		identName = ident.Name
	}

	e.expr(x.Operand)
	src := e.lastValue
	tmp := e.newTemp("u")

	switch x.Op {
	case syntax.Not:
		e.emit("  " + tmp + " = icmp.eq " + src + ", const." + kindOf(x) + "0")
	case syntax.Negate:
		e.emit("  " + tmp + " = neg " + src)
	case syntax.Inc:
		e.emit("  " + tmp + " = add " + src + ", const." + kindOf(x) + "1")
	case syntax.Dec:
		e.emit("  " + tmp + " = sub " + src + ", const." + kindOf(x) + "1")
	default:
		e.emit("  " + tmp + " = plus " + src)
	}

	if identName != "" && (x.Op == syntax.Inc || x.Op == syntax.Dec) {
		e.setName(identName, tmp)
	}

	e.lastValue = tmp
}
