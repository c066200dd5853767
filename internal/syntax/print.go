package syntax

import (
	"fmt"
	"io"
	"strings"
)

// FprintTokens writes a tabular token dump to w, the format behind the
// -t/--show-tokens flag.
func FprintTokens(w io.Writer, tokens []Token) {
	fmt.Fprintf(w, "%-10s %-14s %s\n", "POSITION", "TOKEN", "LEXEME")
	fmt.Fprintf(w, "%-10s %-14s %s\n", strings.Repeat("-", 10), strings.Repeat("-", 14), strings.Repeat("-", 20))
	for _, tok := range tokens {
		fmt.Fprintf(w, "%-10s %-14s %q\n", fmt.Sprintf("%d:%d", tok.Line, tok.Col), tok.Kind, tok.Lexeme)
	}
}

// Fprint writes an indented text dump of the module AST to w, the format
// behind the -a/--show-ast flag.
func Fprint(w io.Writer, module *Module) {
	fmt.Fprintf(w, "Module %s\n", module.Name)
	for _, decl := range module.Decls {
		fprintStmt(w, decl, "  ")
	}
}

// fprintStmt dumps one statement at the given indent.
func fprintStmt(w io.Writer, s Stmt, indent string) {
	switch s := s.(type) {
	case *ExprStmt:
		fmt.Fprintf(w, "%sExprStmt\n", indent)
		fprintExpr(w, s.X, indent+"  ")

	case *Block:
		fmt.Fprintf(w, "%sBlock\n", indent)
		for _, stmt := range s.Stmts {
			fprintStmt(w, stmt, indent+"  ")
		}

	case *VarDecl:
		kw := ""
		if s.IsConst {
			kw = " const"
		}
		fmt.Fprintf(w, "%sVarDecl%s %s: %s\n", indent, kw, s.Name, s.DeclaredType)
		if s.Init != nil {
			fprintExpr(w, s.Init, indent+"  ")
		}

	case *Return:
		fmt.Fprintf(w, "%sReturn\n", indent)
		if s.Value != nil {
			fprintExpr(w, s.Value, indent+"  ")
		}

	case *If:
		fmt.Fprintf(w, "%sIf\n", indent)
		fprintExpr(w, s.Cond, indent+"  ")
		fmt.Fprintf(w, "%s  Then:\n", indent)
		fprintStmt(w, s.Then, indent+"    ")
		if s.Else != nil {
			fmt.Fprintf(w, "%s  Else:\n", indent)
			fprintStmt(w, s.Else, indent+"    ")
		}

	case *For:
		fmt.Fprintf(w, "%sFor\n", indent)
		if s.Init != nil {
			fmt.Fprintf(w, "%s  Init:\n", indent)
			fprintStmt(w, s.Init, indent+"    ")
		}
		if s.Cond != nil {
			fmt.Fprintf(w, "%s  Cond:\n", indent)
			fprintExpr(w, s.Cond, indent+"    ")
		}
		if s.Inc != nil {
			fmt.Fprintf(w, "%s  Inc:\n", indent)
			fprintExpr(w, s.Inc, indent+"    ")
		}
		fmt.Fprintf(w, "%s  Body:\n", indent)
		fprintStmt(w, s.Body, indent+"    ")

	case *Foreach:
		fmt.Fprintf(w, "%sForeach %s in\n", indent, s.IterName)
		fprintExpr(w, s.Iterable, indent+"  ")
		fmt.Fprintf(w, "%s  Body:\n", indent)
		fprintStmt(w, s.Body, indent+"    ")

	case *Case:
		fmt.Fprintf(w, "%sCase\n", indent)
		fprintExpr(w, s.Scrutinee, indent+"  ")
		for _, clause := range s.Clauses {
			if clause.Value == nil {
				fmt.Fprintf(w, "%s  Default:\n", indent)
			} else {
				fmt.Fprintf(w, "%s  When:\n", indent)
				fprintExpr(w, clause.Value, indent+"    ")
			}
			for _, stmt := range clause.Stmts {
				fprintStmt(w, stmt, indent+"    ")
			}
		}

	case *FuncDecl:
		params := make([]string, len(s.Params))
		for i, param := range s.Params {
			params[i] = param.Name
			if param.Type != nil {
				params[i] += ": " + param.Type.String()
			}
		}
		ret := "void"
		if s.ReturnType != nil {
			ret = s.ReturnType.String()
		}
		fmt.Fprintf(w, "%sFuncDecl %s(%s) -> %s\n", indent, s.Name, strings.Join(params, ", "), ret)
		fprintStmt(w, s.Body, indent+"  ")

	default:
		fmt.Fprintf(w, "%s%T\n", indent, s)
	}
}

// fprintExpr dumps one expression at the given indent, with its inferred
// type when semantic analysis has filled it in.
func fprintExpr(w io.Writer, e Expr, indent string) {
	typ := ""
	if e.Type() != nil {
		typ = fmt.Sprintf(" (%s)", e.Type())
	}

	switch e := e.(type) {
	case *Literal:
		switch e.Kind {
		case IntLit:
			fmt.Fprintf(w, "%sLiteral %d%s\n", indent, e.Int, typ)
		case FloatLit:
			fmt.Fprintf(w, "%sLiteral %g%s\n", indent, e.Float, typ)
		case StringLit:
			fmt.Fprintf(w, "%sLiteral %q%s\n", indent, e.Str, typ)
		case BoolLit:
			fmt.Fprintf(w, "%sLiteral %t%s\n", indent, e.Bool, typ)
		}

	case *Identifier:
		fmt.Fprintf(w, "%sIdentifier %s%s\n", indent, e.Name, typ)

	case *Binary:
		fmt.Fprintf(w, "%sBinary %s%s\n", indent, e.Op, typ)
		fprintExpr(w, e.Left, indent+"  ")
		fprintExpr(w, e.Right, indent+"  ")

	case *Unary:
		fmt.Fprintf(w, "%sUnary %s%s\n", indent, e.Op, typ)
		fprintExpr(w, e.Operand, indent+"  ")

	case *Call:
		fmt.Fprintf(w, "%sCall %s%s\n", indent, e.Name, typ)
		for _, arg := range e.Args {
			fprintExpr(w, arg, indent+"  ")
		}

	case *Assignment:
		fmt.Fprintf(w, "%sAssignment %s%s\n", indent, e.Name, typ)
		fprintExpr(w, e.Value, indent+"  ")

	default:
		fmt.Fprintf(w, "%s%T%s\n", indent, e, typ)
	}
}
