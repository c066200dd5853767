package syntax

import (
	"encoding/json"
	"io"
)

// jsonNode is the wire shape of one AST node in the JSON dump.
// Only the fields relevant to the node kind are populated.
type jsonNode struct {
	Kind     string      `json:"kind"`
	Line     uint32      `json:"line,omitempty"`
	Col      uint32      `json:"col,omitempty"`
	Name     string      `json:"name,omitempty"`
	Op       string      `json:"op,omitempty"`
	Type     string      `json:"type,omitempty"`
	Value    interface{} `json:"value,omitempty"`
	Const    bool        `json:"const,omitempty"`
	Params   []jsonParam `json:"params,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

// jsonParam is the wire shape of one function parameter.
type jsonParam struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// FprintJSON writes an indented JSON dump of the module AST to w, the
// format behind --ast-format=json.
func FprintJSON(w io.Writer, module *Module) error {
	root := &jsonNode{Kind: "Module", Name: module.Name}
	for _, decl := range module.Decls {
		root.Children = append(root.Children, stmtToJSON(decl))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}

// base fills the position and type fields common to all nodes.
func base(kind string, n Node) *jsonNode {
	j := &jsonNode{Kind: kind, Line: n.Line(), Col: n.Col()}
	if e, ok := n.(Expr); ok && e.Type() != nil {
		j.Type = e.Type().String()
	}
	return j
}

// stmtToJSON converts a statement subtree.
func stmtToJSON(s Stmt) *jsonNode {
	switch s := s.(type) {
	case *ExprStmt:
		j := base("ExprStmt", s)
		j.Children = []*jsonNode{exprToJSON(s.X)}
		return j

	case *Block:
		j := base("Block", s)
		for _, stmt := range s.Stmts {
			j.Children = append(j.Children, stmtToJSON(stmt))
		}
		return j

	case *VarDecl:
		j := base("VarDecl", s)
		j.Name = s.Name
		j.Const = s.IsConst
		if s.DeclaredType != nil {
			j.Type = s.DeclaredType.String()
		}
		if s.Init != nil {
			j.Children = []*jsonNode{exprToJSON(s.Init)}
		}
		return j

	case *Return:
		j := base("Return", s)
		if s.Value != nil {
			j.Children = []*jsonNode{exprToJSON(s.Value)}
		}
		return j

	case *If:
		j := base("If", s)
		j.Children = []*jsonNode{exprToJSON(s.Cond), stmtToJSON(s.Then)}
		if s.Else != nil {
			j.Children = append(j.Children, stmtToJSON(s.Else))
		}
		return j

	case *For:
		j := base("For", s)
		if s.Init != nil {
			j.Children = append(j.Children, stmtToJSON(s.Init))
		}
		if s.Cond != nil {
			j.Children = append(j.Children, exprToJSON(s.Cond))
		}
		if s.Inc != nil {
			j.Children = append(j.Children, exprToJSON(s.Inc))
		}
		j.Children = append(j.Children, stmtToJSON(s.Body))
		return j

	case *Foreach:
		j := base("Foreach", s)
		j.Name = s.IterName
		j.Children = []*jsonNode{exprToJSON(s.Iterable), stmtToJSON(s.Body)}
		return j

	case *Case:
		j := base("Case", s)
		j.Children = []*jsonNode{exprToJSON(s.Scrutinee)}
		for _, clause := range s.Clauses {
			cj := &jsonNode{Kind: "Clause"}
			if clause.Value == nil {
				cj.Kind = "DefaultClause"
			} else {
				cj.Children = append(cj.Children, exprToJSON(clause.Value))
			}
			for _, stmt := range clause.Stmts {
				cj.Children = append(cj.Children, stmtToJSON(stmt))
			}
			j.Children = append(j.Children, cj)
		}
		return j

	case *FuncDecl:
		j := base("FuncDecl", s)
		j.Name = s.Name
		for _, param := range s.Params {
			pj := jsonParam{Name: param.Name}
			if param.Type != nil {
				pj.Type = param.Type.String()
			}
			j.Params = append(j.Params, pj)
		}
		if s.ReturnType != nil {
			j.Type = s.ReturnType.String()
		}
		j.Children = []*jsonNode{stmtToJSON(s.Body)}
		return j
	}
	return &jsonNode{Kind: "Unknown"}
}

// exprToJSON converts an expression subtree.
func exprToJSON(e Expr) *jsonNode {
	switch e := e.(type) {
	case *Literal:
		j := base("Literal", e)
		switch e.Kind {
		case IntLit:
			j.Value = e.Int
		case FloatLit:
			j.Value = e.Float
		case StringLit:
			j.Value = e.Str
		case BoolLit:
			j.Value = e.Bool
		}
		return j

	case *Identifier:
		j := base("Identifier", e)
		j.Name = e.Name
		return j

	case *Binary:
		j := base("Binary", e)
		j.Op = e.Op.String()
		j.Children = []*jsonNode{exprToJSON(e.Left), exprToJSON(e.Right)}
		return j

	case *Unary:
		j := base("Unary", e)
		j.Op = e.Op.String()
		j.Children = []*jsonNode{exprToJSON(e.Operand)}
		return j

	case *Call:
		j := base("Call", e)
		j.Name = e.Name
		for _, arg := range e.Args {
			j.Children = append(j.Children, exprToJSON(arg))
		}
		return j

	case *Assignment:
		j := base("Assignment", e)
		j.Name = e.Name
		j.Children = []*jsonNode{exprToJSON(e.Value)}
		return j
	}
	return &jsonNode{Kind: "Unknown"}
}
