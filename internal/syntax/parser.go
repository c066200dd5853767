package syntax

import (
	"strconv"

	"github.com/Leorevoir/CPLUS-Compiler/internal/diag"
	"github.com/Leorevoir/CPLUS-Compiler/internal/types"
)

// Maximum number of diagnostics before aborting the parse.
const maxErrors = 10

// parseError wraps a diagnostic for the panic-mode unwind. It is thrown by
// consume and caught at declaration level, where the parser synchronizes
// before recording the original error.
type parseError struct {
	err error
}

// Parser performs syntax analysis on a token sequence.
type Parser struct {
	tokens  []Token
	current int
	module  string

	errs  []error
	abort bool
}

// Parse consumes a token sequence into a Module.
// The leading synthetic MODULE token names the module. On syntax errors the
// parser recovers at declaration boundaries and keeps going; the first
// error is returned verbatim alongside whatever was parsed.
func Parse(tokens []Token) (*Module, error) {
	p := &Parser{tokens: tokens}
	return p.parseModule()
}

// parseModule parses the whole token stream.
func (p *Parser) parseModule() (*Module, error) {
	module := &Module{}

	name, err := p.moduleToken()
	if err != nil {
		return nil, err
	}
	module.Name = name
	p.module = name

	for !p.atEnd() && !p.abort {
		if decl := p.declaration(); decl != nil {
			module.Decls = append(module.Decls, decl)
		}
	}

	if len(p.errs) > 0 {
		return module, p.errs[0]
	}
	return module, nil
}

// moduleToken consumes the leading MODULE token.
func (p *Parser) moduleToken() (string, error) {
	if !p.check(_Module) {
		return "", diag.Errorf("parser::module",
			"Lexical error, expected 'module' at %d:%d", p.peek().Line, p.peek().Col)
	}
	return p.advance().Lexeme, nil
}

// Errors returns every diagnostic collected during the parse.
func (p *Parser) Errors() []error {
	return p.errs
}

// ----------------------------------------------------------------------------
// Token navigation

// atEnd reports whether the parser has reached EOF.
func (p *Parser) atEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Kind == _EOF
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Kind: _EOF}
	}
	return p.tokens[p.current]
}

// previous returns the most recently consumed token.
func (p *Parser) previous() Token {
	if p.current == 0 {
		return Token{Kind: _EOF}
	}
	return p.tokens[p.current-1]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	if !p.atEnd() {
		p.current++
	}
	return p.previous()
}

// check reports whether the current token has the given kind.
func (p *Parser) check(kind TokenKind) bool {
	if p.current >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current].Kind == kind
}

// checkAt reports whether the token at offset has the given kind.
func (p *Parser) checkAt(kind TokenKind, offset int) bool {
	if p.current+offset >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+offset].Kind == kind
}

// match consumes the current token iff its kind is one of kinds.
func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

// consume requires the current token to have the given kind.
// On mismatch it throws a parseError carrying the message and the current
// source position; declaration-level recovery catches it.
func (p *Parser) consume(kind TokenKind, message string) Token {
	if p.check(kind) {
		return p.advance()
	}
	tok := p.peek()
	panic(parseError{diag.Errorf("parser::consume",
		"%s in module: %s at %d:%d", message, p.module, tok.Line, tok.Col)})
}

// fail throws a parseError from an arbitrary parse rule.
func (p *Parser) fail(where, format string, args ...interface{}) {
	panic(parseError{diag.Errorf(where, format, args...)})
}

// record stores a diagnostic and aborts the parse past the error limit.
func (p *Parser) record(err error) {
	p.errs = append(p.errs, err)
	if len(p.errs) >= maxErrors {
		p.abort = true
	}
}

// synchronize discards tokens until a likely statement boundary: just past
// a semicolon, before a closing brace, or before a declaration/statement
// starter keyword.
func (p *Parser) synchronize() {
	for !p.atEnd() {
		if p.previous().Kind == _Semi || p.peek().Kind == _Rbrace {
			return
		}
		switch p.peek().Kind {
		case _Def, _Const, _If, _For, _Foreach, _Case, _Return:
			return
		}
		p.advance()
	}
}

// ----------------------------------------------------------------------------
// Declarations

// declaration parses one declaration or statement. Any parse error inside
// it triggers panic-mode recovery: tokens are discarded up to a
// synchronization point and the diagnostic is recorded.
func (p *Parser) declaration() (result Stmt) {
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(parseError)
			if !ok {
				panic(r)
			}
			p.synchronize()
			p.record(pe.err)
			result = nil
		}
	}()

	if p.match(_Def) {
		return p.funcDecl()
	}
	if p.match(_Const) {
		return p.varDecl(true, true)
	}
	return p.statement()
}

// funcDecl parses: def IDENT ( (IDENT (: type)?)(, ...)* ) (-> type)? block
// Parameters may omit their type (inferred downstream as auto); the return
// type defaults to void when absent.
func (p *Parser) funcDecl() Stmt {
	name := p.consume(_Identifier, "Expected function name")
	fn := &FuncDecl{Name: name.Lexeme}
	fn.at(name)

	p.consume(_Lparen, "Expected '(' after function name")

	if !p.check(_Rparen) {
		for {
			paramName := p.consume(_Identifier, "Expected parameter name")

			var paramType *types.Type
			if p.match(_Colon) {
				paramType = p.parseType()
			}
			fn.Params = append(fn.Params, Param{Name: paramName.Lexeme, Type: paramType})

			if !p.match(_Comma) {
				break
			}
		}
	}

	p.consume(_Rparen, "Expected ')' after parameters")

	if p.match(_Arrow) {
		fn.ReturnType = p.parseType()
	}

	fn.Body = p.blockStmt()
	return fn
}

// varDecl parses: IDENT (: type)? (= expr)? [;]
// At least one of the type and the initializer must be present; that rule
// is enforced by the semantic analyzer, not here.
func (p *Parser) varDecl(isConst, expectSemi bool) Stmt {
	name := p.consume(_Identifier, "Expected variable name")
	decl := &VarDecl{Name: name.Lexeme, IsConst: isConst}
	decl.at(name)

	if p.match(_Colon) {
		decl.DeclaredType = p.parseType()
	}
	if p.match(_Assign) {
		decl.Init = p.expression()
	}

	if expectSemi {
		p.consume(_Semi, "Expected ';' after variable declaration")
	}
	return decl
}

// parseType parses a type name.
// Unknown spellings map to auto so semantic analysis sees them uniformly.
func (p *Parser) parseType() *types.Type {
	tok := p.consume(_Identifier, "Expected type name")
	return types.NewNamed(types.FromName(tok.Lexeme), tok.Lexeme)
}

// ----------------------------------------------------------------------------
// Statements

// statement selects a statement form by its first token.
func (p *Parser) statement() Stmt {
	if p.match(_If) {
		return p.ifStmt()
	}
	if p.match(_For) {
		return p.forStmt()
	}
	if p.match(_Foreach) {
		return p.foreachStmt()
	}
	if p.match(_Case) {
		return p.caseStmt()
	}
	if p.match(_Return) {
		return p.returnStmt()
	}
	if p.check(_Lbrace) {
		return p.blockStmt()
	}
	if p.check(_Identifier) && (p.checkAt(_Colon, 1) || p.checkAt(_Assign, 1)) {
		// IDENT : type ... is a declaration; IDENT = expr ends up as one
		// too (the non-const, semicolon-terminated form).
		return p.varDecl(false, true)
	}
	return p.exprStmt()
}

// blockStmt parses { declaration* }.
func (p *Parser) blockStmt() Stmt {
	open := p.consume(_Lbrace, "Expected '{'")
	block := &Block{}
	block.at(open)

	for !p.check(_Rbrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}

	p.consume(_Rbrace, "Expected '}'")
	return block
}

// ifStmt parses: if (cond) then (else stmt)?
// The parentheses around the condition are optional, and the tolerance is
// looser than intended: zero or several opening/closing parens are
// accepted. Kept as-is.
func (p *Parser) ifStmt() Stmt {
	tok := p.previous()

	for p.match(_Lparen) && p.check(_Rparen) {
	}
	cond := p.expression()
	for p.match(_Rparen) && p.check(_Rparen) {
	}

	s := &If{Cond: cond, Then: p.statement()}
	s.at(tok)

	if p.match(_Else) {
		s.Else = p.statement()
	}
	return s
}

// forStmt parses: for (init? ; cond? ; inc?) body
// The surrounding parentheses are optional. The initializer is either a
// variable declaration (without its own semicolon) or an expression
// statement.
func (p *Parser) forStmt() Stmt {
	tok := p.previous()
	s := &For{}
	s.at(tok)

	hasParen := p.match(_Lparen)

	if !p.check(_Semi) {
		if p.check(_Identifier) && (p.checkAt(_Colon, 1) || p.checkAt(_Assign, 1)) {
			s.Init = p.varDecl(false, false).(*VarDecl)
		} else {
			init := &ExprStmt{X: p.expression()}
			init.at(tok)
			s.Init = init
		}
	}
	p.consume(_Semi, "Expected ';' after for loop initializer")

	if !p.check(_Semi) {
		s.Cond = p.expression()
	}
	p.consume(_Semi, "Expected ';' after for loop condition")

	if !p.check(_Lbrace) && !(hasParen && p.check(_Rparen)) {
		s.Inc = p.expression()
	}

	if hasParen {
		p.consume(_Rparen, "Expected ')' after for loop increment")
	}

	s.Body = p.statement()
	return s
}

// foreachStmt parses: foreach (IDENT in expr) body
// The parentheses are optional.
func (p *Parser) foreachStmt() Stmt {
	tok := p.previous()

	hasParen := p.match(_Lparen)
	iter := p.consume(_Identifier, "Expected iterator name in foreach")
	p.consume(_In, "Expected 'in' after iterator in foreach")

	s := &Foreach{IterName: iter.Lexeme, Iterable: p.expression()}
	s.at(tok)

	if hasParen {
		p.consume(_Rparen, "Expected ')' after foreach expression")
	}

	s.Body = p.statement()
	return s
}

// caseStmt parses: case (expr) { (expr | default) : stmts ... }
// A clause body runs until the next INTEGER or DEFAULT token, so a numeric
// literal opening a statement inside a clause starts the next clause
// instead (known limitation).
func (p *Parser) caseStmt() Stmt {
	tok := p.previous()

	p.consume(_Lparen, "Expected '(' after 'case'")
	s := &Case{Scrutinee: p.expression()}
	s.at(tok)
	p.consume(_Rparen, "Expected ')' after case expression")
	p.consume(_Lbrace, "Expected '{' before case clauses")

	for !p.check(_Rbrace) && !p.atEnd() {
		var clause CaseClause
		if !p.match(_Default) {
			clause.Value = p.expression()
		}
		p.consume(_Colon, "Expected ':' after case value")

		for !p.check(_Rbrace) && !p.atEnd() && !p.check(_Integer) && !p.check(_Default) {
			if stmt := p.declaration(); stmt != nil {
				clause.Stmts = append(clause.Stmts, stmt)
			}
		}
		s.Clauses = append(s.Clauses, clause)
	}

	p.consume(_Rbrace, "Expected '}' after case clauses")
	return s
}

// returnStmt parses: return expr? ;
func (p *Parser) returnStmt() Stmt {
	tok := p.previous()
	s := &Return{}
	s.at(tok)

	if !p.check(_Semi) {
		s.Value = p.expression()
	}
	p.consume(_Semi, "Expected ';' after return value")
	return s
}

// exprStmt parses: expr ;
func (p *Parser) exprStmt() Stmt {
	tok := p.peek()
	s := &ExprStmt{X: p.expression()}
	s.at(tok)
	p.consume(_Semi, "Expected ';' after expression")
	return s
}

// ----------------------------------------------------------------------------
// Expressions
//
// Precedence (low to high):
//   logicalOr -> logicalAnd -> equality -> comparison -> term -> factor
//   -> unary -> call -> primary
// All binary levels are left-associative.

// expression parses an expression.
func (p *Parser) expression() Expr {
	return p.logicalOr()
}

// binary builds a Binary positioned at its left operand.
func binary(left Expr, op BinaryOp, right Expr) Expr {
	b := &Binary{Left: left, Op: op, Right: right}
	b.node.line = left.Line()
	b.node.col = left.Col()
	return b
}

// logicalOr parses: logicalAnd (|| logicalAnd)*
func (p *Parser) logicalOr() Expr {
	e := p.logicalAnd()
	for p.match(_OrOr) {
		e = binary(e, Or, p.logicalAnd())
	}
	return e
}

// logicalAnd parses: equality (&& equality)*
func (p *Parser) logicalAnd() Expr {
	e := p.equality()
	for p.match(_AndAnd) {
		e = binary(e, And, p.equality())
	}
	return e
}

// equality parses: comparison ((== | !=) comparison)*
func (p *Parser) equality() Expr {
	e := p.comparison()
	for p.match(_Eq, _Neq) {
		op := Eq
		if p.previous().Kind == _Neq {
			op = Neq
		}
		e = binary(e, op, p.comparison())
	}
	return e
}

// comparison parses: term ((< | <= | > | >=) term)*
func (p *Parser) comparison() Expr {
	e := p.term()
	for p.match(_Lt, _Lte, _Gt, _Gte) {
		var op BinaryOp
		switch p.previous().Kind {
		case _Lt:
			op = Lt
		case _Lte:
			op = Lte
		case _Gt:
			op = Gt
		default:
			op = Gte
		}
		e = binary(e, op, p.term())
	}
	return e
}

// term parses: factor ((+ | -) factor)*
func (p *Parser) term() Expr {
	e := p.factor()
	for p.match(_Plus, _Minus) {
		op := Add
		if p.previous().Kind == _Minus {
			op = Sub
		}
		e = binary(e, op, p.factor())
	}
	return e
}

// factor parses: unary ((* | / | %) unary)*
func (p *Parser) factor() Expr {
	e := p.unary()
	for p.match(_Star, _Slash, _Pct) {
		var op BinaryOp
		switch p.previous().Kind {
		case _Star:
			op = Mul
		case _Slash:
			op = Div
		default:
			op = Mod
		}
		e = binary(e, op, p.unary())
	}
	return e
}

// unary parses: (! | - | + | ++ | --) unary | call
func (p *Parser) unary() Expr {
	if p.match(_Bang, _Minus, _Plus, _Inc, _Dec) {
		tok := p.previous()
		var op UnaryOp
		switch tok.Kind {
		case _Bang:
			op = Not
		case _Minus:
			op = Negate
		case _Plus:
			op = Plus
		case _Inc:
			op = Inc
		default:
			op = Dec
		}
		u := &Unary{Op: op, Operand: p.unary()}
		u.at(tok)
		return u
	}
	return p.call()
}

// call parses a primary followed by any number of argument lists.
func (p *Parser) call() Expr {
	e := p.primary()
	for p.match(_Lparen) {
		e = p.finishCall(e)
	}
	return e
}

// finishCall parses the argument list of a call whose callee is e.
// Only identifier callees are valid.
func (p *Parser) finishCall(callee Expr) Expr {
	ident, ok := callee.(*Identifier)
	if !ok {
		p.fail("parser::call", "Invalid function call in module: %s at %d:%d",
			p.module, callee.Line(), callee.Col())
	}

	call := &Call{Name: ident.Name}
	call.node.line = ident.Line()
	call.node.col = ident.Col()

	if !p.check(_Rparen) {
		for {
			call.Args = append(call.Args, p.expression())
			if !p.match(_Comma) {
				break
			}
		}
	}

	p.consume(_Rparen, "Expected ')' after arguments")
	return call
}

// primary parses literals, identifiers (including primary-level
// assignment), and parenthesized expressions.
func (p *Parser) primary() Expr {
	if p.match(_Integer) {
		tok := p.previous()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			p.fail("parser::primary", "Invalid integer literal %q in module: %s at %d:%d",
				tok.Lexeme, p.module, tok.Line, tok.Col)
		}
		lit := &Literal{Kind: IntLit, Int: int32(v)}
		lit.at(tok)
		return lit
	}

	if p.match(_Float) {
		tok := p.previous()
		v, err := strconv.ParseFloat(tok.Lexeme, 32)
		if err != nil {
			p.fail("parser::primary", "Invalid float literal %q in module: %s at %d:%d",
				tok.Lexeme, p.module, tok.Line, tok.Col)
		}
		lit := &Literal{Kind: FloatLit, Float: float32(v)}
		lit.at(tok)
		return lit
	}

	if p.match(_String) || p.match(_Character) {
		// Character literals reuse the string variant; they are not a
		// distinct type.
		tok := p.previous()
		lit := &Literal{Kind: StringLit, Str: unquote(tok.Lexeme)}
		lit.at(tok)
		return lit
	}

	if p.match(_Identifier) {
		tok := p.previous()

		switch tok.Lexeme {
		case "true", "false":
			lit := &Literal{Kind: BoolLit, Bool: tok.Lexeme == "true"}
			lit.at(tok)
			return lit
		}

		if p.match(_Assign) {
			a := &Assignment{Name: tok.Lexeme, Value: p.expression()}
			a.at(tok)
			return a
		}

		ident := &Identifier{Name: tok.Lexeme}
		ident.at(tok)
		return ident
	}

	if p.match(_Lparen) {
		e := p.expression()
		p.consume(_Rparen, "Expected ')' after expression")
		return e
	}

	tok := p.peek()
	p.fail("parser::primary", "Unexpected token: %q in module: %s at %d:%d",
		tok.Lexeme, p.module, tok.Line, tok.Col)
	return nil
}

// unquote strips the surrounding quote bytes from a string or character
// lexeme.
func unquote(lexeme string) string {
	if len(lexeme) >= 2 {
		return lexeme[1 : len(lexeme)-1]
	}
	return lexeme
}
