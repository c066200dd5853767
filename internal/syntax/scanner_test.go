package syntax

import (
	"strings"
	"testing"
)

// lexKinds scans src and returns the token kinds without the surrounding
// MODULE/EOF pair.
func lexKinds(t *testing.T, src string) []Token {
	t.Helper()
	tokens, err := Lex(FileContent{File: "test.cp", Content: src})
	if err != nil {
		t.Fatalf("Lex(%q) failed: %v", src, err)
	}
	if len(tokens) < 2 {
		t.Fatalf("Lex(%q) returned %d tokens, want at least 2", src, len(tokens))
	}
	if tokens[0].Kind != _Module {
		t.Fatalf("first token = %v, want MODULE", tokens[0].Kind)
	}
	if tokens[len(tokens)-1].Kind != _EOF {
		t.Fatalf("last token = %v, want EOF", tokens[len(tokens)-1].Kind)
	}
	return tokens[1 : len(tokens)-1]
}

func TestScanTokens(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds []TokenKind
		lits  []string
	}{
		// Identifiers and keywords
		{"ident", "foo", []TokenKind{_Identifier}, []string{"foo"}},
		{"ident_underscore", "_bar", []TokenKind{_Identifier}, []string{"_bar"}},
		{"ident_mixed", "foo123", []TokenKind{_Identifier}, []string{"foo123"}},
		{"kw_def", "def", []TokenKind{_Def}, []string{"def"}},
		{"kw_const", "const", []TokenKind{_Const}, []string{"const"}},
		{"kw_return", "return", []TokenKind{_Return}, []string{"return"}},
		{"kw_struct", "struct", []TokenKind{_Struct}, []string{"struct"}},
		{"kw_if", "if", []TokenKind{_If}, []string{"if"}},
		{"kw_elsif", "elsif", []TokenKind{_Elsif}, []string{"elsif"}},
		{"kw_else", "else", []TokenKind{_Else}, []string{"else"}},
		{"kw_for", "for", []TokenKind{_For}, []string{"for"}},
		{"kw_foreach", "foreach", []TokenKind{_Foreach}, []string{"foreach"}},
		{"kw_while", "while", []TokenKind{_While}, []string{"while"}},
		{"kw_in", "in", []TokenKind{_In}, []string{"in"}},
		{"kw_case", "case", []TokenKind{_Case}, []string{"case"}},
		{"kw_when", "when", []TokenKind{_When}, []string{"when"}},
		{"kw_default", "default", []TokenKind{_Default}, []string{"default"}},

		// Type names are identifiers, not keywords
		{"type_int", "int", []TokenKind{_Identifier}, []string{"int"}},
		{"type_float", "float", []TokenKind{_Identifier}, []string{"float"}},
		{"type_bool", "bool", []TokenKind{_Identifier}, []string{"bool"}},

		// Numbers
		{"int_dec", "123", []TokenKind{_Integer}, []string{"123"}},
		{"int_zero", "0", []TokenKind{_Integer}, []string{"0"}},
		{"float_simple", "3.14", []TokenKind{_Float}, []string{"3.14"}},
		{"dot_not_float", "3.", []TokenKind{_Integer, _Dot}, []string{"3", "."}},
		{"ident_dot", "x.", []TokenKind{_Identifier, _Dot}, []string{"x", "."}},
		{"float_then_dot", "1.5.", []TokenKind{_Float, _Dot}, []string{"1.5", "."}},

		// Strings and characters (lexemes keep the quotes)
		{"string_simple", `"hello"`, []TokenKind{_String}, []string{`"hello"`}},
		{"string_empty", `""`, []TokenKind{_String}, []string{`""`}},
		{"string_escape", `"a\"b"`, []TokenKind{_String}, []string{`"a\"b"`}},
		{"char_simple", "'a'", []TokenKind{_Character}, []string{"'a'"}},
		{"char_escape", `'\n'`, []TokenKind{_Character}, []string{`'\n'`}},

		// Single-char tokens
		{"punct", "(){}[].,:;", []TokenKind{_Lparen, _Rparen, _Lbrace, _Rbrace, _Lbrack, _Rbrack, _Dot, _Comma, _Colon, _Semi}, nil},
		{"ops_single", "* % ^ ~", []TokenKind{_Star, _Pct, _Caret, _Tilde}, nil},

		// Compound tokens
		{"plus_inc", "+ ++", []TokenKind{_Plus, _Inc}, nil},
		{"minus_family", "- -> --", []TokenKind{_Minus, _Arrow, _Dec}, nil},
		{"bang_family", "! !=", []TokenKind{_Bang, _Neq}, nil},
		{"assign_family", "= ==", []TokenKind{_Assign, _Eq}, nil},
		{"lt_family", "< <=", []TokenKind{_Lt, _Lte}, nil},
		{"gt_family", "> >=", []TokenKind{_Gt, _Gte}, nil},
		{"amp_family", "& &&", []TokenKind{_Amp, _AndAnd}, nil},
		{"pipe_family", "| ||", []TokenKind{_Pipe, _OrOr}, nil},
		{"slash", "/", []TokenKind{_Slash}, nil},

		// Comments
		{"line_comment", "a // rest ignored\nb", []TokenKind{_Identifier, _Identifier}, []string{"a", "b"}},
		{"line_comment_eof", "a // rest", []TokenKind{_Identifier}, []string{"a"}},
		{"block_comment", "a /* b */ c", []TokenKind{_Identifier, _Identifier}, []string{"a", "c"}},
		{"block_comment_unnested", "a /* x /* y */ b", []TokenKind{_Identifier, _Identifier}, []string{"a", "b"}},

		// Whitespace
		{"whitespace", " \t\r a \t ", []TokenKind{_Identifier}, []string{"a"}},
		{"newlines", "a\nb", []TokenKind{_Identifier, _Identifier}, []string{"a", "b"}},

		// Expressions
		{"expr", "1 + 2 * x", []TokenKind{_Integer, _Plus, _Integer, _Star, _Identifier}, []string{"1", "+", "2", "*", "x"}},
		{"signature", "def f(a: int) -> int",
			[]TokenKind{_Def, _Identifier, _Lparen, _Identifier, _Colon, _Identifier, _Rparen, _Arrow, _Identifier},
			[]string{"def", "f", "(", "a", ":", "int", ")", "->", "int"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := lexKinds(t, tt.src)
			if len(tokens) != len(tt.kinds) {
				t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(tt.kinds), tokens)
			}
			for i, tok := range tokens {
				if tok.Kind != tt.kinds[i] {
					t.Errorf("token %d: got %v, want %v", i, tok.Kind, tt.kinds[i])
				}
				if tt.lits != nil && tok.Lexeme != tt.lits[i] {
					t.Errorf("lexeme %d: got %q, want %q", i, tok.Lexeme, tt.lits[i])
				}
			}
		})
	}
}

func TestScanModuleToken(t *testing.T) {
	tokens, err := Lex(FileContent{File: "examples/answer.cp", Content: "42"})
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}

	mod := tokens[0]
	if mod.Kind != _Module {
		t.Errorf("first token kind = %v, want MODULE", mod.Kind)
	}
	if mod.Lexeme != "examples/answer.cp" {
		t.Errorf("module lexeme = %q, want the file path", mod.Lexeme)
	}
	if mod.Line != 0 || mod.Col != 0 {
		t.Errorf("module position = %d:%d, want 0:0", mod.Line, mod.Col)
	}
}

func TestScanPositions(t *testing.T) {
	src := "def main() -> int\n{\n  return 42;\n}\n"
	tokens := lexKinds(t, src)

	want := []struct {
		lexeme    string
		line, col uint32
	}{
		{"def", 1, 1},
		{"main", 1, 5},
		{"(", 1, 9},
		{")", 1, 10},
		{"->", 1, 12},
		{"int", 1, 15},
		{"{", 2, 1},
		{"return", 3, 3},
		{"42", 3, 10},
		{";", 3, 12},
		{"}", 4, 1},
	}

	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Lexeme != w.lexeme || tok.Line != w.line || tok.Col != w.col {
			t.Errorf("token %d: got %q at %d:%d, want %q at %d:%d",
				i, tok.Lexeme, tok.Line, tok.Col, w.lexeme, w.line, w.col)
		}
	}
}

// TestScanRoundTrip checks that every token's lexeme is a substring of the
// source starting at the line and column the token reports.
func TestScanRoundTrip(t *testing.T) {
	src := "def add(a: int, b: int) -> int {\n  x: int = a + b * 2;\n  return x;\n}\n"
	tokens := lexKinds(t, src)

	lines := strings.Split(src, "\n")
	for _, tok := range tokens {
		if int(tok.Line) > len(lines) {
			t.Fatalf("token %v reports line %d beyond source", tok, tok.Line)
		}
		line := lines[tok.Line-1]
		col := int(tok.Col) - 1
		if col < 0 || col+len(tok.Lexeme) > len(line) || line[col:col+len(tok.Lexeme)] != tok.Lexeme {
			t.Errorf("token %v: source line %q does not contain lexeme at column %d", tok, line, tok.Col)
		}
	}
}

func TestScanStringNewline(t *testing.T) {
	tokens := lexKinds(t, "\"a\nb\" x")
	if tokens[0].Kind != _String {
		t.Fatalf("token 0 = %v, want STRING", tokens[0].Kind)
	}
	if tokens[1].Kind != _Identifier || tokens[1].Line != 2 {
		t.Errorf("token after multi-line string = %v at line %d, want identifier at line 2",
			tokens[1].Kind, tokens[1].Line)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unexpected_char", "a @ b", "Unexpected character"},
		{"unexpected_hash", "#", "Unexpected character"},
		{"unterminated_string", `"abc`, "Unterminated string"},
		{"unterminated_string_escape", `"abc\"`, "Unterminated string"},
		{"empty_char", "''", "Empty character literal"},
		{"unterminated_char", "'a", "Unterminated character literal"},
		{"char_too_long", "'ab'", "Unterminated character literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(FileContent{File: "test.cp", Content: tt.src})
			if err == nil {
				t.Fatalf("Lex(%q) succeeded, want error containing %q", tt.src, tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestScanErrorPosition(t *testing.T) {
	_, err := Lex(FileContent{File: "test.cp", Content: "x\n  @"})
	if err == nil {
		t.Fatal("Lex succeeded, want error")
	}
	if !strings.Contains(err.Error(), "2:3") {
		t.Errorf("error = %q, want position 2:3", err.Error())
	}
}
