package lexer

import (
	"testing"

	"github.com/vahlkar/pixmath/internal/token"
)

func TestLexStatements(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  [][]token.Type
	}{
		{"single_statement", "a+b", [][]token.Type{{token.IDENT, token.PLUS, token.IDENT}}},
		{"two_statements", "a=1; b=2", [][]token.Type{
			{token.IDENT, token.ASSIGN, token.NUMBER},
			{token.IDENT, token.ASSIGN, token.NUMBER},
		}},
		{"meta_reference", "$T+1", [][]token.Type{{token.META, token.PLUS, token.NUMBER}}},
		{"two_char_operators", "a==b && c!=d", [][]token.Type{
			{token.IDENT, token.EQ, token.IDENT, token.AND, token.IDENT, token.NEQ, token.IDENT},
		}},
		{"line_comment_stripped", "a // trailing comment\n+b", [][]token.Type{
			{token.IDENT, token.PLUS, token.IDENT},
		}},
		{"block_comment_stripped", "a /* mid */ + b", [][]token.Type{
			{token.IDENT, token.PLUS, token.IDENT},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Lex(tc.input)
			if err != nil {
				t.Fatalf("Lex(%q): unexpected error: %v", tc.input, err)
			}
			if len(result.Statements) != len(tc.want) {
				t.Fatalf("Lex(%q): got %d statements, want %d", tc.input, len(result.Statements), len(tc.want))
			}
			for i, stmt := range result.Statements {
				if len(stmt) != len(tc.want[i]) {
					t.Fatalf("statement %d: got %d tokens, want %d", i, len(stmt), len(tc.want[i]))
				}
				for j, tok := range stmt {
					if tok.Type != tc.want[i][j] {
						t.Errorf("statement %d token %d: got %s, want %s", i, j, tok.Type, tc.want[i][j])
					}
				}
			}
		})
	}
}

func TestLexNumberLiteral(t *testing.T) {
	result, err := Lex("1.5e-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Statements) != 1 || len(result.Statements[0]) != 1 {
		t.Fatalf("expected a single NUMBER token, got %+v", result.Statements)
	}
	tok := result.Statements[0][0]
	if tok.Type != token.NUMBER {
		t.Fatalf("got type %s, want NUMBER", tok.Type)
	}
	if v, ok := tok.Literal.(float64); !ok || v != 1.5e-3 {
		t.Errorf("got literal %v, want 1.5e-3", tok.Literal)
	}
}

func TestLexDirective(t *testing.T) {
	result, err := Lex(".threads 4, 8; a=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Directives) != 1 {
		t.Fatalf("got %d directives, want 1", len(result.Directives))
	}
	d := result.Directives[0]
	if d.Name != "threads" {
		t.Errorf("got directive name %q, want %q", d.Name, "threads")
	}
	if len(d.Args) != 2 || d.Args[0] != "4" || d.Args[1] != "8" {
		t.Errorf("got args %v, want [4 8]", d.Args)
	}
	if len(result.Statements) != 1 {
		t.Fatalf("got %d statements after directive, want 1", len(result.Statements))
	}
}

func TestLexErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"unterminated_block_comment", "a /* never closed"},
		{"illegal_character", "a @ b"},
		{"bare_dollar", "$ + 1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Lex(tc.input); err == nil {
				t.Errorf("Lex(%q): expected an error, got none", tc.input)
			}
		})
	}
}
