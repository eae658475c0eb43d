package syntax

import (
	"bufio"
	"strings"
	"testing"
)

// lexAll tokenizes src, failing the test on any lexical error.
func lexAll(t *testing.T, src string) []*Token {
	t.Helper()

	l := NewLexer(bufio.NewReader(strings.NewReader(src)))

	var toks []*Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected lex error: %s", err)
		}

		if tok.Kind == TOK_EOF {
			return toks
		}

		toks = append(toks, tok)
	}
}

// lexError tokenizes src until an error occurs and returns it.
func lexError(t *testing.T, src string) error {
	t.Helper()

	l := NewLexer(bufio.NewReader(strings.NewReader(src)))

	for {
		tok, err := l.NextToken()
		if err != nil {
			return err
		}

		if tok.Kind == TOK_EOF {
			t.Fatalf("expected a lex error in %q", src)
			return nil
		}
	}
}

func TestLexTokenKinds(t *testing.T) {
	toks := lexAll(t, `pub function add(a: int, b: int): int { return a + b; }`)

	wantKinds := []int{
		TOK_PUB, TOK_FUNCTION, TOK_IDENT, TOK_LPAREN, TOK_IDENT, TOK_COLON,
		TOK_INT, TOK_COMMA, TOK_IDENT, TOK_COLON, TOK_INT, TOK_RPAREN,
		TOK_COLON, TOK_INT, TOK_LBRACE, TOK_RETURN, TOK_IDENT, TOK_PLUS,
		TOK_IDENT, TOK_SEMI, TOK_RBRACE,
	}

	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(wantKinds))
	}

	for i, tok := range toks {
		if tok.Kind != wantKinds[i] {
			t.Errorf("token %d (%q): got kind %d, want %d", i, tok.Value, tok.Kind, wantKinds[i])
		}
	}
}

func TestLexMaximalMunch(t *testing.T) {
	tests := []struct {
		src  string
		kind int
	}{
		{"=+", TOK_PLUSASSIGN},
		{"=-", TOK_MINUSASSIGN},
		{"=*", TOK_STARASSIGN},
		{"=/", TOK_DIVASSIGN},
		{"=%", TOK_MODASSIGN},
		{"=", TOK_ASSIGN},
		{"==", TOK_EQ},
		{"..", TOK_RANGETO},
		{"...", TOK_ELLIPSIS},
		{"::", TOK_DOUBLECOLON},
		{"<<", TOK_LSHIFT},
		{">>", TOK_RSHIFT},
		{"<=", TOK_LTEQ},
		{"&&", TOK_LAND},
		{"&", TOK_BWAND},
	}

	for _, test := range tests {
		toks := lexAll(t, test.src)
		if len(toks) != 1 {
			t.Errorf("%q: got %d tokens, want 1", test.src, len(toks))
			continue
		}

		if toks[0].Kind != test.kind {
			t.Errorf("%q: got kind %d, want %d", test.src, toks[0].Kind, test.kind)
		}
	}
}

func TestLexNumericLits(t *testing.T) {
	tests := []struct {
		src   string
		kind  int
		value string
	}{
		{"42", TOK_INTLIT, "42"},
		{"0b1010", TOK_INTLIT, "0b1010"},
		{"0o17", TOK_INTLIT, "0o17"},
		{"0xFF", TOK_INTLIT, "0xFF"},
		{"1_000_000", TOK_INTLIT, "1000000"},
		{"3.14", TOK_FLOATLIT, "3.14"},
		{"1e9", TOK_FLOATLIT, "1e9"},
		{"2.5e-3", TOK_FLOATLIT, "2.5e-3"},
	}

	for _, test := range tests {
		toks := lexAll(t, test.src)
		if len(toks) != 1 {
			t.Fatalf("%q: got %d tokens, want 1", test.src, len(toks))
		}

		if toks[0].Kind != test.kind || toks[0].Value != test.value {
			t.Errorf("%q: got (%d, %q), want (%d, %q)",
				test.src, toks[0].Kind, toks[0].Value, test.kind, test.value)
		}
	}
}

func TestLexRangeAfterInt(t *testing.T) {
	// The `..` must not be mistaken for the start of a fractional part.
	toks := lexAll(t, "0..10")

	wantKinds := []int{TOK_INTLIT, TOK_RANGETO, TOK_INTLIT}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(wantKinds))
	}

	for i, tok := range toks {
		if tok.Kind != wantKinds[i] {
			t.Errorf("token %d (%q): got kind %d, want %d", i, tok.Value, tok.Kind, wantKinds[i])
		}
	}
}

func TestLexStringLit(t *testing.T) {
	// Escape sequences are validated but left unprocessed in the token value.
	toks := lexAll(t, `"hi\n\x41"`)
	if len(toks) != 1 || toks[0].Kind != TOK_STRINGLIT {
		t.Fatalf("got %d tokens, want one string literal", len(toks))
	}

	if toks[0].Value != `hi\n\x41` {
		t.Errorf("got value %q, want %q", toks[0].Value, `hi\n\x41`)
	}
}

func TestLexStringErrors(t *testing.T) {
	for _, src := range []string{`"unclosed`, `"bad \q escape"`, `"hex \x4"`, "\"line\nbreak\""} {
		lexError(t, src)
	}
}

func TestLexComments(t *testing.T) {
	toks := lexAll(t, "a // line comment\nb /* block\ncomment */ c")
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3", len(toks))
	}

	for i, want := range []string{"a", "b", "c"} {
		if toks[i].Value != want {
			t.Errorf("token %d: got %q, want %q", i, toks[i].Value, want)
		}
	}
}

func TestLexSpans(t *testing.T) {
	toks := lexAll(t, "int x\n  = 5;")

	x := toks[1]
	if x.Span.StartLine != 0 || x.Span.StartCol != 4 {
		t.Errorf("`x` starts at %d:%d, want 0:4", x.Span.StartLine, x.Span.StartCol)
	}

	assign := toks[2]
	if assign.Span.StartLine != 1 || assign.Span.StartCol != 2 {
		t.Errorf("`=` starts at %d:%d, want 1:2", assign.Span.StartLine, assign.Span.StartCol)
	}
}
