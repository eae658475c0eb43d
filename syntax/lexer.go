package syntax

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/marci1175/fog/report"
)

// Lexer is responsible for tokenizing a source file.
type Lexer struct {
	file    *bufio.Reader
	tokBuff *strings.Builder

	line, col           int
	startLine, startCol int
}

// NewLexer creates a new lexer for the given source file.
func NewLexer(file *bufio.Reader) *Lexer {
	return &Lexer{
		file:    file,
		tokBuff: &strings.Builder{},
	}
}

// NextToken retrieves the next token from the input file.  If the file has
// ended, this will be an EOF token.
func (l *Lexer) NextToken() (*Token, error) {
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 {
			break
		}

		switch c {
		case '\n', '\t', ' ', '\r', '\v', '\f':
			l.skip()
		case '/':
			if tok, err := l.lexCommentOrDiv(); tok != nil || err != nil {
				return tok, err
			}
		case '"':
			return l.lexStringLit()
		default:
			if isDecimalDigit(c) {
				return l.lexNumericLit()
			} else if isFirstIdentChar(c) {
				return l.lexIdentOrKeyword()
			} else {
				return l.lexPunctOrOper()
			}
		}
	}

	l.mark()
	return &Token{Kind: TOK_EOF, Span: l.getSpan()}, nil
}

// -----------------------------------------------------------------------------

// symbolPatterns maps symbol strings (patterns) to their punctuation/operator
// token kind.
var symbolPatterns = map[string]int{
	"+": TOK_PLUS,
	"-": TOK_MINUS,
	"*": TOK_STAR,
	// Division operator is handled with comment logic.
	"%": TOK_MOD,

	"&":  TOK_BWAND,
	"|":  TOK_BWOR,
	"<<": TOK_LSHIFT,
	">>": TOK_RSHIFT,

	"==": TOK_EQ,
	"!=": TOK_NEQ,
	"<":  TOK_LT,
	"<=": TOK_LTEQ,
	">":  TOK_GT,
	">=": TOK_GTEQ,

	"&&": TOK_LAND,
	"||": TOK_LOR,
	"!":  TOK_NOT,

	"=":  TOK_ASSIGN,
	"=+": TOK_PLUSASSIGN,
	"=-": TOK_MINUSASSIGN,
	"=*": TOK_STARASSIGN,
	"=/": TOK_DIVASSIGN,
	"=%": TOK_MODASSIGN,

	"(":   TOK_LPAREN,
	")":   TOK_RPAREN,
	"{":   TOK_LBRACE,
	"}":   TOK_RBRACE,
	"[":   TOK_LBRACKET,
	"]":   TOK_RBRACKET,
	",":   TOK_COMMA,
	".":   TOK_DOT,
	"..":  TOK_RANGETO,
	"...": TOK_ELLIPSIS,
	";":   TOK_SEMI,
	":":   TOK_COLON,
	"::":  TOK_DOUBLECOLON,
	"@":   TOK_ATSIGN,
}

// lexPunctOrOper lexes a punctuation or operator symbol by maximal munch.
func (l *Lexer) lexPunctOrOper() (*Token, error) {
	l.mark()
	l.eat()

	kind, ok := symbolPatterns[l.tokBuff.String()]
	if !ok {
		return nil, report.Raise(report.LexError, l.getSpan(), "unknown rune")
	}

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		if c == -1 {
			break
		}

		if _kind, ok := symbolPatterns[l.tokBuff.String()+string(c)]; ok {
			l.eat()
			kind = _kind
		} else {
			break
		}
	}

	return l.makeToken(kind), nil
}

// -----------------------------------------------------------------------------

// keywordPatterns maps keyword strings (patterns) to their keyword token kind.
var keywordPatterns = map[string]int{
	"function": TOK_FUNCTION,
	"external": TOK_EXTERNAL,
	"struct":   TOK_STRUCT,
	"enum":     TOK_ENUM,
	"trait":    TOK_TRAIT,
	"extend":   TOK_EXTEND,
	"import":   TOK_IMPORT,

	"priv":   TOK_PRIV,
	"pub":    TOK_PUB,
	"publib": TOK_PUBLIB,

	"if":       TOK_IF,
	"elseif":   TOK_ELSEIF,
	"else":     TOK_ELSE,
	"loop":     TOK_LOOP,
	"while":    TOK_WHILE,
	"for":      TOK_FOR,
	"in":       TOK_IN,
	"step":     TOK_STEP,
	"break":    TOK_BREAK,
	"continue": TOK_CONTINUE,
	"return":   TOK_RETURN,

	"as":    TOK_AS,
	"ref":   TOK_REF,
	"deref": TOK_DEREF,

	"uintsmall": TOK_UINTSMALL,
	"inthalf":   TOK_INTHALF,
	"uinthalf":  TOK_UINTHALF,
	"int":       TOK_INT,
	"uint":      TOK_UINT,
	"intlong":   TOK_INTLONG,
	"uintlong":  TOK_UINTLONG,
	"floathalf": TOK_FLOATHALF,
	"float":     TOK_FLOAT,
	"floatlong": TOK_FLOATLONG,
	"bool":      TOK_BOOL,
	"string":    TOK_STRINGTYPE,
	"void":      TOK_VOID,
	"ptr":       TOK_PTR,
	"array":     TOK_ARRAY,

	"true":  TOK_BOOLLIT,
	"false": TOK_BOOLLIT,
}

// lexIdentOrKeyword lexes an identifier or a keyword.
func (l *Lexer) lexIdentOrKeyword() (*Token, error) {
	l.mark()
	l.eat()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if !isFirstIdentChar(c) && !isDecimalDigit(c) {
			break
		}

		l.eat()
	}

	kind := TOK_IDENT
	if _kind, ok := keywordPatterns[l.tokBuff.String()]; ok {
		kind = _kind
	}

	return l.makeToken(kind), nil
}

// -----------------------------------------------------------------------------

// lexNumericLit lexes an integer or floating-point literal.  Integers may be
// written in binary, octal, decimal, or hexadecimal; floats are decimal with
// an optional exponent.
func (l *Lexer) lexNumericLit() (*Token, error) {
	l.mark()
	c, _ := l.eat()

	// Determine the base of the literal.
	base := 10
	mustHaveDigit := false
	if c == '0' {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		switch c {
		case 'x':
			base = 16
			l.eat()
			mustHaveDigit = true
		case 'o':
			base = 8
			l.eat()
			mustHaveDigit = true
		case 'b':
			base = 2
			l.eat()
			mustHaveDigit = true
		}
	}

	var isFloat, hasExp, expectNeg bool

numLexLoop:
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 {
			break
		} else if c == '_' {
			// Skip all _ that occur in the literal.
			l.skip()
			continue
		}

		switch base {
		case 2:
			if c == '0' || c == '1' {
				l.eat()
			} else {
				break numLexLoop
			}
		case 8:
			if '0' <= c && c <= '7' {
				l.eat()
			} else {
				break numLexLoop
			}
		case 16:
			if isHexDigit(c) {
				l.eat()
			} else {
				break numLexLoop
			}
		case 10:
			switch c {
			case '.':
				if mustHaveDigit || isFloat {
					break numLexLoop
				}

				// A second `.` makes this a range operator after the integer,
				// not a fractional part.
				if next, _ := l.file.Peek(2); len(next) == 2 && next[1] == '.' {
					break numLexLoop
				}

				l.eat()

				isFloat = true
				mustHaveDigit = true
				continue
			case 'e', 'E':
				if mustHaveDigit || hasExp {
					break numLexLoop
				}

				l.eat()

				isFloat = true
				hasExp = true
				expectNeg = true
				mustHaveDigit = true
				continue
			case '-':
				if mustHaveDigit || !expectNeg {
					break numLexLoop
				}

				l.eat()

				expectNeg = false
				continue
			default:
				if isDecimalDigit(c) {
					l.eat()
					expectNeg = false
				} else {
					break numLexLoop
				}
			}
		}

		mustHaveDigit = false
	}

	if mustHaveDigit {
		return nil, report.Raise(report.LexError, l.getSpan(), "incomplete numeric literal")
	}

	if isFloat {
		return l.makeToken(TOK_FLOATLIT), nil
	}

	return l.makeToken(TOK_INTLIT), nil
}

// -----------------------------------------------------------------------------

// lexStringLit lexes a string literal.
func (l *Lexer) lexStringLit() (*Token, error) {
	l.mark()
	l.skip()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		switch c {
		case -1:
			return nil, report.Raise(report.LexError, l.getSpan(), "unclosed string literal")
		case '"':
			l.skip()
			return l.makeToken(TOK_STRINGLIT), nil
		case '\\':
			l.eat()
			if err = l.eatEscapeSequence(); err != nil {
				return nil, err
			}
		case '\n':
			return nil, report.Raise(report.LexError, l.getSpan(), "string cannot contain a newline")
		default:
			l.eat()
		}
	}
}

// eatEscapeSequence attempts to consume an escape sequence.  This assumes the
// leading `\` has already been consumed.
func (l *Lexer) eatEscapeSequence() error {
	c, err := l.eat()
	if err != nil {
		return err
	}

	switch c {
	case -1:
		return report.Raise(report.LexError, l.getSpan(), "expected escape sequence not end of file")
	case 'n', 'r', 't', '0', '\\', '"':
		return nil
	case 'x':
		for i := 0; i < 2; i++ {
			c, err := l.eat()
			if err != nil {
				return err
			} else if c == -1 || !isHexDigit(c) {
				return report.Raise(report.LexError, l.getSpan(), "expected two hexadecimal digits")
			}
		}

		return nil
	default:
		return report.Raise(report.LexError, l.getSpan(), "unknown escape sequence: `\\%c`", c)
	}
}

// -----------------------------------------------------------------------------

// lexCommentOrDiv lexes a comment or a division token.
func (l *Lexer) lexCommentOrDiv() (*Token, error) {
	l.mark()
	l.skip()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	switch c {
	case '/':
		for ; err == nil && c != '\n' && c != -1; c, err = l.skip() {
		}
	case '*':
		for {
			c, err = l.skip()
			if err != nil || c == -1 {
				break
			}

			if c == '*' {
				c, err = l.skip()
				if err != nil || c == -1 || c == '/' {
					break
				}
			}
		}
	default:
		tok := l.makeToken(TOK_DIV)
		tok.Value = "/"
		return tok, nil
	}

	return nil, err
}

// -----------------------------------------------------------------------------

// mark sets the lexer's stored start line and column to its current position.
func (l *Lexer) mark() {
	l.startLine = l.line
	l.startCol = l.col
}

// makeToken produces a new token of the given kind from the lexer's state and
// resets the lexer to begin building the next token.
func (l *Lexer) makeToken(kind int) *Token {
	value := l.tokBuff.String()
	l.tokBuff.Reset()

	return &Token{
		Kind:  kind,
		Value: value,
		Span:  l.getSpan(),
	}
}

// getSpan calculates a text span based on the lexer's current state.
func (l *Lexer) getSpan() *report.TextSpan {
	return &report.TextSpan{
		StartLine: l.startLine,
		StartCol:  l.startCol,
		EndLine:   l.line,
		EndCol:    l.col,
	}
}

// -----------------------------------------------------------------------------

// eat moves the lexer forward one rune and writes the rune to the token buffer.
// If the lexer encounters an EOF, -1 is returned as the rune value.
func (l *Lexer) eat() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	l.updatePos(c)
	l.tokBuff.WriteRune(c)

	return c, nil
}

// skip moves the lexer forward one rune but does not write the rune to the
// token buffer.  If the lexer encounters an EOF, -1 is returned as the rune
// value.
func (l *Lexer) skip() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	l.updatePos(c)

	return c, nil
}

// peek returns the next rune in the file without moving the lexer forward or
// writing the rune to the token buffer.  If the lexer encounters an EOF, -1 is
// returned as rune value.
func (l *Lexer) peek() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		if err == io.EOF {
			return -1, nil
		}

		return 0, err
	}

	if err = l.file.UnreadRune(); err != nil {
		return 0, err
	}

	return c, nil
}

// updatePos updates the lexer's position based on input character.
func (l *Lexer) updatePos(c rune) {
	switch c {
	case '\n':
		l.line++
		l.col = 0
	case '\t':
		l.col += 4
	default:
		l.col++
	}
}

// -----------------------------------------------------------------------------

// isDecimalDigit returns whether c is a decimal digit.
func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

// isHexDigit returns whether c is a hexadecimal digit.
func isHexDigit(c rune) bool {
	return isDecimalDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// isFirstIdentChar returns whether c could be the first rune of an identifier.
func isFirstIdentChar(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}
