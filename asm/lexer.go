package asm

import (
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes IR assembly.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  int
	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	// Estimate ~1 token per 5 characters of source.
	estTokens := max(len(source)/5, 16)
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source. Runs of line breaks are
// reported as a single newline token.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	r := l.advance()

	switch r {
	case '{':
		l.addToken(TokenLeftBrace)
	case '}':
		l.addToken(TokenRightBrace)
	case ',':
		l.addToken(TokenComma)
	case ':':
		l.addToken(TokenColon)
	case '=':
		l.addToken(TokenEqual)
	case '<':
		l.addToken(TokenLess)
	case '>':
		l.addToken(TokenGreater)
	case '%':
		return l.name(TokenValue)
	case '@':
		return l.name(TokenGlobal)
	case '-':
		if l.match('>') {
			l.addToken(TokenArrow)
		} else if isDigit(l.peek()) {
			l.number()
		} else {
			return l.errorf("unexpected '-'")
		}
	case '/':
		if !l.match('/') {
			return l.errorf("unexpected '/'")
		}
		// Line comment
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}

	// Whitespace
	case ' ', '\r', '\t':
	case '\n':
		if n := len(l.tokens); n > 0 && l.tokens[n-1].Kind != TokenNewline {
			l.addToken(TokenNewline)
		}
		l.line++
		l.column = 1

	default:
		if isDigit(r) {
			l.number()
		} else if isAlpha(r) || r == '_' {
			l.identifier()
		} else {
			return l.errorf("unexpected character %q", r)
		}
	}

	return nil
}

func (l *Lexer) name(kind TokenKind) error {
	if !isAlphaNumeric(l.peek()) && l.peek() != '_' {
		return l.errorf("expected name after %q", l.source[l.start:l.pos])
	}
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	l.addToken(kind)
	return nil
}

// number scans a numeric literal. A digit run followed by a letter other
// than an exponent is an identifier such as 2d.
func (l *Lexer) number() {
	kind := TokenIntLiteral
	for isDigit(l.peek()) {
		l.advance()
	}
	if r := l.peek(); (isAlpha(r) || r == '_') && r != 'e' && r != 'E' && l.source[l.start] != '-' {
		l.identifier()
		return
	}
	if l.peek() == '.' {
		kind = TokenFloatLiteral
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		kind = TokenFloatLiteral
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	l.addToken(kind)
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}
	l.addToken(TokenIdent)
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Line:   l.line,
		Column: l.column - (l.pos - l.start),
	})
}

func (l *Lexer) errorf(format string, args ...any) error {
	return NewSourceErrorf(l.line, l.column-(l.pos-l.start), l.source, format, args...)
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	l.column++
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() {
		return false
	}
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if r != expected {
		return false
	}
	l.pos += size
	l.column++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
