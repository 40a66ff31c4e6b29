// Package asm reads and writes the textual form of IR modules.
package asm

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral

	// Names
	TokenValue  // %name
	TokenGlobal // @name

	// Punctuation
	TokenEqual      // =
	TokenComma      // ,
	TokenColon      // :
	TokenArrow      // ->
	TokenLess       // <
	TokenGreater    // >
	TokenLeftBrace  // {
	TokenRightBrace // }
	TokenNewline
)

var tokenNames = [...]string{
	TokenEOF:          "end of file",
	TokenError:        "invalid character",
	TokenIdent:        "identifier",
	TokenIntLiteral:   "integer",
	TokenFloatLiteral: "float",
	TokenValue:        "value",
	TokenGlobal:       "global name",
	TokenEqual:        "'='",
	TokenComma:        "','",
	TokenColon:        "':'",
	TokenArrow:        "'->'",
	TokenLess:         "'<'",
	TokenGreater:      "'>'",
	TokenLeftBrace:    "'{'",
	TokenRightBrace:   "'}'",
	TokenNewline:      "end of line",
}

// String returns a human-readable token kind.
func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "unknown"
}

// Token represents a lexical token.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}

// Name returns the lexeme without its sigil for value and global tokens.
func (t Token) Name() string {
	if t.Kind == TokenValue || t.Kind == TokenGlobal {
		return t.Lexeme[1:]
	}
	return t.Lexeme
}
