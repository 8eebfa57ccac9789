package selector

import "fmt"

// ---------------------------------------------------------------------------
// Token types for selector queries
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Step level
	TokenWord  // getfield, *
	TokenSpace // step separator
	TokenBar   // |

	// Attribute level
	TokenLBracket // [
	TokenRBracket // ]
	TokenComma    // ,
	TokenKey      // owner, name, dist
	TokenOperator // =, ^, ^=, $, *, !, ~
	TokenValue    // attribute value, escapes resolved
)

var tokenNames = map[TokenType]string{
	TokenEOF:      "EOF",
	TokenError:    "ERROR",
	TokenWord:     "WORD",
	TokenSpace:    "SPACE",
	TokenBar:      "|",
	TokenLBracket: "[",
	TokenRBracket: "]",
	TokenComma:    ",",
	TokenKey:      "KEY",
	TokenOperator: "OPERATOR",
	TokenValue:    "VALUE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string // the text, with escapes resolved for values
	Offset  int    // byte offset of the token start
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// isOperatorChar reports whether r starts an attribute operator.
func isOperatorChar(r rune) bool {
	switch r {
	case '=', '^', '$', '*', '!', '~':
		return true
	}
	return false
}

// isEscapable reports whether a backslash before r yields r itself.
func isEscapable(r rune) bool {
	switch r {
	case '\\', '[', ']', ',', '|', ' ':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
