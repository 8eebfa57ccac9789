package selector

import (
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for selector queries
// ---------------------------------------------------------------------------

type lexMode int

const (
	modeStep lexMode = iota // opcodes, separators
	modeKey                 // after [ or ,
	modeOp                  // after a key
	modeValue               // after an operator
	modeAttrEnd             // after a value
)

// Lexer tokenizes a selector query. The lexer is modal: the same character
// means different things outside and inside brackets.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	mode    lexMode
	last    TokenType
	started bool
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) skipSpace() {
	for !l.atEOF() && isSpace(l.ch) {
		l.readChar()
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	tok := l.next()
	l.last = tok.Type
	l.started = true
	return tok
}

func (l *Lexer) next() Token {
	switch l.mode {
	case modeKey:
		return l.readKey()
	case modeOp:
		return l.readOperator()
	case modeValue:
		return l.readValue()
	case modeAttrEnd:
		return l.readAttrEnd()
	}

	if !l.atEOF() && isSpace(l.ch) {
		start := l.pos
		l.skipSpace()
		// Whitespace at either end of the query or around | is not a separator.
		if !l.started || l.last == TokenBar || l.atEOF() || l.ch == '|' {
			return l.next()
		}
		return Token{Type: TokenSpace, Literal: " ", Offset: start}
	}

	pos := l.pos
	switch {
	case l.atEOF():
		return Token{Type: TokenEOF, Offset: pos}

	case l.ch == '|':
		l.readChar()
		l.skipSpace()
		return Token{Type: TokenBar, Literal: "|", Offset: pos}

	case l.ch == '[':
		l.readChar()
		l.mode = modeKey
		return Token{Type: TokenLBracket, Literal: "[", Offset: pos}

	case l.ch == ']' || l.ch == ',':
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: "unexpected " + string(ch), Offset: pos}

	default:
		return l.readWord(pos)
	}
}

// readWord reads an opcode mnemonic or the wildcard.
func (l *Lexer) readWord(pos int) Token {
	var sb strings.Builder
	for !l.atEOF() {
		if l.ch == '\\' && isEscapable(l.peekChar()) && l.readPos < len(l.input) {
			l.readChar()
			sb.WriteRune(l.ch)
			l.readChar()
			continue
		}
		if isSpace(l.ch) || l.ch == '|' || l.ch == '[' || l.ch == ']' || l.ch == ',' {
			break
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	return Token{Type: TokenWord, Literal: sb.String(), Offset: pos}
}

func (l *Lexer) readKey() Token {
	l.skipSpace()
	pos := l.pos
	for !l.atEOF() && !isOperatorChar(l.ch) && !isSpace(l.ch) && l.ch != ',' && l.ch != ']' {
		l.readChar()
	}
	l.mode = modeOp
	return Token{Type: TokenKey, Literal: l.input[pos:l.pos], Offset: pos}
}

func (l *Lexer) readOperator() Token {
	l.skipSpace()
	pos := l.pos
	if l.atEOF() || !isOperatorChar(l.ch) {
		l.mode = modeValue
		return Token{Type: TokenError, Literal: "expected operator", Offset: pos}
	}
	l.readChar()
	if l.ch == '=' && !l.atEOF() {
		l.readChar()
	}
	l.mode = modeValue
	return Token{Type: TokenOperator, Literal: l.input[pos:l.pos], Offset: pos}
}

// readValue reads up to an unescaped , or ]. A backslash before one of
// \ [ ] , | or a space yields that character; any other backslash is kept.
// Unescaped spaces around the value are dropped.
func (l *Lexer) readValue() Token {
	l.skipSpace()
	pos := l.pos
	var sb strings.Builder
	keep := 0
	for !l.atEOF() && l.ch != ',' && l.ch != ']' {
		escaped := false
		if l.ch == '\\' && l.readPos < len(l.input) && isEscapable(l.peekChar()) {
			l.readChar()
			escaped = true
		}
		ch := l.ch
		sb.WriteRune(ch)
		l.readChar()
		if escaped || !isSpace(ch) {
			keep = sb.Len()
		}
	}
	l.mode = modeAttrEnd
	return Token{Type: TokenValue, Literal: sb.String()[:keep], Offset: pos}
}

func (l *Lexer) readAttrEnd() Token {
	pos := l.pos
	switch {
	case l.atEOF():
		return Token{Type: TokenEOF, Offset: pos}
	case l.ch == ',':
		l.readChar()
		l.mode = modeKey
		return Token{Type: TokenComma, Literal: ",", Offset: pos}
	default:
		l.readChar()
		l.mode = modeStep
		return Token{Type: TokenRBracket, Literal: "]", Offset: pos}
	}
}
