package selector

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/chazu/insnkit/insn"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent parser for selector queries
// ---------------------------------------------------------------------------

// SyntaxError reports an unparseable query.
type SyntaxError struct {
	Offset int // byte offset into the query
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("selector: offset %d: %s", e.Offset, e.Msg)
}

// Parser parses a selector query into a Query.
type Parser struct {
	lexer     *Lexer
	input     string
	curToken  Token
	peekToken Token
	errors    []*SyntaxError
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		input: input,
	}
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// errorf records a syntax error at the current token.
func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, &SyntaxError{
		Offset: p.curToken.Offset,
		Msg:    fmt.Sprintf(format, args...),
	})
}

// unexpected records an error for the current token, preferring the lexer's
// own message for error tokens.
func (p *Parser) unexpected(want string) {
	if p.curTokenIs(TokenError) {
		p.errorf("%s", p.curToken.Literal)
		return
	}
	p.errorf("expected %s, got %s", want, p.curToken)
}

// Errors returns accumulated syntax errors.
func (p *Parser) Errors() []*SyntaxError {
	return p.errors
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// ---------------------------------------------------------------------------
// Query structure
// ---------------------------------------------------------------------------

// ParseQuery parses a whole query. It returns nil when Errors is non-empty.
func (p *Parser) ParseQuery() *Query {
	if p.curTokenIs(TokenEOF) {
		p.errorf("empty query")
		return nil
	}

	q := &Query{Source: p.input}
	for {
		step := p.parseStep()
		if p.failed() {
			return nil
		}
		q.Steps = append(q.Steps, step)

		switch p.curToken.Type {
		case TokenEOF:
			return q
		case TokenSpace:
			p.nextToken()
		default:
			p.unexpected("space or end of query")
			return nil
		}
	}
}

func (p *Parser) parseStep() Step {
	var step Step
	for {
		pat := p.parsePattern()
		if p.failed() {
			return step
		}
		step.Alts = append(step.Alts, pat)

		if !p.curTokenIs(TokenBar) {
			return step
		}
		p.nextToken()
	}
}

func (p *Parser) parsePattern() Pattern {
	pat := Pattern{Dist: DefaultDist}

	if !p.curTokenIs(TokenWord) || p.curToken.Literal == "" {
		p.unexpected("opcode")
		return pat
	}
	if p.curToken.Literal == "*" {
		pat.Any = true
	} else {
		op, ok := insn.LookupOpcode(p.curToken.Literal)
		if !ok {
			p.errorf("unknown opcode %q", p.curToken.Literal)
			return pat
		}
		pat.Opcode = op
	}
	p.nextToken()

	for p.curTokenIs(TokenLBracket) {
		p.nextToken()
		p.parseAttrs(&pat)
		if p.failed() {
			return pat
		}
	}
	return pat
}

// parseAttrs parses a comma-separated attribute list up to and including ].
func (p *Parser) parseAttrs(pat *Pattern) {
	for {
		p.parseAttr(pat)
		if p.failed() {
			return
		}
		switch p.curToken.Type {
		case TokenComma:
			p.nextToken()
		case TokenRBracket:
			p.nextToken()
			return
		case TokenEOF:
			p.errorf("unterminated [")
			return
		default:
			p.unexpected(", or ]")
			return
		}
	}
}

func (p *Parser) parseAttr(pat *Pattern) {
	if !p.curTokenIs(TokenKey) {
		p.unexpected("attribute key")
		return
	}
	name := p.curToken.Literal
	if name == "" {
		p.errorf("empty attribute key")
		return
	}
	key, isKey := keysByName[name]
	if !isKey && name != "dist" {
		p.errorf("unknown attribute key %q", name)
		return
	}
	p.nextToken()

	if !p.curTokenIs(TokenOperator) {
		p.unexpected("operator")
		return
	}
	opText := p.curToken.Literal
	p.nextToken()

	if !p.curTokenIs(TokenValue) {
		p.unexpected("value")
		return
	}
	value := p.curToken.Literal

	if name == "dist" {
		if opText != "=" && opText != "==" {
			p.errorf("dist takes =, got %q", opText)
			return
		}
		d, err := strconv.Atoi(value)
		if err != nil || d < 0 {
			p.errorf("dist must be a non-negative integer, got %q", value)
			return
		}
		pat.Dist = d
		p.nextToken()
		return
	}

	attr := Attr{Key: key, Op: operators[opText[0]], Value: value}
	if attr.Op == Regex {
		re, err := regexp.Compile(value)
		if err != nil {
			p.errorf("invalid regex: %v", err)
			return
		}
		attr.re = re
	}
	pat.Attrs = append(pat.Attrs, attr)
	p.nextToken()
}

// Parse parses src without consulting the cache.
func Parse(src string) (*Query, error) {
	p := NewParser(src)
	q := p.ParseQuery()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}
	return q, nil
}
