package selector

import "testing"

func lexAll(input string) []Token {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return toks
		}
	}
}

func TestLexerTokens(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenType
	}{
		{"getfield", []TokenType{TokenWord, TokenEOF}},
		{"  iadd  ", []TokenType{TokenWord, TokenEOF}},
		{"iload aload", []TokenType{TokenWord, TokenSpace, TokenWord, TokenEOF}},
		{"iload | aload", []TokenType{TokenWord, TokenBar, TokenWord, TokenEOF}},
		{"*[owner^=a, name=b]", []TokenType{
			TokenWord, TokenLBracket,
			TokenKey, TokenOperator, TokenValue, TokenComma,
			TokenKey, TokenOperator, TokenValue, TokenRBracket,
			TokenEOF,
		}},
		{"ldc[cst=", []TokenType{TokenWord, TokenLBracket, TokenKey, TokenOperator, TokenValue, TokenEOF}},
		{"nop]", []TokenType{TokenWord, TokenError}},
	}

	for _, tt := range tests {
		toks := lexAll(tt.input)
		if len(toks) != len(tt.want) {
			t.Errorf("%q: got %d tokens %v, want %d", tt.input, len(toks), toks, len(tt.want))
			continue
		}
		for i, tok := range toks {
			if tok.Type != tt.want[i] {
				t.Errorf("%q: token %d = %s, want %s", tt.input, i, tok.Type, tt.want[i])
			}
		}
	}
}

func TestLexerValues(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`ldc[cst=a b]`, "a b"},
		{`ldc[cst=a\,b]`, "a,b"},
		{`ldc[cst=a\]b]`, "a]b"},
		{`ldc[cst=x|y]`, "x|y"},
		{`ldc[cst=back\\slash]`, `back\slash`},
		{`ldc[cst~\d+]`, `\d+`},
		{`ldc[cst=]`, ""},
		{`getfield[desc=I ]`, "I"},
		{`getfield[name=x,desc= I ]`, "I"},
		{`ldc[cst=a\ ]`, "a "},
		{`ldc[cst=  ]`, ""},
	}

	for _, tt := range tests {
		toks := lexAll(tt.input)
		var got *Token
		for i := range toks {
			if toks[i].Type == TokenValue {
				got = &toks[i]
			}
		}
		if got == nil {
			t.Errorf("%q: no value token in %v", tt.input, toks)
			continue
		}
		if got.Literal != tt.want {
			t.Errorf("%q: value = %q, want %q", tt.input, got.Literal, tt.want)
		}
	}
}

func TestLexerOperators(t *testing.T) {
	for _, op := range []string{"=", "^", "^=", "$", "$=", "*", "!", "~", "=="} {
		toks := lexAll("nop[owner" + op + "x]")
		if toks[3].Type != TokenOperator || toks[3].Literal != op {
			t.Errorf("operator %q lexed as %v", op, toks[3])
		}
	}
}
