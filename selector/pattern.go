package selector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/chazu/insnkit/insn"
)

// DefaultDist is the hop bound of a pattern without an explicit dist.
const DefaultDist = 10

// Key names an attribute of an instruction node.
type Key int

const (
	KeyOwner Key = iota
	KeyName
	KeyDesc
	KeyOperand
	KeyVar
	KeyIncr
	KeyCst
	KeyDims
)

var keysByName = map[string]Key{
	"owner":   KeyOwner,
	"name":    KeyName,
	"desc":    KeyDesc,
	"operand": KeyOperand,
	"var":     KeyVar,
	"incr":    KeyIncr,
	"cst":     KeyCst,
	"dims":    KeyDims,
}

func (k Key) String() string {
	for name, key := range keysByName {
		if key == k {
			return name
		}
	}
	return "Key(" + strconv.Itoa(int(k)) + ")"
}

// Operator selects how an attribute value is compared.
type Operator int

const (
	Equals      Operator = iota // =
	StartsWith                  // ^
	EndsWith                    // $
	Contains                    // *
	NotContains                 // !
	Regex                       // ~, unanchored RE2 search
)

var operators = map[byte]Operator{
	'=': Equals,
	'^': StartsWith,
	'$': EndsWith,
	'*': Contains,
	'!': NotContains,
	'~': Regex,
}

var operatorText = [...]string{"=", "^", "$", "*", "!", "~"}

func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorText) {
		return operatorText[o]
	}
	return "?"
}

// Attr is one attribute predicate of a pattern.
type Attr struct {
	Key   Key
	Op    Operator
	Value string

	re *regexp.Regexp
}

// Test applies the predicate to s.
func (a Attr) Test(s string) bool {
	switch a.Op {
	case StartsWith:
		return strings.HasPrefix(s, a.Value)
	case EndsWith:
		return strings.HasSuffix(s, a.Value)
	case Contains:
		return strings.Contains(s, a.Value)
	case NotContains:
		return !strings.Contains(s, a.Value)
	case Regex:
		return a.re.MatchString(s)
	default:
		return s == a.Value
	}
}

// Pattern is a single-node test: an opcode or wildcard, attribute
// predicates and the hop bound used when the pattern is searched for.
type Pattern struct {
	Any    bool
	Opcode insn.Opcode
	Attrs  []Attr
	Dist   int
}

// Match reports whether n satisfies the pattern. Pseudo-instructions only
// match the wildcard. An attribute whose key n does not carry imposes no
// constraint.
func (p *Pattern) Match(n insn.Insn) bool {
	if !p.Any && n.Opcode() != p.Opcode {
		return false
	}
	for _, a := range p.Attrs {
		s, ok := attribute(n, a.Key)
		if !ok {
			continue
		}
		if ldc, isLdc := n.(*insn.Ldc); isLdc && ldc.Cst == nil {
			return false
		}
		if !a.Test(s) {
			return false
		}
	}
	return true
}

// attribute returns the text form of key on n. A false second result means
// the node kind has no such attribute.
func attribute(n insn.Insn, key Key) (string, bool) {
	switch v := n.(type) {
	case *insn.Field:
		switch key {
		case KeyOwner:
			return v.Owner, true
		case KeyName:
			return v.Name, true
		case KeyDesc:
			return v.Desc, true
		}
	case *insn.Method:
		switch key {
		case KeyOwner:
			return v.Owner, true
		case KeyName:
			return v.Name, true
		case KeyDesc:
			return v.Desc, true
		}
	case *insn.InvokeDynamic:
		switch key {
		case KeyName:
			return v.Name, true
		case KeyDesc:
			return v.Desc, true
		}
	case *insn.TypeInsn:
		if key == KeyDesc {
			return v.Desc, true
		}
	case *insn.MultiANewArray:
		switch key {
		case KeyDesc:
			return v.Desc, true
		case KeyDims:
			return strconv.Itoa(v.Dims), true
		}
	case *insn.Int:
		if key == KeyOperand {
			return strconv.Itoa(int(v.Operand)), true
		}
	case *insn.Var:
		if key == KeyVar {
			return strconv.Itoa(v.Var), true
		}
	case *insn.Iinc:
		switch key {
		case KeyVar:
			return strconv.Itoa(v.Var), true
		case KeyIncr:
			return strconv.Itoa(v.Incr), true
		}
	case *insn.Ldc:
		if key == KeyCst {
			return v.Text(), true
		}
	}
	return "", false
}

// Step is a set of alternative patterns; a node matches the step when it
// matches any alternative.
type Step struct {
	Alts []Pattern
}

// Match reports whether n matches any alternative.
func (s *Step) Match(n insn.Insn) bool {
	for i := range s.Alts {
		if s.Alts[i].Match(n) {
			return true
		}
	}
	return false
}

// MaxDist returns the largest hop bound among the alternatives.
func (s *Step) MaxDist() int {
	d := -1
	for _, p := range s.Alts {
		d = max(d, p.Dist)
	}
	return d
}

// matchAt reports whether the node h hops away from the anchor matches an
// alternative whose bound allows h.
func (s *Step) matchAt(n insn.Insn, h int) bool {
	for i := range s.Alts {
		if h <= s.Alts[i].Dist && s.Alts[i].Match(n) {
			return true
		}
	}
	return false
}

// Query is a compiled selector: a chain of steps. Queries are immutable
// and safe for concurrent use.
type Query struct {
	Source string
	Steps  []Step
}

func (q *Query) String() string { return q.Source }
