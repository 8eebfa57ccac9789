package selector

import (
	"github.com/chazu/insnkit/flow"
	"github.com/chazu/insnkit/insn"
)

// Searches walk neighbour links counting hops: the node h hops past the
// previous match is tested against an alternative when h <= its dist, and
// the walk stops after the largest dist of the step. Not-found results are
// nil or -1, never errors.

// next returns the index of the first node after i in nodes matching s
// within its bound, or -1.
func (s *Step) next(nodes []insn.Insn, i int) int {
	limit := s.MaxDist()
	for h := 1; h <= limit && i+h < len(nodes); h++ {
		if s.matchAt(nodes[i+h], h) {
			return i + h
		}
	}
	return -1
}

// chainAt returns the chain of matches starting at nodes[i], or nil.
func (q *Query) chainAt(nodes []insn.Insn, i int) []insn.Insn {
	if !q.Steps[0].Match(nodes[i]) {
		return nil
	}
	chain := make([]insn.Insn, 1, len(q.Steps))
	chain[0] = nodes[i]
	for s := 1; s < len(q.Steps); s++ {
		i = q.Steps[s].next(nodes, i)
		if i < 0 {
			return nil
		}
		chain = append(chain, nodes[i])
	}
	return chain
}

func (q *Query) search(nodes []insn.Insn) []insn.Insn {
	for i := range nodes {
		if chain := q.chainAt(nodes, i); chain != nil {
			return chain
		}
	}
	return nil
}

// Search returns the first full chain, one node per step, by earliest
// start position. It returns nil when nothing matches.
func (q *Query) Search(l *insn.List) []insn.Insn {
	return q.search(l.ToArray())
}

// SearchAll returns every full chain, one per start position, in order.
func (q *Query) SearchAll(l *insn.List) [][]insn.Insn {
	nodes := l.ToArray()
	var out [][]insn.Insn
	for i := range nodes {
		if chain := q.chainAt(nodes, i); chain != nil {
			out = append(out, chain)
		}
	}
	return out
}

// IndexOf returns the start position of the first full chain, or -1.
func (q *Query) IndexOf(l *insn.List) int {
	nodes := l.ToArray()
	for i := range nodes {
		if q.chainAt(nodes, i) != nil {
			return i
		}
	}
	return -1
}

// LastIndexOf returns the start position of the last full chain, or -1.
func (q *Query) LastIndexOf(l *insn.List) int {
	nodes := l.ToArray()
	for i := len(nodes) - 1; i >= 0; i-- {
		if q.chainAt(nodes, i) != nil {
			return i
		}
	}
	return -1
}

// Count returns the number of nodes matching the first step. Later steps
// are not chained.
func (q *Query) Count(l *insn.List) int {
	n := 0
	for node := range l.All() {
		if q.Steps[0].Match(node) {
			n++
		}
	}
	return n
}

// Match reports whether n matches the first step.
func (q *Query) Match(n insn.Insn) bool {
	return q.Steps[0].Match(n)
}

// Next returns the first node after from that matches the first step
// within its bound, or nil.
func (q *Query) Next(from insn.Insn) insn.Insn {
	return q.walk(from, insn.Insn.Next)
}

// Prev returns the first node before from that matches the first step
// within its bound, or nil.
func (q *Query) Prev(from insn.Insn) insn.Insn {
	return q.walk(from, insn.Insn.Prev)
}

func (q *Query) walk(from insn.Insn, step func(insn.Insn) insn.Insn) insn.Insn {
	s := &q.Steps[0]
	limit := s.MaxDist()
	n := from
	for h := 1; h <= limit; h++ {
		if n = step(n); n == nil {
			return nil
		}
		if s.matchAt(n, h) {
			return n
		}
	}
	return nil
}

// SearchGraph scans each block of g in order and returns the first full
// chain. Chains do not cross block boundaries.
func (q *Query) SearchGraph(g *flow.Graph) []insn.Insn {
	for _, b := range g.Blocks {
		if chain := q.search(b.Insns); chain != nil {
			return chain
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// String-query helpers backed by the compiled-query cache
// ---------------------------------------------------------------------------

// Search compiles src and returns its first chain in l.
func Search(l *insn.List, src string) ([]insn.Insn, error) {
	q, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return q.Search(l), nil
}

// SearchAll compiles src and returns every chain in l.
func SearchAll(l *insn.List, src string) ([][]insn.Insn, error) {
	q, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return q.SearchAll(l), nil
}

// IndexOf compiles src and returns the start of its first chain in l.
func IndexOf(l *insn.List, src string) (int, error) {
	q, err := Compile(src)
	if err != nil {
		return -1, err
	}
	return q.IndexOf(l), nil
}

// LastIndexOf compiles src and returns the start of its last chain in l.
func LastIndexOf(l *insn.List, src string) (int, error) {
	q, err := Compile(src)
	if err != nil {
		return -1, err
	}
	return q.LastIndexOf(l), nil
}

// Count compiles src and counts first-step matches in l.
func Count(l *insn.List, src string) (int, error) {
	q, err := Compile(src)
	if err != nil {
		return 0, err
	}
	return q.Count(l), nil
}

// Matches compiles src and tests n against its first step.
func Matches(n insn.Insn, src string) (bool, error) {
	q, err := Compile(src)
	if err != nil {
		return false, err
	}
	return q.Match(n), nil
}

// Next compiles src and searches forward from n.
func Next(n insn.Insn, src string) (insn.Insn, error) {
	q, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return q.Next(n), nil
}

// Prev compiles src and searches backward from n.
func Prev(n insn.Insn, src string) (insn.Insn, error) {
	q, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return q.Prev(n), nil
}
