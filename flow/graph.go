package flow

import (
	"github.com/chazu/insnkit/insn"
)

// Graph is a finished block graph in source order. The first block is the
// method entry.
type Graph struct {
	Blocks []*Block

	byLabel map[insn.Label]*Block
}

// Entry returns the entry block, or nil for an empty method body.
func (g *Graph) Entry() *Block {
	if len(g.Blocks) == 0 {
		return nil
	}
	return g.Blocks[0]
}

// Block returns the block entered at l.
func (g *Graph) Block(l insn.Label) (*Block, bool) {
	b, ok := g.byLabel[l]
	return b, ok
}

// Len returns the total number of instructions across all blocks, entry
// markers included.
func (g *Graph) Len() int {
	n := 0
	for _, b := range g.Blocks {
		n += len(b.Insns)
	}
	return n
}

// Flatten concatenates the blocks into a new list. A goto is emitted
// wherever a block's branch or fall-through successor is not laid out
// directly after it. The graph is not modified and may be flattened again.
func (g *Graph) Flatten() (*insn.List, error) {
	ident := make(insn.LabelMap)
	for _, b := range g.Blocks {
		for _, n := range b.Insns {
			for _, l := range n.Labels() {
				ident[l] = l
			}
		}
	}

	out := &insn.List{}
	for i, b := range g.Blocks {
		var following *Block
		if i+1 < len(g.Blocks) {
			following = g.Blocks[i+1]
		}

		for _, n := range b.Insns {
			c, err := n.Clone(ident)
			if err != nil {
				return nil, err
			}
			if err := out.Append(c); err != nil {
				return nil, err
			}
		}

		switch {
		case b.Exit.IsUnconditionalJump() && b.Target != nil:
			if b.Target != following {
				if err := out.Append(insn.NewJump(b.Exit, b.Target.Label)); err != nil {
					return nil, err
				}
			}
		case b.Next != nil && b.Next != following:
			if err := out.Append(insn.NewJump(insn.OpGoto, b.Next.Label)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Reachable returns the set of blocks reachable from the entry and from
// pinned blocks.
func (g *Graph) Reachable() map[*Block]bool {
	seen := make(map[*Block]bool, len(g.Blocks))
	var work []*Block
	if e := g.Entry(); e != nil {
		work = append(work, e)
	}
	for _, b := range g.Blocks {
		if b.pinned {
			work = append(work, b)
		}
	}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		if seen[b] {
			continue
		}
		seen[b] = true
		work = append(work, b.Successors()...)
	}
	return seen
}

// Prune drops unreachable blocks and returns how many were removed.
func (g *Graph) Prune() int {
	live := g.Reachable()
	kept := g.Blocks[:0]
	removed := 0
	for _, b := range g.Blocks {
		if live[b] {
			kept = append(kept, b)
			continue
		}
		for _, s := range b.Successors() {
			s.removePred(b)
		}
		delete(g.byLabel, b.Label)
		removed++
	}
	clear(g.Blocks[len(kept):])
	g.Blocks = kept
	return removed
}

// Accept replays the flattened graph into v.
func (g *Graph) Accept(v insn.Visitor) error {
	l, err := g.Flatten()
	if err != nil {
		return err
	}
	return l.Accept(v)
}
