package flow

import (
	"slices"

	"github.com/chazu/insnkit/insn"
)

// Block is a basic block: a straight-line run of instructions entered only
// at its label and left only through its last instruction or by falling
// through to Next.
type Block struct {
	Label insn.Label

	// Insns starts with the block's entry marker.
	Insns []insn.Insn

	Preds  []*Block
	Next   *Block   // fall-through successor
	Target *Block   // explicit branch successor
	Cases  []*Block // switch successors, default included

	// Stack is the stack-shape tag of the latest frame seen before the
	// block opened.
	Stack []string

	// Exit is the opcode of the unconditional jump that ended the block.
	// The jump itself is not kept in Insns; flattening re-emits it when
	// Target is not laid out next.
	Exit insn.Opcode

	pos     int
	defined bool
	pinned  bool
}

func newBlock(l insn.Label) *Block {
	return &Block{Label: l, Insns: []insn.Insn{insn.NewMark(l)}}
}

// Empty reports whether the block has no predecessors, holds nothing but
// its entry marker and is not pinned.
func (b *Block) Empty() bool {
	return len(b.Preds) == 0 && len(b.Insns) <= 1 && !b.pinned
}

// Pinned reports whether something outside the jump graph refers to the
// block's label (a line marker, a frame or an exception handler).
func (b *Block) Pinned() bool { return b.pinned }

// Last returns the final instruction of the block.
func (b *Block) Last() insn.Insn {
	return b.Insns[len(b.Insns)-1]
}

// Successors returns Next, Target and Cases, skipping nil edges.
func (b *Block) Successors() []*Block {
	var out []*Block
	if b.Next != nil {
		out = append(out, b.Next)
	}
	if b.Target != nil && b.Target != b.Next {
		out = append(out, b.Target)
	}
	for _, c := range b.Cases {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func (b *Block) addPred(p *Block) {
	if !slices.Contains(b.Preds, p) {
		b.Preds = append(b.Preds, p)
	}
}

func (b *Block) removePred(p *Block) {
	b.Preds = slices.DeleteFunc(b.Preds, func(x *Block) bool { return x == p })
}
