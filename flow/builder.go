package flow

import (
	"fmt"
	"slices"

	"github.com/chazu/insnkit/insn"
)

// Builder partitions an instruction event stream into basic blocks. It
// implements insn.Visitor; use one Builder per method body.
//
// The builder is either open, appending to the current block, or closed
// after a control transfer. A closed builder opens a fresh block on the
// next real instruction, or switches to the label's block on a label event.
// Conditional jumps and jsr leave a pending fall-through edge that the next
// block receives.
type Builder struct {
	blocks  []*Block
	byLabel map[insn.Label]*Block

	entry   *Block
	current *Block // nil while closed
	pending *Block // awaiting its fall-through successor
	stack   []string
	seq     int

	graph *Graph
	err   error
}

// NewBuilder returns a builder positioned in a fresh entry block.
func NewBuilder() *Builder {
	b := &Builder{byLabel: make(map[insn.Label]*Block)}
	entry := newBlock(insn.NewLabel())
	entry.defined = true
	b.byLabel[entry.Label] = entry
	b.blocks = append(b.blocks, entry)
	b.entry = entry
	b.current = entry
	return b
}

// Pin marks labels that are entered from outside the jump graph, such as
// exception handlers and protected-range bounds. Pinned blocks are never
// dropped and act as reachability roots.
func (b *Builder) Pin(labels ...insn.Label) {
	for _, l := range labels {
		b.blockFor(l).pinned = true
	}
}

// Graph returns the finished graph. It is valid only after VisitEnd
// returned nil.
func (b *Builder) Graph() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.graph == nil {
		return nil, fmt.Errorf("flow: graph requested before end of method")
	}
	return b.graph, nil
}

func (b *Builder) blockFor(l insn.Label) *Block {
	blk, ok := b.byLabel[l]
	if !ok {
		blk = newBlock(l)
		b.byLabel[l] = blk
		b.blocks = append(b.blocks, blk)
	}
	return blk
}

// open makes blk current, resolving any fall-through into it.
func (b *Builder) open(blk *Block) {
	from := b.current
	if from == nil {
		from = b.pending
	}
	if from != nil && from != blk {
		from.Next = blk
		blk.addPred(from)
	}
	b.pending = nil
	blk.Stack = slices.Clone(b.stack)
	b.current = blk
}

func (b *Builder) close(fallsThrough bool) {
	if fallsThrough {
		b.pending = b.current
	}
	b.current = nil
}

// ensureOpen synthesises a block when the builder is closed.
func (b *Builder) ensureOpen() {
	if b.current != nil {
		return
	}
	blk := newBlock(insn.NewLabel())
	blk.defined = true
	blk.pos = b.seq
	b.byLabel[blk.Label] = blk
	b.blocks = append(b.blocks, blk)
	b.open(blk)
}

func (b *Builder) append(n insn.Insn) {
	b.ensureOpen()
	b.current.Insns = append(b.current.Insns, n)
}

// emit classifies one node. Every opcode lands in exactly one branch.
func (b *Builder) emit(n insn.Insn) {
	if b.err != nil {
		return
	}
	b.seq++

	switch n := n.(type) {
	case *insn.Mark:
		b.label(n)

	case *insn.Jump:
		target := b.blockFor(n.Label)
		op := n.Opcode()
		if op.IsUnconditionalJump() {
			b.ensureOpen()
			b.current.Target = target
			b.current.Exit = op
			target.addPred(b.current)
			b.close(false)
			return
		}
		b.append(n)
		b.current.Target = target
		target.addPred(b.current)
		b.close(true)

	case *insn.TableSwitch:
		b.switchTo(n, n.Default, n.Cases)

	case *insn.LookupSwitch:
		b.switchTo(n, n.Default, n.Cases)

	case *insn.Line:
		b.blockFor(n.Start).pinned = true
		b.append(n)

	case *insn.Frame:
		b.stack = b.stack[:0]
		for _, fv := range n.Stack {
			b.stack = append(b.stack, fv.String())
		}
		for _, l := range n.Labels() {
			b.blockFor(l).pinned = true
		}
		b.append(n)
		b.current.Stack = slices.Clone(b.stack)

	default:
		b.append(n)
		if n.Opcode().IsTerminal() {
			b.close(false)
		}
	}
}

func (b *Builder) label(m *insn.Mark) {
	blk := b.blockFor(m.Label)
	if blk.defined {
		b.err = fmt.Errorf("%w: %s", ErrDuplicateLabel, m.Label)
		return
	}
	blk.defined = true
	blk.pos = b.seq
	blk.Insns[0] = m
	b.open(blk)
}

func (b *Builder) switchTo(n insn.Insn, dflt insn.Label, cases []insn.Label) {
	b.append(n)
	from := b.current
	for _, l := range append([]insn.Label{dflt}, cases...) {
		blk := b.blockFor(l)
		if !slices.Contains(from.Cases, blk) {
			from.Cases = append(from.Cases, blk)
		}
		blk.addPred(from)
	}
	b.close(false)
}

func (b *Builder) finish() error {
	if b.err != nil {
		return b.err
	}
	for _, blk := range b.blocks {
		if !blk.defined {
			return fmt.Errorf("%w: %s", ErrUndefinedLabel, blk.Label)
		}
	}

	// The head is where execution starts. It survives while it carries a
	// jump; once dropped, its fall-through successor takes over.
	blocks := b.blocks
	head := b.entry
	for {
		dropped := false
		blocks = slices.DeleteFunc(blocks, func(blk *Block) bool {
			if !blk.Empty() || (blk == head && blk.Target != nil) {
				return false
			}
			if blk == head {
				head = blk.Next
			}
			for _, s := range blk.Successors() {
				s.removePred(blk)
			}
			delete(b.byLabel, blk.Label)
			dropped = true
			return true
		})
		if !dropped {
			break
		}
	}
	slices.SortStableFunc(blocks, func(x, y *Block) int { return x.pos - y.pos })

	b.graph = &Graph{Blocks: blocks, byLabel: b.byLabel}
	return nil
}

// ---------------------------------------------------------------------------
// insn.Visitor
// ---------------------------------------------------------------------------

func (b *Builder) VisitCode()                       {}
func (b *Builder) VisitInsn(op insn.Opcode)          { b.emit(insn.NewPlain(op)) }
func (b *Builder) VisitIntInsn(op insn.Opcode, v int32) { b.emit(insn.NewInt(op, v)) }
func (b *Builder) VisitVarInsn(op insn.Opcode, slot int) {
	b.emit(insn.NewVar(op, slot))
}
func (b *Builder) VisitTypeInsn(op insn.Opcode, desc string) {
	b.emit(insn.NewTypeInsn(op, desc))
}
func (b *Builder) VisitFieldInsn(op insn.Opcode, owner, name, desc string) {
	b.emit(insn.NewField(op, owner, name, desc))
}
func (b *Builder) VisitMethodInsn(op insn.Opcode, owner, name, desc string, itf bool) {
	b.emit(insn.NewMethod(op, owner, name, desc, itf))
}
func (b *Builder) VisitInvokeDynamicInsn(name, desc string, bsm insn.Handle, args ...any) {
	b.emit(insn.NewInvokeDynamic(name, desc, bsm, args...))
}
func (b *Builder) VisitJumpInsn(op insn.Opcode, target insn.Label) {
	b.emit(insn.NewJump(op, target))
}
func (b *Builder) VisitLabel(l insn.Label) { b.emit(insn.NewMark(l)) }
func (b *Builder) VisitLdcInsn(cst any)    { b.emit(insn.NewLdc(cst)) }
func (b *Builder) VisitIincInsn(slot, incr int) {
	b.emit(insn.NewIinc(slot, incr))
}
func (b *Builder) VisitTableSwitchInsn(lo, hi int32, dflt insn.Label, cases ...insn.Label) {
	b.emit(insn.NewTableSwitch(lo, hi, dflt, cases...))
}
func (b *Builder) VisitLookupSwitchInsn(dflt insn.Label, keys []int32, cases []insn.Label) {
	b.emit(insn.NewLookupSwitch(dflt, keys, cases))
}
func (b *Builder) VisitMultiANewArrayInsn(desc string, dims int) {
	b.emit(insn.NewMultiANewArray(desc, dims))
}
func (b *Builder) VisitFrame(typ insn.FrameType, local, stack []insn.FrameValue) {
	b.emit(insn.NewFrame(typ, local, stack))
}
func (b *Builder) VisitLineNumber(line int, start insn.Label) {
	b.emit(insn.NewLine(line, start))
}
func (b *Builder) VisitEnd() error { return b.finish() }

// Build partitions l into a block graph. l is not modified; the graph holds
// copies of its nodes, annotations included. pins are passed to Pin.
func Build(l *insn.List, pins ...insn.Label) (*Graph, error) {
	ident := identity(l)
	b := NewBuilder()
	b.Pin(pins...)
	for n := range l.All() {
		c, err := n.Clone(ident)
		if err != nil {
			return nil, err
		}
		b.emit(c)
	}
	if err := b.finish(); err != nil {
		return nil, err
	}
	return b.graph, nil
}

// Rebuild replaces the content of l with its flattened block graph and
// returns the graph.
func Rebuild(l *insn.List, pins ...insn.Label) (*Graph, error) {
	g, err := Build(l, pins...)
	if err != nil {
		return nil, err
	}
	flat, err := g.Flatten()
	if err != nil {
		return nil, err
	}
	l.Clear()
	if err := l.AppendList(flat); err != nil {
		return nil, err
	}
	return g, nil
}

func identity(l *insn.List) insn.LabelMap {
	m := make(insn.LabelMap)
	for n := range l.All() {
		for _, lbl := range n.Labels() {
			m[lbl] = lbl
		}
	}
	return m
}
