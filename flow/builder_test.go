package flow_test

import (
	"strings"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chazu/insnkit/flow"
	"github.com/chazu/insnkit/insn"
)

func list(nodes ...insn.Insn) *insn.List {
	l, err := insn.NewList(nodes...)
	Expect(err).NotTo(HaveOccurred())
	return l
}

func opcodes(b *flow.Block) []insn.Opcode {
	var ops []insn.Opcode
	for _, n := range b.Insns[1:] {
		ops = append(ops, n.Opcode())
	}
	return ops
}

var _ = Describe("Builder", func() {
	Context("straight-line code", func() {
		It("should produce a single block in source order", func() {
			g, err := flow.Build(list(
				insn.NewPlain(insn.OpIconst0),
				insn.NewPlain(insn.OpIconst1),
				insn.NewPlain(insn.OpIadd),
				insn.NewPlain(insn.OpIreturn),
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Blocks).To(HaveLen(1))
			Expect(opcodes(g.Entry())).To(Equal([]insn.Opcode{
				insn.OpIconst0, insn.OpIconst1, insn.OpIadd, insn.OpIreturn,
			}))
		})

		It("should accept events pushed through the visitor interface", func() {
			b := flow.NewBuilder()
			b.VisitCode()
			b.VisitVarInsn(insn.OpAload, 0)
			b.VisitFieldInsn(insn.OpGetfield, "pkg/Foo", "x", "I")
			b.VisitInsn(insn.OpIreturn)
			Expect(b.VisitEnd()).To(Succeed())

			g, err := b.Graph()
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Blocks).To(HaveLen(1))
			Expect(opcodes(g.Entry())).To(Equal([]insn.Opcode{
				insn.OpAload, insn.OpGetfield, insn.OpIreturn,
			}))
		})
	})

	Context("branching code", func() {
		var (
			a, b, c insn.Label
			g       *flow.Graph
		)

		BeforeEach(func() {
			a, b, c = insn.NewLabel(), insn.NewLabel(), insn.NewLabel()
			var err error
			g, err = flow.Build(list(
				insn.NewMark(a),
				insn.NewVar(insn.OpIload, 1),
				insn.NewJump(insn.OpIfeq, b),
				insn.NewPlain(insn.OpIconst0),
				insn.NewJump(insn.OpGoto, c),
				insn.NewMark(b),
				insn.NewPlain(insn.OpIconst1),
				insn.NewMark(c),
				insn.NewPlain(insn.OpIreturn),
			))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep blocks in source order", func() {
			Expect(g.Blocks).To(HaveLen(4))
			Expect(g.Blocks[0].Label).To(Equal(a))
			Expect(g.Blocks[2].Label).To(Equal(b))
			Expect(g.Blocks[3].Label).To(Equal(c))
			for _, blk := range g.Blocks {
				Expect(blk.Empty()).To(BeFalse())
			}
		})

		It("should wire target and fall-through edges", func() {
			blockA, _ := g.Block(a)
			blockB, _ := g.Block(b)
			blockC, _ := g.Block(c)
			fall := g.Blocks[1]

			Expect(blockA.Target).To(BeIdenticalTo(blockB))
			Expect(blockA.Next).To(BeIdenticalTo(fall))
			Expect(blockA.Last().Opcode()).To(Equal(insn.OpIfeq))

			Expect(opcodes(fall)).To(Equal([]insn.Opcode{insn.OpIconst0}))
			Expect(fall.Target).To(BeIdenticalTo(blockC))
			Expect(fall.Next).To(BeNil())
			Expect(fall.Exit).To(Equal(insn.OpGoto))
			Expect(fall.Preds).To(ConsistOf(blockA))

			Expect(blockB.Next).To(BeIdenticalTo(blockC))
			Expect(blockB.Preds).To(ConsistOf(blockA))
			Expect(blockC.Preds).To(ConsistOf(fall, blockB))
		})

		It("should re-emit the goto when flattening", func() {
			flat, err := g.Flatten()
			Expect(err).NotTo(HaveOccurred())
			Expect(insn.Disassemble(flat)).To(Equal(strings.Join([]string{
				"L0:",
				"    iload 1",
				"    ifeq L1",
				"L2:",
				"    iconst_0",
				"    goto L3",
				"L1:",
				"    iconst_1",
				"L3:",
				"    ireturn",
				"",
			}, "\n")))
		})

		It("should flatten idempotently", func() {
			flat, err := g.Flatten()
			Expect(err).NotTo(HaveOccurred())
			first := insn.Disassemble(flat)
			firstNodes := flat.ToArray()

			_, err = flow.Rebuild(flat)
			Expect(err).NotTo(HaveOccurred())
			Expect(insn.Disassemble(flat)).To(Equal(first))

			again := flat.ToArray()
			Expect(again).To(HaveLen(len(firstNodes)))
			for i := range again {
				Expect(again[i].Labels()).To(Equal(firstNodes[i].Labels()))
			}
		})

		It("should replay the flattened graph as events", func() {
			ctrl := gomock.NewController(GinkgoT())
			defer ctrl.Finish()
			v := NewMockVisitor(ctrl)

			gomock.InOrder(
				v.EXPECT().VisitCode(),
				v.EXPECT().VisitLabel(a),
				v.EXPECT().VisitVarInsn(insn.OpIload, 1),
				v.EXPECT().VisitJumpInsn(insn.OpIfeq, b),
				v.EXPECT().VisitLabel(gomock.Any()),
				v.EXPECT().VisitInsn(insn.OpIconst0),
				v.EXPECT().VisitJumpInsn(insn.OpGoto, c),
				v.EXPECT().VisitLabel(b),
				v.EXPECT().VisitInsn(insn.OpIconst1),
				v.EXPECT().VisitLabel(c),
				v.EXPECT().VisitInsn(insn.OpIreturn),
				v.EXPECT().VisitEnd().Return(nil),
			)

			Expect(g.Accept(v)).To(Succeed())
		})
	})

	Context("jumps to the next block", func() {
		It("should drop the goto and fall through", func() {
			next := insn.NewLabel()
			l := list(
				insn.NewPlain(insn.OpNop),
				insn.NewJump(insn.OpGoto, next),
				insn.NewMark(next),
				insn.NewPlain(insn.OpReturn),
			)
			_, err := flow.Rebuild(l)
			Expect(err).NotTo(HaveOccurred())

			var ops []insn.Opcode
			for n := range l.All() {
				if n.Opcode() != insn.Pseudo {
					ops = append(ops, n.Opcode())
				}
			}
			Expect(ops).To(Equal([]insn.Opcode{insn.OpNop, insn.OpReturn}))
		})
	})

	Context("bodies that start with a goto", func() {
		var skipped, target insn.Label

		realOps := func(l *insn.List) []insn.Opcode {
			var ops []insn.Opcode
			for n := range l.All() {
				if n.Opcode() != insn.Pseudo {
					ops = append(ops, n.Opcode())
				}
			}
			return ops
		}

		BeforeEach(func() {
			skipped, target = insn.NewLabel(), insn.NewLabel()
		})

		tail := func() []insn.Insn {
			return []insn.Insn{
				insn.NewMark(skipped),
				insn.NewPlain(insn.OpIconst1),
				insn.NewPlain(insn.OpIreturn),
				insn.NewMark(target),
				insn.NewPlain(insn.OpIconst2),
				insn.NewPlain(insn.OpIreturn),
			}
		}

		It("should keep the entry jump in front", func() {
			g, err := flow.Build(list(append([]insn.Insn{insn.NewJump(insn.OpGoto, target)}, tail()...)...))
			Expect(err).NotTo(HaveOccurred())

			blk, _ := g.Block(target)
			Expect(g.Entry().Exit).To(Equal(insn.OpGoto))
			Expect(g.Entry().Target).To(BeIdenticalTo(blk))

			flat, err := g.Flatten()
			Expect(err).NotTo(HaveOccurred())
			Expect(realOps(flat)).To(Equal([]insn.Opcode{
				insn.OpGoto, insn.OpIconst1, insn.OpIreturn, insn.OpIconst2, insn.OpIreturn,
			}))
		})

		It("should prune only the skipped code", func() {
			g, err := flow.Build(list(append([]insn.Insn{insn.NewJump(insn.OpGoto, target)}, tail()...)...))
			Expect(err).NotTo(HaveOccurred())

			Expect(g.Prune()).To(Equal(1))
			_, ok := g.Block(skipped)
			Expect(ok).To(BeFalse())

			flat, err := g.Flatten()
			Expect(err).NotTo(HaveOccurred())
			Expect(realOps(flat)).To(Equal([]insn.Opcode{insn.OpIconst2, insn.OpIreturn}))
		})

		It("should keep an unreferenced labelled goto as the entry", func() {
			start := insn.NewLabel()
			g, err := flow.Build(list(append([]insn.Insn{
				insn.NewMark(start),
				insn.NewJump(insn.OpGoto, target),
			}, tail()...)...))
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Entry().Label).To(Equal(start))

			Expect(g.Prune()).To(Equal(1))
			flat, err := g.Flatten()
			Expect(err).NotTo(HaveOccurred())
			Expect(realOps(flat)).To(Equal([]insn.Opcode{insn.OpIconst2, insn.OpIreturn}))
		})
	})

	Context("terminal instructions", func() {
		It("should leave code after a return without predecessors", func() {
			g, err := flow.Build(list(
				insn.NewPlain(insn.OpIconst0),
				insn.NewPlain(insn.OpIreturn),
				insn.NewPlain(insn.OpIconst1),
				insn.NewPlain(insn.OpIreturn),
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Blocks).To(HaveLen(2))
			Expect(g.Blocks[0].Next).To(BeNil())
			Expect(g.Blocks[1].Preds).To(BeEmpty())

			Expect(g.Reachable()).NotTo(HaveKey(g.Blocks[1]))
			Expect(g.Prune()).To(Equal(1))
			Expect(g.Blocks).To(HaveLen(1))
		})

		It("should drop an unreachable goto after a throw", func() {
			target := insn.NewLabel()
			g, err := flow.Build(list(
				insn.NewPlain(insn.OpAconstNull),
				insn.NewPlain(insn.OpAthrow),
				insn.NewJump(insn.OpGoto, target),
				insn.NewMark(target),
				insn.NewPlain(insn.OpReturn),
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Blocks).To(HaveLen(2))

			blk, ok := g.Block(target)
			Expect(ok).To(BeTrue())
			Expect(blk.Preds).To(BeEmpty())
		})

		It("should treat ret as terminal", func() {
			g, err := flow.Build(list(
				insn.NewVar(insn.OpRet, 2),
				insn.NewPlain(insn.OpReturn),
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Blocks).To(HaveLen(2))
			Expect(g.Blocks[0].Next).To(BeNil())
		})
	})

	Context("switches", func() {
		It("should wire every case and the default", func() {
			d, x, y := insn.NewLabel(), insn.NewLabel(), insn.NewLabel()
			g, err := flow.Build(list(
				insn.NewVar(insn.OpIload, 0),
				insn.NewTableSwitch(0, 2, d, x, y, x),
				insn.NewMark(x),
				insn.NewPlain(insn.OpIconst1),
				insn.NewPlain(insn.OpIreturn),
				insn.NewMark(y),
				insn.NewPlain(insn.OpIconst2),
				insn.NewPlain(insn.OpIreturn),
				insn.NewMark(d),
				insn.NewPlain(insn.OpIconst0),
				insn.NewPlain(insn.OpIreturn),
			))
			Expect(err).NotTo(HaveOccurred())

			entry := g.Entry()
			bd, _ := g.Block(d)
			bx, _ := g.Block(x)
			by, _ := g.Block(y)
			Expect(entry.Cases).To(ConsistOf(bd, bx, by))
			Expect(entry.Next).To(BeNil())
			Expect(bx.Preds).To(ConsistOf(entry))
			Expect(by.Preds).To(ConsistOf(entry))
			Expect(g.Reachable()).To(HaveLen(4))
		})
	})

	Context("labels", func() {
		It("should collapse unreferenced empty labels", func() {
			a, b := insn.NewLabel(), insn.NewLabel()
			g, err := flow.Build(list(
				insn.NewMark(a),
				insn.NewMark(b),
				insn.NewPlain(insn.OpReturn),
			))
			Expect(err).NotTo(HaveOccurred())
			Expect(g.Blocks).To(HaveLen(1))
			Expect(g.Blocks[0].Label).To(Equal(b))
			Expect(g.Blocks[0].Preds).To(BeEmpty())
		})

		It("should keep labels referenced by line markers", func() {
			start := insn.NewLabel()
			g, err := flow.Build(list(
				insn.NewMark(start),
				insn.NewLine(12, start),
				insn.NewPlain(insn.OpReturn),
			))
			Expect(err).NotTo(HaveOccurred())
			blk, ok := g.Block(start)
			Expect(ok).To(BeTrue())
			Expect(blk.Pinned()).To(BeTrue())
		})

		It("should keep pinned handler blocks reachable", func() {
			handler := insn.NewLabel()
			g, err := flow.Build(list(
				insn.NewPlain(insn.OpReturn),
				insn.NewMark(handler),
				insn.NewFrame(insn.FrameSame1, nil, []insn.FrameValue{{Desc: "java/lang/Throwable"}}),
				insn.NewPlain(insn.OpAthrow),
			), handler)
			Expect(err).NotTo(HaveOccurred())

			blk, _ := g.Block(handler)
			Expect(blk.Stack).To(Equal([]string{"java/lang/Throwable"}))
			Expect(g.Prune()).To(Equal(0))
			Expect(g.Blocks).To(HaveLen(2))
		})

		It("should fail on a jump to an undefined label", func() {
			_, err := flow.Build(list(
				insn.NewJump(insn.OpGoto, insn.NewLabel()),
			))
			Expect(err).To(MatchError(flow.ErrUndefinedLabel))
		})

		It("should fail on a label placed twice", func() {
			a := insn.NewLabel()
			b := flow.NewBuilder()
			b.VisitLabel(a)
			b.VisitInsn(insn.OpNop)
			b.VisitLabel(a)
			Expect(b.VisitEnd()).To(MatchError(flow.ErrDuplicateLabel))

			_, err := b.Graph()
			Expect(err).To(HaveOccurred())
		})
	})
})
