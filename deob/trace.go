package deob

import (
	"github.com/chazu/insnkit/insn"
	"github.com/chazu/insnkit/model"
	"github.com/chazu/insnkit/selector"
)

var traceProbe = selector.MustCompile(
	"getstatic[owner=java/lang/System,name=out] ldc[dist=1] invokevirtual[owner=java/io/PrintStream,name=println,dist=1]")

// Trace prepends a prologue to every non-empty method body that prints the
// method's owner, name and descriptor to standard output. Bodies whose
// first real instruction already starts the prologue are left alone.
type Trace struct{}

func (Trace) Name() string { return "trace" }

func (Trace) Apply(a *model.Archive) error {
	return eachBody(a, func(c *model.Class, m *model.Method) error {
		first := firstReal(m.Code)
		if first < 0 || traceProbe.IndexOf(m.Code) == first {
			return nil
		}
		prologue, err := insn.NewList(
			insn.NewField(insn.OpGetstatic, "java/lang/System", "out", "Ljava/io/PrintStream;"),
			insn.NewLdc(c.Name+"."+m.Key()),
			insn.NewMethod(insn.OpInvokevirtual, "java/io/PrintStream", "println", "(Ljava/lang/String;)V", false),
		)
		if err != nil {
			return err
		}
		m.MaxStack = max(m.MaxStack, 2)
		return m.Code.PrependList(prologue)
	})
}

// firstReal returns the index of the first non-pseudo node, or -1.
func firstReal(l *insn.List) int {
	i := 0
	for n := range l.All() {
		if n.Opcode() != insn.Pseudo {
			return i
		}
		i++
	}
	return -1
}
