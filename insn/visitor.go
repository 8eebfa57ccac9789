package insn

// Visitor receives a method body as an ordered event stream: VisitCode, one
// event per instruction or pseudo-instruction in code order, then VisitEnd.
// Decoders produce this stream; List.Accept replays one.
type Visitor interface {
	VisitCode()
	VisitInsn(op Opcode)
	VisitIntInsn(op Opcode, operand int32)
	VisitVarInsn(op Opcode, slot int)
	VisitTypeInsn(op Opcode, desc string)
	VisitFieldInsn(op Opcode, owner, name, desc string)
	VisitMethodInsn(op Opcode, owner, name, desc string, itf bool)
	VisitInvokeDynamicInsn(name, desc string, bsm Handle, args ...any)
	VisitJumpInsn(op Opcode, target Label)
	VisitLabel(l Label)
	VisitLdcInsn(cst any)
	VisitIincInsn(slot, incr int)
	VisitTableSwitchInsn(lo, hi int32, dflt Label, cases ...Label)
	VisitLookupSwitchInsn(dflt Label, keys []int32, cases []Label)
	VisitMultiANewArrayInsn(desc string, dims int)
	VisitFrame(typ FrameType, local, stack []FrameValue)
	VisitLineNumber(line int, start Label)

	// VisitEnd closes the stream and reports any error the consumer found.
	VisitEnd() error
}

// Recorder is the typical-case consumer: it appends one node per event to
// a list.
type Recorder struct {
	list *List
	err  error
}

// NewRecorder returns a recorder appending to l. A nil l starts a fresh list.
func NewRecorder(l *List) *Recorder {
	if l == nil {
		l = &List{}
	}
	return &Recorder{list: l}
}

// List returns the list being recorded into.
func (r *Recorder) List() *List { return r.list }

func (r *Recorder) add(n Insn) {
	if r.err != nil {
		return
	}
	r.err = r.list.Append(n)
}

func (r *Recorder) VisitCode()          {}
func (r *Recorder) VisitInsn(op Opcode) { r.add(NewPlain(op)) }
func (r *Recorder) VisitIntInsn(op Opcode, operand int32) {
	r.add(NewInt(op, operand))
}
func (r *Recorder) VisitVarInsn(op Opcode, slot int)     { r.add(NewVar(op, slot)) }
func (r *Recorder) VisitTypeInsn(op Opcode, desc string) { r.add(NewTypeInsn(op, desc)) }
func (r *Recorder) VisitFieldInsn(op Opcode, owner, name, desc string) {
	r.add(NewField(op, owner, name, desc))
}
func (r *Recorder) VisitMethodInsn(op Opcode, owner, name, desc string, itf bool) {
	r.add(NewMethod(op, owner, name, desc, itf))
}
func (r *Recorder) VisitInvokeDynamicInsn(name, desc string, bsm Handle, args ...any) {
	r.add(NewInvokeDynamic(name, desc, bsm, args...))
}
func (r *Recorder) VisitJumpInsn(op Opcode, target Label) { r.add(NewJump(op, target)) }
func (r *Recorder) VisitLabel(l Label)                    { r.add(NewMark(l)) }
func (r *Recorder) VisitLdcInsn(cst any)                  { r.add(NewLdc(cst)) }
func (r *Recorder) VisitIincInsn(slot, incr int)          { r.add(NewIinc(slot, incr)) }
func (r *Recorder) VisitTableSwitchInsn(lo, hi int32, dflt Label, cases ...Label) {
	r.add(NewTableSwitch(lo, hi, dflt, cases...))
}
func (r *Recorder) VisitLookupSwitchInsn(dflt Label, keys []int32, cases []Label) {
	r.add(NewLookupSwitch(dflt, keys, cases))
}
func (r *Recorder) VisitMultiANewArrayInsn(desc string, dims int) {
	r.add(NewMultiANewArray(desc, dims))
}
func (r *Recorder) VisitFrame(typ FrameType, local, stack []FrameValue) {
	r.add(NewFrame(typ, local, stack))
}
func (r *Recorder) VisitLineNumber(line int, start Label) { r.add(NewLine(line, start)) }
func (r *Recorder) VisitEnd() error                       { return r.err }
