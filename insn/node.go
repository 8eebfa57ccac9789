package insn

import (
	"slices"
	"strconv"
)

// Insn is one node of an instruction list. Each instruction category has its
// own concrete type; the interface exposes what every category shares.
//
// A node belongs to at most one List at a time. Its neighbours are owned by
// that list, so Next and Prev return nil for unattached nodes.
type Insn interface {
	Opcode() Opcode
	Kind() Kind
	Next() Insn
	Prev() Insn

	// List returns the owning list, or nil for an unattached node.
	List() *List

	// Index returns the cached position of the node, or -1 when the node is
	// unattached or the owning list's position cache is stale. Use
	// List.IndexOf for an always-valid position.
	Index() int

	// Labels returns every label the node defines or references.
	Labels() []Label

	// Clone returns an unattached deep copy with labels translated through m.
	Clone(m LabelMap) (Insn, error)

	Annotations(visible bool) []Annotation
	Annotate(a Annotation, visible bool)

	accept(v Visitor)
	node() *base
}

// Annotation is an opaque metadata attachment carried by a node. The
// serializer re-emits it verbatim; nothing in this module interprets it.
type Annotation struct {
	Desc     string
	TypeRef  int
	TypePath string
	Values   []AnnotationValue
}

// AnnotationValue is one name/value element of an annotation.
type AnnotationValue struct {
	Name  string
	Value any
}

func (a Annotation) clone() Annotation {
	a.Values = slices.Clone(a.Values)
	return a
}

type base struct {
	op        Opcode
	prev      Insn
	next      Insn
	list      *List
	index     int
	visible   []Annotation
	invisible []Annotation
}

func (b *base) Opcode() Opcode { return b.op }
func (b *base) Next() Insn     { return b.next }
func (b *base) Prev() Insn     { return b.prev }
func (b *base) List() *List    { return b.list }
func (b *base) node() *base    { return b }

// SetOpcode changes the opcode in place. The new opcode must belong to the
// same node kind.
func (b *base) SetOpcode(op Opcode) { b.op = op }

func (b *base) Index() int {
	if b.list == nil || b.list.cache == nil {
		return -1
	}
	return b.index
}

func (b *base) Annotations(visible bool) []Annotation {
	if visible {
		return b.visible
	}
	return b.invisible
}

func (b *base) Annotate(a Annotation, visible bool) {
	if visible {
		b.visible = append(b.visible, a)
	} else {
		b.invisible = append(b.invisible, a)
	}
}

// cloneBase copies opcode and annotations, never links.
func (b *base) cloneBase() base {
	c := base{op: b.op}
	for _, a := range b.visible {
		c.visible = append(c.visible, a.clone())
	}
	for _, a := range b.invisible {
		c.invisible = append(c.invisible, a.clone())
	}
	return c
}

// ---------------------------------------------------------------------------
// Operand-free and scalar-operand instructions
// ---------------------------------------------------------------------------

// Plain is an instruction without operands (iadd, return, athrow, ...).
type Plain struct{ base }

func NewPlain(op Opcode) *Plain { return &Plain{base{op: op}} }

func (*Plain) Kind() Kind        { return KindPlain }
func (*Plain) Labels() []Label   { return nil }
func (n *Plain) accept(v Visitor) { v.VisitInsn(n.op) }
func (n *Plain) Clone(LabelMap) (Insn, error) {
	return &Plain{n.cloneBase()}, nil
}

// Int is bipush, sipush or newarray with its single integer operand.
type Int struct {
	base
	Operand int32
}

func NewInt(op Opcode, operand int32) *Int { return &Int{base{op: op}, operand} }

func (*Int) Kind() Kind        { return KindInt }
func (*Int) Labels() []Label   { return nil }
func (n *Int) accept(v Visitor) { v.VisitIntInsn(n.op, n.Operand) }
func (n *Int) Clone(LabelMap) (Insn, error) {
	return &Int{n.cloneBase(), n.Operand}, nil
}

// Var loads, stores or rets through a local variable slot.
type Var struct {
	base
	Var int
}

func NewVar(op Opcode, slot int) *Var { return &Var{base{op: op}, slot} }

func (*Var) Kind() Kind        { return KindVar }
func (*Var) Labels() []Label   { return nil }
func (n *Var) accept(v Visitor) { v.VisitVarInsn(n.op, n.Var) }
func (n *Var) Clone(LabelMap) (Insn, error) {
	return &Var{n.cloneBase(), n.Var}, nil
}

// TypeInsn is new, anewarray, checkcast or instanceof with a type descriptor
// (an internal class name or an array descriptor).
type TypeInsn struct {
	base
	Desc string
}

func NewTypeInsn(op Opcode, desc string) *TypeInsn { return &TypeInsn{base{op: op}, desc} }

func (*TypeInsn) Kind() Kind        { return KindType }
func (*TypeInsn) Labels() []Label   { return nil }
func (n *TypeInsn) accept(v Visitor) { v.VisitTypeInsn(n.op, n.Desc) }
func (n *TypeInsn) Clone(LabelMap) (Insn, error) {
	return &TypeInsn{n.cloneBase(), n.Desc}, nil
}

// Iinc increments a local variable slot by a constant.
type Iinc struct {
	base
	Var  int
	Incr int
}

func NewIinc(slot, incr int) *Iinc { return &Iinc{base{op: OpIinc}, slot, incr} }

func (*Iinc) Kind() Kind        { return KindIinc }
func (*Iinc) Labels() []Label   { return nil }
func (n *Iinc) accept(v Visitor) { v.VisitIincInsn(n.Var, n.Incr) }
func (n *Iinc) Clone(LabelMap) (Insn, error) {
	return &Iinc{n.cloneBase(), n.Var, n.Incr}, nil
}

// MultiANewArray allocates a multi-dimensional array.
type MultiANewArray struct {
	base
	Desc string
	Dims int
}

func NewMultiANewArray(desc string, dims int) *MultiANewArray {
	return &MultiANewArray{base{op: OpMultianewarray}, desc, dims}
}

func (*MultiANewArray) Kind() Kind        { return KindMultiANewArray }
func (*MultiANewArray) Labels() []Label   { return nil }
func (n *MultiANewArray) accept(v Visitor) { v.VisitMultiANewArrayInsn(n.Desc, n.Dims) }
func (n *MultiANewArray) Clone(LabelMap) (Insn, error) {
	return &MultiANewArray{n.cloneBase(), n.Desc, n.Dims}, nil
}

// ---------------------------------------------------------------------------
// Member references
// ---------------------------------------------------------------------------

// Field is getstatic, putstatic, getfield or putfield.
type Field struct {
	base
	Owner string
	Name  string
	Desc  string
}

func NewField(op Opcode, owner, name, desc string) *Field {
	return &Field{base{op: op}, owner, name, desc}
}

func (*Field) Kind() Kind        { return KindField }
func (*Field) Labels() []Label   { return nil }
func (n *Field) accept(v Visitor) { v.VisitFieldInsn(n.op, n.Owner, n.Name, n.Desc) }
func (n *Field) Clone(LabelMap) (Insn, error) {
	return &Field{n.cloneBase(), n.Owner, n.Name, n.Desc}, nil
}

// Method is an invokevirtual, invokespecial, invokestatic or invokeinterface.
type Method struct {
	base
	Owner string
	Name  string
	Desc  string
	Itf   bool // owner is an interface
}

func NewMethod(op Opcode, owner, name, desc string, itf bool) *Method {
	return &Method{base{op: op}, owner, name, desc, itf}
}

func (*Method) Kind() Kind      { return KindMethod }
func (*Method) Labels() []Label { return nil }
func (n *Method) accept(v Visitor) {
	v.VisitMethodInsn(n.op, n.Owner, n.Name, n.Desc, n.Itf)
}
func (n *Method) Clone(LabelMap) (Insn, error) {
	return &Method{n.cloneBase(), n.Owner, n.Name, n.Desc, n.Itf}, nil
}

// Handle is a method handle constant, used by ldc and by bootstrap methods.
type Handle struct {
	Tag   int
	Owner string
	Name  string
	Desc  string
	Itf   bool
}

func (h Handle) String() string {
	return h.Owner + "." + h.Name + h.Desc + " (" + strconv.Itoa(h.Tag) + ")"
}

// InvokeDynamic is a dynamic call site.
type InvokeDynamic struct {
	base
	Name      string
	Desc      string
	Bootstrap Handle
	Args      []any
}

func NewInvokeDynamic(name, desc string, bsm Handle, args ...any) *InvokeDynamic {
	return &InvokeDynamic{base{op: OpInvokedynamic}, name, desc, bsm, args}
}

func (*InvokeDynamic) Kind() Kind      { return KindInvokeDynamic }
func (*InvokeDynamic) Labels() []Label { return nil }
func (n *InvokeDynamic) accept(v Visitor) {
	v.VisitInvokeDynamicInsn(n.Name, n.Desc, n.Bootstrap, n.Args...)
}
func (n *InvokeDynamic) Clone(LabelMap) (Insn, error) {
	return &InvokeDynamic{n.cloneBase(), n.Name, n.Desc, n.Bootstrap, slices.Clone(n.Args)}, nil
}

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

// TypeConst is a class literal loaded by ldc.
type TypeConst struct {
	Desc string
}

// Ldc loads a constant-pool constant: int32, int64, float32, float64,
// string, TypeConst or Handle.
type Ldc struct {
	base
	Cst any
}

func NewLdc(cst any) *Ldc {
	op := OpLdc
	switch cst.(type) {
	case int64, float64:
		op = OpLdc2W
	}
	return &Ldc{base{op: op}, cst}
}

func (*Ldc) Kind() Kind        { return KindLdc }
func (*Ldc) Labels() []Label   { return nil }
func (n *Ldc) accept(v Visitor) { v.VisitLdcInsn(n.Cst) }
func (n *Ldc) Clone(LabelMap) (Insn, error) {
	return &Ldc{n.cloneBase(), n.Cst}, nil
}

// Text returns the text form of the constant, as matched by selectors.
func (n *Ldc) Text() string {
	return ConstText(n.Cst)
}

// ConstText renders an ldc constant as text.
func ConstText(cst any) string {
	switch c := cst.(type) {
	case nil:
		return "null"
	case string:
		return c
	case int32:
		return strconv.FormatInt(int64(c), 10)
	case int64:
		return strconv.FormatInt(c, 10)
	case float32:
		return strconv.FormatFloat(float64(c), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case TypeConst:
		return c.Desc
	case Handle:
		return c.String()
	default:
		return "?"
	}
}

// ---------------------------------------------------------------------------
// Control transfer
// ---------------------------------------------------------------------------

// Jump is a conditional or unconditional branch, or a jsr.
type Jump struct {
	base
	Label Label
}

func NewJump(op Opcode, target Label) *Jump { return &Jump{base{op: op}, target} }

func (*Jump) Kind() Kind          { return KindJump }
func (n *Jump) Labels() []Label    { return []Label{n.Label} }
func (n *Jump) accept(v Visitor)   { v.VisitJumpInsn(n.op, n.Label) }
func (n *Jump) Clone(m LabelMap) (Insn, error) {
	l, err := m.lookup(n.Label)
	if err != nil {
		return nil, err
	}
	return &Jump{n.cloneBase(), l}, nil
}

// TableSwitch jumps through a dense table of case labels.
type TableSwitch struct {
	base
	Min     int32
	Max     int32
	Default Label
	Cases   []Label // Max-Min+1 labels
}

func NewTableSwitch(lo, hi int32, dflt Label, cases ...Label) *TableSwitch {
	return &TableSwitch{base{op: OpTableswitch}, lo, hi, dflt, cases}
}

func (*TableSwitch) Kind() Kind { return KindTableSwitch }
func (n *TableSwitch) Labels() []Label {
	return append([]Label{n.Default}, n.Cases...)
}
func (n *TableSwitch) accept(v Visitor) {
	v.VisitTableSwitchInsn(n.Min, n.Max, n.Default, n.Cases...)
}
func (n *TableSwitch) Clone(m LabelMap) (Insn, error) {
	dflt, err := m.lookup(n.Default)
	if err != nil {
		return nil, err
	}
	cases, err := m.lookupAll(n.Cases)
	if err != nil {
		return nil, err
	}
	return &TableSwitch{n.cloneBase(), n.Min, n.Max, dflt, cases}, nil
}

// LookupSwitch jumps through a sparse key-to-label table.
type LookupSwitch struct {
	base
	Default Label
	Keys    []int32
	Cases   []Label // parallel to Keys
}

func NewLookupSwitch(dflt Label, keys []int32, cases []Label) *LookupSwitch {
	return &LookupSwitch{base{op: OpLookupswitch}, dflt, keys, cases}
}

func (*LookupSwitch) Kind() Kind { return KindLookupSwitch }
func (n *LookupSwitch) Labels() []Label {
	return append([]Label{n.Default}, n.Cases...)
}
func (n *LookupSwitch) accept(v Visitor) {
	v.VisitLookupSwitchInsn(n.Default, n.Keys, n.Cases)
}
func (n *LookupSwitch) Clone(m LabelMap) (Insn, error) {
	dflt, err := m.lookup(n.Default)
	if err != nil {
		return nil, err
	}
	cases, err := m.lookupAll(n.Cases)
	if err != nil {
		return nil, err
	}
	return &LookupSwitch{n.cloneBase(), dflt, slices.Clone(n.Keys), cases}, nil
}

// ---------------------------------------------------------------------------
// Pseudo-instructions
// ---------------------------------------------------------------------------

// Mark places a label in the instruction stream.
type Mark struct {
	base
	Label Label
}

func NewMark(l Label) *Mark { return &Mark{base{op: Pseudo}, l} }

func (*Mark) Kind() Kind        { return KindLabel }
func (n *Mark) Labels() []Label  { return []Label{n.Label} }
func (n *Mark) accept(v Visitor) { v.VisitLabel(n.Label) }
func (n *Mark) Clone(m LabelMap) (Insn, error) {
	l, err := m.lookup(n.Label)
	if err != nil {
		return nil, err
	}
	return &Mark{n.cloneBase(), l}, nil
}

// Line associates a source line number with the label that starts it.
type Line struct {
	base
	Line  int
	Start Label
}

func NewLine(line int, start Label) *Line { return &Line{base{op: Pseudo}, line, start} }

func (*Line) Kind() Kind        { return KindLine }
func (n *Line) Labels() []Label  { return []Label{n.Start} }
func (n *Line) accept(v Visitor) { v.VisitLineNumber(n.Line, n.Start) }
func (n *Line) Clone(m LabelMap) (Insn, error) {
	l, err := m.lookup(n.Start)
	if err != nil {
		return nil, err
	}
	return &Line{n.cloneBase(), n.Line, l}, nil
}

// FrameType is the encoding of a stack map frame.
type FrameType int

const (
	FrameNew    FrameType = -1 // expanded frame
	FrameFull   FrameType = 0
	FrameAppend FrameType = 1
	FrameChop   FrameType = 2
	FrameSame   FrameType = 3
	FrameSame1  FrameType = 4
)

// FrameValue is one verification type of a frame. Uninitialized values
// created by a `new` instruction reference that instruction's label.
type FrameValue struct {
	Desc string
	New  Label
}

func (fv FrameValue) String() string {
	if fv.New != 0 {
		return "uninitialized(" + fv.New.String() + ")"
	}
	return fv.Desc
}

// Frame is a stack map frame marker.
type Frame struct {
	base
	Type  FrameType
	Local []FrameValue
	Stack []FrameValue
}

func NewFrame(typ FrameType, local, stack []FrameValue) *Frame {
	return &Frame{base{op: Pseudo}, typ, local, stack}
}

func (*Frame) Kind() Kind { return KindFrame }
func (n *Frame) Labels() []Label {
	var ls []Label
	for _, fv := range n.Local {
		if fv.New != 0 {
			ls = append(ls, fv.New)
		}
	}
	for _, fv := range n.Stack {
		if fv.New != 0 {
			ls = append(ls, fv.New)
		}
	}
	return ls
}
func (n *Frame) accept(v Visitor) { v.VisitFrame(n.Type, n.Local, n.Stack) }
func (n *Frame) Clone(m LabelMap) (Insn, error) {
	local, err := cloneFrameValues(n.Local, m)
	if err != nil {
		return nil, err
	}
	stack, err := cloneFrameValues(n.Stack, m)
	if err != nil {
		return nil, err
	}
	return &Frame{n.cloneBase(), n.Type, local, stack}, nil
}

func cloneFrameValues(vals []FrameValue, m LabelMap) ([]FrameValue, error) {
	if vals == nil {
		return nil, nil
	}
	out := make([]FrameValue, len(vals))
	for i, fv := range vals {
		if fv.New != 0 {
			l, err := m.lookup(fv.New)
			if err != nil {
				return nil, err
			}
			fv.New = l
		}
		out[i] = fv
	}
	return out, nil
}
