package model

import (
	"errors"
	"fmt"
	"os"

	"github.com/chazu/insnkit/insn"
	"github.com/fxamacker/cbor/v2"
)

// ErrUnsupportedConst is returned when a constant or annotation value has a
// type the wire format cannot carry.
var ErrUnsupportedConst = errors.New("model: unsupported constant type")

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("model: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ---------------------------------------------------------------------------
// Wire records
// ---------------------------------------------------------------------------

type wireArchive struct {
	Version int         `cbor:"1,keyasint"`
	Classes []wireClass `cbor:"2,keyasint"`
}

const wireVersion = 1

type wireClass struct {
	Name       string       `cbor:"1,keyasint"`
	Super      string       `cbor:"2,keyasint,omitempty"`
	Interfaces []string     `cbor:"3,keyasint,omitempty"`
	Access     uint16       `cbor:"4,keyasint"`
	Fields     []wireField  `cbor:"5,keyasint,omitempty"`
	Methods    []wireMethod `cbor:"6,keyasint,omitempty"`
}

type wireField struct {
	Access uint16     `cbor:"1,keyasint"`
	Name   string     `cbor:"2,keyasint"`
	Desc   string     `cbor:"3,keyasint"`
	Value  *wireConst `cbor:"4,keyasint,omitempty"`
}

type wireMethod struct {
	Access     uint16         `cbor:"1,keyasint"`
	Name       string         `cbor:"2,keyasint"`
	Desc       string         `cbor:"3,keyasint"`
	Exceptions []string       `cbor:"4,keyasint,omitempty"`
	MaxStack   int            `cbor:"5,keyasint,omitempty"`
	MaxLocals  int            `cbor:"6,keyasint,omitempty"`
	HasCode    bool           `cbor:"7,keyasint,omitempty"`
	Code       []wireInsn     `cbor:"8,keyasint,omitempty"`
	TryCatch   []wireTryCatch `cbor:"9,keyasint,omitempty"`
}

type wireTryCatch struct {
	Start   uint32 `cbor:"1,keyasint"`
	End     uint32 `cbor:"2,keyasint"`
	Handler uint32 `cbor:"3,keyasint"`
	Type    string `cbor:"4,keyasint,omitempty"`
}

// wireInsn is a tagged instruction record. Kind selects which of the
// remaining fields are meaningful.
type wireInsn struct {
	Kind   uint8            `cbor:"1,keyasint"`
	Op     int              `cbor:"2,keyasint"`
	Ints   []int64          `cbor:"3,keyasint,omitempty"`
	Strs   []string         `cbor:"4,keyasint,omitempty"`
	Labels []uint32         `cbor:"5,keyasint,omitempty"`
	Cst    *wireConst       `cbor:"6,keyasint,omitempty"`
	Args   []wireConst      `cbor:"7,keyasint,omitempty"`
	Handle *wireHandle      `cbor:"8,keyasint,omitempty"`
	Local  []wireFrameValue `cbor:"9,keyasint,omitempty"`
	Stack  []wireFrameValue `cbor:"10,keyasint,omitempty"`
	Vis    []wireAnnotation `cbor:"11,keyasint,omitempty"`
	Invis  []wireAnnotation `cbor:"12,keyasint,omitempty"`
}

type wireHandle struct {
	Tag   int    `cbor:"1,keyasint"`
	Owner string `cbor:"2,keyasint"`
	Name  string `cbor:"3,keyasint"`
	Desc  string `cbor:"4,keyasint"`
	Itf   bool   `cbor:"5,keyasint,omitempty"`
}

// Constant tags.
const (
	constNull uint8 = iota
	constInt
	constLong
	constFloat
	constDouble
	constString
	constType
	constHandle
	constBool
)

type wireConst struct {
	Tag    uint8       `cbor:"1,keyasint"`
	Int    int64       `cbor:"2,keyasint,omitempty"`
	Float  float64     `cbor:"3,keyasint,omitempty"`
	Str    string      `cbor:"4,keyasint,omitempty"`
	Handle *wireHandle `cbor:"5,keyasint,omitempty"`
}

type wireFrameValue struct {
	Desc string `cbor:"1,keyasint,omitempty"`
	New  uint32 `cbor:"2,keyasint,omitempty"`
}

type wireAnnotation struct {
	Desc     string      `cbor:"1,keyasint"`
	TypeRef  int         `cbor:"2,keyasint,omitempty"`
	TypePath string      `cbor:"3,keyasint,omitempty"`
	Names    []string    `cbor:"4,keyasint,omitempty"`
	Values   []wireConst `cbor:"5,keyasint,omitempty"`
}

// ---------------------------------------------------------------------------
// Public API
// ---------------------------------------------------------------------------

// Marshal serializes an archive to canonical CBOR. Labels are renumbered
// per method in order of first appearance, so equal archives encode to
// equal bytes.
func Marshal(a *Archive) ([]byte, error) {
	w := wireArchive{Version: wireVersion}
	for _, c := range a.Classes() {
		wc, err := encodeClass(c)
		if err != nil {
			return nil, fmt.Errorf("model: marshal %s: %w", c.Name, err)
		}
		w.Classes = append(w.Classes, wc)
	}
	return cborEncMode.Marshal(w)
}

// Unmarshal deserializes an archive from CBOR bytes.
func Unmarshal(data []byte) (*Archive, error) {
	var w wireArchive
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("model: unmarshal archive: %w", err)
	}
	if w.Version != wireVersion {
		return nil, fmt.Errorf("model: unmarshal archive: unsupported version %d", w.Version)
	}
	a := NewArchive()
	for _, wc := range w.Classes {
		c, err := decodeClass(wc)
		if err != nil {
			return nil, fmt.Errorf("model: unmarshal %s: %w", wc.Name, err)
		}
		a.Put(c)
	}
	return a, nil
}

// ReadFile loads an archive written by WriteFile.
func ReadFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// WriteFile writes an archive to path.
func WriteFile(path string, a *Archive) error {
	data, err := Marshal(a)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ---------------------------------------------------------------------------
// Encoding
// ---------------------------------------------------------------------------

// labelNumbers assigns dense numbers to labels, starting at 1.
type labelNumbers map[insn.Label]uint32

func (ln labelNumbers) of(l insn.Label) uint32 {
	if n, ok := ln[l]; ok {
		return n
	}
	n := uint32(len(ln) + 1)
	ln[l] = n
	return n
}

func (ln labelNumbers) all(ls []insn.Label) []uint32 {
	out := make([]uint32, len(ls))
	for i, l := range ls {
		out[i] = ln.of(l)
	}
	return out
}

func encodeClass(c *Class) (wireClass, error) {
	wc := wireClass{
		Name:       c.Name,
		Super:      c.Super,
		Interfaces: c.Interfaces,
		Access:     uint16(c.Access),
	}
	for _, f := range c.Fields {
		wf := wireField{Access: uint16(f.Access), Name: f.Name, Desc: f.Desc}
		if f.Value != nil {
			v, err := encodeConst(f.Value)
			if err != nil {
				return wc, fmt.Errorf("field %s: %w", f.Name, err)
			}
			wf.Value = &v
		}
		wc.Fields = append(wc.Fields, wf)
	}
	for _, m := range c.Methods {
		wm, err := encodeMethod(m)
		if err != nil {
			return wc, fmt.Errorf("method %s: %w", m.Key(), err)
		}
		wc.Methods = append(wc.Methods, wm)
	}
	return wc, nil
}

func encodeMethod(m *Method) (wireMethod, error) {
	wm := wireMethod{
		Access:     uint16(m.Access),
		Name:       m.Name,
		Desc:       m.Desc,
		Exceptions: m.Exceptions,
		MaxStack:   m.MaxStack,
		MaxLocals:  m.MaxLocals,
		HasCode:    m.Code != nil,
	}
	ln := make(labelNumbers)
	if m.Code != nil {
		for n := range m.Code.All() {
			wi, err := encodeInsn(n, ln)
			if err != nil {
				return wm, err
			}
			wm.Code = append(wm.Code, wi)
		}
	}
	for _, tc := range m.TryCatch {
		wm.TryCatch = append(wm.TryCatch, wireTryCatch{
			Start:   ln.of(tc.Start),
			End:     ln.of(tc.End),
			Handler: ln.of(tc.Handler),
			Type:    tc.Type,
		})
	}
	return wm, nil
}

func encodeInsn(n insn.Insn, ln labelNumbers) (wireInsn, error) {
	wi := wireInsn{Kind: uint8(n.Kind()), Op: int(n.Opcode())}
	switch n := n.(type) {
	case *insn.Plain:
	case *insn.Int:
		wi.Ints = []int64{int64(n.Operand)}
	case *insn.Var:
		wi.Ints = []int64{int64(n.Var)}
	case *insn.TypeInsn:
		wi.Strs = []string{n.Desc}
	case *insn.Iinc:
		wi.Ints = []int64{int64(n.Var), int64(n.Incr)}
	case *insn.MultiANewArray:
		wi.Strs = []string{n.Desc}
		wi.Ints = []int64{int64(n.Dims)}
	case *insn.Field:
		wi.Strs = []string{n.Owner, n.Name, n.Desc}
	case *insn.Method:
		wi.Strs = []string{n.Owner, n.Name, n.Desc}
		if n.Itf {
			wi.Ints = []int64{1}
		}
	case *insn.InvokeDynamic:
		wi.Strs = []string{n.Name, n.Desc}
		wi.Handle = encodeHandle(n.Bootstrap)
		for _, arg := range n.Args {
			c, err := encodeConst(arg)
			if err != nil {
				return wi, err
			}
			wi.Args = append(wi.Args, c)
		}
	case *insn.Ldc:
		c, err := encodeConst(n.Cst)
		if err != nil {
			return wi, err
		}
		wi.Cst = &c
	case *insn.Jump:
		wi.Labels = []uint32{ln.of(n.Label)}
	case *insn.TableSwitch:
		wi.Ints = []int64{int64(n.Min), int64(n.Max)}
		wi.Labels = append([]uint32{ln.of(n.Default)}, ln.all(n.Cases)...)
	case *insn.LookupSwitch:
		for _, k := range n.Keys {
			wi.Ints = append(wi.Ints, int64(k))
		}
		wi.Labels = append([]uint32{ln.of(n.Default)}, ln.all(n.Cases)...)
	case *insn.Mark:
		wi.Labels = []uint32{ln.of(n.Label)}
	case *insn.Line:
		wi.Ints = []int64{int64(n.Line)}
		wi.Labels = []uint32{ln.of(n.Start)}
	case *insn.Frame:
		wi.Ints = []int64{int64(n.Type)}
		wi.Local = encodeFrameValues(n.Local, ln)
		wi.Stack = encodeFrameValues(n.Stack, ln)
	default:
		return wi, fmt.Errorf("unknown instruction %T", n)
	}

	var err error
	if wi.Vis, err = encodeAnnotations(n.Annotations(true)); err != nil {
		return wi, err
	}
	if wi.Invis, err = encodeAnnotations(n.Annotations(false)); err != nil {
		return wi, err
	}
	return wi, nil
}

func encodeHandle(h insn.Handle) *wireHandle {
	return &wireHandle{Tag: h.Tag, Owner: h.Owner, Name: h.Name, Desc: h.Desc, Itf: h.Itf}
}

func encodeConst(v any) (wireConst, error) {
	switch v := v.(type) {
	case nil:
		return wireConst{Tag: constNull}, nil
	case int32:
		return wireConst{Tag: constInt, Int: int64(v)}, nil
	case int64:
		return wireConst{Tag: constLong, Int: v}, nil
	case float32:
		return wireConst{Tag: constFloat, Float: float64(v)}, nil
	case float64:
		return wireConst{Tag: constDouble, Float: v}, nil
	case string:
		return wireConst{Tag: constString, Str: v}, nil
	case insn.TypeConst:
		return wireConst{Tag: constType, Str: v.Desc}, nil
	case insn.Handle:
		return wireConst{Tag: constHandle, Handle: encodeHandle(v)}, nil
	case bool:
		c := wireConst{Tag: constBool}
		if v {
			c.Int = 1
		}
		return c, nil
	default:
		return wireConst{}, fmt.Errorf("%w: %T", ErrUnsupportedConst, v)
	}
}

func encodeFrameValues(vals []insn.FrameValue, ln labelNumbers) []wireFrameValue {
	if vals == nil {
		return nil
	}
	out := make([]wireFrameValue, len(vals))
	for i, fv := range vals {
		out[i].Desc = fv.Desc
		if fv.New != 0 {
			out[i].New = ln.of(fv.New)
		}
	}
	return out
}

func encodeAnnotations(as []insn.Annotation) ([]wireAnnotation, error) {
	var out []wireAnnotation
	for _, a := range as {
		wa := wireAnnotation{Desc: a.Desc, TypeRef: a.TypeRef, TypePath: a.TypePath}
		for _, v := range a.Values {
			c, err := encodeConst(v.Value)
			if err != nil {
				return nil, fmt.Errorf("annotation %s: %w", a.Desc, err)
			}
			wa.Names = append(wa.Names, v.Name)
			wa.Values = append(wa.Values, c)
		}
		out = append(out, wa)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

// labelTable allocates a fresh label per wire number.
type labelTable map[uint32]insn.Label

func (lt labelTable) of(n uint32) insn.Label {
	if l, ok := lt[n]; ok {
		return l
	}
	l := insn.NewLabel()
	lt[n] = l
	return l
}

func decodeClass(wc wireClass) (*Class, error) {
	c := &Class{
		Name:       wc.Name,
		Super:      wc.Super,
		Interfaces: wc.Interfaces,
		Access:     Access(wc.Access),
	}
	for _, wf := range wc.Fields {
		f := &Field{Access: Access(wf.Access), Name: wf.Name, Desc: wf.Desc}
		if wf.Value != nil {
			v, err := decodeConst(*wf.Value)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", wf.Name, err)
			}
			f.Value = v
		}
		c.Fields = append(c.Fields, f)
	}
	for _, wm := range wc.Methods {
		m, err := decodeMethod(wm)
		if err != nil {
			return nil, fmt.Errorf("method %s%s: %w", wm.Name, wm.Desc, err)
		}
		c.Methods = append(c.Methods, m)
	}
	return c, nil
}

func decodeMethod(wm wireMethod) (*Method, error) {
	m := &Method{
		Access:     Access(wm.Access),
		Name:       wm.Name,
		Desc:       wm.Desc,
		Exceptions: wm.Exceptions,
		MaxStack:   wm.MaxStack,
		MaxLocals:  wm.MaxLocals,
	}
	lt := make(labelTable)
	if wm.HasCode {
		m.Code = &insn.List{}
		for i, wi := range wm.Code {
			n, err := decodeInsn(wi, lt)
			if err != nil {
				return nil, fmt.Errorf("insn %d: %w", i, err)
			}
			if err := m.Code.Append(n); err != nil {
				return nil, err
			}
		}
	}
	for _, wt := range wm.TryCatch {
		m.TryCatch = append(m.TryCatch, TryCatch{
			Start:   lt.of(wt.Start),
			End:     lt.of(wt.End),
			Handler: lt.of(wt.Handler),
			Type:    wt.Type,
		})
	}
	return m, nil
}

var errMalformed = errors.New("malformed record")

func decodeInsn(wi wireInsn, lt labelTable) (insn.Insn, error) {
	op := insn.Opcode(wi.Op)
	ints := func(n int) bool { return len(wi.Ints) >= n }
	strs := func(n int) bool { return len(wi.Strs) >= n }
	labels := func(n int) bool { return len(wi.Labels) >= n }

	var n insn.Insn
	switch insn.Kind(wi.Kind) {
	case insn.KindPlain:
		n = insn.NewPlain(op)
	case insn.KindInt:
		if !ints(1) {
			return nil, errMalformed
		}
		n = insn.NewInt(op, int32(wi.Ints[0]))
	case insn.KindVar:
		if !ints(1) {
			return nil, errMalformed
		}
		n = insn.NewVar(op, int(wi.Ints[0]))
	case insn.KindType:
		if !strs(1) {
			return nil, errMalformed
		}
		n = insn.NewTypeInsn(op, wi.Strs[0])
	case insn.KindIinc:
		if !ints(2) {
			return nil, errMalformed
		}
		n = insn.NewIinc(int(wi.Ints[0]), int(wi.Ints[1]))
	case insn.KindMultiANewArray:
		if !strs(1) || !ints(1) {
			return nil, errMalformed
		}
		n = insn.NewMultiANewArray(wi.Strs[0], int(wi.Ints[0]))
	case insn.KindField:
		if !strs(3) {
			return nil, errMalformed
		}
		n = insn.NewField(op, wi.Strs[0], wi.Strs[1], wi.Strs[2])
	case insn.KindMethod:
		if !strs(3) {
			return nil, errMalformed
		}
		n = insn.NewMethod(op, wi.Strs[0], wi.Strs[1], wi.Strs[2], ints(1) && wi.Ints[0] != 0)
	case insn.KindInvokeDynamic:
		if !strs(2) || wi.Handle == nil {
			return nil, errMalformed
		}
		args := make([]any, len(wi.Args))
		for i, a := range wi.Args {
			v, err := decodeConst(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		n = insn.NewInvokeDynamic(wi.Strs[0], wi.Strs[1], decodeHandle(wi.Handle), args...)
	case insn.KindLdc:
		if wi.Cst == nil {
			return nil, errMalformed
		}
		v, err := decodeConst(*wi.Cst)
		if err != nil {
			return nil, err
		}
		ldc := insn.NewLdc(v)
		ldc.SetOpcode(op)
		n = ldc
	case insn.KindJump:
		if !labels(1) {
			return nil, errMalformed
		}
		n = insn.NewJump(op, lt.of(wi.Labels[0]))
	case insn.KindTableSwitch:
		if !ints(2) || !labels(1) {
			return nil, errMalformed
		}
		cases := make([]insn.Label, len(wi.Labels)-1)
		for i, c := range wi.Labels[1:] {
			cases[i] = lt.of(c)
		}
		n = insn.NewTableSwitch(int32(wi.Ints[0]), int32(wi.Ints[1]), lt.of(wi.Labels[0]), cases...)
	case insn.KindLookupSwitch:
		if !labels(1) || len(wi.Ints) != len(wi.Labels)-1 {
			return nil, errMalformed
		}
		keys := make([]int32, len(wi.Ints))
		cases := make([]insn.Label, len(wi.Ints))
		for i := range wi.Ints {
			keys[i] = int32(wi.Ints[i])
			cases[i] = lt.of(wi.Labels[i+1])
		}
		n = insn.NewLookupSwitch(lt.of(wi.Labels[0]), keys, cases)
	case insn.KindLabel:
		if !labels(1) {
			return nil, errMalformed
		}
		n = insn.NewMark(lt.of(wi.Labels[0]))
	case insn.KindLine:
		if !ints(1) || !labels(1) {
			return nil, errMalformed
		}
		n = insn.NewLine(int(wi.Ints[0]), lt.of(wi.Labels[0]))
	case insn.KindFrame:
		if !ints(1) {
			return nil, errMalformed
		}
		n = insn.NewFrame(insn.FrameType(wi.Ints[0]), decodeFrameValues(wi.Local, lt), decodeFrameValues(wi.Stack, lt))
	default:
		return nil, fmt.Errorf("%w: kind %d", errMalformed, wi.Kind)
	}

	if err := decodeAnnotations(n, wi.Vis, true); err != nil {
		return nil, err
	}
	if err := decodeAnnotations(n, wi.Invis, false); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeHandle(h *wireHandle) insn.Handle {
	return insn.Handle{Tag: h.Tag, Owner: h.Owner, Name: h.Name, Desc: h.Desc, Itf: h.Itf}
}

func decodeConst(c wireConst) (any, error) {
	switch c.Tag {
	case constNull:
		return nil, nil
	case constInt:
		return int32(c.Int), nil
	case constLong:
		return c.Int, nil
	case constFloat:
		return float32(c.Float), nil
	case constDouble:
		return c.Float, nil
	case constString:
		return c.Str, nil
	case constType:
		return insn.TypeConst{Desc: c.Str}, nil
	case constHandle:
		if c.Handle == nil {
			return nil, errMalformed
		}
		return decodeHandle(c.Handle), nil
	case constBool:
		return c.Int != 0, nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedConst, c.Tag)
	}
}

func decodeFrameValues(vals []wireFrameValue, lt labelTable) []insn.FrameValue {
	if vals == nil {
		return nil
	}
	out := make([]insn.FrameValue, len(vals))
	for i, fv := range vals {
		out[i].Desc = fv.Desc
		if fv.New != 0 {
			out[i].New = lt.of(fv.New)
		}
	}
	return out
}

func decodeAnnotations(n insn.Insn, was []wireAnnotation, visible bool) error {
	for _, wa := range was {
		if len(wa.Names) != len(wa.Values) {
			return errMalformed
		}
		a := insn.Annotation{Desc: wa.Desc, TypeRef: wa.TypeRef, TypePath: wa.TypePath}
		for i, wv := range wa.Values {
			v, err := decodeConst(wv)
			if err != nil {
				return err
			}
			a.Values = append(a.Values, insn.AnnotationValue{Name: wa.Names[i], Value: v})
		}
		n.Annotate(a, visible)
	}
	return nil
}
