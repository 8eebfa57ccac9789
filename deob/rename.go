package deob

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/insnkit/insn"
	"github.com/chazu/insnkit/model"
)

// ErrNoSuchField is returned by RenameField when the owner does not declare
// the field.
var ErrNoSuchField = errors.New("deob: no such field")

// RenameClass renames a class and rewrites every declaration, descriptor,
// instruction and constant that refers to it.
type RenameClass struct {
	From, To string
}

func (r RenameClass) Name() string { return "rename-class" }

func (r RenameClass) Apply(a *model.Archive) error {
	if err := a.Rename(r.From, r.To); err != nil {
		return err
	}
	for _, c := range a.Classes() {
		c.Super = r.name(c.Super)
		for i, s := range c.Interfaces {
			c.Interfaces[i] = r.name(s)
		}
		for _, f := range c.Fields {
			f.Desc = r.desc(f.Desc)
			f.Value = r.constant(f.Value)
		}
		for _, m := range c.Methods {
			m.Desc = r.desc(m.Desc)
			for i, e := range m.Exceptions {
				m.Exceptions[i] = r.name(e)
			}
			for i := range m.TryCatch {
				m.TryCatch[i].Type = r.name(m.TryCatch[i].Type)
			}
			if m.Code != nil {
				for n := range m.Code.All() {
					r.rewrite(n)
				}
			}
		}
	}
	log.Infof("renamed class %s to %s", r.From, r.To)
	return nil
}

// desc rewrites references inside a field or method descriptor. Only whole
// L<name>; references are compared, so x/La is untouched by a rename of a.
func (r RenameClass) desc(d string) string {
	var sb strings.Builder
	for i := 0; i < len(d); {
		if d[i] != 'L' {
			sb.WriteByte(d[i])
			i++
			continue
		}
		end := strings.IndexByte(d[i:], ';')
		if end < 0 {
			sb.WriteString(d[i:])
			break
		}
		name := d[i+1 : i+end]
		if name == r.From {
			name = r.To
		}
		sb.WriteByte('L')
		sb.WriteString(name)
		sb.WriteByte(';')
		i += end + 1
	}
	return sb.String()
}

// name rewrites an internal name, or an array descriptor used in its place.
func (r RenameClass) name(n string) string {
	if n == r.From {
		return r.To
	}
	return r.desc(n)
}

func (r RenameClass) handle(h insn.Handle) insn.Handle {
	h.Owner = r.name(h.Owner)
	h.Desc = r.desc(h.Desc)
	return h
}

func (r RenameClass) constant(v any) any {
	switch v := v.(type) {
	case insn.TypeConst:
		return insn.TypeConst{Desc: r.name(v.Desc)}
	case insn.Handle:
		return r.handle(v)
	case string:
		// Trace prologues and similar labels use Owner.name(desc) text.
		if rest, ok := strings.CutPrefix(v, r.From+"."); ok {
			if i := strings.IndexByte(rest, '('); i >= 0 {
				return r.To + "." + rest[:i] + r.desc(rest[i:])
			}
		}
	}
	return v
}

func (r RenameClass) frameValues(vals []insn.FrameValue) {
	for i := range vals {
		vals[i].Desc = r.name(vals[i].Desc)
	}
}

func (r RenameClass) rewrite(n insn.Insn) {
	switch n := n.(type) {
	case *insn.Field:
		n.Owner = r.name(n.Owner)
		n.Desc = r.desc(n.Desc)
	case *insn.Method:
		n.Owner = r.name(n.Owner)
		n.Desc = r.desc(n.Desc)
	case *insn.TypeInsn:
		n.Desc = r.name(n.Desc)
	case *insn.MultiANewArray:
		n.Desc = r.desc(n.Desc)
	case *insn.InvokeDynamic:
		n.Desc = r.desc(n.Desc)
		n.Bootstrap = r.handle(n.Bootstrap)
		for i, arg := range n.Args {
			n.Args[i] = r.constant(arg)
		}
	case *insn.Ldc:
		n.Cst = r.constant(n.Cst)
	case *insn.Frame:
		r.frameValues(n.Local)
		r.frameValues(n.Stack)
	}
}

// RenameField renames a field declared by Owner and every field
// instruction that resolves to it, including accesses through subclasses
// that do not declare a field of the same name.
type RenameField struct {
	Owner    string
	From, To string
}

func (r RenameField) Name() string { return "rename-field" }

func (r RenameField) Apply(a *model.Archive) error {
	owner, ok := a.Get(r.Owner)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrNoSuchClass, r.Owner)
	}
	var decl *model.Field
	for _, f := range owner.Fields {
		if f.Name == r.From {
			decl = f
			break
		}
	}
	if decl == nil {
		return fmt.Errorf("%w: %s.%s", ErrNoSuchField, r.Owner, r.From)
	}
	decl.Name = r.To

	rewritten := 0
	err := eachBody(a, func(_ *model.Class, m *model.Method) error {
		for n := range m.Code.All() {
			f, ok := n.(*insn.Field)
			if !ok || f.Name != r.From || f.Desc != decl.Desc {
				continue
			}
			if r.resolves(a, f.Owner) {
				f.Name = r.To
				rewritten++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("renamed field %s.%s to %s (%d references)", r.Owner, r.From, r.To, rewritten)
	return nil
}

// resolves reports whether a field access through class lands on the
// renamed declaration.
func (r RenameField) resolves(a *model.Archive, class string) bool {
	for seen := make(map[string]bool); class != "" && !seen[class]; {
		if class == r.Owner {
			return true
		}
		seen[class] = true
		c, ok := a.Get(class)
		if !ok {
			return false
		}
		for _, f := range c.Fields {
			if f.Name == r.From {
				return false
			}
		}
		class = c.Super
	}
	return false
}
