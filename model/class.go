// Package model holds the class, field and method records that carry
// instruction lists, and the archive that groups them.
package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/chazu/insnkit/insn"
)

var (
	// ErrNoSuchClass is returned when a class name is not in the archive.
	ErrNoSuchClass = errors.New("model: no such class")

	// ErrClassExists is returned when a rename would overwrite a class.
	ErrClassExists = errors.New("model: class already exists")
)

// Access is a set of access flags.
type Access uint16

const (
	AccPublic    Access = 0x0001
	AccPrivate   Access = 0x0002
	AccProtected Access = 0x0004
	AccStatic    Access = 0x0008
	AccFinal     Access = 0x0010
	AccNative    Access = 0x0100
	AccInterface Access = 0x0200
	AccAbstract  Access = 0x0400
	AccSynthetic Access = 0x1000
)

// Has reports whether all flags in f are set.
func (a Access) Has(f Access) bool { return a&f == f }

// Class is one class record.
type Class struct {
	Name       string // internal name, e.g. pkg/Foo
	Super      string
	Interfaces []string
	Access     Access
	Fields     []*Field
	Methods    []*Method
}

// Field is one field declaration.
type Field struct {
	Access Access
	Name   string
	Desc   string
	Value  any // constant initial value, as for insn.Ldc
}

// Method is one method declaration and its body.
type Method struct {
	Access     Access
	Name       string
	Desc       string
	Exceptions []string
	Code       *insn.List // nil for abstract and native methods
	TryCatch   []TryCatch
	MaxStack   int
	MaxLocals  int
}

// TryCatch is one exception-table entry.
type TryCatch struct {
	Start   insn.Label
	End     insn.Label
	Handler insn.Label
	Type    string // empty for catch-all
}

// Key returns name+desc, the identity of a method within its class.
func (m *Method) Key() string { return m.Name + m.Desc }

// IsInitializer reports whether m is a constructor or static initializer.
func (m *Method) IsInitializer() bool {
	return m.Name == "<init>" || m.Name == "<clinit>"
}

// Pins returns the labels the exception table refers to.
func (m *Method) Pins() []insn.Label {
	var out []insn.Label
	for _, tc := range m.TryCatch {
		out = append(out, tc.Start, tc.End, tc.Handler)
	}
	return out
}

// Method returns the method with the given name and descriptor.
func (c *Class) Method(name, desc string) *Method {
	for _, m := range c.Methods {
		if m.Name == name && m.Desc == desc {
			return m
		}
	}
	return nil
}

// Field returns the field with the given name and descriptor.
func (c *Class) Field(name, desc string) *Field {
	for _, f := range c.Fields {
		if f.Name == name && f.Desc == desc {
			return f
		}
	}
	return nil
}

// RemoveMethod deletes m from the class and reports whether it was present.
func (c *Class) RemoveMethod(m *Method) bool {
	n := len(c.Methods)
	c.Methods = slices.DeleteFunc(c.Methods, func(x *Method) bool { return x == m })
	return len(c.Methods) != n
}

// Archive is an ordered set of classes keyed by name.
type Archive struct {
	classes map[string]*Class
	order   []string
}

// NewArchive returns an archive holding classes in order.
func NewArchive(classes ...*Class) *Archive {
	a := &Archive{classes: make(map[string]*Class)}
	for _, c := range classes {
		a.Put(c)
	}
	return a
}

// Len returns the number of classes.
func (a *Archive) Len() int { return len(a.order) }

// Get returns the class with the given name.
func (a *Archive) Get(name string) (*Class, bool) {
	c, ok := a.classes[name]
	return c, ok
}

// Put adds c, replacing any class with the same name in place.
func (a *Archive) Put(c *Class) {
	if _, ok := a.classes[c.Name]; !ok {
		a.order = append(a.order, c.Name)
	}
	a.classes[c.Name] = c
}

// Delete removes the named class and reports whether it was present.
func (a *Archive) Delete(name string) bool {
	if _, ok := a.classes[name]; !ok {
		return false
	}
	delete(a.classes, name)
	a.order = slices.DeleteFunc(a.order, func(n string) bool { return n == name })
	return true
}

// Names returns the class names in insertion order.
func (a *Archive) Names() []string {
	return slices.Clone(a.order)
}

// Classes returns the classes in insertion order.
func (a *Archive) Classes() []*Class {
	out := make([]*Class, len(a.order))
	for i, n := range a.order {
		out[i] = a.classes[n]
	}
	return out
}

// Rename re-keys a class and updates its Name. References to the class
// elsewhere are not touched.
func (a *Archive) Rename(from, to string) error {
	c, ok := a.classes[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchClass, from)
	}
	if from == to {
		return nil
	}
	if _, ok := a.classes[to]; ok {
		return fmt.Errorf("%w: %s", ErrClassExists, to)
	}
	delete(a.classes, from)
	c.Name = to
	a.classes[to] = c
	i := slices.Index(a.order, from)
	a.order[i] = to
	return nil
}
