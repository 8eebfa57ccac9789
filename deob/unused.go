package deob

import (
	"strings"

	"github.com/chazu/insnkit/insn"
	"github.com/chazu/insnkit/model"
	"github.com/chazu/insnkit/platform"
)

// entryPoints are kept even when nothing in the archive calls them.
var entryPoints = []string{"main([Ljava/lang/String;)V"}

// UnusedMethods removes methods that no instruction in the archive invokes
// and that do not override an archive or platform super type method.
// Removing one method can orphan the methods it called, so removal repeats
// until a pass removes nothing. Initializers, static main methods and
// methods without a body are always kept.
type UnusedMethods struct {
	Platform *platform.Table // nil means platform.Base()

	Removed int // methods removed by the last Apply
	Total   int // methods present before the last Apply
}

func (*UnusedMethods) Name() string { return "unused-methods" }

func (u *UnusedMethods) Apply(a *model.Archive) error {
	tab := u.Platform
	if tab == nil {
		tab = platform.Base()
	}

	u.Removed, u.Total = 0, 0
	for _, c := range a.Classes() {
		u.Total += len(c.Methods)
	}

	for pass := 1; ; pass++ {
		used := usedMethods(a)
		removed := 0
		for _, c := range a.Classes() {
			inherited := inheritedSignatures(a, tab, c)
			for _, m := range append([]*model.Method(nil), c.Methods...) {
				if m.Code == nil || strings.ContainsAny(m.Name, "<>") || isEntryPoint(m) {
					continue
				}
				if used[c.Name+"."+m.Key()] || inherited[m.Key()] {
					continue
				}
				c.RemoveMethod(m)
				removed++
			}
		}
		log.Debugf("pass %d: removed %d methods", pass, removed)
		u.Removed += removed
		if removed == 0 {
			break
		}
	}

	log.Noticef("removed %d/%d unused methods", u.Removed, u.Total)
	return nil
}

func isEntryPoint(m *model.Method) bool {
	if !m.Access.Has(model.AccStatic) {
		return false
	}
	for _, sig := range entryPoints {
		if m.Key() == sig {
			return true
		}
	}
	return false
}

// usedMethods collects owner.name+desc for every method reference. A call
// through a subclass marks the declaration in each archive super class too,
// since the call may resolve there.
func usedMethods(a *model.Archive) map[string]bool {
	used := make(map[string]bool)
	mark := func(owner, sig string) {
		for seen := make(map[string]bool); owner != "" && !seen[owner]; {
			seen[owner] = true
			used[owner+"."+sig] = true
			c, ok := a.Get(owner)
			if !ok {
				return
			}
			owner = c.Super
		}
	}
	markConst := func(v any) {
		if h, ok := v.(insn.Handle); ok {
			mark(h.Owner, h.Name+h.Desc)
		}
	}

	for _, c := range a.Classes() {
		for _, m := range c.Methods {
			if m.Code == nil {
				continue
			}
			for n := range m.Code.All() {
				switch n := n.(type) {
				case *insn.Method:
					mark(n.Owner, n.Name+n.Desc)
				case *insn.InvokeDynamic:
					markConst(n.Bootstrap)
					for _, arg := range n.Args {
						markConst(arg)
					}
				case *insn.Ldc:
					markConst(n.Cst)
				}
			}
		}
	}
	return used
}

// inheritedSignatures returns name+desc of every method c could be
// overriding or implementing. Archive super classes contribute their
// non-private instance methods, archive interfaces all of theirs, and
// anything outside the archive is looked up in the platform table.
func inheritedSignatures(a *model.Archive, tab *platform.Table, c *model.Class) map[string]bool {
	out := make(map[string]bool)
	seen := map[string]bool{c.Name: true}

	var walk func(name string, viaInterface bool)
	walk = func(name string, viaInterface bool) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		sc, ok := a.Get(name)
		if !ok {
			for _, sig := range tab.Inherited(name) {
				out[sig] = true
			}
			return
		}
		for _, m := range sc.Methods {
			if !viaInterface && (m.Access.Has(model.AccPrivate) || m.Access.Has(model.AccStatic)) {
				continue
			}
			out[m.Key()] = true
		}
		walk(sc.Super, false)
		for _, i := range sc.Interfaces {
			walk(i, true)
		}
	}

	walk(c.Super, false)
	for _, i := range c.Interfaces {
		walk(i, true)
	}
	return out
}
