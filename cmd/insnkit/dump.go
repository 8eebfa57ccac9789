package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chazu/insnkit/flow"
	"github.com/chazu/insnkit/insn"
	"github.com/chazu/insnkit/model"
)

// ---------------------------------------------------------------------------
// insnkit dump / insnkit flow
// ---------------------------------------------------------------------------

// methodFilter selects methods by class name and method name (or name+desc).
type methodFilter struct {
	class  string
	method string
}

func (f *methodFilter) register(fs *flag.FlagSet) {
	fs.StringVar(&f.class, "class", "", "Only this class (internal name)")
	fs.StringVar(&f.method, "method", "", "Only methods with this name, or name+desc")
}

func (f methodFilter) match(c *model.Class, m *model.Method) bool {
	if f.class != "" && c.Name != f.class {
		return false
	}
	if f.method != "" && m.Name != f.method && m.Key() != f.method {
		return false
	}
	return true
}

// bodies calls fn for every method with code that passes the filter.
func (f methodFilter) bodies(a *model.Archive, fn func(c *model.Class, m *model.Method) error) error {
	for _, c := range a.Classes() {
		for _, m := range c.Methods {
			if m.Code == nil || !f.match(c, m) {
				continue
			}
			if err := fn(c, m); err != nil {
				return fmt.Errorf("%s.%s: %w", c.Name, m.Key(), err)
			}
		}
	}
	return nil
}

func handleDump(e *env, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	var filter methodFilter
	filter.register(fs)
	fs.Parse(args)

	path, _, err := e.archivePath(fs)
	if err != nil {
		return err
	}
	a, err := e.loadArchive(path)
	if err != nil {
		return err
	}
	return dump(os.Stdout, a, filter)
}

func dump(w io.Writer, a *model.Archive, filter methodFilter) error {
	return filter.bodies(a, func(c *model.Class, m *model.Method) error {
		fmt.Fprintf(w, "%s.%s  (stack %d, locals %d)\n", c.Name, m.Key(), m.MaxStack, m.MaxLocals)
		fmt.Fprint(w, insn.Disassemble(m.Code))
		for _, tc := range m.TryCatch {
			typ := tc.Type
			if typ == "" {
				typ = "any"
			}
			fmt.Fprintf(w, "    try [%d, %d) -> %d %s\n",
				m.Code.LabelIndex(tc.Start), m.Code.LabelIndex(tc.End), m.Code.LabelIndex(tc.Handler), typ)
		}
		fmt.Fprintln(w)
		return nil
	})
}

func handleFlow(e *env, args []string) error {
	fs := flag.NewFlagSet("flow", flag.ExitOnError)
	var filter methodFilter
	filter.register(fs)
	prune := fs.Bool("prune", false, "Drop unreachable blocks before printing")
	fs.Parse(args)

	path, _, err := e.archivePath(fs)
	if err != nil {
		return err
	}
	a, err := e.loadArchive(path)
	if err != nil {
		return err
	}
	return printFlow(os.Stdout, a, filter, *prune)
}

func printFlow(w io.Writer, a *model.Archive, filter methodFilter, prune bool) error {
	return filter.bodies(a, func(c *model.Class, m *model.Method) error {
		g, err := flow.Build(m.Code, m.Pins()...)
		if err != nil {
			return err
		}
		if prune {
			if n := g.Prune(); n > 0 {
				log.Infof("%s.%s: pruned %d blocks", c.Name, m.Key(), n)
			}
		}

		names := make(map[*flow.Block]string, len(g.Blocks))
		for i, b := range g.Blocks {
			names[b] = fmt.Sprintf("B%d", i)
		}
		live := g.Reachable()

		fmt.Fprintf(w, "%s.%s  (%d blocks)\n", c.Name, m.Key(), len(g.Blocks))
		for _, b := range g.Blocks {
			var flags []string
			if b.Pinned() {
				flags = append(flags, "pinned")
			}
			if !live[b] {
				flags = append(flags, "dead")
			}
			if len(b.Stack) > 0 {
				flags = append(flags, "stack="+strings.Join(b.Stack, ","))
			}
			fmt.Fprintf(w, "  %s", names[b])
			if len(flags) > 0 {
				fmt.Fprintf(w, " [%s]", strings.Join(flags, " "))
			}
			fmt.Fprintf(w, "  preds=%s succs=%s\n", blockNames(names, b.Preds), blockNames(names, b.Successors()))
			for _, n := range b.Insns[1:] {
				fmt.Fprintf(w, "      %s\n", insn.Format(n))
			}
			if b.Exit != 0 && b.Target != nil {
				fmt.Fprintf(w, "      %s %s\n", b.Exit, names[b.Target])
			}
		}
		fmt.Fprintln(w)
		return nil
	})
}

func blockNames(names map[*flow.Block]string, bs []*flow.Block) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = names[b]
	}
	return "[" + strings.Join(parts, " ") + "]"
}
