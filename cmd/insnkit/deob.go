package main

import (
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/chazu/insnkit/deob"
	"github.com/chazu/insnkit/model"
)

// ---------------------------------------------------------------------------
// insnkit deob
// ---------------------------------------------------------------------------

// renames collects repeated -rename-class old=new flags.
type renames map[string]string

func (r renames) String() string {
	parts := make([]string, 0, len(r))
	for _, from := range slices.Sorted(maps.Keys(r)) {
		parts = append(parts, from+"="+r[from])
	}
	return strings.Join(parts, ",")
}

func (r renames) Set(s string) error {
	from, to, err := parseRename(s)
	if err != nil {
		return err
	}
	r[from] = to
	return nil
}

// parseFieldRef splits "owner.field" at the last dot.
func parseFieldRef(s string) (string, string, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("field %q: want owner.field", s)
	}
	return s[:i], s[i+1:], nil
}

func parseRename(s string) (string, string, error) {
	from, to, ok := strings.Cut(s, "=")
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if !ok || from == "" || to == "" {
		return "", "", fmt.Errorf("rename %q: want old=new", s)
	}
	return from, to, nil
}

func handleDeob(e *env, args []string) error {
	fs := flag.NewFlagSet("deob", flag.ExitOnError)
	transforms := fs.String("t", "", "Comma-separated transforms (default [transforms].enabled); one of "+strings.Join(deob.Names(), ", "))
	output := fs.String("o", "", "Output archive (default [output].archive)")
	dryRun := fs.Bool("n", false, "Run the transforms but write nothing")
	ren := renames{}
	fs.Var(ren, "rename-class", "Rename a class, old=new (repeatable)")
	fieldRen := renames{}
	fs.Var(fieldRen, "rename-field", "Rename a field, owner.old=new (repeatable)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: insnkit deob [options] [archive]\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	path, _, err := e.archivePath(fs)
	if err != nil {
		return err
	}
	out := *output
	if out == "" && e.manifest != nil {
		out = e.manifest.OutputPath()
	}
	if out == "" && !*dryRun {
		return fmt.Errorf("deob: no output given (-o or [output].archive)")
	}

	names := e.transformNames(*transforms)
	p, err := e.pipeline(names, ren, fieldRen)
	if err != nil {
		return err
	}

	a, err := e.loadArchive(path)
	if err != nil {
		return err
	}
	if err := p.Apply(a); err != nil {
		return err
	}
	if *dryRun {
		log.Noticef("dry run: %d transforms applied, nothing written", p.Len())
		return nil
	}
	if err := model.WriteFile(out, a); err != nil {
		return err
	}
	log.Noticef("wrote %s (%d classes)", out, a.Len())
	return nil
}

func (e *env) transformNames(flagValue string) []string {
	if flagValue == "" {
		if e.manifest != nil {
			return e.manifest.Transforms.Enabled
		}
		return []string{"flow"}
	}
	var names []string
	for _, n := range strings.Split(flagValue, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// pipeline assembles the named transforms, then field renames, then class
// renames. Field keys name classes as they are before any class rename.
// Renames come from the manifest and the command line; the command line
// wins.
func (e *env) pipeline(names []string, classes, fields renames) (*deob.Pipeline, error) {
	tab, err := e.platform()
	if err != nil {
		return nil, err
	}
	p := deob.NewPipeline()
	for _, name := range names {
		t, err := deob.Lookup(name, tab)
		if err != nil {
			return nil, err
		}
		p.Add(t)
	}

	allFields, allClasses := renames{}, renames{}
	if e.manifest != nil {
		maps.Copy(allFields, e.manifest.Transforms.RenameField)
		maps.Copy(allClasses, e.manifest.Transforms.RenameClass)
	}
	maps.Copy(allFields, fields)
	maps.Copy(allClasses, classes)

	for _, ref := range slices.Sorted(maps.Keys(allFields)) {
		owner, from, err := parseFieldRef(ref)
		if err != nil {
			return nil, err
		}
		p.Add(deob.RenameField{Owner: owner, From: from, To: allFields[ref]})
	}
	for _, from := range slices.Sorted(maps.Keys(allClasses)) {
		p.Add(deob.RenameClass{From: from, To: allClasses[from]})
	}
	return p, nil
}
