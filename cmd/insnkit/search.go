package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/chazu/insnkit/insn"
	"github.com/chazu/insnkit/manifest"
	"github.com/chazu/insnkit/model"
	"github.com/chazu/insnkit/selector"
	"github.com/chazu/insnkit/store"
)

// ---------------------------------------------------------------------------
// insnkit search / insnkit runs
// ---------------------------------------------------------------------------

func handleSearch(e *env, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var filter methodFilter
	filter.register(fs)
	named := fs.String("q", "", "Run the named query from [queries] in insnkit.toml")
	record := fs.Bool("record", false, "Record findings in the findings database")
	dbPath := fs.String("db", "", "Findings database (default [output].findings)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: insnkit search [options] [archive] [query]\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	path, rest, err := e.archivePath(fs)
	if err != nil {
		return err
	}
	src, err := e.querySource(*named, rest)
	if err != nil {
		return err
	}
	q, err := selector.Compile(src)
	if err != nil {
		return err
	}

	a, err := e.loadArchive(path)
	if err != nil {
		return err
	}
	findings := searchArchive(a, q, filter)
	printFindings(os.Stdout, findings)
	log.Infof("%s: %d findings", q, len(findings))

	if !*record {
		return nil
	}
	s, err := e.openStore(*dbPath)
	if err != nil {
		return err
	}
	id, err := s.BeginRun(q.String())
	if err != nil {
		return err
	}
	if err := s.Record(id, findings...); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "recorded run %s in %s\n", id, s.Path())
	return nil
}

// querySource picks the query text: a named manifest query, or the
// remaining positional arguments joined by spaces.
func (e *env) querySource(named string, rest []string) (string, error) {
	if named != "" {
		if e.manifest == nil {
			return "", fmt.Errorf("query %q: no %s found", named, manifest.FileName)
		}
		src, ok := e.manifest.Query(named)
		if !ok {
			return "", fmt.Errorf("query %q: not defined in [queries]", named)
		}
		return src, nil
	}
	if len(rest) == 0 {
		return "", fmt.Errorf("search: no query given")
	}
	return strings.Join(rest, " "), nil
}

// searchArchive runs q over every selected method body and returns one
// finding per chain start.
func searchArchive(a *model.Archive, q *selector.Query, filter methodFilter) []store.Finding {
	var out []store.Finding
	filter.bodies(a, func(c *model.Class, m *model.Method) error {
		for _, chain := range q.SearchAll(m.Code) {
			out = append(out, store.Finding{
				Class:  c.Name,
				Method: m.Key(),
				Index:  m.Code.IndexOf(chain[0]),
				Text:   chainText(chain),
			})
		}
		return nil
	})
	return out
}

func chainText(chain []insn.Insn) string {
	parts := make([]string, len(chain))
	for i, n := range chain {
		parts[i] = insn.Format(n)
	}
	return strings.Join(parts, "; ")
}

func printFindings(w io.Writer, fs []store.Finding) {
	for _, f := range fs {
		fmt.Fprintf(w, "%s.%s @%d: %s\n", f.Class, f.Method, f.Index, f.Text)
	}
}

// openStore opens the findings database and closes it on exit.
func (e *env) openStore(path string) (*store.Store, error) {
	if path == "" && e.manifest != nil {
		path = e.manifest.FindingsPath()
	}
	if path == "" {
		return nil, fmt.Errorf("no findings database given and no %s found", manifest.FileName)
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	atexit.Register(func() {
		if err := s.Close(); err != nil {
			log.Errorf("closing %s: %s", path, err)
		}
	})
	return s, nil
}

func handleRuns(e *env, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "", "Findings database (default [output].findings)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: insnkit runs [options] [run-id]\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	s, err := e.openStore(*dbPath)
	if err != nil {
		return err
	}

	if fs.NArg() == 0 {
		runs, err := s.Runs()
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %s\n", r.ID, r.Started.Local().Format("2006-01-02 15:04:05"), r.Query)
		}
		return nil
	}

	r, err := s.Run(fs.Arg(0))
	if err != nil {
		return err
	}
	findings, err := s.Findings(r.ID)
	if err != nil {
		return err
	}
	fmt.Printf("run %s: %s (%d findings)\n", r.ID, r.Query, len(findings))
	printFindings(os.Stdout, findings)
	return nil
}
