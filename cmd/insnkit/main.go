// insnkit CLI - inspect, search and rewrite instruction archives
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/insnkit/manifest"
	"github.com/chazu/insnkit/model"
	"github.com/chazu/insnkit/platform"
)

var log = commonlog.GetLogger("insnkit.cli")

// env is what every subcommand gets: the project manifest, if one was found,
// and the global flags.
type env struct {
	manifest  *manifest.Manifest
	verbosity int
}

func main() {
	verbosity := flag.Int("v", -1, "Log verbosity (0 notice, 1 info, 2 debug); overrides [log].verbosity")
	dir := flag.String("C", ".", "Directory to search for insnkit.toml")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: insnkit [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  dump     Disassemble methods\n")
		fmt.Fprintf(os.Stderr, "  flow     Print the block graph of methods\n")
		fmt.Fprintf(os.Stderr, "  search   Run a selector query over every method body\n")
		fmt.Fprintf(os.Stderr, "  runs     List recorded search runs, or the findings of one run\n")
		fmt.Fprintf(os.Stderr, "  deob     Apply transforms and write the result\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  insnkit dump -class pkg/Foo app.insn\n")
		fmt.Fprintf(os.Stderr, "  insnkit search app.insn 'getfield[desc=I] putfield[desc=I]'\n")
		fmt.Fprintf(os.Stderr, "  insnkit deob -t flow,dead-code -o clean.insn app.insn\n")
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		atexit.Exit(2)
	}

	m, err := manifest.FindAndLoad(*dir)
	if err != nil {
		fatal(err)
	}
	e := &env{manifest: m, verbosity: *verbosity}
	e.configureLogging()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "dump":
		err = handleDump(e, args)
	case "flow":
		err = handleFlow(e, args)
	case "search":
		err = handleSearch(e, args)
	case "runs":
		err = handleRuns(e, args)
	case "deob":
		err = handleDeob(e, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		flag.Usage()
		atexit.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
	atexit.Exit(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	atexit.Exit(1)
}

func (e *env) configureLogging() {
	verbosity := 0
	var path *string
	if e.manifest != nil {
		verbosity = e.manifest.Log.Verbosity
		if p := e.manifest.LogPath(); p != "" {
			path = &p
		}
	}
	if e.verbosity >= 0 {
		verbosity = e.verbosity
	}
	commonlog.Configure(verbosity, path)
}

// archivePath picks the positional archive argument, falling back to the
// manifest's [input] archive.
func (e *env) archivePath(fs *flag.FlagSet) (string, []string, error) {
	args := fs.Args()
	if len(args) > 0 {
		return args[0], args[1:], nil
	}
	if e.manifest != nil && e.manifest.InputPath() != "" {
		return e.manifest.InputPath(), nil, nil
	}
	return "", nil, fmt.Errorf("%s: no archive given and no [input] archive in %s", fs.Name(), manifest.FileName)
}

func (e *env) loadArchive(path string) (*model.Archive, error) {
	a, err := model.ReadFile(path)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded %s (%d classes)", path, a.Len())
	return a, nil
}

func (e *env) platform() (*platform.Table, error) {
	if e.manifest == nil {
		return platform.Base(), nil
	}
	return platform.Load(e.manifest.PlatformPaths()...)
}
