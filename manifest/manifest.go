// Package manifest handles insnkit.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/chazu/insnkit/selector"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "insnkit.toml"

// Manifest represents an insnkit.toml project configuration.
type Manifest struct {
	Project    Project           `toml:"project"`
	Input      Input             `toml:"input"`
	Platform   Platform          `toml:"platform"`
	Transforms Transforms        `toml:"transforms"`
	Queries    map[string]string `toml:"queries"`
	Output     Output            `toml:"output"`
	Log        Log               `toml:"log"`

	// Dir is the directory containing the insnkit.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Input names the archive to operate on.
type Input struct {
	Archive string `toml:"archive"`
}

// Platform lists the platform tables merged over the built-in base.
type Platform struct {
	Tables []string `toml:"tables"`
}

// Transforms configures the deob pipeline.
type Transforms struct {
	Enabled []string `toml:"enabled"`

	// RenameClass maps old internal class names to new ones.
	RenameClass map[string]string `toml:"rename-class"`

	// RenameField maps "owner.field" to a new field name.
	RenameField map[string]string `toml:"rename-field"`
}

// Output configures where results are written.
type Output struct {
	Archive  string `toml:"archive"`
	Findings string `toml:"findings"`
}

// Log configures logging.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Load parses an insnkit.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Transforms.Enabled) == 0 {
		m.Transforms.Enabled = []string{"flow"}
	}
	if m.Output.Findings == "" {
		m.Output.Findings = filepath.Join(".insnkit", "findings.db")
	}

	if err := m.checkQueries(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find an insnkit.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// checkQueries compiles every named query so bad selectors fail at load.
func (m *Manifest) checkQueries() error {
	for _, name := range m.QueryNames() {
		if _, err := selector.Compile(m.Queries[name]); err != nil {
			return fmt.Errorf("query %q: %w", name, err)
		}
	}
	return nil
}

// QueryNames returns the names of the configured queries, sorted.
func (m *Manifest) QueryNames() []string {
	names := make([]string, 0, len(m.Queries))
	for name := range m.Queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Query returns the selector text for a named query.
func (m *Manifest) Query(name string) (string, bool) {
	q, ok := m.Queries[name]
	return q, ok
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// InputPath returns the absolute path of the input archive.
func (m *Manifest) InputPath() string { return m.resolve(m.Input.Archive) }

// OutputPath returns the absolute path of the output archive.
func (m *Manifest) OutputPath() string { return m.resolve(m.Output.Archive) }

// FindingsPath returns the absolute path of the findings database.
func (m *Manifest) FindingsPath() string { return m.resolve(m.Output.Findings) }

// LogPath returns the absolute path of the log file, or "" for stderr.
func (m *Manifest) LogPath() string { return m.resolve(m.Log.File) }

// PlatformPaths returns absolute paths for the configured platform tables.
func (m *Manifest) PlatformPaths() []string {
	var paths []string
	for _, t := range m.Platform.Tables {
		paths = append(paths, m.resolve(t))
	}
	return paths
}
