// Package platform describes the classes an archive links against but does
// not contain: their super types and the method signatures subclasses may
// override. Tables are YAML files, one per platform version.
package platform

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed base.yaml
var baseTable []byte

// Table is a merged set of platform class entries.
type Table struct {
	Version string                `yaml:"version,omitempty"`
	Classes map[string]*ClassInfo `yaml:"classes"`
}

// ClassInfo is one platform class.
type ClassInfo struct {
	Super      string   `yaml:"super,omitempty"`
	Interfaces []string `yaml:"interfaces,omitempty"`
	Interface  bool     `yaml:"interface,omitempty"`
	Final      bool     `yaml:"final,omitempty"`
	Methods    []string `yaml:"methods,omitempty"` // name+desc
}

// Parse decodes a single YAML table.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("platform: %w", err)
	}
	if t.Classes == nil {
		t.Classes = make(map[string]*ClassInfo)
	}
	for name, c := range t.Classes {
		if c == nil {
			t.Classes[name] = &ClassInfo{}
		}
	}
	return &t, nil
}

// Base returns the built-in table covering the core java/lang types.
func Base() *Table {
	t, err := Parse(baseTable)
	if err != nil {
		panic(fmt.Sprintf("platform: bad built-in table: %v", err))
	}
	return t
}

// Load reads and merges tables in order, starting from the built-in base.
// A class listed in a later file replaces the earlier entry; the version is
// taken from the last file that sets one.
func Load(paths ...string) (*Table, error) {
	t := Base()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("platform: %w", err)
		}
		next, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("platform: %s: %w", path, err)
		}
		t.Merge(next)
	}
	return t, nil
}

// Merge copies other's entries into t, replacing entries of the same name.
func (t *Table) Merge(other *Table) {
	if other.Version != "" {
		t.Version = other.Version
	}
	for name, c := range other.Classes {
		t.Classes[name] = c
	}
}

// Has reports whether the table lists class.
func (t *Table) Has(class string) bool {
	_, ok := t.Classes[class]
	return ok
}

// Inherited returns the method signatures that class and its platform
// super types and interfaces declare, sorted. Unknown classes contribute
// nothing; cycles in a malformed table are tolerated.
func (t *Table) Inherited(class string) []string {
	seen := make(map[string]bool)
	sigs := make(map[string]bool)
	var walk func(string)
	walk = func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		c, ok := t.Classes[name]
		if !ok {
			return
		}
		for _, m := range c.Methods {
			sigs[m] = true
		}
		walk(c.Super)
		for _, i := range c.Interfaces {
			walk(i)
		}
	}
	walk(class)

	out := make([]string, 0, len(sigs))
	for s := range sigs {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Overrides reports whether a method with signature sig declared in a
// subclass of class would override a platform method.
func (t *Table) Overrides(class, sig string) bool {
	return slices.Contains(t.Inherited(class), sig)
}
