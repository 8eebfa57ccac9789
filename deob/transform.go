// Package deob holds whole-archive rewrites built on the instruction list,
// the flow builder and the selector matcher.
package deob

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/chazu/insnkit/model"
	"github.com/chazu/insnkit/platform"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("insnkit.deob")

// ErrUnknownTransform is returned by Lookup for a name with no transform.
var ErrUnknownTransform = errors.New("deob: unknown transform")

// Transform rewrites an archive in place.
type Transform interface {
	Name() string
	Apply(a *model.Archive) error
}

// Pipeline runs transforms in order, stopping at the first failure.
type Pipeline struct {
	transforms []Transform
}

func NewPipeline(ts ...Transform) *Pipeline {
	return &Pipeline{transforms: ts}
}

func (p *Pipeline) Add(t Transform) { p.transforms = append(p.transforms, t) }

func (p *Pipeline) Len() int { return len(p.transforms) }

func (p *Pipeline) Name() string { return "pipeline" }

func (p *Pipeline) Apply(a *model.Archive) error {
	for _, t := range p.transforms {
		start := time.Now()
		log.Debugf("%s: start (%d classes)", t.Name(), a.Len())
		if err := t.Apply(a); err != nil {
			log.Errorf("%s: %s", t.Name(), err)
			return fmt.Errorf("deob: %s: %w", t.Name(), err)
		}
		log.Infof("%s: done in %s", t.Name(), time.Since(start).Round(time.Microsecond))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

var registry = map[string]func(tab *platform.Table) Transform{
	"flow":           func(*platform.Table) Transform { return FlowRebuild{} },
	"dead-code":      func(*platform.Table) Transform { return &DeadCode{} },
	"unused-methods": func(tab *platform.Table) Transform { return &UnusedMethods{Platform: tab} },
	"trace":          func(*platform.Table) Transform { return Trace{} },
}

// Names returns the transform names Lookup accepts, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Lookup returns a fresh transform by name. tab may be nil, in which case
// the built-in platform table is used where one is needed.
func Lookup(name string, tab *platform.Table) (Transform, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransform, name)
	}
	return mk(tab), nil
}

// eachBody calls f for every method that has code.
func eachBody(a *model.Archive, f func(c *model.Class, m *model.Method) error) error {
	for _, c := range a.Classes() {
		for _, m := range c.Methods {
			if m.Code == nil {
				continue
			}
			if err := f(c, m); err != nil {
				return fmt.Errorf("%s.%s: %w", c.Name, m.Key(), err)
			}
		}
	}
	return nil
}
