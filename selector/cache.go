package selector

import (
	"errors"
	"strconv"
	"strings"
	"sync"
)

// Compiled queries live for the life of the process. Entries are never
// evicted; population is guarded so concurrent first compiles of the same
// text agree on one *Query.
var cache = struct {
	sync.RWMutex
	queries map[string]*Query
	steps   map[string]*Step
}{
	queries: make(map[string]*Query),
	steps:   make(map[string]*Step),
}

// Compile returns the compiled query for src, parsing it on first use.
func Compile(src string) (*Query, error) {
	cache.RLock()
	q, ok := cache.queries[src]
	cache.RUnlock()
	if ok {
		return q, nil
	}

	parsed, err := Parse(src)
	if err != nil {
		return nil, err
	}

	cache.Lock()
	defer cache.Unlock()
	if q, ok := cache.queries[src]; ok {
		return q, nil
	}
	cache.queries[src] = parsed
	return parsed, nil
}

// MustCompile is like Compile but panics on a syntax error.
func MustCompile(src string) *Query {
	q, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return q
}

// CompileSteps builds a query from one step per argument. Each step is
// cached on its own, so queries sharing steps share compiled patterns.
func CompileSteps(steps ...string) (*Query, error) {
	if len(steps) == 0 {
		return nil, &SyntaxError{Msg: "empty query"}
	}
	q := &Query{Source: strings.Join(steps, " ")}
	offset := 0
	for _, src := range steps {
		s, err := compileStep(src)
		if err != nil {
			var se *SyntaxError
			if errors.As(err, &se) {
				err = &SyntaxError{Offset: offset + se.Offset, Msg: se.Msg}
			}
			return nil, err
		}
		q.Steps = append(q.Steps, *s)
		offset += len(src) + 1
	}
	return q, nil
}

func compileStep(src string) (*Step, error) {
	cache.RLock()
	s, ok := cache.steps[src]
	cache.RUnlock()
	if ok {
		return s, nil
	}

	parsed, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if len(parsed.Steps) != 1 {
		return nil, &SyntaxError{Offset: 0, Msg: "expected a single step, got " + strconv.Itoa(len(parsed.Steps))}
	}

	cache.Lock()
	defer cache.Unlock()
	if s, ok := cache.steps[src]; ok {
		return s, nil
	}
	s = &parsed.Steps[0]
	cache.steps[src] = s
	return s, nil
}
