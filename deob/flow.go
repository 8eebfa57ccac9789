package deob

import (
	"github.com/chazu/insnkit/flow"
	"github.com/chazu/insnkit/model"
)

// FlowRebuild replaces every method body with its flattened block graph.
// Exception-table labels are pinned so they survive.
type FlowRebuild struct{}

func (FlowRebuild) Name() string { return "flow" }

func (FlowRebuild) Apply(a *model.Archive) error {
	return eachBody(a, func(_ *model.Class, m *model.Method) error {
		_, err := flow.Rebuild(m.Code, m.Pins()...)
		return err
	})
}

// DeadCode drops blocks unreachable from the entry or an exception handler.
type DeadCode struct {
	Removed int // blocks removed by the last Apply
}

func (*DeadCode) Name() string { return "dead-code" }

func (d *DeadCode) Apply(a *model.Archive) error {
	d.Removed = 0
	err := eachBody(a, func(c *model.Class, m *model.Method) error {
		g, err := flow.Build(m.Code, m.Pins()...)
		if err != nil {
			return err
		}
		n := g.Prune()
		flat, err := g.Flatten()
		if err != nil {
			return err
		}
		m.Code.Clear()
		if err := m.Code.AppendList(flat); err != nil {
			return err
		}
		if n > 0 {
			log.Debugf("%s.%s: pruned %d blocks", c.Name, m.Key(), n)
		}
		d.Removed += n
		return nil
	})
	if err != nil {
		return err
	}
	log.Noticef("removed %d unreachable blocks", d.Removed)
	return nil
}
