package insn

import (
	"fmt"
	"sync/atomic"
)

// Label is an identity-only marker naming a jump target or a block boundary.
// Labels are handles: analyses attach data to them through side tables
// keyed by Label rather than through fields on the label itself.
// The zero Label is never allocated.
type Label uint64

var labelSeq atomic.Uint64

// NewLabel allocates a process-unique label.
func NewLabel() Label {
	return Label(labelSeq.Add(1))
}

func (l Label) String() string {
	return fmt.Sprintf("label#%d", uint64(l))
}

// LabelMap translates labels when cloning instructions. A map used to clone
// a whole list must be total over the labels the list mentions and must not
// send two labels to the same clone.
type LabelMap map[Label]Label

func (m LabelMap) lookup(l Label) (Label, error) {
	if c, ok := m[l]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnmappedLabel, l)
}

func (m LabelMap) lookupAll(ls []Label) ([]Label, error) {
	if ls == nil {
		return nil, nil
	}
	out := make([]Label, len(ls))
	for i, l := range ls {
		c, err := m.lookup(l)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// FreshLabelMap returns a mapping from every label defined or referenced in
// l to a newly allocated label.
func FreshLabelMap(l *List) LabelMap {
	m := make(LabelMap)
	for n := l.First(); n != nil; n = n.Next() {
		for _, lbl := range n.Labels() {
			if _, ok := m[lbl]; !ok {
				m[lbl] = NewLabel()
			}
		}
	}
	return m
}
