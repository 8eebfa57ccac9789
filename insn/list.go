package insn

import (
	"fmt"
	"iter"
)

// List is an ordered, mutable sequence of instruction nodes: a doubly linked
// chain with a position cache that every structural edit invalidates. The
// cache is rebuilt lazily on the next indexed read.
//
// A List is not safe for concurrent mutation. Concurrent reads of an
// unmodified list are safe once its cache is warm (call ToArray first).
type List struct {
	head  Insn
	tail  Insn
	size  int
	cache []Insn // nil when stale
}

// NewList returns a list holding the given nodes in order.
func NewList(nodes ...Insn) (*List, error) {
	l := &List{}
	for _, n := range nodes {
		if err := l.Append(n); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Len returns the number of nodes in the list.
func (l *List) Len() int { return l.size }

// First returns the head node, or nil when the list is empty.
func (l *List) First() Insn { return l.head }

// Last returns the tail node, or nil when the list is empty.
func (l *List) Last() Insn { return l.tail }

// Contains reports whether n is a member of l.
func (l *List) Contains(n Insn) bool {
	return n != nil && n.node().list == l
}

func (l *List) invalidate() { l.cache = nil }

func (l *List) checkMember(n Insn) error {
	if !l.Contains(n) {
		return fmt.Errorf("%w: %s", ErrNotMember, Format(n))
	}
	return nil
}

func checkFree(n Insn) error {
	if n.node().list != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyOwned, Format(n))
	}
	return nil
}

// link places the unattached node n between prev and next, either of which
// may be nil at the list boundary.
func (l *List) link(prev, n, next Insn) {
	b := n.node()
	b.prev, b.next, b.list = prev, next, l
	if prev == nil {
		l.head = n
	} else {
		prev.node().next = n
	}
	if next == nil {
		l.tail = n
	} else {
		next.node().prev = n
	}
	l.size++
	l.invalidate()
}

func (l *List) unlink(n Insn) {
	b := n.node()
	if b.prev == nil {
		l.head = b.next
	} else {
		b.prev.node().next = b.next
	}
	if b.next == nil {
		l.tail = b.prev
	} else {
		b.next.node().prev = b.prev
	}
	b.prev, b.next, b.list, b.index = nil, nil, nil, 0
	l.size--
	l.invalidate()
}

// Append adds n at the tail.
func (l *List) Append(n Insn) error {
	if err := checkFree(n); err != nil {
		return err
	}
	l.link(l.tail, n, nil)
	return nil
}

// Prepend adds n at the head.
func (l *List) Prepend(n Insn) error {
	if err := checkFree(n); err != nil {
		return err
	}
	l.link(nil, n, l.head)
	return nil
}

// InsertBefore places n immediately before the member anchor.
func (l *List) InsertBefore(anchor, n Insn) error {
	if err := l.checkMember(anchor); err != nil {
		return err
	}
	if err := checkFree(n); err != nil {
		return err
	}
	l.link(anchor.Prev(), n, anchor)
	return nil
}

// InsertAfter places n immediately after the member anchor.
func (l *List) InsertAfter(anchor, n Insn) error {
	if err := l.checkMember(anchor); err != nil {
		return err
	}
	if err := checkFree(n); err != nil {
		return err
	}
	l.link(anchor, n, anchor.Next())
	return nil
}

// splice moves every node of sub between prev and next and leaves sub empty.
func (l *List) splice(prev Insn, sub *List, next Insn) error {
	if sub == l {
		return ErrSelfSplice
	}
	if sub.size == 0 {
		return nil
	}
	for n := sub.head; n != nil; n = n.Next() {
		n.node().list = l
	}
	first, last := sub.head, sub.tail
	first.node().prev = prev
	last.node().next = next
	if prev == nil {
		l.head = first
	} else {
		prev.node().next = first
	}
	if next == nil {
		l.tail = last
	} else {
		next.node().prev = last
	}
	l.size += sub.size
	l.invalidate()

	sub.head, sub.tail, sub.size = nil, nil, 0
	sub.invalidate()
	return nil
}

// InsertListBefore moves every node of sub in front of the member anchor.
// sub is left empty.
func (l *List) InsertListBefore(anchor Insn, sub *List) error {
	if err := l.checkMember(anchor); err != nil {
		return err
	}
	return l.splice(anchor.Prev(), sub, anchor)
}

// InsertListAfter moves every node of sub behind the member anchor.
// sub is left empty.
func (l *List) InsertListAfter(anchor Insn, sub *List) error {
	if err := l.checkMember(anchor); err != nil {
		return err
	}
	return l.splice(anchor, sub, anchor.Next())
}

// AppendList moves every node of sub to the tail of l. sub is left empty.
func (l *List) AppendList(sub *List) error {
	return l.splice(l.tail, sub, nil)
}

// PrependList moves every node of sub to the head of l. sub is left empty.
func (l *List) PrependList(sub *List) error {
	return l.splice(nil, sub, l.head)
}

// Remove detaches n from the list. The node becomes unattached and may be
// inserted elsewhere.
func (l *List) Remove(n Insn) error {
	if err := l.checkMember(n); err != nil {
		return err
	}
	l.unlink(n)
	return nil
}

// Set replaces the member old with the unattached node n at the same position.
func (l *List) Set(old, n Insn) error {
	if err := l.checkMember(old); err != nil {
		return err
	}
	if err := checkFree(n); err != nil {
		return err
	}
	prev, next := old.Prev(), old.Next()
	l.unlink(old)
	l.link(prev, n, next)
	return nil
}

// Clear detaches every node and resets the list to empty.
func (l *List) Clear() {
	for n := l.head; n != nil; {
		b := n.node()
		next := b.next
		b.prev, b.next, b.list, b.index = nil, nil, nil, 0
		n = next
	}
	l.head, l.tail, l.size = nil, nil, 0
	l.invalidate()
}

func (l *List) warm() []Insn {
	if l.cache != nil {
		return l.cache
	}
	cache := make([]Insn, 0, l.size)
	i := 0
	for n := l.head; n != nil; n = n.Next() {
		n.node().index = i
		cache = append(cache, n)
		i++
	}
	l.cache = cache
	return cache
}

// Get returns the node at position i.
func (l *List) Get(i int) (Insn, error) {
	if i < 0 || i >= l.size {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, l.size)
	}
	return l.warm()[i], nil
}

// IndexOf returns the position of n, or -1 when n is not a member.
func (l *List) IndexOf(n Insn) int {
	if !l.Contains(n) {
		return -1
	}
	l.warm()
	return n.node().index
}

// ToArray returns the nodes in order. The slice is a copy.
func (l *List) ToArray() []Insn {
	return append([]Insn(nil), l.warm()...)
}

// LabelIndex returns the position of the marker defining lbl, or -1.
func (l *List) LabelIndex(lbl Label) int {
	for i, n := range l.warm() {
		if m, ok := n.(*Mark); ok && m.Label == lbl {
			return i
		}
	}
	return -1
}

// All iterates the nodes in order. Removing the node currently yielded is
// allowed; other structural edits during iteration are not.
func (l *List) All() iter.Seq[Insn] {
	return func(yield func(Insn) bool) {
		for n := l.head; n != nil; {
			next := n.Next()
			if !yield(n) {
				return
			}
			n = next
		}
	}
}

// Clone returns an independent copy of l with every label translated
// through m. m must be total over the labels l mentions.
func (l *List) Clone(m LabelMap) (*List, error) {
	out := &List{}
	for n := l.head; n != nil; n = n.Next() {
		c, err := n.Clone(m)
		if err != nil {
			return nil, fmt.Errorf("clone %s: %w", Format(n), err)
		}
		out.link(out.tail, c, nil)
	}
	return out, nil
}

// Accept replays the list as events into v, bracketed by VisitCode and
// VisitEnd.
func (l *List) Accept(v Visitor) error {
	v.VisitCode()
	for n := l.head; n != nil; n = n.Next() {
		n.accept(v)
	}
	return v.VisitEnd()
}

func (l *List) String() string {
	return Disassemble(l)
}
