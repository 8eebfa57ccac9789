package insn

import "errors"

var (
	// ErrIndexOutOfRange is returned by List.Get for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("insn: index out of range")

	// ErrNotMember is returned when a node or anchor does not belong to the list.
	ErrNotMember = errors.New("insn: node is not a member of this list")

	// ErrAlreadyOwned is returned when inserting a node that already belongs to a list.
	ErrAlreadyOwned = errors.New("insn: node already belongs to a list")

	// ErrUnmappedLabel is returned by clone operations when the label map has
	// no entry for a referenced label.
	ErrUnmappedLabel = errors.New("insn: label missing from clone mapping")

	// ErrSelfSplice is returned when a list is spliced into itself.
	ErrSelfSplice = errors.New("insn: cannot splice a list into itself")
)
