package flow

import "errors"

var (
	// ErrUndefinedLabel is returned when a method body references a label it
	// never places. No graph is produced.
	ErrUndefinedLabel = errors.New("flow: jump to undefined label")

	// ErrDuplicateLabel is returned when a label is placed twice.
	ErrDuplicateLabel = errors.New("flow: label defined twice")
)
