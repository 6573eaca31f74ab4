package billingresp

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCollection reports a lookup into a collection the response never contained.
	ErrMissingCollection = errors.New("missing collection")
	// ErrAmbiguousSelection reports a single-entity lookup into a multi-element collection
	// without a code.
	ErrAmbiguousSelection = errors.New("ambiguous selection")
)

// SelectionError is returned by entity lookups used incorrectly by the caller.
// Kind is ErrMissingCollection or ErrAmbiguousSelection.
type SelectionError struct {
	Kind       error
	Collection Key
}

func (e *SelectionError) Error() string {
	switch e.Kind {
	case ErrMissingCollection:
		return fmt.Sprintf("the response does not contain %s", e.Collection)
	case ErrAmbiguousSelection:
		return fmt.Sprintf("multiple %s; a code is required to disambiguate", e.Collection)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.Collection)
	}
}

func (e *SelectionError) Unwrap() error { return e.Kind }
