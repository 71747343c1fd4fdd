package changeset

import (
	"errors"
	"fmt"

	"github.com/omniscale/go-osmapi/element"
)

var (
	AlreadyOpen = errors.New("changeset already opened")
	NotOpen     = errors.New("changeset not open")
	Closed      = errors.New("changeset closed")
)

// ConflictError reports a version conflict detected by the server: the
// uploaded edit was based on Expected, but the server already has Actual.
// Conflicts are never resolved automatically. The caller must re-fetch the
// element and decide how to merge.
type ConflictError struct {
	Ref      element.Ref
	Expected int32
	Actual   int32
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict on %s: based on %d, server has %d",
		e.Ref, e.Expected, e.Actual)
}
