// Package diff builds server-ready change packages from local edit intent.
//
// A Builder collects create, modify and delete operations against an
// element.Store, hands out placeholder IDs for new elements and validates
// that all references inside the batch resolve. Build produces an immutable
// Package for upload; Reconcile applies the server's ID/version assignments
// back onto the store afterwards.
package diff

import (
	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/go-osmapi/element"
)

// A Change contains a single operation on a single element. Exactly one of
// Create, Modify, Delete is set, and exactly one of Node, Way, Rel.
type Change struct {
	Create bool
	Modify bool
	Delete bool
	Node   *element.Node
	Way    *element.Way
	Rel    *element.Relation
}

// Ref returns the reference of the changed element.
func (c *Change) Ref() element.Ref {
	switch {
	case c.Node != nil:
		return c.Node.Ref()
	case c.Way != nil:
		return c.Way.Ref()
	case c.Rel != nil:
		return c.Rel.Ref()
	}
	return element.Ref{}
}

// Element returns the changed element.
func (c *Change) Element() element.Element {
	switch {
	case c.Node != nil:
		return c.Node
	case c.Way != nil:
		return c.Way
	case c.Rel != nil:
		return c.Rel
	}
	return nil
}

// Version returns the expected version carried by the change, 0 for creates.
func (c *Change) Version() int32 {
	switch {
	case c.Node != nil:
		return c.Node.Version
	case c.Way != nil:
		return c.Way.Version
	case c.Rel != nil:
		return c.Rel.Version
	}
	return 0
}

// A Mapping is a single entry of an upload result: the server assigned
// NewID/Version to the element previously known as OldID. OldID is a
// placeholder for created elements and the unchanged ID for modified ones.
// Deleted elements carry no new ID or version.
type Mapping struct {
	Type    osm.MemberType
	OldID   int64
	NewID   int64
	Version int32
}

// Deleted reports whether the mapping acknowledges a delete.
func (m Mapping) Deleted() bool {
	return m.NewID == 0
}

// OldRef returns the pre-upload reference of the mapped element.
func (m Mapping) OldRef() element.Ref {
	return element.Ref{Type: m.Type, ID: m.OldID}
}
