package diff

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/go-osmapi/coord"
	"github.com/omniscale/go-osmapi/element"
)

var (
	UnknownElement  = errors.New("element not registered or already deleted in this batch")
	AlreadyDeleted  = errors.New("element already deleted in this batch")
	VersionedCreate = errors.New("created element must not carry a version")
)

// DanglingRefError is returned by Build when a way or relation references
// a placeholder that is not part of the same batch.
type DanglingRefError struct {
	From element.Ref
	To   element.Ref
}

func (e *DanglingRefError) Error() string {
	return fmt.Sprintf("%s references %s, which is not part of this batch", e.From, e.To)
}

// Builder accumulates edit operations for a single batch.
//
// Created elements get a placeholder ID from a private decreasing counter.
// Placeholders are negative and therefore disjoint from all server assigned
// IDs. They stay unique for the lifetime of the Builder, the counter is not
// reset between batches.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	store           *element.Store
	nextPlaceholder int64
	changes         []Change
	deleted         map[element.Ref]bool
	bbox            coord.BBox
}

func NewBuilder(store *element.Store) *Builder {
	return &Builder{
		store:           store,
		nextPlaceholder: -1,
		deleted:         make(map[element.Ref]bool),
	}
}

// AddCreate registers el in the store under a fresh placeholder ID and
// records a create operation. The placeholder is returned so that later
// operations in the same batch can reference the new element (e.g. a way
// referencing a not yet committed node). el must not carry a version.
func (b *Builder) AddCreate(el element.Element) (int64, error) {
	change, err := newChange(el)
	if err != nil {
		return 0, err
	}
	if change.Version() != 0 {
		return 0, VersionedCreate
	}

	id := b.nextPlaceholder
	setID(el, id)
	if err := b.store.Register(el); err != nil {
		setID(el, 0)
		return 0, err
	}
	b.nextPlaceholder--

	change.Create = true
	b.changes = append(b.changes, change)
	if change.Node != nil {
		b.bbox.Extend(change.Node.Position)
	}
	return id, nil
}

// AddModify records a modify operation. el carries the last observed
// version and replaces the tracked state in the store. Fails with
// UnknownElement if the ID was never registered, is a placeholder, or was
// already deleted in this batch.
func (b *Builder) AddModify(el element.Element) error {
	change, err := newChange(el)
	if err != nil {
		return err
	}
	ref := el.Ref()
	if ref.ID <= 0 || b.deleted[ref] {
		return UnknownElement
	}
	old, err := b.store.Get(ref)
	if err != nil {
		return UnknownElement
	}
	if old != el {
		b.store.Remove(ref)
		if err := b.store.Register(el); err != nil {
			// undo, keep the old state tracked
			b.store.Register(old)
			return err
		}
	}

	change.Modify = true
	b.changes = append(b.changes, change)
	if change.Node != nil {
		b.bbox.Extend(change.Node.Position)
	}
	return nil
}

// AddDelete records a delete operation for the tracked element at ref,
// carrying the last observed version. Fails with UnknownElement for
// untracked or placeholder IDs and with AlreadyDeleted if a delete for the
// same element was already added.
func (b *Builder) AddDelete(ref element.Ref, version int32) error {
	if b.deleted[ref] {
		return AlreadyDeleted
	}
	if ref.ID <= 0 {
		return UnknownElement
	}
	if _, err := b.store.Get(ref); err != nil {
		return UnknownElement
	}

	meta := element.Meta{ID: ref.ID, Version: version}
	change := Change{Delete: true}
	switch ref.Type {
	case osm.NodeMember:
		change.Node = &element.Node{Meta: meta}
	case osm.WayMember:
		change.Way = &element.Way{Meta: meta}
	case osm.RelationMember:
		change.Rel = &element.Relation{Meta: meta}
	default:
		return element.UntypedElement
	}
	b.deleted[ref] = true
	b.changes = append(b.changes, change)
	return nil
}

// Build validates the batch and produces an immutable Package tagged with
// changesetID and a fresh upload token. Every placeholder referenced by a
// way or relation must belong to a create of the same batch, otherwise a
// DanglingRefError is returned.
//
// Build does not clear the batch. Call Clear only after the package was
// uploaded and reconciled, so a failed upload can be retried with the same
// placeholders.
func (b *Builder) Build(changesetID int64) (*Package, error) {
	created := make(map[element.Ref]bool)
	for i := range b.changes {
		if b.changes[i].Create {
			created[b.changes[i].Ref()] = true
		}
	}
	for i := range b.changes {
		c := &b.changes[i]
		if c.Delete {
			continue
		}
		if err := checkRefs(c, created); err != nil {
			return nil, err
		}
	}

	pkg := &Package{
		ChangesetID: changesetID,
		Token:       uuid.NewString(),
		BBox:        b.bbox,
	}
	for _, c := range b.changes {
		switch {
		case c.Create:
			pkg.Creates = append(pkg.Creates, c)
		case c.Modify:
			pkg.Modifies = append(pkg.Modifies, c)
		case c.Delete:
			pkg.Deletes = append(pkg.Deletes, c)
		}
	}
	return pkg, nil
}

// Clear drops all operations of the current batch. The placeholder counter
// keeps decreasing, IDs are never reused within one Builder.
func (b *Builder) Clear() {
	b.changes = nil
	b.deleted = make(map[element.Ref]bool)
	b.bbox = coord.BBox{}
}

// Len returns the number of operations in the current batch.
func (b *Builder) Len() int {
	return len(b.changes)
}

// BBox returns the bounding box accumulated from the node positions of the
// current batch.
func (b *Builder) BBox() coord.BBox {
	return b.bbox
}

func checkRefs(c *Change, created map[element.Ref]bool) error {
	switch {
	case c.Way != nil:
		for _, ref := range c.Way.Refs {
			if ref >= 0 {
				continue
			}
			to := element.Ref{Type: osm.NodeMember, ID: ref}
			if !created[to] {
				return &DanglingRefError{From: c.Way.Ref(), To: to}
			}
		}
	case c.Rel != nil:
		for _, m := range c.Rel.Members {
			if m.ID >= 0 {
				continue
			}
			to := element.Ref{Type: m.Type, ID: m.ID}
			if !created[to] {
				return &DanglingRefError{From: c.Rel.Ref(), To: to}
			}
		}
	}
	return nil
}

func newChange(el element.Element) (Change, error) {
	switch e := el.(type) {
	case *element.Node:
		return Change{Node: e}, nil
	case *element.Way:
		return Change{Way: e}, nil
	case *element.Relation:
		return Change{Rel: e}, nil
	case nil:
		return Change{}, element.NilElement
	}
	return Change{}, element.UntypedElement
}

func setID(el element.Element, id int64) {
	switch e := el.(type) {
	case *element.Node:
		e.ID = id
	case *element.Way:
		e.ID = id
	case *element.Relation:
		e.ID = id
	}
}
