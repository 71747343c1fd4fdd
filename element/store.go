package element

import (
	"errors"

	osm "github.com/omniscale/go-osm"
)

var (
	NotFound       = errors.New("element not found")
	DuplicateID    = errors.New("element id already tracked")
	StaleMapping   = errors.New("mapping target no longer tracked")
	NilElement     = errors.New("nil element")
	UntypedElement = errors.New("element is not a node, way or relation")
)

// Store tracks the caller's working set of elements and their last known
// server versions. It is a plain in-memory map, elements are never written
// to disk or the network. A Store is not safe for concurrent use.
type Store struct {
	elements map[Ref]Element
}

func NewStore() *Store {
	return &Store{elements: make(map[Ref]Element)}
}

// Register adds an element to the working set. The element ID must not be
// tracked yet, otherwise DuplicateID is returned.
func (s *Store) Register(el Element) error {
	if el == nil {
		return NilElement
	}
	ref := el.Ref()
	if _, ok := s.elements[ref]; ok {
		return DuplicateID
	}
	s.elements[ref] = el
	return nil
}

// Get returns the tracked element for ref, or NotFound.
func (s *Store) Get(ref Ref) (Element, error) {
	el, ok := s.elements[ref]
	if !ok {
		return nil, NotFound
	}
	return el, nil
}

// Node returns the tracked node with the given ID, or NotFound.
func (s *Store) Node(id int64) (*Node, error) {
	el, err := s.Get(Ref{Type: osm.NodeMember, ID: id})
	if err != nil {
		return nil, err
	}
	return el.(*Node), nil
}

// Way returns the tracked way with the given ID, or NotFound.
func (s *Store) Way(id int64) (*Way, error) {
	el, err := s.Get(Ref{Type: osm.WayMember, ID: id})
	if err != nil {
		return nil, err
	}
	return el.(*Way), nil
}

// Relation returns the tracked relation with the given ID, or NotFound.
func (s *Store) Relation(id int64) (*Relation, error) {
	el, err := s.Get(Ref{Type: osm.RelationMember, ID: id})
	if err != nil {
		return nil, err
	}
	return el.(*Relation), nil
}

// ApplyMapping re-keys the element at old to newID and sets its version.
// Returns StaleMapping if old is no longer tracked.
func (s *Store) ApplyMapping(old Ref, newID int64, version int32) error {
	el, ok := s.elements[old]
	if !ok {
		return StaleMapping
	}
	delete(s.elements, old)
	switch e := el.(type) {
	case *Node:
		e.ID = newID
		e.Version = version
	case *Way:
		e.ID = newID
		e.Version = version
	case *Relation:
		e.ID = newID
		e.Version = version
	default:
		return UntypedElement
	}
	s.elements[el.Ref()] = el
	return nil
}

// Remove drops the element from the working set. Removing an untracked
// element is a no-op.
func (s *Store) Remove(ref Ref) {
	delete(s.elements, ref)
}

// Len returns the number of tracked elements.
func (s *Store) Len() int {
	return len(s.elements)
}

// Each calls fn for every tracked element. Order is undefined.
func (s *Store) Each(fn func(Element)) {
	for _, el := range s.elements {
		fn(el)
	}
}
