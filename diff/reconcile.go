package diff

import (
	"fmt"

	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/go-osmapi/element"
)

// ReconcileError is returned when an upload result does not match the local
// state. The store is left untouched in that case.
type ReconcileError struct {
	Ref    element.Ref
	Reason string
}

func (e *ReconcileError) Error() string {
	return fmt.Sprintf("cannot reconcile %s: %s", e.Ref, e.Reason)
}

// Reconcile applies the ID/version mappings of a successful upload to the
// store: created elements are re-keyed from their placeholder to the server
// assigned ID, modified elements get their new version, deleted elements
// are dropped, and all placeholder references inside tracked ways and
// relations are replaced with the mapped real IDs.
//
// Reconciliation is all or nothing. Every mapping is validated against the
// store before any change is applied; if a target is missing or mapped
// twice, a ReconcileError is returned and the store stays as it was.
func Reconcile(store *element.Store, mappings []Mapping) error {
	// stage: everything that can fail is checked here
	seen := make(map[element.Ref]bool, len(mappings))
	assigned := make(map[element.Ref]int64)
	for _, m := range mappings {
		old := m.OldRef()
		if seen[old] {
			return &ReconcileError{Ref: old, Reason: "mapped twice"}
		}
		seen[old] = true
		if _, err := store.Get(old); err != nil {
			return &ReconcileError{Ref: old, Reason: "not tracked in element store"}
		}
		if old.ID < 0 && !m.Deleted() {
			assigned[old] = m.NewID
		}
	}

	// commit: replace placeholder references first, the re-keying below
	// only changes map keys, not the refs inside ways and relations
	store.Each(func(el element.Element) {
		switch e := el.(type) {
		case *element.Way:
			for i, ref := range e.Refs {
				if ref >= 0 {
					continue
				}
				if id, ok := assigned[element.Ref{Type: osm.NodeMember, ID: ref}]; ok {
					e.Refs[i] = id
				}
			}
		case *element.Relation:
			for i, m := range e.Members {
				if m.ID >= 0 {
					continue
				}
				if id, ok := assigned[element.Ref{Type: m.Type, ID: m.ID}]; ok {
					e.Members[i].ID = id
				}
			}
		}
	})

	for _, m := range mappings {
		if m.Deleted() {
			store.Remove(m.OldRef())
			continue
		}
		if err := store.ApplyMapping(m.OldRef(), m.NewID, m.Version); err != nil {
			// unreachable after staging, targets were validated above
			return &ReconcileError{Ref: m.OldRef(), Reason: err.Error()}
		}
	}
	return nil
}
