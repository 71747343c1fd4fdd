// Package element holds the working set of OSM elements for an edit
// session: nodes, ways and relations with their last known server version.
package element

import (
	"fmt"

	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/go-osmapi/coord"
)

// Tags is a collection of key=values, describing the OSM element.
type Tags = osm.Tags

// Ref identifies a single element. Nodes, ways and relations have separate
// ID spaces in OSM, so an ID alone is not unique.
type Ref struct {
	Type osm.MemberType
	ID   int64
}

func (r Ref) String() string {
	switch r.Type {
	case osm.NodeMember:
		return fmt.Sprintf("node %d", r.ID)
	case osm.WayMember:
		return fmt.Sprintf("way %d", r.ID)
	case osm.RelationMember:
		return fmt.Sprintf("relation %d", r.ID)
	}
	return fmt.Sprintf("unknown %d", r.ID)
}

// Meta contains the information shared by all element types.
// Version is the last version observed from the server, 0 for elements
// that were never uploaded.
type Meta struct {
	ID      int64
	Version int32
	Tags    Tags
}

// An Element is a *Node, *Way or *Relation.
type Element interface {
	Ref() Ref
}

// A Node contains a single coordinate.
type Node struct {
	Meta
	Position coord.Coordinates
}

func (n *Node) Ref() Ref { return Ref{Type: osm.NodeMember, ID: n.ID} }

// A Way references one or more nodes by ID.
type Way struct {
	Meta
	// Refs is the ordered list of all node IDs that define this way.
	// Negative IDs reference nodes created in the same batch.
	Refs []int64
}

func (w *Way) Ref() Ref { return Ref{Type: osm.WayMember, ID: w.ID} }

// IsClosed returns whether the first and last nodes are the same.
func (w *Way) IsClosed() bool {
	return len(w.Refs) >= 4 && w.Refs[0] == w.Refs[len(w.Refs)-1]
}

// A Member is a single entry of a relation.
type Member struct {
	ID   int64
	Type osm.MemberType
	// Role of the member, like "inner", "outer", "stop". Interpretation
	// depends on the relation type.
	Role string
}

// A Relation is an ordered collection of members.
type Relation struct {
	Meta
	Members []Member
}

func (r *Relation) Ref() Ref { return Ref{Type: osm.RelationMember, ID: r.ID} }
