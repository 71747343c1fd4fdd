package diff

import (
	"testing"

	osm "github.com/omniscale/go-osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniscale/go-osmapi/element"
)

// Create a node and a way referencing its placeholder in one batch, then
// reconcile with server assigned IDs: the way must end up referencing the
// real node ID and no placeholder may remain in the store.
func TestReconcileRoundTrip(t *testing.T) {
	store := element.NewStore()
	builder := NewBuilder(store)

	nodeID, err := builder.AddCreate(testNode(1.0, 2.0))
	require.NoError(t, err)
	wayID, err := builder.AddCreate(&element.Way{Refs: []int64{nodeID}})
	require.NoError(t, err)

	_, err = builder.Build(1)
	require.NoError(t, err)

	mappings := []Mapping{
		{Type: osm.NodeMember, OldID: nodeID, NewID: 501, Version: 1},
		{Type: osm.WayMember, OldID: wayID, NewID: 900, Version: 1},
	}
	require.NoError(t, Reconcile(store, mappings))

	way, err := store.Way(900)
	require.NoError(t, err)
	assert.Equal(t, []int64{501}, way.Refs)
	assert.Equal(t, int32(1), way.Version)

	node, err := store.Node(501)
	require.NoError(t, err)
	assert.Equal(t, int32(1), node.Version)

	store.Each(func(el element.Element) {
		assert.GreaterOrEqual(t, el.Ref().ID, int64(0), "placeholder left in store")
	})
}

func TestReconcileModifyAndDelete(t *testing.T) {
	store := element.NewStore()

	node := testNode(1.0, 2.0)
	node.ID = 10
	node.Version = 2
	require.NoError(t, store.Register(node))
	way := &element.Way{Meta: element.Meta{ID: 20, Version: 1}, Refs: []int64{10}}
	require.NoError(t, store.Register(way))

	mappings := []Mapping{
		{Type: osm.NodeMember, OldID: 10, NewID: 10, Version: 3},
		{Type: osm.WayMember, OldID: 20}, // deleted
	}
	require.NoError(t, Reconcile(store, mappings))

	got, err := store.Node(10)
	require.NoError(t, err)
	assert.Equal(t, int32(3), got.Version)

	_, err = store.Way(20)
	assert.Equal(t, element.NotFound, err)
}

func TestReconcileMissingTarget(t *testing.T) {
	store := element.NewStore()

	node := testNode(1.0, 2.0)
	node.ID = -1
	require.NoError(t, store.Register(node))

	mappings := []Mapping{
		{Type: osm.NodeMember, OldID: -1, NewID: 501, Version: 1},
		{Type: osm.WayMember, OldID: -2, NewID: 900, Version: 1},
	}
	err := Reconcile(store, mappings)
	var rerr *ReconcileError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, int64(-2), rerr.Ref.ID)

	// all or nothing: the node mapping was not applied either
	tracked, err := store.Node(-1)
	require.NoError(t, err)
	assert.Equal(t, int32(0), tracked.Version)
	_, err = store.Node(501)
	assert.Equal(t, element.NotFound, err)
}

func TestReconcileDuplicateMapping(t *testing.T) {
	store := element.NewStore()
	node := testNode(1.0, 2.0)
	node.ID = -1
	require.NoError(t, store.Register(node))

	mappings := []Mapping{
		{Type: osm.NodeMember, OldID: -1, NewID: 501, Version: 1},
		{Type: osm.NodeMember, OldID: -1, NewID: 502, Version: 1},
	}
	var rerr *ReconcileError
	require.ErrorAs(t, Reconcile(store, mappings), &rerr)

	// store untouched
	_, err := store.Node(-1)
	assert.NoError(t, err)
}

// A placeholder reference in a relation tracked outside the batch must be
// rewritten as well.
func TestReconcileRewritesMembers(t *testing.T) {
	store := element.NewStore()
	builder := NewBuilder(store)

	nodeID, err := builder.AddCreate(testNode(1.0, 2.0))
	require.NoError(t, err)
	relID, err := builder.AddCreate(&element.Relation{
		Members: []element.Member{
			{ID: nodeID, Type: osm.NodeMember, Role: "stop"},
			{ID: 77, Type: osm.WayMember, Role: "platform"},
		},
	})
	require.NoError(t, err)

	mappings := []Mapping{
		{Type: osm.NodeMember, OldID: nodeID, NewID: 501, Version: 1},
		{Type: osm.RelationMember, OldID: relID, NewID: 300, Version: 1},
	}
	require.NoError(t, Reconcile(store, mappings))

	rel, err := store.Relation(300)
	require.NoError(t, err)
	assert.Equal(t, int64(501), rel.Members[0].ID)
	assert.Equal(t, int64(77), rel.Members[1].ID)
}
