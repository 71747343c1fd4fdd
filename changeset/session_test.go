package changeset

import (
	"context"
	"errors"
	"testing"

	osm "github.com/omniscale/go-osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniscale/go-osmapi/coord"
	"github.com/omniscale/go-osmapi/diff"
	"github.com/omniscale/go-osmapi/element"
)

// fakeTransport simulates the server: placeholders get sequential real IDs,
// modifies and deletes are acknowledged with bumped versions.
type fakeTransport struct {
	changesetID int64
	nextID      int64
	opens       int
	uploads     int
	closes      int
	uploadErr   error
	serverOpen  bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{changesetID: 77, nextID: 500}
}

func (f *fakeTransport) Open(ctx context.Context, tags osm.Tags) (int64, error) {
	f.opens++
	f.serverOpen = true
	return f.changesetID, nil
}

func (f *fakeTransport) Upload(ctx context.Context, changesetID int64, pkg *diff.Package) ([]diff.Mapping, error) {
	f.uploads++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	var mappings []diff.Mapping
	mapChange := func(c diff.Change) {
		ref := c.Ref()
		m := diff.Mapping{Type: ref.Type, OldID: ref.ID}
		switch {
		case c.Create:
			f.nextID++
			m.NewID = f.nextID
			m.Version = 1
		case c.Modify:
			m.NewID = ref.ID
			m.Version = c.Version() + 1
		}
		mappings = append(mappings, m)
	}
	for _, c := range pkg.Creates {
		mapChange(c)
	}
	for _, c := range pkg.Modifies {
		mapChange(c)
	}
	for _, c := range pkg.Deletes {
		mapChange(c)
	}
	return mappings, nil
}

func (f *fakeTransport) Close(ctx context.Context, changesetID int64) error {
	f.closes++
	f.serverOpen = false
	return nil
}

func (f *fakeTransport) Fetch(ctx context.Context, changesetID int64) (*osm.Changeset, error) {
	return &osm.Changeset{ID: changesetID, Open: f.serverOpen}, nil
}

func testNode(lat, long coord.Type) *element.Node {
	pos, err := coord.NewCoordinates(lat, long)
	if err != nil {
		panic(err)
	}
	return &element.Node{Position: pos}
}

func TestUploadBeforeOpen(t *testing.T) {
	session := NewSession(newFakeTransport(), element.NewStore())
	_, err := session.Upload(context.Background(), &diff.Package{})
	assert.Equal(t, NotOpen, err)
	_, err = session.Build()
	assert.Equal(t, NotOpen, err)
}

func TestOpenTwice(t *testing.T) {
	transport := newFakeTransport()
	session := NewSession(transport, element.NewStore())
	ctx := context.Background()

	require.NoError(t, session.Open(ctx, "test"))
	assert.Equal(t, int64(77), session.ID())
	assert.Equal(t, StateOpen, session.State())
	assert.Equal(t, AlreadyOpen, session.Open(ctx, "test"))
	assert.Equal(t, 1, transport.opens)
}

func TestUploadReconcilesAndStaysOpen(t *testing.T) {
	transport := newFakeTransport()
	store := element.NewStore()
	session := NewSession(transport, store)
	ctx := context.Background()
	require.NoError(t, session.Open(ctx, "test"))

	nodeID, err := session.Builder().AddCreate(testNode(1.0, 2.0))
	require.NoError(t, err)
	_, err = session.Builder().AddCreate(&element.Way{Refs: []int64{nodeID}})
	require.NoError(t, err)

	mappings, err := session.Flush(ctx)
	require.NoError(t, err)
	assert.Len(t, mappings, 2)
	assert.Equal(t, StateOpen, session.State())
	assert.Equal(t, 0, session.Builder().Len(), "batch must be cleared after upload")

	way, err := store.Way(502)
	require.NoError(t, err)
	assert.Equal(t, []int64{501}, way.Refs)

	// second upload in the same session
	_, err = session.Builder().AddCreate(testNode(3.0, 4.0))
	require.NoError(t, err)
	_, err = session.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, transport.uploads)
}

func TestUploadConflictLeavesStoreUntouched(t *testing.T) {
	transport := newFakeTransport()
	store := element.NewStore()
	session := NewSession(transport, store)
	ctx := context.Background()
	require.NoError(t, session.Open(ctx, "test"))

	node := testNode(1.0, 2.0)
	node.ID = 10
	node.Version = 1
	require.NoError(t, store.Register(node))
	require.NoError(t, session.Builder().AddModify(node))

	transport.uploadErr = &ConflictError{
		Ref:      element.Ref{Type: osm.NodeMember, ID: 10},
		Expected: 1,
		Actual:   2,
	}
	_, err := session.Flush(ctx)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(10), conflict.Ref.ID)
	assert.Equal(t, int32(1), conflict.Expected)
	assert.Equal(t, int32(2), conflict.Actual)

	// store unchanged, batch kept for retry after refetch
	tracked, err := store.Node(10)
	require.NoError(t, err)
	assert.Equal(t, int32(1), tracked.Version)
	assert.Equal(t, 1, session.Builder().Len())
	assert.Equal(t, StateOpen, session.State())
}

func TestCloseIdempotent(t *testing.T) {
	transport := newFakeTransport()
	session := NewSession(transport, element.NewStore())
	ctx := context.Background()
	require.NoError(t, session.Open(ctx, "test"))

	require.NoError(t, session.Close(ctx))
	assert.Equal(t, StateClosed, session.State())
	require.NoError(t, session.Close(ctx))
	assert.Equal(t, 1, transport.closes, "second close must not hit the server")
}

func TestUploadAfterClose(t *testing.T) {
	transport := newFakeTransport()
	session := NewSession(transport, element.NewStore())
	ctx := context.Background()
	require.NoError(t, session.Open(ctx, "test"))
	require.NoError(t, session.Close(ctx))

	_, err := session.Upload(ctx, &diff.Package{ChangesetID: 77})
	assert.Equal(t, Closed, err)
	assert.Equal(t, 0, transport.uploads)
}

func TestCloseBeforeOpen(t *testing.T) {
	session := NewSession(newFakeTransport(), element.NewStore())
	assert.Equal(t, NotOpen, session.Close(context.Background()))
}

func TestUploadForeignPackage(t *testing.T) {
	session := NewSession(newFakeTransport(), element.NewStore())
	ctx := context.Background()
	require.NoError(t, session.Open(ctx, "test"))

	_, err := session.Upload(ctx, &diff.Package{ChangesetID: 1234})
	assert.Error(t, err)
}

func TestRefreshDetectsServerClose(t *testing.T) {
	transport := newFakeTransport()
	session := NewSession(transport, element.NewStore())
	ctx := context.Background()

	_, err := session.Refresh(ctx)
	assert.Equal(t, NotOpen, err)

	require.NoError(t, session.Open(ctx, "test"))
	cs, err := session.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, cs.Open)

	// simulate a close that happened server-side
	transport.serverOpen = false
	cs, err = session.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, cs.Open)
	assert.Equal(t, StateClosed, session.State())
}

func TestFailedCloseKeepsSessionOpen(t *testing.T) {
	transport := newFakeTransport()
	session := NewSession(transport, element.NewStore())
	ctx := context.Background()
	require.NoError(t, session.Open(ctx, "test"))

	failing := &failingCloseTransport{fakeTransport: transport}
	session.transport = failing
	require.Error(t, session.Close(ctx))
	assert.Equal(t, StateOpen, session.State())

	session.transport = transport
	require.NoError(t, session.Close(ctx))
	assert.Equal(t, StateClosed, session.State())
}

type failingCloseTransport struct {
	*fakeTransport
}

func (f *failingCloseTransport) Close(ctx context.Context, changesetID int64) error {
	return errors.New("connection reset")
}
