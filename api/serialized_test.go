package api

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	osm "github.com/omniscale/go-osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniscale/go-osmapi/diff"
)

// countingTransport fails the test if two operations ever overlap.
type countingTransport struct {
	inFlight int32
	opens    int32
	uploads  int32
	running  chan struct{}
	block    chan struct{}
	t        *testing.T
}

func (c *countingTransport) enter() {
	if atomic.AddInt32(&c.inFlight, 1) != 1 {
		c.t.Error("concurrent transport operations")
	}
}

func (c *countingTransport) leave() {
	atomic.AddInt32(&c.inFlight, -1)
}

func (c *countingTransport) Open(ctx context.Context, tags osm.Tags) (int64, error) {
	c.enter()
	defer c.leave()
	if c.running != nil {
		close(c.running)
	}
	if c.block != nil {
		<-c.block
	}
	atomic.AddInt32(&c.opens, 1)
	return 77, nil
}

func (c *countingTransport) Upload(ctx context.Context, changesetID int64, pkg *diff.Package) ([]diff.Mapping, error) {
	c.enter()
	defer c.leave()
	atomic.AddInt32(&c.uploads, 1)
	return nil, nil
}

func (c *countingTransport) Close(ctx context.Context, changesetID int64) error {
	c.enter()
	defer c.leave()
	return nil
}

func (c *countingTransport) Fetch(ctx context.Context, changesetID int64) (*osm.Changeset, error) {
	c.enter()
	defer c.leave()
	return &osm.Changeset{ID: changesetID}, nil
}

func TestSerializedOneOperationAtATime(t *testing.T) {
	transport := &countingTransport{t: t}
	serialized := NewSerialized(transport)
	defer serialized.Stop()
	ctx := context.Background()

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := serialized.Upload(ctx, 77, &diff.Package{ChangesetID: 77})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(10), atomic.LoadInt32(&transport.uploads))
}

func TestSerializedCancelBeforeStart(t *testing.T) {
	transport := &countingTransport{
		t:       t,
		running: make(chan struct{}),
		block:   make(chan struct{}),
	}
	serialized := NewSerialized(transport)
	ctx := context.Background()

	// occupy the worker
	openDone := make(chan struct{})
	go func() {
		defer close(openDone)
		_, err := serialized.Open(ctx, nil)
		assert.NoError(t, err)
	}()
	<-transport.running

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := serialized.Upload(cancelled, 77, &diff.Package{ChangesetID: 77})
	require.ErrorIs(t, err, context.Canceled)

	close(transport.block)
	<-openDone
	serialized.Stop()

	// the cancelled upload never reached the transport
	assert.Equal(t, int32(0), atomic.LoadInt32(&transport.uploads))
	assert.Equal(t, int32(1), atomic.LoadInt32(&transport.opens))
}

func TestSerializedStopWaitsForWorker(t *testing.T) {
	transport := &countingTransport{t: t}
	serialized := NewSerialized(transport)

	_, err := serialized.Fetch(context.Background(), 77)
	require.NoError(t, err)
	serialized.Stop()
}
