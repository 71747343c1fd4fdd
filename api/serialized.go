package api

import (
	"context"

	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/go-osmapi/changeset"
	"github.com/omniscale/go-osmapi/diff"
)

var _ changeset.Transport = &Serialized{}

// Serialized wraps a Transport and performs all operations on a single
// worker goroutine. Callers from different goroutines get the same
// observable ordering as with the blocking Client: one operation at a
// time, each performed at most once.
//
// Cancelling the context only prevents an operation from starting. Once an
// operation reached the worker it runs to completion; an upload abandoned
// mid-flight would leave the server changeset in an unknown state.
type Serialized struct {
	transport changeset.Transport
	requests  chan func()
	done      chan struct{}
}

// NewSerialized starts the worker goroutine. Call Stop to end it.
func NewSerialized(transport changeset.Transport) *Serialized {
	s := &Serialized{
		transport: transport,
		requests:  make(chan func()),
		done:      make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Serialized) loop() {
	defer close(s.done)
	for fn := range s.requests {
		fn()
	}
}

// Stop ends the worker after all accepted operations completed. The
// transport must not be used afterwards.
func (s *Serialized) Stop() {
	close(s.requests)
	<-s.done
}

func (s *Serialized) perform(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case s.requests <- func() {
		fn()
		close(finished)
	}:
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

func (s *Serialized) Open(ctx context.Context, tags osm.Tags) (int64, error) {
	var id int64
	var err error
	if perr := s.perform(ctx, func() {
		id, err = s.transport.Open(ctx, tags)
	}); perr != nil {
		return 0, perr
	}
	return id, err
}

func (s *Serialized) Upload(ctx context.Context, changesetID int64, pkg *diff.Package) ([]diff.Mapping, error) {
	var mappings []diff.Mapping
	var err error
	if perr := s.perform(ctx, func() {
		mappings, err = s.transport.Upload(ctx, changesetID, pkg)
	}); perr != nil {
		return nil, perr
	}
	return mappings, err
}

func (s *Serialized) Close(ctx context.Context, changesetID int64) error {
	var err error
	if perr := s.perform(ctx, func() {
		err = s.transport.Close(ctx, changesetID)
	}); perr != nil {
		return perr
	}
	return err
}

func (s *Serialized) Fetch(ctx context.Context, changesetID int64) (*osm.Changeset, error) {
	var cs *osm.Changeset
	var err error
	if perr := s.perform(ctx, func() {
		cs, err = s.transport.Fetch(ctx, changesetID)
	}); perr != nil {
		return nil, perr
	}
	return cs, err
}
