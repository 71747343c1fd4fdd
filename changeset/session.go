package changeset

import (
	"context"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/omniscale/go-osmapi/diff"
	"github.com/omniscale/go-osmapi/element"
)

type State int

const (
	StateUnopened State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "invalid"
}

// Session drives a single server-side changeset from open to close. It owns
// the element store and the diff builder for the edits of this changeset.
//
// A session is single-writer: Open, Upload and Close must be serialized by
// the caller. Independent sessions can run concurrently against the same
// server without coordination.
type Session struct {
	transport Transport
	store     *element.Store
	builder   *diff.Builder

	state State
	id    int64
}

// NewSession returns an unopened session working on store.
func NewSession(transport Transport, store *element.Store) *Session {
	return &Session{
		transport: transport,
		store:     store,
		builder:   diff.NewBuilder(store),
	}
}

// Builder returns the diff builder edits are registered with.
func (s *Session) Builder() *diff.Builder { return s.builder }

// Store returns the element store of this session.
func (s *Session) Store() *element.Store { return s.store }

// ID returns the server assigned changeset ID, 0 before Open.
func (s *Session) ID() int64 { return s.id }

// State returns the lifecycle state of the session.
func (s *Session) State() State { return s.state }

// Open creates the server-side changeset with the given comment. Valid
// only once per session; any further call fails with AlreadyOpen.
func (s *Session) Open(ctx context.Context, comment string) error {
	if s.state != StateUnopened {
		return AlreadyOpen
	}
	tags := osm.Tags{}
	if comment != "" {
		tags["comment"] = comment
	}
	id, err := s.transport.Open(ctx, tags)
	if err != nil {
		return errors.Wrap(err, "opening changeset")
	}
	s.id = id
	s.state = StateOpen
	return nil
}

// Build validates the current batch and produces a package tagged with the
// open changeset. The batch is kept, so a failed upload can be retried with
// the identical package.
func (s *Session) Build() (*diff.Package, error) {
	if s.state == StateClosed {
		return nil, Closed
	}
	if s.state != StateOpen {
		return nil, NotOpen
	}
	return s.builder.Build(s.id)
}

// Upload submits pkg and reconciles the returned mappings into the store.
// On success the batch is cleared and the session stays open for further
// uploads.
//
// A *ConflictError from the transport is passed through untouched and
// leaves the store unchanged; the caller must re-fetch the conflicting
// element and resubmit. A reconciliation failure is fatal for the batch,
// the store is left in its pre-reconciliation state.
func (s *Session) Upload(ctx context.Context, pkg *diff.Package) ([]diff.Mapping, error) {
	if s.state == StateClosed {
		return nil, Closed
	}
	if s.state != StateOpen {
		return nil, NotOpen
	}
	if pkg.ChangesetID != s.id {
		return nil, errors.Errorf("package belongs to changeset %d, session has %d",
			pkg.ChangesetID, s.id)
	}

	mappings, err := s.transport.Upload(ctx, s.id, pkg)
	if err != nil {
		return nil, errors.Wrap(err, "uploading diff")
	}
	if err := diff.Reconcile(s.store, mappings); err != nil {
		return nil, errors.Wrapf(err, "reconciling upload %s", pkg.Token)
	}
	s.builder.Clear()
	return mappings, nil
}

// Flush builds the current batch, uploads it and reconciles the result.
func (s *Session) Flush(ctx context.Context) ([]diff.Mapping, error) {
	pkg, err := s.Build()
	if err != nil {
		return nil, err
	}
	return s.Upload(ctx, pkg)
}

// Close closes the server-side changeset. Calling Close on an already
// closed session is a no-op, no second request is sent. A failed close
// leaves the session open so the caller can retry.
func (s *Session) Close(ctx context.Context) error {
	if s.state == StateClosed {
		return nil
	}
	if s.state != StateOpen {
		return NotOpen
	}
	if err := s.transport.Close(ctx, s.id); err != nil {
		return errors.Wrap(err, "closing changeset")
	}
	s.state = StateClosed
	return nil
}

// Refresh fetches the current server-side state of the changeset. Use it
// after an upload whose outcome was not observed (timeout, crash): the
// server may or may not have applied the package, and resubmitting blindly
// could duplicate created elements. If the server already closed the
// changeset, the session transitions to closed.
func (s *Session) Refresh(ctx context.Context) (*osm.Changeset, error) {
	if s.state == StateUnopened {
		return nil, NotOpen
	}
	cs, err := s.transport.Fetch(ctx, s.id)
	if err != nil {
		return nil, errors.Wrap(err, "fetching changeset state")
	}
	if !cs.Open && s.state == StateOpen {
		s.state = StateClosed
	}
	return cs, nil
}
