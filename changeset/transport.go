// Package changeset implements the lifecycle of a server-side changeset:
// open, repeated diff uploads with reconciliation, close.
package changeset

import (
	"context"

	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/go-osmapi/diff"
)

// Transport performs the changeset operations against the server. The
// session never assumes how a Transport executes: api.Client performs the
// calls directly, api.Serialized funnels them through a worker goroutine.
//
// Implementations must perform each operation at most once per invocation
// and must report failures as errors, never as empty results. Version
// conflicts detected by the server must surface as *ConflictError.
type Transport interface {
	// Open creates a changeset with the given tags and returns its ID.
	Open(ctx context.Context, tags osm.Tags) (int64, error)
	// Upload submits the package to the open changeset and returns one
	// mapping per operation.
	Upload(ctx context.Context, changesetID int64, pkg *diff.Package) ([]diff.Mapping, error)
	// Close closes the changeset.
	Close(ctx context.Context, changesetID int64) error
	// Fetch reads the current server-side state of the changeset, used to
	// recover after an upload with an unobserved outcome.
	Fetch(ctx context.Context, changesetID int64) (*osm.Changeset, error)
}
