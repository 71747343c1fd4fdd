package diff

import (
	"github.com/omniscale/go-osmapi/coord"
)

// A Package is the batched set of operations submitted in one upload,
// grouped by kind and tagged with the owning changeset. Packages are built
// by Builder.Build and must not be modified afterwards.
type Package struct {
	// ChangesetID is the server assigned changeset this package belongs to.
	ChangesetID int64
	// Token identifies one upload attempt, for request correlation in logs.
	Token string
	// BBox covers the node positions contained in the package.
	BBox coord.BBox

	Creates  []Change
	Modifies []Change
	Deletes  []Change
}

// Len returns the total number of operations.
func (p *Package) Len() int {
	return len(p.Creates) + len(p.Modifies) + len(p.Deletes)
}

// Empty reports whether the package contains no operations.
func (p *Package) Empty() bool {
	return p.Len() == 0
}
