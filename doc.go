// Package osmapi is a client library for the OSM editing API.
//
// Edits are collected in a diff.Builder against an element.Store, uploaded
// as one osmChange package per batch inside a changeset.Session, and the
// server assigned IDs and versions are reconciled back into the store.
// The api package provides the HTTP transport, the overpass package the
// optional read-only bulk query path.
//
// Basic usage:
//
//	store := element.NewStore()
//	session := changeset.NewSession(api.NewClient(conf), store)
//	if err := session.Open(ctx, "add bus stop"); err != nil {
//		// ...
//	}
//	id, _ := session.Builder().AddCreate(&element.Node{Position: pos})
//	_, err := session.Flush(ctx)
//	// store now tracks the node under its server assigned ID
//	err = session.Close(ctx)
package osmapi
