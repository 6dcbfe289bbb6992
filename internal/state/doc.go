// Package state provides the synchronized list stores behind every console view.
//
// # Overview
//
// A Store holds one resource collection (users, interests, event categories,
// plans, terms) and is the only writer of it. Readers receive copies through
// Snapshot, Entities and Filtered; nothing outside the store ever holds a
// reference into its backing slice.
//
// # Refresh
//
// Refresh replaces the collection wholesale with the remote result. Calls made
// while a refresh is in flight join it:
//
//	go store.Refresh(ctx) // starts the fetch
//	store.Refresh(ctx)    // waits for the same fetch, same error
//
// The fetch runs detached from any single caller. A caller whose ctx ends stops
// waiting; the fetch itself only stops on its own timeout or on Close.
//
// On failure the previous entities are kept and the error is recorded:
//
//	snapshot.Status              = StatusError
//	snapshot.LastError           = err
//	snapshot.ConsecutiveFailures += 1
//
// # Optimistic patches
//
// ApplyOptimistic applies an Insert, Replace or Remove patch immediately and
// returns a Token. Rollback(token) reverts exactly that change; Commit(token)
// makes it permanent. A token is single-use. Rollback is a no-op when the
// entity it would restore no longer fits (a refresh removed it, or a removed
// entity is already back).
//
// Resolve swaps a provisional create row for the server entity without ever
// duplicating the id.
//
// # Filtering
//
// Filter is a pure projection: case-insensitive substring over each entity's
// SearchText fields combined with an exact status match. "" and "all" match
// every status.
//
// # Lifetime
//
// Close cancels an in-flight refresh and discards any late result. Live lets
// mutation code check whether its store is still mounted before touching it.
package state
