// Package store keeps a session's family tree in memory and persists it
// through a pluggable [Backend].
//
// # Lifecycle
//
//	sess, _ := cliStore.GetSession(ctx)
//	st, err := store.New(sess, backend, store.WithLogger(logger))
//	if err != nil {
//	    return err // session.ErrNotLoggedIn
//	}
//	if err := st.Load(ctx); err != nil {
//	    return err // STORAGE_ERROR, never an empty tree
//	}
//	defer st.Close()
//
// An empty backend is seeded with the sample family from [Seed].
//
// # Writes
//
// [Store.Apply] is the single mutation entry point. It writes the edited
// person, swaps in the updated tree, and then writes every relative whose
// spouse or child list changed in background goroutines. Callers that must
// know those writes landed (the CLI before exiting, tests) call
// [Store.Flush].
//
// # Backends
//
// Subpackages provide backends for a JSON directory (filestore), MongoDB
// (mongostore), Redis (redisstore) and PostgreSQL via GORM (sqlstore).
// [Memory] is an in-process backend for tests.
package store
