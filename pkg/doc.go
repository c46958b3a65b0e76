// Package pkg provides the core libraries for Lineage, a family tree manager.
//
// # Overview
//
// Lineage keeps a family as a graph of people linked by parent, child and
// spouse relationships, keeps those links consistent under edits, and
// exchanges the graph with other genealogy software as GEDCOM 5.5.1. The pkg
// directory is organized into four main areas:
//
//  1. Domain model ([family]) and format codecs ([gedcom], [io])
//  2. Persistence ([store] and its backends)
//  3. Collaborators ([extract], [session], [cache])
//  4. Surfaces and plumbing ([api], [config], [errors], [observability])
//
// # Architecture
//
// The typical data flow through Lineage:
//
//	Editor (CLI or HTTP API)
//	         ↓
//	    [store] applies the edit (family.ApplyPersonUpdate)
//	         ↓
//	    Backend.Put for the person, then for each touched relative
//	         ↓
//	    [gedcom] / [io] encode a snapshot for export
//
// # Quick Start
//
// Open a tree, link a child to a parent and export it:
//
//	import (
//	    "github.com/matzehuels/lineage/pkg/gedcom"
//	    "github.com/matzehuels/lineage/pkg/session"
//	    "github.com/matzehuels/lineage/pkg/store"
//	)
//
//	st, _ := store.New(session.MockLocal(), store.NewMemory())
//	_ = st.Load(ctx) // seeds the sample family
//
//	child, _ := st.Get("5")
//	child.MotherID = "4"
//	_, _ = st.Apply(ctx, child) // "5" is appended to 4's children
//
//	t, _ := st.Snapshot()
//	os.WriteFile("family.ged", gedcom.Encode(t), 0o644)
//
// # Package Overview
//
// ## Domain
//
// [family] - Person, Tree and the pure update functions. ApplyPersonUpdate
// keeps spouse links symmetric and child links in step with parent pointers.
// BuildHierarchy produces a typed descendants tree.
//
// [gedcom] - GEDCOM 5.5.1 encoder and decoder. Encoding infers FAM records
// from parent pointers and spouse lists; decoding rebuilds the graph.
//
// [io] - JSON snapshot format for backup and transfer between backends.
//
// ## Persistence
//
// [store] - Owns the in-memory tree of one session. The edited person is
// written synchronously; relatives are written in the background with retry.
// Backends:
//
//   - [store/filestore]: one JSON file per person (CLI default)
//   - [store/mongostore]: MongoDB collection
//   - [store/redisstore]: Redis hash per user
//   - [store/sqlstore]: PostgreSQL through GORM
//
// ## Collaborators
//
// [extract] - OpenAI client that turns a free-text description into a
// partial person and writes short biographies. Responses are cached.
//
// [session] - Explicit login sessions with file and Redis stores.
//
// [cache] - Byte cache (file, Redis, null) and retry helpers.
//
// ## Surfaces
//
// [api] - JSON HTTP API over a store, served by "lineage serve".
//
// [config] - TOML settings with .env and LINEAGE_* overrides.
//
// [errors] - Coded errors and person validation.
//
// [observability] - Hooks for metrics and tracing of store, codec, cache and
// HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/gedcom/...   # Specific package
//	go test -run Example       # Examples only
//
// [family]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/family
// [gedcom]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/gedcom
// [io]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/store
// [store/filestore]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/store/filestore
// [store/mongostore]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/store/mongostore
// [store/redisstore]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/store/redisstore
// [store/sqlstore]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/store/sqlstore
// [extract]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/extract
// [session]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/cache
// [api]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/api
// [config]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/lineage/pkg/observability
package pkg
