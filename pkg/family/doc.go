// Package family defines the genealogy graph model and the pure update
// algebra that keeps it consistent.
//
// # Overview
//
// A family is stored as an arena of [Person] records keyed by ID inside a
// [Tree]. Relationships are plain ID references:
//
//   - FatherID / MotherID point from a child to its parents
//   - ChildrenIDs is the inverse of those pointers, kept on each parent
//   - SpouseIDs is a symmetric set: if A lists B, B lists A
//
// References that do not resolve to a person in the tree are dangling. They
// are tolerated everywhere in this module and treated as "no such relative".
//
// # Updates
//
// [ApplyPersonUpdate] applies a single edit to a tree and performs the
// reciprocal updates it implies:
//
//	next, touched := family.ApplyPersonUpdate(tree, &previous, edited)
//
// It never mutates its input. The returned [Tree] is a new value and touched
// lists the relatives whose records changed as a side effect, in the order
// they were modified, so the caller can persist them.
//
// Two rules govern the reciprocal work:
//
//   - Spouse links are symmetric after every call. Removing B from A's
//     SpouseIDs removes A from B's, and adding does the inverse.
//   - Child links only accumulate. Setting FatherID appends the child to the
//     father's ChildrenIDs, but changing FatherID later does not retract the
//     child from the old father. Retraction would silently drop data the user
//     entered on the parent, so it is left to an explicit edit of that parent.
//
// # Hierarchy
//
// [BuildHierarchy] turns the flat arena into a strongly-typed descendant tree
// rooted at a person, for outline views and traversal.
//
// # Concurrency
//
// Functions in this package are pure. A [Tree] value is safe for concurrent
// reads; writers should go through [ApplyPersonUpdate] (or the store package)
// rather than mutating the People map in place.
package family
