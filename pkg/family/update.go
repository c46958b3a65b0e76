package family

import "slices"

// SpouseDiff is the change between two spouse sets.
type SpouseDiff struct {
	Removed []string // in previous, not in updated
	Added   []string // in updated, not in previous
}

// DiffSpouses compares the spouse sets of the previous and updated state of
// one person. A nil previous means the person is new.
func DiffSpouses(previous *Person, updated Person) SpouseDiff {
	var before []string
	if previous != nil {
		before = previous.SpouseIDs
	}
	return SpouseDiff{
		Removed: difference(before, updated.SpouseIDs),
		Added:   difference(updated.SpouseIDs, before),
	}
}

// ApplyPersonUpdate stores updated in a copy of t and performs the
// reciprocal edits it implies:
//
//  1. updated's ID is appended to the ChildrenIDs of its father and mother,
//     when they exist and do not already list it
//  2. updated's ID is removed from the SpouseIDs of every removed spouse
//  3. updated's ID is appended to the SpouseIDs of every added spouse that
//     does not already list it
//
// previous is the prior state of the same person, or nil when it is new.
// updated.SpouseIDs is normalized to a set first: duplicates, empty IDs and
// self-references are dropped.
//
// Child links are never retracted. If updated.FatherID moved away from an
// old father, the old father keeps the child in ChildrenIDs.
//
// Relatives that do not exist in t are skipped. The returned slice holds the
// final state of every relative whose record changed, each at most once, in
// first-touched order. The primary record is not included.
//
// t is not modified. Name validation is the caller's responsibility.
func ApplyPersonUpdate(t Tree, previous *Person, updated Person) (Tree, []Person) {
	next := t.Clone()
	updated = updated.Clone()
	updated.SpouseIDs = dedupe(updated.SpouseIDs, updated.ID)

	diff := DiffSpouses(previous, updated)
	next.People[updated.ID] = updated
	if next.RootID == "" {
		next.RootID = updated.ID
	}

	var order []string
	touch := func(p Person) {
		next.People[p.ID] = p
		if !slices.Contains(order, p.ID) {
			order = append(order, p.ID)
		}
	}

	for _, parentID := range []string{updated.FatherID, updated.MotherID} {
		if parentID == updated.ID {
			continue
		}
		parent, ok := next.Get(parentID)
		if !ok || parent.HasChild(updated.ID) {
			continue
		}
		parent.ChildrenIDs = append(parent.ChildrenIDs, updated.ID)
		touch(parent)
	}

	for _, id := range diff.Removed {
		ex, ok := next.Get(id)
		if !ok || id == updated.ID {
			continue
		}
		ex.SpouseIDs = slices.DeleteFunc(ex.SpouseIDs, func(s string) bool { return s == updated.ID })
		touch(ex)
	}

	for _, id := range diff.Added {
		spouse, ok := next.Get(id)
		if !ok || spouse.HasSpouse(updated.ID) {
			continue
		}
		spouse.SpouseIDs = append(spouse.SpouseIDs, updated.ID)
		touch(spouse)
	}

	touched := make([]Person, len(order))
	for i, id := range order {
		touched[i] = next.People[id]
	}
	return next, touched
}

// Insert adds a new person to a copy of t. It is the creation path of
// [ApplyPersonUpdate] with no previous state.
func Insert(t Tree, p Person) (Tree, []Person) {
	return ApplyPersonUpdate(t, nil, p)
}
