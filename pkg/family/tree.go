package family

import (
	"maps"
	"slices"
	"strings"
)

// DefaultRootID is the root used when a tree is loaded without one.
const DefaultRootID = "1"

// Tree is the whole family graph: every person keyed by ID, plus the person
// used as the default display ancestor.
//
// The zero value is not usable; use [NewTree].
type Tree struct {
	People map[string]Person `json:"people"`
	RootID string            `json:"rootId"`
}

// NewTree creates a tree from a list of people. Later duplicates replace
// earlier ones. An empty rootID falls back to [DefaultRootID] when that
// person exists, or else to the lexically smallest ID.
func NewTree(rootID string, people ...Person) Tree {
	t := Tree{People: make(map[string]Person, len(people)), RootID: rootID}
	for _, p := range people {
		t.People[p.ID] = p.Clone()
	}
	if t.RootID == "" {
		t.RootID = t.defaultRoot()
	}
	return t
}

func (t Tree) defaultRoot() string {
	if _, ok := t.People[DefaultRootID]; ok {
		return DefaultRootID
	}
	if ids := t.IDs(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// Get returns the person with the given ID. Empty IDs never resolve.
func (t Tree) Get(id string) (Person, bool) {
	if id == "" {
		return Person{}, false
	}
	p, ok := t.People[id]
	return p, ok
}

// Has reports whether id resolves to a person.
func (t Tree) Has(id string) bool {
	_, ok := t.Get(id)
	return ok
}

// Len returns the number of people.
func (t Tree) Len() int { return len(t.People) }

// IDs returns all person IDs in ascending order.
func (t Tree) IDs() []string {
	return slices.Sorted(maps.Keys(t.People))
}

// Sorted returns all people ordered by ID.
func (t Tree) Sorted() []Person {
	ids := t.IDs()
	out := make([]Person, len(ids))
	for i, id := range ids {
		out[i] = t.People[id]
	}
	return out
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	c := Tree{People: make(map[string]Person, len(t.People)), RootID: t.RootID}
	for id, p := range t.People {
		c.People[id] = p.Clone()
	}
	return c
}

// Search returns people whose full name contains query, case-insensitively,
// ordered by ID. An empty query matches everyone.
func (t Tree) Search(query string) []Person {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Person
	for _, p := range t.Sorted() {
		if q == "" || strings.Contains(strings.ToLower(p.FullName()), q) {
			out = append(out, p)
		}
	}
	return out
}

// Resolve returns the people for the given IDs, skipping dangling ones.
func (t Tree) Resolve(ids []string) []Person {
	out := make([]Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := t.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// Dangling returns every relationship reference that does not resolve,
// grouped by the person holding it. The result is empty for a clean tree.
func (t Tree) Dangling() map[string][]string {
	out := make(map[string][]string)
	for _, p := range t.Sorted() {
		refs := append([]string{p.FatherID, p.MotherID}, p.SpouseIDs...)
		refs = append(refs, p.ChildrenIDs...)
		for _, id := range refs {
			if id != "" && !t.Has(id) {
				out[p.ID] = append(out[p.ID], id)
			}
		}
	}
	return out
}

// Remap returns a copy of the tree with every ID (records and references)
// passed through fn. IDs fn maps to the same value are merged.
func (t Tree) Remap(fn func(string) string) Tree {
	mapID := func(id string) string {
		if id == "" {
			return ""
		}
		return fn(id)
	}
	mapIDs := func(ids []string) []string {
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = mapID(id)
		}
		return out
	}

	c := Tree{People: make(map[string]Person, len(t.People)), RootID: mapID(t.RootID)}
	for _, p := range t.Sorted() {
		q := p.Clone()
		q.ID = mapID(p.ID)
		q.FatherID = mapID(p.FatherID)
		q.MotherID = mapID(p.MotherID)
		q.SpouseIDs = mapIDs(p.SpouseIDs)
		q.ChildrenIDs = mapIDs(p.ChildrenIDs)
		c.People[q.ID] = q
	}
	return c
}
