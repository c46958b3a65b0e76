package family

import "errors"

// ErrRootNotFound is returned by [BuildHierarchy] when the root ID does not
// resolve to a person.
var ErrRootNotFound = errors.New("root person not found")

// Node is one person in a descendant hierarchy.
type Node struct {
	Person   Person   `json:"person"`
	Spouses  []Person `json:"spouses,omitempty"`  // resolved spouses, dangling IDs skipped
	Children []*Node  `json:"children,omitempty"` // in ChildrenIDs order
	Depth    int      `json:"depth"`              // 0 for the root
}

// Walk visits n and its descendants depth-first, parents before children.
// Returning false from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the hierarchy.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool { count++; return true })
	return count
}

// BuildHierarchy builds the descendant tree of rootID by following
// ChildrenIDs. An empty rootID uses t.RootID. Dangling child IDs are skipped.
// A person reachable along several paths (for example through both parents
// being descendants) appears only at its first position; this also breaks
// accidental cycles in corrupted data.
func BuildHierarchy(t Tree, rootID string) (*Node, error) {
	if rootID == "" {
		rootID = t.RootID
	}
	if !t.Has(rootID) {
		return nil, ErrRootNotFound
	}

	seen := make(map[string]bool)
	var build func(id string, depth int) *Node
	build = func(id string, depth int) *Node {
		p, ok := t.Get(id)
		if !ok || seen[id] {
			return nil
		}
		seen[id] = true
		n := &Node{Person: p, Spouses: t.Resolve(p.SpouseIDs), Depth: depth}
		for _, childID := range p.ChildrenIDs {
			if c := build(childID, depth+1); c != nil {
				n.Children = append(n.Children, c)
			}
		}
		return n
	}
	return build(rootID, 0), nil
}
