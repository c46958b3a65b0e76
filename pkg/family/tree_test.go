package family

import (
	"slices"
	"strings"
	"testing"
)

func TestNewTreeDefaultRoot(t *testing.T) {
	tests := []struct {
		name   string
		root   string
		people []Person
		want   string
	}{
		{"Explicit", "x", []Person{{ID: "1"}}, "x"},
		{"PrefersDefault", "", []Person{{ID: "9"}, {ID: "1"}}, "1"},
		{"SmallestID", "", []Person{{ID: "b"}, {ID: "a"}}, "a"},
		{"Empty", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewTree(tt.root, tt.people...).RootID; got != tt.want {
				t.Errorf("RootID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeDangling(t *testing.T) {
	tree := NewTree("a",
		Person{ID: "a", SpouseIDs: []string{"b", "gone"}},
		Person{ID: "b", SpouseIDs: []string{"a"}, FatherID: "nobody"},
	)
	got := tree.Dangling()
	if !slices.Equal(got["a"], []string{"gone"}) {
		t.Errorf("a dangling = %v", got["a"])
	}
	if !slices.Equal(got["b"], []string{"nobody"}) {
		t.Errorf("b dangling = %v", got["b"])
	}
}

func TestTreeRemap(t *testing.T) {
	tree := NewTree("a", samplePeople()...)
	remapped := tree.Remap(func(id string) string { return "x-" + id })

	if remapped.RootID != "x-a" {
		t.Errorf("RootID = %q", remapped.RootID)
	}
	c, ok := remapped.Get("x-c")
	if !ok {
		t.Fatal("x-c missing")
	}
	if c.FatherID != "x-a" || c.MotherID != "x-b" {
		t.Errorf("parents = %q %q", c.FatherID, c.MotherID)
	}
	d := remapped.People["x-d"]
	if d.FatherID != "" {
		t.Errorf("empty reference should stay empty, got %q", d.FatherID)
	}
	for id := range remapped.People {
		if !strings.HasPrefix(id, "x-") {
			t.Errorf("unmapped id %q", id)
		}
	}
}

func TestTreeSearch(t *testing.T) {
	tree := NewTree("a", samplePeople()...)
	got := tree.Search("pendragon")
	if len(got) != 3 {
		t.Errorf("Search(pendragon) = %d people, want 3", len(got))
	}
	if len(tree.Search("")) != tree.Len() {
		t.Error("empty query should match everyone")
	}
}

func TestBuildHierarchy(t *testing.T) {
	people := samplePeople()
	people = append(people, Person{ID: "e", FirstName: "Galahad", FatherID: "c"})
	people[2].ChildrenIDs = []string{"e", "missing"}
	tree := NewTree("a", people...)

	root, err := BuildHierarchy(tree, "")
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}
	if root.Person.ID != "a" {
		t.Errorf("root = %q", root.Person.ID)
	}
	if len(root.Spouses) != 1 || root.Spouses[0].ID != "b" {
		t.Errorf("spouses = %v", root.Spouses)
	}
	if root.Count() != 3 {
		t.Errorf("Count = %d, want 3", root.Count())
	}
	var depths []int
	root.Walk(func(n *Node) bool { depths = append(depths, n.Depth); return true })
	if !slices.Equal(depths, []int{0, 1, 2}) {
		t.Errorf("depths = %v", depths)
	}

	if _, err := BuildHierarchy(tree, "nope"); err != ErrRootNotFound {
		t.Errorf("err = %v, want ErrRootNotFound", err)
	}
}

func TestBuildHierarchyCycle(t *testing.T) {
	tree := NewTree("a",
		Person{ID: "a", ChildrenIDs: []string{"b"}},
		Person{ID: "b", ChildrenIDs: []string{"a"}},
	)
	root, err := BuildHierarchy(tree, "a")
	if err != nil {
		t.Fatal(err)
	}
	if root.Count() != 2 {
		t.Errorf("Count = %d, want 2", root.Count())
	}
}
