package family_test

import (
	"fmt"

	"github.com/matzehuels/lineage/pkg/family"
)

func ExampleApplyPersonUpdate() {
	t := family.NewTree("",
		family.Person{ID: "1", FirstName: "Arthur", LastName: "Pendragon", Gender: family.Male},
		family.Person{ID: "2", FirstName: "Guinevere", LastName: "Pendragon", Gender: family.Female},
		family.Person{ID: "3", FirstName: "Mordred", LastName: "Pendragon", Gender: family.Male},
	)

	// Marry 1 and 2.
	prev, _ := t.Get("1")
	next := prev.Clone()
	next.SpouseIDs = append(next.SpouseIDs, "2")
	t, touched := family.ApplyPersonUpdate(t, &prev, next)
	fmt.Println("spouses of 2:", t.People["2"].SpouseIDs, "touched:", len(touched))

	// Give 3 a father.
	prev, _ = t.Get("3")
	next = prev.Clone()
	next.FatherID = "1"
	t, _ = family.ApplyPersonUpdate(t, &prev, next)
	fmt.Println("children of 1:", t.People["1"].ChildrenIDs)
	// Output:
	// spouses of 2: [1] touched: 1
	// children of 1: [3]
}

func ExampleBuildHierarchy() {
	t := family.NewTree("1",
		family.Person{ID: "1", FirstName: "Arthur", LastName: "Pendragon", ChildrenIDs: []string{"2"}},
		family.Person{ID: "2", FirstName: "Mordred", LastName: "Pendragon", FatherID: "1", ChildrenIDs: []string{"3"}},
		family.Person{ID: "3", FirstName: "Galahad", LastName: "Pendragon", FatherID: "2"},
	)
	root, _ := family.BuildHierarchy(t, "")
	root.Walk(func(n *family.Node) bool {
		fmt.Printf("%d %s\n", n.Depth, n.Person.FullName())
		return true
	})
	// Output:
	// 0 Arthur Pendragon
	// 1 Mordred Pendragon
	// 2 Galahad Pendragon
}
