package store

import "github.com/matzehuels/lineage/pkg/family"

// Seed returns the sample family written to an empty tree on first load.
// Person "1" is the root.
func Seed() []family.Person {
	return []family.Person{
		{
			ID:          "1",
			FirstName:   "Arthur",
			LastName:    "Pendragon",
			Gender:      family.Male,
			BirthDate:   "1920-05-15",
			BirthPlace:  "London, UK",
			Bio:         "The patriarch of the family. Served in the navy and loved woodworking.",
			SpouseIDs:   []string{"2"},
			ChildrenIDs: []string{"3", "4"},
		},
		{
			ID:          "2",
			FirstName:   "Guinevere",
			LastName:    "Pendragon",
			Gender:      family.Female,
			BirthDate:   "1922-08-20",
			SpouseIDs:   []string{"1"},
			ChildrenIDs: []string{"3", "4"},
		},
		{
			ID:          "3",
			FirstName:   "Mordred",
			LastName:    "Pendragon",
			Gender:      family.Male,
			BirthDate:   "1950-02-10",
			FatherID:    "1",
			MotherID:    "2",
			SpouseIDs:   []string{},
			ChildrenIDs: []string{"5"},
		},
		{
			ID:          "4",
			FirstName:   "Morgana",
			LastName:    "Le Fay",
			Gender:      family.Female,
			BirthDate:   "1955-11-30",
			FatherID:    "1",
			MotherID:    "2",
			SpouseIDs:   []string{},
			ChildrenIDs: []string{},
		},
		{
			ID:          "5",
			FirstName:   "Galahad",
			LastName:    "Pendragon",
			Gender:      family.Male,
			BirthDate:   "1980-01-01",
			FatherID:    "3",
			SpouseIDs:   []string{},
			ChildrenIDs: []string{},
		},
	}
}
