package family

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Gender is the recorded sex of a person.
type Gender string

// Supported genders.
const (
	Male   Gender = "Male"
	Female Gender = "Female"
	Other  Gender = "Other"
)

// UnknownName is the placeholder used for names missing on creation.
const UnknownName = "Unknown"

// ParseGender maps a case-insensitive name or GEDCOM sex code to a Gender.
// Anything unrecognized maps to Other.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male
	case "female", "f":
		return Female
	default:
		return Other
	}
}

// Person is one individual in the family graph.
//
// Optional string fields use the empty string for "unknown". Dates are
// expected in YYYY-MM-DD form but any string is accepted and preserved.
type Person struct {
	ID         string `json:"id" bson:"_id" validate:"required"`
	FirstName  string `json:"firstName" bson:"firstName" validate:"required"`
	LastName   string `json:"lastName" bson:"lastName" validate:"required"`
	Gender     Gender `json:"gender" bson:"gender" validate:"oneof=Male Female Other"`
	BirthDate  string `json:"birthDate,omitempty" bson:"birthDate,omitempty"`
	BirthPlace string `json:"birthPlace,omitempty" bson:"birthPlace,omitempty"`
	DeathDate  string `json:"deathDate,omitempty" bson:"deathDate,omitempty"`
	DeathPlace string `json:"deathPlace,omitempty" bson:"deathPlace,omitempty"`
	Bio        string `json:"bio,omitempty" bson:"bio,omitempty"`
	Photo      string `json:"photo,omitempty" bson:"photo,omitempty" validate:"max=2796203"` // base64 data URL or link

	FatherID    string   `json:"fatherId,omitempty" bson:"fatherId,omitempty"`
	MotherID    string   `json:"motherId,omitempty" bson:"motherId,omitempty"`
	SpouseIDs   []string `json:"spouseIds" bson:"spouseIds"`
	ChildrenIDs []string `json:"childrenIds" bson:"childrenIds"`
}

// FullName returns "First Last".
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// HasSpouse reports whether id is in the spouse set.
func (p Person) HasSpouse(id string) bool { return slices.Contains(p.SpouseIDs, id) }

// HasChild reports whether id is in the children list.
func (p Person) HasChild(id string) bool { return slices.Contains(p.ChildrenIDs, id) }

// HasParents reports whether either parent is known.
func (p Person) HasParents() bool { return p.FatherID != "" || p.MotherID != "" }

// Clone returns a deep copy. Relationship slices are never nil on the copy.
func (p Person) Clone() Person {
	c := p
	c.SpouseIDs = append(make([]string, 0, len(p.SpouseIDs)), p.SpouseIDs...)
	c.ChildrenIDs = append(make([]string, 0, len(p.ChildrenIDs)), p.ChildrenIDs...)
	return c
}

// Partial is a subset of person fields, as produced by an editor form or a
// text extraction service.
type Partial struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Gender     Gender `json:"gender"`
	BirthDate  string `json:"birthDate,omitempty"`
	BirthPlace string `json:"birthPlace,omitempty"`
	DeathDate  string `json:"deathDate,omitempty"`
	DeathPlace string `json:"deathPlace,omitempty"`
	Bio        string `json:"bio,omitempty"`
}

// NewID returns a fresh person identifier.
func NewID() string { return uuid.NewString() }

// NewPerson synthesizes a person from a partial record. It assigns a fresh
// ID, defaults missing names to [UnknownName] and a missing or invalid
// gender to [Other], and starts with no relationships.
func NewPerson(p Partial) Person {
	person := Person{
		ID:          NewID(),
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
		Gender:      p.Gender,
		BirthDate:   p.BirthDate,
		BirthPlace:  p.BirthPlace,
		DeathDate:   p.DeathDate,
		DeathPlace:  p.DeathPlace,
		Bio:         p.Bio,
		SpouseIDs:   []string{},
		ChildrenIDs: []string{},
	}
	if person.FirstName == "" {
		person.FirstName = UnknownName
	}
	if person.LastName == "" {
		person.LastName = UnknownName
	}
	switch person.Gender {
	case Male, Female, Other:
	default:
		person.Gender = Other
	}
	return person
}

// dedupe returns ids with duplicates, empties and skip removed, keeping the
// first occurrence order.
func dedupe(ids []string, skip string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == skip || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// difference returns the elements of a that are not in b.
func difference(a, b []string) []string {
	var out []string
	for _, id := range a {
		if !slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	return out
}
