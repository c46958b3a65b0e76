package gedcom

import (
	"slices"

	"github.com/matzehuels/lineage/pkg/family"
)

// familyRecord accumulates one inferred FAM record.
type familyRecord struct {
	key      string
	father   string // from children's FatherID
	mother   string // from children's MotherID
	pair     [2]string
	married  bool // at least one spouse link backs this family
	husband  string
	wife     string
	children []string
}

type familySet struct {
	order    []*familyRecord
	byKey    map[string]*familyRecord
	childOf  map[string]string   // person -> FAMC key
	spouseOf map[string][]string // person -> FAMS keys, in family order
	dropped  []DroppedRef
}

func (s *familySet) get(key string) *familyRecord {
	if f, ok := s.byKey[key]; ok {
		return f
	}
	f := &familyRecord{key: key}
	s.byKey[key] = f
	s.order = append(s.order, f)
	return f
}

// resolve returns id when it names a person in t. Dangling IDs are recorded
// and resolve to "".
func (s *familySet) resolve(t family.Tree, holder, field, id string) string {
	if id == "" {
		return ""
	}
	if !t.Has(id) {
		s.dropped = append(s.dropped, DroppedRef{PersonID: holder, Field: field, TargetID: id})
		return ""
	}
	return id
}

// buildFamilies infers FAM records from parent pointers and spouse links.
// people must be in a stable order; it determines family order.
func buildFamilies(t family.Tree, people []family.Person) *familySet {
	s := &familySet{
		byKey:    make(map[string]*familyRecord),
		childOf:  make(map[string]string),
		spouseOf: make(map[string][]string),
	}

	for _, p := range people {
		father := s.resolve(t, p.ID, "father", p.FatherID)
		mother := s.resolve(t, p.ID, "mother", p.MotherID)
		if father != "" || mother != "" {
			key := childFamilyKey(father, mother)
			f := s.get(key)
			if !slices.Contains(f.children, p.ID) {
				f.children = append(f.children, p.ID)
			}
			if f.father == "" && f.mother == "" {
				f.father, f.mother = father, mother
			}
			s.childOf[p.ID] = key
		}

		var seen []string
		for _, sid := range p.SpouseIDs {
			if sid == "" || sid == p.ID || slices.Contains(seen, sid) {
				continue
			}
			seen = append(seen, sid)
			if s.resolve(t, p.ID, "spouse", sid) == "" {
				continue
			}
			a, b := sortedPair(p.ID, sid)
			f := s.get(pairKey(a, b))
			f.pair = [2]string{a, b}
			f.married = true
		}
	}

	for _, f := range s.order {
		assignRoles(t, f)
		for _, id := range []string{f.husband, f.wife} {
			if id != "" && !slices.Contains(s.spouseOf[id], f.key) {
				s.spouseOf[id] = append(s.spouseOf[id], f.key)
			}
		}
	}
	return s
}

// assignRoles fills husband and wife. Parent pointers win; a childless
// couple is split by gender, falling back to ID order.
func assignRoles(t family.Tree, f *familyRecord) {
	if f.father != "" || f.mother != "" {
		f.husband, f.wife = f.father, f.mother
		return
	}
	a, b := f.pair[0], f.pair[1]
	ga, gb := t.People[a].Gender, t.People[b].Gender
	switch {
	case ga == family.Male && gb != family.Male:
		f.husband, f.wife = a, b
	case gb == family.Male && ga != family.Male:
		f.husband, f.wife = b, a
	case ga == family.Female && gb != family.Female:
		f.husband, f.wife = b, a
	case gb == family.Female && ga != family.Female:
		f.husband, f.wife = a, b
	default:
		f.husband, f.wife = a, b
	}
}

// childFamilyKey keys the family of a child. With both parents known it is
// the sorted pair key, so it coincides with the parents' spouse family.
func childFamilyKey(father, mother string) string {
	if father != "" && mother != "" {
		return pairKey(sortedPair(father, mother))
	}
	if father == "" {
		father = unknownParent
	}
	if mother == "" {
		mother = unknownParent
	}
	return "F_" + father + "_" + mother
}

func pairKey(a, b string) string { return "F_" + a + "_" + b }

func sortedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
