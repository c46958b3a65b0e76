package gedcom

import (
	stderrors "errors"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
)

// ErrUndefinedXRef is returned when a FAM record points at an INDI that is
// not defined in the file.
var ErrUndefinedXRef = stderrors.New("undefined cross-reference")

// Decode parses GEDCOM text into a tree. Person IDs are taken from the INDI
// cross-references, so a file written by [Encode] decodes to the same IDs.
// Any FAM record referencing an undefined INDI fails the whole decode.
func Decode(r io.Reader) (family.Tree, error) {
	t, _, err := decode(r, false)
	return t, err
}

// DecodeLenient is like [Decode] but skips FAM records with undefined
// references, returning one error per skipped record.
func DecodeLenient(r io.Reader) (family.Tree, []error, error) {
	return decode(r, true)
}

func decode(r io.Reader, lenient bool) (family.Tree, []error, error) {
	records, err := Parse(r)
	if err != nil {
		return family.Tree{}, nil, err
	}

	var (
		people  = make(map[string]*family.Person)
		ids     = make(map[string]string) // xref -> person ID
		order   []string
		skipped []error
	)

	for _, rec := range records {
		if rec.Tag != "INDI" || rec.XRef == "" {
			continue
		}
		if _, dup := ids[rec.XRef]; dup {
			return family.Tree{}, nil, errors.New(errors.ErrCodeInvalidGedcom, "line %d: duplicate record %s", rec.Number, rec.XRef)
		}
		id := personID(rec.XRef, people)
		ids[rec.XRef] = id
		p := decodeIndividual(rec, id)
		people[id] = &p
		order = append(order, id)
	}

	for _, rec := range records {
		if rec.Tag != "FAM" {
			continue
		}
		if err := decodeFamily(rec, ids, people); err != nil {
			if !lenient {
				return family.Tree{}, nil, err
			}
			skipped = append(skipped, err)
		}
	}

	list := make([]family.Person, 0, len(order))
	for _, id := range order {
		list = append(list, *people[id])
	}
	root := ""
	if len(order) > 0 {
		root = order[0]
	}
	return family.NewTree(root, list...), skipped, nil
}

// personID derives a person ID from an INDI xref: "@I12@" becomes "12".
// Xrefs of other shapes keep their inner text. Collisions get a suffix.
func personID(xref string, taken map[string]*family.Person) string {
	inner := strings.Trim(xref, "@")
	id := inner
	if len(inner) > 1 && inner[0] == 'I' {
		id = inner[1:]
	}
	if _, clash := taken[id]; !clash {
		return id
	}
	if _, clash := taken[inner]; !clash {
		return inner
	}
	for i := 2; ; i++ {
		candidate := inner + "-" + strconv.Itoa(i)
		if _, clash := taken[candidate]; !clash {
			return candidate
		}
	}
}

func decodeIndividual(rec *Record, id string) family.Person {
	p := family.Person{
		ID:          id,
		Gender:      family.Other,
		SpouseIDs:   []string{},
		ChildrenIDs: []string{},
	}

	if name := rec.Child("NAME"); name != nil {
		p.FirstName, p.LastName = splitName(name.Value)
		if v := strings.TrimSpace(name.ChildValue("GIVN")); v != "" {
			p.FirstName = v
		}
		if v := strings.TrimSpace(name.ChildValue("SURN")); v != "" {
			p.LastName = v
		}
	}
	if p.FirstName == "" {
		p.FirstName = family.UnknownName
	}
	if p.LastName == "" {
		p.LastName = family.UnknownName
	}

	p.Gender = family.ParseGender(rec.ChildValue("SEX"))

	if ev := rec.Child("BIRT"); ev != nil {
		p.BirthDate = ParseDate(ev.ChildValue("DATE"))
		p.BirthPlace = ev.ChildValue("PLAC")
	}
	if ev := rec.Child("DEAT"); ev != nil {
		p.DeathDate = ParseDate(ev.ChildValue("DATE"))
		p.DeathPlace = ev.ChildValue("PLAC")
	}

	var notes []string
	for _, n := range rec.All("NOTE") {
		notes = append(notes, noteText(n))
	}
	p.Bio = strings.Join(notes, "\n")

	if obj := rec.Child("OBJE"); obj != nil {
		if file := obj.ChildValue("FILE"); isLink(file) {
			p.Photo = file
		}
	}
	return p
}

// splitName splits "First /Last/" into its given and surname parts.
func splitName(v string) (string, string) {
	given, rest, found := strings.Cut(v, "/")
	if !found {
		return strings.TrimSpace(v), ""
	}
	surname, _, _ := strings.Cut(rest, "/")
	return strings.TrimSpace(given), strings.TrimSpace(surname)
}

// noteText joins a NOTE value with its CONT (new line) and CONC
// (continuation) sub-lines.
func noteText(n *Record) string {
	var b strings.Builder
	b.WriteString(n.Value)
	for _, c := range n.Children {
		switch c.Tag {
		case "CONT":
			b.WriteByte('\n')
			b.WriteString(c.Value)
		case "CONC":
			b.WriteString(c.Value)
		}
	}
	return b.String()
}

func decodeFamily(rec *Record, ids map[string]string, people map[string]*family.Person) error {
	lookup := func(sub *Record) (string, error) {
		id, ok := ids[strings.TrimSpace(sub.Value)]
		if !ok {
			return "", errors.Wrap(errors.ErrCodeInvalidGedcom, ErrUndefinedXRef,
				"line %d: %s %s references %s", sub.Number, rec.XRef, sub.Tag, sub.Value)
		}
		return id, nil
	}

	var husband, wife string
	var err error
	if sub := rec.Child("HUSB"); sub != nil {
		if husband, err = lookup(sub); err != nil {
			return err
		}
	}
	if sub := rec.Child("WIFE"); sub != nil {
		if wife, err = lookup(sub); err != nil {
			return err
		}
	}
	var children []string
	for _, sub := range rec.All("CHIL") {
		id, err := lookup(sub)
		if err != nil {
			return err
		}
		children = append(children, id)
	}

	for _, c := range children {
		child := people[c]
		if husband != "" {
			child.FatherID = husband
			appendUnique(&people[husband].ChildrenIDs, c)
		}
		if wife != "" {
			child.MotherID = wife
			appendUnique(&people[wife].ChildrenIDs, c)
		}
	}

	if husband != "" && wife != "" && husband != wife && rec.ChildValue(unmarriedTag) != "Y" {
		appendUnique(&people[husband].SpouseIDs, wife)
		appendUnique(&people[wife].SpouseIDs, husband)
	}
	return nil
}

func appendUnique(ids *[]string, id string) {
	if !slices.Contains(*ids, id) {
		*ids = append(*ids, id)
	}
}
