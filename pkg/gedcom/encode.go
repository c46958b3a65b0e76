package gedcom

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/lineage/pkg/family"
)

// Header values written at the top of every file.
const (
	SourceTag = "FamilyTreeAI"
	Version   = "5.5.1"
	Form      = "LINEAGE-LINKED"
	Charset   = "UTF-8"
)

// unknownParent stands in for a missing parent in a family key.
const unknownParent = "U"

// unmarriedTag marks a FAM record whose partners are parents but not spouses.
const unmarriedTag = "_UNMARRIED"

// DroppedRef is a relationship reference skipped because its target is not
// in the tree.
type DroppedRef struct {
	PersonID string // person holding the reference
	Field    string // "father", "mother" or "spouse"
	TargetID string
}

// Report summarizes one encoding pass.
type Report struct {
	Individuals int
	Families    int
	Dropped     []DroppedRef
}

// Encode renders t as GEDCOM 5.5.1 text. Output depends only on the tree's
// content: people are written in ID order and families in the order they
// are first discovered.
func Encode(t family.Tree) []byte {
	data, _ := EncodeReport(t)
	return data
}

// EncodeReport is [Encode] plus a summary of what was written and dropped.
func EncodeReport(t family.Tree) ([]byte, Report) {
	var buf bytes.Buffer
	rep := encode(&lineWriter{w: &buf}, t)
	return buf.Bytes(), rep
}

// Write encodes t to w.
func Write(w io.Writer, t family.Tree) (Report, error) {
	lw := &lineWriter{w: w}
	rep := encode(lw, t)
	return rep, lw.err
}

func encode(w *lineWriter, t family.Tree) Report {
	people := t.Sorted()
	fams := buildFamilies(t, people)

	w.line(0, "", "HEAD", "")
	w.line(1, "", "SOUR", SourceTag)
	w.line(1, "", "GEDC", "")
	w.line(2, "", "VERS", Version)
	w.line(2, "", "FORM", Form)
	w.line(1, "", "CHAR", Charset)

	for _, p := range people {
		writeIndividual(w, p, fams)
	}
	for _, f := range fams.order {
		writeFamily(w, f)
	}

	w.line(0, "", "TRLR", "")

	return Report{
		Individuals: len(people),
		Families:    len(fams.order),
		Dropped:     fams.dropped,
	}
}

func writeIndividual(w *lineWriter, p family.Person, fams *familySet) {
	w.line(0, personXRef(p.ID), "INDI", "")
	w.line(1, "", "NAME", clean(p.FirstName)+" /"+clean(p.LastName)+"/")
	w.line(2, "", "GIVN", clean(p.FirstName))
	w.line(2, "", "SURN", clean(p.LastName))
	w.line(1, "", "SEX", sexCode(p.Gender))

	writeEvent(w, "BIRT", p.BirthDate, p.BirthPlace)
	writeEvent(w, "DEAT", p.DeathDate, p.DeathPlace)

	if p.Bio != "" {
		w.line(1, "", "NOTE", clean(p.Bio))
	}
	if isLink(p.Photo) {
		w.line(1, "", "OBJE", "")
		w.line(2, "", "FILE", p.Photo)
	}

	if key, ok := fams.childOf[p.ID]; ok {
		w.line(1, "", "FAMC", famXRef(key))
	}
	for _, key := range fams.spouseOf[p.ID] {
		w.line(1, "", "FAMS", famXRef(key))
	}
}

func writeEvent(w *lineWriter, tag, date, place string) {
	if date == "" && place == "" {
		return
	}
	w.line(1, "", tag, "")
	if date != "" {
		w.line(2, "", "DATE", clean(FormatDate(date)))
	}
	if place != "" {
		w.line(2, "", "PLAC", clean(place))
	}
}

func writeFamily(w *lineWriter, f *familyRecord) {
	w.line(0, famXRef(f.key), "FAM", "")
	if f.husband != "" {
		w.line(1, "", "HUSB", personXRef(f.husband))
	}
	if f.wife != "" {
		w.line(1, "", "WIFE", personXRef(f.wife))
	}
	if f.husband != "" && f.wife != "" && !f.married {
		w.line(1, "", unmarriedTag, "Y")
	}
	for _, c := range f.children {
		w.line(1, "", "CHIL", personXRef(c))
	}
}

func sexCode(g family.Gender) string {
	switch g {
	case family.Male:
		return "M"
	case family.Female:
		return "F"
	default:
		return "U"
	}
}

func personXRef(id string) string { return "@I" + id + "@" }
func famXRef(key string) string   { return "@" + key + "@" }

// clean flattens line breaks so a value cannot start a new GEDCOM line.
func clean(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

func isLink(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// lineWriter writes GEDCOM lines and remembers the first write error.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) line(level int, xref, tag, value string) {
	if lw.err != nil {
		return
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(level))
	if xref != "" {
		b.WriteByte(' ')
		b.WriteString(xref)
	}
	b.WriteByte(' ')
	b.WriteString(tag)
	if value != "" {
		b.WriteByte(' ')
		b.WriteString(value)
	}
	b.WriteByte('\n')
	_, lw.err = io.WriteString(lw.w, b.String())
}
