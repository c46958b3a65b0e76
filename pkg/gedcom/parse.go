package gedcom

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/matzehuels/lineage/pkg/errors"
)

// maxLineLength bounds a single input line. GEDCOM allows 255 characters
// but notes and links in the wild are often longer.
const maxLineLength = 1 << 20

// Line is one parsed GEDCOM line.
type Line struct {
	Number int // 1-based line number in the input
	Level  int
	XRef   string // "@I1@", empty when absent
	Tag    string
	Value  string
}

// Record is a line with its nested sub-structures.
type Record struct {
	Line
	Children []*Record
}

// Child returns the first direct sub-record with the given tag.
func (r *Record) Child(tag string) *Record {
	for _, c := range r.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildValue returns the value of the first sub-record with tag, or "".
func (r *Record) ChildValue(tag string) string {
	if c := r.Child(tag); c != nil {
		return c.Value
	}
	return ""
}

// All returns every direct sub-record with the given tag.
func (r *Record) All(tag string) []*Record {
	var out []*Record
	for _, c := range r.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Parse reads GEDCOM text into its level-0 records. It accepts LF and CRLF
// line endings, a leading byte order mark, blank lines and leading
// whitespace. A line without a numeric level, without a tag, or that skips
// a level is an error.
func Parse(r io.Reader) ([]*Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var (
		roots []*Record
		stack []*Record
		n     int
	)
	for sc.Scan() {
		n++
		text := sc.Text()
		if n == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		ln, err := parseLine(n, text)
		if err != nil {
			return nil, err
		}
		rec := &Record{Line: ln}

		if ln.Level == 0 {
			roots = append(roots, rec)
			stack = append(stack[:0], rec)
			continue
		}
		if len(stack) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidGedcom, "line %d: level %d before any record", n, ln.Level)
		}
		if ln.Level > len(stack) {
			return nil, errors.New(errors.ErrCodeInvalidGedcom, "line %d: level %d skips a level", n, ln.Level)
		}
		stack = stack[:ln.Level]
		parent := stack[ln.Level-1]
		parent.Children = append(parent.Children, rec)
		stack = append(stack, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGedcom, err, "read line %d", n+1)
	}
	if len(roots) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGedcom, "no GEDCOM records found")
	}
	return roots, nil
}

func parseLine(n int, text string) (Line, error) {
	fields := strings.SplitN(text, " ", 2)
	level, err := strconv.Atoi(fields[0])
	if err != nil || level < 0 {
		return Line{}, errors.New(errors.ErrCodeInvalidGedcom, "line %d: invalid level %q", n, fields[0])
	}
	ln := Line{Number: n, Level: level}
	if len(fields) < 2 {
		return Line{}, errors.New(errors.ErrCodeInvalidGedcom, "line %d: missing tag", n)
	}

	rest := strings.TrimLeft(fields[1], " ")
	if strings.HasPrefix(rest, "@") {
		xref, tail, _ := strings.Cut(rest, " ")
		if len(xref) < 3 || !strings.HasSuffix(xref, "@") {
			return Line{}, errors.New(errors.ErrCodeInvalidGedcom, "line %d: malformed cross-reference %q", n, xref)
		}
		ln.XRef = xref
		rest = strings.TrimLeft(tail, " ")
	}

	tag, value, _ := strings.Cut(rest, " ")
	if tag == "" {
		return Line{}, errors.New(errors.ErrCodeInvalidGedcom, "line %d: missing tag", n)
	}
	ln.Tag = strings.ToUpper(tag)
	ln.Value = value
	return ln, nil
}
