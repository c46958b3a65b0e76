package gedcom

import (
	"strings"
	"time"
)

const (
	isoLayout    = "2006-01-02"
	gedcomLayout = "2 Jan 2006"
)

// FormatDate converts a YYYY-MM-DD date into GEDCOM form ("15 MAY 1920").
// Any other input is returned unchanged, so partial or free-form dates such
// as "ABT 1900" survive an export. It never fails.
func FormatDate(s string) string {
	t, err := time.Parse(isoLayout, strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return strings.ToUpper(t.Format(gedcomLayout))
}

// ParseDate converts a GEDCOM "D MON YYYY" date back to YYYY-MM-DD. Month
// names are matched case-insensitively. Any other input (qualified, partial
// or free-form dates) is returned unchanged.
func ParseDate(s string) string {
	trimmed := strings.Join(strings.Fields(s), " ")
	parts := strings.Split(trimmed, " ")
	if len(parts) != 3 || len(parts[1]) != 3 {
		return s
	}
	parts[1] = strings.ToUpper(parts[1][:1]) + strings.ToLower(parts[1][1:])
	t, err := time.Parse(gedcomLayout, strings.Join(parts, " "))
	if err != nil {
		return s
	}
	return t.Format(isoLayout)
}
