package gedcom

import "testing"

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1920-05-15", "15 MAY 1920"},
		{"2000-12-01", "1 DEC 2000"},
		{" 1955-11-30 ", "30 NOV 1955"},
		{"1920-13-01", "1920-13-01"},
		{"1920", "1920"},
		{"", ""},
		{"not-a-date", "not-a-date"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"15 MAY 1920", "1920-05-15"},
		{"1 jan 1980", "1980-01-01"},
		{"01 Feb 1999", "1999-02-01"},
		{"ABT 1900", "ABT 1900"},
		{"MAY 1920", "MAY 1920"},
		{"31 FEB 1920", "31 FEB 1920"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseDate(tt.in); got != tt.want {
			t.Errorf("ParseDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
