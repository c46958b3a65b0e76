package errors

import (
	"strings"
	"testing"

	"github.com/matzehuels/lineage/pkg/family"
)

func TestValidatePerson(t *testing.T) {
	valid := family.Person{ID: "p1", FirstName: "Arthur", LastName: "Pendragon", Gender: family.Male}

	tests := []struct {
		name    string
		mutate  func(p *family.Person)
		wantErr bool
	}{
		{"valid", func(p *family.Person) {}, false},
		{"other gender", func(p *family.Person) { p.Gender = family.Other }, false},
		{"dangling spouse allowed", func(p *family.Person) { p.SpouseIDs = []string{"ghost"} }, false},

		{"empty first name", func(p *family.Person) { p.FirstName = "" }, true},
		{"blank last name", func(p *family.Person) { p.LastName = "   " }, true},
		{"empty id", func(p *family.Person) { p.ID = "" }, true},
		{"unknown gender", func(p *family.Person) { p.Gender = "Robot" }, true},
		{"missing gender", func(p *family.Person) { p.Gender = "" }, true},
		{"photo too large", func(p *family.Person) { p.Photo = strings.Repeat("A", 3_000_000) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid.Clone()
			tt.mutate(&p)
			err := ValidatePerson(p)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePerson() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPerson) && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("unexpected code %q", GetCode(err))
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "1", false},
		{"uuid", "4f9b2c1e-8d3a-4b6f-9e2d-1a2b3c4d5e6f", false},
		{"underscore", "I_12", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"path traversal", "..", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"xref delimiter", "@I1@", true},
		{"space", "a b", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "family.ged", false},
		{"absolute", "/tmp/family.ged", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"control char", "fam\x01ily.ged", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://api.openai.com/v1", false},
		{"http://localhost:8080", false},
		{"", true},
		{"ftp://example.com", true},
	}

	for _, tt := range tests {
		if err := ValidateURL(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
