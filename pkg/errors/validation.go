package errors

import (
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/lineage/pkg/family"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func personValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidatePerson checks that a person record can be persisted: ID, first and
// last name must be non-blank, gender must be one of the known values and
// the photo must fit the storage limit. Relationship IDs are not checked;
// dangling references are tolerated.
func ValidatePerson(p family.Person) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return New(ErrCodeInvalidPerson, "first name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return New(ErrCodeInvalidPerson, "last name is required")
	}
	if err := ValidateID(p.ID); err != nil {
		return err
	}

	if err := personValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return Wrap(ErrCodeInvalidPerson, err, "invalid %s (%s)", fe.Field(), fe.Tag())
		}
		return Wrap(ErrCodeInvalidPerson, err, "invalid person")
	}
	return nil
}

// ValidateID validates a person ID for safety. IDs become file names and
// database keys, so the rules are intentionally conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - No control characters, whitespace, path separators or ".."
//   - No "@" (reserved for GEDCOM cross-references)
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "id contains invalid characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"@",    // GEDCOM xref delimiter
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a user-supplied file path for import or export.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
