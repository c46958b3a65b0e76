// Package extract turns free text into person records and writes short
// biographies using a language model.
//
// The [Extractor] interface is the boundary the rest of the module depends
// on. [OpenAI] implements it against any OpenAI-compatible chat completion
// endpoint, [Cached] adds response caching, and [Disabled] stands in when
// no API key is configured.
//
// Two failure modes are kept apart so callers can report them differently:
//
//   - [ErrNotExtracted] (code NOT_EXTRACTED): the service answered but the
//     answer held no usable person.
//   - AI_UNAVAILABLE: the service could not be reached or refused the
//     request.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
)

var (
	// ErrNotExtracted is returned when the reply contains no first name,
	// last name and gender.
	ErrNotExtracted = errors.New(errors.ErrCodeNotExtracted, "could not extract data, please try being more specific")

	// ErrNoBiography is returned when the service answers with empty text.
	ErrNoBiography = errors.New(errors.ErrCodeNotExtracted, "could not generate biography")
)

// Extractor is the text extraction collaborator.
type Extractor interface {
	// Extract reads a free-text description and returns the person it
	// describes. FirstName, LastName and Gender are always set on success.
	Extract(ctx context.Context, text string) (*family.Partial, error)

	// Biography writes a short biography from the facts recorded on p.
	Biography(ctx context.Context, p family.Person) (string, error)

	// Model names the model answering requests. It is part of cache keys.
	Model() string
}

// unavailable wraps a transport or API failure.
func unavailable(err error) error {
	return errors.Wrap(errors.ErrCodeAIUnavailable, err, "AI service unavailable")
}

const extractInstructions = `Extract genealogy information from the user's text into a JSON object with these fields:
  firstName (string, required)
  lastName (string, required)
  gender (one of "Male", "Female", "Other", required)
  birthDate (YYYY-MM-DD if possible, otherwise the text as written)
  birthPlace (string)
  deathDate (YYYY-MM-DD if possible)
  deathPlace (string)
  bio (a summary of the text provided)
Omit fields that the text does not mention. Reply with the JSON object only.`

func extractPrompt(text string) string {
	return fmt.Sprintf("Text: %q", strings.TrimSpace(text))
}

func biographyPrompt(p family.Person) string {
	return fmt.Sprintf(`Write a short, engaging biography (max 150 words) for a genealogy record.
The tone should be respectful and historical.

Details:
Name: %s
Gender: %s
Born: %s at %s
Died: %s at %s

If dates are missing, focus on the name and legacy. Avoid making up specific facts not provided, but you can add general historical context if the date is provided.`,
		p.FullName(), p.Gender,
		orUnknown(p.BirthDate), orUnknown(p.BirthPlace),
		orUnknown(p.DeathDate), orUnknown(p.DeathPlace))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// reply is the JSON object the model is asked to produce.
type reply struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Gender     string `json:"gender"`
	BirthDate  string `json:"birthDate"`
	BirthPlace string `json:"birthPlace"`
	DeathDate  string `json:"deathDate"`
	DeathPlace string `json:"deathPlace"`
	Bio        string `json:"bio"`
}

// parseReply decodes a model answer into a partial person. Markdown code
// fences around the JSON are tolerated.
func parseReply(content string) (*family.Partial, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	if content == "" || content == "null" {
		return nil, ErrNotExtracted
	}

	var r reply
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotExtracted, err)
	}
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.FirstName == "" || r.LastName == "" || strings.TrimSpace(r.Gender) == "" {
		return nil, ErrNotExtracted
	}

	return &family.Partial{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Gender:     family.ParseGender(r.Gender),
		BirthDate:  strings.TrimSpace(r.BirthDate),
		BirthPlace: strings.TrimSpace(r.BirthPlace),
		DeathDate:  strings.TrimSpace(r.DeathDate),
		DeathPlace: strings.TrimSpace(r.DeathPlace),
		Bio:        strings.TrimSpace(r.Bio),
	}, nil
}

// Disabled is the extractor used when no service is configured. Every call
// fails with AI_UNAVAILABLE.
type Disabled struct{}

func (Disabled) Extract(context.Context, string) (*family.Partial, error) {
	return nil, errors.New(errors.ErrCodeAIUnavailable, "AI service not configured (set ai.api_key or OPENAI_API_KEY)")
}

func (Disabled) Biography(context.Context, family.Person) (string, error) {
	return "", errors.New(errors.ErrCodeAIUnavailable, "AI service not configured (set ai.api_key or OPENAI_API_KEY)")
}

func (Disabled) Model() string { return "" }

var _ Extractor = Disabled{}
