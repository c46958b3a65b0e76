package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys for extraction results.
type Keyer interface {
	// ExtractKey keys a structured extraction of free text.
	ExtractKey(model, text string) string

	// BioKey keys a generated biography.
	BioKey(model string, opts BioKeyOpts) string
}

// BioKeyOpts are the person facts a biography is generated from.
type BioKeyOpts struct {
	Name       string
	Gender     string
	BirthDate  string
	BirthPlace string
	DeathDate  string
	DeathPlace string
}

// DefaultKeyer hashes request inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ExtractKey returns "extract:<sha256>" over the model and text.
func (DefaultKeyer) ExtractKey(model, text string) string {
	return hashKey("extract", model, text)
}

// BioKey returns "bio:<sha256>" over the model and person facts.
func (DefaultKeyer) BioKey(model string, opts BioKeyOpts) string {
	return hashKey("bio", model, opts)
}

var _ Keyer = DefaultKeyer{}

// hashKey returns "<kind>:<sha256 of the JSON-encoded parts>".
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
