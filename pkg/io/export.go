package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lineage/pkg/family"
)

// FormatVersion is written into every export.
const FormatVersion = 1

type document struct {
	Version int             `json:"version,omitempty"`
	RootID  string          `json:"rootId"`
	People  []family.Person `json:"people"`
}

// WriteJSON encodes a tree as indented JSON and writes it to w.
// This format can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(t family.Tree, w io.Writer) error {
	out := document{
		Version: FormatVersion,
		RootID:  t.RootID,
		People:  t.Sorted(),
	}
	for i, p := range out.People {
		out.People[i] = p.Clone()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a tree to a JSON file at path.
func ExportJSON(t family.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
