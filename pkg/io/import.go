package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
)

// ReadJSON decodes a JSON tree from r.
//
// ReadJSON returns an INVALID_FORMAT error if the JSON is malformed, a
// person has no ID, or two people share an ID. Dangling relationship IDs
// are kept as-is; readers of a tree skip them.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (family.Tree, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return family.Tree{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode tree")
	}
	if data.Version > FormatVersion {
		return family.Tree{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported format version %d", data.Version)
	}

	seen := make(map[string]bool, len(data.People))
	for i, p := range data.People {
		if p.ID == "" {
			return family.Tree{}, errors.New(errors.ErrCodeInvalidFormat, "person %d: missing id", i)
		}
		if seen[p.ID] {
			return family.Tree{}, errors.New(errors.ErrCodeInvalidFormat, "person %s: duplicate id", p.ID)
		}
		seen[p.ID] = true
	}

	root := data.RootID
	if root != "" && !seen[root] {
		root = ""
	}
	// NewTree clones each person, which replaces nil relationship lists.
	return family.NewTree(root, data.People...), nil
}

// ImportJSON reads a JSON file at path and returns the decoded tree.
func ImportJSON(path string) (family.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return family.Tree{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
