// Package filestore persists person records as JSON files, one file per
// person, in a per-user directory.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/store"
)

// Store is a file-backed store.Backend.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// New opens the tree of userID under baseDir, creating the directory if
// needed. If baseDir is empty, defaults to $XDG_DATA_HOME/lineage/people
// (falling back to ~/.local/share).
func New(baseDir, userID string) (*Store, error) {
	if err := errors.ValidateID(userID); err != nil {
		return nil, err
	}
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	dir := filepath.Join(baseDir, userID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultDir returns the default base directory for person files.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "lineage", "people"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "lineage", "people"), nil
}

func (s *Store) Name() string { return "file" }

// Dir returns the directory holding this user's records.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// LoadAll reads every *.json record in the directory. A record that cannot
// be parsed fails the load; silently skipping it would lose relatives.
func (s *Store) LoadAll(ctx context.Context) ([]family.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	var people []family.Person
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var p family.Person
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		if p.ID == "" {
			p.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		people = append(people, p.Clone())
	}
	return people, nil
}

// Put writes one record atomically (temp file plus rename).
func (s *Store) Put(ctx context.Context, p family.Person) error {
	if err := errors.ValidateID(p.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p.Clone(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal person: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".person-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write person: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write person: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(p.ID)); err != nil {
		return fmt.Errorf("write person: %w", err)
	}
	return nil
}

// Clear removes every record file.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read store dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Close does nothing for the file store.
func (s *Store) Close() error { return nil }

var _ store.Backend = (*Store)(nil)
