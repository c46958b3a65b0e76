// Package redisstore persists a user's family tree in a Redis hash:
// one hash per user, one field per person holding the person as JSON.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/store"
)

const keyPrefix = "lineage:tree:"

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store is a Redis-backed store.Backend.
type Store struct {
	client redis.UniversalClient
	key    string
	owned  bool
}

// Open connects to Redis and opens the tree of userID.
func Open(ctx context.Context, cfg Config, userID string) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	s, err := New(client, userID)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New opens the tree of userID on an existing client. Close does not close
// a client passed in here.
func New(client redis.UniversalClient, userID string) (*Store, error) {
	if err := errors.ValidateID(userID); err != nil {
		return nil, err
	}
	return &Store{client: client, key: Key(userID)}, nil
}

// Key returns the hash key holding userID's tree.
func Key(userID string) string { return keyPrefix + userID }

func (s *Store) Name() string { return "redis" }

func (s *Store) LoadAll(ctx context.Context) ([]family.Person, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	return decodeFields(fields)
}

func (s *Store) Put(ctx context.Context, p family.Person) error {
	data, err := json.Marshal(p.Clone())
	if err != nil {
		return fmt.Errorf("marshal person: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, p.ID, data).Err(); err != nil {
		return fmt.Errorf("save %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *Store) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

// decodeFields parses a hash's field values into people. The field name
// wins over an ID missing from the JSON body.
func decodeFields(fields map[string]string) ([]family.Person, error) {
	people := make([]family.Person, 0, len(fields))
	for id, raw := range fields {
		var p family.Person
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("parse person %s: %w", id, err)
		}
		if p.ID == "" {
			p.ID = id
		}
		people = append(people, p.Clone())
	}
	return people, nil
}

var _ store.Backend = (*Store)(nil)
