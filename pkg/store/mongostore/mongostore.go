// Package mongostore persists family trees in a MongoDB collection. Each
// document holds one person and the ID of the user that owns it.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/store"
)

// Defaults for Config.
const (
	DefaultDatabase   = "lineage"
	DefaultCollection = "people"
)

// Config holds connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// document is the stored shape of one person.
type document struct {
	Key    string        `bson:"_id"`
	Owner  string        `bson:"owner"`
	Person family.Person `bson:"person"`
}

// Store is a MongoDB-backed store.Backend.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	owner  string
	owned  bool
}

// Open connects to MongoDB and opens the tree of userID.
func Open(ctx context.Context, cfg Config, userID string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db, coll := cfg.Database, cfg.Collection
	if db == "" {
		db = DefaultDatabase
	}
	if coll == "" {
		coll = DefaultCollection
	}
	s, err := New(client.Database(db).Collection(coll), userID)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	s.client, s.owned = client, true

	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New opens the tree of userID on an existing collection.
func New(coll *mongo.Collection, userID string) (*Store, error) {
	if err := errors.ValidateID(userID); err != nil {
		return nil, err
	}
	return &Store{coll: coll, owner: userID}, nil
}

// EnsureIndexes creates the owner index used by LoadAll and Clear.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create owner index: %w", err)
	}
	return nil
}

func (s *Store) Name() string { return "mongo" }

func (s *Store) LoadAll(ctx context.Context) ([]family.Person, error) {
	cur, err := s.coll.Find(ctx, ownerFilter(s.owner))
	if err != nil {
		return nil, fmt.Errorf("find people: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read people: %w", err)
	}
	people := make([]family.Person, len(docs))
	for i, d := range docs {
		people[i] = d.Person.Clone()
	}
	return people, nil
}

func (s *Store) Put(ctx context.Context, p family.Person) error {
	doc := newDocument(s.owner, p)
	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.Key}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, ownerFilter(s.owner)); err != nil {
		return fmt.Errorf("clear people: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.owned && s.client != nil {
		return s.client.Disconnect(context.Background())
	}
	return nil
}

func newDocument(owner string, p family.Person) document {
	return document{Key: documentKey(owner, p.ID), Owner: owner, Person: p.Clone()}
}

// documentKey scopes person IDs per owner so sample IDs like "1" do not
// collide between users.
func documentKey(owner, personID string) string {
	return owner + "/" + personID
}

func ownerFilter(owner string) bson.D {
	return bson.D{{Key: "owner", Value: owner}}
}

var _ store.Backend = (*Store)(nil)
