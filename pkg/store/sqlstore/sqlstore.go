// Package sqlstore persists family trees in PostgreSQL through GORM.
//
// People live in a single "people" table keyed by (owner, id). Relationship
// lists are stored as JSON text columns; the graph is always loaded whole,
// so they are never queried relationally.
package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/store"
)

// personRow is the table model.
type personRow struct {
	Owner       string `gorm:"primaryKey;size:128"`
	ID          string `gorm:"primaryKey;size:128"`
	FirstName   string `gorm:"not null"`
	LastName    string `gorm:"not null"`
	Gender      string `gorm:"size:16;not null"`
	BirthDate   string
	BirthPlace  string
	DeathDate   string
	DeathPlace  string
	Bio         string `gorm:"type:text"`
	Photo       string `gorm:"type:text"`
	FatherID    string `gorm:"size:128"`
	MotherID    string `gorm:"size:128"`
	SpouseIDs   string `gorm:"type:text;not null;default:'[]'"`
	ChildrenIDs string `gorm:"type:text;not null;default:'[]'"`
	UpdatedAt   time.Time
}

func (personRow) TableName() string { return "people" }

// Store is a PostgreSQL-backed store.Backend.
type Store struct {
	db    *gorm.DB
	owner string
	owned bool
}

// Open connects to PostgreSQL with dsn, migrates the schema and opens the
// tree of userID.
func Open(dsn, userID string, debug bool) (*Store, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}
	s, err := New(db, userID)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	s.owned = true
	return s, nil
}

// Migrate creates or updates the people table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&personRow{}); err != nil {
		return fmt.Errorf("failed to run auto migrations: %w", err)
	}
	return nil
}

// New opens the tree of userID on an existing connection.
func New(db *gorm.DB, userID string) (*Store, error) {
	if err := errors.ValidateID(userID); err != nil {
		return nil, err
	}
	return &Store{db: db, owner: userID}, nil
}

func (s *Store) Name() string { return "postgres" }

func (s *Store) LoadAll(ctx context.Context) ([]family.Person, error) {
	var rows []personRow
	if err := s.db.WithContext(ctx).Where("owner = ?", s.owner).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load people: %w", err)
	}
	people := make([]family.Person, len(rows))
	for i, r := range rows {
		p, err := fromRow(r)
		if err != nil {
			return nil, err
		}
		people[i] = p
	}
	return people, nil
}

func (s *Store) Put(ctx context.Context, p family.Person) error {
	row, err := toRow(s.owner, p)
	if err != nil {
		return err
	}
	row.UpdatedAt = time.Now()
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("owner = ?", s.owner).Delete(&personRow{}).Error
}

func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func toRow(owner string, p family.Person) (personRow, error) {
	spouses, err := json.Marshal(nonNil(p.SpouseIDs))
	if err != nil {
		return personRow{}, fmt.Errorf("encode spouses of %s: %w", p.ID, err)
	}
	children, err := json.Marshal(nonNil(p.ChildrenIDs))
	if err != nil {
		return personRow{}, fmt.Errorf("encode children of %s: %w", p.ID, err)
	}
	return personRow{
		Owner:       owner,
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Gender:      string(p.Gender),
		BirthDate:   p.BirthDate,
		BirthPlace:  p.BirthPlace,
		DeathDate:   p.DeathDate,
		DeathPlace:  p.DeathPlace,
		Bio:         p.Bio,
		Photo:       p.Photo,
		FatherID:    p.FatherID,
		MotherID:    p.MotherID,
		SpouseIDs:   string(spouses),
		ChildrenIDs: string(children),
	}, nil
}

func fromRow(r personRow) (family.Person, error) {
	p := family.Person{
		ID:         r.ID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Gender:     family.Gender(r.Gender),
		BirthDate:  r.BirthDate,
		BirthPlace: r.BirthPlace,
		DeathDate:  r.DeathDate,
		DeathPlace: r.DeathPlace,
		Bio:        r.Bio,
		Photo:      r.Photo,
		FatherID:   r.FatherID,
		MotherID:   r.MotherID,
	}
	if err := decodeIDs(r.SpouseIDs, &p.SpouseIDs); err != nil {
		return family.Person{}, fmt.Errorf("decode spouses of %s: %w", r.ID, err)
	}
	if err := decodeIDs(r.ChildrenIDs, &p.ChildrenIDs); err != nil {
		return family.Person{}, fmt.Errorf("decode children of %s: %w", r.ID, err)
	}
	return p.Clone(), nil
}

func decodeIDs(raw string, dst *[]string) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

var _ store.Backend = (*Store)(nil)
