package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lineage/pkg/family"
	"github.com/matzehuels/lineage/pkg/store"
)

func TestRowConversion(t *testing.T) {
	for _, p := range store.Seed() {
		row, err := toRow("usr_1", p)
		require.NoError(t, err)
		assert.Equal(t, "usr_1", row.Owner)

		back, err := fromRow(row)
		require.NoError(t, err)
		assert.Equal(t, p.Clone(), back, p.ID)
	}
}

func TestRowNilRelationships(t *testing.T) {
	row, err := toRow("usr_1", family.Person{ID: "x", FirstName: "A", LastName: "B", Gender: family.Other})
	require.NoError(t, err)
	assert.Equal(t, "[]", row.SpouseIDs)
	assert.Equal(t, "[]", row.ChildrenIDs)

	row.SpouseIDs = ""
	p, err := fromRow(row)
	require.NoError(t, err)
	assert.NotNil(t, p.SpouseIDs)
}

func TestRowCorruptRelationships(t *testing.T) {
	_, err := fromRow(personRow{ID: "x", ChildrenIDs: "[1,"})
	assert.Error(t, err)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "people", personRow{}.TableName())
}
