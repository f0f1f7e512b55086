package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE persons (id INTEGER PRIMARY KEY, external_id TEXT NOT NULL, born INTEGER)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "persons")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "integer", colMap["id"].Type)
	assert.Equal(t, "PRI", colMap["id"].Key)
	assert.Equal(t, "text", colMap["external_id"].Type)
	assert.Equal(t, "NO", colMap["external_id"].Null)
	assert.Equal(t, "YES", colMap["born"].Null)

	// PRAGMA table_info returns nothing for a missing table.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE reigns (id TEXT PRIMARY KEY, reign_from DATETIME)").Error)

	missing, err := MissingColumns(db, "reigns", []string{"id", "reign_from", "reign_to"})
	require.NoError(t, err)
	assert.Equal(t, []string{"reign_to"}, missing)

	missing, err = MissingColumns(db, "nothing", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, missing)
}
