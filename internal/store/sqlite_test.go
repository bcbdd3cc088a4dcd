package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/passgen/internal/db"
)

func TestSQLite_RoundTripAndClear(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	s := New(NewSQLite(database), WithClock(fixedClock))
	require.Empty(t, s.Load())

	_, err = s.Append("alpha", "first")
	require.NoError(t, err)
	_, err = s.Append("bravo", "")
	require.NoError(t, err)
	_, err = s.Append("charlie", "third")
	require.NoError(t, err)

	fresh := New(NewSQLite(database)).Load()
	require.Len(t, fresh, 3)
	require.Equal(t, "alpha", fresh[0].Password)
	require.Equal(t, "bravo", fresh[1].Password)
	require.Equal(t, "charlie", fresh[2].Password)
	require.Equal(t, "No description", fresh[1].Description)
	require.Equal(t, 7, fresh[2].Length)

	require.NoError(t, s.Clear())
	require.Empty(t, New(NewSQLite(database)).Load())
}

func TestSQLite_LoadFailureIsWarning(t *testing.T) {
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	database.Close()

	s := New(NewSQLite(database))
	require.Empty(t, s.Load())
	require.Error(t, s.LoadWarning())
}
