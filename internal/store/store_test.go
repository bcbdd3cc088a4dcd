package store

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hpungsan/passgen/internal/errors"
	"github.com/hpungsan/passgen/internal/record"
)

var fixedNow = time.Date(2024, 6, 1, 12, 30, 45, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

// newJSONStore returns a store over a JSON file in a fresh temp dir.
func newJSONStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "saved_passwords.json")
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return New(NewJSONFile(path), opts...), path
}

// failingBackend loads fine but refuses every write.
type failingBackend struct {
	records []record.Record
}

func (b *failingBackend) Load() ([]record.Record, error) { return b.records, nil }

func (b *failingBackend) SaveAll([]record.Record) error { return stderrors.New("disk full") }

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s, _ := newJSONStore(t, WithLogger(zap.New(core)))

	records := s.Load()

	assert.Empty(t, records)
	assert.NoError(t, s.LoadWarning())
	assert.Equal(t, 0, logs.Len())
}

func TestLoad_CorruptFileWarnsAndIsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s, path := newJSONStore(t, WithLogger(zap.New(core)))
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "a list"`), 0600))

	records := s.Load()

	assert.Empty(t, records)
	assert.Error(t, s.LoadWarning())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "could not load saved passwords", logs.All()[0].Message)
	assert.Equal(t, path, logs.All()[0].ContextMap()["path"])
}

func TestAppend_RoundTrip(t *testing.T) {
	s, path := newJSONStore(t)

	_, err := s.Append("first-pw", "one")
	require.NoError(t, err)
	rec, err := s.Append("Zx9!Zx9!Zx9!", "")
	require.NoError(t, err)
	assert.Equal(t, record.DefaultDescription, rec.Description)

	fresh := New(NewJSONFile(path)).Load()
	require.Len(t, fresh, 2)

	last := fresh[len(fresh)-1]
	assert.Equal(t, "Zx9!Zx9!Zx9!", last.Password)
	assert.Equal(t, record.DefaultDescription, last.Description)
	assert.Equal(t, 12, last.Length)
	assert.Equal(t, "2024-06-01 12:30:45", last.Timestamp)
	assert.Equal(t, "first-pw", fresh[0].Password)
}

func TestSaveAll_FileFormat(t *testing.T) {
	s, path := newJSONStore(t)
	_, err := s.Append("pw", "bank")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
  {
    "password": "pw",
    "description": "bank",
    "timestamp": "2024-06-01 12:30:45",
    "length": 2
  }
]
`
	assert.Equal(t, want, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestClear(t *testing.T) {
	s, path := newJSONStore(t)
	_, err := s.Append("pw", "")
	require.NoError(t, err)

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Records())

	assert.Empty(t, New(NewJSONFile(path)).Load())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestAppend_WriteFailureKeepsMemory(t *testing.T) {
	existing := []record.Record{record.New("kept", "", fixedNow)}
	s := New(&failingBackend{records: existing})
	s.Load()

	_, err := s.Append("lost", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPersistence))
	assert.Equal(t, existing, s.Records())

	err = s.Clear()
	assert.True(t, errors.Is(err, errors.ErrPersistence))
	assert.Len(t, s.Records(), 1)
}

func TestJSONFile_WriteFailurePreservesFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	s := New(NewJSONFile(filepath.Join(blocker, "saved.json")))
	_, err := s.Append("pw", "")
	assert.True(t, errors.Is(err, errors.ErrPersistence))
	assert.Empty(t, s.Records())
}

func TestJSONFile_NoTempFilesLeft(t *testing.T) {
	s, path := newJSONStore(t)
	for range 3 {
		_, err := s.Append("pw", "")
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "saved_passwords.json", entries[0].Name())
}

func TestRecords_ReturnsCopy(t *testing.T) {
	s, _ := newJSONStore(t)
	_, err := s.Append("pw", "")
	require.NoError(t, err)

	got := s.Records()
	got[0].Password = "mutated"

	assert.Equal(t, "pw", s.Records()[0].Password)
}

func TestRecords_LoadsLazily(t *testing.T) {
	_, path := newJSONStore(t)
	seed := New(NewJSONFile(path), WithClock(fixedClock))
	_, err := seed.Append("pw", "")
	require.NoError(t, err)

	s := New(NewJSONFile(path))
	assert.Equal(t, 1, s.Len())
}

func TestAppend_AfterCorruptLoadStartsFresh(t *testing.T) {
	s, path := newJSONStore(t)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	s.Load()

	_, err := s.Append("pw", "")
	require.NoError(t, err)

	fresh := New(NewJSONFile(path)).Load()
	require.Len(t, fresh, 1)
	assert.Equal(t, "pw", fresh[0].Password)
}
