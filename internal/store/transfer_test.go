package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/passgen/internal/errors"
)

func TestValidateTransferPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"valid", "/tmp/out.jsonl", false},
		{"relative", "out.jsonl", false},
		{"empty", "", true},
		{"wrong extension", "/tmp/out.json", true},
		{"traversal", "/tmp/../etc/out.jsonl", true},
		{"dots in name", "/tmp/my..file.jsonl", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransferPath(tt.path)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExport_WritesHeaderAndRecords(t *testing.T) {
	s, _ := newJSONStore(t)
	_, err := s.Append("one", "a")
	require.NoError(t, err)
	_, err = s.Append("two", "b")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.jsonl")
	out, err := Export(s, path, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Len(t, out.ExportID, 26)
	assert.Equal(t, fixedNow.Unix(), out.ExportedAt)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)

	var header ExportHeader
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	assert.True(t, header.PassgenExport)
	assert.Equal(t, ExportSchemaVersion, header.SchemaVersion)
	assert.Equal(t, out.ExportID, header.ExportID)
	assert.Contains(t, lines[1], `"password":"one"`)
}

func TestExportImport_RoundTrip(t *testing.T) {
	src, _ := newJSONStore(t)
	_, err := src.Append("first", "a")
	require.NoError(t, err)
	_, err = src.Append("sëcond", "")
	require.NoError(t, err)

	path := DefaultExportPath(t.TempDir(), fixedNow)
	_, err = Export(src, path, fixedNow)
	require.NoError(t, err)

	dst, _ := newJSONStore(t)
	out, err := Import(dst, path)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Imported)
	assert.Empty(t, out.Errors)
	assert.Equal(t, src.Records(), dst.Records())
}

func TestImport_AllOrNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	body := strings.Join([]string{
		`{"_passgen_export":true,"schema_version":"1.0"}`,
		`{"password":"good","description":"ok","timestamp":"2024-01-01 00:00:00","length":4}`,
		`{"password":"bad","description":"","timestamp":"2024-01-01 00:00:00","length":9}`,
		`not json`,
		`{"password":"","timestamp":"2024-01-01 00:00:00"}`,
		`{"password":"when","timestamp":"yesterday"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	s, _ := newJSONStore(t)
	out, err := Import(s, path)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Imported)
	require.Len(t, out.Errors, 4)
	assert.Equal(t, 3, out.Errors[0].Line)
	assert.Equal(t, "INVALID_RECORD", out.Errors[0].Code)
	assert.Equal(t, "PARSE_ERROR", out.Errors[1].Code)
	assert.Empty(t, s.Records())
}

func TestImport_FillsDerivedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	body := `{"password":"abc","timestamp":"2024-01-01 00:00:00"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	s, _ := newJSONStore(t)
	out, err := Import(s, path)
	require.NoError(t, err)
	require.Equal(t, 1, out.Imported)

	got := s.Records()[0]
	assert.Equal(t, 3, got.Length)
	assert.Equal(t, "No description", got.Description)
}

func TestImport_MissingFile(t *testing.T) {
	s, _ := newJSONStore(t)
	_, err := Import(s, filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestImport_RejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "real.jsonl")
	require.NoError(t, os.WriteFile(target, []byte(`{"password":"abc","timestamp":"2024-01-01 00:00:00"}`+"\n"), 0o600))
	link := filepath.Join(dir, "link.jsonl")
	require.NoError(t, os.Symlink(target, link))

	s, _ := newJSONStore(t)
	_, err := Import(s, link)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	assert.Equal(t, 0, s.Len())
}
