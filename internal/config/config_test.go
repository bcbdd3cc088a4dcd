package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultLength != 16 {
		t.Fatalf("DefaultLength = %d, want 16", cfg.DefaultLength)
	}
	if cfg.Backend != BackendJSON {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, BackendJSON)
	}
	if cfg.MinLength != 4 || cfg.MaxLength != 128 {
		t.Fatalf("bounds = [%d, %d], want [4, 128]", cfg.MinLength, cfg.MaxLength)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"default_length": 24, "backend": "sqlite", "ui_port": 9000}`)

	cfg, err := Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.DefaultLength)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 9000, cfg.UIPort)
	assert.Equal(t, "127.0.0.1", cfg.UIBind)
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", `{"backend": "csv"}`},
		{"default below min", `{"default_length": 2}`},
		{"default above max", `{"default_length": 500}`},
		{"max below min", `{"min_length": 10, "max_length": 8, "default_length": 9}`},
		{"bad log level", `{"log_level": "loud"}`},
		{"bad bind", `{"ui_bind": "not-an-ip"}`},
		{"port out of range", `{"ui_port": 70000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, tt.body)

			_, err := Load(tmpDir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestRecordsPath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/base", DefaultRecordsFile), cfg.RecordsPath("/base"))

	cfg.RecordsFile = "/elsewhere/mine.json"
	assert.Equal(t, "/elsewhere/mine.json", cfg.RecordsPath("/base"))

	cfg.RecordsFile = "lists/mine.json"
	assert.Equal(t, filepath.Join("/base", "lists", "mine.json"), cfg.RecordsPath("/base"))
}

func TestMerge(t *testing.T) {
	base := &Config{
		Backend:       BackendJSON,
		DefaultLength: 16,
		DisabledTools: []string{"password_clear"},
	}
	overlay := &Config{
		DefaultLength: 20,
		DisabledTools: []string{" password_clear ", "password_save"},
	}

	result := Merge(base, overlay)

	assert.Equal(t, BackendJSON, result.Backend)
	assert.Equal(t, 20, result.DefaultLength)
	assert.Equal(t, []string{"password_clear", "password_save"}, result.DisabledTools)
}

func TestMergeStringSlice_Empty(t *testing.T) {
	if got := mergeStringSlice(nil, []string{" ", ""}); got != nil {
		t.Errorf("mergeStringSlice() = %v, want nil", got)
	}
}
