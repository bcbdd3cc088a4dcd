package store

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/passgen/internal/errors"
)

// ExportSchemaVersion is written to the header line of every export.
const ExportSchemaVersion = "1.0"

// ExportHeader is the first line of a JSONL export file.
type ExportHeader struct {
	PassgenExport bool   `json:"_passgen_export"`
	SchemaVersion string `json:"schema_version"`
	ExportID      string `json:"export_id"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportOutput contains the result of Export.
type ExportOutput struct {
	ExportID   string `json:"export_id"`
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// DefaultExportPath returns <baseDir>/exports/passwords-<timestamp>.jsonl.
func DefaultExportPath(baseDir string, now time.Time) string {
	name := fmt.Sprintf("passwords-%s.jsonl", now.Format("2006-01-02T150405"))
	return filepath.Join(baseDir, "exports", name)
}

// ValidateTransferPath checks an export or import path.
func ValidateTransferPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewInvalidRequest("path is required")
	}
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return errors.NewInvalidRequest("path must not contain directory traversal (..)")
		}
	}
	if filepath.Ext(filepath.Clean(path)) != ".jsonl" {
		return errors.NewInvalidRequest("path must have .jsonl extension")
	}
	return nil
}

// Export writes every saved record of s to a JSONL file at path.
func Export(s *Store, path string, now time.Time) (*ExportOutput, error) {
	if err := ValidateTransferPath(path); err != nil {
		return nil, err
	}

	id, err := generateULID(now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	header := ExportHeader{
		PassgenExport: true,
		SchemaVersion: ExportSchemaVersion,
		ExportID:      id,
		ExportedAt:    now.Unix(),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}

	records := s.Records()
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return nil, errors.NewPersistence(err)
	}

	return &ExportOutput{
		ExportID:   id,
		Path:       path,
		Count:      len(records),
		ExportedAt: header.ExportedAt,
	}, nil
}

// generateULID generates a new ULID stamped with now.
func generateULID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
