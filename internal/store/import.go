package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hpungsan/passgen/internal/record"
)

// ImportOutput contains the result of Import.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError describes a rejected line of an import file.
type ImportError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importLine is a decoded line: either the header or a record.
type importLine struct {
	PassgenExport bool `json:"_passgen_export"`
	record.Record
}

// Import appends the records of a JSONL export to s.
// The import is all or nothing: if any line is invalid, nothing is appended
// and the problems are returned in ImportOutput.Errors.
func Import(s *Store, path string) (*ImportOutput, error) {
	if err := ValidateTransferPath(path); err != nil {
		return nil, err
	}

	file, err := openImportFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, problems := parseExport(file)
	if len(problems) > 0 {
		return &ImportOutput{Errors: problems}, nil
	}
	if len(records) == 0 {
		return &ImportOutput{}, nil
	}

	if err := s.AppendRecords(records...); err != nil {
		return nil, err
	}
	return &ImportOutput{Imported: len(records)}, nil
}

// parseExport decodes and validates every line of an export file.
func parseExport(file *os.File) ([]record.Record, []ImportError) {
	var records []record.Record
	var problems []ImportError

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var decoded importLine
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			problems = append(problems, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if decoded.PassgenExport {
			continue
		}

		rec, err := normalizeImported(decoded.Record)
		if err != nil {
			problems = append(problems, ImportError{
				Line:    lineNum,
				Code:    "INVALID_RECORD",
				Message: err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		problems = append(problems, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, problems
}

// normalizeImported fills derived fields and rejects inconsistent records.
func normalizeImported(r record.Record) (record.Record, error) {
	if r.Password == "" {
		return r, fmt.Errorf("missing password")
	}
	if _, err := r.CreatedAt(); err != nil {
		return r, fmt.Errorf("timestamp %q is not in %q format", r.Timestamp, record.TimestampLayout)
	}
	if r.Length == 0 {
		r.Length = record.CountChars(r.Password)
	}
	if !r.Consistent() {
		return r, fmt.Errorf("length %d does not match password length %d", r.Length, record.CountChars(r.Password))
	}
	if strings.TrimSpace(r.Description) == "" {
		r.Description = record.DefaultDescription
	}
	return r, nil
}
