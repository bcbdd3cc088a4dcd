package store

import (
	"database/sql"
	"fmt"

	"github.com/hpungsan/passgen/internal/record"
)

// SQLite stores records in the saved_passwords table created by db.Init.
type SQLite struct {
	db *sql.DB
}

// NewSQLite returns a backend over an initialized database.
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{db: database}
}

// Load returns all rows in saved order.
func (b *SQLite) Load() ([]record.Record, error) {
	rows, err := b.db.Query(`
		SELECT password, description, timestamp, length
		FROM saved_passwords
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query saved passwords: %w", err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		var r record.Record
		if err := rows.Scan(&r.Password, &r.Description, &r.Timestamp, &r.Length); err != nil {
			return nil, fmt.Errorf("scan saved password: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveAll replaces the table contents in one transaction.
func (b *SQLite) SaveAll(records []record.Record) error {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec("DELETE FROM saved_passwords"); err != nil {
		return fmt.Errorf("clear saved passwords: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO saved_passwords (position, password, description, timestamp, length)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(i, r.Password, r.Description, r.Timestamp, r.Length); err != nil {
			return fmt.Errorf("insert saved password %d: %w", i, err)
		}
	}

	return tx.Commit()
}
