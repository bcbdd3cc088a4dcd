package record

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultDescription is stored when a password is saved without a description.
const DefaultDescription = "No description"

// TimestampLayout is the layout of Record.Timestamp (local time, second precision).
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one saved password. Field names and JSON keys match the on-disk format.
type Record struct {
	// Password is stored in plain text
	Password string `json:"password"`

	// Description is a free-text label
	Description string `json:"description"`

	// Timestamp is when the record was saved, formatted with TimestampLayout
	Timestamp string `json:"timestamp"`

	// Length is the character count of Password at save time
	Length int `json:"length"`
}

// New builds a record for password saved at now.
// An empty or blank description becomes DefaultDescription.
func New(password, description string, now time.Time) Record {
	description = strings.TrimSpace(description)
	if description == "" {
		description = DefaultDescription
	}
	return Record{
		Password:    password,
		Description: description,
		Timestamp:   now.Format(TimestampLayout),
		Length:      CountChars(password),
	}
}

// CountChars returns the character count as runes (not bytes).
func CountChars(s string) int {
	return utf8.RuneCountInString(s)
}

// Consistent reports whether Length matches the character count of Password.
func (r Record) Consistent() bool {
	return r.Length == CountChars(r.Password)
}

// CreatedAt parses Timestamp in the local time zone.
func (r Record) CreatedAt() (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, r.Timestamp, time.Local)
}
