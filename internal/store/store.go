// Package store keeps the ordered list of saved passwords for one session and
// rewrites the backing storage in full after every change.
package store

import (
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/passgen/internal/errors"
	"github.com/hpungsan/passgen/internal/record"
)

// Backend persists the complete record list.
//
// Load returns an empty list and no error when nothing has been saved yet.
// SaveAll replaces everything previously stored.
type Backend interface {
	Load() ([]record.Record, error)
	SaveAll(records []record.Record) error
}

// Store owns the in-memory record list of a session. It is not safe for
// concurrent use; front-ends that serve concurrent requests must serialize
// access themselves.
type Store struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	records []record.Record
	loaded  bool
	loadErr error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store over backend. Nothing is read until Load or the first access.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the backing storage and replaces the in-memory list.
//
// Load never fails: an unreadable or corrupt backing store is logged as a
// warning, remembered for LoadWarning, and treated as an empty list.
func (s *Store) Load() []record.Record {
	records, err := s.backend.Load()
	s.loaded = true
	s.loadErr = err
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if p, ok := s.backend.(interface{ Path() string }); ok {
			fields = append(fields, zap.String("path", p.Path()))
		}
		s.logger.Warn("could not load saved passwords", fields...)
		records = nil
	}
	s.records = records
	return s.Records()
}

// LoadWarning returns the problem hit by the last Load, or nil.
func (s *Store) LoadWarning() error {
	return s.loadErr
}

// Records returns a copy of the in-memory list, loading it first if needed.
func (s *Store) Records() []record.Record {
	s.ensureLoaded()
	out := make([]record.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of saved records.
func (s *Store) Len() int {
	s.ensureLoaded()
	return len(s.records)
}

func (s *Store) ensureLoaded() {
	if !s.loaded {
		s.Load()
	}
}

// SaveAll writes records as the complete list. On failure the in-memory list
// is left as it was and a PersistenceError is returned.
func (s *Store) SaveAll(records []record.Record) error {
	next := make([]record.Record, len(records))
	copy(next, records)

	if err := s.backend.SaveAll(next); err != nil {
		return errors.NewPersistence(err)
	}
	s.records = next
	s.loaded = true
	return nil
}

// Append saves password with description as a new record at the end of the list.
func (s *Store) Append(password, description string) (record.Record, error) {
	rec := record.New(password, description, s.now())
	if err := s.AppendRecords(rec); err != nil {
		return record.Record{}, err
	}
	return rec, nil
}

// AppendRecords adds recs to the end of the list with a single rewrite.
func (s *Store) AppendRecords(recs ...record.Record) error {
	current := s.Records()
	return s.SaveAll(append(current, recs...))
}

// Clear removes every saved record.
func (s *Store) Clear() error {
	return s.SaveAll(nil)
}
