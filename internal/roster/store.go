package roster

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cura-agent/roster-service/internal/domain"
)

// Sink receives success and failure notices for roster mutations. notify.Sink
// is an alias of this type.
type Sink interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n domain.Notification) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, n domain.Notification) error {
	return f(ctx, n)
}

// IDGenerator returns a fresh entry id.
type IDGenerator func() string

// Option configures a Store.
type Option func(*Store)

// WithSink sets the notification sink. A nil sink disables notifications.
func WithSink(sink Sink) Option {
	return func(s *Store) { s.sink = sink }
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock overrides the time source used to stamp notifications.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store owns the ordered collection of one roster category and keeps a filtered
// view of it in sync with the active search query.
type Store struct {
	mu       sync.RWMutex
	category domain.Category
	entries  []domain.RosterEntry
	query    string
	filtered []domain.RosterEntry
	lastErr  error

	sink  Sink
	newID IDGenerator
	now   func() time.Time
}

// New builds a store for category holding a copy of seed. Seed data is trusted
// and not validated.
func New(category domain.Category, seed []domain.RosterEntry, opts ...Option) *Store {
	s := &Store{
		category: category,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.entries = make([]domain.RosterEntry, 0, len(seed))
	for _, e := range seed {
		s.entries = append(s.entries, e.Clone())
	}
	s.refilter()
	return s
}

// Category returns the roster category.
func (s *Store) Category() domain.Category {
	return s.category
}

// Create appends a new entry built from data and returns it. data.ID is ignored.
// When the notification step fails the entry is kept and returned together
// with the error.
func (s *Store) Create(ctx context.Context, data domain.RosterEntry) (domain.RosterEntry, error) {
	s.mu.Lock()
	s.lastErr = nil
	entry := data.Clone()
	entry.ID = s.uniqueID()
	s.entries = append(s.entries, entry)
	s.refilter()
	s.mu.Unlock()

	return entry.Clone(), s.report(ctx, OpCreate, fmt.Sprintf("%s added successfully", s.category.Title()))
}

// Update merges patch into the entry with the given id, keeping its position.
func (s *Store) Update(ctx context.Context, id string, patch domain.RosterPatch) (domain.RosterEntry, error) {
	return s.UpdateIf(ctx, id, patch, nil)
}

// UpdateIf is Update with a check that runs against the current entry under
// the same lock as the merge. A check error is returned as is, with no notice
// and no change. check must not call back into the store.
func (s *Store) UpdateIf(ctx context.Context, id string, patch domain.RosterPatch, check func(current domain.RosterEntry) error) (domain.RosterEntry, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.lastErr = nil
		s.mu.Unlock()
		return domain.RosterEntry{}, s.fail(ctx, OpUpdate, ErrNotFound)
	}
	if check != nil {
		if err := check(s.entries[idx].Clone()); err != nil {
			s.mu.Unlock()
			return domain.RosterEntry{}, err
		}
	}
	s.lastErr = nil
	updated := patch.Apply(s.entries[idx].Clone())
	updated.ID = id
	s.entries[idx] = updated
	s.refilter()
	s.mu.Unlock()

	return updated.Clone(), s.report(ctx, OpUpdate, fmt.Sprintf("%s updated successfully", s.category.Title()))
}

// Delete removes the entry with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.lastErr = nil
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return s.fail(ctx, OpDelete, ErrNotFound)
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.refilter()
	s.mu.Unlock()

	return s.report(ctx, OpDelete, fmt.Sprintf("%s deleted successfully", s.category.Title()))
}

// Search returns the entries matching query, in collection order. It never
// mutates the store and always reads the full current collection.
func (s *Store) Search(query string) []domain.RosterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.entries, query)
}

// SetQuery changes the active query and recomputes the filtered view.
func (s *Store) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.refilter()
}

// Query returns the active query.
func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Filtered returns the view derived from the active query.
func (s *Store) Filtered() []domain.RosterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.filtered)
}

// Entries returns the full collection in insertion order.
func (s *Store) Entries() []domain.RosterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.entries)
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (domain.RosterEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return domain.RosterEntry{}, false
	}
	return s.entries[idx].Clone(), true
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// LastError returns the error recorded by the most recent mutation, if any.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// report sends the success notice. A sink failure is recorded, re-signalled as
// an error notice and returned.
func (s *Store) report(ctx context.Context, op Op, message string) error {
	if s.sink == nil {
		return nil
	}
	if err := s.sink.Notify(ctx, s.notice(domain.LevelSuccess, message)); err != nil {
		return s.fail(ctx, op, err)
	}
	return nil
}

func (s *Store) fail(ctx context.Context, op Op, cause error) error {
	opErr := &OperationError{Op: op, Category: s.category, Err: cause}

	s.mu.Lock()
	s.lastErr = opErr
	s.mu.Unlock()

	if s.sink != nil {
		_ = s.sink.Notify(ctx, s.notice(domain.LevelError, opErr.Error()))
	}
	return opErr
}

func (s *Store) notice(level domain.NotificationLevel, message string) domain.Notification {
	return domain.Notification{
		Level:    level,
		Message:  message,
		Category: s.category,
		At:       s.now(),
	}
}

// uniqueID must be called with mu held.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// refilter must be called with mu held.
func (s *Store) refilter() {
	s.filtered = filter(s.entries, s.query)
}

func filter(entries []domain.RosterEntry, query string) []domain.RosterEntry {
	if strings.TrimSpace(query) == "" {
		return cloneAll(entries)
	}
	needle := strings.ToLower(query)
	out := make([]domain.RosterEntry, 0, len(entries))
	for _, e := range entries {
		if matches(e, needle) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// matches reports whether any searchable field of e contains the lower-cased needle.
func matches(e domain.RosterEntry, needle string) bool {
	fields := [...]string{e.FirstName, e.LastName, e.Email, e.NationalID}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return e.Specialty != nil && strings.Contains(strings.ToLower(*e.Specialty), needle)
}

func cloneAll(entries []domain.RosterEntry) []domain.RosterEntry {
	out := make([]domain.RosterEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
