package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cura-agent/roster-service/internal/domain"
	"github.com/cura-agent/roster-service/internal/events"
	"github.com/cura-agent/roster-service/internal/notify"
	"github.com/cura-agent/roster-service/internal/repository"
	"github.com/cura-agent/roster-service/internal/roster"
	apperrors "github.com/cura-agent/roster-service/pkg/util/errorutil"
)

// RosterService exposes the per-category rosters to authenticated sessions
// and mirrors every mutation to Postgres and the event dispatcher.
type RosterService struct {
	registry   *roster.Registry
	repo       repository.RosterRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// RosterDependencies bundles collaborators for RosterService. RosterRepo and
// Dispatcher are optional.
type RosterDependencies struct {
	Registry   *roster.Registry
	RosterRepo repository.RosterRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewRosterService constructs the service.
func NewRosterService(deps RosterDependencies) *RosterService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		registry:   deps.Registry,
		repo:       deps.RosterRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

func requireSession(session domain.Session) error {
	if session.AccountID == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	return nil
}

func (s *RosterService) store(category domain.Category) (*roster.Store, error) {
	store, err := s.registry.Store(category)
	if err != nil {
		return nil, apperrors.NewNotFound("roster", map[string]any{"category": category})
	}
	return store, nil
}

// List returns the roster filtered by query.
func (s *RosterService) List(_ context.Context, session domain.Session, category domain.Category, query string) ([]domain.RosterEntry, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	store, err := s.store(category)
	if err != nil {
		return nil, err
	}
	return store.Search(query), nil
}

// Get returns a single entry.
func (s *RosterService) Get(_ context.Context, session domain.Session, category domain.Category, id string) (domain.RosterEntry, error) {
	if err := requireSession(session); err != nil {
		return domain.RosterEntry{}, err
	}
	store, err := s.store(category)
	if err != nil {
		return domain.RosterEntry{}, err
	}
	entry, ok := store.Get(id)
	if !ok {
		return domain.RosterEntry{}, apperrors.NewNotFound(string(category), map[string]any{"id": id})
	}
	return entry, nil
}

// Create adds an entry. A notification failure is returned alongside the
// created entry, which stays in the roster.
func (s *RosterService) Create(ctx context.Context, session domain.Session, category domain.Category, data domain.RosterEntry) (domain.RosterEntry, error) {
	if err := requireSession(session); err != nil {
		return domain.RosterEntry{}, err
	}
	store, err := s.store(category)
	if err != nil {
		return domain.RosterEntry{}, err
	}
	if data.Role == "" {
		data.Role = category.Role()
	}
	if err := ValidateRosterEntry(category, data); err != nil {
		return domain.RosterEntry{}, err
	}

	ctx = notify.WithRecipient(ctx, session.AccountID)
	entry, opErr := store.Create(ctx, data)

	s.persist(ctx, category, entry)
	s.publish(ctx, session, events.EventRosterEntryCreated, category, entry.ID, events.RosterEntryPayload{Entry: entry})

	return entry, s.mapOpError(opErr)
}

// Update merges patch into an existing entry.
func (s *RosterService) Update(ctx context.Context, session domain.Session, category domain.Category, id string, patch domain.RosterPatch) (domain.RosterEntry, error) {
	if err := requireSession(session); err != nil {
		return domain.RosterEntry{}, err
	}
	store, err := s.store(category)
	if err != nil {
		return domain.RosterEntry{}, err
	}

	ctx = notify.WithRecipient(ctx, session.AccountID)
	var invalid error
	entry, opErr := store.UpdateIf(ctx, id, patch, func(current domain.RosterEntry) error {
		invalid = ValidateRosterPatch(category, current, patch)
		return invalid
	})
	if invalid != nil {
		return domain.RosterEntry{}, invalid
	}
	if errors.Is(opErr, roster.ErrNotFound) {
		return domain.RosterEntry{}, s.mapOpError(opErr)
	}

	s.persist(ctx, category, entry)
	s.publish(ctx, session, events.EventRosterEntryUpdated, category, entry.ID, events.RosterEntryPayload{Entry: entry})

	return entry, s.mapOpError(opErr)
}

// Delete removes an entry.
func (s *RosterService) Delete(ctx context.Context, session domain.Session, category domain.Category, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	store, err := s.store(category)
	if err != nil {
		return err
	}

	ctx = notify.WithRecipient(ctx, session.AccountID)
	opErr := store.Delete(ctx, id)
	if errors.Is(opErr, roster.ErrNotFound) {
		return s.mapOpError(opErr)
	}

	if s.repo != nil {
		if err := s.repo.Delete(ctx, category, id); err != nil {
			s.logger.Error("roster delete not persisted",
				zap.String("category", string(category)), zap.String("id", id), zap.Error(err))
		}
	}
	s.publish(ctx, session, events.EventRosterEntryDeleted, category, id, events.RosterEntryDeletedPayload{EntryID: id})

	return s.mapOpError(opErr)
}

// LastError returns the last error recorded by category's roster.
func (s *RosterService) LastError(category domain.Category) error {
	store, err := s.store(category)
	if err != nil {
		return err
	}
	return store.LastError()
}

func (s *RosterService) persist(ctx context.Context, category domain.Category, entry domain.RosterEntry) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Upsert(ctx, category, entry); err != nil {
		s.logger.Error("roster change not persisted",
			zap.String("category", string(category)), zap.String("id", entry.ID), zap.Error(err))
	}
}

func (s *RosterService) publish(ctx context.Context, session domain.Session, eventType events.EventType, category domain.Category, entryID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Category:  category,
		EntryID:   entryID,
		AccountID: session.AccountID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("roster event handlers failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func (s *RosterService) mapOpError(err error) error {
	if err == nil {
		return nil
	}
	var opErr *roster.OperationError
	if !errors.As(err, &opErr) {
		return apperrors.NewInternalError(err)
	}
	if errors.Is(err, roster.ErrNotFound) {
		notFound := apperrors.ToDomainError(apperrors.NewNotFound(string(opErr.Category), map[string]any{"reason": opErr.Error()}))
		notFound.Err = opErr
		return notFound
	}
	return apperrors.NewOperationFailed(opErr.Error(), opErr)
}
