package event

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/notify"
)

// ErrNotFound is returned when an event does not exist.
var ErrNotFound = errors.New("event not found")

// ErrForbidden is returned when the caller does not own the event.
var ErrForbidden = errors.New("not the event owner")

// Dispatcher is the slice of the notification dispatcher the service uses.
type Dispatcher interface {
	EventCreated(ctx context.Context, eventName, venue string, date time.Time) notify.Result
}

// Service implements event business rules on top of the store.
type Service struct {
	store      *Store
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewService(store *Store, dispatcher Dispatcher, logger *slog.Logger) *Service {
	return &Service{store: store, dispatcher: dispatcher, logger: logger}
}

// Create inserts the event and announces it best-effort.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateRequest) (Row, error) {
	row, err := s.store.Create(ctx, ownerID, req)
	if err != nil {
		return Row{}, err
	}
	if s.dispatcher != nil {
		res := s.dispatcher.EventCreated(ctx, row.Name, row.Venue, row.Date)
		if res.Status == notify.StatusFailed {
			s.logger.Warn("event notification failed", "event_id", row.ID, "reason", res.Reason)
		}
	}
	return row, nil
}

// Get returns the event if the identity may read it. Any authenticated user
// can read; only the owner and admins can mutate.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Row, error) {
	row, err := s.store.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	return row, err
}

// Update replaces the event after an ownership check.
func (s *Service) Update(ctx context.Context, identity *auth.Identity, id uuid.UUID, req UpdateRequest) (Row, error) {
	if err := s.authorize(ctx, identity, id); err != nil {
		return Row{}, err
	}
	row, err := s.store.Update(ctx, id, req)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	return row, err
}

// Delete removes the event after an ownership check.
func (s *Service) Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) error {
	if err := s.authorize(ctx, identity, id); err != nil {
		return err
	}
	err := s.store.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// List returns one page of events: all of them for admins, the caller's own
// otherwise.
func (s *Service) List(ctx context.Context, identity *auth.Identity, limit, offset int) ([]Row, int, error) {
	if identity.Role == auth.RoleAdmin {
		rows, err := s.store.ListAll(ctx, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.store.CountAll(ctx)
		return rows, total, err
	}

	if identity.UserID == nil {
		return nil, 0, nil
	}
	rows, err := s.store.ListByOwner(ctx, *identity.UserID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountByOwner(ctx, *identity.UserID)
	return rows, total, err
}

func (s *Service) authorize(ctx context.Context, identity *auth.Identity, id uuid.UUID) error {
	row, err := s.store.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if identity.Role == auth.RoleAdmin {
		return nil
	}
	if identity.UserID == nil || *identity.UserID != row.OwnerID {
		return ErrForbidden
	}
	return nil
}
