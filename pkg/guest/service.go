package guest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/event"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/notify"
)

// ErrNotFound is returned when a guest does not exist.
var ErrNotFound = errors.New("guest not found")

// ErrForbidden is returned when the caller does not own the guest's event.
var ErrForbidden = errors.New("not the event owner")

// Dispatcher is the slice of the notification dispatcher the service uses.
type Dispatcher interface {
	NewGuest(ctx context.Context, guestName, side, eventName string) notify.Result
	GuestCheckedIn(ctx context.Context, guestName, eventName string, at time.Time) notify.Result
	GiftAdded(ctx context.Context, guestName, eventName string, amount float64, currency string) notify.Result
	SendToUser(ctx context.Context, userID uuid.UUID, text string) notify.Result
}

// Service implements guest business rules on top of the store.
type Service struct {
	store      *Store
	events     *event.Service
	dispatcher Dispatcher
	logger     *slog.Logger
}

func NewService(store *Store, events *event.Service, dispatcher Dispatcher, logger *slog.Logger) *Service {
	return &Service{store: store, events: events, dispatcher: dispatcher, logger: logger}
}

// Create adds a guest to the event after an ownership check and announces
// the registration best-effort.
func (s *Service) Create(ctx context.Context, identity *auth.Identity, eventID uuid.UUID, req CreateRequest) (Row, error) {
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return Row{}, ErrNotFound
		}
		return Row{}, err
	}
	if !mayMutate(identity, ev.OwnerID) {
		return Row{}, ErrForbidden
	}

	row, err := s.store.Create(ctx, eventID, req)
	if err != nil {
		return Row{}, err
	}

	if s.dispatcher != nil {
		s.dispatcher.NewGuest(ctx, row.Name, row.Side, ev.Name)
	}
	return row, nil
}

// List returns one page of the event's guests after a read check.
func (s *Service) List(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Row, int, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}
	rows, err := s.store.ListByEvent(ctx, eventID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountByEvent(ctx, eventID)
	return rows, total, err
}

// Get returns a single guest.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Row, error) {
	d, err := s.detail(ctx, id)
	if err != nil {
		return Row{}, err
	}
	return d.Row, nil
}

// Update edits a guest after an ownership check.
func (s *Service) Update(ctx context.Context, identity *auth.Identity, id uuid.UUID, req UpdateRequest) (Row, error) {
	d, err := s.detail(ctx, id)
	if err != nil {
		return Row{}, err
	}
	if !mayMutate(identity, d.OwnerID) {
		return Row{}, ErrForbidden
	}
	row, err := s.store.Update(ctx, id, req)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	return row, err
}

// Delete removes a guest after an ownership check.
func (s *Service) Delete(ctx context.Context, identity *auth.Identity, id uuid.UUID) error {
	d, err := s.detail(ctx, id)
	if err != nil {
		return err
	}
	if !mayMutate(identity, d.OwnerID) {
		return ErrForbidden
	}
	err = s.store.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CheckIn marks the guest as arrived and announces it. Checking in an
// already-arrived guest returns the current row without a second
// notification.
func (s *Service) CheckIn(ctx context.Context, identity *auth.Identity, id uuid.UUID) (Row, error) {
	d, err := s.detail(ctx, id)
	if err != nil {
		return Row{}, err
	}
	if !mayMutate(identity, d.OwnerID) {
		return Row{}, ErrForbidden
	}
	if d.Status == StatusCheckedIn {
		return d.Row, nil
	}

	now := time.Now().UTC()
	row, err := s.store.CheckIn(ctx, id, now)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrNotFound
	}
	if err != nil {
		return Row{}, err
	}

	if s.dispatcher != nil {
		s.dispatcher.GuestCheckedIn(ctx, row.Name, d.EventName, now)
	}
	return row, nil
}

// AddGift records a gift, announces it to the admin chat and sends the event
// owner a direct notice.
func (s *Service) AddGift(ctx context.Context, identity *auth.Identity, id uuid.UUID, req GiftRequest) (GiftRow, error) {
	d, err := s.detail(ctx, id)
	if err != nil {
		return GiftRow{}, err
	}
	if !mayMutate(identity, d.OwnerID) {
		return GiftRow{}, ErrForbidden
	}

	gift, err := s.store.AddGift(ctx, id, req)
	if err != nil {
		return GiftRow{}, err
	}

	if s.dispatcher != nil {
		s.dispatcher.GiftAdded(ctx, d.Name, d.EventName, gift.Amount, gift.Currency)
		notice := fmt.Sprintf("🎁 %s gave %.2f %s for %s", d.Name, gift.Amount, gift.Currency, d.EventName)
		s.dispatcher.SendToUser(ctx, d.OwnerID, notice)
	}
	return gift, nil
}

// ListGifts returns a guest's gifts.
func (s *Service) ListGifts(ctx context.Context, id uuid.UUID) ([]GiftRow, error) {
	if _, err := s.detail(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListGifts(ctx, id)
}

func (s *Service) detail(ctx context.Context, id uuid.UUID) (Detail, error) {
	d, err := s.store.GetDetail(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Detail{}, ErrNotFound
	}
	return d, err
}

func mayMutate(identity *auth.Identity, ownerID uuid.UUID) bool {
	if identity == nil {
		return false
	}
	if identity.Role == auth.RoleAdmin {
		return true
	}
	return identity.UserID != nil && *identity.UserID == ownerID
}
