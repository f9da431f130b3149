package guest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vannyakh/pkasla-pro-sub001/internal/db"
)

// Store provides database operations for guests and gifts.
type Store struct {
	dbtx db.DBTX
}

// NewStore creates a guest Store backed by the given database connection.
func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

const guestColumns = `id, event_id, name, phone, side, status, checked_in_at, created_at, updated_at`

// Row represents a row from the guests table.
type Row struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	Name        string
	Phone       string
	Side        string
	Status      string
	CheckedInAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Detail is a guest joined with its event's name and owner, which the
// service needs for authorization and notification text.
type Detail struct {
	Row
	EventName string
	OwnerID   uuid.UUID
}

// ToResponse converts a Row to the API shape.
func (g *Row) ToResponse() Response {
	return Response{
		ID:          g.ID,
		EventID:     g.EventID,
		Name:        g.Name,
		Phone:       g.Phone,
		Side:        g.Side,
		Status:      g.Status,
		CheckedInAt: g.CheckedInAt,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func scanRow(row pgx.Row) (Row, error) {
	var g Row
	err := row.Scan(
		&g.ID, &g.EventID, &g.Name, &g.Phone, &g.Side, &g.Status,
		&g.CheckedInAt, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}

// GetDetail returns a guest together with its event context.
func (s *Store) GetDetail(ctx context.Context, id uuid.UUID) (Detail, error) {
	query := `SELECT g.id, g.event_id, g.name, g.phone, g.side, g.status, g.checked_in_at, g.created_at, g.updated_at,
	e.name, e.owner_id
	FROM guests g JOIN events e ON e.id = g.event_id
	WHERE g.id = $1`
	var d Detail
	err := s.dbtx.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.EventID, &d.Name, &d.Phone, &d.Side, &d.Status,
		&d.CheckedInAt, &d.CreatedAt, &d.UpdatedAt,
		&d.EventName, &d.OwnerID,
	)
	return d, err
}

// ListByEvent returns one page of an event's guests ordered by name.
func (s *Store) ListByEvent(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]Row, error) {
	query := `SELECT ` + guestColumns + ` FROM guests
	WHERE event_id = $1 ORDER BY name, id LIMIT $2 OFFSET $3`
	rows, err := s.dbtx.Query(ctx, query, eventID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing guests: %w", err)
	}
	defer rows.Close()

	var items []Row
	for rows.Next() {
		var g Row
		if err := rows.Scan(
			&g.ID, &g.EventID, &g.Name, &g.Phone, &g.Side, &g.Status,
			&g.CheckedInAt, &g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning guest row: %w", err)
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating guest rows: %w", err)
	}
	return items, nil
}

// CountByEvent returns the total number of an event's guests.
func (s *Store) CountByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	var total int
	err := s.dbtx.QueryRow(ctx, `SELECT count(*) FROM guests WHERE event_id = $1`, eventID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("counting guests: %w", err)
	}
	return total, nil
}

// Create inserts a new guest in the invited state.
func (s *Store) Create(ctx context.Context, eventID uuid.UUID, p CreateRequest) (Row, error) {
	query := `INSERT INTO guests (event_id, name, phone, side)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + guestColumns
	return scanRow(s.dbtx.QueryRow(ctx, query, eventID, p.Name, p.Phone, p.Side))
}

// Update replaces the editable fields and returns the updated row.
func (s *Store) Update(ctx context.Context, id uuid.UUID, p UpdateRequest) (Row, error) {
	query := `UPDATE guests SET name = $2, phone = $3, side = $4, status = $5, updated_at = now()
	WHERE id = $1
	RETURNING ` + guestColumns
	return scanRow(s.dbtx.QueryRow(ctx, query, id, p.Name, p.Phone, p.Side, p.Status))
}

// Delete removes a guest and its gifts.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.dbtx.Exec(ctx, `DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CheckIn marks a guest as arrived.
func (s *Store) CheckIn(ctx context.Context, id uuid.UUID, at time.Time) (Row, error) {
	query := `UPDATE guests SET status = 'checked_in', checked_in_at = $2, updated_at = now()
	WHERE id = $1
	RETURNING ` + guestColumns
	return scanRow(s.dbtx.QueryRow(ctx, query, id, at))
}

const giftColumns = `id, guest_id, amount, currency, note, created_at`

// GiftRow represents a row from the gifts table.
type GiftRow struct {
	ID        uuid.UUID
	GuestID   uuid.UUID
	Amount    float64
	Currency  string
	Note      string
	CreatedAt time.Time
}

// ToResponse converts a GiftRow to the API shape.
func (g *GiftRow) ToResponse() GiftResponse {
	return GiftResponse{
		ID:        g.ID,
		GuestID:   g.GuestID,
		Amount:    g.Amount,
		Currency:  g.Currency,
		Note:      g.Note,
		CreatedAt: g.CreatedAt,
	}
}

// AddGift records a gift for a guest.
func (s *Store) AddGift(ctx context.Context, guestID uuid.UUID, p GiftRequest) (GiftRow, error) {
	query := `INSERT INTO gifts (guest_id, amount, currency, note)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + giftColumns
	var g GiftRow
	err := s.dbtx.QueryRow(ctx, query, guestID, p.Amount, p.Currency, p.Note).Scan(
		&g.ID, &g.GuestID, &g.Amount, &g.Currency, &g.Note, &g.CreatedAt,
	)
	return g, err
}

// ListGifts returns a guest's gifts, newest first.
func (s *Store) ListGifts(ctx context.Context, guestID uuid.UUID) ([]GiftRow, error) {
	rows, err := s.dbtx.Query(ctx,
		`SELECT `+giftColumns+` FROM gifts WHERE guest_id = $1 ORDER BY created_at DESC, id DESC`, guestID)
	if err != nil {
		return nil, fmt.Errorf("listing gifts: %w", err)
	}
	defer rows.Close()

	var items []GiftRow
	for rows.Next() {
		var g GiftRow
		if err := rows.Scan(&g.ID, &g.GuestID, &g.Amount, &g.Currency, &g.Note, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning gift row: %w", err)
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gift rows: %w", err)
	}
	return items, nil
}
