package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vannyakh/pkasla-pro-sub001/internal/db"
)

// Store provides database operations for events.
type Store struct {
	dbtx db.DBTX
}

// NewStore creates an event Store backed by the given database connection.
func NewStore(dbtx db.DBTX) *Store {
	return &Store{dbtx: dbtx}
}

const eventColumns = `id, owner_id, name, date, venue, description, created_at, updated_at`

// Row represents a row from the events table.
type Row struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Date        time.Time
	Venue       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ToResponse converts a Row to the API shape.
func (e *Row) ToResponse() Response {
	return Response{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Name:        e.Name,
		Date:        e.Date,
		Venue:       e.Venue,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func scanRow(row pgx.Row) (Row, error) {
	var e Row
	err := row.Scan(
		&e.ID, &e.OwnerID, &e.Name, &e.Date, &e.Venue, &e.Description,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func scanRows(rows pgx.Rows) ([]Row, error) {
	defer rows.Close()
	var items []Row
	for rows.Next() {
		var e Row
		if err := rows.Scan(
			&e.ID, &e.OwnerID, &e.Name, &e.Date, &e.Venue, &e.Description,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}
	return items, nil
}

// Get returns a single event by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Row, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanRow(s.dbtx.QueryRow(ctx, query, id))
}

// ListByOwner returns one page of an owner's events, most recent date first.
func (s *Store) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]Row, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE owner_id = $1
	ORDER BY date DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := s.dbtx.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return scanRows(rows)
}

// CountByOwner returns the total number of an owner's events.
func (s *Store) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var total int
	err := s.dbtx.QueryRow(ctx, `SELECT count(*) FROM events WHERE owner_id = $1`, ownerID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return total, nil
}

// ListAll returns one page of all events, for admin listings.
func (s *Store) ListAll(ctx context.Context, limit, offset int) ([]Row, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := s.dbtx.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return scanRows(rows)
}

// CountAll returns the total number of events.
func (s *Store) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := s.dbtx.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return total, nil
}

// Create inserts a new event.
func (s *Store) Create(ctx context.Context, ownerID uuid.UUID, p CreateRequest) (Row, error) {
	query := `INSERT INTO events (owner_id, name, date, venue, description)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + eventColumns
	return scanRow(s.dbtx.QueryRow(ctx, query, ownerID, p.Name, p.Date, p.Venue, p.Description))
}

// Update replaces the editable fields and returns the updated row.
func (s *Store) Update(ctx context.Context, id uuid.UUID, p UpdateRequest) (Row, error) {
	query := `UPDATE events
	SET name = $2, date = $3, venue = $4, description = $5, updated_at = now()
	WHERE id = $1
	RETURNING ` + eventColumns
	return scanRow(s.dbtx.QueryRow(ctx, query, id, p.Name, p.Date, p.Venue, p.Description))
}

// Delete removes an event and, through cascading constraints, its guests.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.dbtx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
