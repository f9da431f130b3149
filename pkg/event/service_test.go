package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
	"github.com/vannyakh/pkasla-pro-sub001/pkg/notify"
)

// fakeDB serves a single event row through QueryRow.
type fakeDB struct {
	row   *Row
	calls int
}

func (f *fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	f.calls++
	return fakeRow{scan: func(dest ...any) error {
		if f.row == nil {
			return pgx.ErrNoRows
		}
		*(dest[0].(*uuid.UUID)) = f.row.ID
		*(dest[1].(*uuid.UUID)) = f.row.OwnerID
		*(dest[2].(*string)) = f.row.Name
		*(dest[3].(*time.Time)) = f.row.Date
		*(dest[4].(*string)) = f.row.Venue
		*(dest[5].(*string)) = f.row.Description
		*(dest[6].(*time.Time)) = f.row.CreatedAt
		*(dest[7].(*time.Time)) = f.row.UpdatedAt
		return nil
	}}
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeDispatcher struct {
	created int
}

func (f *fakeDispatcher) EventCreated(context.Context, string, string, time.Time) notify.Result {
	f.created++
	return notify.Result{Status: notify.StatusSent}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Authorize(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()
	eventID := uuid.New()
	row := &Row{ID: eventID, OwnerID: ownerID, Name: "Dara & Bopha"}

	tests := []struct {
		name     string
		identity *auth.Identity
		row      *Row
		wantErr  error
	}{
		{"owner may mutate", &auth.Identity{UserID: &ownerID, Role: auth.RoleHost}, row, nil},
		{"admin may mutate", &auth.Identity{UserID: &otherID, Role: auth.RoleAdmin}, row, nil},
		{"non-owner rejected", &auth.Identity{UserID: &otherID, Role: auth.RoleHost}, row, ErrForbidden},
		{"anonymous user id rejected", &auth.Identity{Role: auth.RoleHost}, row, ErrForbidden},
		{"missing event", &auth.Identity{UserID: &ownerID, Role: auth.RoleHost}, nil, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(NewStore(&fakeDB{row: tt.row}), nil, testLogger())
			err := svc.authorize(context.Background(), tt.identity, eventID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("authorize() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_CreateDispatches(t *testing.T) {
	ownerID := uuid.New()
	f := &fakeDB{row: &Row{ID: uuid.New(), OwnerID: ownerID, Name: "Dara & Bopha"}}
	disp := &fakeDispatcher{}
	svc := NewService(NewStore(f), disp, testLogger())

	if _, err := svc.Create(context.Background(), ownerID, CreateRequest{
		Name: "Dara & Bopha",
		Date: time.Now().AddDate(0, 3, 0),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if disp.created != 1 {
		t.Errorf("dispatcher calls = %d, want 1", disp.created)
	}
}

func TestService_GetNotFound(t *testing.T) {
	svc := NewService(NewStore(&fakeDB{}), nil, testLogger())
	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}
