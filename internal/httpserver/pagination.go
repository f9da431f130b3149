package httpserver

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 25
	// MaxPageSize caps page/limit query parameters.
	MaxPageSize = 100
)

// queryInt reads a positive integer query parameter, clamping to ceil when
// ceil > 0. Returns (fallback, nil) when the parameter is absent.
func queryInt(r *http.Request, name string, fallback, ceil int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback, fmt.Errorf("%s must be a positive integer", name)
	}
	if ceil > 0 && n > ceil {
		n = ceil
	}
	return n, nil
}

// OffsetParams is page/page_size pagination, used by the event and guest
// list endpoints.
type OffsetParams struct {
	Page     int
	PageSize int
	Offset   int // derived, handed straight to SQL OFFSET
}

// ParseOffsetParams reads page and page_size from the request query.
func ParseOffsetParams(r *http.Request) (OffsetParams, error) {
	p := OffsetParams{Page: 1, PageSize: DefaultPageSize}

	page, err := queryInt(r, "page", 1, 0)
	if err != nil {
		return p, err
	}
	size, err := queryInt(r, "page_size", DefaultPageSize, MaxPageSize)
	if err != nil {
		return p, err
	}

	p.Page = page
	p.PageSize = size
	p.Offset = (p.Page - 1) * p.PageSize
	return p, nil
}

// OffsetPage is the envelope for offset-paginated lists.
type OffsetPage[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewOffsetPage wraps a result set with its paging metadata.
func NewOffsetPage[T any](items []T, params OffsetParams, totalItems int) OffsetPage[T] {
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (totalItems + params.PageSize - 1) / params.PageSize
	}
	return OffsetPage[T]{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Cursor is a keyset position for time-ordered data. The audit log uses it:
// offset pagination over a table that only grows from one end skips rows when
// new entries land mid-scroll, a (created_at, id) cursor does not.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// EncodeCursor renders a cursor as an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	raw := fmt.Sprintf("%d:%s", c.CreatedAt.UnixMicro(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(s string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Cursor{}, fmt.Errorf("decoding cursor: %w", err)
	}

	ts, idStr, ok := strings.Cut(string(raw), ":")
	if !ok {
		return Cursor{}, fmt.Errorf("invalid cursor format")
	}
	usec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor id: %w", err)
	}

	return Cursor{CreatedAt: time.UnixMicro(usec).UTC(), ID: id}, nil
}

// CursorParams is limit/after pagination for cursor-paginated endpoints.
type CursorParams struct {
	After *Cursor // nil means newest entries
	Limit int
}

// ParseCursorParams reads limit and after from the request query.
func ParseCursorParams(r *http.Request) (CursorParams, error) {
	p := CursorParams{Limit: DefaultPageSize}

	limit, err := queryInt(r, "limit", DefaultPageSize, MaxPageSize)
	if err != nil {
		return p, err
	}
	p.Limit = limit

	if v := r.URL.Query().Get("after"); v != "" {
		c, err := DecodeCursor(v)
		if err != nil {
			return p, fmt.Errorf("invalid cursor: %w", err)
		}
		p.After = &c
	}
	return p, nil
}

// CursorPage is the envelope for cursor-paginated lists.
type CursorPage[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// NewCursorPage trims a limit+1 result set down to limit and, when the extra
// row was present, encodes the last kept item's position via cursorFn.
func NewCursorPage[T any](items []T, limit int, cursorFn func(T) Cursor) CursorPage[T] {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	page := CursorPage[T]{Items: items, HasMore: hasMore}
	if hasMore && len(items) > 0 {
		c := EncodeCursor(cursorFn(items[len(items)-1]))
		page.NextCursor = &c
	}
	return page
}
