// Package audit records admin actions to an append-only trail without adding
// latency to the request path.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vannyakh/pkasla-pro-sub001/internal/auth"
)

// Entry is one audit record. ResourceID may be uuid.Nil for singleton
// resources such as settings.
type Entry struct {
	UserID     *uuid.UUID
	Action     string
	Resource   string
	ResourceID uuid.UUID
	Detail     json.RawMessage
	IPAddress  *netip.Addr
	UserAgent  *string
}

const (
	bufferSize    = 256
	flushInterval = 2 * time.Second
	flushBatch    = 32
)

// Writer buffers entries on a channel and writes them from a single
// background goroutine. Producers never block; a full buffer drops.
type Writer struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	entries chan Entry
	wg      sync.WaitGroup
}

// NewWriter creates a Writer. Nothing is written until Start is called.
func NewWriter(pool *pgxpool.Pool, logger *slog.Logger) *Writer {
	return &Writer{
		pool:    pool,
		logger:  logger,
		entries: make(chan Entry, bufferSize),
	}
}

// Start launches the flush goroutine. It stops once the context is cancelled
// or Close is called, flushing whatever is buffered first.
func (w *Writer) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Close stops accepting entries and waits for the final flush.
func (w *Writer) Close() {
	close(w.entries)
	w.wg.Wait()
}

// Log enqueues an entry. When the buffer is full the entry is dropped with a
// warning; auditing must not stall request handling.
func (w *Writer) Log(entry Entry) {
	select {
	case w.entries <- entry:
	default:
		w.logger.Warn("audit buffer full, dropping entry",
			"action", entry.Action, "resource", entry.Resource)
	}
}

// LogFromRequest fills in actor, client IP and user agent from the request
// before enqueueing.
func (w *Writer) LogFromRequest(r *http.Request, action, resource string, resourceID uuid.UUID, detail json.RawMessage) {
	entry := Entry{
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Detail:     detail,
	}

	if id := auth.FromContext(r.Context()); id != nil {
		entry.UserID = id.UserID
	}
	if ip := clientIP(r); ip.IsValid() {
		entry.IPAddress = &ip
	}
	if ua := r.Header.Get("User-Agent"); ua != "" {
		entry.UserAgent = &ua
	}

	w.Log(entry)
}

func (w *Writer) run(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	pending := make([]Entry, 0, flushBatch)
	flush := func() {
		if len(pending) > 0 {
			w.flush(pending)
			pending = pending[:0]
		}
	}

	for {
		select {
		case entry, ok := <-w.entries:
			if !ok {
				flush()
				return
			}
			pending = append(pending, entry)
			if len(pending) >= flushBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			// Take whatever is already buffered, then stop.
			for {
				select {
				case entry, ok := <-w.entries:
					if !ok {
						flush()
						return
					}
					pending = append(pending, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}

const insertEntry = `INSERT INTO audit_log (id, user_id, action, resource, resource_id, detail, ip_address, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// flush writes a batch in one round trip. Individual insert failures are
// logged and the rest of the batch still lands.
func (w *Writer) flush(entries []Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	for _, e := range entries {
		var resourceID any
		if e.ResourceID != uuid.Nil {
			resourceID = e.ResourceID
		}
		var ip any
		if e.IPAddress != nil {
			ip = e.IPAddress.String()
		}
		batch.Queue(insertEntry,
			uuid.New(), e.UserID, e.Action, e.Resource, resourceID, e.Detail, ip, e.UserAgent)
	}

	results := w.pool.SendBatch(ctx, batch)
	defer results.Close()

	for _, e := range entries {
		if _, err := results.Exec(); err != nil {
			w.logger.Error("writing audit entry", "error", err,
				"action", e.Action, "resource", e.Resource)
		}
	}
}

// clientIP resolves the originating address, trusting proxy headers when
// present: X-Forwarded-For first, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) netip.Addr {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return ip
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		if ip, err := netip.ParseAddr(real); err == nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}
	}
	return ip
}
