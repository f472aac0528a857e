// Package sqlite stores order transitions in an append-only SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jcmexdev/marketplace/internal/order-service/domain"
	"github.com/jcmexdev/marketplace/internal/order-service/ports"
)

// One row per committed transition; the latest row per order is its state.
const schema = `
CREATE TABLE IF NOT EXISTS order_transitions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id    TEXT NOT NULL,
    tenant_id   TEXT NOT NULL,
    from_status TEXT NOT NULL DEFAULT '',
    to_status   TEXT NOT NULL,
    note        TEXT NOT NULL DEFAULT '',
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_transitions_order ON order_transitions(tenant_id, order_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_order_transitions_trace ON order_transitions(trace_id);
`

var _ ports.TransitionLog = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

// Open opens or creates the database at path in WAL mode.
//
//	repo, err := sqlite.Open("./data/orders.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// Single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Append inserts t. Safe for concurrent use.
func (r *Repository) Append(ctx context.Context, t domain.Transition) error {
	const q = `
		INSERT INTO order_transitions
			(order_id, tenant_id, from_status, to_status, note, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		t.OrderID,
		t.TenantID,
		string(t.From),
		string(t.To),
		t.Note,
		t.TraceID,
		t.SpanID,
		formatTime(t.At),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append transition for %q: %w", t.OrderID, err)
	}
	return nil
}

// History returns the transitions of an order, oldest first.
func (r *Repository) History(ctx context.Context, tenantID, orderID string) ([]domain.Transition, error) {
	const q = `
		SELECT order_id, tenant_id, from_status, to_status, note, trace_id, span_id, updated_at
		FROM   order_transitions
		WHERE  tenant_id = ? AND order_id = ?
		ORDER  BY updated_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, q, tenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", orderID, err)
	}
	defer rows.Close()

	out := make([]domain.Transition, 0)
	for rows.Next() {
		var (
			t         domain.Transition
			updatedAt string
		)
		if err := rows.Scan(&t.OrderID, &t.TenantID, &t.From, &t.To, &t.Note, &t.TraceID, &t.SpanID, &updatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan transition: %w", err)
		}
		if t.At, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", orderID, err)
	}
	return out, nil
}
