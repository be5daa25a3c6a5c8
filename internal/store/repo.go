package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Update when no existing row can be preloaded.
// Absence on reads is not an error: FindOne returns (nil, nil) instead.
var ErrNotFound = errors.New("store: entity not found")

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Schema describes how an entity maps onto its table. Columns excludes the
// ID column; Values must produce arguments aligned with Columns.
type Schema[E any] struct {
	Table   string
	IDCol   string
	Columns []string
	Scan    func(row RowScanner) (*E, error)
	Values  func(e *E) []any
	ID      func(e *E) string
	SetID   func(e *E, id string)
}

// Repository provides uniform persistence operations for one entity kind.
// Every operation resolves its session lazily from the ambient transaction
// context, so calls made inside RunInTransaction observe the in-flight
// transaction and calls made outside get an auto-committing session.
type Repository[E any] struct {
	db     *DB
	schema Schema[E]
}

// NewRepository creates a repository for the given entity schema.
func NewRepository[E any](db *DB, schema Schema[E]) *Repository[E] {
	return &Repository[E]{db: db, schema: schema}
}

// DB exposes the underlying database handle.
func (r *Repository[E]) DB() *DB { return r.db }

func (r *Repository[E]) selectCols() string {
	return r.schema.IDCol + ", " + strings.Join(r.schema.Columns, ", ")
}

// FindOne returns the entity with the given key, or nil when absent.
func (r *Repository[E]) FindOne(ctx context.Context, id string) (*E, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", r.selectCols(), r.schema.Table, r.schema.IDCol)
	row := r.db.Session(ctx).QueryRowContext(ctx, q, id)
	e, err := r.schema.Scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", r.schema.Table, id, err)
	}
	return e, nil
}

// FindAll returns every row of the entity's table.
func (r *Repository[E]) FindAll(ctx context.Context) ([]*E, error) {
	q := fmt.Sprintf("SELECT %s FROM %s", r.selectCols(), r.schema.Table)
	return r.Query(ctx, q)
}

// Query runs an arbitrary select over the entity's columns. The query must
// project selectCols()-shaped rows.
func (r *Repository[E]) Query(ctx context.Context, query string, args ...any) ([]*E, error) {
	rows, err := r.db.Session(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	var out []*E
	for rows.Next() {
		e, err := r.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.schema.Table, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Save inserts the entity, generating an identifier when it has none, and
// returns the stored entity.
func (r *Repository[E]) Save(ctx context.Context, e *E) (*E, error) {
	if r.schema.ID(e) == "" {
		r.schema.SetID(e, uuid.New().String())
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.schema.Columns)+1), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.schema.Table, r.selectCols(), placeholders)

	args := append([]any{r.schema.ID(e)}, r.schema.Values(e)...)
	if _, err := r.db.Session(ctx).ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("save %s: %w", r.schema.Table, err)
	}
	return e, nil
}

// SaveAll inserts the given entities in order. Callers that need the batch to
// land atomically wrap the call in RunInTransaction.
func (r *Repository[E]) SaveAll(ctx context.Context, entities []*E) error {
	for _, e := range entities {
		if _, err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Update preloads the row with the given key, applies patch to it, and writes
// the merged entity back. It returns ErrNotFound when no row exists: partial
// update is not an upsert.
func (r *Repository[E]) Update(ctx context.Context, id string, patch func(*E)) (*E, error) {
	existing, err := r.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("update %s %s: %w", r.schema.Table, id, ErrNotFound)
	}

	patch(existing)

	sets := make([]string, len(r.schema.Columns))
	for i, col := range r.schema.Columns {
		sets[i] = col + " = ?"
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", r.schema.Table, strings.Join(sets, ", "), r.schema.IDCol)

	args := append(r.schema.Values(existing), id)
	if _, err := r.db.Session(ctx).ExecContext(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", r.schema.Table, id, err)
	}
	return existing, nil
}

// Delete removes the row with the given key and reports whether a row was
// actually removed. Repeat deletes return false without error.
func (r *Repository[E]) Delete(ctx context.Context, id string) (bool, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.schema.Table, r.schema.IDCol)
	res, err := r.db.Session(ctx).ExecContext(ctx, q, id)
	if err != nil {
		return false, fmt.Errorf("delete %s %s: %w", r.schema.Table, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
