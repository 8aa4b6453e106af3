// Package postgres loads records from a Postgres table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bft-labs/evalsample/pkg/stratify"
)

// ErrNoValidRows is returned when the table yields no usable rows.
var ErrNoValidRows = errors.New("table returned zero valid rows")

// Source implements ports.RecordSource over a table with an id column and a
// group column.
type Source struct {
	db          *sqlx.DB
	table       string
	idColumn    string
	groupColumn string
}

type row struct {
	ID    string `db:"id"`
	Group string `db:"grp"`
}

// Open connects to dsn and returns a source reading table.
func Open(ctx context.Context, dsn, table, idColumn, groupColumn string) (*Source, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db, table, idColumn, groupColumn), nil
}

// New wraps an existing connection.
func New(db *sqlx.DB, table, idColumn, groupColumn string) *Source {
	return &Source{db: db, table: table, idColumn: idColumn, groupColumn: groupColumn}
}

// Describe returns the table name.
func (s *Source) Describe() string {
	return "postgres:" + s.table
}

// Query returns the SELECT statement used by Load. Rows come back ordered
// by id so the pool's insertion order is stable across runs.
func (s *Source) Query() string {
	id := pq.QuoteIdentifier(s.idColumn)
	grp := pq.QuoteIdentifier(s.groupColumn)
	return fmt.Sprintf(
		"SELECT COALESCE(%s::text, '') AS id, COALESCE(%s::text, '') AS grp FROM %s ORDER BY %s",
		id, grp, quoteTable(s.table), id,
	)
}

// quoteTable quotes an optionally schema-qualified table name.
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// Load reads every row, skipping rows with an empty id or group.
func (s *Source) Load(ctx context.Context) ([]stratify.Record, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, s.Query()); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return nil, fmt.Errorf("query %s (%s): %w", s.table, pqErr.Code.Name(), err)
		}
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}

	out := make([]stratify.Record, 0, len(rows))
	for _, r := range rows {
		id := strings.TrimSpace(r.ID)
		group := strings.TrimSpace(r.Group)
		if id == "" || group == "" {
			continue
		}
		out = append(out, stratify.Record{ID: id, Group: group})
	}
	if len(out) == 0 {
		return nil, ErrNoValidRows
	}
	return out, nil
}

// Close closes the underlying connection.
func (s *Source) Close() error {
	return s.db.Close()
}
