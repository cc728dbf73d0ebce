package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by PostgresCollection.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresCollection stores T as JSONB in a table of the form (id TEXT PRIMARY KEY, body JSONB).
type PostgresCollection[T any] struct {
	db    DB
	table string
}

func NewPostgresCollection[T any](db DB, table string) *PostgresCollection[T] {
	return &PostgresCollection[T]{db: db, table: pgx.Identifier{table}.Sanitize()}
}

func (c *PostgresCollection[T]) Insert(ctx context.Context, id string, doc *T) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode document: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO %s (id, body) VALUES ($1, $2::jsonb)", c.table)
	if _, err := c.db.Exec(ctx, query, id, string(body)); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("store: insert into %s: %w", c.table, err)
	}
	return nil
}

func (c *PostgresCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	query := fmt.Sprintf("SELECT body FROM %s WHERE id = $1", c.table)

	var raw []byte
	if err := c.db.QueryRow(ctx, query, id).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get %s/%s: %w", c.table, id, err)
	}
	return decodeBody[T](raw)
}

func (c *PostgresCollection[T]) Find(ctx context.Context, q Query) ([]T, error) {
	query, args, err := buildFind(c.table, q)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: find in %s: %w", c.table, err)
	}
	defer rows.Close()

	docs := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", c.table, err)
		}
		doc, err := decodeBody[T](raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate %s: %w", c.table, err)
	}
	return docs, nil
}

func (c *PostgresCollection[T]) Update(ctx context.Context, id string, set map[string]any, unset ...string) (*T, error) {
	patch := []byte("{}")
	if len(set) > 0 {
		var err error
		if patch, err = json.Marshal(set); err != nil {
			return nil, fmt.Errorf("store: encode update: %w", err)
		}
	}
	if unset == nil {
		unset = []string{}
	}

	query := fmt.Sprintf("UPDATE %s SET body = (body - $2::text[]) || $3::jsonb WHERE id = $1 RETURNING body", c.table)

	var raw []byte
	if err := c.db.QueryRow(ctx, query, id, unset, string(patch)).Scan(&raw); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		case isUniqueViolation(err):
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("store: update %s/%s: %w", c.table, id, err)
	}
	return decodeBody[T](raw)
}

func (c *PostgresCollection[T]) Replace(ctx context.Context, id string, doc *T) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode document: %w", err)
	}

	query := fmt.Sprintf("UPDATE %s SET body = $2::jsonb WHERE id = $1", c.table)
	tag, err := c.db.Exec(ctx, query, id, string(body))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("store: replace %s/%s: %w", c.table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *PostgresCollection[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", c.table)
	tag, err := c.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", c.table, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *PostgresCollection[T]) Count(ctx context.Context, filter map[string]any) (int64, error) {
	query, args, err := buildWhere(fmt.Sprintf("SELECT count(*) FROM %s", c.table), Query{Filter: filter})
	if err != nil {
		return 0, err
	}

	var n int64
	if err := c.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count %s: %w", c.table, err)
	}
	return n, nil
}

func buildFind(table string, q Query) (string, []any, error) {
	query, args, err := buildWhere(fmt.Sprintf("SELECT body FROM %s", table), q)
	if err != nil {
		return "", nil, err
	}

	if q.OrderBy != "" {
		args = append(args, strings.Split(q.OrderBy, "."))
		direction := "ASC"
		if q.Desc {
			direction = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY (body #>> $%d::text[])::timestamptz %s NULLS LAST", len(args), direction)
	}
	return query, args, nil
}

func buildWhere(base string, q Query) (string, []any, error) {
	var (
		conds []string
		args  []any
	)

	if len(q.Filter) > 0 {
		filter, err := json.Marshal(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("store: encode filter: %w", err)
		}
		args = append(args, string(filter))
		conds = append(conds, fmt.Sprintf("body @> $%d::jsonb", len(args)))
	}

	for _, path := range q.Exists {
		args = append(args, strings.Split(path, "."))
		conds = append(conds, fmt.Sprintf("COALESCE(jsonb_typeof(body #> $%d::text[]), 'null') <> 'null'", len(args)))
	}

	if len(conds) > 0 {
		base += " WHERE " + strings.Join(conds, " AND ")
	}
	return base, args, nil
}

func decodeBody[T any](raw []byte) (*T, error) {
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("store: decode document: %w", err)
	}
	return &doc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
