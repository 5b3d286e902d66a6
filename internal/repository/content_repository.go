package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"site_cms/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Table describes how an entity maps onto its table.
//
// Columns lists the writable columns, without id and timestamps. Values
// returns the entity's values in Columns order. Dest returns scan targets
// in select order: id (keyed tables only), Columns, created_at, updated_at.
type Table[T any] struct {
	Name    string
	Columns []string
	Values  func(T) []any
	Dest    func(*T) []any
}

func (t Table[T]) selectColumns(keyed bool) []string {
	cols := make([]string, 0, len(t.Columns)+3)
	if keyed {
		cols = append(cols, "id")
	}
	cols = append(cols, t.Columns...)
	return append(cols, "created_at", "updated_at")
}

func (t Table[T]) allowed(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ContentRepo is the CRUD store shared by the list-style content entities.
type ContentRepo[T any] struct {
	db    *pgxpool.Pool
	sb    sq.StatementBuilderType
	table Table[T]
}

func NewContentRepo[T any](db *pgxpool.Pool, table Table[T]) *ContentRepo[T] {
	return &ContentRepo[T]{
		db:    db,
		sb:    newBuilder(),
		table: table,
	}
}

// List returns every row, newest first.
func (r *ContentRepo[T]) List(ctx context.Context) ([]T, error) {
	op := "repository.ContentRepo.List." + r.table.Name

	query, args, err := r.sb.Select(r.table.selectColumns(true)...).
		From(r.table.Name).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var item T
		if err := rows.Scan(r.table.Dest(&item)...); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (r *ContentRepo[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	op := "repository.ContentRepo.Get." + r.table.Name

	var item T

	query, args, err := r.sb.Select(r.table.selectColumns(true)...).
		From(r.table.Name).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return item, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(r.table.Dest(&item)...); err != nil {
		if isNoRows(err) {
			return item, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return item, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// Create inserts item under id and returns the stored row.
func (r *ContentRepo[T]) Create(ctx context.Context, id uuid.UUID, item T) (T, error) {
	op := "repository.ContentRepo.Create." + r.table.Name

	now := time.Now().UTC()

	columns := append([]string{"id"}, r.table.Columns...)
	columns = append(columns, "created_at", "updated_at")

	values := append([]any{id}, r.table.Values(item)...)
	values = append(values, now, now)

	query, args, err := r.sb.Insert(r.table.Name).
		Columns(columns...).
		Values(values...).
		Suffix("RETURNING " + strings.Join(r.table.selectColumns(true), ", ")).
		ToSql()
	if err != nil {
		return item, fmt.Errorf("%s: %w", op, err)
	}

	var created T
	if err := r.db.QueryRow(ctx, query, args...).Scan(r.table.Dest(&created)...); err != nil {
		return item, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// Update sets the given columns and refreshes updated_at. An empty map only
// refreshes updated_at.
func (r *ContentRepo[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) (T, error) {
	op := "repository.ContentRepo.Update." + r.table.Name

	var item T

	builder := r.sb.Update(r.table.Name).
		Set("updated_at", time.Now().UTC())

	for field, value := range fields {
		if !r.table.allowed(field) {
			return item, fmt.Errorf("%s: field '%s' is not allowed for update", op, field)
		}
		builder = builder.Set(field, value)
	}

	query, args, err := builder.
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(r.table.selectColumns(true), ", ")).
		ToSql()
	if err != nil {
		return item, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(r.table.Dest(&item)...); err != nil {
		if isNoRows(err) {
			return item, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return item, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func (r *ContentRepo[T]) Delete(ctx context.Context, id uuid.UUID) error {
	op := "repository.ContentRepo.Delete." + r.table.Name

	query, args, err := r.sb.Delete(r.table.Name).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
