package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"site_cms/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"
)

// singletonSlot is the only key a singleton table accepts.
const singletonSlot = 1

// SingletonRepo stores an entity that exists at most once.
type SingletonRepo[T any] struct {
	db    *pgxpool.Pool
	sb    sq.StatementBuilderType
	table Table[T]
}

func NewSingletonRepo[T any](db *pgxpool.Pool, table Table[T]) *SingletonRepo[T] {
	return &SingletonRepo[T]{
		db:    db,
		sb:    newBuilder(),
		table: table,
	}
}

// Get returns the stored instance or storage.ErrNotFound.
func (r *SingletonRepo[T]) Get(ctx context.Context) (T, error) {
	op := "repository.SingletonRepo.Get." + r.table.Name

	var item T

	query, args, err := r.sb.Select(r.table.selectColumns(false)...).
		From(r.table.Name).
		Where(sq.Eq{"slot": singletonSlot}).
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

// Set upserts the single row. created_at survives overwrites.
func (r *SingletonRepo[T]) Set(ctx context.Context, item T) (T, error) {
	op := "repository.SingletonRepo.Set." + r.table.Name

	now := time.Now().UTC()

	columns := append([]string{"slot"}, r.table.Columns...)
	columns = append(columns, "created_at", "updated_at")

	values := append([]any{singletonSlot}, r.table.Values(item)...)
	values = append(values, now, now)

	assignments := make([]string, 0, len(r.table.Columns)+1)
	for _, c := range r.table.Columns {
		assignments = append(assignments, c+" = EXCLUDED."+c)
	}
	assignments = append(assignments, "updated_at = EXCLUDED.updated_at")

	query, args, err := r.sb.Insert(r.table.Name).
		Columns(columns...).
		Values(values...).
		Suffix(fmt.Sprintf("ON CONFLICT (slot) DO UPDATE SET %s RETURNING %s",
			strings.Join(assignments, ", "),
			strings.Join(r.table.selectColumns(false), ", "),
		)).
		ToSql()
	if err != nil {
		return item, fmt.Errorf("%s: %w", op, err)
	}

	var stored T
	if err := r.db.QueryRow(ctx, query, args...).Scan(r.table.Dest(&stored)...); err != nil {
		return item, fmt.Errorf("%s: %w", op, err)
	}

	return stored, nil
}

// Clear removes the instance, storage.ErrNotFound when there is none.
func (r *SingletonRepo[T]) Clear(ctx context.Context) error {
	op := "repository.SingletonRepo.Clear." + r.table.Name

	query, args, err := r.sb.Delete(r.table.Name).
		Where(sq.Eq{"slot": singletonSlot}).
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
