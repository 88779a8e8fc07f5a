package facade

import (
	"context"
	"fmt"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

func tableOf[T domain.Record]() domain.Table {
	var zero T
	return zero.Table()
}

func cast[T domain.Record](rows []domain.Record) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		typed, ok := row.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected %T row in %s", row, tableOf[T]())
		}
		out = append(out, typed)
	}
	return out, nil
}

// Select reads rows of T's table.
func Select[T domain.Record](ctx context.Context, f *Facade, opts store.Options) ([]T, Result, error) {
	res, err := f.Perform(ctx, Request{Table: tableOf[T](), Op: OpSelect, Options: opts})
	if err != nil {
		return nil, res, err
	}
	rows, err := cast[T](res.Rows)
	return rows, res, err
}

// Get reads the row of T's table with id.
func Get[T domain.Record](ctx context.Context, f *Facade, id string) (T, Result, error) {
	var zero T
	rows, res, err := Select[T](ctx, f, store.Options{Where: []store.Eq{{Column: "id", Value: id}}, Limit: 1})
	if err != nil {
		return zero, res, err
	}
	if len(rows) == 0 {
		return zero, res, store.ErrNotFound
	}
	return rows[0], res, nil
}

func Insert[T domain.Record](ctx context.Context, f *Facade, row T) (T, Result, error) {
	var zero T
	res, err := f.Perform(ctx, Request{Table: tableOf[T](), Op: OpInsert, Rows: []domain.Record{row}})
	if err != nil {
		return zero, res, err
	}
	rows, err := cast[T](res.Rows)
	if err != nil || len(rows) == 0 {
		return zero, res, err
	}
	return rows[0], res, nil
}

// UpdateByID applies patch to the row with id. A missing row is ErrNotFound.
func UpdateByID[T domain.Record](ctx context.Context, f *Facade, id string, patch domain.Patch) (T, Result, error) {
	var zero T
	res, err := f.Perform(ctx, Request{Table: tableOf[T](), Op: OpUpdate, Patch: patch, Eq: store.Eq{Column: "id", Value: id}})
	if err != nil {
		return zero, res, err
	}
	rows, err := cast[T](res.Rows)
	if err != nil {
		return zero, res, err
	}
	if len(rows) == 0 {
		return zero, res, store.ErrNotFound
	}
	return rows[0], res, nil
}

func DeleteByID(ctx context.Context, f *Facade, table domain.Table, id string) (Result, error) {
	res, err := f.Perform(ctx, Request{Table: table, Op: OpDelete, Eq: store.Eq{Column: "id", Value: id}})
	if err != nil {
		return res, err
	}
	if res.Affected == 0 {
		return res, store.ErrNotFound
	}
	return res, nil
}
