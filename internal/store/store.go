package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("data source unavailable")
	ErrUnfilteredWrite = errors.New("update and delete require an equality filter")
	ErrUnknownTable    = errors.New("unknown table")
)

// Eq matches rows whose column equals Value.
type Eq struct {
	Column string
	Value  any
}

// Range matches rows whose column lies between From and To, both inclusive.
// A nil bound is open.
type Range struct {
	Column string
	From   any
	To     any
}

type Order struct {
	Column    string
	Ascending bool
}

type Options struct {
	Where  []Eq
	Ranges []Range
	Order  []Order
	Limit  int
}

// DataSource is a table-oriented backend. Rows are typed domain records.
type DataSource interface {
	Name() string
	Select(ctx context.Context, table domain.Table, opts Options) ([]domain.Record, error)
	Insert(ctx context.Context, table domain.Table, rows []domain.Record) ([]domain.Record, error)
	Update(ctx context.Context, table domain.Table, patch domain.Patch, where Eq) ([]domain.Record, error)
	Delete(ctx context.Context, table domain.Table, where Eq) (int, error)
	Count(ctx context.Context, table domain.Table) (int, error)

	// SaveSale writes a sale header and its items atomically. With replace set,
	// the sale must exist and its previous items are swapped for the new ones.
	SaveSale(ctx context.Context, sale domain.Sale, items []domain.SaleItem, replace bool) (domain.SaleDetail, error)
	// DeleteSale removes the sale items and then the sale header atomically.
	DeleteSale(ctx context.Context, saleID string) error

	Ping(ctx context.Context) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, email string, passwordHash string) error
}

// CheckOptions rejects unknown tables and columns so that only declared
// columns ever reach a query.
func CheckOptions(table domain.Table, opts Options) error {
	if _, ok := domain.Columns(table); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	for _, eq := range opts.Where {
		if err := CheckColumn(table, eq.Column); err != nil {
			return err
		}
	}
	for _, r := range opts.Ranges {
		if err := CheckColumn(table, r.Column); err != nil {
			return err
		}
	}
	for _, o := range opts.Order {
		if err := CheckColumn(table, o.Column); err != nil {
			return err
		}
	}
	if opts.Limit < 0 {
		return &domain.ValidationError{Table: table, Field: "limit", Message: "must not be negative"}
	}
	return nil
}

func CheckColumn(table domain.Table, column string) error {
	if !domain.HasColumn(table, column) {
		return &domain.ValidationError{Table: table, Field: column, Message: "is not a known column"}
	}
	return nil
}

// CheckWrite validates the shape of an update or delete request.
func CheckWrite(table domain.Table, where Eq) error {
	if _, ok := domain.Columns(table); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if where.Column == "" {
		return ErrUnfilteredWrite
	}
	return CheckColumn(table, where.Column)
}

// CheckRows verifies every row belongs to table and is valid.
func CheckRows(table domain.Table, rows []domain.Record) error {
	if _, ok := domain.Columns(table); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	for _, row := range rows {
		if row == nil || row.Table() != table {
			return fmt.Errorf("%w: row does not belong to %s", domain.ErrInvalid, table)
		}
		if err := row.Validate(); err != nil {
			return err
		}
	}
	return nil
}
