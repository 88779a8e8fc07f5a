package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Store is the remote data source backed by PostgreSQL or SQLite.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open prepares a connection pool without dialing, so an unreachable database
// does not prevent startup.
func Open(driver string, dsn string) (*Store, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database url is required")
	}

	if driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxIdleConns(8)
		db.SetMaxOpenConns(30)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	return New(db), nil
}

// sqliteDSN appends the pragmas the schema relies on unless dsn sets them.
// Without foreign_keys(1) SQLite ignores REFERENCES clauses.
func sqliteDSN(dsn string) string {
	for _, p := range []struct{ key, param string }{
		{"foreign_keys", "_pragma=foreign_keys(1)"},
		{"busy_timeout", "_pragma=busy_timeout(5000)"},
		{"_time_format", "_time_format=sqlite"},
	} {
		if strings.Contains(dsn, p.key) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p.param
	}
	return dsn
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Name() string { return "remote" }

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return classify(s.db.PingContext(ctx))
}

func (s *Store) Count(ctx context.Context, table domain.Table) (int, error) {
	if _, ok := domain.Columns(table); !ok {
		return 0, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+string(table)); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (s *Store) Select(ctx context.Context, table domain.Table, opts store.Options) ([]domain.Record, error) {
	if err := store.CheckOptions(table, opts); err != nil {
		return nil, err
	}
	query, args := s.selectQuery(table, opts)
	return queryRecords(ctx, s.db, table, query, args)
}

func (s *Store) Insert(ctx context.Context, table domain.Table, rows []domain.Record) ([]domain.Record, error) {
	if err := store.CheckRows(table, rows); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	inserted := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		row = store.Stamp(row.Clone(), now)
		if err := s.insertRow(ctx, tx, row); err != nil {
			return nil, err
		}
		inserted = append(inserted, row)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify(err)
	}
	return inserted, nil
}

// Update applies patch to every matching row inside one transaction. Rows are
// read, merged and re-validated before being written back in full.
func (s *Store) Update(ctx context.Context, table domain.Table, patch domain.Patch, where store.Eq) ([]domain.Record, error) {
	if err := store.CheckWrite(table, where); err != nil {
		return nil, err
	}
	if patch == nil || patch.Table() != table {
		return nil, fmt.Errorf("%w: patch does not belong to %s", domain.ErrInvalid, table)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args := s.selectQuery(table, store.Options{Where: []store.Eq{where}})
	current, err := queryRecords(ctx, tx, table, query, args)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated := make([]domain.Record, 0, len(current))
	for _, row := range current {
		merged, err := patch.Apply(row)
		if err != nil {
			return nil, err
		}
		meta := row.Metadata()
		meta.UpdatedAt = now
		merged = merged.WithMeta(meta)
		if err := s.updateRow(ctx, tx, merged); err != nil {
			return nil, err
		}
		updated = append(updated, merged)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify(err)
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, table domain.Table, where store.Eq) (int, error) {
	if err := store.CheckWrite(table, where); err != nil {
		return 0, err
	}
	query := s.db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, where.Column))
	res, err := s.db.ExecContext(ctx, query, arg(where.Value))
	if err != nil {
		return 0, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(err)
	}
	return int(n), nil
}

func (s *Store) selectQuery(table domain.Table, opts store.Options) (string, []any) {
	cols, _ := domain.Columns(table)
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(string(table))

	args := make([]any, 0, len(opts.Where)+2*len(opts.Ranges))
	conds := make([]string, 0, len(opts.Where)+2*len(opts.Ranges))
	for _, eq := range opts.Where {
		if eq.Value == nil {
			conds = append(conds, eq.Column+" IS NULL")
			continue
		}
		conds = append(conds, eq.Column+" = ?")
		args = append(args, arg(eq.Value))
	}
	for _, r := range opts.Ranges {
		if r.From != nil {
			conds = append(conds, r.Column+" >= ?")
			args = append(args, arg(r.From))
		}
		if r.To != nil {
			conds = append(conds, r.Column+" <= ?")
			args = append(args, arg(r.To))
		}
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	if len(opts.Order) > 0 {
		terms := make([]string, 0, len(opts.Order))
		for _, o := range opts.Order {
			dir := "DESC"
			if o.Ascending {
				dir = "ASC"
			}
			terms = append(terms, o.Column+" "+dir)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", opts.Limit)
	}
	return s.db.Rebind(b.String()), args
}

func (s *Store) insertRow(ctx context.Context, exec sqlx.ExecerContext, row domain.Record) error {
	table := row.Table()
	cols, _ := domain.Columns(table)
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		v, _ := row.Field(col)
		args = append(args, arg(v))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	if _, err := exec.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) updateRow(ctx context.Context, exec sqlx.ExecerContext, row domain.Record) error {
	table := row.Table()
	cols, _ := domain.Columns(table)
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		if col == "id" || col == "created_at" {
			continue
		}
		v, _ := row.Field(col)
		sets = append(sets, col+" = ?")
		args = append(args, arg(v))
	}
	args = append(args, row.RecordID())
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := exec.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// arg normalises a query argument. Timestamps are stored in UTC.
func arg(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case *string:
		if t == nil {
			return nil
		}
		return *t
	}
	return v
}

func queryRecords(ctx context.Context, q sqlx.QueryerContext, table domain.Table, query string, args []any) ([]domain.Record, error) {
	switch table {
	case domain.TableCustomers:
		return scanAll[domain.Customer](ctx, q, query, args)
	case domain.TableStaff:
		return scanAll[domain.Staff](ctx, q, query, args)
	case domain.TableServices:
		return scanAll[domain.Service](ctx, q, query, args)
	case domain.TableProducts:
		return scanAll[domain.Product](ctx, q, query, args)
	case domain.TableAppointments:
		return scanAll[domain.Appointment](ctx, q, query, args)
	case domain.TableSales:
		return scanAll[domain.Sale](ctx, q, query, args)
	case domain.TableSaleItems:
		return scanAll[domain.SaleItem](ctx, q, query, args)
	case domain.TableTreatments:
		return scanAll[domain.Treatment](ctx, q, query, args)
	}
	return nil, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
}

// scanAll reads rows into typed records. A row that fails validation aborts
// the read.
func scanAll[T domain.Record](ctx context.Context, q sqlx.QueryerContext, query string, args []any) ([]domain.Record, error) {
	var rows []T
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, classify(err)
	}
	out := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return nil, fmt.Errorf("malformed %s row %s: %w", row.Table(), row.RecordID(), err)
		}
		out = append(out, normalizeTimes(row))
	}
	return out, nil
}

func normalizeTimes(row domain.Record) domain.Record {
	meta := row.Metadata()
	meta.CreatedAt = meta.CreatedAt.UTC()
	meta.UpdatedAt = meta.UpdatedAt.UTC()
	return row.WithMeta(meta)
}

var (
	_ store.DataSource = (*Store)(nil)
	_ store.UserStore  = (*Store)(nil)
)
