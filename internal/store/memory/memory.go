package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

// Store is the in-process Mock Dataset. It serves as the degraded-read
// fallback for the remote data source and as a standalone backend.
type Store struct {
	mu     sync.RWMutex
	tables map[domain.Table][]domain.Record
	users  map[string]domain.UserAccount
	now    func() time.Time
}

// New returns an empty store.
func New() *Store {
	s := &Store{
		tables: make(map[domain.Table][]domain.Record, len(domain.Tables)),
		users:  make(map[string]domain.UserAccount),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, t := range domain.Tables {
		s.tables[t] = nil
	}
	return s
}

func (s *Store) Name() string { return "mock" }

func (s *Store) Ping(context.Context) error { return nil }

// Get returns a deep copy of every row of table in insertion order.
func (s *Store) Get(table domain.Table) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	return cloneAll(rows), nil
}

// Add stores one row with a fresh identifier and timestamps.
func (s *Store) Add(table domain.Table, row domain.Record) (domain.Record, error) {
	if row != nil {
		row = row.WithMeta(domain.Meta{})
	}
	added, err := s.Insert(context.Background(), table, []domain.Record{row})
	if err != nil {
		return nil, err
	}
	return added[0], nil
}

// UpdateByID merges patch into the row with id and bumps updated_at.
func (s *Store) UpdateByID(table domain.Table, id string, patch domain.Patch) (domain.Record, error) {
	rows, err := s.Update(context.Background(), table, patch, store.Eq{Column: "id", Value: id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return rows[0], nil
}

// DeleteByID removes the row with id.
func (s *Store) DeleteByID(table domain.Table, id string) error {
	n, err := s.Delete(context.Background(), table, store.Eq{Column: "id", Value: id})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Select(_ context.Context, table domain.Table, opts store.Options) ([]domain.Record, error) {
	if err := store.CheckOptions(table, opts); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(store.Filter(s.tables[table], opts)), nil
}

func (s *Store) Count(_ context.Context, table domain.Table) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.tables[table]
	if !ok {
		return 0, fmt.Errorf("%w: %s", store.ErrUnknownTable, table)
	}
	return len(rows), nil
}

func (s *Store) Insert(_ context.Context, table domain.Table, rows []domain.Record) ([]domain.Record, error) {
	if err := store.CheckRows(table, rows); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := slices.Clone(s.tables[table])
	added := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		row = store.Stamp(row.Clone(), now)
		if indexOf(next, row.RecordID()) >= 0 {
			return nil, fmt.Errorf("%w: %s id %s already exists", store.ErrConflict, table, row.RecordID())
		}
		if err := checkUnique(next, row); err != nil {
			return nil, err
		}
		if err := s.checkReferences(row); err != nil {
			return nil, err
		}
		next = append(next, row)
		added = append(added, row.Clone())
	}
	s.tables[table] = next
	return added, nil
}

func (s *Store) Update(_ context.Context, table domain.Table, patch domain.Patch, where store.Eq) ([]domain.Record, error) {
	if err := store.CheckWrite(table, where); err != nil {
		return nil, err
	}
	if patch == nil || patch.Table() != table {
		return nil, fmt.Errorf("%w: patch does not belong to %s", domain.ErrInvalid, table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := slices.Clone(s.tables[table])
	updated := make([]domain.Record, 0, 1)
	match := store.Options{Where: []store.Eq{where}}
	for i, row := range next {
		if !store.Matches(row, match) {
			continue
		}
		merged, err := patch.Apply(row)
		if err != nil {
			return nil, err
		}
		meta := row.Metadata()
		meta.UpdatedAt = now
		merged = merged.WithMeta(meta)
		if err := checkUnique(append(slices.Clone(next[:i]), next[i+1:]...), merged); err != nil {
			return nil, err
		}
		if err := s.checkReferences(merged); err != nil {
			return nil, err
		}
		next[i] = merged
		updated = append(updated, merged.Clone())
	}
	s.tables[table] = next
	return updated, nil
}

func (s *Store) Delete(_ context.Context, table domain.Table, where store.Eq) (int, error) {
	if err := store.CheckWrite(table, where); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	match := store.Options{Where: []store.Eq{where}}
	rows := s.tables[table]
	kept := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		if !store.Matches(row, match) {
			kept = append(kept, row)
			continue
		}
		if err := s.checkReferenced(table, row.RecordID()); err != nil {
			return 0, err
		}
	}
	s.tables[table] = kept
	return len(rows) - len(kept), nil
}

func (s *Store) SaveSale(_ context.Context, sale domain.Sale, items []domain.SaleItem, replace bool) (domain.SaleDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sales := slices.Clone(s.tables[domain.TableSales])
	idx := -1
	if replace {
		idx = indexOf(sales, sale.ID)
		if idx < 0 {
			return domain.SaleDetail{}, store.ErrNotFound
		}
		sale.CreatedAt = sales[idx].Metadata().CreatedAt
	} else if sale.ID != "" && indexOf(sales, sale.ID) >= 0 {
		return domain.SaleDetail{}, fmt.Errorf("%w: sale %s already exists", store.ErrConflict, sale.ID)
	}

	header := store.Stamp(sale.Clone(), now).(domain.Sale)
	if err := header.Validate(); err != nil {
		return domain.SaleDetail{}, err
	}
	if err := s.checkReferences(header); err != nil {
		return domain.SaleDetail{}, err
	}

	saleItems := make([]domain.Record, 0, len(s.tables[domain.TableSaleItems])+len(items))
	for _, row := range s.tables[domain.TableSaleItems] {
		if row.(domain.SaleItem).SaleID != header.ID {
			saleItems = append(saleItems, row)
		}
	}

	lines := make([]domain.SaleItem, 0, len(items))
	for _, item := range items {
		item.SaleID = header.ID
		stamped := store.Stamp(item, now).(domain.SaleItem)
		if err := stamped.Validate(); err != nil {
			return domain.SaleDetail{}, err
		}
		if indexOf(saleItems, stamped.ID) >= 0 {
			return domain.SaleDetail{}, fmt.Errorf("%w: sale item %s already exists", store.ErrConflict, stamped.ID)
		}
		saleItems = append(saleItems, stamped)
		lines = append(lines, stamped)
	}
	if idx >= 0 {
		sales[idx] = header
	} else {
		sales = append(sales, header)
	}

	s.tables[domain.TableSales] = sales
	s.tables[domain.TableSaleItems] = saleItems
	return domain.SaleDetail{Sale: header.Clone().(domain.Sale), Items: slices.Clone(lines)}, nil
}

func (s *Store) DeleteSale(_ context.Context, saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sales := s.tables[domain.TableSales]
	idx := indexOf(sales, saleID)
	if idx < 0 {
		return store.ErrNotFound
	}

	items := s.tables[domain.TableSaleItems]
	kept := make([]domain.Record, 0, len(items))
	for _, row := range items {
		if row.(domain.SaleItem).SaleID != saleID {
			kept = append(kept, row)
		}
	}
	s.tables[domain.TableSaleItems] = kept
	s.tables[domain.TableSales] = slices.Delete(slices.Clone(sales), idx, idx+1)
	return nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return fmt.Errorf("%w: user %s already exists", store.ErrConflict, email)
	}
	user.Email = email
	s.users[email] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.UserAccount, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return strings.Compare(a.Email, b.Email)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, email string, passwordHash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	s.users[email] = user
	return nil
}

func indexOf(rows []domain.Record, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(rows, func(r domain.Record) bool { return r.RecordID() == id })
}

// checkUnique enforces the unique product SKU constraint of the schema.
func checkUnique(existing []domain.Record, row domain.Record) error {
	product, ok := row.(domain.Product)
	if !ok {
		return nil
	}
	for _, r := range existing {
		if p, ok := r.(domain.Product); ok && p.ID != product.ID && p.SKU == product.SKU {
			return fmt.Errorf("%w: sku %s already exists", store.ErrConflict, product.SKU)
		}
	}
	return nil
}

func cloneAll(rows []domain.Record) []domain.Record {
	out := make([]domain.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
