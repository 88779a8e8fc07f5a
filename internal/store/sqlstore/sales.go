package sqlstore

import (
	"context"
	"time"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

// SaveSale writes the header and items in one transaction. On replace the old
// items are deleted inside the same transaction, so a failed insert keeps them.
func (s *Store) SaveSale(ctx context.Context, sale domain.Sale, items []domain.SaleItem, replace bool) (domain.SaleDetail, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.SaleDetail{}, classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		var createdAt time.Time
		err := tx.GetContext(ctx, &createdAt, s.db.Rebind(`SELECT created_at FROM sales WHERE id = ?`), sale.ID)
		if err != nil {
			return domain.SaleDetail{}, classify(err)
		}
		sale.CreatedAt = createdAt.UTC()
	}

	now := s.now()
	header := store.Stamp(sale.Clone(), now).(domain.Sale)
	if err := header.Validate(); err != nil {
		return domain.SaleDetail{}, err
	}
	lines := make([]domain.SaleItem, 0, len(items))
	for _, item := range items {
		item.SaleID = header.ID
		stamped := store.Stamp(item, now).(domain.SaleItem)
		if err := stamped.Validate(); err != nil {
			return domain.SaleDetail{}, err
		}
		lines = append(lines, stamped)
	}

	if replace {
		if err := s.updateRow(ctx, tx, header); err != nil {
			return domain.SaleDetail{}, err
		}
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM sale_items WHERE sale_id = ?`), header.ID); err != nil {
			return domain.SaleDetail{}, classify(err)
		}
	} else if err := s.insertRow(ctx, tx, header); err != nil {
		return domain.SaleDetail{}, err
	}

	for _, line := range lines {
		if err := s.insertRow(ctx, tx, line); err != nil {
			return domain.SaleDetail{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.SaleDetail{}, classify(err)
	}
	return domain.SaleDetail{Sale: header, Items: lines}, nil
}

func (s *Store) DeleteSale(ctx context.Context, saleID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM sale_items WHERE sale_id = ?`), saleID); err != nil {
		return classify(err)
	}
	res, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM sales WHERE id = ?`), saleID)
	if err != nil {
		return classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return classify(tx.Commit())
}
