package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/facade"
	"github.com/sudlafakiew/patricia-clinic2025/internal/sales"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

func createdWithin(r domain.DateRange) store.Range {
	return store.Range{Column: "created_at", From: r.From, To: r.To}
}

// ListSales returns sales created within the inclusive day range, newest
// first, with their totals.
func (s *Service) ListSales(ctx context.Context, from string, to string) (domain.SalesList, error) {
	r, err := s.dayRange(from, to)
	if err != nil {
		return domain.SalesList{}, err
	}
	rows, res, err := facade.Select[domain.Sale](ctx, s.data, store.Options{
		Ranges: []store.Range{createdWithin(r)},
		Order:  newestFirst,
	})
	if err != nil {
		return domain.SalesList{}, err
	}
	if rows == nil {
		rows = []domain.Sale{}
	}
	return domain.SalesList{Sales: rows, Summary: sales.Summarize(rows), Degraded: res.Degraded}, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.SaleDetail, error) {
	sale, _, err := facade.Get[domain.Sale](ctx, s.data, id)
	if err != nil {
		return domain.SaleDetail{}, err
	}
	items, _, err := facade.Select[domain.SaleItem](ctx, s.data, store.Options{
		Where: []store.Eq{{Column: "sale_id", Value: id}},
		Order: []store.Order{{Column: "created_at", Ascending: true}},
	})
	if err != nil {
		return domain.SaleDetail{}, err
	}
	if items == nil {
		items = []domain.SaleItem{}
	}
	return domain.SaleDetail{Sale: sale, Items: items}, nil
}

func (s *Service) CreateSale(ctx context.Context, req domain.SaleRequest) (domain.SaleDetail, error) {
	return s.saveSale(ctx, "", req)
}

// UpdateSale rewrites the sale header and replaces all of its items.
func (s *Service) UpdateSale(ctx context.Context, id string, req domain.SaleRequest) (domain.SaleDetail, error) {
	return s.saveSale(ctx, id, req)
}

func (s *Service) saveSale(ctx context.Context, id string, req domain.SaleRequest) (domain.SaleDetail, error) {
	if len(req.Items) == 0 {
		return domain.SaleDetail{}, sales.ErrNoLineItems
	}
	lines, err := s.priceLines(ctx, req.Items)
	if err != nil {
		return domain.SaleDetail{}, err
	}
	bill, err := sales.Aggregate(lines)
	if err != nil {
		return domain.SaleDetail{}, err
	}

	status := req.PaymentStatus
	if status == "" {
		status = domain.PaymentPending
	}
	sale := domain.Sale{
		Meta:          domain.Meta{ID: id},
		CustomerID:    req.CustomerID,
		StaffID:       req.StaffID,
		TotalAmount:   bill.Total,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: status,
		Notes:         req.Notes,
	}

	detail, _, err := s.data.SaveSale(ctx, sale, bill.Items, id != "")
	if err != nil {
		return domain.SaleDetail{}, err
	}
	s.salesChanged(ctx)
	return detail, nil
}

// priceLines fills missing unit prices from the catalog: the service price
// or the product selling price.
func (s *Service) priceLines(ctx context.Context, items []domain.SaleLineRequest) ([]sales.Line, error) {
	lines := make([]sales.Line, 0, len(items))
	for i, item := range items {
		line := sales.Line{ItemType: item.ItemType, ItemID: item.ItemID, Quantity: item.Quantity}
		if item.UnitPrice != nil {
			line.UnitPrice = *item.UnitPrice
			lines = append(lines, line)
			continue
		}
		price, err := s.catalogPrice(ctx, item.ItemType, item.ItemID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &domain.ValidationError{Table: domain.TableSaleItems, Field: fmt.Sprintf("items[%d].item_id", i), Message: "unknown catalog item"}
		}
		if err != nil {
			return nil, err
		}
		line.UnitPrice = price
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Service) catalogPrice(ctx context.Context, itemType domain.ItemType, id string) (decimal.Decimal, error) {
	switch itemType {
	case domain.ItemService:
		svc, _, err := facade.Get[domain.Service](ctx, s.data, id)
		return svc.Price, err
	case domain.ItemProduct:
		p, _, err := facade.Get[domain.Product](ctx, s.data, id)
		return p.SellingPrice, err
	}
	// Aggregate reports the bad item type with its line index.
	return decimal.Zero, nil
}

func (s *Service) DeleteSale(ctx context.Context, id string) error {
	if _, err := s.data.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.salesChanged(ctx)
	return nil
}
