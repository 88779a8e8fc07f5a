package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/facade"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

var newestFirst = []store.Order{{Column: "created_at", Ascending: false}}

// ListCustomers returns customers newest first, narrowed by query when set.
func (s *Service) ListCustomers(ctx context.Context, query string) (Listing[domain.Customer], error) {
	rows, res, err := facade.Select[domain.Customer](ctx, s.data, store.Options{Order: newestFirst})
	if err != nil {
		return Listing[domain.Customer]{}, err
	}
	return listing(FilterCustomers(rows, query), res), nil
}

// FilterCustomers keeps customers whose name or email contains query ignoring
// case, or whose phone contains it verbatim.
func FilterCustomers(customers []domain.Customer, query string) []domain.Customer {
	query = strings.TrimSpace(query)
	if query == "" {
		return customers
	}
	needle := strings.ToLower(query)
	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		switch {
		case strings.Contains(strings.ToLower(c.Name), needle),
			strings.Contains(c.Phone, query),
			c.Email != nil && strings.Contains(strings.ToLower(*c.Email), needle):
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	c, _, err := facade.Get[domain.Customer](ctx, s.data, id)
	return c, err
}

func (s *Service) CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	c.Meta = domain.Meta{}
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	created, _, err := facade.Insert(ctx, s.data, c)
	return created, err
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, patch domain.CustomerPatch) (domain.Customer, error) {
	updated, _, err := facade.UpdateByID[domain.Customer](ctx, s.data, id, patch)
	return updated, err
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	_, err := facade.DeleteByID(ctx, s.data, domain.TableCustomers, id)
	return err
}

// CustomerHistory loads a customer with their sales and treatments, newest
// first.
func (s *Service) CustomerHistory(ctx context.Context, id string) (domain.CustomerHistory, error) {
	customer, res, err := facade.Get[domain.Customer](ctx, s.data, id)
	if err != nil {
		return domain.CustomerHistory{}, err
	}
	history := domain.CustomerHistory{Customer: customer, Degraded: res.Degraded}
	byCustomer := []store.Eq{{Column: "customer_id", Value: id}}

	var salesRes, treatmentsRes facade.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, r, err := facade.Select[domain.Sale](gctx, s.data, store.Options{Where: byCustomer, Order: newestFirst})
		history.Sales, salesRes = rows, r
		return err
	})
	g.Go(func() error {
		rows, r, err := facade.Select[domain.Treatment](gctx, s.data, store.Options{
			Where: byCustomer,
			Order: []store.Order{{Column: "treatment_date", Ascending: false}, {Column: "created_at", Ascending: false}},
		})
		history.Treatments, treatmentsRes = rows, r
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.CustomerHistory{}, err
	}
	history.Degraded = history.Degraded || salesRes.Degraded || treatmentsRes.Degraded
	if history.Sales == nil {
		history.Sales = []domain.Sale{}
	}
	if history.Treatments == nil {
		history.Treatments = []domain.Treatment{}
	}
	return history, nil
}
