package service

import (
	"context"
	"strings"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/facade"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

var byName = store.Options{Order: []store.Order{{Column: "name", Ascending: true}}}

func (s *Service) ListStaff(ctx context.Context) (Listing[domain.Staff], error) {
	rows, res, err := facade.Select[domain.Staff](ctx, s.data, byName)
	if err != nil {
		return Listing[domain.Staff]{}, err
	}
	return listing(rows, res), nil
}

func (s *Service) CreateStaff(ctx context.Context, staff domain.Staff) (domain.Staff, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Staff{}, err
	}
	staff.Meta = domain.Meta{}
	staff.Name = strings.TrimSpace(staff.Name)
	if staff.Role == "" {
		staff.Role = domain.RoleStaff
	}
	created, _, err := facade.Insert(ctx, s.data, staff)
	return created, err
}

func (s *Service) UpdateStaff(ctx context.Context, id string, patch domain.StaffPatch) (domain.Staff, error) {
	if err := requireAdmin(ctx); err != nil {
		return domain.Staff{}, err
	}
	updated, _, err := facade.UpdateByID[domain.Staff](ctx, s.data, id, patch)
	return updated, err
}

func (s *Service) DeleteStaff(ctx context.Context, id string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	_, err := facade.DeleteByID(ctx, s.data, domain.TableStaff, id)
	return err
}

func (s *Service) ListServices(ctx context.Context) (Listing[domain.Service], error) {
	rows, res, err := facade.Select[domain.Service](ctx, s.data, byName)
	if err != nil {
		return Listing[domain.Service]{}, err
	}
	return listing(rows, res), nil
}

func (s *Service) CreateService(ctx context.Context, svc domain.Service) (domain.Service, error) {
	svc.Meta = domain.Meta{}
	svc.Name = strings.TrimSpace(svc.Name)
	created, _, err := facade.Insert(ctx, s.data, svc)
	return created, err
}

func (s *Service) UpdateService(ctx context.Context, id string, patch domain.ServicePatch) (domain.Service, error) {
	updated, _, err := facade.UpdateByID[domain.Service](ctx, s.data, id, patch)
	return updated, err
}

func (s *Service) DeleteService(ctx context.Context, id string) error {
	_, err := facade.DeleteByID(ctx, s.data, domain.TableServices, id)
	return err
}

func (s *Service) ListProducts(ctx context.Context) (Listing[domain.Product], error) {
	rows, res, err := facade.Select[domain.Product](ctx, s.data, byName)
	if err != nil {
		return Listing[domain.Product]{}, err
	}
	return listing(rows, res), nil
}

// LowStockProducts lists products at or below their minimum quantity.
func (s *Service) LowStockProducts(ctx context.Context) (Listing[domain.Product], error) {
	all, err := s.ListProducts(ctx)
	if err != nil {
		return Listing[domain.Product]{}, err
	}
	all.Items = lowStock(all.Items)
	return all, nil
}

func lowStock(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Meta = domain.Meta{}
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	created, _, err := facade.Insert(ctx, s.data, p)
	return created, err
}

func (s *Service) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if patch.SKU != nil {
		sku := strings.ToUpper(strings.TrimSpace(*patch.SKU))
		patch.SKU = &sku
	}
	updated, _, err := facade.UpdateByID[domain.Product](ctx, s.data, id, patch)
	return updated, err
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	_, err := facade.DeleteByID(ctx, s.data, domain.TableProducts, id)
	return err
}
