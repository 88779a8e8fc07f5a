package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

func TestSeededDatasetHasRowsForEveryTable(t *testing.T) {
	s := NewSeeded()
	for _, table := range domain.Tables {
		rows, err := s.Get(table)
		require.NoError(t, err)
		assert.NotEmpty(t, rows, "table %s", table)
		assert.LessOrEqual(t, len(rows), 2, "table %s", table)
		for _, row := range rows {
			assert.NoError(t, row.Validate(), "table %s", table)
		}
	}
}

func TestSeedTimestampsAreRelative(t *testing.T) {
	s := NewSeeded()
	rows, err := s.Get(domain.TableCustomers)
	require.NoError(t, err)
	age := time.Since(rows[0].Metadata().CreatedAt)
	assert.InDelta(t, (30 * 24 * time.Hour).Hours(), age.Hours(), 25)
}

func TestGetReturnsDeepCopy(t *testing.T) {
	s := NewSeeded()
	first, err := s.Get(domain.TableCustomers)
	require.NoError(t, err)

	c := first[0].(domain.Customer)
	*c.Email = "mutated@example.com"
	c.Name = "Mutated"

	again, err := s.Get(domain.TableCustomers)
	require.NoError(t, err)
	got := again[0].(domain.Customer)
	assert.NotEqual(t, "Mutated", got.Name)
	assert.Equal(t, "somchai@example.com", *got.Email)
}

func TestAddAssignsIdentity(t *testing.T) {
	s := New()
	row, err := s.Add(domain.TableCustomers, domain.Customer{
		Meta:  domain.Meta{ID: "caller-chosen"},
		Name:  "Wanida",
		Phone: "080",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "caller-chosen", row.RecordID())
	assert.NotEmpty(t, row.RecordID())
	assert.False(t, row.Metadata().CreatedAt.IsZero())
}

func TestAddRejectsInvalidRow(t *testing.T) {
	s := New()
	_, err := s.Add(domain.TableCustomers, domain.Customer{Name: "No phone"})
	assert.ErrorIs(t, err, domain.ErrInvalid)
	n, _ := s.Count(context.Background(), domain.TableCustomers)
	assert.Zero(t, n)
}

func TestUpdateByIDMergesAndBumpsUpdatedAt(t *testing.T) {
	s := NewSeeded()
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	rows, _ := s.Get(domain.TableProducts)
	target := rows[0].(domain.Product)

	qty := 3
	updated, err := s.UpdateByID(domain.TableProducts, target.ID, domain.ProductPatch{Quantity: &qty})
	require.NoError(t, err)

	p := updated.(domain.Product)
	assert.Equal(t, 3, p.Quantity)
	assert.Equal(t, target.SKU, p.SKU)
	assert.Equal(t, target.CreatedAt, p.CreatedAt)
	assert.Equal(t, base, p.UpdatedAt)
	assert.True(t, p.LowStock())
}

func TestUpdateAndDeleteByIDReportNotFound(t *testing.T) {
	s := NewSeeded()
	name := "x"
	_, err := s.UpdateByID(domain.TableCustomers, "missing", domain.CustomerPatch{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteByID(domain.TableCustomers, "missing"), store.ErrNotFound)
}

func TestDeleteByIDRemovesRow(t *testing.T) {
	s := NewSeeded()
	rows, _ := s.Get(domain.TableProducts)
	require.NoError(t, s.DeleteByID(domain.TableProducts, rows[0].RecordID()))
	after, _ := s.Get(domain.TableProducts)
	assert.Len(t, after, len(rows)-1)
}

func TestWritesRejectMissingReferences(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()
	customers, _ := s.Get(domain.TableCustomers)
	staff, _ := s.Get(domain.TableStaff)

	_, err := s.SaveSale(ctx, domain.Sale{
		CustomerID: customers[0].RecordID(), StaffID: "nope",
		PaymentMethod: domain.PaymentCash, PaymentStatus: domain.PaymentPending,
	}, nil, false)
	assert.ErrorIs(t, err, store.ErrConflict)

	services, _ := s.Get(domain.TableServices)
	_, err = s.Add(domain.TableTreatments, domain.Treatment{
		CustomerID: "nope", ServiceID: services[0].RecordID(), TreatmentDate: "2025-01-02",
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.Add(domain.TableTreatments, domain.Treatment{
		CustomerID: customers[0].RecordID(), ServiceID: services[0].RecordID(), TreatmentDate: "2025-01-02",
	})
	assert.NoError(t, err, "a null staff reference is allowed")

	missing := "nope"
	appts, _ := s.Get(domain.TableAppointments)
	_, err = s.UpdateByID(domain.TableAppointments, appts[0].RecordID(), domain.AppointmentPatch{StaffID: &missing})
	assert.ErrorIs(t, err, store.ErrConflict)

	sales, _ := s.Get(domain.TableSales)
	buyer := sales[0].(domain.Sale).CustomerID
	assert.ErrorIs(t, s.DeleteByID(domain.TableCustomers, buyer), store.ErrConflict)
	assert.ErrorIs(t, s.DeleteByID(domain.TableStaff, staff[0].RecordID()), store.ErrConflict)
	left, _ := s.Get(domain.TableCustomers)
	assert.Len(t, left, len(customers))
}

func TestProductSKUIsUnique(t *testing.T) {
	s := NewSeeded()
	_, err := s.Add(domain.TableProducts, domain.Product{Name: "Copy", SKU: "SER-001"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSaveSaleReplaceSwapsItems(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()
	sales, _ := s.Get(domain.TableSales)
	sale := sales[0].(domain.Sale)

	line := domain.SaleItem{
		ItemType:  domain.ItemProduct,
		ItemID:    "p1",
		Quantity:  2,
		UnitPrice: decimal.NewFromInt(100),
		Subtotal:  decimal.NewFromInt(200),
	}
	sale.TotalAmount = decimal.NewFromInt(200)
	detail, err := s.SaveSale(ctx, sale, []domain.SaleItem{line}, true)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, sale.ID, detail.Items[0].SaleID)
	assert.Equal(t, sale.CreatedAt, detail.Sale.CreatedAt)

	items, err := s.Select(ctx, domain.TableSaleItems, store.Options{Where: []store.Eq{{Column: "sale_id", Value: sale.ID}}})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSaveSaleRejectsInvalidLineWithoutChanges(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()
	sales, _ := s.Get(domain.TableSales)
	sale := sales[0].(domain.Sale)
	before, _ := s.Get(domain.TableSaleItems)

	bad := domain.SaleItem{ItemType: domain.ItemService, ItemID: "x", Quantity: 0}
	_, err := s.SaveSale(ctx, sale, []domain.SaleItem{bad}, true)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	after, _ := s.Get(domain.TableSaleItems)
	assert.Equal(t, before, after)
}

func TestDeleteSaleLeavesNoOrphanItems(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()
	sales, _ := s.Get(domain.TableSales)
	saleID := sales[0].RecordID()

	require.NoError(t, s.DeleteSale(ctx, saleID))

	items, _ := s.Get(domain.TableSaleItems)
	for _, item := range items {
		assert.NotEqual(t, saleID, item.(domain.SaleItem).SaleID)
	}
	assert.ErrorIs(t, s.DeleteSale(ctx, saleID), store.ErrNotFound)
}

func TestSeedUsersAreHashed(t *testing.T) {
	s := NewSeeded()
	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Contains(t, u.PasswordHash, "$2a$")
	}
}
