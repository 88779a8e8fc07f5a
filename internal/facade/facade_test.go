package facade

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store/memory"
)

var errRemoteDown = errors.New("dial tcp: connection refused")

// downSource behaves like an unreachable remote database.
type downSource struct {
	*memory.Store
}

func newDown() downSource { return downSource{Store: memory.New()} }

func (downSource) Name() string { return "remote" }

func (downSource) Select(context.Context, domain.Table, store.Options) ([]domain.Record, error) {
	return nil, errRemoteDown
}

func (downSource) Insert(context.Context, domain.Table, []domain.Record) ([]domain.Record, error) {
	return nil, errRemoteDown
}

func (downSource) Update(context.Context, domain.Table, domain.Patch, store.Eq) ([]domain.Record, error) {
	return nil, errRemoteDown
}

func (downSource) Delete(context.Context, domain.Table, store.Eq) (int, error) {
	return 0, errRemoteDown
}

func (downSource) SaveSale(context.Context, domain.Sale, []domain.SaleItem, bool) (domain.SaleDetail, error) {
	return domain.SaleDetail{}, errRemoteDown
}

func (downSource) Ping(context.Context) error { return errRemoteDown }

func TestSelectFailureServesSeedCopy(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewSeeded()
	f := New(newDown(), mock)

	seed, err := mock.Get(domain.TableCustomers)
	require.NoError(t, err)

	res, err := f.Perform(ctx, Request{Table: domain.TableCustomers, Op: OpSelect})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, "mock", res.Source)
	assert.Equal(t, seed, res.Rows)

	c := res.Rows[0].(domain.Customer)
	*c.Email = "changed@example.com"
	again, _ := mock.Get(domain.TableCustomers)
	assert.Equal(t, seed, again)
}

func TestSelectFallbackKeepsOptions(t *testing.T) {
	ctx := context.Background()
	f := New(newDown(), memory.NewSeeded())

	rows, res, err := Select[domain.Product](ctx, f, store.Options{
		Order: []store.Order{{Column: "quantity", Ascending: true}},
		Limit: 1,
	})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	require.Len(t, rows, 1)
	assert.Equal(t, "SUN-050", rows[0].SKU)
}

func TestStandaloneModeNeverDegrades(t *testing.T) {
	f := New(memory.NewSeeded(), nil)
	assert.False(t, f.Remote())

	rows, res, err := Select[domain.Staff](context.Background(), f, store.Options{})
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, "mock", res.Source)
	assert.Len(t, rows, 2)
}

func TestWriteFailureSurfacesByDefault(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewSeeded()
	f := New(newDown(), mock)

	_, _, err := Insert(ctx, f, domain.Customer{Name: "New", Phone: "090"})
	assert.ErrorIs(t, err, errRemoteDown)

	n, _ := mock.Count(ctx, domain.TableCustomers)
	assert.Equal(t, 2, n)
}

func TestMirrorPolicyAppliesToEveryTable(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewSeeded()
	f := New(newDown(), mock, WithWritePolicy(MirrorWrites))

	staff, res, err := Insert(ctx, f, domain.Staff{
		Name: "Fon", Position: "Nurse", Phone: "091", CommissionRate: decimal.NewFromInt(3), Role: domain.RoleStaff,
	})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.NotEmpty(t, staff.ID)

	customer, res, err := Insert(ctx, f, domain.Customer{Name: "New", Phone: "090"})
	require.NoError(t, err)
	assert.True(t, res.Degraded)

	name := "Renamed"
	updated, _, err := UpdateByID[domain.Customer](ctx, f, customer.ID, domain.CustomerPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = DeleteByID(ctx, f, domain.TableCustomers, customer.ID)
	require.NoError(t, err)
	n, _ := mock.Count(ctx, domain.TableCustomers)
	assert.Equal(t, 2, n)
}

func TestMirrorPolicyNeverMirrorsInvalidRequests(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewSeeded()
	f := New(mock, memory.New(), WithWritePolicy(MirrorWrites))

	_, _, err := Insert(ctx, f, domain.Customer{Name: "No phone"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = DeleteByID(ctx, f, domain.TableCustomers, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.Perform(ctx, Request{Table: domain.TableCustomers, Op: OpDelete})
	assert.ErrorIs(t, err, store.ErrUnfilteredWrite)
}

func TestSaveSaleMirrorsWhenRemoteIsDown(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewSeeded()
	f := New(newDown(), mock, WithWritePolicy(MirrorWrites))

	customers, _ := mock.Get(domain.TableCustomers)
	staff, _ := mock.Get(domain.TableStaff)
	detail, res, err := f.SaveSale(ctx, domain.Sale{
		CustomerID:    customers[0].RecordID(),
		StaffID:       staff[0].RecordID(),
		TotalAmount:   decimal.NewFromInt(300),
		PaymentMethod: domain.PaymentCash,
		PaymentStatus: domain.PaymentPending,
	}, []domain.SaleItem{{
		ItemType: domain.ItemService, ItemID: "svc", Quantity: 1,
		UnitPrice: decimal.NewFromInt(300), Subtotal: decimal.NewFromInt(300),
	}}, false)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, 2, res.Affected)
	assert.NotEmpty(t, detail.Sale.ID)

	strict := New(newDown(), memory.NewSeeded())
	_, _, err = strict.SaveSale(ctx, detail.Sale, detail.Items, false)
	assert.ErrorIs(t, err, errRemoteDown)
}

func TestMirroredSaleStillChecksReferences(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewSeeded()
	f := New(newDown(), mock, WithWritePolicy(MirrorWrites))

	customers, _ := mock.Get(domain.TableCustomers)
	_, _, err := f.SaveSale(ctx, domain.Sale{
		CustomerID:    customers[0].RecordID(),
		StaffID:       "nope",
		TotalAmount:   decimal.NewFromInt(300),
		PaymentMethod: domain.PaymentCash,
		PaymentStatus: domain.PaymentPending,
	}, []domain.SaleItem{{
		ItemType: domain.ItemService, ItemID: "svc", Quantity: 1,
		UnitPrice: decimal.NewFromInt(300), Subtotal: decimal.NewFromInt(300),
	}}, false)
	assert.ErrorIs(t, err, store.ErrConflict)

	n, _ := mock.Count(ctx, domain.TableSales)
	assert.Equal(t, 1, n)
}

func TestHealthReportsPrimaryState(t *testing.T) {
	ctx := context.Background()

	h, err := New(memory.NewSeeded(), nil).Health(ctx)
	require.NoError(t, err)
	assert.False(t, h.Remote)
	assert.Equal(t, 2, h.Customers)

	h, err = New(newDown(), memory.NewSeeded()).Health(ctx)
	assert.ErrorIs(t, err, errRemoteDown)
	assert.True(t, h.Remote)
}

func TestGetReportsMissingRow(t *testing.T) {
	_, _, err := Get[domain.Customer](context.Background(), New(memory.NewSeeded(), nil), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestParseWritePolicy(t *testing.T) {
	p, err := ParseWritePolicy("")
	require.NoError(t, err)
	assert.Equal(t, SurfaceWrites, p)

	p, err = ParseWritePolicy(" Mirror ")
	require.NoError(t, err)
	assert.Equal(t, MirrorWrites, p)

	_, err = ParseWritePolicy("silent")
	assert.Error(t, err)
}
