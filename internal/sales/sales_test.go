package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAggregateTwoLineScenario(t *testing.T) {
	bill, err := Aggregate([]Line{
		{ItemType: domain.ItemService, ItemID: "facial", Quantity: 2, UnitPrice: d(500)},
		{ItemType: domain.ItemProduct, ItemID: "serum", Quantity: 1, UnitPrice: d(300)},
	})
	require.NoError(t, err)
	assert.True(t, bill.Total.Equal(d(1300)), "total %s", bill.Total)
	require.Len(t, bill.Items, 2)
	assert.True(t, bill.Items[0].Subtotal.Equal(d(1000)))
	assert.True(t, bill.Items[1].Subtotal.Equal(d(300)))
}

func TestAggregateTotalEqualsSumOfSubtotals(t *testing.T) {
	lines := make([]Line, 0, 20)
	want := decimal.Zero
	for q := 1; q <= 20; q++ {
		price := decimal.New(int64(q*137), -2)
		lines = append(lines, Line{ItemType: domain.ItemService, ItemID: "x", Quantity: q, UnitPrice: price})
		want = want.Add(price.Mul(decimal.NewFromInt(int64(q))))

		bill, err := Aggregate(lines)
		require.NoError(t, err)
		assert.True(t, bill.Total.Equal(want), "after %d lines: %s != %s", q, bill.Total, want)

		sum := decimal.Zero
		for _, item := range bill.Items {
			sum = sum.Add(item.Subtotal)
		}
		assert.True(t, sum.Equal(bill.Total))
	}
}

func TestAggregateRejectsEmptyAndBadLines(t *testing.T) {
	_, err := Aggregate(nil)
	assert.ErrorIs(t, err, ErrNoLineItems)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = Aggregate([]Line{{ItemType: domain.ItemService, ItemID: "x", Quantity: 0, UnitPrice: d(1)}})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = Aggregate([]Line{{ItemType: "voucher", ItemID: "x", Quantity: 1, UnitPrice: d(1)}})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = Aggregate([]Line{{ItemType: domain.ItemProduct, ItemID: "x", Quantity: 1, UnitPrice: d(-1)}})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestCommissionScenario(t *testing.T) {
	staffA := domain.Staff{Meta: domain.Meta{ID: "a"}, Name: "A", CommissionRate: d(10)}
	rows := AggregateCommissions(JoinStaff([]domain.Sale{
		{StaffID: "a", TotalAmount: d(1000)},
		{StaffID: "a", TotalAmount: d(2000)},
	}, []domain.Staff{staffA}))

	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].StaffName)
	assert.True(t, rows[0].TotalSales.Equal(d(3000)))
	assert.True(t, rows[0].TotalCommission.Equal(d(300)))
	assert.Equal(t, 2, rows[0].SaleCount)
	assert.Equal(t, []string{"a"}, rows[0].StaffIDs)
}

func TestCommissionIsExactForFractionalRates(t *testing.T) {
	got := Commission(decimal.RequireFromString("1234.50"), decimal.RequireFromString("7.5"))
	assert.True(t, got.Equal(decimal.RequireFromString("92.5875")), "got %s", got)
}

func TestCommissionGroupsByNameAndExposesCollisions(t *testing.T) {
	roster := []domain.Staff{
		{Meta: domain.Meta{ID: "s1"}, Name: "Pim", CommissionRate: d(10)},
		{Meta: domain.Meta{ID: "s2"}, Name: "Pim", CommissionRate: d(20)},
		{Meta: domain.Meta{ID: "s3"}, Name: "Beam", CommissionRate: d(5)},
	}
	rows := AggregateCommissions(JoinStaff([]domain.Sale{
		{StaffID: "s1", TotalAmount: d(100)},
		{StaffID: "s2", TotalAmount: d(100)},
		{StaffID: "s3", TotalAmount: d(200)},
		{StaffID: "gone", TotalAmount: d(50)},
	}, roster))

	require.Len(t, rows, 3)
	assert.Equal(t, "Beam", rows[0].StaffName)
	assert.Equal(t, "Pim", rows[1].StaffName)
	assert.Equal(t, []string{"s1", "s2"}, rows[1].StaffIDs)
	assert.True(t, rows[1].TotalCommission.Equal(d(30)))
	assert.Equal(t, UnknownStaff, rows[2].StaffName)
	assert.True(t, rows[2].TotalCommission.IsZero())
	assert.True(t, rows[2].TotalSales.Equal(d(50)))
	assert.Empty(t, rows[2].StaffIDs)
}

func TestSummarize(t *testing.T) {
	sum := Summarize([]domain.Sale{
		{TotalAmount: d(1000), PaymentStatus: domain.PaymentCompleted},
		{TotalAmount: d(300), PaymentStatus: domain.PaymentPending},
		{TotalAmount: d(200), PaymentStatus: domain.PaymentRefunded},
	})
	assert.Equal(t, 3, sum.SalesCount)
	assert.True(t, sum.TotalSales.Equal(d(1500)))
	assert.True(t, sum.TotalCompleted.Equal(d(1000)))
	assert.True(t, sum.TotalPending.Equal(d(500)))
}
