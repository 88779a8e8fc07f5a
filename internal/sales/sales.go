// Package sales holds the arithmetic of point-of-sale bills and staff
// commissions. Nothing here touches storage.
package sales

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
)

// ErrNoLineItems rejects a sale without lines. It matches domain.ErrInvalid.
var ErrNoLineItems error = &domain.ValidationError{Table: domain.TableSales, Field: "items", Message: "must contain at least one line item"}

type Line struct {
	ItemType  domain.ItemType
	ItemID    string
	Quantity  int
	UnitPrice decimal.Decimal
}

type Bill struct {
	Items []domain.SaleItem
	Total decimal.Decimal
}

// Aggregate prices each line as quantity times unit price and sums the bill.
// The returned items carry no sale id yet.
func Aggregate(lines []Line) (Bill, error) {
	if len(lines) == 0 {
		return Bill{}, ErrNoLineItems
	}
	bill := Bill{Items: make([]domain.SaleItem, 0, len(lines)), Total: decimal.Zero}
	for i, line := range lines {
		if !line.ItemType.Valid() {
			return Bill{}, lineError(i, "item_type", "must be service or product")
		}
		if line.ItemID == "" {
			return Bill{}, lineError(i, "item_id", "is required")
		}
		if line.Quantity < 1 {
			return Bill{}, lineError(i, "quantity", "must be at least 1")
		}
		if line.UnitPrice.IsNegative() {
			return Bill{}, lineError(i, "unit_price", "must not be negative")
		}
		subtotal := Subtotal(line.Quantity, line.UnitPrice)
		bill.Items = append(bill.Items, domain.SaleItem{
			ItemType:  line.ItemType,
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
		})
		bill.Total = bill.Total.Add(subtotal)
	}
	return bill, nil
}

func Subtotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func lineError(i int, field string, message string) error {
	return &domain.ValidationError{Table: domain.TableSaleItems, Field: fmt.Sprintf("items[%d].%s", i, field), Message: message}
}

// UnknownStaff names the commission bucket for sales without a known staff.
const UnknownStaff = "Unknown"

var hundred = decimal.NewFromInt(100)

// Commission is amount * rate / 100.
func Commission(amount decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// CommissionEntry is one sale joined with its staff member, if any.
type CommissionEntry struct {
	Sale  domain.Sale
	Staff *domain.Staff
}

// AggregateCommissions groups sales by staff display name. Staff sharing a
// name share a row; StaffIDs lists every id merged into that row.
func AggregateCommissions(entries []CommissionEntry) []domain.CommissionRow {
	byName := make(map[string]*domain.CommissionRow)
	for _, e := range entries {
		name := UnknownStaff
		rate := decimal.Zero
		staffID := ""
		if e.Staff != nil {
			if e.Staff.Name != "" {
				name = e.Staff.Name
			}
			rate = e.Staff.CommissionRate
			staffID = e.Staff.ID
		}

		row, ok := byName[name]
		if !ok {
			row = &domain.CommissionRow{StaffName: name, StaffIDs: []string{}, TotalSales: decimal.Zero, TotalCommission: decimal.Zero}
			byName[name] = row
		}
		if staffID != "" && !slices.Contains(row.StaffIDs, staffID) {
			row.StaffIDs = append(row.StaffIDs, staffID)
		}
		row.SaleCount++
		row.TotalSales = row.TotalSales.Add(e.Sale.TotalAmount)
		row.TotalCommission = row.TotalCommission.Add(Commission(e.Sale.TotalAmount, rate))
	}

	rows := make([]domain.CommissionRow, 0, len(byName))
	for _, row := range byName {
		slices.Sort(row.StaffIDs)
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b domain.CommissionRow) int {
		return cmp.Compare(a.StaffName, b.StaffName)
	})
	return rows
}

// JoinStaff pairs each sale with its staff record from roster.
func JoinStaff(sales []domain.Sale, roster []domain.Staff) []CommissionEntry {
	byID := make(map[string]domain.Staff, len(roster))
	for _, s := range roster {
		byID[s.ID] = s
	}
	entries := make([]CommissionEntry, 0, len(sales))
	for _, sale := range sales {
		entry := CommissionEntry{Sale: sale}
		if s, ok := byID[sale.StaffID]; ok {
			entry.Staff = &s
		}
		entries = append(entries, entry)
	}
	return entries
}

// Summarize totals a list of sales. Pending is everything not completed.
func Summarize(sales []domain.Sale) domain.SalesSummary {
	sum := domain.SalesSummary{TotalSales: decimal.Zero, TotalCompleted: decimal.Zero}
	for _, s := range sales {
		sum.TotalSales = sum.TotalSales.Add(s.TotalAmount)
		if s.PaymentStatus == domain.PaymentCompleted {
			sum.TotalCompleted = sum.TotalCompleted.Add(s.TotalAmount)
		}
	}
	sum.SalesCount = len(sales)
	sum.TotalPending = sum.TotalSales.Sub(sum.TotalCompleted)
	return sum
}
