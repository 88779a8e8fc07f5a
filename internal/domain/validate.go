package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("invalid record")

type ValidationError struct {
	Table   Table  `json:"table,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s.%s %s", e.Table, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func invalid(table Table, field string, message string) error {
	return &ValidationError{Table: table, Field: field, Message: message}
}

var hundred = decimal.NewFromInt(100)

func required(table Table, field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(table, field, "is required")
	}
	return nil
}

func nonNegative(table Table, field string, value decimal.Decimal) error {
	if value.IsNegative() {
		return invalid(table, field, "must not be negative")
	}
	return nil
}

// ValidDate reports whether value is a YYYY-MM-DD calendar date.
func ValidDate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// ValidClock reports whether value is an HH:MM wall-clock time. A trailing
// seconds part is accepted.
func ValidClock(value string) bool {
	if _, err := time.Parse("15:04", value); err == nil {
		return true
	}
	_, err := time.Parse("15:04:05", value)
	return err == nil
}

func (c Customer) Validate() error {
	if err := required(TableCustomers, "name", c.Name); err != nil {
		return err
	}
	if err := required(TableCustomers, "phone", c.Phone); err != nil {
		return err
	}
	if c.Email != nil && !strings.Contains(*c.Email, "@") {
		return invalid(TableCustomers, "email", "must be an email address")
	}
	if c.BirthDate != nil && !ValidDate(*c.BirthDate) {
		return invalid(TableCustomers, "birth_date", "must be YYYY-MM-DD")
	}
	if c.LoyaltyPoints < 0 {
		return invalid(TableCustomers, "loyalty_points", "must not be negative")
	}
	return nonNegative(TableCustomers, "total_spent", c.TotalSpent)
}

func (s Staff) Validate() error {
	if err := required(TableStaff, "name", s.Name); err != nil {
		return err
	}
	if err := required(TableStaff, "position", s.Position); err != nil {
		return err
	}
	if err := required(TableStaff, "phone", s.Phone); err != nil {
		return err
	}
	if s.CommissionRate.IsNegative() || s.CommissionRate.GreaterThan(hundred) {
		return invalid(TableStaff, "commission_rate", "must be between 0 and 100")
	}
	if !s.Role.Valid() {
		return invalid(TableStaff, "role", "must be admin, doctor or staff")
	}
	return nil
}

func (s Service) Validate() error {
	if err := required(TableServices, "name", s.Name); err != nil {
		return err
	}
	if err := nonNegative(TableServices, "price", s.Price); err != nil {
		return err
	}
	if s.DurationMinutes < 1 {
		return invalid(TableServices, "duration_minutes", "must be at least 1")
	}
	return nil
}

func (p Product) Validate() error {
	if err := required(TableProducts, "name", p.Name); err != nil {
		return err
	}
	if err := required(TableProducts, "sku", p.SKU); err != nil {
		return err
	}
	if p.Quantity < 0 {
		return invalid(TableProducts, "quantity", "must not be negative")
	}
	if p.MinQuantity < 0 {
		return invalid(TableProducts, "min_quantity", "must not be negative")
	}
	if err := nonNegative(TableProducts, "cost_price", p.CostPrice); err != nil {
		return err
	}
	return nonNegative(TableProducts, "selling_price", p.SellingPrice)
}

func (a Appointment) Validate() error {
	if err := required(TableAppointments, "customer_id", a.CustomerID); err != nil {
		return err
	}
	if err := required(TableAppointments, "service_id", a.ServiceID); err != nil {
		return err
	}
	if err := required(TableAppointments, "staff_id", a.StaffID); err != nil {
		return err
	}
	if !ValidDate(a.Date) {
		return invalid(TableAppointments, "appointment_date", "must be YYYY-MM-DD")
	}
	if !ValidClock(a.StartTime) {
		return invalid(TableAppointments, "start_time", "must be HH:MM")
	}
	if !ValidClock(a.EndTime) {
		return invalid(TableAppointments, "end_time", "must be HH:MM")
	}
	if !a.Status.Valid() {
		return invalid(TableAppointments, "status", "must be pending, confirmed, cancelled or completed")
	}
	return nil
}

func (s Sale) Validate() error {
	if err := required(TableSales, "customer_id", s.CustomerID); err != nil {
		return err
	}
	if err := required(TableSales, "staff_id", s.StaffID); err != nil {
		return err
	}
	if err := nonNegative(TableSales, "total_amount", s.TotalAmount); err != nil {
		return err
	}
	if !s.PaymentMethod.Valid() {
		return invalid(TableSales, "payment_method", "must be cash, credit_card or transfer")
	}
	if !s.PaymentStatus.Valid() {
		return invalid(TableSales, "payment_status", "must be pending, completed or refunded")
	}
	return nil
}

func (i SaleItem) Validate() error {
	if err := required(TableSaleItems, "sale_id", i.SaleID); err != nil {
		return err
	}
	if !i.ItemType.Valid() {
		return invalid(TableSaleItems, "item_type", "must be service or product")
	}
	if err := required(TableSaleItems, "item_id", i.ItemID); err != nil {
		return err
	}
	if i.Quantity < 1 {
		return invalid(TableSaleItems, "quantity", "must be at least 1")
	}
	if err := nonNegative(TableSaleItems, "unit_price", i.UnitPrice); err != nil {
		return err
	}
	if !i.Subtotal.Equal(i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))) {
		return invalid(TableSaleItems, "subtotal", "must equal quantity times unit_price")
	}
	return nil
}

func (t Treatment) Validate() error {
	if err := required(TableTreatments, "customer_id", t.CustomerID); err != nil {
		return err
	}
	if err := required(TableTreatments, "service_id", t.ServiceID); err != nil {
		return err
	}
	if !ValidDate(t.TreatmentDate) {
		return invalid(TableTreatments, "treatment_date", "must be YYYY-MM-DD")
	}
	return nil
}
