package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Patch fields are nil when unchanged. For nullable text columns an empty
// string clears the value.

type CustomerPatch struct {
	Name          *string          `json:"name,omitempty"`
	Phone         *string          `json:"phone,omitempty"`
	Email         *string          `json:"email,omitempty"`
	BirthDate     *string          `json:"birth_date,omitempty"`
	Address       *string          `json:"address,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
	LoyaltyPoints *int             `json:"loyalty_points,omitempty"`
	TotalSpent    *decimal.Decimal `json:"total_spent,omitempty"`
}

type StaffPatch struct {
	UserID         *string          `json:"user_id,omitempty"`
	Name           *string          `json:"name,omitempty"`
	Position       *string          `json:"position,omitempty"`
	Phone          *string          `json:"phone,omitempty"`
	Email          *string          `json:"email,omitempty"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
	Role           *Role            `json:"role,omitempty"`
}

type ServicePatch struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	DurationMinutes *int             `json:"duration_minutes,omitempty"`
	Category        *string          `json:"category,omitempty"`
	IsPackage       *bool            `json:"is_package,omitempty"`
}

type ProductPatch struct {
	Name         *string          `json:"name,omitempty"`
	SKU          *string          `json:"sku,omitempty"`
	Quantity     *int             `json:"quantity,omitempty"`
	MinQuantity  *int             `json:"min_quantity,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	Category     *string          `json:"category,omitempty"`
}

type AppointmentPatch struct {
	CustomerID *string            `json:"customer_id,omitempty"`
	ServiceID  *string            `json:"service_id,omitempty"`
	StaffID    *string            `json:"staff_id,omitempty"`
	Date       *string            `json:"appointment_date,omitempty"`
	StartTime  *string            `json:"start_time,omitempty"`
	EndTime    *string            `json:"end_time,omitempty"`
	Status     *AppointmentStatus `json:"status,omitempty"`
	Notes      *string            `json:"notes,omitempty"`
}

type TreatmentPatch struct {
	ServiceID      *string `json:"service_id,omitempty"`
	StaffID        *string `json:"staff_id,omitempty"`
	TreatmentDate  *string `json:"treatment_date,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	BeforeImageURL *string `json:"before_image_url,omitempty"`
	AfterImageURL  *string `json:"after_image_url,omitempty"`
}

func wrongRecord(p Patch, rec Record) error {
	return fmt.Errorf("%w: %s patch applied to %T", ErrInvalid, p.Table(), rec)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setNullable(dst **string, src *string) {
	if src == nil {
		return
	}
	if *src == "" {
		*dst = nil
		return
	}
	v := *src
	*dst = &v
}

func (p CustomerPatch) Table() Table { return TableCustomers }

func (p CustomerPatch) Apply(rec Record) (Record, error) {
	c, ok := rec.Clone().(Customer)
	if !ok {
		return nil, wrongRecord(p, rec)
	}
	set(&c.Name, p.Name)
	set(&c.Phone, p.Phone)
	setNullable(&c.Email, p.Email)
	setNullable(&c.BirthDate, p.BirthDate)
	setNullable(&c.Address, p.Address)
	setNullable(&c.Notes, p.Notes)
	set(&c.LoyaltyPoints, p.LoyaltyPoints)
	set(&c.TotalSpent, p.TotalSpent)
	return c, c.Validate()
}

func (p StaffPatch) Table() Table { return TableStaff }

func (p StaffPatch) Apply(rec Record) (Record, error) {
	s, ok := rec.Clone().(Staff)
	if !ok {
		return nil, wrongRecord(p, rec)
	}
	setNullable(&s.UserID, p.UserID)
	set(&s.Name, p.Name)
	set(&s.Position, p.Position)
	set(&s.Phone, p.Phone)
	setNullable(&s.Email, p.Email)
	set(&s.CommissionRate, p.CommissionRate)
	set(&s.Role, p.Role)
	return s, s.Validate()
}

func (p ServicePatch) Table() Table { return TableServices }

func (p ServicePatch) Apply(rec Record) (Record, error) {
	s, ok := rec.Clone().(Service)
	if !ok {
		return nil, wrongRecord(p, rec)
	}
	set(&s.Name, p.Name)
	setNullable(&s.Description, p.Description)
	set(&s.Price, p.Price)
	set(&s.DurationMinutes, p.DurationMinutes)
	setNullable(&s.Category, p.Category)
	set(&s.IsPackage, p.IsPackage)
	return s, s.Validate()
}

func (p ProductPatch) Table() Table { return TableProducts }

func (p ProductPatch) Apply(rec Record) (Record, error) {
	pr, ok := rec.Clone().(Product)
	if !ok {
		return nil, wrongRecord(p, rec)
	}
	set(&pr.Name, p.Name)
	set(&pr.SKU, p.SKU)
	set(&pr.Quantity, p.Quantity)
	set(&pr.MinQuantity, p.MinQuantity)
	set(&pr.CostPrice, p.CostPrice)
	set(&pr.SellingPrice, p.SellingPrice)
	setNullable(&pr.Category, p.Category)
	return pr, pr.Validate()
}

func (p AppointmentPatch) Table() Table { return TableAppointments }

func (p AppointmentPatch) Apply(rec Record) (Record, error) {
	a, ok := rec.Clone().(Appointment)
	if !ok {
		return nil, wrongRecord(p, rec)
	}
	set(&a.CustomerID, p.CustomerID)
	set(&a.ServiceID, p.ServiceID)
	set(&a.StaffID, p.StaffID)
	set(&a.Date, p.Date)
	set(&a.StartTime, p.StartTime)
	set(&a.EndTime, p.EndTime)
	set(&a.Status, p.Status)
	setNullable(&a.Notes, p.Notes)
	return a, a.Validate()
}

func (p TreatmentPatch) Table() Table { return TableTreatments }

func (p TreatmentPatch) Apply(rec Record) (Record, error) {
	t, ok := rec.Clone().(Treatment)
	if !ok {
		return nil, wrongRecord(p, rec)
	}
	set(&t.ServiceID, p.ServiceID)
	setNullable(&t.StaffID, p.StaffID)
	set(&t.TreatmentDate, p.TreatmentDate)
	setNullable(&t.Notes, p.Notes)
	setNullable(&t.BeforeImageURL, p.BeforeImageURL)
	setNullable(&t.AfterImageURL, p.AfterImageURL)
	return t, t.Validate()
}
