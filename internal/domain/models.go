package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Meta holds the identity and timestamps shared by every stored record.
type Meta struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (m Meta) RecordID() string { return m.ID }

func (m Meta) Metadata() Meta { return m }

type Customer struct {
	Meta
	Name          string          `db:"name" json:"name"`
	Phone         string          `db:"phone" json:"phone"`
	Email         *string         `db:"email" json:"email,omitempty"`
	BirthDate     *string         `db:"birth_date" json:"birth_date,omitempty"`
	Address       *string         `db:"address" json:"address,omitempty"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
	LoyaltyPoints int             `db:"loyalty_points" json:"loyalty_points"`
	TotalSpent    decimal.Decimal `db:"total_spent" json:"total_spent"`
}

type Staff struct {
	Meta
	UserID         *string         `db:"user_id" json:"user_id,omitempty"`
	Name           string          `db:"name" json:"name"`
	Position       string          `db:"position" json:"position"`
	Phone          string          `db:"phone" json:"phone"`
	Email          *string         `db:"email" json:"email,omitempty"`
	CommissionRate decimal.Decimal `db:"commission_rate" json:"commission_rate"`
	Role           Role            `db:"role" json:"role"`
}

type Service struct {
	Meta
	Name            string          `db:"name" json:"name"`
	Description     *string         `db:"description" json:"description,omitempty"`
	Price           decimal.Decimal `db:"price" json:"price"`
	DurationMinutes int             `db:"duration_minutes" json:"duration_minutes"`
	Category        *string         `db:"category" json:"category,omitempty"`
	IsPackage       bool            `db:"is_package" json:"is_package"`
}

type Product struct {
	Meta
	Name         string          `db:"name" json:"name"`
	SKU          string          `db:"sku" json:"sku"`
	Quantity     int             `db:"quantity" json:"quantity"`
	MinQuantity  int             `db:"min_quantity" json:"min_quantity"`
	CostPrice    decimal.Decimal `db:"cost_price" json:"cost_price"`
	SellingPrice decimal.Decimal `db:"selling_price" json:"selling_price"`
	Category     *string         `db:"category" json:"category,omitempty"`
}

// LowStock reports whether on-hand quantity has reached the minimum threshold.
// The boundary is inclusive.
func (p Product) LowStock() bool {
	return p.Quantity <= p.MinQuantity
}

type Appointment struct {
	Meta
	CustomerID string            `db:"customer_id" json:"customer_id"`
	ServiceID  string            `db:"service_id" json:"service_id"`
	StaffID    string            `db:"staff_id" json:"staff_id"`
	Date       string            `db:"appointment_date" json:"appointment_date"`
	StartTime  string            `db:"start_time" json:"start_time"`
	EndTime    string            `db:"end_time" json:"end_time"`
	Status     AppointmentStatus `db:"status" json:"status"`
	Notes      *string           `db:"notes" json:"notes,omitempty"`
}

type Sale struct {
	Meta
	CustomerID    string          `db:"customer_id" json:"customer_id"`
	StaffID       string          `db:"staff_id" json:"staff_id"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentMethod PaymentMethod   `db:"payment_method" json:"payment_method"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"payment_status"`
	Notes         *string         `db:"notes" json:"notes,omitempty"`
}

type SaleItem struct {
	Meta
	SaleID    string          `db:"sale_id" json:"sale_id"`
	ItemType  ItemType        `db:"item_type" json:"item_type"`
	ItemID    string          `db:"item_id" json:"item_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
}

type Treatment struct {
	Meta
	CustomerID     string  `db:"customer_id" json:"customer_id"`
	ServiceID      string  `db:"service_id" json:"service_id"`
	StaffID        *string `db:"staff_id" json:"staff_id,omitempty"`
	TreatmentDate  string  `db:"treatment_date" json:"treatment_date"`
	Notes          *string `db:"notes" json:"notes,omitempty"`
	BeforeImageURL *string `db:"before_image_url" json:"before_image_url,omitempty"`
	AfterImageURL  *string `db:"after_image_url" json:"after_image_url,omitempty"`
}

type UserAccount struct {
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         Role      `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Actor struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}
