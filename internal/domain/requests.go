package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type UserCreateRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
	Name     string `json:"name" validate:"required"`
	Role     Role   `json:"role" validate:"oneof=admin doctor staff"`
}

type SaleLineRequest struct {
	ItemType  ItemType         `json:"item_type" validate:"oneof=service product"`
	ItemID    string           `json:"item_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type SaleRequest struct {
	CustomerID    string            `json:"customer_id" validate:"required"`
	StaffID       string            `json:"staff_id" validate:"required"`
	PaymentMethod PaymentMethod     `json:"payment_method" validate:"oneof=cash credit_card transfer"`
	PaymentStatus PaymentStatus     `json:"payment_status" validate:"omitempty,oneof=pending completed refunded"`
	Notes         *string           `json:"notes,omitempty"`
	Items         []SaleLineRequest `json:"items" validate:"dive"`
}

type SaleDetail struct {
	Sale  Sale       `json:"sale"`
	Items []SaleItem `json:"items"`
}

type AppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status"`
}

// DateRange is an inclusive range of calendar days in the clinic timezone.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type CommissionRow struct {
	StaffName       string          `json:"staff_name"`
	StaffIDs        []string        `json:"staff_ids"`
	SaleCount       int             `json:"sale_count"`
	TotalSales      decimal.Decimal `json:"total_sales"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

type CommissionReport struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Status   PaymentStatus   `json:"status,omitempty"`
	Rows     []CommissionRow `json:"rows"`
	Degraded bool            `json:"degraded"`
}

type SalesSummary struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalCompleted decimal.Decimal `json:"total_completed"`
	TotalPending   decimal.Decimal `json:"total_pending"`
	SalesCount     int             `json:"sales_count"`
}

type SalesList struct {
	Sales    []Sale       `json:"sales"`
	Summary  SalesSummary `json:"summary"`
	Degraded bool         `json:"degraded"`
}

type DailyRevenue struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type Dashboard struct {
	TodayRevenue      decimal.Decimal `json:"today_revenue"`
	MonthRevenue      decimal.Decimal `json:"month_revenue"`
	NewCustomersMonth int             `json:"new_customers_month"`
	TodayAppointments int             `json:"today_appointments"`
	LastSevenDays     []DailyRevenue  `json:"last_seven_days"`
	UpcomingToday     []Appointment   `json:"upcoming_today"`
	LowStockProducts  []Product       `json:"low_stock_products"`
	Degraded          bool            `json:"degraded"`
}

type SaleFormOptions struct {
	Customers []Customer `json:"customers"`
	Staff     []Staff    `json:"staff"`
	Services  []Service  `json:"services"`
	Products  []Product  `json:"products"`
	Degraded  bool       `json:"degraded"`
}

type CustomerHistory struct {
	Customer   Customer    `json:"customer"`
	Sales      []Sale      `json:"sales"`
	Treatments []Treatment `json:"treatments"`
	Degraded   bool        `json:"degraded"`
}
