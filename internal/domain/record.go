package domain

import "fmt"

type Table string

const (
	TableCustomers    Table = "customers"
	TableStaff        Table = "staff"
	TableServices     Table = "services"
	TableProducts     Table = "products"
	TableAppointments Table = "appointments"
	TableSales        Table = "sales"
	TableSaleItems    Table = "sale_items"
	TableTreatments   Table = "treatments"
)

var Tables = []Table{
	TableCustomers,
	TableStaff,
	TableServices,
	TableProducts,
	TableAppointments,
	TableSales,
	TableSaleItems,
	TableTreatments,
}

var metaColumns = []string{"id", "created_at", "updated_at"}

var tableColumns = map[Table][]string{
	TableCustomers:    {"name", "phone", "email", "birth_date", "address", "notes", "loyalty_points", "total_spent"},
	TableStaff:        {"user_id", "name", "position", "phone", "email", "commission_rate", "role"},
	TableServices:     {"name", "description", "price", "duration_minutes", "category", "is_package"},
	TableProducts:     {"name", "sku", "quantity", "min_quantity", "cost_price", "selling_price", "category"},
	TableAppointments: {"customer_id", "service_id", "staff_id", "appointment_date", "start_time", "end_time", "status", "notes"},
	TableSales:        {"customer_id", "staff_id", "total_amount", "payment_method", "payment_status", "notes"},
	TableSaleItems:    {"sale_id", "item_type", "item_id", "quantity", "unit_price", "subtotal"},
	TableTreatments:   {"customer_id", "service_id", "staff_id", "treatment_date", "notes", "before_image_url", "after_image_url"},
}

// Columns lists every stored column of a table, identity columns first.
func Columns(table Table) ([]string, bool) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(metaColumns)+len(cols))
	out = append(out, metaColumns...)
	return append(out, cols...), true
}

// HasColumn reports whether column belongs to table.
func HasColumn(table Table, column string) bool {
	cols, ok := Columns(table)
	if !ok {
		return false
	}
	for _, c := range cols {
		if c == column {
			return true
		}
	}
	return false
}

// Record is a typed row of one table.
type Record interface {
	Table() Table
	RecordID() string
	Metadata() Meta
	WithMeta(meta Meta) Record
	// Field returns the stored value of a column. Nullable columns yield nil.
	Field(column string) (any, bool)
	Validate() error
	Clone() Record
}

// Patch is a typed partial update for one table.
type Patch interface {
	Table() Table
	// Apply merges the patch into a copy of rec and validates the result.
	Apply(rec Record) (Record, error)
}

// NewRecord returns an empty record for the table.
func NewRecord(table Table) (Record, error) {
	switch table {
	case TableCustomers:
		return Customer{}, nil
	case TableStaff:
		return Staff{}, nil
	case TableServices:
		return Service{}, nil
	case TableProducts:
		return Product{}, nil
	case TableAppointments:
		return Appointment{}, nil
	case TableSales:
		return Sale{}, nil
	case TableSaleItems:
		return SaleItem{}, nil
	case TableTreatments:
		return Treatment{}, nil
	}
	return nil, fmt.Errorf("unknown table %q", table)
}

func metaField(m Meta, column string) (any, bool) {
	switch column {
	case "id":
		return m.ID, true
	case "created_at":
		return m.CreatedAt, true
	case "updated_at":
		return m.UpdatedAt, true
	}
	return nil, false
}

func optional(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (c Customer) Table() Table { return TableCustomers }
func (c Customer) WithMeta(meta Meta) Record {
	c.Meta = meta
	return c
}

func (c Customer) Field(column string) (any, bool) {
	switch column {
	case "name":
		return c.Name, true
	case "phone":
		return c.Phone, true
	case "email":
		return optional(c.Email), true
	case "birth_date":
		return optional(c.BirthDate), true
	case "address":
		return optional(c.Address), true
	case "notes":
		return optional(c.Notes), true
	case "loyalty_points":
		return c.LoyaltyPoints, true
	case "total_spent":
		return c.TotalSpent, true
	}
	return metaField(c.Meta, column)
}

func (c Customer) Clone() Record {
	c.Email = cloneString(c.Email)
	c.BirthDate = cloneString(c.BirthDate)
	c.Address = cloneString(c.Address)
	c.Notes = cloneString(c.Notes)
	return c
}

func (s Staff) Table() Table { return TableStaff }
func (s Staff) WithMeta(meta Meta) Record {
	s.Meta = meta
	return s
}

func (s Staff) Field(column string) (any, bool) {
	switch column {
	case "user_id":
		return optional(s.UserID), true
	case "name":
		return s.Name, true
	case "position":
		return s.Position, true
	case "phone":
		return s.Phone, true
	case "email":
		return optional(s.Email), true
	case "commission_rate":
		return s.CommissionRate, true
	case "role":
		return string(s.Role), true
	}
	return metaField(s.Meta, column)
}

func (s Staff) Clone() Record {
	s.UserID = cloneString(s.UserID)
	s.Email = cloneString(s.Email)
	return s
}

func (s Service) Table() Table { return TableServices }
func (s Service) WithMeta(meta Meta) Record {
	s.Meta = meta
	return s
}

func (s Service) Field(column string) (any, bool) {
	switch column {
	case "name":
		return s.Name, true
	case "description":
		return optional(s.Description), true
	case "price":
		return s.Price, true
	case "duration_minutes":
		return s.DurationMinutes, true
	case "category":
		return optional(s.Category), true
	case "is_package":
		return s.IsPackage, true
	}
	return metaField(s.Meta, column)
}

func (s Service) Clone() Record {
	s.Description = cloneString(s.Description)
	s.Category = cloneString(s.Category)
	return s
}

func (p Product) Table() Table { return TableProducts }
func (p Product) WithMeta(meta Meta) Record {
	p.Meta = meta
	return p
}

func (p Product) Field(column string) (any, bool) {
	switch column {
	case "name":
		return p.Name, true
	case "sku":
		return p.SKU, true
	case "quantity":
		return p.Quantity, true
	case "min_quantity":
		return p.MinQuantity, true
	case "cost_price":
		return p.CostPrice, true
	case "selling_price":
		return p.SellingPrice, true
	case "category":
		return optional(p.Category), true
	}
	return metaField(p.Meta, column)
}

func (p Product) Clone() Record {
	p.Category = cloneString(p.Category)
	return p
}

func (a Appointment) Table() Table { return TableAppointments }
func (a Appointment) WithMeta(meta Meta) Record {
	a.Meta = meta
	return a
}

func (a Appointment) Field(column string) (any, bool) {
	switch column {
	case "customer_id":
		return a.CustomerID, true
	case "service_id":
		return a.ServiceID, true
	case "staff_id":
		return a.StaffID, true
	case "appointment_date":
		return a.Date, true
	case "start_time":
		return a.StartTime, true
	case "end_time":
		return a.EndTime, true
	case "status":
		return string(a.Status), true
	case "notes":
		return optional(a.Notes), true
	}
	return metaField(a.Meta, column)
}

func (a Appointment) Clone() Record {
	a.Notes = cloneString(a.Notes)
	return a
}

func (s Sale) Table() Table { return TableSales }
func (s Sale) WithMeta(meta Meta) Record {
	s.Meta = meta
	return s
}

func (s Sale) Field(column string) (any, bool) {
	switch column {
	case "customer_id":
		return s.CustomerID, true
	case "staff_id":
		return s.StaffID, true
	case "total_amount":
		return s.TotalAmount, true
	case "payment_method":
		return string(s.PaymentMethod), true
	case "payment_status":
		return string(s.PaymentStatus), true
	case "notes":
		return optional(s.Notes), true
	}
	return metaField(s.Meta, column)
}

func (s Sale) Clone() Record {
	s.Notes = cloneString(s.Notes)
	return s
}

func (i SaleItem) Table() Table { return TableSaleItems }
func (i SaleItem) WithMeta(meta Meta) Record {
	i.Meta = meta
	return i
}

func (i SaleItem) Field(column string) (any, bool) {
	switch column {
	case "sale_id":
		return i.SaleID, true
	case "item_type":
		return string(i.ItemType), true
	case "item_id":
		return i.ItemID, true
	case "quantity":
		return i.Quantity, true
	case "unit_price":
		return i.UnitPrice, true
	case "subtotal":
		return i.Subtotal, true
	}
	return metaField(i.Meta, column)
}

func (i SaleItem) Clone() Record { return i }

func (t Treatment) Table() Table { return TableTreatments }
func (t Treatment) WithMeta(meta Meta) Record {
	t.Meta = meta
	return t
}

func (t Treatment) Field(column string) (any, bool) {
	switch column {
	case "customer_id":
		return t.CustomerID, true
	case "service_id":
		return t.ServiceID, true
	case "staff_id":
		return optional(t.StaffID), true
	case "treatment_date":
		return t.TreatmentDate, true
	case "notes":
		return optional(t.Notes), true
	case "before_image_url":
		return optional(t.BeforeImageURL), true
	case "after_image_url":
		return optional(t.AfterImageURL), true
	}
	return metaField(t.Meta, column)
}

func (t Treatment) Clone() Record {
	t.StaffID = cloneString(t.StaffID)
	t.Notes = cloneString(t.Notes)
	t.BeforeImageURL = cloneString(t.BeforeImageURL)
	t.AfterImageURL = cloneString(t.AfterImageURL)
	return t
}
