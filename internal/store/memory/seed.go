package memory

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/xid"
)

// NewSeeded returns a store holding the sample clinic dataset. Timestamps are
// relative to construction time.
func NewSeeded() *Store {
	s := New()
	now := s.now()
	for table, rows := range seedRows(now) {
		s.tables[table] = rows
	}
	s.users = seedUsers(now)
	return s
}

func seedRows(now time.Time) map[domain.Table][]domain.Record {
	daysAgo := func(n int) domain.Meta {
		at := now.AddDate(0, 0, -n)
		return domain.Meta{ID: xid.New(), CreatedAt: at, UpdatedAt: at}
	}
	text := func(v string) *string { return &v }

	somchai := domain.Customer{
		Meta:          daysAgo(30),
		Name:          "Somchai Jaidee",
		Phone:         "081-234-5678",
		Email:         text("somchai@example.com"),
		BirthDate:     text("1985-05-15"),
		Address:       text("123 Sukhumvit Rd, Bangkok"),
		LoyaltyPoints: 150,
		TotalSpent:    decimal.NewFromInt(15000),
	}
	malee := domain.Customer{
		Meta:          daysAgo(60),
		Name:          "Malee Srisuk",
		Phone:         "089-876-5432",
		Email:         text("malee@example.com"),
		BirthDate:     text("1990-08-20"),
		Notes:         text("Sensitive skin"),
		LoyaltyPoints: 80,
		TotalSpent:    decimal.NewFromInt(8000),
	}

	doctor := domain.Staff{
		Meta:           daysAgo(90),
		Name:           "Dr. Pimchanok Wong",
		Position:       "Dermatologist",
		Phone:          "082-111-2222",
		Email:          text("pimchanok@example.com"),
		CommissionRate: decimal.NewFromInt(10),
		Role:           domain.RoleDoctor,
	}
	therapist := domain.Staff{
		Meta:           daysAgo(120),
		Name:           "Nok Rattana",
		Position:       "Beauty Therapist",
		Phone:          "083-333-4444",
		CommissionRate: decimal.NewFromInt(5),
		Role:           domain.RoleStaff,
	}

	facial := domain.Service{
		Meta:            daysAgo(90),
		Name:            "Deep Cleansing Facial",
		Description:     text("Cleansing and hydrating facial treatment"),
		Price:           decimal.NewFromInt(1500),
		DurationMinutes: 60,
		Category:        text("Facial"),
	}
	laser := domain.Service{
		Meta:            daysAgo(90),
		Name:            "Laser Rejuvenation Package",
		Description:     text("Five laser sessions"),
		Price:           decimal.NewFromInt(12000),
		DurationMinutes: 45,
		Category:        text("Laser"),
		IsPackage:       true,
	}

	serum := domain.Product{
		Meta:         daysAgo(60),
		Name:         "Vitamin C Serum",
		SKU:          "SER-001",
		Quantity:     25,
		MinQuantity:  10,
		CostPrice:    decimal.NewFromInt(450),
		SellingPrice: decimal.NewFromInt(890),
		Category:     text("Skincare"),
	}
	sunscreen := domain.Product{
		Meta:         daysAgo(60),
		Name:         "Sunscreen SPF50",
		SKU:          "SUN-050",
		Quantity:     5,
		MinQuantity:  10,
		CostPrice:    decimal.NewFromInt(300),
		SellingPrice: decimal.NewFromInt(650),
		Category:     text("Skincare"),
	}

	booked := now.AddDate(0, 0, 2)
	appointment := domain.Appointment{
		Meta:       daysAgo(1),
		CustomerID: somchai.ID,
		ServiceID:  facial.ID,
		StaffID:    doctor.ID,
		Date:       booked.Format("2006-01-02"),
		StartTime:  "10:00",
		EndTime:    "11:00",
		Status:     domain.AppointmentConfirmed,
	}

	sale := domain.Sale{
		Meta:          daysAgo(5),
		CustomerID:    malee.ID,
		StaffID:       doctor.ID,
		TotalAmount:   decimal.NewFromInt(2390),
		PaymentMethod: domain.PaymentCreditCard,
		PaymentStatus: domain.PaymentCompleted,
	}
	facialLine := domain.SaleItem{
		Meta:      daysAgo(5),
		SaleID:    sale.ID,
		ItemType:  domain.ItemService,
		ItemID:    facial.ID,
		Quantity:  1,
		UnitPrice: facial.Price,
		Subtotal:  facial.Price,
	}
	serumLine := domain.SaleItem{
		Meta:      daysAgo(5),
		SaleID:    sale.ID,
		ItemType:  domain.ItemProduct,
		ItemID:    serum.ID,
		Quantity:  1,
		UnitPrice: serum.SellingPrice,
		Subtotal:  serum.SellingPrice,
	}

	treatment := domain.Treatment{
		Meta:          daysAgo(10),
		CustomerID:    malee.ID,
		ServiceID:     facial.ID,
		StaffID:       text(doctor.ID),
		TreatmentDate: now.AddDate(0, 0, -10).Format("2006-01-02"),
		Notes:         text("Mild redness after treatment"),
	}

	return map[domain.Table][]domain.Record{
		domain.TableCustomers:    {somchai, malee},
		domain.TableStaff:        {doctor, therapist},
		domain.TableServices:     {facial, laser},
		domain.TableProducts:     {serum, sunscreen},
		domain.TableAppointments: {appointment},
		domain.TableSales:        {sale},
		domain.TableSaleItems:    {facialLine, serumLine},
		domain.TableTreatments:   {treatment},
	}
}

// seedUsers builds the login accounts for dev and demo mode. Passwords come
// from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD; unset values fall back to
// dev defaults with a warning.
func seedUsers(now time.Time) map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Warn().Str("component", "memory-store").Msg("using default dev credentials; set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override")
	}

	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		email    string
		name     string
		password string
		role     domain.Role
	}{
		{"admin@patricia.clinic", "Clinic Admin", adminPwd, domain.RoleAdmin},
		{"staff@patricia.clinic", "Front Desk", staffPwd, domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Str("component", "memory-store").Str("email", u.email).Msg("failed to hash seed password")
		}
		users[u.email] = domain.UserAccount{
			Email:        u.email,
			PasswordHash: string(hash),
			Name:         u.name,
			Role:         u.role,
			Active:       true,
			CreatedAt:    now,
		}
	}
	return users
}

func envOr(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
