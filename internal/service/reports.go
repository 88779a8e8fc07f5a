package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sudlafakiew/patricia-clinic2025/internal/cache"
	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/facade"
	"github.com/sudlafakiew/patricia-clinic2025/internal/sales"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

// CommissionReport aggregates commissions per staff name for sales created in
// the inclusive day range. An empty status covers every payment status.
func (s *Service) CommissionReport(ctx context.Context, from string, to string, status domain.PaymentStatus) (domain.CommissionReport, error) {
	if status != "" && !status.Valid() {
		return domain.CommissionReport{}, &domain.ValidationError{Table: domain.TableSales, Field: "status", Message: "unknown payment status"}
	}
	r, err := s.dayRange(from, to)
	if err != nil {
		return domain.CommissionReport{}, err
	}
	report := domain.CommissionReport{From: r.From.Format(dayLayout), To: r.To.Format(dayLayout), Status: status}

	logger := log.With().Str("component", "service").Logger()
	key := ""
	if version, err := s.reports.SalesVersion(ctx); err != nil {
		logger.Warn().Err(err).Msg("read sales version failed, skipping report cache")
	} else {
		key = cache.CommissionKey(version, report.From, report.To, status)
		cached, ok, err := s.reports.GetCommissions(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("read cached report failed")
		} else if ok {
			return *cached, nil
		}
	}

	opts := store.Options{Ranges: []store.Range{createdWithin(r)}}
	if status != "" {
		opts.Where = []store.Eq{{Column: "payment_status", Value: string(status)}}
	}

	var (
		rows          []domain.Sale
		roster        []domain.Staff
		salesRes, res facade.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, salesRes, err = facade.Select[domain.Sale](gctx, s.data, opts)
		return err
	})
	g.Go(func() error {
		var err error
		roster, res, err = facade.Select[domain.Staff](gctx, s.data, store.Options{})
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.CommissionReport{}, err
	}

	report.Rows = sales.AggregateCommissions(sales.JoinStaff(rows, roster))
	report.Degraded = salesRes.Degraded || res.Degraded
	if key != "" && !report.Degraded {
		if err := s.reports.SetCommissions(ctx, key, report, s.reportTTL); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("cache report failed")
		}
	}
	return report, nil
}

// Dashboard summarises today and the current month in the clinic timezone.
// Revenue counts completed sales only.
func (s *Service) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	today := s.today()
	monthStart := startOfMonth(today)
	weekStart := today.AddDate(0, 0, -6)
	windowStart := monthStart
	if weekStart.Before(windowStart) {
		windowStart = weekStart
	}

	var (
		recent       []domain.Sale
		customers    []domain.Customer
		appointments []domain.Appointment
		products     []domain.Product
		results      [4]facade.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, results[0], err = facade.Select[domain.Sale](gctx, s.data, store.Options{
			Where:  []store.Eq{{Column: "payment_status", Value: string(domain.PaymentCompleted)}},
			Ranges: []store.Range{{Column: "created_at", From: windowStart, To: endOfDay(today)}},
		})
		return err
	})
	g.Go(func() error {
		var err error
		customers, results[1], err = facade.Select[domain.Customer](gctx, s.data, store.Options{
			Ranges: []store.Range{{Column: "created_at", From: monthStart}},
		})
		return err
	})
	g.Go(func() error {
		var err error
		appointments, results[2], err = facade.Select[domain.Appointment](gctx, s.data, store.Options{
			Where: []store.Eq{{Column: "appointment_date", Value: today.Format(dayLayout)}},
			Order: []store.Order{{Column: "start_time", Ascending: true}},
		})
		return err
	})
	g.Go(func() error {
		var err error
		products, results[3], err = facade.Select[domain.Product](gctx, s.data, byName)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}

	d := domain.Dashboard{
		TodayRevenue:      decimal.Zero,
		MonthRevenue:      decimal.Zero,
		NewCustomersMonth: len(customers),
		TodayAppointments: len(appointments),
		UpcomingToday:     upcoming(appointments),
		LowStockProducts:  lowStock(products),
	}

	daily := make(map[string]decimal.Decimal, 7)
	for _, sale := range recent {
		created := sale.CreatedAt.In(s.loc)
		day := created.Format(dayLayout)
		daily[day] = daily[day].Add(sale.TotalAmount)
		if !created.Before(monthStart) {
			d.MonthRevenue = d.MonthRevenue.Add(sale.TotalAmount)
		}
		if !created.Before(today) {
			d.TodayRevenue = d.TodayRevenue.Add(sale.TotalAmount)
		}
	}
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i).Format(dayLayout)
		d.LastSevenDays = append(d.LastSevenDays, domain.DailyRevenue{Date: day, Total: daily[day]})
	}
	for _, r := range results {
		d.Degraded = d.Degraded || r.Degraded
	}
	return d, nil
}

func upcoming(appointments []domain.Appointment) []domain.Appointment {
	out := make([]domain.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a.Status == domain.AppointmentPending || a.Status == domain.AppointmentConfirmed {
			out = append(out, a)
		}
	}
	return out
}

// SaleFormOptions loads every catalog a sale form picks from.
func (s *Service) SaleFormOptions(ctx context.Context) (domain.SaleFormOptions, error) {
	var (
		opts    domain.SaleFormOptions
		results [4]facade.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opts.Customers, results[0], err = facade.Select[domain.Customer](gctx, s.data, byName)
		return err
	})
	g.Go(func() error {
		var err error
		opts.Staff, results[1], err = facade.Select[domain.Staff](gctx, s.data, byName)
		return err
	})
	g.Go(func() error {
		var err error
		opts.Services, results[2], err = facade.Select[domain.Service](gctx, s.data, byName)
		return err
	})
	g.Go(func() error {
		var err error
		opts.Products, results[3], err = facade.Select[domain.Product](gctx, s.data, byName)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.SaleFormOptions{}, err
	}
	for _, r := range results {
		opts.Degraded = opts.Degraded || r.Degraded
	}
	return opts, nil
}
