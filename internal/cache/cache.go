package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
)

// ReportCache stores computed commission reports. Keys embed a sales version
// that every sale write bumps, so stale reports are never served.
type ReportCache interface {
	GetCommissions(ctx context.Context, key string) (*domain.CommissionReport, bool, error)
	SetCommissions(ctx context.Context, key string, report domain.CommissionReport, ttl time.Duration) error
	SalesVersion(ctx context.Context) (int64, error)
	BumpSalesVersion(ctx context.Context) error
}

// CommissionKey names a cached commission report.
func CommissionKey(version int64, from string, to string, status domain.PaymentStatus) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("report:commissions:v%d:%s:%s:%s", version, from, to, status)
}

type NoopReportCache struct{}

func (NoopReportCache) GetCommissions(context.Context, string) (*domain.CommissionReport, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) SetCommissions(context.Context, string, domain.CommissionReport, time.Duration) error {
	return nil
}

func (NoopReportCache) SalesVersion(context.Context) (int64, error) { return 0, nil }

func (NoopReportCache) BumpSalesVersion(context.Context) error { return nil }
