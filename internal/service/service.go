package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sudlafakiew/patricia-clinic2025/internal/cache"
	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/facade"
)

var ErrForbidden = errors.New("admin role required")

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

func requireAdmin(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// Listing is a read result with the data source flag the HTTP layer exposes.
type Listing[T any] struct {
	Items    []T    `json:"items"`
	Source   string `json:"-"`
	Degraded bool   `json:"degraded"`
}

func listing[T any](items []T, res facade.Result) Listing[T] {
	if items == nil {
		items = []T{}
	}
	return Listing[T]{Items: items, Source: res.Source, Degraded: res.Degraded}
}

type Service struct {
	data      *facade.Facade
	reports   cache.ReportCache
	reportTTL time.Duration
	loc       *time.Location
	now       func() time.Time
}

type Option func(*Service)

func WithReportCache(c cache.ReportCache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.reports = c
		}
		if ttl > 0 {
			s.reportTTL = ttl
		}
	}
}

// WithLocation sets the clinic timezone used for calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(data *facade.Facade, opts ...Option) *Service {
	s := &Service{
		data:      data,
		reports:   cache.NoopReportCache{},
		reportTTL: 5 * time.Minute,
		loc:       time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Health(ctx context.Context) (facade.Health, error) {
	return s.data.Health(ctx)
}

func (s *Service) Remote() bool { return s.data.Remote() }

func (s *Service) today() time.Time {
	return startOfDay(s.now().In(s.loc))
}

// salesChanged invalidates cached reports. A cache failure only costs a stale
// report until the TTL expires.
func (s *Service) salesChanged(ctx context.Context) {
	if err := s.reports.BumpSalesVersion(ctx); err != nil {
		log.Warn().Str("component", "service").Err(err).Msg("bump sales version failed")
	}
}
