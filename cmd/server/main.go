package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sudlafakiew/patricia-clinic2025/internal/cache"
	"github.com/sudlafakiew/patricia-clinic2025/internal/config"
	"github.com/sudlafakiew/patricia-clinic2025/internal/facade"
	"github.com/sudlafakiew/patricia-clinic2025/internal/httpapi"
	"github.com/sudlafakiew/patricia-clinic2025/internal/service"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store/memory"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store/sqlstore"
)

const (
	sourceRemote = "remote"
	sourceMemory = "memory"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	if err := validateSecurityConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	policy, _ := facade.ParseWritePolicy(cfg.WriteFailurePolicy)
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	closers := make([]func() error, 0, 2)
	mock := memory.NewSeeded()

	var (
		data  *facade.Facade
		users store.UserStore
	)
	if cfg.DataSource == sourceRemote {
		remote, err := openRemote(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		closers = append(closers, remote.Close)

		remoteUsers := facade.NewUsers(remote, mock)
		seedCtx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		if n, err := remoteUsers.SeedUsers(seedCtx); err != nil {
			log.Warn().Err(err).Msg("could not seed login users")
		} else if n > 0 {
			log.Info().Int("users", n).Msg("seeded login users into empty database")
		}
		cancel()

		data = facade.New(remote, mock, facade.WithWritePolicy(policy))
		users = remoteUsers
		log.Info().Str("driver", cfg.DatabaseDriver).Str("write_policy", string(policy)).Msg("data source: remote with mock fallback")
	} else {
		data = facade.New(mock, nil)
		users = mock
		log.Info().Msg("data source: mock dataset")
	}

	reportCache := cache.ReportCache(cache.NoopReportCache{})
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisReportCache(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("invalid REDIS_URL, using noop cache")
		} else {
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := redisCache.Ping(pingCtx)
			cancel()
			if err != nil {
				log.Warn().Err(err).Msg("redis unavailable, using noop cache")
				_ = redisCache.Close()
			} else {
				reportCache = redisCache
				closers = append(closers, redisCache.Close)
				log.Info().Msg("cache: redis")
			}
		}
	} else {
		log.Info().Msg("cache: noop")
	}

	svc := service.New(data,
		service.WithReportCache(reportCache, cfg.ReportCacheTTL()),
		service.WithLocation(loc),
	)
	auth := httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL(), users)
	api := httpapi.New(svc, auth, cfg.AllowedOrigin)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Msg("clinic backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}

func setupLogging(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// openRemote runs migrations when asked and opens the SQL store. An
// unreachable database is logged, not fatal: reads fall back to mock data.
func openRemote(cfg config.Config) (*sqlstore.Store, error) {
	if cfg.RunMigrations {
		if err := sqlstore.Migrate(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
			log.Error().Err(err).Msg("migrations failed")
		}
	}

	remote, err := sqlstore.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer cancel()
	if err := remote.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("database unreachable at startup, reads will use mock data")
	}
	return remote, nil
}

func validateSecurityConfig(cfg config.Config) error {
	if len(cfg.AuthSecret) < 32 {
		return fmt.Errorf("AUTH_SECRET must be set and at least 32 characters")
	}
	if _, err := facade.ParseWritePolicy(cfg.WriteFailurePolicy); err != nil {
		return err
	}
	switch cfg.DataSource {
	case sourceMemory:
		return nil
	case sourceRemote:
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", sourceRemote, sourceMemory, cfg.DataSource)
	}
	if cfg.DatabaseDriver != sqlstore.DriverPostgres && cfg.DatabaseDriver != sqlstore.DriverSQLite {
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", sqlstore.DriverPostgres, sqlstore.DriverSQLite, cfg.DatabaseDriver)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=%s", sourceRemote)
	}
	return nil
}
