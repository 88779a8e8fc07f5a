// Package facade routes table operations to the configured data source and
// degrades failed reads to the Mock Dataset.
package facade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

type Operation string

const (
	OpSelect Operation = "select"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// WritePolicy decides what happens when a write to the primary source fails.
// It applies to every table alike.
type WritePolicy string

const (
	// SurfaceWrites reports failed writes to the caller.
	SurfaceWrites WritePolicy = "surface"
	// MirrorWrites applies failed writes to the fallback store instead and
	// marks the result degraded.
	MirrorWrites WritePolicy = "mirror"
)

func ParseWritePolicy(raw string) (WritePolicy, error) {
	switch p := WritePolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return SurfaceWrites, nil
	case SurfaceWrites, MirrorWrites:
		return p, nil
	}
	return "", fmt.Errorf("unknown write failure policy %q", raw)
}

type Request struct {
	Table   domain.Table
	Op      Operation
	Rows    []domain.Record
	Patch   domain.Patch
	Eq      store.Eq
	Options store.Options
}

type Result struct {
	Rows     []domain.Record
	Affected int
	Source   string
	Degraded bool
}

type Facade struct {
	primary  store.DataSource
	fallback store.DataSource
	policy   WritePolicy
}

type Option func(*Facade)

func WithWritePolicy(p WritePolicy) Option {
	return func(f *Facade) {
		if p != "" {
			f.policy = p
		}
	}
}

// New wires a primary source and an optional fallback. A nil fallback
// disables degraded reads, which is the standalone in-memory mode.
func New(primary store.DataSource, fallback store.DataSource, opts ...Option) *Facade {
	f := &Facade{primary: primary, fallback: fallback, policy: SurfaceWrites}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Remote reports whether a remote data source is configured.
func (f *Facade) Remote() bool { return f.fallback != nil }

func (f *Facade) Policy() WritePolicy { return f.policy }

func (f *Facade) Perform(ctx context.Context, req Request) (Result, error) {
	if req.Op == OpSelect {
		return f.read(ctx, req)
	}
	return f.write(ctx, req, func(src store.DataSource) (Result, error) {
		return apply(ctx, src, req)
	})
}

func (f *Facade) read(ctx context.Context, req Request) (Result, error) {
	rows, err := f.primary.Select(ctx, req.Table, req.Options)
	if err == nil {
		return Result{Rows: rows, Affected: len(rows), Source: f.primary.Name()}, nil
	}
	if f.fallback == nil {
		return Result{}, err
	}

	log.Warn().
		Str("component", "facade").
		Str("table", string(req.Table)).
		Err(err).
		Msg("remote select failed, serving mock data")

	rows, fbErr := f.fallback.Select(ctx, req.Table, req.Options)
	if fbErr != nil {
		return Result{}, errors.Join(err, fbErr)
	}
	return Result{Rows: rows, Affected: len(rows), Source: f.fallback.Name(), Degraded: true}, nil
}

func (f *Facade) write(ctx context.Context, req Request, do func(store.DataSource) (Result, error)) (Result, error) {
	res, err := do(f.primary)
	if err == nil {
		res.Source = f.primary.Name()
		return res, nil
	}
	if f.fallback == nil || f.policy != MirrorWrites || callerError(err) {
		return Result{}, err
	}

	log.Warn().
		Str("component", "facade").
		Str("table", string(req.Table)).
		Str("op", string(req.Op)).
		Err(err).
		Msg("remote write failed, mirroring to mock data")

	res, fbErr := do(f.fallback)
	if fbErr != nil {
		return Result{}, errors.Join(err, fbErr)
	}
	res.Source = f.fallback.Name()
	res.Degraded = true
	return res, nil
}

// SaveSale persists a sale with its items under the write policy.
func (f *Facade) SaveSale(ctx context.Context, sale domain.Sale, items []domain.SaleItem, replace bool) (domain.SaleDetail, Result, error) {
	var detail domain.SaleDetail
	res, err := f.write(ctx, Request{Table: domain.TableSales, Op: OpInsert}, func(src store.DataSource) (Result, error) {
		d, err := src.SaveSale(ctx, sale, items, replace)
		if err != nil {
			return Result{}, err
		}
		detail = d
		return Result{Rows: []domain.Record{d.Sale}, Affected: 1 + len(d.Items)}, nil
	})
	return detail, res, err
}

func (f *Facade) DeleteSale(ctx context.Context, saleID string) (Result, error) {
	return f.write(ctx, Request{Table: domain.TableSales, Op: OpDelete}, func(src store.DataSource) (Result, error) {
		if err := src.DeleteSale(ctx, saleID); err != nil {
			return Result{}, err
		}
		return Result{Affected: 1}, nil
	})
}

type Health struct {
	Remote    bool   `json:"remote"`
	Source    string `json:"source"`
	Customers int    `json:"customers"`
}

// Health pings the primary source and counts customers to prove queries work.
func (f *Facade) Health(ctx context.Context) (Health, error) {
	h := Health{Remote: f.Remote(), Source: f.primary.Name()}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := f.primary.Ping(ctx); err != nil {
		return h, err
	}
	n, err := f.primary.Count(ctx, domain.TableCustomers)
	if err != nil {
		return h, err
	}
	h.Customers = n
	return h, nil
}

func apply(ctx context.Context, src store.DataSource, req Request) (Result, error) {
	switch req.Op {
	case OpInsert:
		rows, err := src.Insert(ctx, req.Table, req.Rows)
		if err != nil {
			return Result{}, err
		}
		return Result{Rows: rows, Affected: len(rows)}, nil
	case OpUpdate:
		rows, err := src.Update(ctx, req.Table, req.Patch, req.Eq)
		if err != nil {
			return Result{}, err
		}
		return Result{Rows: rows, Affected: len(rows)}, nil
	case OpDelete:
		n, err := src.Delete(ctx, req.Table, req.Eq)
		if err != nil {
			return Result{}, err
		}
		return Result{Affected: n}, nil
	}
	return Result{}, fmt.Errorf("%w: unsupported operation %q", domain.ErrInvalid, req.Op)
}

// callerError reports failures caused by the request itself. Those are never
// mirrored because the fallback would reject them too.
func callerError(err error) bool {
	return errors.Is(err, domain.ErrInvalid) ||
		errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, store.ErrConflict) ||
		errors.Is(err, store.ErrUnfilteredWrite) ||
		errors.Is(err, store.ErrUnknownTable)
}
