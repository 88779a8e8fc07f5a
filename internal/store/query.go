package store

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/xid"
)

// Filter returns the rows matching opts, ordered and limited. It does not
// copy the rows.
func Filter(rows []domain.Record, opts Options) []domain.Record {
	out := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		if Matches(row, opts) {
			out = append(out, row)
		}
	}
	if len(opts.Order) > 0 {
		slices.SortStableFunc(out, func(a, b domain.Record) int {
			for _, o := range opts.Order {
				av, _ := a.Field(o.Column)
				bv, _ := b.Field(o.Column)
				c := Compare(av, bv)
				if !o.Ascending {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func Matches(row domain.Record, opts Options) bool {
	for _, eq := range opts.Where {
		v, ok := row.Field(eq.Column)
		if !ok || Compare(v, eq.Value) != 0 {
			return false
		}
	}
	for _, r := range opts.Ranges {
		v, ok := row.Field(r.Column)
		if !ok || v == nil {
			return false
		}
		if r.From != nil && Compare(v, r.From) < 0 {
			return false
		}
		if r.To != nil && Compare(v, r.To) > 0 {
			return false
		}
	}
	return true
}

// Compare orders column values. Nil sorts first, mismatched kinds compare by
// their string form.
func Compare(a, b any) int {
	a, b = normalize(a), normalize(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
		if bv, ok := b.(decimal.Decimal); ok {
			return decimal.NewFromInt(av).Cmp(bv)
		}
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Cmp(bv)
		}
		if bv, ok := b.(int64); ok {
			return av.Cmp(decimal.NewFromInt(bv))
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case *string:
		if t == nil {
			return nil
		}
		return *t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64, string, bool, decimal.Decimal, time.Time:
		return t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	}
	return v
}

// Stamp fills a missing id and created_at and sets updated_at to now.
func Stamp(row domain.Record, now time.Time) domain.Record {
	meta := row.Metadata()
	if meta.ID == "" {
		meta.ID = xid.New()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	return row.WithMeta(meta)
}
