package service

import (
	"time"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
)

const dayLayout = "2006-01-02"

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func parseDay(raw string, field string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(dayLayout, raw, loc)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Table: domain.TableSales, Field: field, Message: "must be a YYYY-MM-DD date"}
	}
	return day, nil
}

// dayRange resolves an inclusive from/to pair of calendar days. Missing ends
// default to the current month up to today.
func (s *Service) dayRange(from string, to string) (domain.DateRange, error) {
	today := s.today()
	r := domain.DateRange{From: startOfMonth(today), To: endOfDay(today)}
	if from != "" {
		day, err := parseDay(from, "from", s.loc)
		if err != nil {
			return domain.DateRange{}, err
		}
		r.From = day
	}
	if to != "" {
		day, err := parseDay(to, "to", s.loc)
		if err != nil {
			return domain.DateRange{}, err
		}
		r.To = endOfDay(day)
	}
	if r.To.Before(r.From) {
		return domain.DateRange{}, &domain.ValidationError{Table: domain.TableSales, Field: "to", Message: "must not be before from"}
	}
	return r, nil
}
