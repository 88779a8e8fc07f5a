package service

import (
	"context"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/facade"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

// ListAppointments orders by date then start time. A non-empty date keeps
// only that day.
func (s *Service) ListAppointments(ctx context.Context, date string) (Listing[domain.Appointment], error) {
	opts := store.Options{Order: []store.Order{
		{Column: "appointment_date", Ascending: true},
		{Column: "start_time", Ascending: true},
	}}
	if date != "" {
		if !domain.ValidDate(date) {
			return Listing[domain.Appointment]{}, &domain.ValidationError{Table: domain.TableAppointments, Field: "date", Message: "must be YYYY-MM-DD"}
		}
		opts.Where = []store.Eq{{Column: "appointment_date", Value: date}}
	}
	rows, res, err := facade.Select[domain.Appointment](ctx, s.data, opts)
	if err != nil {
		return Listing[domain.Appointment]{}, err
	}
	return listing(rows, res), nil
}

func (s *Service) CreateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	a.Meta = domain.Meta{}
	if a.Status == "" {
		a.Status = domain.AppointmentPending
	}
	created, _, err := facade.Insert(ctx, s.data, a)
	return created, err
}

func (s *Service) UpdateAppointment(ctx context.Context, id string, patch domain.AppointmentPatch) (domain.Appointment, error) {
	updated, _, err := facade.UpdateByID[domain.Appointment](ctx, s.data, id, patch)
	return updated, err
}

func (s *Service) UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) (domain.Appointment, error) {
	if !status.Valid() {
		return domain.Appointment{}, &domain.ValidationError{Table: domain.TableAppointments, Field: "status", Message: "unknown appointment status"}
	}
	return s.UpdateAppointment(ctx, id, domain.AppointmentPatch{Status: &status})
}

func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	_, err := facade.DeleteByID(ctx, s.data, domain.TableAppointments, id)
	return err
}

// ListTreatments returns treatments newest first, for one customer when
// customerID is set.
func (s *Service) ListTreatments(ctx context.Context, customerID string) (Listing[domain.Treatment], error) {
	opts := store.Options{Order: []store.Order{
		{Column: "treatment_date", Ascending: false},
		{Column: "created_at", Ascending: false},
	}}
	if customerID != "" {
		opts.Where = []store.Eq{{Column: "customer_id", Value: customerID}}
	}
	rows, res, err := facade.Select[domain.Treatment](ctx, s.data, opts)
	if err != nil {
		return Listing[domain.Treatment]{}, err
	}
	return listing(rows, res), nil
}

func (s *Service) CreateTreatment(ctx context.Context, t domain.Treatment) (domain.Treatment, error) {
	t.Meta = domain.Meta{}
	if t.TreatmentDate == "" {
		t.TreatmentDate = s.today().Format(dayLayout)
	}
	created, _, err := facade.Insert(ctx, s.data, t)
	return created, err
}

func (s *Service) UpdateTreatment(ctx context.Context, id string, patch domain.TreatmentPatch) (domain.Treatment, error) {
	updated, _, err := facade.UpdateByID[domain.Treatment](ctx, s.data, id, patch)
	return updated, err
}

func (s *Service) DeleteTreatment(ctx context.Context, id string) error {
	_, err := facade.DeleteByID(ctx, s.data, domain.TableTreatments, id)
	return err
}
