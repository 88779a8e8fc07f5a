package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/service"
)

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateRequest(usersTable, req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	actor, _ := service.ActorFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"actor": actor})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.auth.ListUsers(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.UserCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	user, err := a.auth.CreateUser(r.Context(), req)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// create decodes a body of type T, hands it to save and writes the result
// under key with 201.
func create[T any](a *API, key string, save func(*http.Request, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body T
		if err := decodeJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		saved, err := save(r, body)
		if err != nil {
			a.fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{key: saved})
	}
}

// update decodes a patch of type P and applies it to the row named by {id}.
func update[P any, T any](a *API, key string, apply func(*http.Request, string, P) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch P
		if err := decodeJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		saved, err := apply(r, chi.URLParam(r, "id"), patch)
		if err != nil {
			a.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{key: saved})
	}
}

func remove(a *API, del func(*http.Request, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := del(r, chi.URLParam(r, "id")); err != nil {
			a.fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *API) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.ListCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeListing(a, w, "customers", list)
}

func (a *API) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := a.service.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (a *API) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	create(a, "customer", func(r *http.Request, c domain.Customer) (domain.Customer, error) {
		return a.service.CreateCustomer(r.Context(), c)
	})(w, r)
}

func (a *API) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	update(a, "customer", func(r *http.Request, id string, p domain.CustomerPatch) (domain.Customer, error) {
		return a.service.UpdateCustomer(r.Context(), id, p)
	})(w, r)
}

func (a *API) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	remove(a, func(r *http.Request, id string) error {
		return a.service.DeleteCustomer(r.Context(), id)
	})(w, r)
}

func (a *API) handleCustomerHistory(w http.ResponseWriter, r *http.Request) {
	history, err := a.service.CustomerHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeRead(w, history.Degraded, history)
}

func (a *API) handleListStaff(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.ListStaff(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeListing(a, w, "staff", list)
}

func (a *API) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	create(a, "staff", func(r *http.Request, s domain.Staff) (domain.Staff, error) {
		return a.service.CreateStaff(r.Context(), s)
	})(w, r)
}

func (a *API) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	update(a, "staff", func(r *http.Request, id string, p domain.StaffPatch) (domain.Staff, error) {
		return a.service.UpdateStaff(r.Context(), id, p)
	})(w, r)
}

func (a *API) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	remove(a, func(r *http.Request, id string) error {
		return a.service.DeleteStaff(r.Context(), id)
	})(w, r)
}

func (a *API) handleListServices(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.ListServices(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeListing(a, w, "services", list)
}

func (a *API) handleCreateService(w http.ResponseWriter, r *http.Request) {
	create(a, "service", func(r *http.Request, s domain.Service) (domain.Service, error) {
		return a.service.CreateService(r.Context(), s)
	})(w, r)
}

func (a *API) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	update(a, "service", func(r *http.Request, id string, p domain.ServicePatch) (domain.Service, error) {
		return a.service.UpdateService(r.Context(), id, p)
	})(w, r)
}

func (a *API) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	remove(a, func(r *http.Request, id string) error {
		return a.service.DeleteService(r.Context(), id)
	})(w, r)
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.ListProducts(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeListing(a, w, "products", list)
}

func (a *API) handleLowStock(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.LowStockProducts(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeListing(a, w, "products", list)
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	create(a, "product", func(r *http.Request, p domain.Product) (domain.Product, error) {
		return a.service.CreateProduct(r.Context(), p)
	})(w, r)
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	update(a, "product", func(r *http.Request, id string, p domain.ProductPatch) (domain.Product, error) {
		return a.service.UpdateProduct(r.Context(), id, p)
	})(w, r)
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	remove(a, func(r *http.Request, id string) error {
		return a.service.DeleteProduct(r.Context(), id)
	})(w, r)
}

func (a *API) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.ListAppointments(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeListing(a, w, "appointments", list)
}

func (a *API) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	create(a, "appointment", func(r *http.Request, appt domain.Appointment) (domain.Appointment, error) {
		return a.service.CreateAppointment(r.Context(), appt)
	})(w, r)
}

func (a *API) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	update(a, "appointment", func(r *http.Request, id string, p domain.AppointmentPatch) (domain.Appointment, error) {
		return a.service.UpdateAppointment(r.Context(), id, p)
	})(w, r)
}

func (a *API) handleAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	update(a, "appointment", func(r *http.Request, id string, req domain.AppointmentStatusRequest) (domain.Appointment, error) {
		return a.service.UpdateAppointmentStatus(r.Context(), id, req.Status)
	})(w, r)
}

func (a *API) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	remove(a, func(r *http.Request, id string) error {
		return a.service.DeleteAppointment(r.Context(), id)
	})(w, r)
}

func (a *API) handleListTreatments(w http.ResponseWriter, r *http.Request) {
	list, err := a.service.ListTreatments(r.Context(), r.URL.Query().Get("customer_id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeListing(a, w, "treatments", list)
}

func (a *API) handleCreateTreatment(w http.ResponseWriter, r *http.Request) {
	create(a, "treatment", func(r *http.Request, t domain.Treatment) (domain.Treatment, error) {
		return a.service.CreateTreatment(r.Context(), t)
	})(w, r)
}

func (a *API) handleUpdateTreatment(w http.ResponseWriter, r *http.Request) {
	update(a, "treatment", func(r *http.Request, id string, p domain.TreatmentPatch) (domain.Treatment, error) {
		return a.service.UpdateTreatment(r.Context(), id, p)
	})(w, r)
}

func (a *API) handleDeleteTreatment(w http.ResponseWriter, r *http.Request) {
	remove(a, func(r *http.Request, id string) error {
		return a.service.DeleteTreatment(r.Context(), id)
	})(w, r)
}

func (a *API) handleListSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := a.service.ListSales(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeRead(w, list.Degraded, list)
}

func (a *API) handleGetSale(w http.ResponseWriter, r *http.Request) {
	detail, err := a.service.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *API) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateRequest(domain.TableSales, req); err != nil {
		a.fail(w, err)
		return
	}
	detail, err := a.service.CreateSale(r.Context(), req)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (a *API) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validateRequest(domain.TableSales, req); err != nil {
		a.fail(w, err)
		return
	}
	detail, err := a.service.UpdateSale(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *API) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	remove(a, func(r *http.Request, id string) error {
		return a.service.DeleteSale(r.Context(), id)
	})(w, r)
}

func (a *API) handleCommissionReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := a.service.CommissionReport(r.Context(), q.Get("from"), q.Get("to"), domain.PaymentStatus(q.Get("status")))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeRead(w, report.Degraded, report)
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := a.service.Dashboard(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeRead(w, dashboard.Degraded, dashboard)
}

func (a *API) handleSaleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := a.service.SaleFormOptions(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.writeRead(w, opts.Degraded, opts)
}
