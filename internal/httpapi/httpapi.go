package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/service"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{a.allowedOrigin},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Data-Source", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(limitBody)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/api/health", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth())

			r.Get("/session", a.handleSession)

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", a.handleListCustomers)
				r.Post("/", a.handleCreateCustomer)
				r.Get("/{id}", a.handleGetCustomer)
				r.Patch("/{id}", a.handleUpdateCustomer)
				r.Delete("/{id}", a.handleDeleteCustomer)
				r.Get("/{id}/history", a.handleCustomerHistory)
			})

			r.Route("/staff", func(r chi.Router) {
				r.Get("/", a.handleListStaff)
				r.With(a.requireAuth(domain.RoleAdmin)).Post("/", a.handleCreateStaff)
				r.With(a.requireAuth(domain.RoleAdmin)).Patch("/{id}", a.handleUpdateStaff)
				r.With(a.requireAuth(domain.RoleAdmin)).Delete("/{id}", a.handleDeleteStaff)
			})

			r.Route("/services", func(r chi.Router) {
				r.Get("/", a.handleListServices)
				r.Post("/", a.handleCreateService)
				r.Patch("/{id}", a.handleUpdateService)
				r.Delete("/{id}", a.handleDeleteService)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", a.handleListProducts)
				r.Get("/low-stock", a.handleLowStock)
				r.Post("/", a.handleCreateProduct)
				r.Patch("/{id}", a.handleUpdateProduct)
				r.Delete("/{id}", a.handleDeleteProduct)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Get("/", a.handleListAppointments)
				r.Post("/", a.handleCreateAppointment)
				r.Patch("/{id}", a.handleUpdateAppointment)
				r.Patch("/{id}/status", a.handleAppointmentStatus)
				r.Delete("/{id}", a.handleDeleteAppointment)
			})

			r.Route("/treatments", func(r chi.Router) {
				r.Get("/", a.handleListTreatments)
				r.Post("/", a.handleCreateTreatment)
				r.Patch("/{id}", a.handleUpdateTreatment)
				r.Delete("/{id}", a.handleDeleteTreatment)
			})

			r.Route("/sales", func(r chi.Router) {
				r.Get("/", a.handleListSales)
				r.Post("/", a.handleCreateSale)
				r.Get("/{id}", a.handleGetSale)
				r.Put("/{id}", a.handleUpdateSale)
				r.Delete("/{id}", a.handleDeleteSale)
			})

			r.Get("/reports/commissions", a.handleCommissionReport)
			r.Get("/reports/dashboard", a.handleDashboard)
			r.Get("/forms/sale-options", a.handleSaleOptions)

			r.Route("/users", func(r chi.Router) {
				r.Use(a.requireAuth(domain.RoleAdmin))
				r.Get("/", a.handleListUsers)
				r.Post("/", a.handleCreateUser)
			})
		})
	})

	return r
}

// requireAuth checks the bearer token and, when roles are given, the actor's
// role. The actor is stored on the request context.
func (a *API) requireAuth(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := service.ActorFromContext(r.Context())
			if !ok {
				authorization := strings.TrimSpace(r.Header.Get("Authorization"))
				if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
					writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
					return
				}
				parsed, err := a.auth.ParseToken(strings.TrimSpace(authorization[len("Bearer "):]))
				if err != nil {
					writeError(w, http.StatusUnauthorized, err)
					return
				}
				actor = parsed
			}

			if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
				writeError(w, http.StatusForbidden, errors.New("forbidden role"))
				return
			}
			next.ServeHTTP(w, r.WithContext(service.WithActor(r.Context(), actor)))
		})
	}
}

func isRoleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		startedAt := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("component", "http").
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(startedAt)).
			Msg("request")
	})
}

// statusFor maps service and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (a *API) fail(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

// dataSource names the backend that answered a read.
func (a *API) dataSource(degraded bool) string {
	if degraded || !a.service.Remote() {
		return "mock"
	}
	return "remote"
}

func (a *API) writeRead(w http.ResponseWriter, degraded bool, payload any) {
	w.Header().Set("X-Data-Source", a.dataSource(degraded))
	writeJSON(w, http.StatusOK, payload)
}

func writeListing[T any](a *API, w http.ResponseWriter, key string, list service.Listing[T]) {
	a.writeRead(w, list.Degraded, map[string]any{key: list.Items, "degraded": list.Degraded})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx bodies stay generic; the cause is only logged.
	msg := err.Error()
	if status >= 500 {
		log.Error().Str("component", "http").Int("status", status).Err(err).Msg("request failed")
		msg = "internal server error"
		if status == http.StatusServiceUnavailable {
			msg = "data source unavailable"
		}
	}
	body := map[string]any{"error": msg}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
