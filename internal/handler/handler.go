// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Shivanand-hulikatti/styledecor/internal/access"
	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/repository"
	"github.com/Shivanand-hulikatti/styledecor/internal/service"
)

// Handler holds all HTTP handlers for the marketplace API.
type Handler struct {
	catalog    *service.CatalogService
	users      *service.UserService
	bookings   *service.BookingService
	payments   *service.PaymentService
	decorators *service.DecoratorService

	validate *validator.Validate
	log      logrus.FieldLogger
}

// Services groups the engines the handlers dispatch to.
type Services struct {
	Catalog    *service.CatalogService
	Users      *service.UserService
	Bookings   *service.BookingService
	Payments   *service.PaymentService
	Decorators *service.DecoratorService
}

// New constructs a Handler.
func New(svc Services, log logrus.FieldLogger) *Handler {
	return &Handler{
		catalog:    svc.Catalog,
		users:      svc.Users,
		bookings:   svc.Bookings,
		payments:   svc.Payments,
		decorators: svc.Decorators,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		log:        log,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// bind decodes and validates a request body, answering 400 on failure.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body: " + err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return "invalid request body: " + strings.Join(msgs, "; ")
}

// fail maps a service error to a status code. Unexpected errors are logged
// and hidden from the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, service.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "resource was modified concurrently, retry")
	case errors.Is(err, service.ErrUpstream):
		h.entry(r).WithError(err).Warn("payment provider failure")
		writeError(w, http.StatusBadGateway, "payment provider unavailable")
	default:
		h.entry(r).WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) entry(r *http.Request) logrus.FieldLogger {
	return h.log.WithFields(logrus.Fields{
		"request_id": chimiddleware.GetReqID(r.Context()),
		"path":       r.URL.Path,
	})
}

func callerOf(r *http.Request) model.Caller {
	c, _ := access.CallerFrom(r.Context())
	return c
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return f, nil
}

// pageFilter reads limit, skip and sort from the query string.
func pageFilter(r *http.Request) (model.BookingFilter, error) {
	var f model.BookingFilter
	var err error
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Skip, err = queryInt(r, "skip"); err != nil {
		return f, err
	}
	switch strings.ToLower(r.URL.Query().Get("sort")) {
	case "", "desc":
	case "asc":
		f.Ascending = true
	default:
		return f, errors.New("sort must be asc or desc")
	}
	return f, nil
}

// ─── Routes ───────────────────────────────────────────────────────────────────

// Mount registers every route on r. Protected routes are wrapped by gate.
func (h *Handler) Mount(r chi.Router, gate *access.Gate) {
	user := gate.Require(access.Authenticated)
	decorator := gate.Require(access.Decorator)
	admin := gate.Require(access.Admin)

	r.Get("/health", HealthCheck)

	r.Get("/packages", h.ListPackages)
	r.Get("/package/{id}", h.GetPackage)
	r.With(admin).Post("/package", h.CreatePackage)
	r.With(admin).Patch("/package/{id}", h.UpdatePackage)
	r.With(admin).Delete("/package/{id}", h.DeletePackage)

	r.With(user).Post("/users", h.RegisterUser)
	r.With(user).Get("/users/role", h.UserRole)

	r.With(user).Post("/booking", h.CreateBooking)
	r.With(user).Get("/booking/{id}", h.GetBooking)
	r.With(admin).Patch("/booking/{id}", h.AssignDecorator)
	r.With(user).Patch("/booking/{id}/cancel", h.CancelBooking)
	r.With(decorator).Patch("/booking/project/{id}", h.ReportProgress)
	r.With(user).Delete("/booking/{id}", h.DeleteBooking)
	r.With(user).Get("/dashboard/my-bookings", h.MyBookings)
	r.With(admin).Get("/bookings", h.ListBookings)
	r.With(decorator).Get("/bookings/dacorator", h.DecoratorBookings)

	r.With(user).Post("/payment-checkout-session", h.CreateCheckoutSession)
	r.With(user).Patch("/payment-success", h.ReconcilePayment)
	r.With(user).Get("/my-payment-history", h.PaymentHistory)

	r.With(user).Post("/decorator", h.Apply)
	r.With(admin).Patch("/decorator/{id}", h.ReviewApplication)
	r.With(admin).Get("/decorators", h.ListDecorators)
	r.Get("/decorators/featured", h.FeaturedDecorators)
	r.With(admin).Get("/decorator-applications", h.ListApplications)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
