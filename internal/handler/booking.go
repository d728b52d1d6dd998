package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
	"github.com/Shivanand-hulikatti/styledecor/internal/service"
)

const bookingNotFound = "booking not found"

// CreateBooking handles POST /booking
// Returns the insertion result and the generated tracking id.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if !h.bind(w, r, &req) {
		return
	}
	resp, err := h.bookings.CreateBooking(r.Context(), callerOf(r), req)
	if err != nil {
		h.fail(w, r, err, bookingNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetBooking handles GET /booking/{id}
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookings.GetBooking(r.Context(), callerOf(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, bookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// AssignDecorator handles PATCH /booking/{id}
// Admin only; sets serviceStatus to assign.
func (h *Handler) AssignDecorator(w http.ResponseWriter, r *http.Request) {
	var req model.AssignDecoratorRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.bookings.AssignDecorator(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err, bookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ReportProgress handles PATCH /booking/project/{id}
// The assigned decorator reports a progress label.
func (h *Handler) ReportProgress(w http.ResponseWriter, r *http.Request) {
	var req model.ProgressRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.bookings.ReportProgress(r.Context(), callerOf(r), chi.URLParam(r, "id"), req.ServiceStatus)
	if err != nil {
		h.fail(w, r, err, bookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CancelBooking handles PATCH /booking/{id}/cancel
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	res, err := h.bookings.CancelBooking(r.Context(), callerOf(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, bookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteBooking handles DELETE /booking/{id}
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	res, err := h.bookings.DeleteBooking(r.Context(), callerOf(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, bookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// MyBookings handles GET /dashboard/my-bookings
// Returns the caller's bookings with the total count.
func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	f, err := pageFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.UserEmail = callerOf(r).Email
	h.listBookings(w, r, f)
}

// ListBookings handles GET /bookings
// Admin view, optionally filtered by serviceStatus.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	f, err := pageFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.ServiceStatus = r.URL.Query().Get("serviceStatus")
	h.listBookings(w, r, f)
}

// DecoratorBookings handles GET /bookings/dacorator
// Lists the caller's work in progress: bookings whose status is not
// pending, assign or completed, unless serviceStatus narrows it.
func (h *Handler) DecoratorBookings(w http.ResponseWriter, r *http.Request) {
	f, err := pageFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.DecoratorEmail = callerOf(r).Email
	if status := r.URL.Query().Get("serviceStatus"); status != "" {
		f.ServiceStatus = status
	} else {
		f.ExcludeStatuses = service.DecoratorHiddenStatuses
	}
	h.listBookings(w, r, f)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request, f model.BookingFilter) {
	page, err := h.bookings.ListBookings(r.Context(), f)
	if err != nil {
		h.fail(w, r, err, bookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
