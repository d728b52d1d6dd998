package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

const applicationNotFound = "decorator application not found"

// Apply handles POST /decorator
// A repeated application is answered with 200 and a message.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req model.ApplyRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.decorators.Apply(r.Context(), callerOf(r), req)
	if err != nil {
		h.fail(w, r, err, applicationNotFound)
		return
	}
	status := http.StatusCreated
	if res.InsertedID == "" {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// ReviewApplication handles PATCH /decorator/{id}
// Accepting an application promotes the applicant to decorator.
func (h *Handler) ReviewApplication(w http.ResponseWriter, r *http.Request) {
	var req model.ReviewRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.decorators.Review(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err, applicationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListDecorators handles GET /decorators?category=
func (h *Handler) ListDecorators(w http.ResponseWriter, r *http.Request) {
	apps, err := h.decorators.ListDecorators(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.fail(w, r, err, applicationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// FeaturedDecorators handles GET /decorators/featured?limit=
func (h *Handler) FeaturedDecorators(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	apps, err := h.decorators.FeaturedDecorators(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err, applicationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// ListApplications handles GET /decorator-applications?applyStatus=
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	status := model.ApplyStatus(r.URL.Query().Get("applyStatus"))
	apps, err := h.decorators.ListApplications(r.Context(), status)
	if err != nil {
		h.fail(w, r, err, applicationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}
