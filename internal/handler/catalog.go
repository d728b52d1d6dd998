package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/styledecor/internal/model"
)

// ListPackages handles GET /packages
// Supports search, type, min, max and limit query parameters.
func (h *Handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.PackageFilter{Search: q.Get("search"), Category: q.Get("type")}

	var err error
	if f.MinCost, err = queryFloat(r, "min"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.MaxCost, err = queryFloat(r, "max"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	packages, err := h.catalog.ListPackages(r.Context(), f)
	if err != nil {
		h.fail(w, r, err, "package not found")
		return
	}
	writeJSON(w, http.StatusOK, packages)
}

// GetPackage handles GET /package/{id}
func (h *Handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.catalog.GetPackage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "package not found")
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

// CreatePackage handles POST /package
func (h *Handler) CreatePackage(w http.ResponseWriter, r *http.Request) {
	var req model.PackageRequest
	if !h.bind(w, r, &req) {
		return
	}
	pkg, err := h.catalog.CreatePackage(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "package not found")
		return
	}
	writeJSON(w, http.StatusCreated, pkg)
}

// UpdatePackage handles PATCH /package/{id}
func (h *Handler) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	var req model.PackageRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.catalog.UpdatePackage(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, err, "package not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeletePackage handles DELETE /package/{id}
func (h *Handler) DeletePackage(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.DeletePackage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "package not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RegisterUser handles POST /users
// Creates the caller's user row on first sign-in.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterUserRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.users.Register(r.Context(), callerOf(r), req)
	if err != nil {
		h.fail(w, r, err, "user not found")
		return
	}
	status := http.StatusCreated
	if res.InsertedID == "" {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// UserRole handles GET /users/role
func (h *Handler) UserRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.users.Role(r.Context(), callerOf(r))
	if err != nil {
		h.fail(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Role{"role": role})
}
