package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yndnr/honeymesh/internal/core/domain"
)

// fillFunc populates page data and returns the status to render with.
type fillFunc func(r *http.Request, d *pageData) int

// page returns a handler that mints a token for the request path and renders
// the named page with it.
func (h *Handler) page(name string, fill fillFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{Title: pageTitles[name], Token: h.mint(r)}
		status := http.StatusOK
		if fill != nil {
			status = fill(r, &data)
		}
		h.render(w, r, status, name, data)
	}
}

var pageTitles = map[string]string{
	"home":          "Home",
	"login":         "Login",
	"dashboard":     "Dashboard",
	"patients":      "Patients",
	"patient":       "Patient Details",
	"appointments":  "Appointments",
	"prescriptions": "Prescriptions",
	"admin":         "Admin Panel",
	"backup":        "System Backup",
	"notfound":      "404 - Not Found",
}

// mint creates the page's honeytoken. A failure yields an empty token and
// the page renders without one.
func (h *Handler) mint(r *http.Request) string {
	id, err := h.svc.Mint(r.Context(), pageLabel(r.URL.Path))
	if err != nil {
		h.logger.WarnContext(r.Context(), "page rendered without honeytoken",
			"path", r.URL.Path,
			"error", err,
		)
		return ""
	}
	return id
}

// handlePatient handles GET /patient/{id}. Unknown ids still mint.
func (h *Handler) handlePatient(w http.ResponseWriter, r *http.Request) {
	token := h.mint(r)
	p, ok := findPatient(mux.Vars(r)["id"])
	if !ok {
		h.render(w, r, http.StatusNotFound, "notfound", pageData{Title: pageTitles["notfound"], Token: token})
		return
	}
	h.render(w, r, http.StatusOK, "patient", pageData{Title: pageTitles["patient"], Token: token, Patient: p})
}

// handleBeacon handles GET /honeytoken?token=... and always redirects home.
func (h *Handler) handleBeacon(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, err := h.svc.RecordAccess(r.Context(), token, h.clientIP(r)); err != nil {
		if !errors.Is(err, domain.ErrInvalidArgument) {
			h.logger.ErrorContext(r.Context(), "beacon handling failed", "error", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogin handles POST /login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.WarnContext(r.Context(), "unreadable login form", "error", err)
		http.Redirect(w, r, "/login?error=1", http.StatusFound)
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if h.svc.RecordLoginAttempt(r.Context(), username, password, h.clientIP(r)) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login?error=1", http.StatusFound)
}

// handleNotFound mints for GETs of unknown paths and renders the 404 page.
func (h *Handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: pageTitles["notfound"]}
	if r.Method == http.MethodGet {
		data.Token = h.mint(r)
	}
	h.render(w, r, http.StatusNotFound, "notfound", data)
}

// handleMethodNotAllowed answers like an unknown page instead of a 405.
func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "notfound", pageData{Title: pageTitles["notfound"]})
}
