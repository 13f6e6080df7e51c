package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleAPIPatients handles GET /api/patients.
func (h *Handler) handleAPIPatients(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, patients)
}

// handleAPIPatient handles GET /api/patients/{id}.
func (h *Handler) handleAPIPatient(w http.ResponseWriter, r *http.Request) {
	p, ok := findPatient(mux.Vars(r)["id"])
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "Patient not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}
