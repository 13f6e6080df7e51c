package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/core/service"
)

// maxFormBytes caps the bait login body.
const maxFormBytes = 8 << 10

// BeaconPath is the tracking link that records honeytoken accesses.
const BeaconPath = "/honeytoken"

// StoreStatus reports on the token store for /health.
type StoreStatus interface {
	Ping(ctx context.Context) error
}

// Config holds the handler's dependencies.
type Config struct {
	Service *service.HoneytokenService
	Store   StoreStatus
	Logger  *slog.Logger

	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	// ClientIP resolves the visitor address. Defaults to the RemoteAddr host.
	ClientIP func(*http.Request) string

	// Middleware runs after routing, so mux.CurrentRoute is available.
	Middleware []mux.MiddlewareFunc

	Version string
}

// Handler is the decoy portal.
type Handler struct {
	svc      *service.HoneytokenService
	store    StoreStatus
	logger   *slog.Logger
	clientIP func(*http.Request) string
	version  string
	pages    map[string]*template.Template
	router   *mux.Router
}

// New creates a Handler with its routes registered.
func New(cfg Config) (*Handler, error) {
	if cfg.Service == nil {
		return nil, errors.New("handler: service is required")
	}
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("handler: parse pages: %w", err)
	}

	h := &Handler{
		svc:      cfg.Service,
		store:    cfg.Store,
		logger:   cfg.Logger,
		clientIP: cfg.ClientIP,
		version:  cfg.Version,
		pages:    pages,
		router:   mux.NewRouter(),
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.clientIP == nil {
		h.clientIP = RemoteHost
	}

	h.registerRoutes(cfg.Metrics, cfg.Middleware)
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes(metrics http.Handler, mw []mux.MiddlewareFunc) {
	r := h.router

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	r.HandleFunc(BeaconPath, h.handleBeacon).Methods(http.MethodGet).Queries("token", "{token}")
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)

	r.HandleFunc("/api/patients", h.handleAPIPatients).Methods(http.MethodGet)
	r.HandleFunc("/api/patients/{id}", h.handleAPIPatient).Methods(http.MethodGet)

	r.HandleFunc("/", h.page("home", nil)).Methods(http.MethodGet)
	r.HandleFunc("/login", h.page("login", func(r *http.Request, d *pageData) int {
		d.Error = r.URL.Query().Get("error") != ""
		return http.StatusOK
	})).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", h.page("dashboard", func(_ *http.Request, d *pageData) int {
		d.Patients, d.Appointments, d.Prescriptions = patients, appointments, prescriptions
		return http.StatusOK
	})).Methods(http.MethodGet)
	r.HandleFunc("/patients", h.page("patients", func(_ *http.Request, d *pageData) int {
		d.Patients = patients
		return http.StatusOK
	})).Methods(http.MethodGet)
	r.HandleFunc("/patient/{id}", h.handlePatient).Methods(http.MethodGet)
	r.HandleFunc("/appointments", h.page("appointments", func(_ *http.Request, d *pageData) int {
		d.Appointments = appointments
		return http.StatusOK
	})).Methods(http.MethodGet)
	r.HandleFunc("/prescriptions", h.page("prescriptions", func(_ *http.Request, d *pageData) int {
		d.Prescriptions = prescriptions
		return http.StatusOK
	})).Methods(http.MethodGet)
	r.HandleFunc("/admin", h.page("admin", func(_ *http.Request, d *pageData) int {
		d.Staff = staff
		return http.StatusOK
	})).Methods(http.MethodGet)
	r.HandleFunc("/backup", h.page("backup", func(_ *http.Request, d *pageData) int {
		d.Backups = backups
		return http.StatusOK
	})).Methods(http.MethodGet)

	r.Use(mw...)

	// Unmatched requests bypass router middleware, so wrap them explicitly.
	var notFound http.Handler = http.HandlerFunc(h.handleNotFound)
	var notAllowed http.Handler = http.HandlerFunc(h.handleMethodNotAllowed)
	for i := len(mw) - 1; i >= 0; i-- {
		notFound = mw[i](notFound)
		notAllowed = mw[i](notAllowed)
	}
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notAllowed
}

// writeJSON writes v as a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// render executes a page into a buffer first so a template error never
// leaves a half-written page behind.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[name].Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RemoteHost returns the host part of r.RemoteAddr.
func RemoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// pageLabel is the context a page's honeytoken is bound to.
func pageLabel(path string) string {
	label := "page_visit:" + path
	if len(label) > domain.MaxContextLength {
		label = label[:domain.MaxContextLength]
	}
	return label
}
