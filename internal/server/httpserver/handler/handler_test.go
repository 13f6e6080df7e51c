package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/internal/server/httpserver/handler"
	"github.com/yndnr/honeymesh/internal/storage/memory"
)

var tokenComment = regexp.MustCompile(`<!-- Honeytoken: ([0-9a-f-]{36}) -->`)

type fixture struct {
	h     *handler.Handler
	svc   *service.HoneytokenService
	store *memory.Store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, store service.TokenStore, opts ...service.Option) *fixture {
	t.Helper()
	mem, _ := store.(*memory.Store)
	if store == nil {
		mem = memory.New()
		store = mem
	}
	t.Cleanup(func() { store.Close() })

	opts = append([]service.Option{
		service.WithLogger(discardLogger()),
		service.WithBaitUsers(map[string]string{"admin": "password123"}),
	}, opts...)
	svc := service.NewHoneytokenService(store, opts...)

	h, err := handler.New(handler.Config{
		Service: svc,
		Store:   store,
		Logger:  discardLogger(),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "# metrics\n")
		}),
		Version: "test",
	})
	if err != nil {
		t.Fatalf("handler.New() error = %v", err)
	}
	return &fixture{h: h, svc: svc, store: mem}
}

func (f *fixture) do(method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "192.0.2.10:40000"
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func extractToken(t *testing.T, body string) string {
	t.Helper()
	m := tokenComment.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no honeytoken comment in page:\n%s", body)
	}
	return m[1]
}

func TestPages_MintAndEmbedToken(t *testing.T) {
	paths := []string{
		"/", "/login", "/dashboard", "/patients", "/patient/P12345",
		"/appointments", "/prescriptions", "/admin", "/backup",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			f := newFixture(t, nil)
			rec := f.do(http.MethodGet, path, nil)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			body := rec.Body.String()
			id := extractToken(t, body)
			if !strings.Contains(body, `href="/honeytoken?token=`+id+`"`) {
				t.Errorf("beacon link for %s missing", id)
			}

			rec2, err := f.svc.Lookup(context.Background(), id)
			if err != nil {
				t.Fatalf("Lookup() error = %v", err)
			}
			if rec2.Context != "page_visit:"+path {
				t.Errorf("Context = %q, want %q", rec2.Context, "page_visit:"+path)
			}
			if rec2.Accessed || rec2.AccessCount != 0 {
				t.Errorf("fresh token already accessed: %+v", rec2)
			}
		})
	}
}

func TestPages_UniqueTokenPerRender(t *testing.T) {
	f := newFixture(t, nil)
	a := extractToken(t, f.do(http.MethodGet, "/dashboard", nil).Body.String())
	b := extractToken(t, f.do(http.MethodGet, "/dashboard", nil).Body.String())
	if a == b {
		t.Errorf("two renders embedded the same token %s", a)
	}
	if f.store.Len() != 2 {
		t.Errorf("store has %d records, want 2", f.store.Len())
	}
}

func TestPatientDetail(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/patient/P67890", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Emily Davis") {
		t.Fatalf("known patient: status = %d", rec.Code)
	}

	rec = f.do(http.MethodGet, "/patient/P00000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown patient: status = %d, want 404", rec.Code)
	}
	extractToken(t, rec.Body.String())
}

func TestUnknownPath_MintsAnd404(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/wp-admin/setup.php", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	id := extractToken(t, rec.Body.String())
	h, err := f.svc.Lookup(context.Background(), id)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if h.Context != "page_visit:/wp-admin/setup.php" {
		t.Errorf("Context = %q", h.Context)
	}
}

func TestMethodNotAllowed_Looks404(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodPost, "/dashboard", strings.NewReader(""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if f.store.Len() != 0 {
		t.Errorf("POST minted %d tokens", f.store.Len())
	}
}

func TestBeacon_RecordsAccessAndAlerts(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	alerts, err := f.store.Subscribe(ctx, domain.DefaultAlertChannel)
	if err != nil {
		t.Fatal(err)
	}

	id := extractToken(t, f.do(http.MethodGet, "/admin", nil).Body.String())

	rec := f.do(http.MethodGet, "/honeytoken?token="+id, nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("status = %d, Location = %q, want 302 /", rec.Code, rec.Header().Get("Location"))
	}

	h, err := f.svc.Lookup(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if !h.Accessed || h.AccessCount != 1 || !h.HasIP("192.0.2.10") {
		t.Errorf("record after beacon = %+v", h)
	}

	select {
	case msg := <-alerts:
		var ev domain.AlertEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.EventType != "honeytoken_access" || ev.TokenID != id || ev.Context != "page_visit:/admin" {
			t.Errorf("alert = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no alert published")
	}
}

func TestBeacon_UnknownTokenStillRedirects(t *testing.T) {
	f := newFixture(t, nil)

	for _, tok := range []string{"0b6c3e2a-8f4d-4c7e-9a1b-2d3e4f5a6b7c", "not-a-token", ""} {
		rec := f.do(http.MethodGet, "/honeytoken?token="+url.QueryEscape(tok), nil)
		if rec.Code != http.StatusFound {
			t.Errorf("token %q: status = %d, want 302", tok, rec.Code)
		}
	}
	if f.store.Len() != 0 {
		t.Errorf("unknown tokens created %d records", f.store.Len())
	}
}

func TestBeacon_WithoutQueryIs404(t *testing.T) {
	f := newFixture(t, nil)
	if rec := f.do(http.MethodGet, "/honeytoken", nil); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		location string
		success  bool
	}{
		{"bait match", url.Values{"username": {"admin"}, "password": {"password123"}}, "/dashboard", true},
		{"wrong password", url.Values{"username": {"admin"}, "password": {"guess"}}, "/login?error=1", false},
		{"empty form", url.Values{}, "/login?error=1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			alerts, _ := f.store.Subscribe(ctx, domain.DefaultAlertChannel)

			rec := f.do(http.MethodPost, "/login", strings.NewReader(tt.form.Encode()))
			if rec.Code != http.StatusFound || rec.Header().Get("Location") != tt.location {
				t.Fatalf("status = %d, Location = %q, want 302 %s", rec.Code, rec.Header().Get("Location"), tt.location)
			}

			select {
			case msg := <-alerts:
				var ev domain.LoginAttemptEvent
				if err := json.Unmarshal(msg, &ev); err != nil {
					t.Fatal(err)
				}
				if ev.EventType != "login_attempt" || ev.Success != tt.success || ev.IPAddress != "192.0.2.10" {
					t.Errorf("event = %+v", ev)
				}
			case <-time.After(time.Second):
				t.Fatal("no login_attempt event")
			}
		})
	}
}

func TestLoginPage_ShowsError(t *testing.T) {
	f := newFixture(t, nil)
	if body := f.do(http.MethodGet, "/login?error=1", nil).Body.String(); !strings.Contains(body, "Invalid username or password") {
		t.Error("error message missing")
	}
	if body := f.do(http.MethodGet, "/login", nil).Body.String(); strings.Contains(body, "Invalid username or password") {
		t.Error("error message shown without error flag")
	}
}

func TestAPIPatients(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(http.MethodGet, "/api/patients", nil)
	var list []handler.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 4 || list[0].ID != "P12345" || list[3].Name != "Sarah Williams" {
		t.Errorf("patients = %+v", list)
	}

	rec = f.do(http.MethodGet, "/api/patients/P24680", nil)
	var p handler.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Name != "Michael Johnson" {
		t.Errorf("patient = %+v", p)
	}

	rec = f.do(http.MethodGet, "/api/patients/P99999", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Patient not found") {
		t.Errorf("unknown patient: %d %s", rec.Code, rec.Body.String())
	}
}

type degradedStore struct {
	*memory.Store
}

func (degradedStore) Degraded() bool  { return true }
func (degradedStore) Backend() string { return "redis" }

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/health", nil)
	var resp handler.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("health = %d %+v", rec.Code, resp)
	}

	f = newFixture(t, degradedStore{memory.New()})
	rec = f.do(http.MethodGet, "/health", nil)
	resp = handler.HealthResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || resp.Status != "degraded" || resp.Backend != "redis" || resp.Store != "memory" {
		t.Errorf("degraded health = %d %+v", rec.Code, resp)
	}
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "# metrics") {
		t.Errorf("metrics = %d %q", rec.Code, rec.Body.String())
	}
	if f.store.Len() != 0 {
		t.Error("metrics scrape minted a token")
	}
}

type failingStore struct {
	*memory.Store
}

func (failingStore) Put(context.Context, *domain.Honeytoken) error {
	return domain.ErrStoreUnavailable.WithCause(errors.New("connection refused"))
}

func TestStoreFailure_NeverReachesVisitor(t *testing.T) {
	f := newFixture(t, failingStore{memory.New()})
	rec := f.do(http.MethodGet, "/patients", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	extractToken(t, rec.Body.String())

	strict := newFixture(t, failingStore{memory.New()}, service.WithStrictWrites(true))
	rec = strict.do(http.MethodGet, "/patients", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("strict: status = %d, want 200", rec.Code)
	}
	if tokenComment.MatchString(rec.Body.String()) {
		t.Error("strict mode embedded a token that was never stored")
	}
}
