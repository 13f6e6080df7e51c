package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/internal/server/httpserver/handler"
	"github.com/yndnr/honeymesh/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Service *service.HoneytokenService
	Store   handler.StoreStatus
	Logger  *slog.Logger

	// Metrics records request metrics. ExposeMetrics additionally serves
	// it on /metrics.
	Metrics       *metric.Registry
	ExposeMetrics bool

	// RateLimit is the per-client rate (requests/second). 0 disables.
	RateLimit float64
	RateBurst int

	TrustForwardedFor bool

	// EnableAudit logs one line per request.
	EnableAudit bool

	Version string
}

// NewRouter builds the decoy handler wrapped in the middleware chain:
// Recover -> RequestID -> Audit -> RateLimit -> router (Instrument) -> handler.
// Beacon hits skip RateLimit.
func NewRouter(cfg *RouterConfig) (http.Handler, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	clientIP := ClientIPResolver(cfg.TrustForwardedFor)

	hcfg := handler.Config{
		Service:  cfg.Service,
		Store:    cfg.Store,
		Logger:   log,
		ClientIP: clientIP,
		Version:  cfg.Version,
	}
	if cfg.Metrics != nil {
		hcfg.Middleware = []mux.MiddlewareFunc{Instrument(cfg.Metrics)}
		if cfg.ExposeMetrics {
			hcfg.Metrics = cfg.Metrics.Handler()
		}
	}
	h, err := handler.New(hcfg)
	if err != nil {
		return nil, err
	}

	chain := []Middleware{Recover(log), RequestID()}
	if cfg.EnableAudit {
		chain = append(chain, Audit(log, clientIP))
	}
	if cfg.RateLimit > 0 {
		chain = append(chain, RateLimit(RateLimitConfig{
			Rate:     cfg.RateLimit,
			Burst:    cfg.RateBurst,
			ClientIP: clientIP,
			Metrics:  cfg.Metrics,
			Exempt:   isBeacon,
		}))
	}
	return Chain(h, chain...), nil
}

// isBeacon matches token dereferences. Every one must reach the service
// and answer like any other visit, so they are never throttled.
func isBeacon(r *http.Request) bool {
	return r.URL.Path == handler.BeaconPath
}
