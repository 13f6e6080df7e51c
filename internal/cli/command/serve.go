package command

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/internal/infra/buildinfo"
	"github.com/yndnr/honeymesh/internal/infra/confloader"
	"github.com/yndnr/honeymesh/internal/infra/shutdown"
	"github.com/yndnr/honeymesh/internal/server/config"
	"github.com/yndnr/honeymesh/internal/server/httpserver"
	"github.com/yndnr/honeymesh/internal/storage"
	"github.com/yndnr/honeymesh/internal/telemetry/logger"
	"github.com/yndnr/honeymesh/internal/telemetry/metric"
)

// ServeCommand runs the decoy portal.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the decoy portal",
		Action: runServe,
	}
}

// portal is the assembled server process.
type portal struct {
	store   service.TokenStore
	handler http.Handler
	server  *httpserver.Server
	metrics *metric.Registry
}

// buildPortal opens the store and assembles service, router and server.
func buildPortal(ctx context.Context, cfg *config.ServerConfig, log *slog.Logger) (*portal, error) {
	var m *metric.Registry
	if cfg.Metrics.Enabled {
		m = metric.NewRegistry()
	}

	store, err := storage.Open(ctx, storeConfig(cfg), log, m)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	svc := service.NewHoneytokenService(store, serviceOptions(cfg, log, m)...)

	h, err := httpserver.NewRouter(&httpserver.RouterConfig{
		Service:           svc,
		Store:             store,
		Logger:            log,
		Metrics:           m,
		ExposeMetrics:     cfg.Metrics.Enabled,
		RateLimit:         cfg.Decoy.RateLimit,
		RateBurst:         cfg.Decoy.RateBurst,
		TrustForwardedFor: cfg.Server.HTTP.TrustForwardedFor,
		EnableAudit:       true,
		Version:           buildinfo.Get().Version,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build router: %w", err)
	}

	srv := httpserver.New(httpserver.Config{
		Addr:         cfg.Server.HTTP.Addr,
		TLSCertFile:  cfg.Server.HTTP.TLSCertFile,
		TLSKeyFile:   cfg.Server.HTTP.TLSKeyFile,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}, h, log)

	return &portal{store: store, handler: h, server: srv, metrics: m}, nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, c.App.ErrWriter)
	if err != nil {
		return err
	}

	configPath := c.String("config")
	log.Info("starting honeymesh-server",
		"version", buildinfo.String(),
		"config", configPath)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	p, err := buildPortal(c.Context, cfg, log)
	if err != nil {
		return err
	}

	// Hooks run in reverse: the server drains before the store closes.
	sh := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout, log)
	sh.OnShutdown("token store", func(context.Context) error {
		return p.store.Close()
	})
	sh.OnShutdown("http server", p.server.Shutdown)

	if configPath != "" {
		w, err := watchConfig(configPath, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			sh.OnShutdown("config watcher", func(context.Context) error {
				return w.Stop()
			})
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		err := p.server.ListenAndServe()
		if err != nil {
			log.Error("http server failed", "error", err)
			sh.Trigger()
		}
		serveErr <- err
	}()

	if err := sh.Wait(c.Context); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	default:
	}

	log.Info("server stopped")
	return nil
}

// watchConfig re-applies the log level whenever the config file changes.
// Other settings take effect on restart.
func watchConfig(path string, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}
	w.OnChange(func(string) {
		cfg, err := confloader.LoadServerConfig(path)
		if err != nil {
			log.Warn("ignoring invalid config change", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", logger.GetLevel())
		}
	})
	w.StartAsync()
	return w, nil
}
