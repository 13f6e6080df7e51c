package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/yndnr/honeymesh/internal/infra/tlsroots"
)

// Config holds http.Server settings.
type Config struct {
	Addr         string
	TLSCertFile  string
	TLSKeyFile   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	cfg        Config
	logger     *slog.Logger

	mu    sync.Mutex
	certs *tlsroots.Watcher
}

// New creates a new HTTP server.
func New(cfg Config, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		cfg:    cfg,
		logger: logger,
	}
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It serves TLS when a certificate is configured.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln. http.ErrServerClosed is reported as nil. With TLS
// configured the certificate is reloaded whenever its files change.
func (s *Server) Serve(ln net.Listener) error {
	if s.cfg.TLSCertFile != "" {
		certs, err := tlsroots.NewWatcher(s.cfg.TLSCertFile, s.cfg.TLSKeyFile, tlsroots.WithLogger(s.logger))
		if err != nil {
			ln.Close()
			return err
		}
		s.mu.Lock()
		s.certs = certs
		s.mu.Unlock()
		certs.StartAsync()

		s.httpServer.TLSConfig = certs.ServerTLSConfig()
	}

	s.logger.Info("http server listening", "addr", ln.Addr().String(), "tls", s.cfg.TLSCertFile != "")

	var err error
	if s.httpServer.TLSConfig != nil {
		err = s.httpServer.ServeTLS(ln, "", "")
	} else {
		err = s.httpServer.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	certs := s.certs
	s.mu.Unlock()
	if certs != nil {
		_ = certs.Stop()
	}
	return err
}
