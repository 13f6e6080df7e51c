package command

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/internal/infra/confloader"
	"github.com/yndnr/honeymesh/internal/server/config"
	"github.com/yndnr/honeymesh/internal/storage"
	"github.com/yndnr/honeymesh/internal/storage/badgerstore"
	"github.com/yndnr/honeymesh/internal/storage/redisstore"
	"github.com/yndnr/honeymesh/internal/telemetry/logger"
	"github.com/yndnr/honeymesh/internal/telemetry/metric"
)

// loadConfig loads the configuration named by --config.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	cfg, err := confloader.LoadServerConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the default.
func newLogger(cfg *config.ServerConfig, w io.Writer) (*slog.Logger, error) {
	l, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: w,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(l)
	return logger.Slog(l), nil
}

// storeConfig maps the store section onto storage.Config.
func storeConfig(cfg *config.ServerConfig) storage.Config {
	s := cfg.Store
	return storage.Config{
		Backend:       s.Backend,
		OpTimeout:     s.OpTimeout,
		ProbeInterval: s.ProbeInterval,
		Redis: redisstore.Config{
			Addr:         s.Redis.Addr,
			Password:     s.Redis.Password,
			DB:           s.Redis.DB,
			DialTimeout:  s.Redis.DialTimeout,
			ReadTimeout:  s.OpTimeout,
			WriteTimeout: s.OpTimeout,
			PoolSize:     s.Redis.PoolSize,
			TLSCAFile:    s.Redis.TLSCAFile,
		},
		Badger: badgerstore.Config{
			Dir:              s.Badger.Dir,
			SyncWrites:       s.Badger.SyncWrites,
			GCInterval:       s.Badger.GCInterval,
			EncryptionSecret: cfg.Security.EncryptionKey,
		},
	}
}

// serviceOptions maps the configuration onto service options.
func serviceOptions(cfg *config.ServerConfig, log *slog.Logger, m *metric.Registry) []service.Option {
	return []service.Option{
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAlertChannel(cfg.Alerts.Channel),
		service.WithOpTimeout(cfg.Store.OpTimeout),
		service.WithStrictWrites(cfg.Decoy.StrictWrites),
		service.WithBaitUsers(cfg.Decoy.BaitUsers),
	}
}

// session is what the one-shot commands work with.
type session struct {
	cfg   *config.ServerConfig
	log   *slog.Logger
	store service.TokenStore
	svc   *service.HoneytokenService
}

// openSession loads the configuration and opens the configured store. The
// store has no memory fallback, so an unreachable backend fails the command.
// The caller closes the store.
func openSession(c *cli.Context, opts ...service.Option) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg, c.App.ErrWriter)
	if err != nil {
		return nil, err
	}
	scfg := storeConfig(cfg)
	scfg.RequirePrimary = true
	store, err := storage.Open(c.Context, scfg, log, nil)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	svc := service.NewHoneytokenService(store, append(serviceOptions(cfg, log, nil), opts...)...)
	return &session{cfg: cfg, log: log, store: store, svc: svc}, nil
}
