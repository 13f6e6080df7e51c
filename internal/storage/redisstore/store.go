package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/honeymesh/internal/core/domain"
	"github.com/yndnr/honeymesh/internal/core/service"
	"github.com/yndnr/honeymesh/internal/infra/tlsroots"
)

var _ service.TokenStore = (*Store)(nil)

// Default settings.
const (
	DefaultAddr          = "localhost:6379"
	DefaultDialTimeout   = 2 * time.Second
	DefaultIOTimeout     = 500 * time.Millisecond
	DefaultUpdateRetries = 16
)

// Config holds Redis connection settings.
type Config struct {
	// Addr is host:port or a redis:// / rediss:// URL.
	Addr     string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	// TLSCAFile enables TLS, trusting the system roots plus the PEM
	// certificates in this file. A rediss:// Addr enables TLS on its own.
	TLSCAFile string

	// UpdateRetries bounds optimistic-transaction retries in Update.
	UpdateRetries int
}

// Store is a TokenStore backed by Redis.
type Store struct {
	client  *redis.Client
	retries int
	logger  *slog.Logger
}

// New creates a store. It does not contact the server; call Ping for that.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	retries := cfg.UpdateRetries
	if retries <= 0 {
		retries = DefaultUpdateRetries
	}

	return &Store{
		client:  redis.NewClient(opts),
		retries: retries,
		logger:  logger.With("component", "redisstore"),
	}, nil
}

func clientOptions(cfg Config) (*redis.Options, error) {
	var opts *redis.Options
	if strings.Contains(cfg.Addr, "://") {
		parsed, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.Addr, DB: cfg.DB}
		if opts.Addr == "" {
			opts.Addr = DefaultAddr
		}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	opts.DialTimeout = orDefault(cfg.DialTimeout, DefaultDialTimeout)
	opts.ReadTimeout = orDefault(cfg.ReadTimeout, DefaultIOTimeout)
	opts.WriteTimeout = orDefault(cfg.WriteTimeout, DefaultIOTimeout)
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	if cfg.TLSCAFile != "" {
		pool := tlsroots.NewPool()
		if err := pool.AddCertFile(cfg.TLSCAFile); err != nil {
			return nil, fmt.Errorf("redis tls: %w", err)
		}
		serverName := ""
		if opts.TLSConfig != nil {
			serverName = opts.TLSConfig.ServerName
		} else if host, _, err := net.SplitHostPort(opts.Addr); err == nil {
			serverName = host
		}
		opts.TLSConfig = pool.ClientTLSConfig(serverName)
	}
	return opts, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// Put upserts a record with SET.
func (s *Store) Put(ctx context.Context, h *domain.Honeytoken) error {
	data, err := domain.EncodeRecord(h)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, domain.StorageKey(h.TokenID), data, 0).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Get reads and decodes a record.
func (s *Store) Get(ctx context.Context, tokenID string) (*domain.Honeytoken, error) {
	data, err := s.client.Get(ctx, domain.StorageKey(tokenID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return domain.DecodeRecord(data)
}

// Update applies fn inside WATCH/MULTI/EXEC, retrying when another client
// modified the key between read and write.
func (s *Store) Update(ctx context.Context, tokenID string, fn func(*domain.Honeytoken) error) (*domain.Honeytoken, error) {
	key := domain.StorageKey(tokenID)

	var updated *domain.Honeytoken
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrTokenNotFound
		}
		if err != nil {
			return unavailable(err)
		}

		h, err := domain.DecodeRecord(data)
		if err != nil {
			return err
		}
		if err := fn(h); err != nil {
			return err
		}
		out, err := domain.EncodeRecord(h)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			updated = h
		}
		return err
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, redis.TxFailedErr):
			s.logger.Debug("update conflict, retrying", "token_id", tokenID, "attempt", attempt+1)
			continue
		case domain.IsDomainError(err, ""):
			return nil, err
		default:
			return nil, unavailable(err)
		}
	}
	return nil, domain.ErrStoreConflict.WithDetails(fmt.Sprintf("%d attempts on %s", s.retries, key))
}

// Publish sends payload with PUBLISH.
func (s *Store) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := s.client.Publish(ctx, channel, payload).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Subscribe subscribes to channel. The returned channel is closed when ctx is
// done or the connection is closed.
func (s *Store) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ps := s.client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, unavailable(err)
	}

	out := make(chan []byte, 64)
	msgs := ps.Channel()
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping checks the connection with PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func unavailable(err error) error {
	if domain.IsDomainError(err, "") {
		return err
	}
	return domain.ErrStoreUnavailable.WithCause(err)
}
