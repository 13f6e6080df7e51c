package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/honeymesh/pkg/crypto/adaptive"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStore(&cfg.Store); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Alerts.Channel) == "" {
		return errors.New("alerts.channel is required")
	}
	if k := cfg.Security.EncryptionKey; k != "" && len(k) < adaptive.MinSecretLength {
		return fmt.Errorf("security.encryption_key must be at least %d bytes", adaptive.MinSecretLength)
	}
	if err := verifyDecoy(&cfg.Decoy); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err)
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	return nil
}

func verifyStore(cfg *StoreSection) error {
	if cfg.OpTimeout <= 0 {
		return errors.New("store.op_timeout must be positive")
	}
	switch strings.ToLower(cfg.Backend) {
	case "redis":
		if cfg.Redis.Addr == "" {
			return errors.New("store.redis.addr is required for the redis backend")
		}
		if cfg.Redis.DB < 0 {
			return errors.New("store.redis.db must not be negative")
		}
	case "badger":
		if cfg.Badger.Dir == "" {
			return errors.New("store.badger.dir is required for the badger backend")
		}
	case "memory":
	default:
		return fmt.Errorf("store.backend %q is not one of redis, badger, memory", cfg.Backend)
	}
	return nil
}

func verifyDecoy(cfg *DecoySection) error {
	if cfg.RateLimit < 0 {
		return errors.New("decoy.rate_limit must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateBurst < 1 {
		return errors.New("decoy.rate_burst must be at least 1 when rate limiting is enabled")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is invalid", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q is invalid", cfg.Format)
	}
	return nil
}
