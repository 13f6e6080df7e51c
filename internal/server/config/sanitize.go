package config

import (
	"maps"
	"strings"
)

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Security.EncryptionKey != "" {
		sanitized.Security.EncryptionKey = maskSecret(sanitized.Security.EncryptionKey)
	}
	if sanitized.Store.Redis.Password != "" {
		sanitized.Store.Redis.Password = maskSecret(sanitized.Store.Redis.Password)
	}
	if cfg.Decoy.BaitUsers != nil {
		sanitized.Decoy.BaitUsers = maps.Clone(cfg.Decoy.BaitUsers)
		for u, p := range sanitized.Decoy.BaitUsers {
			sanitized.Decoy.BaitUsers[u] = maskSecret(p)
		}
	}

	return &sanitized
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
