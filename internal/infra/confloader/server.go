package confloader

import (
	"fmt"

	"github.com/yndnr/honeymesh/internal/server/config"
)

// LoadServerConfig builds the server configuration from defaults, the YAML
// file at path (optional) and HONEYMESH_ environment variables, then verifies it.
func LoadServerConfig(path string, opts ...Option) (*config.ServerConfig, error) {
	l := NewLoader(append([]Option{WithConfigFile(path)}, opts...)...)

	cfg := config.Default()
	if err := l.loadSources(); err != nil {
		return nil, err
	}
	// A configured bait user list replaces the defaults instead of merging.
	if l.Exists("decoy.bait_users") {
		cfg.Decoy.BaitUsers = nil
	}
	if err := l.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	l.loaded = true

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
