package confloader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testConfig struct {
	Store struct {
		Backend   string        `koanf:"backend"`
		OpTimeout time.Duration `koanf:"op_timeout"`
		Redis     struct {
			Addr string `koanf:"addr"`
		} `koanf:"redis"`
	} `koanf:"store"`
	Metrics struct {
		Enabled bool `koanf:"enabled"`
	} `koanf:"metrics"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "honeymesh.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader(WithEnvPrefix("TEST_"), WithConfigFile("/etc/x.yaml"))
	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want TEST_", l.envPrefix)
	}
	if l.filePath != "/etc/x.yaml" {
		t.Errorf("filePath = %q", l.filePath)
	}
	if NewLoader().envPrefix != DefaultEnvPrefix {
		t.Error("default prefix not applied")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: badger
  op_timeout: 250ms
metrics:
  enabled: true
`)
	l := NewLoader(WithConfigFile(path))

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Backend = %q, want badger", cfg.Store.Backend)
	}
	if cfg.Store.OpTimeout != 250*time.Millisecond {
		t.Errorf("OpTimeout = %v, want 250ms", cfg.Store.OpTimeout)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true")
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() = false after Load()")
	}
}

func TestLoader_LoadFile_Missing(t *testing.T) {
	if err := NewLoader().LoadFile("/nonexistent/honeymesh.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
	if err := NewLoader().LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
store:
  op_timeout: 1s
  redis:
    addr: "from-file:6379"
`)
	t.Setenv("HONEYMESH_STORE__REDIS__ADDR", "from-env:6379")
	t.Setenv("HONEYMESH_STORE__OP_TIMEOUT", "2s")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Redis.Addr != "from-env:6379" {
		t.Errorf("Redis.Addr = %q, want env value", cfg.Store.Redis.Addr)
	}
	if cfg.Store.OpTimeout != 2*time.Second {
		t.Errorf("OpTimeout = %v, want 2s", cfg.Store.OpTimeout)
	}
}

func TestLoader_KeepsPrefilledValues(t *testing.T) {
	path := writeConfig(t, "metrics:\n  enabled: true\n")

	var cfg testConfig
	cfg.Store.Backend = "redis"
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("Backend = %q, want prefilled redis", cfg.Store.Backend)
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"store.backend": "memory"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if got := l.GetString("store.backend"); got != "memory" {
		t.Errorf("store.backend = %q, want memory", got)
	}
	if !l.Exists("store") {
		t.Error("Exists(store) = false")
	}
}

func TestLoadServerConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  http:
    addr: "127.0.0.1:8080"
store:
  backend: memory
decoy:
  bait_users:
    radiology: xray
`)
	t.Setenv("HONEYMESH_LOG__LEVEL", "debug")

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("LoadServerConfig() error = %v", err)
	}
	if cfg.Server.HTTP.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q", cfg.Server.HTTP.Addr)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Backend = %q", cfg.Store.Backend)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Alerts.Channel != "security_alerts" {
		t.Errorf("Alerts.Channel = %q, want default", cfg.Alerts.Channel)
	}
	if len(cfg.Decoy.BaitUsers) != 1 || cfg.Decoy.BaitUsers["radiology"] != "xray" {
		t.Errorf("BaitUsers = %v, want only radiology", cfg.Decoy.BaitUsers)
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := LoadServerConfig("")
	if err != nil {
		t.Fatalf("LoadServerConfig() error = %v", err)
	}
	if cfg.Decoy.BaitUsers["doctor"] != "medical" {
		t.Errorf("BaitUsers = %v, want defaults", cfg.Decoy.BaitUsers)
	}
}

func TestLoadServerConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: etcd\n")

	_, err := LoadServerConfig(path)
	if err == nil || !strings.Contains(err.Error(), "store.backend") {
		t.Fatalf("LoadServerConfig() error = %v, want store.backend error", err)
	}
}
