package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/miradorstack/mirador-twin/internal/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MIRADOR_TWIN_CONFIG", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":50051" || cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Models.Thermal.HotspotLimit != 118 || cfg.Models.Aging.FailureDP != 200 {
		t.Fatalf("unexpected model defaults %+v", cfg.Models)
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":6000"
cache:
  enabled: true
  backend: memory
  simulationTTL: 30s
models:
  thermal:
    hotspotLimit: 110
  dga:
    limits:
      C2H2: {attention: 3, alarm: 35}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":6000" {
		t.Fatalf("expected address override, got %s", cfg.Server.Address)
	}
	if cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("expected untouched default, got %s", cfg.Server.MetricsAddress)
	}
	if cfg.Cache.SimulationTTL != 30*time.Second {
		t.Fatalf("unexpected ttl %s", cfg.Cache.SimulationTTL)
	}
	if cfg.Models.Thermal.HotspotLimit != 110 || cfg.Models.Thermal.K1 != 55 {
		t.Fatalf("unexpected thermal config %+v", cfg.Models.Thermal)
	}
	if limit := cfg.Models.DGA.Limits["C2H2"]; limit.Alarm != 35 {
		t.Fatalf("unexpected C2H2 limit %+v", limit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MIRADOR_TWIN_SERVER_ADDRESS", ":7000")
	t.Setenv("MIRADOR_TWIN_LOG_FORMAT", "json")
	t.Setenv("MIRADOR_TWIN_CACHE_ENABLED", "true")
	t.Setenv("MIRADOR_TWIN_CACHE_BACKEND", "REDIS")
	t.Setenv("MIRADOR_TWIN_CACHE_ADDR", "localhost:6379")
	t.Setenv("MIRADOR_TWIN_C2H2_ALARM_PPM", "250")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":7000" || !cfg.Logging.JSON {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Cache.Backend != CacheBackendRedis || cfg.Cache.Addr != "localhost:6379" {
		t.Fatalf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Models.Simulator.C2H2AlarmPPM != 250 {
		t.Fatalf("unexpected alarm %v", cfg.Models.Simulator.C2H2AlarmPPM)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"redis without addr": "cache:\n  enabled: true\n  backend: redis\n",
		"unknown backend":    "cache:\n  enabled: true\n  backend: memcached\n",
		"bad thermal":        "models:\n  thermal:\n    k1: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("load shipped config: %v", err)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Backend != CacheBackendMemory {
		t.Fatalf("unexpected cache settings %+v", cfg.Cache)
	}
	if !reflect.DeepEqual(cfg.Models, engine.DefaultConfig()) {
		t.Fatalf("shipped model coefficients drifted from defaults: %+v", cfg.Models)
	}
}
