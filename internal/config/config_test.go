package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_MAX_CONNS", "DB_MIN_CONNS", "REFRESH_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBMaxConns != 10 || cfg.DBMinConns != 2 {
		t.Errorf("pool bounds = %d/%d, want 10/2", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.RefreshInterval != 6*time.Hour {
		t.Errorf("RefreshInterval = %v, want 6h", cfg.RefreshInterval)
	}
}

func TestLoadRefreshIntervalZeroDisables(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "0")

	cfg := Load()
	if cfg.RefreshInterval != 0 {
		t.Errorf("RefreshInterval = %v, want 0 (worker disabled)", cfg.RefreshInterval)
	}
}

func TestLoadRefreshIntervalInvalidFallsBack(t *testing.T) {
	for _, v := range []string{"soon", "-1h"} {
		t.Setenv("REFRESH_INTERVAL", v)

		cfg := Load()
		if cfg.RefreshInterval != 6*time.Hour {
			t.Errorf("REFRESH_INTERVAL=%q: RefreshInterval = %v, want 6h fallback", v, cfg.RefreshInterval)
		}
	}
}

func TestLoadPoolBoundsFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MIN_CONNS", "5")

	cfg := Load()
	if cfg.DBMaxConns != 25 || cfg.DBMinConns != 5 {
		t.Errorf("pool bounds = %d/%d, want 25/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
}
