package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.CompFactor != 1.4 {
		t.Errorf("CompFactor: got %g, want 1.4", cfg.CompFactor)
	}
	if cfg.CompWindow != 5 {
		t.Errorf("CompWindow: got %d, want 5", cfg.CompWindow)
	}
	if cfg.LogInterval != 60*time.Second {
		t.Errorf("LogInterval: got %s, want 60s", cfg.LogInterval)
	}
	if cfg.ProximityWake != 1500 {
		t.Errorf("ProximityWake: got %g, want 1500", cfg.ProximityWake)
	}
	if cfg.MQTTBroker != "" {
		t.Errorf("MQTTBroker should default to disabled, got %q", cfg.MQTTBroker)
	}
}

func TestLoadRejectsZeroFactor(t *testing.T) {
	t.Setenv("ENVIRO_COMP_FACTOR", "0")
	if _, err := Load(); err == nil {
		t.Fatal("a compensation factor of 0 must be rejected at load time")
	}
}

func TestLoadRejectsNegativeFactor(t *testing.T) {
	t.Setenv("ENVIRO_COMP_FACTOR", "-2.25")
	if _, err := Load(); err == nil {
		t.Fatal("a negative compensation factor must be rejected")
	}
}

func TestLoadLegacyFactor(t *testing.T) {
	t.Setenv("ENVIRO_COMP_FACTOR", "2.25")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CompFactor != 2.25 {
		t.Errorf("CompFactor: got %g, want 2.25", cfg.CompFactor)
	}
}

func TestLoadBareSecondsInterval(t *testing.T) {
	t.Setenv("ENVIRO_LOG_INTERVAL", "120")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogInterval != 120*time.Second {
		t.Errorf("LogInterval: got %s, want 120s", cfg.LogInterval)
	}
}
