package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("expected default host '0.0.0.0', got %q", cfg.Host)
	}
	if cfg.Port != 3000 {
		t.Errorf("expected default port 3000, got %d", cfg.Port)
	}
	if cfg.NodeCount != 3 {
		t.Errorf("expected default node count 3, got %d", cfg.NodeCount)
	}
	if cfg.VirtualNodes != 100 {
		t.Errorf("expected default virtual nodes 100, got %d", cfg.VirtualNodes)
	}
	if cfg.ReplicationFactor != 2 {
		t.Errorf("expected default replication factor 2, got %d", cfg.ReplicationFactor)
	}
	if cfg.TickInterval != 10*time.Millisecond {
		t.Errorf("expected default tick interval 10ms, got %v", cfg.TickInterval)
	}
	if cfg.Addr() != "0.0.0.0:3000" {
		t.Errorf("expected Addr() '0.0.0.0:3000', got %q", cfg.Addr())
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VOLT_HOST", "127.0.0.1")
	t.Setenv("VOLT_PORT", "9090")
	t.Setenv("VOLT_NODE_COUNT", "5")
	t.Setenv("VOLT_VIRTUAL_NODES", "200")
	t.Setenv("VOLT_REPLICATION_FACTOR", "3")
	t.Setenv("VOLT_TICK_INTERVAL_MS", "25")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("expected '127.0.0.1:9090', got %q", cfg.Addr())
	}
	if cfg.NodeCount != 5 {
		t.Errorf("expected 5, got %d", cfg.NodeCount)
	}
	if cfg.VirtualNodes != 200 {
		t.Errorf("expected 200, got %d", cfg.VirtualNodes)
	}
	if cfg.ReplicationFactor != 3 {
		t.Errorf("expected 3, got %d", cfg.ReplicationFactor)
	}
	if cfg.TickInterval != 25*time.Millisecond {
		t.Errorf("expected 25ms, got %v", cfg.TickInterval)
	}
}

func TestFromEnvInvalidInt(t *testing.T) {
	t.Setenv("VOLT_PORT", "not-a-number")

	if _, err := FromEnv(); err == nil {
		t.Errorf("expected error for invalid VOLT_PORT")
	}
}
