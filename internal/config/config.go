// Package config reads Volt's process configuration from the
// environment. There is no file-based or flag-based configuration
// surface; every setting here is read once at startup and treated as
// immutable for the process lifetime (spec.md §6/§9).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is Volt's full process configuration.
type Config struct {
	// Host is the interface the HTTP edge binds to.
	Host string
	// Port is the TCP port the HTTP edge listens on.
	Port int
	// NodeCount is how many Volt nodes to seed the cluster with at
	// startup (named "node1".."nodeN").
	NodeCount int
	// VirtualNodes is V, the number of ring positions per logical node.
	VirtualNodes int
	// ReplicationFactor is R, the number of nodes each write fans out to.
	ReplicationFactor int
	// TickInterval is the per-node expiration sweep cadence.
	TickInterval time.Duration
}

// Addr returns the host:port pair FromEnv's launcher binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FromEnv reads Config from the process environment. VOLT_HOST,
// VOLT_PORT, and VOLT_NODE_COUNT are spec.md §6's documented launcher
// environment; VOLT_VIRTUAL_NODES, VOLT_REPLICATION_FACTOR, and
// VOLT_TICK_INTERVAL_MS extend that surface to cover the Cluster
// construction parameters spec.md §6 leaves to the launcher's
// discretion:
//
//	VOLT_HOST                 default "0.0.0.0"
//	VOLT_PORT                 default 3000
//	VOLT_NODE_COUNT           default 3
//	VOLT_VIRTUAL_NODES        default 100
//	VOLT_REPLICATION_FACTOR   default 2
//	VOLT_TICK_INTERVAL_MS     default 10
//
// Returns an error rather than terminating the process so callers (and
// tests) can decide how to react to misconfiguration.
func FromEnv() (Config, error) {
	port, err := getenvInt("VOLT_PORT", 3000)
	if err != nil {
		return Config{}, err
	}
	nodeCount, err := getenvInt("VOLT_NODE_COUNT", 3)
	if err != nil {
		return Config{}, err
	}
	virtualNodes, err := getenvInt("VOLT_VIRTUAL_NODES", 100)
	if err != nil {
		return Config{}, err
	}
	replicationFactor, err := getenvInt("VOLT_REPLICATION_FACTOR", 2)
	if err != nil {
		return Config{}, err
	}
	tickMillis, err := getenvInt("VOLT_TICK_INTERVAL_MS", 10)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Host:              getenv("VOLT_HOST", "0.0.0.0"),
		Port:              port,
		NodeCount:         nodeCount,
		VirtualNodes:      virtualNodes,
		ReplicationFactor: replicationFactor,
		TickInterval:      time.Duration(tickMillis) * time.Millisecond,
	}, nil
}

// getenv returns the environment variable k, or def if it's unset or
// empty.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvInt parses the environment variable k as an int, or returns def
// if it's unset or empty. An invalid (non-integer) value is an error:
// unlike a missing one, it's almost certainly an operator mistake worth
// surfacing rather than silently falling back.
func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s=%q: %w", k, v, err)
	}
	return n, nil
}
