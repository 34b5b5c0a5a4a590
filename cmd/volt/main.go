// Command volt runs Volt's HTTP edge: a thin translation layer that
// exposes the in-process Cluster core over HTTP/JSON, per spec.md §6.
// The core itself has no HTTP dependency: no internal package imports
// net/http.
//
// Configuration:
//   - VOLT_HOST: bind interface (default "0.0.0.0")
//   - VOLT_PORT: bind port (default 3000)
//   - VOLT_NODE_COUNT: nodes seeded at startup, named "node1".."nodeN" (default 3)
//   - VOLT_VIRTUAL_NODES: ring virtual positions per node (default 100)
//   - VOLT_REPLICATION_FACTOR: write fan-out width (default 2)
//   - VOLT_TICK_INTERVAL_MS: expiration sweep cadence (default 10)
//
// Routes:
//
//	GET    /health      - 200 once the cluster has >= 1 node, else 503
//	GET    /kv/{key}     - 200 {"value": <string>} on hit, 404 on miss
//	POST   /kv/{key}     - {"value": <string>, "ttl_seconds"?: <int>}
//	DELETE /kv/{key}     - 200 {"deleted": <bool>}
//	GET    /json/{key}   - 200 {"value": <any-json>}, 404 on miss
//	POST   /json/{key}   - {"value": <any-json>, "ttl_seconds"?: <int>}
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dreamware/volt/internal/cluster"
	"github.com/dreamware/volt/internal/config"
)

// logFatal is a variable to allow mocking log.Fatal-equivalent exits in
// tests.
var logFatal = func(log *logrus.Entry, format string, args ...interface{}) {
	log.Fatalf(format, args...)
}

func main() {
	log := logrus.NewEntry(logrus.StandardLogger())

	cfg, err := config.FromEnv()
	if err != nil {
		logFatal(log, "config: %v", err)
	}

	c := cluster.New(cluster.Config{
		VirtualNodes:      cfg.VirtualNodes,
		ReplicationFactor: cfg.ReplicationFactor,
		TickInterval:      cfg.TickInterval,
	}, log)
	defer c.Close()

	for i := 1; i <= cfg.NodeCount; i++ {
		c.AddNode(fmt.Sprintf("node%d", i))
	}
	log.WithField("nodes", cfg.NodeCount).Info("cluster seeded")

	mux := http.NewServeMux()
	h := newHandlers(c, log)
	mux.HandleFunc("/health", h.health)
	mux.HandleFunc("/kv/", h.kv)
	mux.HandleFunc("/json/", h.json)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           requestID(log)(mux),
		ReadHeaderTimeout: 5 * time.Second, // Prevent slowloris attacks
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("volt listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logFatal(log, "listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("volt stopped")
}
