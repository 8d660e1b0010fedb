package commands

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sumatoshi-tech/dupcluster/internal/config"
)

// readHeaderTimeout bounds the metrics server's header read phase.
const readHeaderTimeout = 5 * time.Second

// maybeServeMetrics starts a background Prometheus exposition server when
// cfg.Enabled is set, returning a Registerer for pkg/cluster.NewMetrics.
// Returns nil if metrics are disabled, in which case callers should
// construct their Clusterer without cluster.WithMetrics.
func maybeServeMetrics(cfg config.MetricsConfig, logger *slog.Logger) prometheus.Registerer {
	if !cfg.Enabled {
		return nil
	}

	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	logger.Info("metrics server listening", "addr", cfg.Addr)

	return reg
}
