package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	xerrors "github.com/MomoChenisMe/xyflow-sub001/pkg/errors"
	"github.com/MomoChenisMe/xyflow-sub001/pkg/observability/prom"
)

// startMetrics installs Prometheus hooks and serves /metrics on addr until
// ctx is done. It returns the bound address.
func (c *CLI) startMetrics(ctx context.Context, addr string) (string, error) {
	reg := prometheus.NewRegistry()
	prom.New(reg).Install()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", xerrors.Wrap(xerrors.ErrCodeNetwork, err, "listen on %s", addr)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.Warn("metrics server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	bound := ln.Addr().String()
	c.Logger.Info("serving metrics", "addr", bound)
	return bound, nil
}
