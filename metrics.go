package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// serveMetrics serves prometheus metrics on addr until ctx is done.
// A server failure is fatal.
func serveMetrics(ctx context.Context, quit context.CancelCauseFunc, addr string, app *Application, log *zap.SugaredLogger) {
	defer CatchPanicToContext(quit)

	reg := prometheus.NewRegistry()
	reg.MustRegister(app.stats.Collectors(app.Stressing)...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	context.AfterFunc(ctx, func() {
		srv.Close()
	})

	log.Infow("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		quit(fmt.Errorf("metrics server failed: %w", err))
	}
}
