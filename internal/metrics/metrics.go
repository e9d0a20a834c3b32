package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	OutcomeFound   = "found"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeIgnored = "ignored"
)

var (
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookexplorer_searches_total",
		Help: "Total number of searches by outcome",
	}, []string{"outcome"})

	StaleResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookexplorer_stale_results_total",
		Help: "Lookup outcomes discarded because a newer search was issued",
	})

	LookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookexplorer_lookup_duration_seconds",
		Help:    "Duration of catalog lookups in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookexplorer_notifications_total",
		Help: "Notifications by delivery result",
	}, []string{"result"})
)

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logrus.Infof("metrics: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("metrics: server stopped: %v", err)
		}
	}()
}
