// Package metrics holds the prometheus instruments for a freegrab run.
//
// Instruments are registered with the default registry through promauto and
// exposed by Serve on /metrics when a listen address is configured.
//
//   - freegrab_pages_fetched_total (Counter): catalog pages fetched
//   - freegrab_items_seen_total (Counter): catalog items delivered by the paginator
//   - freegrab_items_skipped_total{reason} (Counter): items not purchased
//   - freegrab_purchases_total (Counter): successful purchases
//   - freegrab_purchase_failures_total{code} (Counter): failed purchase attempts
//   - freegrab_rate_limit_cooldowns_total (Counter): rate-limit cool-downs taken
//   - freegrab_transport_retries_total (Counter): purchase retries after transport failures
//   - freegrab_request_duration_seconds{endpoint} (Histogram): HTTP request duration
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"freegrab/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons
const (
	SkipOwned    = "owned"
	SkipReserved = "reserved_creator"
	SkipNoPrice  = "no_price"
)

// FailureTransport labels purchase failures that never produced an error code
const FailureTransport = "transport"

var (
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "freegrab_pages_fetched_total",
		Help: "Total catalog pages fetched",
	})

	ItemsSeen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "freegrab_items_seen_total",
		Help: "Total catalog items delivered by the paginator",
	})

	ItemsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "freegrab_items_skipped_total",
		Help: "Total items not purchased by reason",
	}, []string{"reason"})

	Purchases = promauto.NewCounter(prometheus.CounterOpts{
		Name: "freegrab_purchases_total",
		Help: "Total successful purchases",
	})

	PurchaseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "freegrab_purchase_failures_total",
		Help: "Total failed purchase attempts by marketplace error code",
	}, []string{"code"})

	RateLimitCooldowns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "freegrab_rate_limit_cooldowns_total",
		Help: "Total rate-limit cool-downs taken",
	})

	TransportRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "freegrab_transport_retries_total",
		Help: "Total purchase retries caused by transport failures",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "freegrab_request_duration_seconds",
		Help:    "Marketplace request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})
)

// Handler returns the /metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is done
func Serve(ctx context.Context, addr string, log logger.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serve(ctx, ln, log)
}

func serve(ctx context.Context, ln net.Listener, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.InfoWithFields("metrics listener started", map[string]interface{}{
		"addr": ln.Addr().String(),
	})

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
