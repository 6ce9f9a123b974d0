package greyfilter

import (
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	bypassNoSender    string = "no_sender"
	bypassNoRecipient string = "no_recipient"
	bypassOtherPhase  string = "other_phase"
)

var (
	decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "greyfilter",
			Name:      "decisions_total",
			Help:      "Number of recipient checks answered, by outcome",
		},
		[]string{"outcome"},
	)
	storeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "greyfilter",
			Name:      "store_failures_total",
			Help:      "Number of decision store calls that failed and were answered with proceed",
		},
	)
	bypassed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "greyfilter",
			Name:      "bypassed_total",
			Help:      "Number of filter requests answered with proceed without asking the decision store",
		},
		[]string{"reason"},
	)
	sessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "greyfilter",
			Name:      "sessions",
			Help:      "Number of sessions with a sender on file",
		},
	)
)

func init() {
	prometheus.MustRegister(decisions)
	prometheus.MustRegister(storeFailures)
	prometheus.MustRegister(bypassed)
	prometheus.MustRegister(sessions)
}

// ServeMetrics exposes /metrics on addr until the returned server is closed.
func ServeMetrics(addr string) (*http.Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux}

	go func() {
		log.WithField("address", l.Addr().String()).Info("Serving metrics")
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Metrics listener failed")
		}
	}()

	return srv, nil
}
