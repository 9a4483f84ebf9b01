package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConflictChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evalsvc", Name: "conflict_checks_total", Help: "Schedule conflict checks by result",
	}, []string{"result"})
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evalsvc", Name: "submissions_total", Help: "Evaluation submissions by mode and result",
	}, []string{"mode", "result"})
	SkippedRequired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "evalsvc", Name: "answers_skipped_required_total", Help: "Required competency items left without a mapped answer",
	})
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evalsvc", Name: "http_requests_total", Help: "API requests by route and status code",
	}, []string{"route", "code"})
	NotifyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "evalsvc", Name: "notify_errors_total", Help: "Failed notifications",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "evalsvc", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ConflictChecks, Submissions, SkippedRequired, HTTPRequests, NotifyErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveConflictCheck(conflict bool) {
	if conflict {
		ConflictChecks.WithLabelValues("conflict").Inc()
		return
	}
	ConflictChecks.WithLabelValues("free").Inc()
}
