package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soty", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "soty", Name: "http_request_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	Recalculations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "soty", Name: "totals_recalc_seconds", Help: "Totals recalculation latency",
		Buckets: prometheus.DefBuckets,
	})
	SnapshotsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "soty", Name: "snapshots_created_total", Help: "Snapshot generations created",
	})
	UnreadNotifications = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "soty", Name: "unread_notifications", Help: "Unseen participation notifications",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "soty", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, Recalculations, SnapshotsCreated, UnreadNotifications, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRecalc(d time.Duration) { Recalculations.Observe(d.Seconds()) }
