// Package metrics exposes fleet health and HTTP traffic to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/ukydev/fleet-admin/internal/fleet"
)

// Metrics groups every collector the service registers.
type Metrics struct {
	HealthScore     prometheus.Gauge
	Vehicles        prometheus.Gauge
	ServiceStatus   *prometheus.GaugeVec
	DocumentStates  *prometheus.GaugeVec
	Alerts          *prometheus.GaugeVec
	AlertsPublished prometheus.Counter
	CacheLookups    *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HealthScore: f.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_health_score",
			Help: "Composite fleet health score (0-100)",
		}),
		Vehicles: f.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_vehicles",
			Help: "Number of vehicles in the fleet",
		}),
		ServiceStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fleet_service_status_vehicles",
			Help: "Vehicles per service status",
		}, []string{"status"}),
		DocumentStates: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fleet_documents",
			Help: "Evaluated documents per type and state",
		}, []string{"document", "state"}),
		Alerts: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fleet_alerts",
			Help: "Open alerts per status from the last sweep",
		}, []string{"status"}),
		AlertsPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "fleet_alert_broadcasts_total",
			Help: "Total number of alert broadcasts published",
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_analytics_cache_lookups_total",
			Help: "Analytics cache lookups by result",
		}, []string{"result"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"route", "method"}),
	}
}

// ObserveAnalytics publishes the fleet-level gauges of a.
func (m *Metrics) ObserveAnalytics(a fleet.FleetAnalytics) {
	m.HealthScore.Set(float64(a.HealthScore))
	m.Vehicles.Set(float64(a.VehicleCount))

	m.ServiceStatus.WithLabelValues(string(fleet.StatusOK)).Set(float64(a.Service.OK))
	m.ServiceStatus.WithLabelValues(string(fleet.StatusUpcoming)).Set(float64(a.Service.Upcoming))
	m.ServiceStatus.WithLabelValues(string(fleet.StatusOverdue)).Set(float64(a.Service.Overdue))

	for _, d := range a.Documents {
		doc := string(d.Document)
		m.DocumentStates.WithLabelValues(doc, fleet.StatusOK.DocumentState()).Set(float64(d.Valid))
		m.DocumentStates.WithLabelValues(doc, fleet.StatusUpcoming.DocumentState()).Set(float64(d.Expiring))
		m.DocumentStates.WithLabelValues(doc, fleet.StatusOverdue.DocumentState()).Set(float64(d.Expired))
	}
}

// ObserveAlerts records the alert counts of one sweep.
func (m *Metrics) ObserveAlerts(alerts []fleet.Alert) {
	overdue, upcoming := fleet.CountAlerts(alerts)
	m.Alerts.WithLabelValues(string(fleet.StatusOverdue)).Set(float64(overdue))
	m.Alerts.WithLabelValues(string(fleet.StatusUpcoming)).Set(float64(upcoming))
}

// ObserveCacheLookup counts one analytics cache lookup.
func (m *Metrics) ObserveCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument wraps next, counting requests and timing them under route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
		m.RequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
