// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the counters updated by the session flows.
type Metrics struct {
	registry *prometheus.Registry

	signIns        *prometheus.CounterVec
	tokensIssued   *prometheus.CounterVec
	refreshes      *prometheus.CounterVec
	revocations    prometheus.Counter
	csrfRejections prometheus.Counter
}

// New builds a Metrics on its own registry, with the standard Go and
// process collectors attached.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		signIns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "sign_ins_total",
			Help:      "Sign-in attempts by result.",
		}, []string{"result"}),
		tokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "tokens_issued_total",
			Help:      "Tokens minted by kind.",
		}, []string{"kind"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "refreshes_total",
			Help:      "Refresh rotations by result.",
		}, []string{"result"}),
		revocations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "revocations_total",
			Help:      "Access tokens placed on the deny-list.",
		}),
		csrfRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "auth",
			Name:      "csrf_rejections_total",
			Help:      "Requests rejected by the CSRF guard.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SignIn(result string) { m.signIns.WithLabelValues(result).Inc() }

func (m *Metrics) TokenIssued(kind string) { m.tokensIssued.WithLabelValues(kind).Inc() }

func (m *Metrics) Refresh(result string) { m.refreshes.WithLabelValues(result).Inc() }

func (m *Metrics) Revocation() { m.revocations.Inc() }

func (m *Metrics) CSRFRejection() { m.csrfRejections.Inc() }

// Label values used by the flows.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"

	KindAccess  = "access"
	KindRefresh = "refresh"
)
