package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives advisory events worth counting. The zero value of Nop
// discards them.
type Recorder interface {
	EvaluationCompleted(admissionReady bool, eligible int)
	CatalogReloaded(ok bool, fatal, warnings int)
}

type Nop struct{}

func (Nop) EvaluationCompleted(bool, int)  {}
func (Nop) CatalogReloaded(bool, int, int) {}

// Prometheus records into collectors registered on a registry.
type Prometheus struct {
	evaluations   *prometheus.CounterVec
	eligible      prometheus.Histogram
	reloads       *prometheus.CounterVec
	catalogIssues *prometheus.GaugeVec
}

// NewPrometheus registers the collectors on reg. Pass
// prometheus.DefaultRegisterer to expose them on the /metrics handler.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admit",
			Name:      "evaluations_total",
			Help:      "Completed eligibility evaluations by admission readiness.",
		}, []string{"outcome"}),
		eligible: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "admit",
			Name:      "eligible_programs",
			Help:      "Eligible programs per evaluation.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admit",
			Name:      "catalog_reloads_total",
			Help:      "Catalog reload attempts by result.",
		}, []string{"result"}),
		catalogIssues: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "admit",
			Name:      "catalog_issues",
			Help:      "Issues found by the last catalog validation, by severity.",
		}, []string{"severity"}),
	}
}

func (p *Prometheus) EvaluationCompleted(admissionReady bool, eligible int) {
	outcome := "ready"
	if !admissionReady {
		outcome = "not_ready"
	}
	p.evaluations.WithLabelValues(outcome).Inc()
	p.eligible.Observe(float64(eligible))
}

func (p *Prometheus) CatalogReloaded(ok bool, fatal, warnings int) {
	result := "applied"
	if !ok {
		result = "rejected"
	}
	p.reloads.WithLabelValues(result).Inc()
	p.catalogIssues.WithLabelValues("fatal").Set(float64(fatal))
	p.catalogIssues.WithLabelValues("warning").Set(float64(warnings))
}
