package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"site-checker/internal/domain"
)

// Module provides the metrics collector
var Module = fx.Options(
	fx.Provide(prometheus.NewRegistry),
	fx.Provide(NewCollector),
	fx.Provide(func(c *Collector) domain.MetricsCollector { return c }),
)

const namespace = "sitecheck"

type Collector struct {
	logger             *zap.Logger
	registry           *prometheus.Registry
	probeOutcomes      *prometheus.CounterVec
	probeDuration      *prometheus.HistogramVec
	assessments        *prometheus.CounterVec
	assessmentDuration *prometheus.HistogramVec
	narrativeIssues    *prometheus.CounterVec
	checksTotal        *prometheus.CounterVec
	checksDuration     *prometheus.HistogramVec
	lastCheckVerdict   *prometheus.GaugeVec
	workerStarts       *prometheus.CounterVec
	workerStops        *prometheus.CounterVec
	activeWorkers      prometheus.Gauge
	jobsScheduled      *prometheus.CounterVec
}

// NewCollector registers every metric on registry together with the Go
// runtime and process collectors.
func NewCollector(registry *prometheus.Registry, logger *zap.Logger) *Collector {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Collector{
		logger:   logger.With(zap.String("component", "metrics")),
		registry: registry,
		probeOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probe_outcomes_total",
				Help:      "Probe outcomes by probe and result kind",
			},
			[]string{"probe", "result"},
		),
		probeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "probe_duration_seconds",
				Help:      "Duration of individual probes",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"probe"},
		),
		assessments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assessments_total",
				Help:      "Assessments performed by mode and verdict",
			},
			[]string{"mode", "verdict"},
		),
		assessmentDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "assessment_duration_seconds",
				Help:      "Duration of assessments including narrative generation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		narrativeIssues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "narrative_issues_total",
				Help:      "Narratives that failed or carried no verdict",
			},
			[]string{"issue"},
		),
		checksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "monitor_checks_total",
				Help:      "Scheduled checks of watched sites",
			},
			[]string{"site", "verdict"},
		),
		checksDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "monitor_check_duration_seconds",
				Help:      "Duration of scheduled checks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"site"},
		),
		lastCheckVerdict: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "monitor_site_safe",
				Help:      "Latest verdict of a watched site (1 for Safe, 0 otherwise)",
			},
			[]string{"site"},
		),
		workerStarts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_starts_total",
				Help:      "Total number of worker starts",
			},
			[]string{"worker_id"},
		),
		workerStops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_stops_total",
				Help:      "Total number of worker stops",
			},
			[]string{"worker_id"},
		),
		activeWorkers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_workers",
				Help:      "Number of currently active workers",
			},
		),
		jobsScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_scheduled_total",
				Help:      "Total number of jobs scheduled",
			},
			[]string{"site"},
		),
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordProbe(probe domain.ProbeName, kind domain.ErrorKind, duration time.Duration) {
	result := "success"
	if kind != "" {
		result = string(kind)
	}
	c.probeOutcomes.WithLabelValues(string(probe), result).Inc()
	c.probeDuration.WithLabelValues(string(probe)).Observe(duration.Seconds())
}

func (c *Collector) RecordAssessment(mode string, verdict domain.Verdict, duration time.Duration) {
	label := string(verdict)
	if label == "" {
		label = "none"
	}
	c.assessments.WithLabelValues(mode, label).Inc()
	c.assessmentDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (c *Collector) RecordNarrativeIssue(issue string) {
	c.narrativeIssues.WithLabelValues(issue).Inc()
}

func (c *Collector) RecordCheck(result domain.CheckResult) {
	site := string(result.Site.Name)

	verdict := "error"
	if result.Assessment != nil {
		verdict = string(result.Assessment.Verdict)
	}
	c.checksTotal.WithLabelValues(site, verdict).Inc()
	c.checksDuration.WithLabelValues(site).Observe(result.Duration.Seconds())

	safe := 0.0
	if verdict == string(domain.VerdictSafe) {
		safe = 1.0
	}
	c.lastCheckVerdict.WithLabelValues(site).Set(safe)
}

func (c *Collector) RecordWorkerStart(workerID string) {
	c.workerStarts.WithLabelValues(workerID).Inc()
	c.activeWorkers.Inc()
}

func (c *Collector) RecordWorkerStop(workerID string) {
	c.workerStops.WithLabelValues(workerID).Inc()
	c.activeWorkers.Dec()
}

func (c *Collector) RecordSchedulerJob(siteName string) {
	c.jobsScheduled.WithLabelValues(siteName).Inc()
}
