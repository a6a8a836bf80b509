package metrics

import (
	"errors"
	"strconv"

	coremetrics "github.com/kilianp07/procsched/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records scheduling activity in Prometheus metrics.
type PromSink struct {
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	score         prometheus.Gauge
	unscheduled   *prometheus.CounterVec
	appointments  *prometheus.CounterVec
	leadDays      prometheus.Histogram
	cancellations prometheus.Counter
	notifications *prometheus.CounterVec
}

// NewPromSink registers metrics on the default Prometheus registerer. The
// /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.runs, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procsched_runs_total",
		Help: "Total number of optimizer runs",
	}, []string{"goal", "assigner", "dry_run"})); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "procsched_run_duration_seconds",
		Help:    "Wall time of optimizer runs",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"assigner"})); err != nil {
		return nil, err
	}
	if s.score, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "procsched_run_score",
		Help: "Optimization score of the last run",
	})); err != nil {
		return nil, err
	}
	if s.unscheduled, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procsched_procedures_unscheduled_total",
		Help: "Procedures a run could not place",
	}, []string{"reason", "priority"})); err != nil {
		return nil, err
	}
	if s.appointments, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procsched_appointments_total",
		Help: "Appointments booked by optimizer runs",
	}, []string{"resource_type"})); err != nil {
		return nil, err
	}
	if s.leadDays, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "procsched_appointment_lead_days",
		Help:    "Days between a run and the appointments it books",
		Buckets: []float64{0, 1, 2, 3, 5, 7, 14, 28},
	})); err != nil {
		return nil, err
	}
	if s.cancellations, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "procsched_cancellations_total",
		Help: "Cancelled appointments",
	})); err != nil {
		return nil, err
	}
	if s.notifications, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "procsched_notifications_total",
		Help: "Appointment notifications by delivery result",
	}, []string{"delivered"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordRun counts the run and tracks its score and duration.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Goal, ev.Assigner, strconv.FormatBool(ev.DryRun)).Inc()
	s.runDuration.WithLabelValues(ev.Assigner).Observe(ev.Duration.Seconds())
	s.score.Set(ev.Score)
	return nil
}

// RecordAppointments counts booked appointments per resource type.
func (s *PromSink) RecordAppointments(evs []coremetrics.AppointmentEvent) error {
	for _, ev := range evs {
		s.appointments.WithLabelValues(ev.ResourceType).Inc()
		s.leadDays.Observe(float64(ev.LeadDays))
	}
	return nil
}

// RecordUnscheduled counts unplaced procedures by reason and priority.
func (s *PromSink) RecordUnscheduled(evs []coremetrics.UnscheduledEvent) error {
	for _, ev := range evs {
		s.unscheduled.WithLabelValues(ev.Reason, strconv.Itoa(ev.Priority)).Inc()
	}
	return nil
}

// RecordCancellation counts a cancellation.
func (s *PromSink) RecordCancellation(coremetrics.CancellationEvent) error {
	s.cancellations.Inc()
	return nil
}

// RecordNotification counts a notification delivery.
func (s *PromSink) RecordNotification(ev coremetrics.NotificationEvent) error {
	s.notifications.WithLabelValues(strconv.FormatBool(ev.Delivered)).Inc()
	return nil
}
