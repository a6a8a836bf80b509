package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/procsched/core/metrics"
)

func newTestPromSink(t *testing.T, reg prometheus.Registerer) *PromSink {
	t.Helper()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink got %T", sinkIf)
	}
	return sink
}

func TestPromSink_RecordRun(t *testing.T) {
	sink := newTestPromSink(t, prometheus.NewRegistry())
	if err := sink.RecordRun(coremetrics.RunEvent{Goal: "efficiency", Assigner: "greedy", Score: 0.48, Duration: 3 * time.Millisecond}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	expected := `
# HELP procsched_runs_total Total number of optimizer runs
# TYPE procsched_runs_total counter
procsched_runs_total{assigner="greedy",dry_run="false",goal="efficiency"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if got := testutil.ToFloat64(sink.score); got != 0.48 {
		t.Fatalf("expected score gauge 0.48 got %v", got)
	}
}

func TestPromSink_RecordOutcomes(t *testing.T) {
	sink := newTestPromSink(t, prometheus.NewRegistry())
	_ = sink.RecordAppointments([]coremetrics.AppointmentEvent{
		{ResourceType: "X-Ray Room", LeadDays: 1},
		{ResourceType: "X-Ray Room", LeadDays: 3},
		{ResourceType: "Lab", LeadDays: 0},
	})
	_ = sink.RecordUnscheduled([]coremetrics.UnscheduledEvent{{Reason: "no_feasible_slot", Priority: 5}})
	_ = sink.RecordCancellation(coremetrics.CancellationEvent{AppointmentID: 1})
	_ = sink.RecordNotification(coremetrics.NotificationEvent{Delivered: true})

	if got := testutil.ToFloat64(sink.appointments.WithLabelValues("X-Ray Room")); got != 2 {
		t.Fatalf("expected 2 x-ray appointments got %v", got)
	}
	if got := testutil.ToFloat64(sink.unscheduled.WithLabelValues("no_feasible_slot", "5")); got != 1 {
		t.Fatalf("expected 1 unscheduled got %v", got)
	}
	if got := testutil.ToFloat64(sink.cancellations); got != 1 {
		t.Fatalf("expected 1 cancellation got %v", got)
	}
	if got := testutil.ToFloat64(sink.notifications.WithLabelValues("true")); got != 1 {
		t.Fatalf("expected 1 notification got %v", got)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newTestPromSink(t, reg)
	second := newTestPromSink(t, reg)
	_ = first.RecordCancellation(coremetrics.CancellationEvent{})
	_ = second.RecordCancellation(coremetrics.CancellationEvent{})
	if got := testutil.ToFloat64(first.cancellations); got != 2 {
		t.Fatalf("expected shared counter at 2 got %v", got)
	}
}
