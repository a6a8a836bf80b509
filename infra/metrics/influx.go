package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/procsched/core/metrics"
	"github.com/kilianp07/procsched/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(timeout time.Duration, pts ...*write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, p := range pts {
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun writes a schedule_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	p := write.NewPointWithMeasurement("schedule_run").
		AddTag("run_id", ev.RunID).
		AddTag("goal", ev.Goal).
		AddTag("assigner", ev.Assigner).
		AddTag("dry_run", strconv.FormatBool(ev.DryRun)).
		AddField("procedures", ev.Procedures).
		AddField("scheduled", ev.Scheduled).
		AddField("unscheduled", ev.Unscheduled).
		AddField("slots", ev.Slots).
		AddField("score", round3(ev.Score)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.write(5*time.Second, p)
}

// RecordAppointments writes one appointment_booked point per appointment.
func (s *InfluxSink) RecordAppointments(evs []coremetrics.AppointmentEvent) error {
	pts := make([]*write.Point, 0, len(evs))
	for _, ev := range evs {
		pts = append(pts, write.NewPointWithMeasurement("appointment_booked").
			AddTag("run_id", ev.RunID).
			AddTag("resource_type", ev.ResourceType).
			AddTag("priority", strconv.Itoa(ev.Priority)).
			AddField("appointment_id", ev.AppointmentID).
			AddField("procedure_id", ev.ProcedureID).
			AddField("resource_id", ev.ResourceID).
			AddField("lead_days", ev.LeadDays).
			SetTime(ev.Time))
	}
	return s.write(10*time.Second, pts...)
}

// RecordUnscheduled writes one procedure_unscheduled point per procedure.
func (s *InfluxSink) RecordUnscheduled(evs []coremetrics.UnscheduledEvent) error {
	pts := make([]*write.Point, 0, len(evs))
	for _, ev := range evs {
		pts = append(pts, write.NewPointWithMeasurement("procedure_unscheduled").
			AddTag("run_id", ev.RunID).
			AddTag("reason", ev.Reason).
			AddTag("priority", strconv.Itoa(ev.Priority)).
			AddField("procedure_id", ev.ProcedureID).
			SetTime(ev.Time))
	}
	return s.write(10*time.Second, pts...)
}

// RecordCancellation writes an appointment_cancelled point.
func (s *InfluxSink) RecordCancellation(ev coremetrics.CancellationEvent) error {
	p := write.NewPointWithMeasurement("appointment_cancelled").
		AddField("appointment_id", ev.AppointmentID).
		AddField("slot_id", ev.SlotID).
		SetTime(ev.Time)
	return s.write(5*time.Second, p)
}

// RecordNotification writes a notification_sent point.
func (s *InfluxSink) RecordNotification(ev coremetrics.NotificationEvent) error {
	p := write.NewPointWithMeasurement("notification_sent").
		AddTag("delivered", strconv.FormatBool(ev.Delivered)).
		AddField("appointment_id", ev.AppointmentID).
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000)).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.write(5*time.Second, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
