package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/procsched/core/events"
	coremetrics "github.com/kilianp07/procsched/core/metrics"
	"github.com/kilianp07/procsched/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records cancellations
// and notification deliveries. It stops when the context is canceled or the
// bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				collect(sink, ev)
			}
		}
	}()
}

func collect(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.AppointmentEvent:
		if e.Action != events.AppointmentCancelled {
			return
		}
		if r, ok := sink.(coremetrics.CancellationRecorder); ok {
			_ = r.RecordCancellation(coremetrics.CancellationEvent{
				AppointmentID: e.Appointment.ID,
				SlotID:        e.Appointment.SlotID,
				Time:          e.Time,
			})
		}
	case events.NotificationEvent:
		if r, ok := sink.(coremetrics.NotificationRecorder); ok {
			errStr := ""
			if e.Err != nil {
				errStr = e.Err.Error()
			}
			_ = r.RecordNotification(coremetrics.NotificationEvent{
				AppointmentID: e.AppointmentID,
				Delivered:     e.Delivered,
				Latency:       e.Latency,
				Error:         errStr,
				Time:          time.Now(),
			})
		}
	}
}
