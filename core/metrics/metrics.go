package metrics

import "time"

// RunEvent summarises one optimizer run.
type RunEvent struct {
	RunID       string
	Goal        string
	Assigner    string
	Procedures  int
	Scheduled   int
	Unscheduled int
	Slots       int
	Score       float64
	Duration    time.Duration
	DryRun      bool
	Time        time.Time
}

// MetricsSink records optimizer runs.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// AppointmentEvent describes an appointment created by a run.
type AppointmentEvent struct {
	RunID         string
	AppointmentID int64
	ProcedureID   int64
	ResourceID    int64
	ResourceType  string
	Priority      int
	// LeadDays is the number of calendar days between the run and the
	// appointment date.
	LeadDays int
	Time     time.Time
}

// AppointmentRecorder records created appointments.
type AppointmentRecorder interface {
	RecordAppointments(evs []AppointmentEvent) error
}

// UnscheduledEvent describes a procedure a run could not place.
type UnscheduledEvent struct {
	RunID       string
	ProcedureID int64
	Priority    int
	Reason      string
	Time        time.Time
}

// UnscheduledRecorder records procedures left without a slot.
type UnscheduledRecorder interface {
	RecordUnscheduled(evs []UnscheduledEvent) error
}

// CancellationEvent records an appointment cancellation.
type CancellationEvent struct {
	AppointmentID int64
	SlotID        int64
	Time          time.Time
}

// CancellationRecorder records cancellations.
type CancellationRecorder interface {
	RecordCancellation(ev CancellationEvent) error
}

// NotificationEvent captures the delivery of an appointment notification.
type NotificationEvent struct {
	AppointmentID int64
	Delivered     bool
	Latency       time.Duration
	Error         string
	Time          time.Time
}

// NotificationRecorder records notification deliveries.
type NotificationRecorder interface {
	RecordNotification(ev NotificationEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error                    { return nil }
func (NopSink) RecordAppointments([]AppointmentEvent) error { return nil }
func (NopSink) RecordUnscheduled([]UnscheduledEvent) error  { return nil }
func (NopSink) RecordCancellation(CancellationEvent) error  { return nil }
func (NopSink) RecordNotification(NotificationEvent) error  { return nil }
