package metrics

// MultiSink fans events out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the run to all sinks, returning the first error.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordAppointments forwards appointments to sinks supporting them.
func (m *MultiSink) RecordAppointments(evs []AppointmentEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AppointmentRecorder); ok {
			if err := rec.RecordAppointments(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordUnscheduled forwards unscheduled procedures.
func (m *MultiSink) RecordUnscheduled(evs []UnscheduledEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(UnscheduledRecorder); ok {
			if err := rec.RecordUnscheduled(evs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordCancellation forwards cancellations.
func (m *MultiSink) RecordCancellation(ev CancellationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CancellationRecorder); ok {
			if err := rec.RecordCancellation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordNotification forwards notification deliveries.
func (m *MultiSink) RecordNotification(ev NotificationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(NotificationRecorder); ok {
			if err := rec.RecordNotification(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
