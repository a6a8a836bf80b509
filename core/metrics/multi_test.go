package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	runs, appts int
}

func (r *recordSink) RecordRun(RunEvent) error { r.runs++; return nil }

func (r *recordSink) RecordAppointments([]AppointmentEvent) error { r.appts++; return nil }

type runOnly struct{ runs int }

func (r *runOnly) RecordRun(RunEvent) error { r.runs++; return nil }

type failing struct{}

func (failing) RecordRun(RunEvent) error { return errors.New("boom") }

func TestMultiSink_ForwardsToSupportingSinks(t *testing.T) {
	s1 := &recordSink{}
	s2 := &runOnly{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordRun(RunEvent{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordAppointments(nil); err != nil {
		t.Fatalf("record appointments: %v", err)
	}
	if s1.runs != 1 || s2.runs != 1 || s1.appts != 1 {
		t.Fatalf("unexpected counts %+v %+v", s1, s2)
	}
}

func TestMultiSink_ReturnsFirstError(t *testing.T) {
	after := &runOnly{}
	m := NewMultiSink(failing{}, after)
	if err := m.RecordRun(RunEvent{}); err == nil {
		t.Fatal("expected error")
	}
	if after.runs != 0 {
		t.Fatal("sink after failure should not be called")
	}
}
