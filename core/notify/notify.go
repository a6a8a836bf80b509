// Package notify delivers booked or cancelled appointments to downstream
// systems.
package notify

import (
	"context"
	"sync"

	"github.com/kilianp07/procsched/core/model"
)

// Notifier publishes an appointment change. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(ctx context.Context, appt model.Appointment) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, model.Appointment) error { return nil }

// Recorder keeps every notified appointment in memory. Err, when set, is
// returned from every call after recording.
type Recorder struct {
	mu   sync.Mutex
	sent []model.Appointment
	Err  error
}

func (r *Recorder) Notify(_ context.Context, appt model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, appt)
	return r.Err
}

// Sent returns a copy of the recorded appointments.
func (r *Recorder) Sent() []model.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Appointment(nil), r.sent...)
}
