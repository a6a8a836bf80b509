// Package store defines the record store the scheduling service reads its
// snapshots from and writes booked appointments to.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/procsched/core/model"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound         = errors.New("not found")
	ErrSlotTaken        = errors.New("time slot no longer available")
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
)

// AppointmentFilter narrows ListAppointments. Zero fields do not filter.
type AppointmentFilter struct {
	PatientID  int64
	ResourceID int64
	StartDate  time.Time
	EndDate    time.Time
	Status     model.AppointmentStatus
	Offset     int
	// Limit defaults to DefaultListLimit when zero.
	Limit int
}

// DefaultListLimit is the page size used when AppointmentFilter.Limit is 0.
const DefaultListLimit = 100

// PageLimit returns the effective page size.
func (f AppointmentFilter) PageLimit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// Store is the persistence boundary of the scheduling service.
type Store interface {
	// Snapshot loads the pending procedures selected by the patient and
	// procedure filters of req, every reference record, and the available
	// slots dated within the request window. Procedures holding a
	// scheduled or completed appointment are not pending.
	Snapshot(ctx context.Context, req model.ScheduleRequest) (model.Snapshot, error)
	// Commit books appts atomically: every appointment is inserted and its
	// slot marked unavailable, or nothing changes. A slot that is no
	// longer available fails the whole commit with ErrSlotTaken. The
	// stored appointments are returned with their assigned identities.
	Commit(ctx context.Context, appts []model.Appointment) ([]model.Appointment, error)
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (model.Appointment, error)
	// CancelAppointment marks the appointment cancelled and reopens its slot.
	CancelAppointment(ctx context.Context, id int64) (model.Appointment, error)
	// Load inserts the records of snap, keeping their identities.
	Load(ctx context.Context, snap model.Snapshot) error
	Close() error
}

// Pending reports whether a procedure with the given appointments still
// needs scheduling.
func Pending(appts []model.Appointment) bool {
	for _, a := range appts {
		if a.Status != model.StatusCancelled {
			return false
		}
	}
	return true
}
