package events

import (
	"time"

	"github.com/kilianp07/procsched/core/model"
)

// AppointmentAction tells what happened to an appointment.
type AppointmentAction string

const (
	AppointmentBooked    AppointmentAction = "booked"
	AppointmentCancelled AppointmentAction = "cancelled"
)

// AppointmentEvent is published when an appointment is booked or cancelled.
type AppointmentEvent struct {
	RunID       string
	Action      AppointmentAction
	Appointment model.Appointment
	Time        time.Time
}

// NotificationEvent reports the delivery of an appointment notification.
type NotificationEvent struct {
	AppointmentID int64
	Delivered     bool
	Err           error
	Latency       time.Duration
}
