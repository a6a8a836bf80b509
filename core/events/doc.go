// Package events defines the scheduling events emitted on the event bus.
//
// Available event types:
//   - RunEvent: an optimizer run finished
//   - AppointmentEvent: an appointment was booked or cancelled
//   - NotificationEvent: delivery result of an appointment notification
package events
