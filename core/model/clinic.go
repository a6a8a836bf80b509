package model

import "time"

// Patient holds the demographic data the scheduler needs.
type Patient struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
}

// AgeYears returns the age at now as days since birth divided by 365.25.
func (p Patient) AgeYears(now time.Time) float64 {
	return float64(DaysBetween(p.DateOfBirth, now)) / 365.25
}

// Diagnosis is an ICD coded diagnosis with a 1-5 severity rating.
type Diagnosis struct {
	ID          int64  `json:"id"`
	ICDCode     string `json:"icd_code"`
	Description string `json:"description"`
	Severity    int    `json:"severity"`
}

// CPTCode describes a billable procedure.
type CPTCode struct {
	ID                 int64  `json:"id"`
	Code               string `json:"code"`
	Description        string `json:"description"`
	DurationMinutes    int    `json:"duration_minutes"`
	RequiresSpecialist bool   `json:"requires_specialist"`
}

// ProcedureRequest is a pending order for a procedure.
type ProcedureRequest struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	CPTCodeID   int64     `json:"cpt_code_id"`
	DiagnosisID *int64    `json:"diagnosis_id,omitempty"`
	OrderedAt   time.Time `json:"ordered_at"`
	Priority    int       `json:"priority"` // 1 is most urgent, 5 routine
	Notes       string    `json:"notes,omitempty"`
}

// Resource is a room or piece of equipment that time slots belong to.
type Resource struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Available bool   `json:"available"`
}

// TimeSlot is a bookable interval on a resource.
type TimeSlot struct {
	ID         int64     `json:"id"`
	ResourceID int64     `json:"resource_id"`
	Date       time.Time `json:"date"`
	Start      TimeOfDay `json:"start_time"`
	End        TimeOfDay `json:"end_time"`
	Available  bool      `json:"is_available"`
}

// DurationMinutes returns the slot length in minutes.
func (s TimeSlot) DurationMinutes() int { return s.End.Minutes() - s.Start.Minutes() }

// DefaultSpecialistCategories lists the resource types able to host
// procedures that require a specialist.
var DefaultSpecialistCategories = []string{"Procedure Room", "X-Ray Room", "EKG Room"}

// CategorySet is a set of resource type labels.
type CategorySet map[string]struct{}

// NewCategorySet builds a set from the given labels.
func NewCategorySet(labels ...string) CategorySet {
	s := make(CategorySet, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// Has reports whether the label is in the set.
func (s CategorySet) Has(label string) bool {
	_, ok := s[label]
	return ok
}

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment binds a procedure request to a time slot.
type Appointment struct {
	ID            int64             `json:"id"`
	PatientID     int64             `json:"patient_id"`
	ProcedureID   int64             `json:"procedure_id"`
	ResourceID    int64             `json:"resource_id"`
	SlotID        int64             `json:"time_slot_id"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	Start         TimeOfDay         `json:"start_time"`
	End           TimeOfDay         `json:"end_time"`
	Status        AppointmentStatus `json:"status"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at,omitempty"`
}
