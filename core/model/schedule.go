package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest wraps every ScheduleRequest validation failure.
var ErrInvalidRequest = errors.New("invalid schedule request")

// OptimizeGoal names the objective requested by the caller. Only efficiency
// changes behaviour today; other goals are accepted and ignored.
type OptimizeGoal string

const (
	GoalEfficiency        OptimizeGoal = "efficiency"
	GoalPatientPreference OptimizeGoal = "patient_preference"
	GoalUrgency           OptimizeGoal = "urgency"
)

// ScheduleRequest carries the caller's filters for one optimizer run.
type ScheduleRequest struct {
	PatientIDs        []int64      `json:"patient_ids,omitempty"`
	ProcedureIDs      []int64      `json:"procedure_ids,omitempty"`
	StartDate         time.Time    `json:"start_date"`
	EndDate           time.Time    `json:"end_date"`
	PriorityThreshold *int         `json:"priority_threshold,omitempty"`
	OptimizeFor       OptimizeGoal `json:"optimize_for,omitempty"`
}

// Validate rejects requests the optimizer does not accept.
func (r ScheduleRequest) Validate() error {
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrInvalidRequest)
	}
	if DateOf(r.EndDate).Before(DateOf(r.StartDate)) {
		return fmt.Errorf("%w: end_date before start_date", ErrInvalidRequest)
	}
	if r.PriorityThreshold != nil && (*r.PriorityThreshold < 1 || *r.PriorityThreshold > 5) {
		return fmt.Errorf("%w: priority_threshold %d outside [1,5]", ErrInvalidRequest, *r.PriorityThreshold)
	}
	return nil
}

// UnscheduledReason explains why a procedure received no appointment.
type UnscheduledReason string

const (
	ReasonNoSlots        UnscheduledReason = "no_slots"
	ReasonUnknownCPT     UnscheduledReason = "unknown_cpt"
	ReasonNoFeasibleSlot UnscheduledReason = "no_feasible_slot"
)

// ScheduleResult is the outcome of one optimizer run.
type ScheduleResult struct {
	Appointments []Appointment               `json:"appointments"`
	Unscheduled  []int64                     `json:"unscheduled_procedures"`
	Reasons      map[int64]UnscheduledReason `json:"reasons,omitempty"`
	Score        float64                     `json:"optimization_score"`
	Message      string                      `json:"message"`
}

// Snapshot is the read-only view of the records a run works on.
type Snapshot struct {
	Procedures []ProcedureRequest
	Patients   []Patient
	Diagnoses  []Diagnosis
	CPTCodes   []CPTCode
	Slots      []TimeSlot
	Resources  []Resource
}
