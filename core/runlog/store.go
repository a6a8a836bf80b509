// Package runlog keeps an audit trail of optimizer runs: what was asked,
// what was booked and what was left unscheduled.
package runlog

import (
	"context"
	"time"

	"github.com/kilianp07/procsched/core/model"
)

// Record captures one optimizer run.
type Record struct {
	RunID      string                `json:"run_id"`
	Timestamp  time.Time             `json:"timestamp"`
	Request    model.ScheduleRequest `json:"request"`
	Assigner   string                `json:"assigner"`
	DryRun     bool                  `json:"dry_run"`
	DurationMS float64               `json:"duration_ms"`
	Result     model.ScheduleResult  `json:"result"`
	// Error is set when the run could not be committed.
	Error string `json:"error,omitempty"`
}

// Query defines filters for retrieving records. Zero fields do not filter.
type Query struct {
	Start       time.Time
	End         time.Time
	RunID       string
	ProcedureID int64
	PatientID   int64
	Limit       int
}

// Matches reports whether r satisfies every filter of q except Limit.
func (q Query) Matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.ProcedureID != 0 && !r.touchesProcedure(q.ProcedureID) {
		return false
	}
	if q.PatientID != 0 && !r.touchesPatient(q.PatientID) {
		return false
	}
	return true
}

func (r Record) touchesProcedure(id int64) bool {
	for _, a := range r.Result.Appointments {
		if a.ProcedureID == id {
			return true
		}
	}
	for _, u := range r.Result.Unscheduled {
		if u == id {
			return true
		}
	}
	return false
}

func (r Record) touchesPatient(id int64) bool {
	for _, a := range r.Result.Appointments {
		if a.PatientID == id {
			return true
		}
	}
	for _, p := range r.Request.PatientIDs {
		if p == id {
			return true
		}
	}
	return false
}

// limit truncates recs to the most recent q.Limit entries.
func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying. Records come back in
// append order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
