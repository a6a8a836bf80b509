package optimizer

import (
	"math/rand"
	"time"

	"github.com/kilianp07/procsched/core/model"
)

var testNow = time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

func day(offset int) time.Time { return model.DateOf(testNow).AddDate(0, 0, offset) }

func slot(id, resource int64, date time.Time, startH, startM, minutes int) model.TimeSlot {
	start := model.NewTimeOfDay(startH, startM)
	endMin := start.Minutes() + minutes
	return model.TimeSlot{
		ID:         id,
		ResourceID: resource,
		Date:       date,
		Start:      start,
		End:        model.NewTimeOfDay(endMin/60, endMin%60),
		Available:  true,
	}
}

func window(from, to int) model.ScheduleRequest {
	return model.ScheduleRequest{StartDate: day(from), EndDate: day(to)}
}

// randomSnapshot builds a reproducible clinic with mixed rooms and codes.
func randomSnapshot(seed int64, nProcs, nSlots int) model.Snapshot {
	rng := rand.New(rand.NewSource(seed))
	types := []string{"Exam Room", "Procedure Room", "X-Ray Room", "Lab", "EKG Room", "Consultation Room"}
	snap := model.Snapshot{}
	for i := 1; i <= 6; i++ {
		snap.Resources = append(snap.Resources, model.Resource{ID: int64(i), Type: types[i-1], Available: true})
	}
	durations := []int{15, 30, 45, 60, 90}
	for i := 1; i <= 8; i++ {
		snap.CPTCodes = append(snap.CPTCodes, model.CPTCode{
			ID:                 int64(i),
			DurationMinutes:    durations[rng.Intn(len(durations))],
			RequiresSpecialist: rng.Intn(3) == 0,
		})
	}
	for i := 1; i <= 5; i++ {
		snap.Diagnoses = append(snap.Diagnoses, model.Diagnosis{ID: int64(i), Severity: 1 + rng.Intn(5)})
	}
	for i := 1; i <= 10; i++ {
		snap.Patients = append(snap.Patients, model.Patient{
			ID:          int64(i),
			DateOfBirth: testNow.AddDate(-18-rng.Intn(60), 0, -rng.Intn(365)),
		})
	}
	for i := 1; i <= nProcs; i++ {
		p := model.ProcedureRequest{
			ID:        int64(i),
			PatientID: int64(1 + rng.Intn(12)),
			CPTCodeID: int64(1 + rng.Intn(9)),
			OrderedAt: testNow.Add(-time.Duration(rng.Intn(30*24)) * time.Hour),
			Priority:  1 + rng.Intn(5),
		}
		if rng.Intn(4) > 0 {
			d := int64(1 + rng.Intn(6))
			p.DiagnosisID = &d
		}
		snap.Procedures = append(snap.Procedures, p)
	}
	for i := 1; i <= nSlots; i++ {
		s := slot(int64(i), int64(1+rng.Intn(7)), day(rng.Intn(10)), 8+rng.Intn(8), 30*rng.Intn(2), durations[rng.Intn(len(durations))])
		s.Available = rng.Intn(5) > 0
		snap.Slots = append(snap.Slots, s)
	}
	return snap
}
