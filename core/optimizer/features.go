package optimizer

import (
	"math"
	"time"

	"github.com/kilianp07/procsched/core/model"
	"gonum.org/v1/gonum/mat"
)

// Feature vector layout shared by procedures and slots.
const (
	dimPriority = iota
	dimDuration
	dimSpecialist
	dimSeverity
	dimAge
	dimRecency
	featureDims
)

// Placeholders for the procedure-only dimensions of a slot vector.
const (
	neutralPriority = 3
	neutralSeverity = 3
	neutralAge      = 50
	defaultSeverity = 3
)

// catalog indexes the reference records of a snapshot by identity.
type catalog struct {
	patients   map[int64]model.Patient
	diagnoses  map[int64]model.Diagnosis
	cpt        map[int64]model.CPTCode
	resources  map[int64]model.Resource
	specialist model.CategorySet
}

func newCatalog(snap model.Snapshot, specialist model.CategorySet) catalog {
	c := catalog{
		patients:   make(map[int64]model.Patient, len(snap.Patients)),
		diagnoses:  make(map[int64]model.Diagnosis, len(snap.Diagnoses)),
		cpt:        make(map[int64]model.CPTCode, len(snap.CPTCodes)),
		resources:  make(map[int64]model.Resource, len(snap.Resources)),
		specialist: specialist,
	}
	for _, p := range snap.Patients {
		c.patients[p.ID] = p
	}
	for _, d := range snap.Diagnoses {
		c.diagnoses[d.ID] = d
	}
	for _, code := range snap.CPTCodes {
		c.cpt[code.ID] = code
	}
	for _, r := range snap.Resources {
		c.resources[r.ID] = r
	}
	return c
}

// specialistCapable reports whether the resource may host specialist
// procedures. Unknown resources never can.
func (c catalog) specialistCapable(resourceID int64) bool {
	r, ok := c.resources[resourceID]
	return ok && c.specialist.Has(r.Type)
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// encodeProcedures builds one feature row per procedure with a known CPT
// code. rows[i] is the matrix row of procs[i], or -1 when its CPT code is
// unknown. The matrix is nil when no procedure could be encoded.
func encodeProcedures(procs []model.ProcedureRequest, c catalog, now time.Time) (*mat.Dense, []int) {
	rows := make([]int, len(procs))
	data := make([]float64, 0, len(procs)*featureDims)
	n := 0
	for i, p := range procs {
		code, ok := c.cpt[p.CPTCodeID]
		if !ok {
			rows[i] = -1
			continue
		}
		severity := float64(defaultSeverity)
		if p.DiagnosisID != nil {
			if d, ok := c.diagnoses[*p.DiagnosisID]; ok {
				severity = float64(d.Severity)
			}
		}
		var age float64
		if pt, ok := c.patients[p.PatientID]; ok {
			age = pt.AgeYears(now)
		}
		recency := math.Floor(now.Sub(p.OrderedAt).Hours() / 24)
		data = append(data,
			float64(p.Priority),
			float64(code.DurationMinutes),
			boolFeature(code.RequiresSpecialist),
			severity,
			age,
			recency,
		)
		rows[i] = n
		n++
	}
	if n == 0 {
		return nil, rows
	}
	return mat.NewDense(n, featureDims, data), rows
}

// encodeSlots builds one feature row per slot. slots must not be empty.
func encodeSlots(slots []model.TimeSlot, c catalog, now time.Time) *mat.Dense {
	m := mat.NewDense(len(slots), featureDims, nil)
	for i, s := range slots {
		m.SetRow(i, []float64{
			neutralPriority,
			float64(s.DurationMinutes()),
			boolFeature(c.specialistCapable(s.ResourceID)),
			neutralSeverity,
			neutralAge,
			float64(model.DaysBetween(now, s.Date)),
		})
	}
	return m
}
