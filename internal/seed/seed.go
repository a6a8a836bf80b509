// Package seed generates a reproducible synthetic clinic: patients, the
// sample ICD and CPT catalogues, resources, pending procedure orders and
// weekday time slots.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/procsched/core/model"
)

// Config sizes the generated data.
type Config struct {
	Patients  int
	Resources int
	// Days is the number of calendar days of slots starting at Start.
	Days int
	// Start is the first slot day; zero means today.
	Start time.Time
	Seed  int64
}

// SetDefaults applies the sizes used by the seed command.
func (c *Config) SetDefaults() {
	if c.Patients == 0 {
		c.Patients = 50
	}
	if c.Resources == 0 {
		c.Resources = 10
	}
	if c.Days == 0 {
		c.Days = 30
	}
	if c.Start.IsZero() {
		c.Start = time.Now()
	}
	c.Start = model.DateOf(c.Start)
}

// Slot grid of a clinic day.
const (
	dayStartHour = 8
	dayEndHour   = 17
	slotMinutes  = 30
)

type generator struct {
	cfg Config
	rng *rand.Rand
}

// Generate builds a Snapshot from cfg. Identical configs yield identical
// snapshots.
func Generate(cfg Config) model.Snapshot {
	cfg.SetDefaults()
	g := generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
	snap := model.Snapshot{
		Diagnoses: withDiagnosisIDs(Diagnoses),
		CPTCodes:  withCPTIDs(CPTCodes),
	}
	snap.Patients = g.patients()
	snap.Resources = g.resources()
	snap.Procedures = g.procedures(len(snap.Diagnoses), len(snap.CPTCodes))
	snap.Slots = g.slots()
	return snap
}

func withDiagnosisIDs(in []model.Diagnosis) []model.Diagnosis {
	out := make([]model.Diagnosis, len(in))
	for i, d := range in {
		d.ID = int64(i + 1)
		out[i] = d
	}
	return out
}

func withCPTIDs(in []model.CPTCode) []model.CPTCode {
	out := make([]model.CPTCode, len(in))
	for i, c := range in {
		c.ID = int64(i + 1)
		out[i] = c
	}
	return out
}

func (g *generator) patients() []model.Patient {
	out := make([]model.Patient, g.cfg.Patients)
	for i := range out {
		age := 18 + g.rng.Intn(73)
		dob := g.cfg.Start.AddDate(-age, 0, -g.rng.Intn(365))
		out[i] = model.Patient{
			ID:          int64(i + 1),
			FirstName:   firstNames[g.rng.Intn(len(firstNames))],
			LastName:    lastNames[g.rng.Intn(len(lastNames))],
			DateOfBirth: dob,
		}
	}
	return out
}

func (g *generator) resources() []model.Resource {
	out := make([]model.Resource, g.cfg.Resources)
	for i := range out {
		kind := ResourceTypes[g.rng.Intn(len(ResourceTypes))]
		out[i] = model.Resource{
			ID:        int64(i + 1),
			Name:      fmt.Sprintf("%s %d", kind, i+1),
			Type:      kind,
			Available: g.rng.Float64() > 0.1,
		}
	}
	return out
}

// procedures gives every patient one to three distinct diagnoses, each
// leading to zero to two orders placed up to a year before Start.
func (g *generator) procedures(nDiag, nCPT int) []model.ProcedureRequest {
	var out []model.ProcedureRequest
	for pid := 1; pid <= g.cfg.Patients; pid++ {
		for _, d := range g.rng.Perm(nDiag)[:1+g.rng.Intn(3)] {
			diagnosed := g.cfg.Start.Add(-time.Duration(g.rng.Int63n(int64(365 * 24 * time.Hour))))
			for n := g.rng.Intn(3); n > 0; n-- {
				diag := int64(d + 1)
				p := model.ProcedureRequest{
					ID:          int64(len(out) + 1),
					PatientID:   int64(pid),
					CPTCodeID:   int64(1 + g.rng.Intn(nCPT)),
					DiagnosisID: &diag,
					OrderedAt:   diagnosed.AddDate(0, 0, 1+g.rng.Intn(14)).UTC(),
					Priority:    1 + g.rng.Intn(5),
				}
				if g.rng.Float64() > 0.7 {
					p.Notes = orderNotes[g.rng.Intn(len(orderNotes))]
				}
				out = append(out, p)
			}
		}
	}
	return out
}

// slots lays a 30 minute grid from 08:00 to 17:00 on every weekday for each
// resource; about one slot in five is already taken.
func (g *generator) slots() []model.TimeSlot {
	var out []model.TimeSlot
	for day := 0; day < g.cfg.Days; day++ {
		date := g.cfg.Start.AddDate(0, 0, day)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for rid := 1; rid <= g.cfg.Resources; rid++ {
			for m := dayStartHour * 60; m < dayEndHour*60; m += slotMinutes {
				end := m + slotMinutes
				out = append(out, model.TimeSlot{
					ID:         int64(len(out) + 1),
					ResourceID: int64(rid),
					Date:       date,
					Start:      model.NewTimeOfDay(m/60, m%60),
					End:        model.NewTimeOfDay(end/60, end%60),
					Available:  g.rng.Float64() > 0.2,
				})
			}
		}
	}
	return out
}
