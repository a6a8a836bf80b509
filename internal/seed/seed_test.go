package seed

import (
	"reflect"
	"testing"
	"time"

	"github.com/kilianp07/procsched/core/model"
)

var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func TestGenerateIsReproducible(t *testing.T) {
	cfg := Config{Patients: 20, Resources: 4, Days: 7, Start: monday, Seed: 42}
	a, b := Generate(cfg), Generate(cfg)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different snapshots")
	}
	cfg.Seed = 43
	if reflect.DeepEqual(a, Generate(cfg)) {
		t.Fatalf("different seeds produced identical snapshots")
	}
}

func TestGenerateShape(t *testing.T) {
	snap := Generate(Config{Patients: 30, Resources: 3, Days: 7, Start: monday, Seed: 1})
	if len(snap.Patients) != 30 || len(snap.Resources) != 3 {
		t.Fatalf("unexpected sizes: %d patients %d resources", len(snap.Patients), len(snap.Resources))
	}
	if len(snap.Diagnoses) != 15 || len(snap.CPTCodes) != 15 {
		t.Fatalf("catalogues not loaded")
	}
	// 5 weekdays x 3 resources x 18 half hours
	if len(snap.Slots) != 5*3*18 {
		t.Fatalf("expected %d slots got %d", 5*3*18, len(snap.Slots))
	}
	for _, s := range snap.Slots {
		if wd := s.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("slot %d on weekend", s.ID)
		}
		if s.DurationMinutes() != 30 || s.Start.Hour < 8 || s.End.Minutes() > 17*60 {
			t.Fatalf("slot %d outside the clinic day: %s-%s", s.ID, s.Start, s.End)
		}
	}
	for i, p := range snap.Procedures {
		if p.ID != int64(i+1) {
			t.Fatalf("procedure ids not sequential")
		}
		if p.Priority < 1 || p.Priority > 5 {
			t.Fatalf("priority %d out of range", p.Priority)
		}
		if p.CPTCodeID < 1 || p.CPTCodeID > 15 || p.DiagnosisID == nil {
			t.Fatalf("procedure %d has dangling references", p.ID)
		}
		if p.OrderedAt.After(monday.AddDate(0, 0, 14)) {
			t.Fatalf("procedure %d ordered too late: %v", p.ID, p.OrderedAt)
		}
	}
	for _, p := range snap.Patients {
		age := p.AgeYears(monday)
		if age < 18 || age > 92 {
			t.Fatalf("patient %d age %.1f", p.ID, age)
		}
	}
}

func TestGenerateDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c.Patients != 50 || c.Resources != 10 || c.Days != 30 {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if !c.Start.Equal(model.DateOf(c.Start)) {
		t.Fatalf("start not truncated to a day")
	}
}
