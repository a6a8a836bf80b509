package monitoring

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/kilianp07/procsched/config"
	coremon "github.com/kilianp07/procsched/core/monitoring"
)

func TestNewSentryMonitor_EmptyDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected NopMonitor got %T", m)
	}
}

func TestNewSentryMonitor_InvalidDSN(t *testing.T) {
	if _, err := NewSentryMonitor(config.SentryConfig{DSN: "::not a dsn"}); err == nil {
		t.Fatal("expected error for invalid DSN")
	}
}

func TestScrubRemovesPatientData(t *testing.T) {
	ev := &sentry.Event{
		Extra: map[string]any{"patient_id": 4, "run_id": "r1"},
		Tags:  map[string]string{"notes": "x", "component": "api"},
	}
	out := scrub(ev, nil)
	if _, ok := out.Extra["patient_id"]; ok {
		t.Fatal("patient_id not scrubbed")
	}
	if _, ok := out.Tags["notes"]; ok {
		t.Fatal("notes not scrubbed")
	}
	if out.Extra["run_id"] != "r1" || out.Tags["component"] != "api" {
		t.Fatalf("unexpected removal %+v", out)
	}
}
