package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/kilianp07/procsched/config"
	coremon "github.com/kilianp07/procsched/core/monitoring"
)

// sensitiveKeys are stripped from event extras and tags before sending.
var sensitiveKeys = []string{"patient_id", "patient_ids", "notes", "date_of_birth"}

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation. An empty DSN yields a NopMonitor.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if !cfg.Enabled() {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		AttachStacktrace: true,
		BeforeSend:       scrub,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	return &sentryMonitor{}, nil
}

func scrub(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	for _, k := range sensitiveKeys {
		delete(ev.Extra, k)
		delete(ev.Tags, k)
	}
	return ev
}

type sentryMonitor struct{}

func withTags(tags map[string]string, fn func()) {
	if len(tags) == 0 {
		fn()
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		fn()
	})
}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	withTags(tags, func() { sentry.CaptureException(err) })
}

func (s *sentryMonitor) CaptureMessage(msg string, tags map[string]string) {
	withTags(tags, func() { sentry.CaptureMessage(msg) })
}

func (s *sentryMonitor) ReportPanic(v any) {
	sentry.CurrentHub().Recover(v)
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
