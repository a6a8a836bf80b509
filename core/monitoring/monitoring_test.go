package monitoring

import (
	"errors"
	"testing"
	"time"
)

type recorder struct {
	errs   []error
	tags   []map[string]string
	panics []any
}

func (r *recorder) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recorder) CaptureMessage(string, map[string]string) {}
func (r *recorder) ReportPanic(v any)                        { r.panics = append(r.panics, v) }
func (r *recorder) Flush(time.Duration)                      {}

func withRecorder(t *testing.T) *recorder {
	t.Helper()
	rec := &recorder{}
	Init(rec)
	t.Cleanup(func() { Init(NopMonitor{}) })
	return rec
}

func TestCaptureException(t *testing.T) {
	rec := withRecorder(t)
	CaptureException(nil, nil)
	CaptureException(errors.New("db down"), map[string]string{"component": "store"})
	if len(rec.errs) != 1 || rec.tags[0]["component"] != "store" {
		t.Fatalf("unexpected captures %+v", rec)
	}
}

func TestRecoverReraises(t *testing.T) {
	rec := withRecorder(t)
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("expected re-raised panic, got %v", r)
		}
		if len(rec.panics) != 1 {
			t.Fatalf("panic not reported")
		}
	}()
	func() {
		defer Recover()
		panic("boom")
	}()
}

func TestRecoverError(t *testing.T) {
	rec := withRecorder(t)
	run := func() (err error) {
		defer RecoverError(&err)
		panic("optimizer crashed")
	}
	if err := run(); err == nil {
		t.Fatal("expected error from panic")
	}
	if len(rec.panics) != 1 {
		t.Fatal("panic not reported")
	}
}
