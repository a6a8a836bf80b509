// Package scheduling exposes the scheduling service over HTTP.
//
// Routes:
//
//	POST /api/scheduling/optimize
//	GET  /api/scheduling/appointments
//	GET  /api/scheduling/appointments/{id}
//	PUT  /api/scheduling/appointments/{id}/cancel
//	GET  /api/scheduling/runs
package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/procsched/app"
	"github.com/kilianp07/procsched/core/model"
	"github.com/kilianp07/procsched/core/monitoring"
	"github.com/kilianp07/procsched/core/runlog"
	"github.com/kilianp07/procsched/core/store"
	"github.com/kilianp07/procsched/infra/logger"
)

// Scheduler is the part of app.Service the handlers use.
type Scheduler interface {
	Optimize(ctx context.Context, req model.ScheduleRequest, dryRun bool) (app.Run, error)
	Cancel(ctx context.Context, id int64) (model.Appointment, error)
	Appointments(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error)
	Appointment(ctx context.Context, id int64) (model.Appointment, error)
	Runs(ctx context.Context, q runlog.Query) ([]runlog.Record, error)
}

var _ Scheduler = (*app.Service)(nil)

// OptimizeRequest is the body of POST /optimize. Dates are YYYY-MM-DD or
// RFC 3339.
type OptimizeRequest struct {
	PatientIDs        []int64 `json:"patient_ids,omitempty"`
	ProcedureIDs      []int64 `json:"procedure_ids,omitempty"`
	StartDate         string  `json:"start_date"`
	EndDate           string  `json:"end_date"`
	PriorityThreshold *int    `json:"priority_threshold,omitempty"`
	OptimizeFor       string  `json:"optimize_for,omitempty"`
	DryRun            bool    `json:"dry_run,omitempty"`
}

// OptimizeResponse is the result of a run with its identity.
type OptimizeResponse struct {
	RunID  string `json:"run_id"`
	DryRun bool   `json:"dry_run"`
	model.ScheduleResult
}

type errorBody struct {
	Detail string `json:"detail"`
}

// NewHandler returns the routes of the scheduling API. A non-empty token
// is required as "Authorization: Bearer <token>" on every route.
func NewHandler(svc Scheduler, token string) http.Handler {
	h := &handler{svc: svc, log: logger.New("api")}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scheduling/optimize", h.optimize)
	mux.HandleFunc("GET /api/scheduling/appointments", h.listAppointments)
	mux.HandleFunc("GET /api/scheduling/appointments/{id}", h.getAppointment)
	mux.HandleFunc("PUT /api/scheduling/appointments/{id}/cancel", h.cancelAppointment)
	mux.HandleFunc("GET /api/scheduling/runs", h.listRuns)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return h.recoverer(bearer(token, mux))
}

type handler struct {
	svc Scheduler
	log logger.Logger
}

func bearer(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, errorBody{Detail: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer func() {
			if err != nil {
				h.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
				writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "internal error"})
			}
		}()
		defer monitoring.RecoverError(&err)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors to status codes.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidRequest), errors.Is(err, errBadParam):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrSlotTaken), errors.Is(err, store.ErrAlreadyCancelled):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, errorBody{Detail: err.Error()})
}

var errBadParam = errors.New("bad parameter")

func parseDate(name, v string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", v, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD or RFC 3339", errBadParam, name)
	}
	return t, nil
}

// isDateOnly reports whether v is a bare YYYY-MM-DD date.
func isDateOnly(v string) bool {
	_, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	return err == nil
}

func parseID(name, v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadParam, name)
	}
	return id, nil
}

// ScheduleRequest converts the body into the optimizer request.
func (o OptimizeRequest) ScheduleRequest() (model.ScheduleRequest, error) {
	req := model.ScheduleRequest{
		PatientIDs:        o.PatientIDs,
		ProcedureIDs:      o.ProcedureIDs,
		PriorityThreshold: o.PriorityThreshold,
		OptimizeFor:       model.OptimizeGoal(o.OptimizeFor),
	}
	var err error
	if req.StartDate, err = parseDate("start_date", o.StartDate); err != nil {
		return req, err
	}
	if req.EndDate, err = parseDate("end_date", o.EndDate); err != nil {
		return req, err
	}
	return req, nil
}

func (h *handler) optimize(w http.ResponseWriter, r *http.Request) {
	var body OptimizeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.writeError(w, fmt.Errorf("%w: %v", errBadParam, err))
		return
	}
	req, err := body.ScheduleRequest()
	if err != nil {
		h.writeError(w, err)
		return
	}
	run, err := h.svc.Optimize(r.Context(), req, body.DryRun)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OptimizeResponse{RunID: run.RunID, DryRun: run.DryRun, ScheduleResult: run.Result})
}

func (h *handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.AppointmentFilter
	var err error
	ints := []struct {
		name string
		dst  *int64
	}{{"patient_id", &f.PatientID}, {"resource_id", &f.ResourceID}}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			if *p.dst, err = parseID(p.name, v); err != nil {
				h.writeError(w, err)
				return
			}
		}
	}
	dates := []struct {
		name string
		dst  *time.Time
	}{{"start_date", &f.StartDate}, {"end_date", &f.EndDate}}
	for _, p := range dates {
		if v := q.Get(p.name); v != "" {
			if *p.dst, err = parseDate(p.name, v); err != nil {
				h.writeError(w, err)
				return
			}
		}
	}
	f.Status = model.AppointmentStatus(q.Get("status"))
	if f.Offset, err = nonNegative(q.Get("skip"), "skip"); err != nil {
		h.writeError(w, err)
		return
	}
	if f.Limit, err = nonNegative(q.Get("limit"), "limit"); err != nil {
		h.writeError(w, err)
		return
	}
	list, err := h.svc.Appointments(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if list == nil {
		list = []model.Appointment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func nonNegative(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadParam, name)
	}
	return n, nil
}

func (h *handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	a, err := h.svc.Appointment(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handler) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("id", r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	a, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := runlog.Query{RunID: qs.Get("run_id")}
	var err error
	if v := qs.Get("start"); v != "" {
		if q.Start, err = parseDate("start", v); err != nil {
			h.writeError(w, err)
			return
		}
	}
	if v := qs.Get("end"); v != "" {
		if q.End, err = parseDate("end", v); err != nil {
			h.writeError(w, err)
			return
		}
		if isDateOnly(v) {
			q.End = q.End.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	for _, p := range []struct {
		name string
		dst  *int64
	}{{"procedure_id", &q.ProcedureID}, {"patient_id", &q.PatientID}} {
		if v := qs.Get(p.name); v != "" {
			if *p.dst, err = parseID(p.name, v); err != nil {
				h.writeError(w, err)
				return
			}
		}
	}
	if q.Limit, err = nonNegative(qs.Get("limit"), "limit"); err != nil {
		h.writeError(w, err)
		return
	}
	recs, err := h.svc.Runs(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []runlog.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}
