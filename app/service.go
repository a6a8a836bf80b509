// Package app wires the optimizer to the record store, run log, metrics,
// event bus and notifier.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/procsched/core/events"
	coremetrics "github.com/kilianp07/procsched/core/metrics"
	"github.com/kilianp07/procsched/core/model"
	"github.com/kilianp07/procsched/core/monitoring"
	"github.com/kilianp07/procsched/core/notify"
	"github.com/kilianp07/procsched/core/optimizer"
	"github.com/kilianp07/procsched/core/runlog"
	"github.com/kilianp07/procsched/core/store"
	"github.com/kilianp07/procsched/infra/logger"
	"github.com/kilianp07/procsched/internal/eventbus"
)

// Options holds the dependencies of a Service. Nil fields get no-op
// implementations, except Store which is required.
type Options struct {
	Optimizer optimizer.Config
	Store     store.Store
	RunLog    runlog.Store
	Metrics   coremetrics.MetricsSink
	Bus       eventbus.EventBus
	Notifier  notify.Notifier
	Logger    logger.Logger
	// Now is the clock used as the optimizer reference time.
	Now func() time.Time
}

// Service runs schedule optimizations against the record store. Runs are
// serialised so that two runs never book from the same snapshot.
type Service struct {
	mu       sync.Mutex
	opt      *optimizer.Optimizer
	assigner string
	store    store.Store
	runs     runlog.Store
	sink     coremetrics.MetricsSink
	bus      eventbus.EventBus
	notifier notify.Notifier
	log      logger.Logger
	now      func() time.Time
}

// Run is the outcome of Service.Optimize.
type Run struct {
	RunID  string               `json:"run_id"`
	DryRun bool                 `json:"dry_run"`
	Result model.ScheduleResult `json:"result"`
}

// NewService builds a Service from opts.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("record store is required")
	}
	opts.Optimizer.SetDefaults()
	if err := opts.Optimizer.Validate(); err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}
	s := &Service{
		opt:      optimizer.New(opts.Optimizer),
		assigner: opts.Optimizer.Assigner,
		store:    opts.Store,
		runs:     opts.RunLog,
		sink:     opts.Metrics,
		bus:      opts.Bus,
		notifier: opts.Notifier,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if s.sink == nil {
		s.sink = coremetrics.NopSink{}
	}
	if s.bus == nil {
		s.bus = eventbus.New()
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.log == nil {
		s.log = logger.New("service")
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Bus returns the event bus the service publishes on.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Metrics returns the metrics sink.
func (s *Service) Metrics() coremetrics.MetricsSink { return s.sink }

// Optimize validates req, schedules the pending procedures it selects and,
// unless dryRun, books the resulting appointments.
func (s *Service) Optimize(ctx context.Context, req model.ScheduleRequest, dryRun bool) (Run, error) {
	if err := req.Validate(); err != nil {
		return Run{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	run := Run{RunID: uuid.NewString(), DryRun: dryRun}
	log := s.log.With(map[string]any{"run_id": run.RunID})
	started := s.now()

	snap, err := s.store.Snapshot(ctx, req)
	if err != nil {
		err = fmt.Errorf("load snapshot: %w", err)
		monitoring.CaptureException(err, map[string]string{"module": "service", "run_id": run.RunID})
		return run, err
	}
	res := s.opt.Optimize(snap, req, started)
	if !dryRun && len(res.Appointments) > 0 {
		booked, err := s.store.Commit(ctx, res.Appointments)
		if err != nil {
			err = fmt.Errorf("commit appointments: %w", err)
			s.appendRun(ctx, log, run, req, res, started, err)
			if !errors.Is(err, store.ErrSlotTaken) {
				monitoring.CaptureException(err, map[string]string{"module": "service", "run_id": run.RunID})
			}
			return run, err
		}
		res.Appointments = booked
	}
	run.Result = res
	elapsed := s.now().Sub(started)

	s.appendRun(ctx, log, run, req, res, started, nil)
	s.recordMetrics(log, run, req, snap, started, elapsed)

	s.bus.Publish(events.RunEvent{RunID: run.RunID, Request: req, Result: res, DryRun: dryRun, Time: started})
	if !dryRun {
		for _, a := range res.Appointments {
			s.bus.Publish(events.AppointmentEvent{RunID: run.RunID, Action: events.AppointmentBooked, Appointment: a, Time: started})
			s.notify(ctx, log, a)
		}
	}
	log.Debugw("schedule run finished", map[string]any{
		"procedures":  len(res.Appointments) + len(res.Unscheduled),
		"scheduled":   len(res.Appointments),
		"unscheduled": len(res.Unscheduled),
		"score":       res.Score,
		"dry_run":     dryRun,
		"elapsed_ms":  float64(elapsed.Microseconds()) / 1000,
	})
	return run, nil
}

func (s *Service) appendRun(ctx context.Context, log logger.Logger, run Run, req model.ScheduleRequest, res model.ScheduleResult, started time.Time, runErr error) {
	if s.runs == nil {
		return
	}
	rec := runlog.Record{
		RunID:      run.RunID,
		Timestamp:  started,
		Request:    req,
		Assigner:   s.assigner,
		DryRun:     run.DryRun,
		DurationMS: float64(s.now().Sub(started).Microseconds()) / 1000,
		Result:     res,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if err := s.runs.Append(ctx, rec); err != nil {
		log.Errorf("append run log: %v", err)
	}
}

func goalName(g model.OptimizeGoal) string {
	if g == "" {
		return string(model.GoalEfficiency)
	}
	return string(g)
}

func (s *Service) recordMetrics(log logger.Logger, run Run, req model.ScheduleRequest, snap model.Snapshot, started time.Time, elapsed time.Duration) {
	res := run.Result
	if err := s.sink.RecordRun(coremetrics.RunEvent{
		RunID:       run.RunID,
		Goal:        goalName(req.OptimizeFor),
		Assigner:    s.assigner,
		Procedures:  len(res.Appointments) + len(res.Unscheduled),
		Scheduled:   len(res.Appointments),
		Unscheduled: len(res.Unscheduled),
		Slots:       len(snap.Slots),
		Score:       res.Score,
		Duration:    elapsed,
		DryRun:      run.DryRun,
		Time:        started,
	}); err != nil {
		log.Errorf("record run metrics: %v", err)
	}

	priority := make(map[int64]int, len(snap.Procedures))
	for _, p := range snap.Procedures {
		priority[p.ID] = p.Priority
	}
	if r, ok := s.sink.(coremetrics.AppointmentRecorder); ok && !run.DryRun && len(res.Appointments) > 0 {
		kinds := make(map[int64]string, len(snap.Resources))
		for _, r := range snap.Resources {
			kinds[r.ID] = r.Type
		}
		evs := make([]coremetrics.AppointmentEvent, len(res.Appointments))
		for i, a := range res.Appointments {
			evs[i] = coremetrics.AppointmentEvent{
				RunID:         run.RunID,
				AppointmentID: a.ID,
				ProcedureID:   a.ProcedureID,
				ResourceID:    a.ResourceID,
				ResourceType:  kinds[a.ResourceID],
				Priority:      priority[a.ProcedureID],
				LeadDays:      model.DaysBetween(started, a.ScheduledDate),
				Time:          started,
			}
		}
		if err := r.RecordAppointments(evs); err != nil {
			log.Errorf("record appointment metrics: %v", err)
		}
	}
	if r, ok := s.sink.(coremetrics.UnscheduledRecorder); ok && len(res.Unscheduled) > 0 {
		evs := make([]coremetrics.UnscheduledEvent, len(res.Unscheduled))
		for i, id := range res.Unscheduled {
			evs[i] = coremetrics.UnscheduledEvent{
				RunID:       run.RunID,
				ProcedureID: id,
				Priority:    priority[id],
				Reason:      string(res.Reasons[id]),
				Time:        started,
			}
		}
		if err := r.RecordUnscheduled(evs); err != nil {
			log.Errorf("record unscheduled metrics: %v", err)
		}
	}
}

// notify delivers a to the notifier. Failures are logged and published,
// never returned.
func (s *Service) notify(ctx context.Context, log logger.Logger, a model.Appointment) {
	start := time.Now()
	err := s.notifier.Notify(ctx, a)
	s.bus.Publish(events.NotificationEvent{
		AppointmentID: a.ID,
		Delivered:     err == nil,
		Err:           err,
		Latency:       time.Since(start),
	})
	if err != nil {
		log.Warnf("notify appointment %d: %v", a.ID, err)
	}
}

// Cancel cancels an appointment and reopens its slot.
func (s *Service) Cancel(ctx context.Context, id int64) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.store.CancelAppointment(ctx, id)
	if err != nil {
		return a, err
	}
	s.bus.Publish(events.AppointmentEvent{Action: events.AppointmentCancelled, Appointment: a, Time: s.now()})
	s.notify(ctx, s.log, a)
	s.log.Infof("appointment %d cancelled, slot %d reopened", a.ID, a.SlotID)
	return a, nil
}

// Appointments lists stored appointments.
func (s *Service) Appointments(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error) {
	return s.store.ListAppointments(ctx, f)
}

// Appointment returns one stored appointment.
func (s *Service) Appointment(ctx context.Context, id int64) (model.Appointment, error) {
	return s.store.GetAppointment(ctx, id)
}

// Runs queries the run log. Without a run log it returns nothing.
func (s *Service) Runs(ctx context.Context, q runlog.Query) ([]runlog.Record, error) {
	if s.runs == nil {
		return []runlog.Record{}, nil
	}
	return s.runs.Query(ctx, q)
}

// Close releases the store, run log, notifier and bus.
func (s *Service) Close() error {
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if s.runs != nil {
		if err := s.runs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("run log: %w", err))
		}
	}
	if c, ok := s.notifier.(interface{ Close() }); ok {
		c.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.bus.Close()
	return errors.Join(errs...)
}
