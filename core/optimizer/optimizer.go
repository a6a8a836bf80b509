package optimizer

import (
	"fmt"
	"time"

	"github.com/kilianp07/procsched/core/model"
)

// Summary messages.
const (
	MsgNoProcedures = "No procedures to schedule"
	MsgNoSlots      = "No available time slots in the specified date range"
)

// AutoScheduledNote is attached to every appointment the optimizer creates.
const AutoScheduledNote = "Automatically scheduled by optimizer"

// Optimizer runs the scheduling pipeline. It is safe for concurrent use.
type Optimizer struct {
	workers    int
	specialist model.CategorySet
	assigner   Assigner
}

// New builds an Optimizer from cfg. Unset fields take their defaults.
func New(cfg Config) *Optimizer {
	cfg.SetDefaults()
	var a Assigner = GreedyAssigner{}
	if cfg.Assigner == AssignerLP {
		a = NewLPAssigner(cfg.LPMaxPairs)
	}
	return &Optimizer{
		workers:    cfg.Workers,
		specialist: model.NewCategorySet(cfg.SpecialistCategories...),
		assigner:   a,
	}
}

// WithAssigner returns a copy of o using a.
func (o *Optimizer) WithAssigner(a Assigner) *Optimizer {
	cp := *o
	cp.assigner = a
	return &cp
}

// Optimize assigns the requests of snap selected by req to its slots. now
// is the reference time for ages, order recency and slot distance.
func (o *Optimizer) Optimize(snap model.Snapshot, req model.ScheduleRequest, now time.Time) model.ScheduleResult {
	procs := FilterRequests(snap.Procedures, req)
	if len(procs) == 0 {
		return model.ScheduleResult{
			Appointments: []model.Appointment{},
			Unscheduled:  []int64{},
			Score:        0,
			Message:      MsgNoProcedures,
		}
	}

	slots := FilterSlots(snap.Slots, req.StartDate, req.EndDate)
	if len(slots) == 0 {
		res := model.ScheduleResult{
			Appointments: []model.Appointment{},
			Unscheduled:  make([]int64, 0, len(procs)),
			Reasons:      make(map[int64]model.UnscheduledReason, len(procs)),
			Score:        0,
			Message:      MsgNoSlots,
		}
		for _, p := range procs {
			res.Unscheduled = append(res.Unscheduled, p.ID)
			res.Reasons[p.ID] = model.ReasonNoSlots
		}
		return res
	}

	cat := newCatalog(snap, o.specialist)
	prob := Problem{
		Procedures:        procs,
		Slots:             slots,
		CPT:               cat.cpt,
		SpecialistCapable: cat.specialistCapable,
	}
	pm, rows := encodeProcedures(procs, cat, now)
	prob.Rows = rows
	if pm != nil {
		pn, sn := Normalize(pm, encodeSlots(slots, cat, now))
		prob.Similarity = Similarity(pn, sn, o.workers)
	}

	return collect(prob, o.assigner.Assign(prob))
}

func collect(p Problem, asn Assignment) model.ScheduleResult {
	res := model.ScheduleResult{
		Appointments: []model.Appointment{},
		Unscheduled:  []int64{},
		Reasons:      map[int64]model.UnscheduledReason{},
	}
	var missed []model.ProcedureRequest
	for i, proc := range p.Procedures {
		j := asn[i]
		if j < 0 {
			missed = append(missed, proc)
			res.Unscheduled = append(res.Unscheduled, proc.ID)
			if p.Rows[i] < 0 {
				res.Reasons[proc.ID] = model.ReasonUnknownCPT
			} else {
				res.Reasons[proc.ID] = model.ReasonNoFeasibleSlot
			}
			continue
		}
		s := p.Slots[j]
		res.Appointments = append(res.Appointments, model.Appointment{
			ID:            int64(len(res.Appointments) + 1),
			PatientID:     proc.PatientID,
			ProcedureID:   proc.ID,
			ResourceID:    s.ResourceID,
			SlotID:        s.ID,
			ScheduledDate: s.Date,
			Start:         s.Start,
			End:           s.End,
			Status:        model.StatusScheduled,
			Notes:         AutoScheduledNote,
		})
	}
	res.Score = Score(len(p.Procedures), missed)
	res.Message = fmt.Sprintf("Scheduled %d out of %d procedures", len(res.Appointments), len(p.Procedures))
	return res
}
