package optimizer

import (
	"sort"
	"time"

	"github.com/kilianp07/procsched/core/model"
)

// FilterRequests keeps the procedures matching every filter set on req and
// returns them ordered by ascending priority. Equal priorities keep their
// input order. The input slice is not modified.
func FilterRequests(procs []model.ProcedureRequest, req model.ScheduleRequest) []model.ProcedureRequest {
	patients := idSet(req.PatientIDs)
	ids := idSet(req.ProcedureIDs)
	out := make([]model.ProcedureRequest, 0, len(procs))
	for _, p := range procs {
		if patients != nil {
			if _, ok := patients[p.PatientID]; !ok {
				continue
			}
		}
		if ids != nil {
			if _, ok := ids[p.ID]; !ok {
				continue
			}
		}
		if req.PriorityThreshold != nil && p.Priority > *req.PriorityThreshold {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// FilterSlots keeps the available slots whose calendar date lies in
// [start, end].
func FilterSlots(slots []model.TimeSlot, start, end time.Time) []model.TimeSlot {
	from, to := model.DateOf(start), model.DateOf(end)
	out := make([]model.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if !s.Available {
			continue
		}
		d := model.DateOf(s.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func idSet(ids []int64) map[int64]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
