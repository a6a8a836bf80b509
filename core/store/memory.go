package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/procsched/core/model"
)

// MemoryStore keeps every record in memory. It is used by tests and dry
// runs of the CLI.
type MemoryStore struct {
	mu     sync.RWMutex
	snap   model.Snapshot
	appts  []model.Appointment
	nextID int64
	now    func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Patients = append(s.snap.Patients, snap.Patients...)
	s.snap.Diagnoses = append(s.snap.Diagnoses, snap.Diagnoses...)
	s.snap.CPTCodes = append(s.snap.CPTCodes, snap.CPTCodes...)
	s.snap.Resources = append(s.snap.Resources, snap.Resources...)
	s.snap.Procedures = append(s.snap.Procedures, snap.Procedures...)
	s.snap.Slots = append(s.snap.Slots, snap.Slots...)
	return nil
}

func inSet(ids []int64, id int64) bool {
	if len(ids) == 0 {
		return true
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Snapshot(_ context.Context, req model.ScheduleRequest) (model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byProc := map[int64][]model.Appointment{}
	for _, a := range s.appts {
		byProc[a.ProcedureID] = append(byProc[a.ProcedureID], a)
	}
	out := model.Snapshot{
		Patients:  append([]model.Patient(nil), s.snap.Patients...),
		Diagnoses: append([]model.Diagnosis(nil), s.snap.Diagnoses...),
		CPTCodes:  append([]model.CPTCode(nil), s.snap.CPTCodes...),
		Resources: append([]model.Resource(nil), s.snap.Resources...),
	}
	for _, p := range s.snap.Procedures {
		if inSet(req.PatientIDs, p.PatientID) && inSet(req.ProcedureIDs, p.ID) && Pending(byProc[p.ID]) {
			out.Procedures = append(out.Procedures, p)
		}
	}
	from, to := model.DateOf(req.StartDate), model.DateOf(req.EndDate)
	for _, sl := range s.snap.Slots {
		d := model.DateOf(sl.Date)
		if sl.Available && !d.Before(from) && !d.After(to) {
			out.Slots = append(out.Slots, sl)
		}
	}
	return out, nil
}

func (s *MemoryStore) slotIndex(id int64) int {
	for i, sl := range s.snap.Slots {
		if sl.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) Commit(_ context.Context, appts []model.Appointment) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := make([]int, len(appts))
	seen := map[int64]bool{}
	for i, a := range appts {
		idx[i] = s.slotIndex(a.SlotID)
		if idx[i] < 0 {
			return nil, fmt.Errorf("slot %d: %w", a.SlotID, ErrNotFound)
		}
		if !s.snap.Slots[idx[i]].Available || seen[a.SlotID] {
			return nil, fmt.Errorf("slot %d: %w", a.SlotID, ErrSlotTaken)
		}
		seen[a.SlotID] = true
	}
	out := make([]model.Appointment, len(appts))
	now := s.now()
	for i, a := range appts {
		s.snap.Slots[idx[i]].Available = false
		a.ID = s.nextID
		a.CreatedAt = now
		s.nextID++
		s.appts = append(s.appts, a)
		out[i] = a
	}
	return out, nil
}

func (s *MemoryStore) ListAppointments(_ context.Context, f AppointmentFilter) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Appointment
	for _, a := range s.appts {
		if f.PatientID != 0 && a.PatientID != f.PatientID {
			continue
		}
		if f.ResourceID != 0 && a.ResourceID != f.ResourceID {
			continue
		}
		if !f.StartDate.IsZero() && model.DateOf(a.ScheduledDate).Before(model.DateOf(f.StartDate)) {
			continue
		}
		if !f.EndDate.IsZero() && model.DateOf(a.ScheduledDate).After(model.DateOf(f.EndDate)) {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Offset >= len(out) {
		return []model.Appointment{}, nil
	}
	out = out[f.Offset:]
	if len(out) > f.PageLimit() {
		out = out[:f.PageLimit()]
	}
	return out, nil
}

func (s *MemoryStore) GetAppointment(_ context.Context, id int64) (model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.appts {
		if a.ID == id {
			return a, nil
		}
	}
	return model.Appointment{}, fmt.Errorf("appointment %d: %w", id, ErrNotFound)
}

func (s *MemoryStore) CancelAppointment(_ context.Context, id int64) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.appts {
		if a.ID != id {
			continue
		}
		if a.Status == model.StatusCancelled {
			return a, fmt.Errorf("appointment %d: %w", id, ErrAlreadyCancelled)
		}
		s.appts[i].Status = model.StatusCancelled
		if j := s.slotIndex(a.SlotID); j >= 0 {
			s.snap.Slots[j].Available = true
		}
		return s.appts[i], nil
	}
	return model.Appointment{}, fmt.Errorf("appointment %d: %w", id, ErrNotFound)
}

func (s *MemoryStore) Close() error { return nil }
