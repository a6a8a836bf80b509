package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/kilianp07/procsched/core/model"
	"github.com/kilianp07/procsched/core/store"
)

var appointmentColumns = []any{
	"id", "patient_id", "procedure_id", "resource_id", "time_slot_id",
	"scheduled_date", "start_time", "end_time", "status", "notes", "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(r rowScanner) (model.Appointment, error) {
	var a model.Appointment
	var date, start, end, status, created string
	if err := r.Scan(&a.ID, &a.PatientID, &a.ProcedureID, &a.ResourceID, &a.SlotID, &date, &start, &end, &status, &a.Notes, &created); err != nil {
		return a, err
	}
	var err error
	if a.ScheduledDate, err = parseDate(date); err != nil {
		return a, fmt.Errorf("appointment %d date: %w", a.ID, err)
	}
	if a.Start, err = model.ParseTimeOfDay(start); err != nil {
		return a, fmt.Errorf("appointment %d start: %w", a.ID, err)
	}
	if a.End, err = model.ParseTimeOfDay(end); err != nil {
		return a, fmt.Errorf("appointment %d end: %w", a.ID, err)
	}
	if a.CreatedAt, err = parseStamp(created); err != nil {
		return a, fmt.Errorf("appointment %d created_at: %w", a.ID, err)
	}
	a.Status = model.AppointmentStatus(status)
	return a, nil
}

// Commit implements store.Store.
func (s *Store) Commit(ctx context.Context, appts []model.Appointment) ([]model.Appointment, error) {
	out := make([]model.Appointment, 0, len(appts))
	now := s.now().UTC()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range appts {
			if err := s.claimSlot(ctx, tx, a.SlotID); err != nil {
				return err
			}
			a.CreatedAt = now
			id, err := s.insertAppointment(ctx, tx, a)
			if err != nil {
				return fmt.Errorf("insert appointment for procedure %d: %w", a.ProcedureID, err)
			}
			a.ID = id
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) insertAppointment(ctx context.Context, tx *sql.Tx, a model.Appointment) (int64, error) {
	ds := s.gq.Insert("appointments").Prepared(true).Rows(goqu.Record{
		"patient_id":     a.PatientID,
		"procedure_id":   a.ProcedureID,
		"resource_id":    a.ResourceID,
		"time_slot_id":   a.SlotID,
		"scheduled_date": a.ScheduledDate.Format(dateLayout),
		"start_time":     a.Start.String(),
		"end_time":       a.End.String(),
		"status":         string(a.Status),
		"notes":          a.Notes,
		"created_at":     a.CreatedAt.Format(stampLayout),
	})
	if !s.d.Returning {
		res, err := exec(ctx, tx, ds)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	query, args, err := render(ds.Returning("id"))
	if err != nil {
		return 0, err
	}
	var id int64
	err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	return id, err
}

// claimSlotQuery flips slotID to unavailable only if it is still open.
func (s *Store) claimSlotQuery(slotID int64) *goqu.UpdateDataset {
	return s.gq.Update("time_slots").Prepared(true).
		Set(goqu.Record{"is_available": 0}).
		Where(goqu.C("id").Eq(slotID), goqu.C("is_available").Eq(1))
}

// claimSlot flips an available slot to unavailable.
func (s *Store) claimSlot(ctx context.Context, tx *sql.Tx, slotID int64) error {
	res, err := exec(ctx, tx, s.claimSlotQuery(slotID))
	if err != nil {
		return fmt.Errorf("claim slot %d: %w", slotID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	query, args, err := render(s.from("time_slots").Select(goqu.L("1")).Where(goqu.C("id").Eq(slotID)))
	if err != nil {
		return err
	}
	var exists int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("slot %d: %w", slotID, store.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("slot %d: %w", slotID, store.ErrSlotTaken)
}

// listQuery applies an AppointmentFilter.
func (s *Store) listQuery(f store.AppointmentFilter) *goqu.SelectDataset {
	ds := s.from("appointments").Select(appointmentColumns...)
	if f.PatientID != 0 {
		ds = ds.Where(goqu.C("patient_id").Eq(f.PatientID))
	}
	if f.ResourceID != 0 {
		ds = ds.Where(goqu.C("resource_id").Eq(f.ResourceID))
	}
	if !f.StartDate.IsZero() {
		ds = ds.Where(goqu.C("scheduled_date").Gte(f.StartDate.Format(dateLayout)))
	}
	if !f.EndDate.IsZero() {
		ds = ds.Where(goqu.C("scheduled_date").Lte(f.EndDate.Format(dateLayout)))
	}
	if f.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(f.Status)))
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	return ds.Order(goqu.C("id").Asc()).Limit(uint(f.PageLimit())).Offset(uint(offset))
}

// ListAppointments implements store.Store.
func (s *Store) ListAppointments(ctx context.Context, f store.AppointmentFilter) ([]model.Appointment, error) {
	out := []model.Appointment{}
	err := s.query(ctx, s.db, s.listQuery(f), func(rows *sql.Rows) error {
		a, err := scanAppointment(rows)
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}

func (s *Store) getAppointment(ctx context.Context, q querier, id int64) (model.Appointment, error) {
	query, args, err := render(s.from("appointments").Select(appointmentColumns...).Where(goqu.C("id").Eq(id)))
	if err != nil {
		return model.Appointment{}, err
	}
	a, err := scanAppointment(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return a, fmt.Errorf("appointment %d: %w", id, store.ErrNotFound)
	}
	return a, err
}

// GetAppointment implements store.Store.
func (s *Store) GetAppointment(ctx context.Context, id int64) (model.Appointment, error) {
	return s.getAppointment(ctx, s.db, id)
}

// CancelAppointment implements store.Store.
func (s *Store) CancelAppointment(ctx context.Context, id int64) (model.Appointment, error) {
	var out model.Appointment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		a, err := s.getAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		if a.Status == model.StatusCancelled {
			out = a
			return fmt.Errorf("appointment %d: %w", id, store.ErrAlreadyCancelled)
		}
		cancel := s.gq.Update("appointments").Prepared(true).
			Set(goqu.Record{"status": string(model.StatusCancelled)}).
			Where(goqu.C("id").Eq(id))
		if _, err := exec(ctx, tx, cancel); err != nil {
			return err
		}
		reopen := s.gq.Update("time_slots").Prepared(true).
			Set(goqu.Record{"is_available": 1}).
			Where(goqu.C("id").Eq(a.SlotID))
		if _, err := exec(ctx, tx, reopen); err != nil {
			return err
		}
		a.Status = model.StatusCancelled
		out = a
		return nil
	})
	return out, err
}
