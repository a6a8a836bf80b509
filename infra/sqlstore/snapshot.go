package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/kilianp07/procsched/core/model"
)

// Snapshot implements store.Store.
func (s *Store) Snapshot(ctx context.Context, req model.ScheduleRequest) (model.Snapshot, error) {
	var snap model.Snapshot
	var err error
	if snap.Procedures, err = s.pendingProcedures(ctx, req); err != nil {
		return snap, fmt.Errorf("load procedures: %w", err)
	}
	if snap.Patients, err = s.patients(ctx); err != nil {
		return snap, fmt.Errorf("load patients: %w", err)
	}
	if snap.Diagnoses, err = s.diagnoses(ctx); err != nil {
		return snap, fmt.Errorf("load diagnoses: %w", err)
	}
	if snap.CPTCodes, err = s.cptCodes(ctx); err != nil {
		return snap, fmt.Errorf("load cpt codes: %w", err)
	}
	if snap.Resources, err = s.resources(ctx); err != nil {
		return snap, fmt.Errorf("load resources: %w", err)
	}
	if snap.Slots, err = s.availableSlots(ctx, req); err != nil {
		return snap, fmt.Errorf("load time slots: %w", err)
	}
	return snap, nil
}

// from starts a prepared SELECT on table.
func (s *Store) from(table any) *goqu.SelectDataset {
	return s.gq.From(table).Prepared(true)
}

// query runs a SELECT dataset and calls scan for every row.
func (s *Store) query(ctx context.Context, q querier, ds *goqu.SelectDataset, scan func(*sql.Rows) error) error {
	query, args, err := render(ds)
	if err != nil {
		return err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// pendingQuery selects procedures without a live appointment, narrowed to
// the requested patients and procedures.
func (s *Store) pendingQuery(req model.ScheduleRequest) *goqu.SelectDataset {
	booked := s.gq.From(goqu.T("appointments").As("a")).
		Select(goqu.L("1")).
		Where(
			goqu.I("a.procedure_id").Eq(goqu.I("p.id")),
			goqu.I("a.status").Neq(string(model.StatusCancelled)),
		)
	ds := s.from(goqu.T("patient_procedures").As("p")).
		Select("p.id", "p.patient_id", "p.cpt_code_id", "p.diagnosis_id", "p.order_date", "p.priority", "p.notes").
		Where(goqu.L("NOT EXISTS ?", booked)).
		Order(goqu.I("p.id").Asc())
	if len(req.PatientIDs) > 0 {
		ds = ds.Where(goqu.I("p.patient_id").In(req.PatientIDs))
	}
	if len(req.ProcedureIDs) > 0 {
		ds = ds.Where(goqu.I("p.id").In(req.ProcedureIDs))
	}
	return ds
}

func (s *Store) pendingProcedures(ctx context.Context, req model.ScheduleRequest) ([]model.ProcedureRequest, error) {
	var out []model.ProcedureRequest
	err := s.query(ctx, s.db, s.pendingQuery(req), func(rows *sql.Rows) error {
		var p model.ProcedureRequest
		var diag sql.NullInt64
		var ordered string
		if err := rows.Scan(&p.ID, &p.PatientID, &p.CPTCodeID, &diag, &ordered, &p.Priority, &p.Notes); err != nil {
			return err
		}
		if diag.Valid {
			id := diag.Int64
			p.DiagnosisID = &id
		}
		t, err := parseStamp(ordered)
		if err != nil {
			return fmt.Errorf("procedure %d order date: %w", p.ID, err)
		}
		p.OrderedAt = t
		out = append(out, p)
		return nil
	})
	return out, err
}

func (s *Store) patients(ctx context.Context) ([]model.Patient, error) {
	var out []model.Patient
	ds := s.from("patients").Select("id", "first_name", "last_name", "date_of_birth").Order(goqu.C("id").Asc())
	err := s.query(ctx, s.db, ds, func(rows *sql.Rows) error {
		var p model.Patient
		var dob string
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &dob); err != nil {
			return err
		}
		t, err := parseDate(dob)
		if err != nil {
			return fmt.Errorf("patient %d birth date: %w", p.ID, err)
		}
		p.DateOfBirth = t
		out = append(out, p)
		return nil
	})
	return out, err
}

func (s *Store) diagnoses(ctx context.Context) ([]model.Diagnosis, error) {
	var out []model.Diagnosis
	ds := s.from("diagnoses").Select("id", "icd_code", "description", "severity").Order(goqu.C("id").Asc())
	err := s.query(ctx, s.db, ds, func(rows *sql.Rows) error {
		var d model.Diagnosis
		if err := rows.Scan(&d.ID, &d.ICDCode, &d.Description, &d.Severity); err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	return out, err
}

func (s *Store) cptCodes(ctx context.Context) ([]model.CPTCode, error) {
	var out []model.CPTCode
	ds := s.from("cpt_codes").Select("id", "code", "description", "duration_minutes", "requires_specialist").Order(goqu.C("id").Asc())
	err := s.query(ctx, s.db, ds, func(rows *sql.Rows) error {
		var c model.CPTCode
		var specialist int
		if err := rows.Scan(&c.ID, &c.Code, &c.Description, &c.DurationMinutes, &specialist); err != nil {
			return err
		}
		c.RequiresSpecialist = specialist != 0
		out = append(out, c)
		return nil
	})
	return out, err
}

func (s *Store) resources(ctx context.Context) ([]model.Resource, error) {
	var out []model.Resource
	ds := s.from("resources").Select("id", "name", "type", "is_available").Order(goqu.C("id").Asc())
	err := s.query(ctx, s.db, ds, func(rows *sql.Rows) error {
		var r model.Resource
		var avail int
		if err := rows.Scan(&r.ID, &r.Name, &r.Type, &avail); err != nil {
			return err
		}
		r.Available = avail != 0
		out = append(out, r)
		return nil
	})
	return out, err
}

func scanSlot(rows *sql.Rows) (model.TimeSlot, error) {
	var sl model.TimeSlot
	var date, start, end string
	var avail int
	if err := rows.Scan(&sl.ID, &sl.ResourceID, &date, &start, &end, &avail); err != nil {
		return sl, err
	}
	var err error
	if sl.Date, err = parseDate(date); err != nil {
		return sl, fmt.Errorf("slot %d date: %w", sl.ID, err)
	}
	if sl.Start, err = model.ParseTimeOfDay(start); err != nil {
		return sl, fmt.Errorf("slot %d start: %w", sl.ID, err)
	}
	if sl.End, err = model.ParseTimeOfDay(end); err != nil {
		return sl, fmt.Errorf("slot %d end: %w", sl.ID, err)
	}
	sl.Available = avail != 0
	return sl, nil
}

// slotQuery selects the open slots inside the request window.
func (s *Store) slotQuery(req model.ScheduleRequest) *goqu.SelectDataset {
	ds := s.from("time_slots").
		Select("id", "resource_id", "date", "start_time", "end_time", "is_available").
		Where(goqu.C("is_available").Eq(1)).
		Order(goqu.C("id").Asc())
	if !req.StartDate.IsZero() {
		ds = ds.Where(goqu.C("date").Gte(req.StartDate.Format(dateLayout)))
	}
	if !req.EndDate.IsZero() {
		ds = ds.Where(goqu.C("date").Lte(req.EndDate.Format(dateLayout)))
	}
	return ds
}

func (s *Store) availableSlots(ctx context.Context, req model.ScheduleRequest) ([]model.TimeSlot, error) {
	var out []model.TimeSlot
	err := s.query(ctx, s.db, s.slotQuery(req), func(rows *sql.Rows) error {
		sl, err := scanSlot(rows)
		if err != nil {
			return err
		}
		out = append(out, sl)
		return nil
	})
	return out, err
}
