package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/kilianp07/procsched/core/model"
)

// loadBatch bounds the rows of one INSERT so the placeholder count stays
// under the SQLite and PostgreSQL limits.
const loadBatch = 200

// Load implements store.Store. All records are inserted in one transaction.
func (s *Store) Load(ctx context.Context, snap model.Snapshot) error {
	tables := []struct {
		name string
		rows []any
	}{
		{"patients", mapRows(snap.Patients, func(p model.Patient) goqu.Record {
			return goqu.Record{"id": p.ID, "first_name": p.FirstName, "last_name": p.LastName,
				"date_of_birth": p.DateOfBirth.Format(dateLayout)}
		})},
		{"diagnoses", mapRows(snap.Diagnoses, func(d model.Diagnosis) goqu.Record {
			return goqu.Record{"id": d.ID, "icd_code": d.ICDCode, "description": d.Description, "severity": d.Severity}
		})},
		{"cpt_codes", mapRows(snap.CPTCodes, func(c model.CPTCode) goqu.Record {
			return goqu.Record{"id": c.ID, "code": c.Code, "description": c.Description,
				"duration_minutes": c.DurationMinutes, "requires_specialist": boolInt(c.RequiresSpecialist)}
		})},
		{"resources", mapRows(snap.Resources, func(r model.Resource) goqu.Record {
			return goqu.Record{"id": r.ID, "name": r.Name, "type": r.Type, "is_available": boolInt(r.Available)}
		})},
		{"patient_procedures", mapRows(snap.Procedures, func(p model.ProcedureRequest) goqu.Record {
			var diag any
			if p.DiagnosisID != nil {
				diag = *p.DiagnosisID
			}
			return goqu.Record{"id": p.ID, "patient_id": p.PatientID, "cpt_code_id": p.CPTCodeID,
				"diagnosis_id": diag, "order_date": p.OrderedAt.UTC().Format(stampLayout),
				"priority": p.Priority, "notes": p.Notes}
		})},
		{"time_slots", mapRows(snap.Slots, func(sl model.TimeSlot) goqu.Record {
			return goqu.Record{"id": sl.ID, "resource_id": sl.ResourceID, "date": sl.Date.Format(dateLayout),
				"start_time": sl.Start.String(), "end_time": sl.End.String(), "is_available": boolInt(sl.Available)}
		})},
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, t := range tables {
			for lo := 0; lo < len(t.rows); lo += loadBatch {
				hi := min(lo+loadBatch, len(t.rows))
				ds := s.gq.Insert(t.name).Prepared(true).Rows(t.rows[lo:hi]...)
				if _, err := exec(ctx, tx, ds); err != nil {
					return fmt.Errorf("insert %s: %w", t.name, err)
				}
			}
		}
		return nil
	})
}

func mapRows[T any](items []T, fn func(T) goqu.Record) []any {
	rows := make([]any, len(items))
	for i, it := range items {
		rows[i] = fn(it)
	}
	return rows
}
