// Package export writes schedule results and appointment lists as JSON or
// CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/procsched/core/model"
)

// Formats accepted by Write.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

var csvHeader = []string{
	"appointment_id", "patient_id", "procedure_id", "resource_id", "time_slot_id",
	"scheduled_date", "start_time", "end_time", "status", "notes",
}

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteCSV writes one row per appointment with a header line.
func WriteCSV(w io.Writer, appts []model.Appointment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range appts {
		rec := []string{
			strconv.FormatInt(a.ID, 10),
			strconv.FormatInt(a.PatientID, 10),
			strconv.FormatInt(a.ProcedureID, 10),
			strconv.FormatInt(a.ResourceID, 10),
			strconv.FormatInt(a.SlotID, 10),
			a.ScheduledDate.Format("2006-01-02"),
			a.Start.String(),
			a.End.String(),
			string(a.Status),
			a.Notes,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResult writes a schedule result in the given format. CSV carries the
// appointments only.
func WriteResult(w io.Writer, format string, res model.ScheduleResult) error {
	switch format {
	case "", FormatJSON:
		return WriteJSON(w, res)
	case FormatCSV:
		return WriteCSV(w, res.Appointments)
	}
	return fmt.Errorf("unknown export format %s", format)
}

// WriteAppointments writes an appointment list in the given format.
func WriteAppointments(w io.Writer, format string, appts []model.Appointment) error {
	switch format {
	case "", FormatJSON:
		if appts == nil {
			appts = []model.Appointment{}
		}
		return WriteJSON(w, appts)
	case FormatCSV:
		return WriteCSV(w, appts)
	}
	return fmt.Errorf("unknown export format %s", format)
}
