// Package storetest provides a behavioural test suite shared by every
// store.Store implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kilianp07/procsched/core/model"
	"github.com/kilianp07/procsched/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Day0 is the first calendar day of the Fixture slots.
var Day0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// Fixture returns a small clinic: two patients, three procedures, two
// resources and four slots over two days, one of them already taken.
func Fixture() model.Snapshot {
	diag := int64(1)
	return model.Snapshot{
		Patients: []model.Patient{
			{ID: 1, FirstName: "Ada", LastName: "Byron", DateOfBirth: time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC)},
			{ID: 2, FirstName: "Alan", LastName: "Turing", DateOfBirth: time.Date(1954, 6, 7, 0, 0, 0, 0, time.UTC)},
		},
		Diagnoses: []model.Diagnosis{{ID: 1, ICDCode: "I10", Description: "Essential hypertension", Severity: 2}},
		CPTCodes: []model.CPTCode{
			{ID: 1, Code: "99213", Description: "Office visit", DurationMinutes: 15},
			{ID: 2, Code: "93000", Description: "Electrocardiogram", DurationMinutes: 30, RequiresSpecialist: true},
		},
		Resources: []model.Resource{
			{ID: 1, Name: "Exam Room 1", Type: "Exam Room", Available: true},
			{ID: 2, Name: "EKG Room 1", Type: "EKG Room", Available: true},
		},
		Procedures: []model.ProcedureRequest{
			{ID: 1, PatientID: 1, CPTCodeID: 1, DiagnosisID: &diag, OrderedAt: Day0.AddDate(0, 0, -3), Priority: 2, Notes: "follow-up"},
			{ID: 2, PatientID: 2, CPTCodeID: 2, OrderedAt: Day0.AddDate(0, 0, -1), Priority: 1},
			{ID: 3, PatientID: 2, CPTCodeID: 1, OrderedAt: Day0.AddDate(0, 0, -7), Priority: 4},
		},
		Slots: []model.TimeSlot{
			{ID: 1, ResourceID: 1, Date: Day0, Start: model.NewTimeOfDay(8, 0), End: model.NewTimeOfDay(8, 30), Available: true},
			{ID: 2, ResourceID: 2, Date: Day0, Start: model.NewTimeOfDay(9, 0), End: model.NewTimeOfDay(9, 30), Available: true},
			{ID: 3, ResourceID: 1, Date: Day0.AddDate(0, 0, 1), Start: model.NewTimeOfDay(8, 0), End: model.NewTimeOfDay(8, 30), Available: true},
			{ID: 4, ResourceID: 1, Date: Day0.AddDate(0, 0, 1), Start: model.NewTimeOfDay(9, 0), End: model.NewTimeOfDay(9, 30), Available: false},
		},
	}
}

func appointmentFor(p model.ProcedureRequest, s model.TimeSlot) model.Appointment {
	return model.Appointment{
		PatientID:     p.PatientID,
		ProcedureID:   p.ID,
		ResourceID:    s.ResourceID,
		SlotID:        s.ID,
		ScheduledDate: s.Date,
		Start:         s.Start,
		End:           s.End,
		Status:        model.StatusScheduled,
		Notes:         "test booking",
	}
}

// Run exercises a store built by open, which must return an empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("Snapshot", func(t *testing.T) { testSnapshot(t, open(t)) })
	t.Run("CommitAndCancel", func(t *testing.T) { testCommitAndCancel(t, open(t)) })
	t.Run("CommitIsAtomic", func(t *testing.T) { testCommitAtomic(t, open(t)) })
	t.Run("ListFilters", func(t *testing.T) { testList(t, open(t)) })
}

func loaded(t *testing.T, s store.Store) model.Snapshot {
	t.Helper()
	fx := Fixture()
	require.NoError(t, s.Load(context.Background(), fx))
	return fx
}

func testSnapshot(t *testing.T, s store.Store) {
	fx := loaded(t, s)
	ctx := context.Background()
	snap, err := s.Snapshot(ctx, model.ScheduleRequest{StartDate: Day0, EndDate: Day0.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Len(t, snap.Procedures, 3)
	assert.Len(t, snap.Patients, 2)
	assert.Len(t, snap.CPTCodes, 2)
	assert.Len(t, snap.Resources, 2)
	assert.Len(t, snap.Slots, 3, "unavailable slot excluded")

	var first model.ProcedureRequest
	for _, p := range snap.Procedures {
		if p.ID == 1 {
			first = p
		}
	}
	require.NotNil(t, first.DiagnosisID)
	assert.Equal(t, int64(1), *first.DiagnosisID)
	assert.True(t, first.OrderedAt.Equal(fx.Procedures[0].OrderedAt))
	assert.Equal(t, "follow-up", first.Notes)

	snap, err = s.Snapshot(ctx, model.ScheduleRequest{PatientIDs: []int64{2}, ProcedureIDs: []int64{1, 3}, StartDate: Day0, EndDate: Day0})
	require.NoError(t, err)
	require.Len(t, snap.Procedures, 1)
	assert.Equal(t, int64(3), snap.Procedures[0].ID)
	require.Len(t, snap.Slots, 2)
	for _, sl := range snap.Slots {
		assert.True(t, model.DateOf(sl.Date).Equal(Day0))
		assert.Equal(t, 30, sl.DurationMinutes())
	}
}

func testCommitAndCancel(t *testing.T, s store.Store) {
	fx := loaded(t, s)
	ctx := context.Background()
	booked, err := s.Commit(ctx, []model.Appointment{
		appointmentFor(fx.Procedures[0], fx.Slots[0]),
		appointmentFor(fx.Procedures[1], fx.Slots[1]),
	})
	require.NoError(t, err)
	require.Len(t, booked, 2)
	assert.NotZero(t, booked[0].ID)
	assert.NotEqual(t, booked[0].ID, booked[1].ID)

	snap, err := s.Snapshot(ctx, model.ScheduleRequest{StartDate: Day0, EndDate: Day0.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Len(t, snap.Slots, 1, "booked slots are no longer available")
	assert.Len(t, snap.Procedures, 1, "booked procedures are no longer pending")

	got, err := s.GetAppointment(ctx, booked[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.SlotID)
	assert.Equal(t, model.StatusScheduled, got.Status)
	assert.Equal(t, "09:00", got.Start.String())

	cancelled, err := s.CancelAppointment(ctx, booked[1].ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	_, err = s.CancelAppointment(ctx, booked[1].ID)
	assert.True(t, errors.Is(err, store.ErrAlreadyCancelled), "got %v", err)
	_, err = s.CancelAppointment(ctx, 999)
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
	_, err = s.GetAppointment(ctx, 999)
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

	snap, err = s.Snapshot(ctx, model.ScheduleRequest{StartDate: Day0, EndDate: Day0.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Len(t, snap.Slots, 2, "cancelled slot reopened")
	assert.Len(t, snap.Procedures, 2, "cancelled procedure pending again")
}

func testCommitAtomic(t *testing.T, s store.Store) {
	fx := loaded(t, s)
	ctx := context.Background()
	_, err := s.Commit(ctx, []model.Appointment{
		appointmentFor(fx.Procedures[0], fx.Slots[0]),
		appointmentFor(fx.Procedures[2], fx.Slots[3]),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrSlotTaken), "got %v", err)

	list, err := s.ListAppointments(ctx, store.AppointmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	snap, err := s.Snapshot(ctx, model.ScheduleRequest{StartDate: Day0, EndDate: Day0})
	require.NoError(t, err)
	assert.Len(t, snap.Slots, 2, "failed commit leaves slots untouched")
}

func testList(t *testing.T, s store.Store) {
	fx := loaded(t, s)
	ctx := context.Background()
	_, err := s.Commit(ctx, []model.Appointment{
		appointmentFor(fx.Procedures[0], fx.Slots[0]),
		appointmentFor(fx.Procedures[1], fx.Slots[1]),
		appointmentFor(fx.Procedures[2], fx.Slots[2]),
	})
	require.NoError(t, err)

	cases := []struct {
		name string
		f    store.AppointmentFilter
		want []int64
	}{
		{"all", store.AppointmentFilter{}, []int64{1, 2, 3}},
		{"patient", store.AppointmentFilter{PatientID: 2}, []int64{2, 3}},
		{"resource", store.AppointmentFilter{ResourceID: 1}, []int64{1, 3}},
		{"from day 1", store.AppointmentFilter{StartDate: Day0.AddDate(0, 0, 1)}, []int64{3}},
		{"until day 0", store.AppointmentFilter{EndDate: Day0}, []int64{1, 2}},
		{"status", store.AppointmentFilter{Status: model.StatusCancelled}, nil},
		{"page", store.AppointmentFilter{Offset: 1, Limit: 1}, []int64{2}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			list, err := s.ListAppointments(ctx, c.f)
			require.NoError(t, err)
			var got []int64
			for _, a := range list {
				got = append(got, a.ProcedureID)
			}
			assert.Equal(t, c.want, got)
		})
	}
}
