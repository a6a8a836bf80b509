package scheduling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/procsched/app"
	"github.com/kilianp07/procsched/core/model"
	"github.com/kilianp07/procsched/core/runlog"
	"github.com/kilianp07/procsched/core/store"
	"github.com/kilianp07/procsched/core/store/storetest"
	"github.com/kilianp07/procsched/infra/logger"
)

type memRuns struct{ recs []runlog.Record }

func (m *memRuns) Append(_ context.Context, r runlog.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memRuns) Query(_ context.Context, q runlog.Query) ([]runlog.Record, error) {
	var out []runlog.Record
	for _, r := range m.recs {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRuns) Close() error { return nil }

func newServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, st.Load(context.Background(), storetest.Fixture()))
	svc, err := app.NewService(app.Options{
		Store:  st,
		RunLog: &memRuns{},
		Logger: logger.NopLogger{},
		Now:    func() time.Time { return storetest.Day0.Add(7 * time.Hour) },
	})
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(svc, token))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

const optimizeBody = `{"start_date":"2024-03-04","end_date":"2024-03-05"}`

func TestOptimizeAndManageAppointments(t *testing.T) {
	srv := newServer(t, "")
	base := srv.URL + "/api/scheduling"

	var res OptimizeResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/optimize", optimizeBody, &res))
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Appointments, 3)
	assert.Equal(t, "Scheduled 3 out of 3 procedures", res.Message)
	assert.InDelta(t, 1.0, res.Score, 1e-9)

	var list []model.Appointment
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/appointments?patient_id=2", "", &list))
	assert.Len(t, list, 2)
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/appointments?skip=1&limit=1", "", &list))
	assert.Len(t, list, 1)

	id := res.Appointments[0].ID
	var a model.Appointment
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/appointments/"+itoa(id), "", &a))
	assert.Equal(t, model.StatusScheduled, a.Status)

	require.Equal(t, http.StatusOK, do(t, http.MethodPut, base+"/appointments/"+itoa(id)+"/cancel", "", &a))
	assert.Equal(t, model.StatusCancelled, a.Status)
	var e errorBody
	assert.Equal(t, http.StatusConflict, do(t, http.MethodPut, base+"/appointments/"+itoa(id)+"/cancel", "", &e))
	assert.Contains(t, e.Detail, "already cancelled")

	var runs []runlog.Record
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/runs?run_id="+res.RunID, "", &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)
}

func TestRunsEndDateCoversWholeDay(t *testing.T) {
	srv := newServer(t, "")
	base := srv.URL + "/api/scheduling"

	var res OptimizeResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/optimize", optimizeBody, &res))

	var runs []runlog.Record
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/runs?end=2024-03-04", "", &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].RunID)

	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/runs?end=2024-03-03", "", &runs))
	assert.Empty(t, runs)
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/runs?end=2024-03-04T06:00:00Z", "", &runs))
	assert.Empty(t, runs)
}

func TestDryRunDoesNotBook(t *testing.T) {
	srv := newServer(t, "")
	base := srv.URL + "/api/scheduling"
	var res OptimizeResponse
	body := `{"start_date":"2024-03-04","end_date":"2024-03-05","dry_run":true}`
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/optimize", body, &res))
	assert.True(t, res.DryRun)
	assert.Len(t, res.Appointments, 3)
	var list []model.Appointment
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base+"/appointments", "", &list))
	assert.Empty(t, list)
}

func TestErrorStatusCodes(t *testing.T) {
	srv := newServer(t, "")
	base := srv.URL + "/api/scheduling"
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"end before start", http.MethodPost, "/optimize", `{"start_date":"2024-03-05","end_date":"2024-03-04"}`, http.StatusBadRequest},
		{"threshold out of range", http.MethodPost, "/optimize", `{"start_date":"2024-03-04","end_date":"2024-03-05","priority_threshold":9}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/optimize", `{"start_date":"tomorrow","end_date":"2024-03-05"}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/optimize", `{"start":"2024-03-04"}`, http.StatusBadRequest},
		{"missing appointment", http.MethodGet, "/appointments/99", "", http.StatusNotFound},
		{"bad id", http.MethodGet, "/appointments/abc", "", http.StatusBadRequest},
		{"cancel missing", http.MethodPut, "/appointments/99/cancel", "", http.StatusNotFound},
		{"bad limit", http.MethodGet, "/appointments?limit=-1", "", http.StatusBadRequest},
		{"wrong method", http.MethodGet, "/optimize", "", http.StatusMethodNotAllowed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, do(t, c.method, base+c.path, c.body, nil))
		})
	}
}

func TestBearerToken(t *testing.T) {
	srv := newServer(t, "secret")
	url := srv.URL + "/api/scheduling/appointments"
	assert.Equal(t, http.StatusUnauthorized, do(t, http.MethodGet, url, "", nil))

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/healthz", "", nil))
}

type panicking struct{ Scheduler }

func (panicking) Appointments(context.Context, store.AppointmentFilter) ([]model.Appointment, error) {
	panic("boom")
}

func TestPanicBecomes500(t *testing.T) {
	srv := httptest.NewServer(NewHandler(panicking{}, ""))
	defer srv.Close()
	assert.Equal(t, http.StatusInternalServerError, do(t, http.MethodGet, srv.URL+"/api/scheduling/appointments", "", nil))
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
