package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/procsched/core/model"
	"github.com/kilianp07/procsched/core/store"
	"github.com/kilianp07/procsched/core/store/storetest"
)

var dbSeq atomic.Int64

func openSQLite(t *testing.T) store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:sqlstore_%d.db?mode=memory&cache=shared", dbSeq.Add(1))
	s, err := Open(context.Background(), Config{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, openSQLite)
}

func TestQueriesRenderPerDialect(t *testing.T) {
	req := model.ScheduleRequest{PatientIDs: []int64{3, 4}, ProcedureIDs: []int64{9}}
	for _, d := range []Dialect{SQLite, Postgres} {
		s := &Store{d: d, gq: d.goqu()}
		query, args, err := s.pendingQuery(req).ToSQL()
		require.NoError(t, err, d.Name)
		assert.Contains(t, query, "NOT EXISTS (SELECT 1 FROM", d.Name)
		assert.Equal(t, []any{"cancelled", int64(3), int64(4), int64(9)}, args, d.Name)
		if d.Returning {
			assert.Contains(t, query, "$4", d.Name)
			assert.NotContains(t, query, "?", d.Name)
		} else {
			assert.NotContains(t, query, "$", d.Name)
			assert.Equal(t, 4, strings.Count(query, "?"), d.Name)
		}

		query, _, err = s.listQuery(store.AppointmentFilter{PatientID: 7, Status: model.StatusScheduled}).ToSQL()
		require.NoError(t, err, d.Name)
		assert.Contains(t, query, "LIMIT", d.Name)
		assert.Contains(t, query, "OFFSET", d.Name)

		query, args, err = s.claimSlotQuery(12).ToSQL()
		require.NoError(t, err, d.Name)
		assert.True(t, strings.HasPrefix(query, "UPDATE"), query)
		assert.Len(t, args, 3, d.Name)
	}
}

func TestConfigValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if err := (Config{Driver: "mysql", DSN: "x"}).Validate(); err == nil {
		t.Fatal("expected unsupported driver error")
	}
	if err := (Config{Driver: "postgres"}).Validate(); err == nil {
		t.Fatal("expected missing dsn error")
	}
}
