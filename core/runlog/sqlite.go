package runlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "modernc.org/sqlite"
)

const runsTable = "schedule_runs"

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	gq goqu.DialectWrapper
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS schedule_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        ts INTEGER NOT NULL,
        score REAL,
        record TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_schedule_runs_ts ON schedule_runs (ts);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db, gq: goqu.Dialect("sqlite3")}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	query, args, err := s.gq.Insert(runsTable).Prepared(true).Rows(goqu.Record{
		"run_id": rec.RunID,
		"ts":     rec.Timestamp.UnixNano(),
		"score":  rec.Result.Score,
		"record": string(b),
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Query returns records matching q. Time and run filters run in SQL, the
// procedure and patient filters on the decoded records.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	query, args, err := s.selectQuery(q).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return q.limit(res), nil
}

func (s *SQLiteStore) selectQuery(q Query) *goqu.SelectDataset {
	ds := s.gq.From(runsTable).Prepared(true).Select("record")
	if !q.Start.IsZero() {
		ds = ds.Where(goqu.C("ts").Gte(q.Start.UnixNano()))
	}
	if !q.End.IsZero() {
		ds = ds.Where(goqu.C("ts").Lte(q.End.UnixNano()))
	}
	if q.RunID != "" {
		ds = ds.Where(goqu.C("run_id").Eq(q.RunID))
	}
	return ds.Order(goqu.C("ts").Asc(), goqu.C("id").Asc())
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
