package sqlstore

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect captures the differences between the supported databases.
type Dialect struct {
	Name string
	// Driver is the database/sql driver name.
	Driver string
	// Builder is the goqu dialect that renders queries.
	Builder string
	// IDColumn is the DDL of an auto-assigned integer primary key.
	IDColumn string
	// Returning reports INSERT ... RETURNING support in the builder.
	Returning bool
}

// Supported dialects.
var (
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", Builder: "sqlite3", IDColumn: "INTEGER PRIMARY KEY AUTOINCREMENT"}
	Postgres = Dialect{Name: "postgres", Driver: "pgx", Builder: "postgres", IDColumn: "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY", Returning: true}
)

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "", SQLite.Name:
		return SQLite, nil
	case Postgres.Name, "pgx":
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("unsupported store driver %s", name)
}

// goqu returns the query builder of the dialect.
func (d Dialect) goqu() goqu.DialectWrapper { return goqu.Dialect(d.Builder) }

// schema returns the DDL statements creating every table. Dates are stored
// as ISO-8601 text so that both dialects compare them the same way.
func (d Dialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS patients (
			id BIGINT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			date_of_birth TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS diagnoses (
			id BIGINT PRIMARY KEY,
			icd_code TEXT NOT NULL,
			description TEXT NOT NULL,
			severity INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS cpt_codes (
			id BIGINT PRIMARY KEY,
			code TEXT NOT NULL,
			description TEXT NOT NULL,
			duration_minutes INTEGER NOT NULL,
			requires_specialist INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS patient_procedures (
			id BIGINT PRIMARY KEY,
			patient_id BIGINT NOT NULL,
			cpt_code_id BIGINT NOT NULL,
			diagnosis_id BIGINT,
			order_date TEXT NOT NULL,
			priority INTEGER NOT NULL,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS resources (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			is_available INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS time_slots (
			id BIGINT PRIMARY KEY,
			resource_id BIGINT NOT NULL,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			is_available INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_time_slots_date ON time_slots (date, is_available)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS appointments (
			id %s,
			patient_id BIGINT NOT NULL,
			procedure_id BIGINT NOT NULL,
			resource_id BIGINT NOT NULL,
			time_slot_id BIGINT NOT NULL,
			scheduled_date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			status TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`, d.IDColumn),
		`CREATE INDEX IF NOT EXISTS idx_appointments_procedure ON appointments (procedure_id, status)`,
	}
}
