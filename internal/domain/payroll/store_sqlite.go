package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS payroll_periods (
  id TEXT PRIMARY KEY,
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL,
  payment_date TEXT NOT NULL,
  status TEXT NOT NULL,
  total_amount REAL NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS payroll_entries (
  id TEXT PRIMARY KEY,
  payroll_period_id TEXT NOT NULL REFERENCES payroll_periods(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  employee_name TEXT NOT NULL,
  base_salary REAL NOT NULL,
  taxes REAL NOT NULL,
  net_pay REAL NOT NULL,
  additional_details TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payroll_entries_period ON payroll_entries(payroll_period_id, position);
`

// SQLiteStore keeps periods in a local SQLite file; used for single-node
// deployments without Postgres.
type SQLiteStore struct {
	DB *sql.DB
}

func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, period Period, entries []Entry) (string, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	now := formatSQLiteTime(time.Now().UTC())
	if _, err := tx.ExecContext(ctx, `
    INSERT INTO payroll_periods (id, start_date, end_date, payment_date, status, total_amount, created_at, updated_at)
    VALUES (?,?,?,?,?,?,?,?)
  `, id, formatSQLiteTime(period.StartDate), formatSQLiteTime(period.EndDate), formatSQLiteTime(period.PaymentDate),
		string(period.Status), period.TotalAmount, now, now); err != nil {
		return "", fmt.Errorf("insert payroll period: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
    INSERT INTO payroll_entries (id, payroll_period_id, position, employee_name, base_salary, taxes, net_pay, additional_details, created_at)
    VALUES (?,?,?,?,?,?,?,?,?)
  `)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for i, entry := range entries {
		detailsJSON, err := json.Marshal(entry.AdditionalDetails)
		if err != nil {
			return "", err
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), id, i, entry.EmployeeName, entry.BaseSalary, entry.Taxes, entry.NetPay, string(detailsJSON), now); err != nil {
			return "", fmt.Errorf("insert payroll entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) Fetch(ctx context.Context, id string) (PeriodWithEntries, error) {
	row := s.DB.QueryRowContext(ctx, `
    SELECT id, start_date, end_date, payment_date, status, total_amount, created_at, updated_at
    FROM payroll_periods
    WHERE id = ?
  `, id)
	period, err := scanSQLitePeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PeriodWithEntries{}, ErrPeriodNotFound
	}
	if err != nil {
		return PeriodWithEntries{}, err
	}

	rows, err := s.DB.QueryContext(ctx, `
    SELECT id, payroll_period_id, employee_name, base_salary, taxes, net_pay, COALESCE(additional_details, ''), created_at
    FROM payroll_entries
    WHERE payroll_period_id = ?
    ORDER BY position
  `, id)
	if err != nil {
		return PeriodWithEntries{}, err
	}
	defer rows.Close()

	out := PeriodWithEntries{Period: period, Entries: []Entry{}}
	for rows.Next() {
		var entry Entry
		var detailsJSON, createdAt string
		if err := rows.Scan(&entry.ID, &entry.PeriodID, &entry.EmployeeName, &entry.BaseSalary, &entry.Taxes, &entry.NetPay, &detailsJSON, &createdAt); err != nil {
			return PeriodWithEntries{}, err
		}
		if detailsJSON != "" {
			if err := json.Unmarshal([]byte(detailsJSON), &entry.AdditionalDetails); err != nil {
				entry.AdditionalDetails = map[string]any{}
			}
		}
		entry.CreatedAt = parseSQLiteTime(createdAt)
		out.Entries = append(out.Entries, entry)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context) ([]Period, error) {
	rows, err := s.DB.QueryContext(ctx, `
    SELECT id, start_date, end_date, payment_date, status, total_amount, created_at, updated_at
    FROM payroll_periods
    ORDER BY payment_date DESC, created_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := []Period{}
	for rows.Next() {
		period, err := scanSQLitePeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePeriod(row sqliteScanner) (Period, error) {
	var period Period
	var status, start, end, payment, created, updated string
	if err := row.Scan(&period.ID, &start, &end, &payment, &status, &period.TotalAmount, &created, &updated); err != nil {
		return Period{}, err
	}
	period.Status = PeriodStatus(status)
	period.StartDate = parseSQLiteTime(start)
	period.EndDate = parseSQLiteTime(end)
	period.PaymentDate = parseSQLiteTime(payment)
	period.CreatedAt = parseSQLiteTime(created)
	period.UpdatedAt = parseSQLiteTime(updated)
	return period, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseSQLiteTime(raw string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
