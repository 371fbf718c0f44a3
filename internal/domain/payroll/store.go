package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres record store.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Save(ctx context.Context, period Period, entries []Entry) (string, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO payroll_periods (start_date, end_date, payment_date, status, total_amount)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, period.StartDate, period.EndDate, period.PaymentDate, string(period.Status), period.TotalAmount).Scan(&id); err != nil {
		return "", fmt.Errorf("insert payroll period: %w", err)
	}

	batch := &pgx.Batch{}
	for i, entry := range entries {
		detailsJSON, err := json.Marshal(entry.AdditionalDetails)
		if err != nil {
			return "", err
		}
		batch.Queue(`
      INSERT INTO payroll_entries (payroll_period_id, position, employee_name, base_salary, taxes, net_pay, additional_details)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, id, i, entry.EmployeeName, entry.BaseSalary, entry.Taxes, entry.NetPay, detailsJSON)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", fmt.Errorf("insert payroll entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Fetch(ctx context.Context, id string) (PeriodWithEntries, error) {
	var out PeriodWithEntries
	var status string
	err := s.DB.QueryRow(ctx, `
    SELECT id, start_date, end_date, payment_date, status, total_amount, created_at, updated_at
    FROM payroll_periods
    WHERE id = $1
  `, id).Scan(&out.ID, &out.StartDate, &out.EndDate, &out.PaymentDate, &status, &out.TotalAmount, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return PeriodWithEntries{}, ErrPeriodNotFound
		}
		return PeriodWithEntries{}, err
	}
	out.Status = PeriodStatus(status)

	rows, err := s.DB.Query(ctx, `
    SELECT id, payroll_period_id, employee_name, base_salary, taxes, net_pay, additional_details, created_at
    FROM payroll_entries
    WHERE payroll_period_id = $1
    ORDER BY position
  `, id)
	if err != nil {
		return PeriodWithEntries{}, err
	}
	defer rows.Close()

	out.Entries = []Entry{}
	for rows.Next() {
		var entry Entry
		var detailsJSON []byte
		if err := rows.Scan(&entry.ID, &entry.PeriodID, &entry.EmployeeName, &entry.BaseSalary, &entry.Taxes, &entry.NetPay, &detailsJSON, &entry.CreatedAt); err != nil {
			return PeriodWithEntries{}, err
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.AdditionalDetails); err != nil {
				entry.AdditionalDetails = map[string]any{}
			}
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
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
		var period Period
		var status string
		if err := rows.Scan(&period.ID, &period.StartDate, &period.EndDate, &period.PaymentDate, &status, &period.TotalAmount, &period.CreatedAt, &period.UpdatedAt); err != nil {
			return nil, err
		}
		period.Status = PeriodStatus(status)
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}

func notFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	// malformed uuid
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
