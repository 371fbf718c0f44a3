package payroll

import "context"

type RecordStore interface {
	Save(ctx context.Context, period Period, entries []Entry) (string, error)
	Fetch(ctx context.Context, id string) (PeriodWithEntries, error)
	List(ctx context.Context) ([]Period, error)
	Ping(ctx context.Context) error
}
