package payroll

import (
	"context"
	"fmt"
	"time"
)

type Service struct {
	store     RecordStore
	registry  *Registry
	calc      *Calculator
	processor *BatchProcessor
	workers   int
}

func NewService(store RecordStore, registry *Registry, calc *Calculator, workers int) *Service {
	if registry == nil {
		registry = NewRegistry()
	}
	if calc == nil {
		calc = NewCalculator(DefaultSchedule())
	}
	return &Service{
		store:     store,
		registry:  registry,
		calc:      calc,
		processor: NewBatchProcessor(calc),
		workers:   workers,
	}
}

func (s *Service) Registry() *Registry {
	return s.registry
}

func (s *Service) Store() RecordStore {
	return s.store
}

func (s *Service) Calculate(in Input) Result {
	return s.calc.Calculate(in, s.registry.List())
}

// CalculateRaw maps raw form values through the same path a batch item
// takes, so single and batch calculations agree.
func (s *Service) CalculateRaw(values map[string]string) (Result, error) {
	fields := s.registry.List()
	in, err := ToInput(values, fields)
	if err != nil {
		return Result{}, err
	}
	return s.calc.Calculate(in, fields), nil
}

// ProcessBatch runs every item against one snapshot of the registry, so a
// field added or removed mid-batch is seen by none of the items.
func (s *Service) ProcessBatch(ctx context.Context, items []BatchItem) (BatchResult, error) {
	fields := s.registry.List()
	return s.processor.ProcessParallel(ctx, items, fields, s.workers)
}

// ProcessBatchStrict is ProcessBatch with ValidateItem run per item.
func (s *Service) ProcessBatchStrict(ctx context.Context, items []BatchItem) (BatchResult, error) {
	fields := s.registry.List()
	return s.processor.Strict().ProcessParallel(ctx, items, fields, s.workers)
}

// SaveRun persists the successful results of a batch as one payroll period.
func (s *Service) SaveRun(ctx context.Context, req PeriodRequest, batch BatchResult) (string, error) {
	if req.Status == "" {
		req.Status = PeriodStatusDraft
	}
	entries := EntriesFromBatch(batch)
	if err := ValidateSave(req, entries); err != nil {
		return "", err
	}

	var total float64
	for _, entry := range entries {
		total += entry.NetPay
	}
	period := Period{
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		PaymentDate: req.PaymentDate,
		Status:      req.Status,
		TotalAmount: Round2(total),
	}
	id, err := s.store.Save(ctx, period, entries)
	if err != nil {
		return "", fmt.Errorf("save payroll period: %w", err)
	}
	return id, nil
}

func (s *Service) Fetch(ctx context.Context, id string) (PeriodWithEntries, error) {
	return s.store.Fetch(ctx, id)
}

func (s *Service) ListPeriods(ctx context.Context) ([]Period, error) {
	return s.store.List(ctx)
}

// EntriesFromBatch turns item results into store entries. Taxes is
// everything statutory: PAYE, employee pension and health insurance.
func EntriesFromBatch(batch BatchResult) []Entry {
	entries := make([]Entry, 0, len(batch.Results))
	for _, item := range batch.Results {
		basic, _ := item.Details.Get(FieldBasicSalary)
		details := item.Details.Map()
		details["gross_income"] = item.GrossIncome
		for _, note := range item.Annotations {
			details[note.Name] = note.Text
		}
		entries = append(entries, Entry{
			EmployeeName:      item.EmployeeName,
			BaseSalary:        basic,
			Taxes:             Round2(item.Tax + item.EmployeePension + item.HealthInsurance),
			NetPay:            item.NetPay,
			AdditionalDetails: details,
		})
	}
	return entries
}

// PeriodLabel renders a date range as "Jan 1-31, 2025" or, across months,
// "Jan 25-Feb 24, 2025".
func PeriodLabel(start, end time.Time) string {
	if start.Month() == end.Month() && start.Year() == end.Year() {
		return fmt.Sprintf("%s %d-%d, %d", start.Format("Jan"), start.Day(), end.Day(), end.Year())
	}
	return fmt.Sprintf("%s %d-%s %d, %d", start.Format("Jan"), start.Day(), end.Format("Jan"), end.Day(), end.Year())
}
