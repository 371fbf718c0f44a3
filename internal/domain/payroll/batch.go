package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

type BatchItem struct {
	Name   string            `json:"name"`
	Values map[string]string `json:"values"`
}

type ItemResult struct {
	Index        int    `json:"index"`
	EmployeeName string `json:"employeeName"`
	Result
}

type ItemError struct {
	Index        int    `json:"index"`
	EmployeeName string `json:"employeeName,omitempty"`
	Message      string `json:"message"`
}

type BatchResult struct {
	Results      []ItemResult `json:"results"`
	SuccessCount int          `json:"successCount"`
	FailureCount int          `json:"failureCount"`
	Errors       []ItemError  `json:"errors"`
}

type BatchProcessor struct {
	calc     *Calculator
	validate bool
}

func NewBatchProcessor(calc *Calculator) *BatchProcessor {
	return &BatchProcessor{calc: calc}
}

// Strict returns a processor that runs ValidateItem on each item first. An
// item that fails the check is reported like any other failed item.
func (p *BatchProcessor) Strict() *BatchProcessor {
	return &BatchProcessor{calc: p.calc, validate: true}
}

// Process calculates every item in order. A failing item is recorded in
// Errors and never stops the rest of the batch.
func (p *BatchProcessor) Process(items []BatchItem, fields []CustomField) BatchResult {
	outcomes := make([]itemOutcome, len(items))
	for i, item := range items {
		outcomes[i] = p.processItem(i, item, fields)
	}
	return collect(outcomes)
}

// ProcessParallel is Process spread over up to workers goroutines. The
// output order is the input order.
func (p *BatchProcessor) ProcessParallel(ctx context.Context, items []BatchItem, fields []CustomField, workers int) (BatchResult, error) {
	if workers <= 1 {
		return p.Process(items, fields), nil
	}
	outcomes := make([]itemOutcome, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.processItem(i, item, fields)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}
	return collect(outcomes), nil
}

type itemOutcome struct {
	result ItemResult
	err    *CalculationError
}

func (p *BatchProcessor) processItem(index int, item BatchItem, fields []CustomField) (outcome itemOutcome) {
	name := item.Name
	if name == "" {
		name = EmployeeName(item.Values)
	}
	defer func() {
		if rec := recover(); rec != nil {
			outcome = itemOutcome{err: &CalculationError{Index: index, Name: name, Err: fmt.Errorf("unexpected failure: %v", rec)}}
		}
	}()

	if p.validate {
		if err := ValidateItem(item); err != nil {
			return itemOutcome{err: &CalculationError{Index: index, Name: name, Err: err}}
		}
	}
	in, err := ToInput(item.Values, fields)
	if err != nil {
		return itemOutcome{err: &CalculationError{Index: index, Name: name, Err: err}}
	}
	return itemOutcome{result: ItemResult{
		Index:        index,
		EmployeeName: name,
		Result:       p.calc.Calculate(in, fields),
	}}
}

func collect(outcomes []itemOutcome) BatchResult {
	out := BatchResult{
		Results: make([]ItemResult, 0, len(outcomes)),
		Errors:  []ItemError{},
	}
	for _, outcome := range outcomes {
		if outcome.err != nil {
			slog.Warn("payroll batch item failed", "index", outcome.err.Index, "employee", outcome.err.Name, "err", outcome.err.Err)
			out.Errors = append(out.Errors, ItemError{
				Index:        outcome.err.Index,
				EmployeeName: outcome.err.Name,
				Message:      outcome.err.Err.Error(),
			})
			out.FailureCount++
			continue
		}
		out.Results = append(out.Results, outcome.result)
		out.SuccessCount++
	}
	return out
}
