package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	batches           uint64
	batchItems        uint64
	batchItemFailures uint64
	calculations      uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordBatch counts one processed batch and its per-item outcomes.
func (c *Collector) RecordBatch(success, failure int) {
	atomic.AddUint64(&c.batches, 1)
	atomic.AddUint64(&c.batchItems, uint64(success+failure))
	atomic.AddUint64(&c.batchItemFailures, uint64(failure))
}

func (c *Collector) RecordCalculation() {
	atomic.AddUint64(&c.calculations, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            errs,
		"rateLimitedTotal":       limited,
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"calculationsTotal":      atomic.LoadUint64(&c.calculations),
		"batchesTotal":           atomic.LoadUint64(&c.batches),
		"batchItemsTotal":        atomic.LoadUint64(&c.batchItems),
		"batchItemFailuresTotal": atomic.LoadUint64(&c.batchItemFailures),
	}
}
