package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64
	uploadsTotal    uint64
	uploadsFailed   uint64
	rowsProcessed   uint64
	rowsFailed      uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordUpload accumulates the outcome of one processed file.
func (c *Collector) RecordUpload(processed, failed int, ok bool) {
	atomic.AddUint64(&c.uploadsTotal, 1)
	if !ok {
		atomic.AddUint64(&c.uploadsFailed, 1)
	}
	if processed > 0 {
		atomic.AddUint64(&c.rowsProcessed, uint64(processed))
	}
	if failed > 0 {
		atomic.AddUint64(&c.rowsFailed, uint64(failed))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal": total,
		"errorsTotal":   atomic.LoadUint64(&c.errorRequests),
		"avgDurationMs": avg,
		"uploadsTotal":  atomic.LoadUint64(&c.uploadsTotal),
		"uploadsFailed": atomic.LoadUint64(&c.uploadsFailed),
		"rowsProcessed": atomic.LoadUint64(&c.rowsProcessed),
		"rowsFailed":    atomic.LoadUint64(&c.rowsFailed),
	}
}
