package resource

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of concurrent worker goroutines.
	// If 0, defaults to GOMAXPROCS.
	MaxWorkers int64

	// MemoryLimitBytes is the hard limit for index memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// QueriesPerSec paces WaitQuery. If 0, unlimited.
	QueriesPerSec float64

	// QueryBurst is the token bucket size for queries. If 0, defaults to 1.
	QueryBurst int

	// IOLimitBytesPerSec is the maximum dataset read throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages process-wide resources.
type Controller struct {
	cfg Config

	workers *semaphore.Weighted
	busy    atomic.Int64

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	queryLimiter *rate.Limiter // nil if unlimited
	ioLimiter    *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = int64(runtime.GOMAXPROCS(0))
	}
	if cfg.QueryBurst <= 0 {
		cfg.QueryBurst = 1
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.QueriesPerSec > 0 {
		c.queryLimiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSec), cfg.QueryBurst)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireWorker reserves a worker slot, blocking until one is free or ctx is
// canceled.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.workers.Acquire(ctx, 1); err != nil {
		return err
	}
	c.busy.Add(1)
	return nil
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	if !c.workers.TryAcquire(1) {
		return false
	}
	c.busy.Add(1)
	return true
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.busy.Add(-1)
	c.workers.Release(1)
}

// BusyWorkers returns the number of held worker slots.
func (c *Controller) BusyWorkers() int64 {
	if c == nil {
		return 0
	}
	return c.busy.Load()
}

// AcquireMemory reserves bytes without blocking. It returns
// ErrMemoryLimitExceeded if a hard limit is configured and would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// WaitQuery blocks until the query rate allows one more query.
func (c *Controller) WaitQuery(ctx context.Context) error {
	if c == nil || c.queryLimiter == nil {
		return ctx.Err()
	}
	return c.queryLimiter.Wait(ctx)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
// Requests larger than one second of budget are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
