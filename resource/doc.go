// Package resource governs the resources shared by indexes in one process.
//
//   - Workers: a weighted semaphore bounding concurrent build and scoring work
//   - Memory: fail-fast accounting of index memory with an optional hard limit
//   - Queries: a token bucket pacing query submission
//   - IO: a byte-rate limiter for dataset reads
//
// Build paths block for a worker slot with AcquireWorker; query paths only
// take one with TryAcquireWorker and fall back to inline work.
//
//	rc := resource.NewController(resource.Config{
//	    MaxWorkers:    4,
//	    QueriesPerSec: 500,
//	})
//	if err := rc.WaitQuery(ctx); err != nil {
//	    return err
//	}
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
