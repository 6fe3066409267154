// This file implements the generic, batched fact loader: it walks the
// prepared rows in fixed-size batches and invokes a provided bulk-insert
// function (CopyFn) per batch.
//
// Batches are strictly sequential. A failed batch aborts the load with the
// already-committed batches left in place; partial load is a documented
// outcome, recovered by truncate-and-rerun.
//
// Logging: on every successful flush, a concise progress line is emitted with
// running totals and instantaneous rows/sec since the previous flush.
package load

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn abstracts the backend's bulk insert capability. Implementations
// insert the provided rows (aligned to 'columns' order) and return the number
// of rows reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches splits rows into batches of size batchSize and calls copyFn for
// each non-empty batch, sequentially and in order. It returns the total number
// of rows reported by copyFn and the first error encountered.
func LoadBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int64
		start       = time.Now()
		lastFlushTS = start
	)

	for lo := 0; lo < len(rows); lo += batchSize {
		hi := lo + batchSize
		if hi > len(rows) {
			hi = len(rows)
		}

		if err := ctx.Err(); err != nil {
			return total, err
		}

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Printf("loader: COPY failed batch=%d inserted=%d total=%d err=%v", batches+1, n, total, err)
			return total, err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(n) / sinceLast.Seconds()
		}
		log.Printf(
			"loader: batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s since_last=%s",
			batches,
			rps,
			n,
			total,
			now.Sub(start).Truncate(time.Millisecond),
			sinceLast.Truncate(time.Millisecond),
		)
		lastFlushTS = now
	}

	return total, nil
}
