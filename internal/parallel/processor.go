// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"sort"
	"time"

	"roster-stamp/internal/observability"
)

// DefaultWorkers is the CPU count, capped at 8
func DefaultWorkers() int {
	return min(runtime.NumCPU(), 8)
}

// ProcessingStats tracks one ProcessPages call
type ProcessingStats struct {
	TotalJobs     int           `json:"total_jobs"`
	Completed     int           `json:"completed"`
	WorkerCount   int           `json:"worker_count"`
	TotalDuration time.Duration `json:"total_duration_ms"`
	AvgJobTime    time.Duration `json:"avg_job_time_ms"`
}

// ProcessPages runs handler for indices 0..n-1 and returns the completed
// results ordered by index. With workers <= 1 the pages run sequentially
// on the calling goroutine. On cancellation the results completed so far
// are returned together with ctx.Err().
func ProcessPages[T any](ctx context.Context, workers, n int, handler Handler[T], observer *observability.StandardObserver) ([]Result[T], *ProcessingStats, error) {
	start := time.Now()
	finishTiming := observer.StartTiming("parallel_processor", "process_pages", "batch")

	var results []Result[T]
	if workers <= 1 || n <= 1 {
		workers = 1
		results = sequential(ctx, n, handler)
	} else {
		workers = min(workers, n)
		results = pooled(ctx, workers, n, handler, observer)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	var jobTime time.Duration
	for _, r := range results {
		jobTime += r.Duration
	}
	stats := &ProcessingStats{
		TotalJobs:     n,
		Completed:     len(results),
		WorkerCount:   workers,
		TotalDuration: time.Since(start),
		AvgJobTime:    jobTime / time.Duration(max(len(results), 1)),
	}

	err := ctx.Err()
	finishTiming(err == nil, map[string]interface{}{
		"total_jobs":   n,
		"completed":    stats.Completed,
		"worker_count": workers,
	})
	return results, stats, err
}

func sequential[T any](ctx context.Context, n int, handler Handler[T]) []Result[T] {
	results := make([]Result[T], 0, n)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		value := handler(ctx, i)
		if ctx.Err() != nil {
			break
		}
		results = append(results, Result[T]{Index: i, Value: value, Duration: time.Since(start)})
	}
	return results
}

func pooled[T any](ctx context.Context, workers, n int, handler Handler[T], observer *observability.StandardObserver) []Result[T] {
	pool := NewWorkerPool(ctx, workers, handler, observer)
	pool.Start()
	defer pool.Stop()

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer pool.Close()
		for i := 0; i < n; i++ {
			if !pool.Submit(i) {
				return
			}
		}
	}()

	results := make([]Result[T], 0, n)
	for r := range pool.Results() {
		results = append(results, r)
	}
	return results
}
