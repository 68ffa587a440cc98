// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"sync"
	"time"

	"roster-stamp/internal/observability"
)

// Handler processes the job with the given index
type Handler[T any] func(ctx context.Context, index int) T

// Result carries a handler's value together with its job index, since
// workers finish out of order
type Result[T any] struct {
	Index    int
	Value    T
	Duration time.Duration
}

// WorkerPool runs a fixed number of workers over indexed jobs
type WorkerPool[T any] struct {
	workers  int
	jobs     chan int
	results  chan Result[T]
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	handler  Handler[T]
	observer *observability.StandardObserver
	close    sync.Once
}

// NewWorkerPool creates a pool bound to ctx
func NewWorkerPool[T any](ctx context.Context, workers int, handler Handler[T], observer *observability.StandardObserver) *WorkerPool[T] {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool[T]{
		workers:  workers,
		jobs:     make(chan int, workers*2),
		results:  make(chan Result[T], workers*2),
		ctx:      ctx,
		cancel:   cancel,
		handler:  handler,
		observer: observer,
	}
}

// Start initializes worker goroutines. The results channel is closed once
// every worker has exited.
func (wp *WorkerPool[T]) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	go func() {
		wp.wg.Wait()
		close(wp.results)
	}()
}

// Submit queues a job. It returns false once the pool's context is done.
func (wp *WorkerPool[T]) Submit(index int) bool {
	select {
	case wp.jobs <- index:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Close signals that no more jobs will be submitted
func (wp *WorkerPool[T]) Close() {
	wp.close.Do(func() { close(wp.jobs) })
}

// Stop cancels outstanding work
func (wp *WorkerPool[T]) Stop() {
	wp.cancel()
}

// Results returns the results channel
func (wp *WorkerPool[T]) Results() <-chan Result[T] {
	return wp.results
}

// worker processes jobs from the queue. Jobs picked up or finished after
// cancellation are dropped rather than reported half-done.
func (wp *WorkerPool[T]) worker(id int) {
	defer wp.wg.Done()

	for index := range wp.jobs {
		if wp.ctx.Err() != nil {
			continue
		}

		start := time.Now()
		finishTiming := wp.observer.StartTiming("worker_pool", "process_job", "")
		value := wp.handler(wp.ctx, index)
		finishTiming(true, map[string]interface{}{"worker_id": id, "job": index})

		if wp.ctx.Err() != nil {
			continue
		}
		wp.results <- Result[T]{Index: index, Value: value, Duration: time.Since(start)}
	}
}
