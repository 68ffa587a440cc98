// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig controls how often a failing external tool is invoked again
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	// MaxInterval caps a single wait; zero means no cap
	MaxInterval time.Duration
	Multiplier  float64
	// Jitter adds up to a quarter of the wait at random
	Jitter  bool
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns the retry policy for OCR tool invocations.
// Rendering and recognition are local, so waits stay short.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 250 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
	}
}

// Delay returns the wait before the given retry (1-based), without jitter:
// InitialInterval * Multiplier^(attempt-1), capped at MaxInterval.
func (c RetryConfig) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	mult := c.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(c.InitialInterval) * math.Pow(mult, float64(attempt-1))
	if c.MaxInterval > 0 && d > float64(c.MaxInterval) {
		return c.MaxInterval
	}
	return time.Duration(d)
}

func (c RetryConfig) wait(attempt int) time.Duration {
	d := c.Delay(attempt)
	if c.Jitter && d > 0 {
		d += time.Duration(rand.Int63n(int64(d)/4 + 1))
	}
	return d
}

// RetryableOperation represents an operation that can be retried.
type RetryableOperation func(ctx context.Context) error

// RetryWithBackoff runs operation until it succeeds, fails permanently or
// the retries are used up. Only errors that ClassifyError marks retryable
// are attempted again; the last error is returned.
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation RetryableOperation) error {
	err := operation(ctx)
	for attempt := 1; err != nil && attempt <= config.MaxRetries; attempt++ {
		if !IsRetryable(err) {
			return err
		}
		if config.OnRetry != nil {
			config.OnRetry(attempt, err)
		}

		timer := time.NewTimer(config.wait(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}

// RetryableFunc is a RetryableOperation that also produces a value
type RetryableFunc[T any] func(ctx context.Context) (T, error)

// RetryWithResult is RetryWithBackoff for operations with a result
func RetryWithResult[T any](ctx context.Context, config RetryConfig, fn RetryableFunc[T]) (T, error) {
	var result T
	err := RetryWithBackoff(ctx, config, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}

// IsRetryable reports whether an error should be retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return ClassifyError(err).IsRetryable()
}
