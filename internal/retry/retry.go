/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 Shepherd Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package retry implements the two generic, single-threaded helpers
// named in spec §4.7: a bounded retry driven by a caller-supplied
// predicate, and a specialization that waits for an object to become
// present. Callers introduce parallelism at the reconciler layer; these
// helpers drive one operation at a time.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/jpillora/backoff"

	"github.com/DeusSeos/shepherd/internal/shepherderr"
)

// Op is a single attempt at producing T.
type Op[T any] func(ctx context.Context) (T, error)

// ShouldRetry decides, given the error from the most recent attempt,
// whether another attempt should be made.
type ShouldRetry func(err error) bool

// Do runs op up to maxAttempts times, waiting delay between attempts
// (jpillora/backoff configured with Min==Max==delay, i.e. a constant
// interval — the shape spec §4.6/§4.7 calls for), stopping as soon as
// op succeeds or shouldRetry returns false. It logs every attempt at
// INFO and the final give-up at ERROR, matching the teacher's
// attempt-counter logging idiom.
func Do[T any](
	ctx context.Context,
	log logr.Logger,
	label string,
	maxAttempts int,
	delay time.Duration,
	shouldRetry ShouldRetry,
	op Op[T],
) (T, error) {
	b := &backoff.Backoff{Min: delay, Max: delay, Factor: 1, Jitter: false}

	var zero T
	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		attempts = attempt
		if err == nil {
			log.Info("retry succeeded", "label", label, "attempt", attempt)
			return result, nil
		}

		lastErr = err
		log.Info("retry attempt failed", "label", label, "attempt", attempt, "maxAttempts", maxAttempts, "error", err.Error())

		if !shouldRetry(err) {
			break
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}

	log.Error(lastErr, "giving up after retries", "label", label, "attempts", attempts)
	return zero, fmt.Errorf("%s: giving up after %d attempts: %w", label, attempts, lastErr)
}

// WaitForPresence retries read until it succeeds, treating any error
// whose classification is "not found" as transient and every other
// error as terminal (spec §4.6 readiness polling). It short-circuits
// immediately on a non-not-found error rather than spending the
// remaining attempts.
func WaitForPresence[T any](
	ctx context.Context,
	log logr.Logger,
	label string,
	maxAttempts int,
	delay time.Duration,
	read Op[T],
) (T, error) {
	var zero T
	var lastErr error

	b := &backoff.Backoff{Min: delay, Max: delay, Factor: 1, Jitter: false}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := read(ctx)
		if err == nil {
			log.Info("readiness confirmed", "label", label, "attempt", attempt)
			return result, nil
		}

		if !isTransientNotFound(err) {
			log.Info("readiness poll short-circuited by non-transient error", "label", label, "attempt", attempt, "error", err.Error())
			return zero, err
		}

		lastErr = err
		log.Info("readiness poll: not found yet", "label", label, "attempt", attempt, "maxAttempts", maxAttempts)

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}

	log.Error(lastErr, "readiness poll timed out", "label", label, "attempts", maxAttempts)
	return zero, fmt.Errorf("%s: not ready after %d attempts: %w", label, maxAttempts, lastErr)
}

// isTransientNotFound matches the typed API-not-found kind and, as a
// fallback for arbitrary errors surfaced from lower layers, any error
// whose message contains "not found" per spec §4.6's literal wording.
func isTransientNotFound(err error) bool {
	if shepherderr.IsNotFound(err) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
