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

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusSeos/shepherd/internal/shepherderr"
)

// TestDo_SucceedsAfterRetries exercises property 6: an operation
// retried is invoked at most max_attempts times and not invoked again
// after its first success (spec §8 scenario 5, PRTB retry).
func TestDo_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", shepherderr.API("create", 404, "", errors.New("not found"))
		}
		return "created", nil
	}

	result, err := Do(context.Background(), logr.Discard(), "create-prtb", 5, time.Millisecond,
		func(err error) bool {
			return shepherderr.IsNotFound(err) || shepherderr.IsServerError(err)
		}, op)

	require.NoError(t, err)
	assert.Equal(t, "created", result)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnNonRetriableError(t *testing.T) {
	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		return "", shepherderr.API("create", 400, "", errors.New("bad request"))
	}

	_, err := Do(context.Background(), logr.Discard(), "create-prtb", 5, time.Millisecond,
		func(err error) bool {
			return shepherderr.IsNotFound(err) || shepherderr.IsServerError(err)
		}, op)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_NeverExceedsMaxAttempts(t *testing.T) {
	calls := 0
	op := func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("always fails")
	}

	_, err := Do(context.Background(), logr.Discard(), "label", 4, time.Millisecond,
		func(error) bool { return true }, op)

	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestWaitForPresence_TransientThenSuccess(t *testing.T) {
	calls := 0
	read := func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("resource not found")
		}
		return "ready", nil
	}

	result, err := WaitForPresence(context.Background(), logr.Discard(), "poll", 10, time.Millisecond, read)
	require.NoError(t, err)
	assert.Equal(t, "ready", result)
	assert.Equal(t, 3, calls)
}

func TestWaitForPresence_ShortCircuitsOnOtherError(t *testing.T) {
	calls := 0
	read := func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("unauthorized")
	}

	_, err := WaitForPresence(context.Background(), logr.Discard(), "poll", 10, time.Millisecond, read)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
