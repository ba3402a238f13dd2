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

package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"

	"github.com/DeusSeos/shepherd/internal/retry"
)

const (
	pushMaxAttempts = 3
	pushRetryDelay  = 2 * time.Second
)

// Push sends the configured branch to origin without forcing the
// server-side ref check, so the push only succeeds if it is a
// fast-forward (spec §4.3). A non-fast-forward rejection is returned
// unretried; anything else is treated as a transient network error and
// retried a bounded number of times.
func (r *Repo) Push(ctx context.Context) error {
	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", r.branch, r.branch))

	_, err := retry.Do(ctx, r.log, "git-push", pushMaxAttempts, pushRetryDelay,
		func(err error) bool { return !isNonFastForward(err) },
		func(ctx context.Context) (struct{}, error) {
			pushErr := r.repo.Push(&gogit.PushOptions{
				RemoteName: originRemote,
				Auth:       r.auth,
				RefSpecs:   []config.RefSpec{refSpec},
			})
			if pushErr != nil && errors.Is(pushErr, gogit.NoErrAlreadyUpToDate) {
				pushErr = nil
			}
			return struct{}{}, pushErr
		})
	return err
}

func isNonFastForward(err error) bool {
	return errors.Is(err, gogit.ErrNonFastForwardUpdate)
}
