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
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// Commit stages every pending change in the working tree and commits
// it with the supplied message, using the worker's deterministic
// "<client-id>/<version>" signature (spec §4.3). It returns false,nil
// if there was nothing to commit.
func (r *Repo) Commit(message string) (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}
	if status.IsClean() {
		return false, nil
	}

	if err := worktree.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("failed to stage changes: %w", err)
	}

	sig := commitSignature(r.signature)
	_, err = worktree.Commit(message, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil && !errors.Is(err, gogit.ErrEmptyCommit) {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return err == nil, nil
}
