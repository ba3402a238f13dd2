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
	"os"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// PullResult reports whether the pull resolved cleanly as a
// fast-forward or required conflict resolution.
type PullResult struct {
	Changed    bool // branch reference moved
	Conflicted bool // a merge commit was created to resolve divergence
}

// Pull implements spec §4.3's pull step: fetch, then fast-forward if
// possible, else resolve conflicts and create a merge commit.
func (r *Repo) Pull() (PullResult, error) {
	err := r.repo.Fetch(&gogit.FetchOptions{
		RemoteName: originRemote,
		Auth:       r.auth,
		Force:      true,
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("+refs/heads/%s:%s", r.branch, remoteBranchRef(r.branch))),
		},
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		if errors.Is(err, transport.ErrEmptyRemoteRepository) || errors.Is(err, gogit.NoMatchingRefSpecError{}) {
			r.log.Info("nothing to pull from remote yet")
			return PullResult{}, nil
		}
		return PullResult{}, fmt.Errorf("fetch failed: %w", err)
	}

	theirsRef, err := r.repo.Reference(remoteBranchRef(r.branch), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return PullResult{}, nil
		}
		return PullResult{}, fmt.Errorf("failed to resolve remote branch: %w", err)
	}
	theirsHash := theirsRef.Hash()

	oursRef, err := r.repo.Reference(localBranchRef(r.branch), true)
	if err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return PullResult{}, fmt.Errorf("failed to resolve local branch: %w", err)
		}
		// Unborn branch: nothing local to preserve, fast-forward trivially.
		if err := r.resetHard(theirsHash); err != nil {
			return PullResult{}, err
		}
		return PullResult{Changed: true}, nil
	}
	oursHash := oursRef.Hash()

	if oursHash == theirsHash {
		return PullResult{}, nil
	}

	oursCommit, err := r.repo.CommitObject(oursHash)
	if err != nil {
		return PullResult{}, fmt.Errorf("failed to load local commit: %w", err)
	}
	theirsCommit, err := r.repo.CommitObject(theirsHash)
	if err != nil {
		return PullResult{}, fmt.Errorf("failed to load remote commit: %w", err)
	}

	isAncestor, err := oursCommit.IsAncestor(theirsCommit)
	if err != nil {
		return PullResult{}, fmt.Errorf("failed to compute ancestry: %w", err)
	}
	if isAncestor {
		if err := r.resetHard(theirsHash); err != nil {
			return PullResult{}, err
		}
		return PullResult{Changed: true}, nil
	}

	if err := r.resolveConflict(oursCommit, theirsCommit); err != nil {
		return PullResult{}, err
	}
	return PullResult{Changed: true, Conflicted: true}, nil
}

func (r *Repo) resetHard(dest plumbing.Hash) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(localBranchRef(r.branch), dest)); err != nil {
		return fmt.Errorf("failed to move branch reference: %w", err)
	}

	if err := worktree.Reset(&gogit.ResetOptions{Commit: dest, Mode: gogit.HardReset}); err != nil {
		return fmt.Errorf("failed to reset worktree: %w", err)
	}
	return nil
}

// resolveConflict implements spec §4.3's conflict resolution: for
// every path touched on our side, keep the remote ("theirs") content
// if theirs has any; otherwise fall back to our content; if neither
// side has content at that path, leave it removed. Paths touched only
// by theirs, or untouched by either side, are already correct once the
// worktree is reset to theirs. The result is committed with both
// commits as parents.
func (r *Repo) resolveConflict(ours, theirs *object.Commit) error {
	bases, err := ours.MergeBase(theirs)
	if err != nil {
		return fmt.Errorf("failed to compute merge base: %w", err)
	}

	var baseTree *object.Tree
	if len(bases) > 0 {
		baseTree, err = bases[0].Tree()
		if err != nil {
			return fmt.Errorf("failed to load merge-base tree: %w", err)
		}
	}

	oursTree, err := ours.Tree()
	if err != nil {
		return fmt.Errorf("failed to load local tree: %w", err)
	}
	theirsTree, err := theirs.Tree()
	if err != nil {
		return fmt.Errorf("failed to load remote tree: %w", err)
	}

	// object.DiffTree tolerates a nil tree on either side, treating it
	// as empty — used here when the two histories share no ancestor.
	changesOurs, err := object.DiffTree(baseTree, oursTree)
	if err != nil {
		return fmt.Errorf("failed to diff base against local: %w", err)
	}
	changesTheirs, err := object.DiffTree(baseTree, theirsTree)
	if err != nil {
		return fmt.Errorf("failed to diff base against remote: %w", err)
	}

	theirsByPath := make(map[string]*object.Change, len(changesTheirs))
	for _, c := range changesTheirs {
		theirsByPath[changePath(c)] = c
	}

	if err := r.resetHard(theirs.Hash); err != nil {
		return err
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, oursChange := range changesOurs {
		p := changePath(oursChange)
		if theirsChange, conflicted := theirsByPath[p]; conflicted && theirsChange.To.Name != "" {
			// Theirs still has content here: already correct post-checkout.
			continue
		}

		if oursChange.To.Name == "" {
			// Ours deleted the path; if theirs also has nothing there,
			// it is already absent after the checkout.
			if err := removeWorktreePath(worktree, p); err != nil {
				return err
			}
			continue
		}

		content, err := blobContents(oursTree, p)
		if err != nil {
			return fmt.Errorf("failed to read local blob for %s: %w", p, err)
		}
		if err := writeWorktreePath(worktree, r.path, p, content); err != nil {
			return err
		}
	}

	sig := commitSignature(r.signature)
	_, err = worktree.Commit(fmt.Sprintf("merge: resolve divergence on %s", r.branch), &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
		Parents:   []plumbing.Hash{ours.Hash, theirs.Hash},
	})
	if err != nil {
		return fmt.Errorf("failed to create merge commit: %w", err)
	}
	return nil
}

func changePath(c *object.Change) string {
	if c.To.Name != "" {
		return c.To.Name
	}
	return c.From.Name
}

func blobContents(tree *object.Tree, path string) ([]byte, error) {
	file, err := tree.File(path)
	if err != nil {
		return nil, err
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(contents), nil
}

func writeWorktreePath(worktree *gogit.Worktree, root, relPath string, content []byte) error {
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	if _, err := worktree.Add(relPath); err != nil {
		return fmt.Errorf("failed to stage %s: %w", relPath, err)
	}
	return nil
}

func removeWorktreePath(worktree *gogit.Worktree, relPath string) error {
	full := filepath.Join(worktree.Filesystem.Root(), relPath)
	if _, err := os.Stat(full); err == nil {
		if err := os.Remove(full); err != nil {
			return fmt.Errorf("failed to remove %s: %w", relPath, err)
		}
	}
	if _, err := worktree.Remove(relPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to unstage %s: %w", relPath, err)
	}
	return nil
}

func commitSignature(name string) *object.Signature {
	return &object.Signature{Name: name, Email: name + "@shepherd.local", When: time.Now()}
}
