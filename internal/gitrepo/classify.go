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
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/DeusSeos/shepherd/internal/resource"
	"github.com/DeusSeos/shepherd/internal/treepath"
)

// ClassifiedFile is a new or modified working-tree path, typed so the
// reconciler can order creation by referential priority.
type ClassifiedFile struct {
	Kind resource.Kind
	Path string
}

// DeletedFile carries the pre-deletion content of a path that is gone
// from the working tree but still present at HEAD, so the reconciler
// can recover the deleted record's id and namespace (spec §4.3).
type DeletedFile struct {
	Kind     resource.Kind
	Path     string
	Contents []byte
}

// ChangeSet is the three-way classification of working-tree changes
// spec §4.3 requires.
type ChangeSet struct {
	New      []ClassifiedFile
	Modified []ClassifiedFile
	Deleted  []DeletedFile
}

// Classify walks the working tree status and groups paths under
// subtreeRoot into new/modified/deleted, skipping .git/. New files are
// ordered by creation priority RoleTemplate < Project < PRTB < Cluster.
func (r *Repo) Classify(subtreeRoot string) (ChangeSet, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return ChangeSet{}, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return ChangeSet{}, fmt.Errorf("failed to get worktree status: %w", err)
	}

	headTree, err := r.headTree()
	if err != nil {
		return ChangeSet{}, err
	}

	var changes ChangeSet
	for path, fileStatus := range status {
		if strings.HasPrefix(path, ".git/") {
			continue
		}
		if subtreeRoot != "" && !strings.HasPrefix(path, subtreeRoot) {
			continue
		}

		kind := treepath.Classify(path)
		switch {
		case fileStatus.Worktree == gogit.Untracked:
			changes.New = append(changes.New, ClassifiedFile{Kind: kind, Path: path})
		case fileStatus.Worktree == gogit.Deleted:
			contents, err := blobContentsOrNil(headTree, path)
			if err != nil {
				return ChangeSet{}, fmt.Errorf("failed to read pre-deletion contents of %s: %w", path, err)
			}
			changes.Deleted = append(changes.Deleted, DeletedFile{Kind: kind, Path: path, Contents: contents})
		case fileStatus.Worktree == gogit.Modified || fileStatus.Staging == gogit.Modified:
			changes.Modified = append(changes.Modified, ClassifiedFile{Kind: kind, Path: path})
		}
	}

	sort.SliceStable(changes.New, func(i, j int) bool { return changes.New[i].Kind < changes.New[j].Kind })
	sort.SliceStable(changes.Modified, func(i, j int) bool { return changes.Modified[i].Kind < changes.Modified[j].Kind })

	return changes, nil
}

func (r *Repo) headTree() (*object.Tree, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, nil //nolint:nilnil // unborn branch: no HEAD to diff against yet
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to load HEAD tree: %w", err)
	}
	return tree, nil
}

func blobContentsOrNil(tree *object.Tree, path string) ([]byte, error) {
	if tree == nil {
		return nil, nil
	}
	return blobContents(tree, path)
}
