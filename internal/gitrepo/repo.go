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

// Package gitrepo implements the Git worker of spec §4.3: bootstrap,
// fast-forward pull with conflict resolution, working-tree
// classification, commit, and push, all driven through go-git rather
// than shelling out to the git binary. It is grounded on the teacher's
// internal/git package (abstraction.go's flexPull/resetHard for the
// checkout strategy, git_atomic_push.go for the push-session shape,
// bootstrapped_repo_template.go for the commit/push idiom) and
// internal/ssh/auth.go for SSH authentication.
package gitrepo

import (
	"errors"
	"fmt"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-logr/logr"
)

// Repo wraps a single local clone dedicated to one cluster's endpoint
// directory and the one configured branch it tracks.
type Repo struct {
	repo      *gogit.Repository
	path      string
	remoteURL string
	branch    string
	auth      transport.AuthMethod
	log       logr.Logger
	signature string // "<client-id>/<version>", used as commit author/committer name
}

const originRemote = "origin"

// Open bootstraps the repository at path per spec §4.3: clones
// remoteURL if the directory is empty, falls back to a fresh init when
// the remote has no content to clone, reuses an existing repository in
// place, and errors if the directory is non-empty but not a repo.
func Open(
	log logr.Logger,
	remoteURL, path, branch string,
	auth transport.AuthMethod,
	signature string,
) (*Repo, error) {
	if branch == "" {
		branch = "main"
	}

	r := &Repo{path: path, remoteURL: remoteURL, branch: branch, auth: auth, log: log, signature: signature}

	repo, err := gogit.PlainOpen(path)
	switch {
	case err == nil:
		r.repo = repo
		log.Info("reusing existing repository", "path", path)
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		if err := r.bootstrapEmpty(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}

	if err := r.ensureRemoteOrigin(); err != nil {
		return nil, err
	}
	if err := r.ensureHead(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Repo) bootstrapEmpty() error {
	empty, err := dirIsEmptyOrAbsent(r.path)
	if err != nil {
		return err
	}
	if !empty {
		return fmt.Errorf("%s exists and is not a git repository", r.path)
	}

	if err := os.MkdirAll(r.path, 0750); err != nil {
		return fmt.Errorf("failed to create repo directory %s: %w", r.path, err)
	}

	cloned, err := gogit.PlainClone(r.path, false, &gogit.CloneOptions{
		URL:           r.remoteURL,
		Auth:          r.auth,
		ReferenceName: plumbing.NewBranchReferenceName(r.branch),
		SingleBranch:  true,
	})
	if err == nil {
		r.repo = cloned
		r.log.Info("cloned repository", "url", r.remoteURL, "path", r.path)
		return nil
	}

	if !errors.Is(err, transport.ErrEmptyRemoteRepository) && !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("failed to clone %s: %w", r.remoteURL, err)
	}

	r.log.Info("remote has nothing to check out, initializing fresh repository", "url", r.remoteURL)
	repo, err := gogit.PlainInit(r.path, false)
	if err != nil {
		return fmt.Errorf("failed to initialize repository at %s: %w", r.path, err)
	}
	r.repo = repo
	return nil
}

func dirIsEmptyOrAbsent(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	return len(entries) == 0, nil
}

func (r *Repo) ensureRemoteOrigin() error {
	remote, err := r.repo.Remote(originRemote)
	if err != nil {
		_, err := r.repo.CreateRemote(&config.RemoteConfig{Name: originRemote, URLs: []string{r.remoteURL}})
		return err
	}

	cfg := remote.Config()
	if len(cfg.URLs) > 0 && cfg.URLs[0] == r.remoteURL {
		return nil
	}

	if err := r.repo.DeleteRemote(originRemote); err != nil {
		return fmt.Errorf("failed to delete stale remote origin: %w", err)
	}
	_, err = r.repo.CreateRemote(&config.RemoteConfig{Name: originRemote, URLs: []string{r.remoteURL}})
	return err
}

// ensureHead points HEAD at the configured branch, creating an unborn
// symbolic reference when the branch has no commits yet.
func (r *Repo) ensureHead() error {
	ref := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(r.branch))
	return r.repo.Storer.SetReference(ref)
}

// Branch returns the configured branch short name.
func (r *Repo) Branch() string {
	return r.branch
}

// Path returns the working tree root on disk.
func (r *Repo) Path() string {
	return r.path
}

func localBranchRef(branch string) plumbing.ReferenceName {
	return plumbing.NewBranchReferenceName(branch)
}

func remoteBranchRef(branch string) plumbing.ReferenceName {
	return plumbing.NewRemoteReferenceName(originRemote, branch)
}
