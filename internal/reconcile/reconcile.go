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

package reconcile

import (
	"context"

	"github.com/DeusSeos/shepherd/internal/diff"
	"github.com/DeusSeos/shepherd/internal/shepherderr"
)

// Tick runs one full convergence pass (spec §4.6):
//
//  1. pull the working tree, resolving any divergence from the remote;
//  2. commit and push whatever was already sitting in the tree before
//     this tick touched anything;
//  3. create every new object, one kind-priority barrier at a time,
//     with a readiness poll between barriers;
//  4. delete every object removed from the tree, children first;
//  5. for each configured cluster, diff its live state against its
//     recorded desired state and dispatch the resulting updates.
//
// Role templates are cluster-global on disk (spec §4.2: they live in a
// single shared roles/ directory, not nested under a cluster id), so
// their creation and deletion happen once per tick rather than once
// per configured cluster; only the update phase, which must compare
// against each cluster's own live Project/PRTB state, runs per
// cluster.
func (r *Reconciler) Tick(ctx context.Context) (TickSummary, error) {
	var summary TickSummary

	pullResult, err := r.repo.Pull()
	if err != nil {
		return summary, shepherderr.Git("reconcile.Tick.pull", err)
	}
	summary.PullConflicted = pullResult.Conflicted

	// Classify the working tree's dirty state before committing it: the
	// new/modified/deleted files captured here are this tick's record of
	// intent, and every phase below dispatches off this one snapshot
	// rather than re-deriving it post-commit (once committed, the
	// working tree is clean and nothing would be left to classify).
	changes, err := r.repo.Classify("")
	if err != nil {
		return summary, shepherderr.Git("reconcile.Tick.classify", err)
	}

	committed, err := r.repo.Commit("shepherd: capture pre-existing working tree changes")
	if err != nil {
		return summary, shepherderr.Git("reconcile.Tick.commit", err)
	}
	summary.Committed = committed

	if err := r.repo.Push(ctx); err != nil {
		r.log.Error(err, "push failed; continuing tick against local state")
	} else {
		summary.Pushed = true
	}

	created, createFailures := r.runCreatePhase(ctx, changes.New)
	summary.Created = append(summary.Created, created...)
	summary.Failures = append(summary.Failures, createFailures...)

	deleted, deleteFailures := r.runDeletePhase(ctx, changes.Deleted)
	summary.Deleted = append(summary.Deleted, deleted...)
	summary.Failures = append(summary.Failures, deleteFailures...)

	for _, clusterID := range r.cfg.ClusterNames {
		updated, updateFailures := r.reconcileClusterUpdates(ctx, clusterID)
		summary.Updated = append(summary.Updated, updated...)
		summary.Failures = append(summary.Failures, updateFailures...)
	}

	r.log.Info("tick complete",
		"created", len(summary.Created),
		"updated", len(summary.Updated),
		"deleted", len(summary.Deleted),
		"failures", len(summary.Failures),
		"pullConflicted", summary.PullConflicted,
	)

	return summary, nil
}

// reconcileClusterUpdates loads clusterID's desired (disk) and live
// (API) snapshots, diffs them, and dispatches the resulting patches.
// A failure loading either snapshot is recorded as a single
// cluster-scoped failure rather than aborting the rest of the tick.
func (r *Reconciler) reconcileClusterUpdates(ctx context.Context, clusterID string) ([]string, []ObjectFailure) {
	desired, err := loadDesiredSnapshot(r.repo.Path(), clusterID, r.cfg.FileFormat)
	if err != nil {
		return nil, []ObjectFailure{{ID: clusterID, Op: "update", Err: err}}
	}

	live, err := loadLiveSnapshot(ctx, r.api, clusterID)
	if err != nil {
		return nil, []ObjectFailure{{ID: clusterID, Op: "update", Err: err}}
	}

	patches, err := diff.ComputeClusterDiff(live, desired)
	if err != nil {
		return nil, []ObjectFailure{{ID: clusterID, Op: "update", Err: err}}
	}
	if len(patches) == 0 {
		return nil, nil
	}

	return r.runUpdatePhase(ctx, patches)
}
