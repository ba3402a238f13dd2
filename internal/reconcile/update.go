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
	"encoding/json"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/DeusSeos/shepherd/internal/diff"
	"github.com/DeusSeos/shepherd/internal/rancherapi"
	"github.com/DeusSeos/shepherd/internal/resource"
)

// runUpdatePhase dispatches every patch in patches with parallelism
// bounded by r.cfg.MaxParallelUpdates. Every worker always returns a
// nil error to errgroup so one object's failure never cancels the
// others in flight (spec §4.6: per-object failure isolation) — bounded
// fan-out follows rancher-fleet's multiNamespaceList shape, but that
// function lets errgroup's own error propagation cancel the group on
// first failure, which this reconciler cannot afford.
func (r *Reconciler) runUpdatePhase(ctx context.Context, patches map[diff.Key]diff.Patch) ([]string, []ObjectFailure) {
	var mu sync.Mutex
	var updated []string
	var failures []ObjectFailure

	g := &errgroup.Group{}
	g.SetLimit(r.cfg.MaxParallelUpdates)

	for key, patch := range patches {
		key, patch := key, patch
		g.Go(func() error {
			err := dispatchUpdate(ctx, r.api, key, patch)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, ObjectFailure{Kind: key.Kind, ID: key.ID, Op: "update", Err: err})
				return nil
			}
			updated = append(updated, key.String())
			return nil
		})
	}
	_ = g.Wait()

	return updated, failures
}

func dispatchUpdate(ctx context.Context, api *rancherapi.Client, key diff.Key, patch diff.Patch) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	switch key.Kind {
	case resource.KindCluster:
		_, err = rancherapi.UpdateViaPatch[resource.ClusterWire](ctx, api, key.Kind, "", key.ID, raw)
	case resource.KindRoleTemplate:
		_, err = rancherapi.UpdateViaPatch[resource.RoleTemplateWire](ctx, api, key.Kind, "", key.ID, raw)
	case resource.KindProject:
		_, err = rancherapi.UpdateViaPatch[resource.ProjectWire](ctx, api, key.Kind, key.Namespace, key.ID, raw)
	case resource.KindPRTB:
		_, err = rancherapi.UpdateViaPatch[resource.PRTBWire](ctx, api, key.Kind, key.Namespace, key.ID, raw)
	}
	return err
}
