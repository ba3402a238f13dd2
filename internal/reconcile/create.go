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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/DeusSeos/shepherd/internal/gitrepo"
	"github.com/DeusSeos/shepherd/internal/rancherapi"
	"github.com/DeusSeos/shepherd/internal/resource"
	"github.com/DeusSeos/shepherd/internal/retry"
	"github.com/DeusSeos/shepherd/internal/serialize"
	"github.com/DeusSeos/shepherd/internal/shepherderr"
)

// creationOrder is the kind-priority barrier sequence spec §4.6
// requires: every RoleTemplate is created (and confirmed ready) before
// any Project is attempted, every Project before any PRTB, mirroring
// resource.Kind's own iota ordering.
var creationOrder = []resource.Kind{
	resource.KindRoleTemplate,
	resource.KindProject,
	resource.KindPRTB,
	resource.KindCluster,
}

// runCreatePhase creates every new file in files, one kind-priority
// barrier at a time: all objects of one kind are created with bounded
// parallelism, then their creation is confirmed live via a readiness
// poll before the next kind's barrier starts.
func (r *Reconciler) runCreatePhase(ctx context.Context, files []gitrepo.ClassifiedFile) ([]string, []ObjectFailure) {
	byKind := map[resource.Kind][]gitrepo.ClassifiedFile{}
	for _, f := range files {
		byKind[f.Kind] = append(byKind[f.Kind], f)
	}

	var created []string
	var failures []ObjectFailure

	for _, kind := range creationOrder {
		batch := byKind[kind]
		if len(batch) == 0 {
			continue
		}

		objs, batchFailures := r.createBatch(ctx, batch)
		failures = append(failures, batchFailures...)
		for _, o := range objs {
			created = append(created, o.ID)
		}

		r.waitForBatchReadiness(ctx, objs)
	}

	return created, failures
}

func (r *Reconciler) createBatch(ctx context.Context, batch []gitrepo.ClassifiedFile) ([]createdObject, []ObjectFailure) {
	var mu sync.Mutex
	var created []createdObject
	var failures []ObjectFailure

	g := &errgroup.Group{}
	g.SetLimit(r.cfg.MaxParallelUpdates)

	for _, f := range batch {
		f := f
		g.Go(func() error {
			obj, err := r.createOne(ctx, f)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, ObjectFailure{Kind: f.Kind, ID: obj.ID, Op: "create", Err: err})
				return nil
			}
			created = append(created, obj)
			return nil
		})
	}
	_ = g.Wait()

	return created, failures
}

// createOne creates the object recorded at f.Path and writes the
// server's canonical response back into that same file (spec §4.6:
// write-back of server-assigned fields like id and resourceVersion).
func (r *Reconciler) createOne(ctx context.Context, f gitrepo.ClassifiedFile) (createdObject, error) {
	full := filepath.Join(r.repo.Path(), f.Path)
	data, err := os.ReadFile(full)
	if err != nil {
		return createdObject{Kind: f.Kind}, shepherderr.IO("reconcile.createOne.read", err)
	}
	format := formatFromPath(f.Path)

	switch f.Kind {
	case resource.KindRoleTemplate:
		return createRoleTemplate(ctx, r.api, full, format, data)
	case resource.KindProject:
		return createProject(ctx, r.api, full, format, data)
	case resource.KindPRTB:
		return createPRTB(ctx, r.api, r.log, r.cfg, full, format, data)
	case resource.KindCluster:
		return createCluster(ctx, r.api, full, format, data)
	default:
		return createdObject{Kind: f.Kind}, fmt.Errorf("unsupported kind %s for creation", f.Kind)
	}
}

func createRoleTemplate(ctx context.Context, api *rancherapi.Client, path, format string, data []byte) (createdObject, error) {
	var rt resource.RoleTemplate
	if err := serialize.Decode(format, data, &rt); err != nil {
		return createdObject{Kind: resource.KindRoleTemplate}, shepherderr.Decode("reconcile.createRoleTemplate", err)
	}
	out, err := rancherapi.Create[resource.RoleTemplateWire](ctx, api, resource.KindRoleTemplate, "", rt.ToWire())
	if err != nil {
		return createdObject{Kind: resource.KindRoleTemplate}, err
	}
	created, err := resource.RoleTemplateFromWire(out)
	if err != nil {
		return createdObject{Kind: resource.KindRoleTemplate}, shepherderr.Conversion("reconcile.createRoleTemplate", "spec", err)
	}
	if err := writeBack(path, format, created); err != nil {
		return createdObject{Kind: resource.KindRoleTemplate, ID: created.ID}, err
	}
	return createdObject{Kind: resource.KindRoleTemplate, ID: created.ID}, nil
}

func createProject(ctx context.Context, api *rancherapi.Client, path, format string, data []byte) (createdObject, error) {
	var p resource.Project
	if err := serialize.Decode(format, data, &p); err != nil {
		return createdObject{Kind: resource.KindProject}, shepherderr.Decode("reconcile.createProject", err)
	}
	out, err := rancherapi.Create[resource.ProjectWire](ctx, api, resource.KindProject, p.ClusterName, p.ToWire())
	if err != nil {
		return createdObject{Kind: resource.KindProject}, err
	}
	created, err := resource.ProjectFromWire(out)
	if err != nil {
		return createdObject{Kind: resource.KindProject}, shepherderr.Conversion("reconcile.createProject", "spec", err)
	}
	if err := writeBack(path, format, created); err != nil {
		return createdObject{Kind: resource.KindProject, ID: created.ID, Namespace: created.ClusterName}, err
	}
	return createdObject{Kind: resource.KindProject, ID: created.ID, Namespace: created.ClusterName}, nil
}

// createPRTB wraps the create call in the PRTB-specific bounded retry
// spec §4.6 names: at most cfg.PRTBCreateAttempts attempts,
// cfg.PRTBCreateDelay apart, retried only when the failure is a
// not-found or server-error response (the project or role template it
// references may not have propagated yet).
func createPRTB(ctx context.Context, api *rancherapi.Client, log logr.Logger, cfg Config, path, format string, data []byte) (createdObject, error) {
	var b resource.PRTB
	if err := serialize.Decode(format, data, &b); err != nil {
		return createdObject{Kind: resource.KindPRTB}, shepherderr.Decode("reconcile.createPRTB", err)
	}

	created, err := retry.Do(ctx, log, fmt.Sprintf("create-prtb:%s", b.ID), cfg.PRTBCreateAttempts, cfg.PRTBCreateDelay,
		func(err error) bool { return shepherderr.IsNotFound(err) || shepherderr.IsServerError(err) },
		func(ctx context.Context) (resource.PRTB, error) {
			out, err := rancherapi.Create[resource.PRTBWire](ctx, api, resource.KindPRTB, b.Namespace, b.ToWire())
			if err != nil {
				return resource.PRTB{}, err
			}
			return resource.PRTBFromWire(out)
		})
	if err != nil {
		return createdObject{Kind: resource.KindPRTB}, err
	}

	if err := writeBack(path, format, created); err != nil {
		return createdObject{Kind: resource.KindPRTB, ID: created.ID, Namespace: created.Namespace}, err
	}
	return createdObject{Kind: resource.KindPRTB, ID: created.ID, Namespace: created.Namespace}, nil
}

func createCluster(ctx context.Context, api *rancherapi.Client, path, format string, data []byte) (createdObject, error) {
	var c resource.Cluster
	if err := serialize.Decode(format, data, &c); err != nil {
		return createdObject{Kind: resource.KindCluster}, shepherderr.Decode("reconcile.createCluster", err)
	}
	out, err := rancherapi.Create[resource.ClusterWire](ctx, api, resource.KindCluster, "", c.ToWire())
	if err != nil {
		return createdObject{Kind: resource.KindCluster}, err
	}
	created, err := resource.ClusterFromWire(out)
	if err != nil {
		return createdObject{Kind: resource.KindCluster}, shepherderr.Conversion("reconcile.createCluster", "spec", err)
	}
	if err := writeBack(path, format, created); err != nil {
		return createdObject{Kind: resource.KindCluster, ID: created.ID}, err
	}
	return createdObject{Kind: resource.KindCluster, ID: created.ID}, nil
}

// waitForBatchReadiness polls every successfully created object until
// it is readable back from the API, so the next kind's barrier never
// references an object the server hasn't propagated yet. A timed-out
// poll is logged, not escalated to a tick failure: the object was
// created successfully, it just is not confirmed ready.
func (r *Reconciler) waitForBatchReadiness(ctx context.Context, objs []createdObject) {
	for _, o := range objs {
		if o.ID == "" {
			continue
		}
		label := fmt.Sprintf("readiness:%s:%s", o.Kind, o.ID)
		_, err := retry.WaitForPresence(ctx, r.log, label, r.cfg.ReadinessAttempts, r.cfg.ReadinessDelay,
			func(ctx context.Context) (struct{}, error) {
				return struct{}{}, readOne(ctx, r.api, o)
			})
		if err != nil {
			r.log.Error(err, "readiness poll did not confirm object before next phase", "kind", o.Kind.String(), "id", o.ID)
		}
	}
}

func readOne(ctx context.Context, api *rancherapi.Client, o createdObject) error {
	switch o.Kind {
	case resource.KindRoleTemplate:
		_, err := rancherapi.Read[resource.RoleTemplateWire](ctx, api, o.Kind, "", o.ID)
		return err
	case resource.KindProject:
		_, err := rancherapi.Read[resource.ProjectWire](ctx, api, o.Kind, o.Namespace, o.ID)
		return err
	case resource.KindPRTB:
		_, err := rancherapi.Read[resource.PRTBWire](ctx, api, o.Kind, o.Namespace, o.ID)
		return err
	case resource.KindCluster:
		_, err := rancherapi.Read[resource.ClusterWire](ctx, api, o.Kind, "", o.ID)
		return err
	default:
		return nil
	}
}

func writeBack(path, format string, v interface{}) error {
	out, err := serialize.Encode(format, v)
	if err != nil {
		return shepherderr.Decode("reconcile.writeBack", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return shepherderr.IO("reconcile.writeBack", err)
	}
	return nil
}

// formatFromPath derives the serialization format from a working-tree
// path's extension, so write-back re-encodes in whatever format the
// file was already recorded in.
func formatFromPath(path string) string {
	switch strings.TrimPrefix(filepath.Ext(path), ".") {
	case "json":
		return serialize.FormatJSON
	case "toml":
		return serialize.FormatTOML
	default:
		return serialize.FormatYAML
	}
}
