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

	"github.com/DeusSeos/shepherd/internal/diff"
	"github.com/DeusSeos/shepherd/internal/rancherapi"
	"github.com/DeusSeos/shepherd/internal/resource"
	"github.com/DeusSeos/shepherd/internal/serialize"
	"github.com/DeusSeos/shepherd/internal/shepherderr"
	"github.com/DeusSeos/shepherd/internal/treepath"
)

// loadDesiredSnapshot reads the working tree's recorded state for one
// cluster: the cluster file itself, the role templates shared at
// root/roles (spec §4.2 — role templates are cluster-global, not
// nested under a cluster id), and every project/PRTB nested under
// root/<clusterID>.
func loadDesiredSnapshot(repoPath, clusterID, format string) (diff.ClusterSnapshot, error) {
	ext := serialize.ExtForFormat(format)
	snap := diff.ClusterSnapshot{Projects: map[string]diff.ProjectSnapshot{}}

	if data, err := readIfExists(treepath.ClusterPath(repoPath, clusterID, ext)); err != nil {
		return snap, err
	} else if data != nil {
		var c resource.Cluster
		if err := serialize.Decode(format, data, &c); err != nil {
			return snap, shepherderr.Decode("reconcile.loadDesiredSnapshot.cluster", err)
		}
		snap.Cluster = c
	}

	roleTemplates, err := loadRoleTemplates(repoPath, format)
	if err != nil {
		return snap, err
	}
	snap.RoleTemplates = roleTemplates

	clusterDir := filepath.Join(repoPath, clusterID)
	entries, err := os.ReadDir(clusterDir)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return snap, shepherderr.IO("reconcile.loadDesiredSnapshot.clusterDir", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		projectID := entry.Name()
		ps, err := loadProjectSnapshot(repoPath, clusterID, projectID, format)
		if err != nil {
			return snap, err
		}
		snap.Projects[projectID] = ps
	}

	return snap, nil
}

func loadRoleTemplates(repoPath, format string) ([]resource.RoleTemplate, error) {
	ext := serialize.ExtForFormat(format)
	rolesDir := filepath.Join(repoPath, "roles")
	entries, err := os.ReadDir(rolesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, shepherderr.IO("reconcile.loadRoleTemplates", err)
	}

	var out []resource.RoleTemplate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rt."+ext) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(rolesDir, entry.Name()))
		if err != nil {
			return nil, shepherderr.IO("reconcile.loadRoleTemplates.read", err)
		}
		var rt resource.RoleTemplate
		if err := serialize.Decode(format, data, &rt); err != nil {
			return nil, shepherderr.Decode("reconcile.loadRoleTemplates.decode", err)
		}
		out = append(out, rt)
	}
	return out, nil
}

func loadProjectSnapshot(repoPath, clusterID, projectID, format string) (diff.ProjectSnapshot, error) {
	ext := serialize.ExtForFormat(format)
	var ps diff.ProjectSnapshot

	if data, err := readIfExists(treepath.ProjectPath(repoPath, clusterID, projectID, ext)); err != nil {
		return ps, err
	} else if data != nil {
		var p resource.Project
		if err := serialize.Decode(format, data, &p); err != nil {
			return ps, shepherderr.Decode("reconcile.loadProjectSnapshot.project", err)
		}
		ps.Project = p
	}

	projectDir := filepath.Join(repoPath, clusterID, projectID)
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		if os.IsNotExist(err) {
			return ps, nil
		}
		return ps, shepherderr.IO("reconcile.loadProjectSnapshot.dir", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".prtb."+ext) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(projectDir, entry.Name()))
		if err != nil {
			return ps, shepherderr.IO("reconcile.loadProjectSnapshot.prtb.read", err)
		}
		var b resource.PRTB
		if err := serialize.Decode(format, data, &b); err != nil {
			return ps, shepherderr.Decode("reconcile.loadProjectSnapshot.prtb.decode", err)
		}
		ps.PRTBs = append(ps.PRTBs, b)
	}
	return ps, nil
}

func readIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, shepherderr.IO("reconcile.readIfExists", err)
	}
	return data, nil
}

// loadLiveSnapshot reads one cluster's current state straight from the
// Rancher management API. A cluster that does not exist live yet
// (e.g. this tick is the one that will create it) is reported as a
// zero-value Cluster rather than an error, so the diff/create phases
// can tell the two situations apart.
func loadLiveSnapshot(ctx context.Context, api *rancherapi.Client, clusterID string) (diff.ClusterSnapshot, error) {
	snap := diff.ClusterSnapshot{Projects: map[string]diff.ProjectSnapshot{}}

	clusterWire, err := rancherapi.Read[resource.ClusterWire](ctx, api, resource.KindCluster, "", clusterID)
	switch {
	case err == nil:
		c, convErr := resource.ClusterFromWire(clusterWire)
		if convErr != nil {
			return snap, shepherderr.Conversion("reconcile.loadLiveSnapshot.cluster", "spec", convErr)
		}
		snap.Cluster = c
	case shepherderr.IsNotFound(err):
		// Not created live yet; leave Cluster as its zero value.
	default:
		return snap, err
	}

	rtWires, err := rancherapi.List[resource.RoleTemplateWire](ctx, api, resource.KindRoleTemplate, "")
	if err != nil {
		return snap, err
	}
	for _, w := range rtWires {
		rt, convErr := resource.RoleTemplateFromWire(w)
		if convErr != nil {
			continue // malformed live record; excluded from the diff rather than aborting the whole snapshot
		}
		snap.RoleTemplates = append(snap.RoleTemplates, rt)
	}

	projectWires, err := rancherapi.List[resource.ProjectWire](ctx, api, resource.KindProject, clusterID)
	if err != nil {
		return snap, err
	}
	for _, pw := range projectWires {
		project, convErr := resource.ProjectFromWire(pw)
		if convErr != nil {
			continue
		}

		prtbWires, err := rancherapi.List[resource.PRTBWire](ctx, api, resource.KindPRTB, project.ID)
		if err != nil {
			return snap, fmt.Errorf("failed to list prtbs for project %s: %w", project.ID, err)
		}
		var prtbs []resource.PRTB
		for _, bw := range prtbWires {
			b, convErr := resource.PRTBFromWire(bw)
			if convErr != nil {
				continue
			}
			prtbs = append(prtbs, b)
		}

		snap.Projects[project.ID] = diff.ProjectSnapshot{Project: project, PRTBs: prtbs}
	}

	return snap, nil
}
