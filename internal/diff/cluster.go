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

package diff

import (
	"fmt"

	"github.com/DeusSeos/shepherd/internal/resource"
)

// ProjectSnapshot pairs a Project with its PRTBs, the unit the
// reconciler keys projects by (spec §4.4 input shape).
type ProjectSnapshot struct {
	Project resource.Project
	PRTBs   []resource.PRTB
}

// ClusterSnapshot is one side (live or desired) of a cluster's full
// canonical state.
type ClusterSnapshot struct {
	Cluster       resource.Cluster
	RoleTemplates []resource.RoleTemplate
	Projects      map[string]ProjectSnapshot // keyed by project id
}

// ComputeClusterDiff matches live and desired objects by id within
// their parent scope (spec §4.4 key decision: matching is by id, not
// array index) and computes an update-only patch map. Objects present
// on only one side are skipped — creation and deletion are driven by
// the Git worker's working-tree classification, not by this engine.
func ComputeClusterDiff(live, desired ClusterSnapshot) (map[Key]Patch, error) {
	result := map[Key]Patch{}

	if patch, err := diffIfPresent(resource.KindCluster, live.Cluster.ID != "", desired.Cluster.ID != "",
		live.Cluster.ToWire(), desired.Cluster.ToWire()); err != nil {
		return nil, err
	} else if patch != nil {
		result[Key{Kind: resource.KindCluster, ID: desired.Cluster.ID}] = patch
	}

	if err := diffRoleTemplates(result, live.RoleTemplates, desired.RoleTemplates); err != nil {
		return nil, err
	}

	if err := diffProjects(result, live.Projects, desired.Projects); err != nil {
		return nil, err
	}

	return result, nil
}

func diffRoleTemplates(out map[Key]Patch, live, desired []resource.RoleTemplate) error {
	liveByID := indexRoleTemplates(live)
	for _, d := range desired {
		l, ok := liveByID[d.ID]
		if !ok {
			continue
		}
		patch, err := ComputeObjectPatch(resource.KindRoleTemplate, l.ToWire(), d.ToWire())
		if err != nil {
			return fmt.Errorf("failed to diff role template %s: %w", d.ID, err)
		}
		if patch != nil {
			out[Key{Kind: resource.KindRoleTemplate, ID: d.ID}] = patch
		}
	}
	return nil
}

func indexRoleTemplates(rts []resource.RoleTemplate) map[string]resource.RoleTemplate {
	m := make(map[string]resource.RoleTemplate, len(rts))
	for _, rt := range rts {
		m[rt.ID] = rt
	}
	return m
}

func diffProjects(out map[Key]Patch, live, desired map[string]ProjectSnapshot) error {
	for id, d := range desired {
		l, ok := live[id]
		if !ok {
			continue
		}

		patch, err := ComputeObjectPatch(resource.KindProject, l.Project.ToWire(), d.Project.ToWire())
		if err != nil {
			return fmt.Errorf("failed to diff project %s: %w", id, err)
		}
		if patch != nil {
			out[Key{Kind: resource.KindProject, ID: id, Namespace: d.Project.Namespace()}] = patch
		}

		if err := diffPRTBs(out, id, l.PRTBs, d.PRTBs); err != nil {
			return err
		}
	}
	return nil
}

func diffPRTBs(out map[Key]Patch, projectID string, live, desired []resource.PRTB) error {
	liveByID := make(map[string]resource.PRTB, len(live))
	for _, p := range live {
		liveByID[p.ID] = p
	}

	for _, d := range desired {
		l, ok := liveByID[d.ID]
		if !ok {
			continue
		}
		patch, err := ComputeObjectPatch(resource.KindPRTB, l.ToWire(), d.ToWire())
		if err != nil {
			return fmt.Errorf("failed to diff prtb %s in project %s: %w", d.ID, projectID, err)
		}
		if patch != nil {
			out[Key{Kind: resource.KindPRTB, ID: d.ID, Namespace: d.Namespace}] = patch
		}
	}
	return nil
}

func diffIfPresent(kind resource.Kind, livePresent, desiredPresent bool, live, desired interface{}) (Patch, error) {
	if !livePresent || !desiredPresent {
		return nil, nil
	}
	return ComputeObjectPatch(kind, live, desired)
}
