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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusSeos/shepherd/internal/resource"
)

func TestComputeObjectPatch_NoDiffWhenIdentical(t *testing.T) {
	rt := resource.RoleTemplate{ID: "rt-view", DisplayName: "Viewer"}

	patch, err := ComputeObjectPatch(resource.KindRoleTemplate, rt.ToWire(), rt.ToWire())
	require.NoError(t, err)
	assert.Nil(t, patch)
}

func TestComputeObjectPatch_NoDiffWhenOnlyExcludedFieldsDiffer(t *testing.T) {
	live := resource.RoleTemplate{ID: "rt-view", DisplayName: "Viewer", ResourceVersion: "111"}
	desired := resource.RoleTemplate{ID: "rt-view", DisplayName: "Viewer", ResourceVersion: "999"}

	patch, err := ComputeObjectPatch(resource.KindRoleTemplate, live.ToWire(), desired.ToWire())
	require.NoError(t, err)
	assert.Nil(t, patch)
}

func TestComputeObjectPatch_EmitsPatchForGenuineFieldDifference(t *testing.T) {
	live := resource.RoleTemplate{ID: "rt-view", DisplayName: "Viewer"}
	desired := resource.RoleTemplate{ID: "rt-view", DisplayName: "Viewer 2"}

	patch, err := ComputeObjectPatch(resource.KindRoleTemplate, live.ToWire(), desired.ToWire())
	require.NoError(t, err)
	require.Len(t, patch, 1)
	assert.Equal(t, "/spec/displayName", patch[0].Path)
}

func TestComputeObjectPatch_StripsProjectUsedLimit(t *testing.T) {
	live := resource.Project{
		ID:          "p-1",
		ClusterName: "cluster-a",
		DisplayName: "Team A",
		ResourceQuota: &resource.ProjectResourceQuota{
			Limit:     resource.ResourceQuotaLimit{Limit: map[string]string{"pods": "10"}},
			UsedLimit: resource.ResourceQuotaLimit{Limit: map[string]string{"pods": "3"}},
		},
	}
	desired := live
	desired.ResourceQuota = &resource.ProjectResourceQuota{
		Limit:     resource.ResourceQuotaLimit{Limit: map[string]string{"pods": "10"}},
		UsedLimit: resource.ResourceQuotaLimit{Limit: map[string]string{"pods": "9"}},
	}

	patch, err := ComputeObjectPatch(resource.KindProject, live.ToWire(), desired.ToWire())
	require.NoError(t, err)
	assert.Nil(t, patch)
}

func TestComputeClusterDiff_MatchesByIDAndSkipsOneSidedObjects(t *testing.T) {
	live := ClusterSnapshot{
		Cluster: resource.Cluster{ID: "cluster-a", DisplayName: "A"},
		RoleTemplates: []resource.RoleTemplate{
			{ID: "rt-view", DisplayName: "Viewer"},
			{ID: "rt-live-only", DisplayName: "Live Only"},
		},
		Projects: map[string]ProjectSnapshot{
			"p-1": {
				Project: resource.Project{ID: "p-1", ClusterName: "cluster-a", DisplayName: "Team A"},
				PRTBs: []resource.PRTB{
					{ID: "prtb-1", Namespace: "p-1", RoleTemplateName: "rt-view", ProjectName: "cluster-a:p-1"},
				},
			},
		},
	}

	desired := ClusterSnapshot{
		Cluster: resource.Cluster{ID: "cluster-a", DisplayName: "A renamed"},
		RoleTemplates: []resource.RoleTemplate{
			{ID: "rt-view", DisplayName: "Viewer renamed"},
			{ID: "rt-desired-only", DisplayName: "Desired Only"},
		},
		Projects: map[string]ProjectSnapshot{
			"p-1": {
				Project: resource.Project{ID: "p-1", ClusterName: "cluster-a", DisplayName: "Team A renamed"},
				PRTBs: []resource.PRTB{
					{ID: "prtb-1", Namespace: "p-1", RoleTemplateName: "rt-edit", ProjectName: "cluster-a:p-1"},
				},
			},
		},
	}

	patches, err := ComputeClusterDiff(live, desired)
	require.NoError(t, err)

	require.Contains(t, patches, Key{Kind: resource.KindCluster, ID: "cluster-a"})
	require.Contains(t, patches, Key{Kind: resource.KindRoleTemplate, ID: "rt-view"})
	require.Contains(t, patches, Key{Kind: resource.KindProject, ID: "p-1", Namespace: "cluster-a"})
	require.Contains(t, patches, Key{Kind: resource.KindPRTB, ID: "prtb-1", Namespace: "p-1"})

	assert.NotContains(t, patches, Key{Kind: resource.KindRoleTemplate, ID: "rt-live-only"})
	assert.NotContains(t, patches, Key{Kind: resource.KindRoleTemplate, ID: "rt-desired-only"})

	assert.Len(t, patches, 4)
}

func TestComputeClusterDiff_NoEntryWhenProjectUnchanged(t *testing.T) {
	snap := ClusterSnapshot{
		Cluster: resource.Cluster{ID: "cluster-a"},
		Projects: map[string]ProjectSnapshot{
			"p-1": {
				Project: resource.Project{ID: "p-1", ClusterName: "cluster-a", DisplayName: "Team A"},
			},
		},
	}

	patches, err := ComputeClusterDiff(snap, snap)
	require.NoError(t, err)
	assert.Empty(t, patches)
}
