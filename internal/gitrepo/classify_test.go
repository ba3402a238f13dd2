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
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusSeos/shepherd/internal/resource"
)

func TestClassify_NewModifiedDeleted(t *testing.T) {
	remotePath := newBareRemote(t)
	seedRemote(t, remotePath, "main", map[string]string{
		"roles/rt-view.rt.yaml":     "id: rt-view\n",
		"cluster-a/rt-gone.rt.yaml": "id: rt-gone\n",
	})

	localPath := filepath.Join(t.TempDir(), "work")
	repo, err := Open(logr.Discard(), "file://"+remotePath, localPath, "main", nil, "shepherd/test")
	require.NoError(t, err)

	// New untracked file.
	require.NoError(t, os.WriteFile(filepath.Join(localPath, "roles", "rt-new.rt.yaml"), []byte("id: rt-new\n"), 0600))
	// Modified tracked file.
	require.NoError(t, os.WriteFile(filepath.Join(localPath, "roles", "rt-view.rt.yaml"), []byte("id: rt-view\nv: 2\n"), 0600))
	// Deleted tracked file.
	require.NoError(t, os.Remove(filepath.Join(localPath, "cluster-a", "rt-gone.rt.yaml")))

	changes, err := repo.Classify("")
	require.NoError(t, err)

	require.Len(t, changes.New, 1)
	assert.Equal(t, "roles/rt-new.rt.yaml", changes.New[0].Path)
	assert.Equal(t, resource.KindRoleTemplate, changes.New[0].Kind)

	require.Len(t, changes.Modified, 1)
	assert.Equal(t, "roles/rt-view.rt.yaml", changes.Modified[0].Path)

	require.Len(t, changes.Deleted, 1)
	assert.Equal(t, "cluster-a/rt-gone.rt.yaml", changes.Deleted[0].Path)
	assert.Equal(t, "id: rt-gone\n", string(changes.Deleted[0].Contents))
}

func TestClassify_OrdersNewFilesByCreationPriority(t *testing.T) {
	remotePath := newBareRemote(t)
	localPath := filepath.Join(t.TempDir(), "work")
	repo, err := Open(logr.Discard(), "file://"+remotePath, localPath, "main", nil, "shepherd/test")
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(localPath, "cluster-a", "p-1"), 0750))
	require.NoError(t, os.MkdirAll(filepath.Join(localPath, "roles"), 0750))

	require.NoError(t, os.WriteFile(filepath.Join(localPath, "cluster-a", "cluster-a.cluster.yaml"), []byte("id: cluster-a\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(localPath, "cluster-a", "p-1", "p-1.project.yaml"), []byte("id: p-1\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(localPath, "cluster-a", "p-1", "prtb-1.prtb.yaml"), []byte("id: prtb-1\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(localPath, "roles", "rt-view.rt.yaml"), []byte("id: rt-view\n"), 0600))

	changes, err := repo.Classify("")
	require.NoError(t, err)
	require.Len(t, changes.New, 4)

	kinds := make([]resource.Kind, len(changes.New))
	for i, f := range changes.New {
		kinds[i] = f.Kind
	}
	assert.Equal(t, []resource.Kind{
		resource.KindRoleTemplate,
		resource.KindProject,
		resource.KindPRTB,
		resource.KindCluster,
	}, kinds)
}
