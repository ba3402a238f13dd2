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
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusSeos/shepherd/internal/diff"
	"github.com/DeusSeos/shepherd/internal/gitrepo"
	"github.com/DeusSeos/shepherd/internal/rancherapi"
	"github.com/DeusSeos/shepherd/internal/resource"
)

func newBareRemote(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "remote.git")
	_, err := gogit.PlainInit(path, true)
	require.NoError(t, err)
	return path
}

func newTestReconciler(t *testing.T, handler http.HandlerFunc, cfg Config) (*Reconciler, *gitrepo.Repo, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := rancherapi.New(rancherapi.Config{
		BaseURL:       srv.URL,
		Token:         "test-token",
		ClientName:    "shepherd",
		ClientVersion: "test",
	}, logr.Discard())
	require.NoError(t, err)

	remotePath := newBareRemote(t)
	localPath := filepath.Join(t.TempDir(), "work")
	repo, err := gitrepo.Open(logr.Discard(), "file://"+remotePath, localPath, "main", nil, "shepherd/test")
	require.NoError(t, err)

	r := New(repo, api, cfg, logr.Discard())
	return r, repo, srv
}

func TestTick_CreatesNewRoleTemplateAndWritesBackServerResponse(t *testing.T) {
	r, repo, _ := newTestReconciler(t, func(w http.ResponseWriter, req *http.Request) {
		switch {
		case req.Method == http.MethodPost && req.URL.Path == "/roletemplates":
			_ = json.NewEncoder(w).Encode(resource.RoleTemplateWire{
				Metadata: resource.Metadata{Name: "rt-view", ResourceVersion: "100"},
				Spec:     resource.RoleTemplateSpec{DisplayName: "Viewer"},
			})
		case req.Method == http.MethodGet && req.URL.Path == "/roletemplates/rt-view":
			_ = json.NewEncoder(w).Encode(resource.RoleTemplateWire{
				Metadata: resource.Metadata{Name: "rt-view", ResourceVersion: "100"},
				Spec:     resource.RoleTemplateSpec{DisplayName: "Viewer"},
			})
		default:
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
	}, Config{ReadinessDelay: time.Millisecond})

	rtPath := filepath.Join(repo.Path(), "roles", "rt-view.rt.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(rtPath), 0750))
	require.NoError(t, os.WriteFile(rtPath, []byte("id: rt-view\ndisplayName: Viewer\n"), 0600))

	summary, err := r.Tick(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summary.Failures)
	assert.Contains(t, summary.Created, "rt-view")
	assert.True(t, summary.Committed)

	written, err := os.ReadFile(rtPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "resourceVersion: \"100\"")
}

func TestTick_NoopWhenWorkingTreeClean(t *testing.T) {
	r, _, _ := newTestReconciler(t, func(w http.ResponseWriter, req *http.Request) {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
	}, Config{})

	summary, err := r.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, summary.Committed)
	assert.Empty(t, summary.Created)
	assert.Empty(t, summary.Updated)
	assert.Empty(t, summary.Deleted)
	assert.Empty(t, summary.Failures)
}

func TestTick_IsolatesOneObjectFailureFromTheRestOfTheTick(t *testing.T) {
	r, repo, _ := newTestReconciler(t, func(w http.ResponseWriter, req *http.Request) {
		switch {
		case req.Method == http.MethodPost && req.URL.Path == "/roletemplates":
			if req.Body != nil {
				var body resource.RoleTemplateWire
				_ = json.NewDecoder(req.Body).Decode(&body)
				if body.Metadata.Name == "rt-bad" {
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"message":"boom"}`))
					return
				}
			}
			_ = json.NewEncoder(w).Encode(resource.RoleTemplateWire{Metadata: resource.Metadata{Name: "rt-good"}})
		case req.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode(resource.RoleTemplateWire{Metadata: resource.Metadata{Name: "rt-good"}})
		default:
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
	}, Config{ReadinessDelay: time.Millisecond})

	rolesDir := filepath.Join(repo.Path(), "roles")
	require.NoError(t, os.MkdirAll(rolesDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(rolesDir, "rt-good.rt.yaml"), []byte("id: rt-good\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(rolesDir, "rt-bad.rt.yaml"), []byte("id: rt-bad\n"), 0600))

	summary, err := r.Tick(context.Background())
	require.NoError(t, err)
	assert.Contains(t, summary.Created, "rt-good")
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "create", summary.Failures[0].Op)
}

func TestMinimalIdentity_RecoversProjectNamespaceFromContents(t *testing.T) {
	project := resource.Project{ID: "p-1", ClusterName: "cluster-a", DisplayName: "Team A"}
	data, err := json.Marshal(project)
	require.NoError(t, err)

	id, namespace, err := minimalIdentity(resource.KindProject, "json", data)
	require.NoError(t, err)
	assert.Equal(t, "p-1", id)
	assert.Equal(t, "cluster-a", namespace)
}

func TestMinimalIdentity_RecoversPRTBNamespaceFromContents(t *testing.T) {
	prtb := resource.PRTB{ID: "prtb-1", Namespace: "p-1", RoleTemplateName: "rt-view", ProjectName: "cluster-a:p-1"}
	data, err := json.Marshal(prtb)
	require.NoError(t, err)

	id, namespace, err := minimalIdentity(resource.KindPRTB, "json", data)
	require.NoError(t, err)
	assert.Equal(t, "prtb-1", id)
	assert.Equal(t, "p-1", namespace)
}

func TestRunDeletePhase_TreatsNotFoundAsSuccess(t *testing.T) {
	r, _, _ := newTestReconciler(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, Config{})

	data, err := json.Marshal(resource.RoleTemplate{ID: "rt-gone"})
	require.NoError(t, err)

	deleted, failures := r.runDeletePhase(context.Background(), []gitrepo.DeletedFile{
		{Kind: resource.KindRoleTemplate, Path: "roles/rt-gone.rt.json", Contents: data},
	})
	assert.Empty(t, failures)
	assert.Equal(t, []string{"rt-gone"}, deleted)
}

func TestRunDeletePhase_OrdersChildrenBeforeParents(t *testing.T) {
	assert.Less(t, deletionPriority(resource.KindPRTB), deletionPriority(resource.KindProject))
	assert.Less(t, deletionPriority(resource.KindProject), deletionPriority(resource.KindRoleTemplate))
	assert.Less(t, deletionPriority(resource.KindRoleTemplate), deletionPriority(resource.KindCluster))
}

func TestDispatchUpdate_SendsPatchScopedToNamespaceForProject(t *testing.T) {
	var gotPath string
	r, _, _ := newTestReconciler(t, func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		_ = json.NewEncoder(w).Encode(resource.ProjectWire{Metadata: resource.Metadata{Name: "p-1", Namespace: "cluster-a"}})
	}, Config{})

	patch := diff.Patch{}
	err := dispatchUpdate(context.Background(), r.api, diff.Key{Kind: resource.KindProject, ID: "p-1", Namespace: "cluster-a"}, patch)
	require.NoError(t, err)
	assert.Equal(t, "/cluster-a/projects/p-1", gotPath)
}

func TestFormatFromPath_DerivesFormatFromExtension(t *testing.T) {
	assert.Equal(t, "json", formatFromPath("roles/rt-view.rt.json"))
	assert.Equal(t, "toml", formatFromPath("cluster-a/p-1/p-1.project.toml"))
	assert.Equal(t, "yaml", formatFromPath("cluster-a/cluster-a.cluster.yaml"))
}
