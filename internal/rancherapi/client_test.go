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

package rancherapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeusSeos/shepherd/internal/resource"
	"github.com/DeusSeos/shepherd/internal/shepherderr"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL:       srv.URL,
		Token:         "test-token",
		ClientName:    "shepherd",
		ClientVersion: "0.1.0",
	}, logr.Discard())
	require.NoError(t, err)
	return c, srv
}

func TestNew_RequiresBaseURLAndToken(t *testing.T) {
	_, err := New(Config{Token: "x"}, logr.Discard())
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "https://example.com"}, logr.Discard())
	assert.Error(t, err)
}

func TestRead_SetsAuthAndClientHeaders(t *testing.T) {
	var gotAuth, gotClient string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotClient = r.Header.Get("X-Client")
		_ = json.NewEncoder(w).Encode(resource.RoleTemplateWire{Metadata: resource.Metadata{Name: "rt-view"}})
	})

	out, err := Read[resource.RoleTemplateWire](context.Background(), c, resource.KindRoleTemplate, "", "rt-view")
	require.NoError(t, err)
	assert.Equal(t, "rt-view", out.Metadata.Name)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "shepherd/0.1.0", gotClient)
}

func TestRead_MapsNotFoundStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such object"}`))
	})

	_, err := Read[resource.RoleTemplateWire](context.Background(), c, resource.KindRoleTemplate, "", "rt-missing")
	require.Error(t, err)
	assert.True(t, isAPIStatus(err, http.StatusNotFound))
}

func TestList_DecodesCollectionEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cluster-a/projects", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []resource.ProjectWire{
				{Metadata: resource.Metadata{Name: "p-1"}},
				{Metadata: resource.Metadata{Name: "p-2"}},
			},
		})
	})

	out, err := List[resource.ProjectWire](context.Background(), c, resource.KindProject, "cluster-a")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "p-1", out[0].Metadata.Name)
}

func TestCreate_PostsToCollectionPath(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(resource.ProjectWire{Metadata: resource.Metadata{Name: "p-1", Namespace: "cluster-a"}})
	})

	body := resource.Project{ClusterName: "cluster-a", DisplayName: "Team A"}.ToWire()
	out, err := Create[resource.ProjectWire](context.Background(), c, resource.KindProject, "cluster-a", body)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/cluster-a/projects", gotPath)
	assert.Equal(t, "p-1", out.Metadata.Name)
}

func TestUpdateViaPatch_RejectsNonArrayBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called for an invalid patch body")
	})

	_, err := UpdateViaPatch[resource.RoleTemplateWire](context.Background(), c, resource.KindRoleTemplate, "", "rt-view",
		[]byte(`{"op":"replace"}`))
	require.Error(t, err)
	assert.True(t, isAPIStatus(err, http.StatusBadRequest))
}

func TestUpdateViaPatch_SendsPatchContentType(t *testing.T) {
	var gotContentType string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(resource.RoleTemplateWire{Metadata: resource.Metadata{Name: "rt-view"}})
	})

	_, err := UpdateViaPatch[resource.RoleTemplateWire](context.Background(), c, resource.KindRoleTemplate, "", "rt-view",
		[]byte(`[{"op":"replace","path":"/spec/displayName","value":"x"}]`))
	require.NoError(t, err)
	assert.Equal(t, "application/json-patch+json", gotContentType)
}

func TestDelete_SendsDeleteMethod(t *testing.T) {
	var gotMethod string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	err := Delete(context.Background(), c, resource.KindRoleTemplate, "", "rt-view")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func isAPIStatus(err error, status int) bool {
	var e *shepherderr.Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == shepherderr.KindAPI && e.Sub == shepherderr.API("", status, "", nil).(*shepherderr.Error).Sub
}
