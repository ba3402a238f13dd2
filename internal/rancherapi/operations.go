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
	"fmt"
	"net/http"

	"github.com/DeusSeos/shepherd/internal/resource"
	"github.com/DeusSeos/shepherd/internal/shepherderr"
)

// collectionName returns the management API's collection path segment
// for kind.
func collectionName(kind resource.Kind) string {
	switch kind {
	case resource.KindCluster:
		return "clusters"
	case resource.KindRoleTemplate:
		return "roletemplates"
	case resource.KindProject:
		return "projects"
	case resource.KindPRTB:
		return "projectroletemplatebindings"
	default:
		return "unknown"
	}
}

// collectionPath builds the list path for kind, scoped under namespace
// when one is given (Project is scoped by cluster id, PRTB by project
// id; Cluster and RoleTemplate are unscoped).
func collectionPath(kind resource.Kind, namespace string) string {
	if namespace == "" {
		return "/" + collectionName(kind)
	}
	return fmt.Sprintf("/%s/%s", namespace, collectionName(kind))
}

func objectPath(kind resource.Kind, namespace, id string) string {
	return collectionPath(kind, namespace) + "/" + id
}

// collection mirrors the Rancher management API's list envelope.
type collection[W any] struct {
	Data []W `json:"data"`
}

// List fetches every object of kind visible under namespace (empty for
// unscoped kinds).
func List[W any](ctx context.Context, c *Client, kind resource.Kind, namespace string) ([]W, error) {
	var out collection[W]
	if err := c.do(ctx, http.MethodGet, collectionPath(kind, namespace), "", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Read fetches a single object of kind by id.
func Read[W any](ctx context.Context, c *Client, kind resource.Kind, namespace, id string) (W, error) {
	var out W
	err := c.do(ctx, http.MethodGet, objectPath(kind, namespace, id), "", nil, &out)
	return out, err
}

// Create submits body as a new object of kind, optionally scoped under
// namespace, and returns the server's decoded response (which carries
// the assigned id, resourceVersion, and uid).
func Create[W any](ctx context.Context, c *Client, kind resource.Kind, namespace string, body any) (W, error) {
	var out W
	payload, err := json.Marshal(body)
	if err != nil {
		return out, shepherderr.Conversion("rancherapi.Create", "body", err)
	}
	err = c.do(ctx, http.MethodPost, collectionPath(kind, namespace), "application/json", payload, &out)
	return out, err
}

// UpdateViaPatch sends patch (an RFC 6902 JSON Patch document) as a
// PATCH against the object identified by kind/namespace/id, rejecting
// any body that does not decode as a JSON array before it is sent
// (spec §4.5).
func UpdateViaPatch[W any](ctx context.Context, c *Client, kind resource.Kind, namespace, id string, patch []byte) (W, error) {
	var out W
	if err := validatePatchArray(patch); err != nil {
		return out, err
	}
	err := c.do(ctx, http.MethodPatch, objectPath(kind, namespace, id), "application/json-patch+json", patch, &out)
	return out, err
}

// Delete removes the object identified by kind/namespace/id.
func Delete(ctx context.Context, c *Client, kind resource.Kind, namespace, id string) error {
	return c.do(ctx, http.MethodDelete, objectPath(kind, namespace, id), "", nil, nil)
}

// validatePatchArray rejects anything but a top-level JSON array,
// the shape an RFC 6902 patch document always takes.
func validatePatchArray(patch []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(patch, &raw); err != nil {
		return &shepherderr.Error{
			Op:  "rancherapi.UpdateViaPatch",
			Kind: shepherderr.KindAPI,
			Sub: shepherderr.APIBadRequest,
			Err: fmt.Errorf("patch body must be a JSON array: %w", err),
		}
	}
	return nil
}
