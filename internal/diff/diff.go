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

// Package diff implements the diff engine of spec §4.4: it converts
// matched live/desired object pairs to their wire form, strips
// per-kind server-generated fields the way the teacher's
// internal/sanitize package strips them from Kubernetes objects, and
// computes an RFC 6902 JSON Patch from live to desired.
package diff

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/DeusSeos/shepherd/internal/resource"
)

// excludePaths lists, in dot notation, the fields spec §4.4 step 2
// strips before diffing — server-generated metadata the two sides will
// always disagree on and that must never drive an update.
var excludePaths = map[resource.Kind][]string{
	resource.KindProject: {
		"metadata.creationTimestamp",
		"metadata.finalizers",
		"metadata.generateName",
		"metadata.generation",
		"metadata.managedFields",
		"metadata.resourceVersion",
		"spec.resourceQuota.usedLimit",
		"status",
	},
	resource.KindRoleTemplate: {
		"metadata.creationTimestamp",
		"metadata.finalizers",
		"metadata.generateName",
		"metadata.generation",
		"metadata.managedFields",
		"metadata.resourceVersion",
		"metadata.selfLink",
		"metadata.uid",
	},
	resource.KindPRTB: {
		"metadata.creationTimestamp",
		"metadata.finalizers",
		"metadata.generateName",
		"metadata.generation",
		"metadata.managedFields",
		"metadata.resourceVersion",
		"metadata.selfLink",
		"metadata.uid",
	},
	resource.KindCluster: {
		"metadata.creationTimestamp",
		"metadata.finalizers",
		"metadata.generateName",
		"metadata.generation",
		"metadata.managedFields",
		"metadata.resourceVersion",
		"metadata.selfLink",
		"metadata.uid",
	},
}

// Key identifies the object a patch applies to: its kind, id, and
// (for Project/PRTB) the owning namespace.
type Key struct {
	Kind      resource.Kind
	ID        string
	Namespace string
}

func (k Key) String() string {
	if k.Namespace == "" {
		return fmt.Sprintf("%s/%s", k.Kind, k.ID)
	}
	return fmt.Sprintf("%s/%s/%s", k.Namespace, k.Kind, k.ID)
}

// Patch is an RFC 6902 JSON Patch document, ready to send as an
// update-via-patch request body (spec §4.5).
type Patch []jsonpatch.JsonPatchOperation

// MarshalJSON renders the patch as the JSON array the API gateway
// expects on the wire.
func (p Patch) MarshalJSON() ([]byte, error) {
	return json.Marshal([]jsonpatch.JsonPatchOperation(p))
}

// ComputeObjectPatch computes the JSON patch from live to desired for
// a single object pair already converted to wire form, applying the
// exclude-path stripping for kind before diffing. It returns a nil
// Patch when the two sides are equivalent after stripping (spec §4.4
// step 4: emit an entry only when the patch is non-empty).
func ComputeObjectPatch(kind resource.Kind, live, desired interface{}) (Patch, error) {
	liveJSON, err := stripped(kind, live)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare live object for diff: %w", err)
	}
	desiredJSON, err := stripped(kind, desired)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare desired object for diff: %w", err)
	}

	ops, err := jsonpatch.CreatePatch(liveJSON, desiredJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compute json patch: %w", err)
	}
	if len(ops) == 0 {
		return nil, nil
	}
	return Patch(ops), nil
}

// stripped converts v (a wire-form struct) to a generic JSON tree and
// removes the exclude paths configured for kind.
func stripped(kind resource.Kind, v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to json: %w", err)
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode json tree: %w", err)
	}
	obj := &unstructured.Unstructured{Object: generic}

	for _, dotPath := range excludePaths[kind] {
		unstructured.RemoveNestedField(obj.Object, strings.Split(dotPath, ".")...)
	}

	return json.Marshal(obj.Object)
}
