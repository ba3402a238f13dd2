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

package resource

import "fmt"

// PolicyRule is a single policy rule entry of a RoleTemplate, mirrored
// directly from the Rancher/Kubernetes RBAC PolicyRule shape.
type PolicyRule struct {
	APIGroups       []string `json:"apiGroups,omitempty"`
	Resources       []string `json:"resources,omitempty"`
	ResourceNames   []string `json:"resourceNames,omitempty"`
	Verbs           []string `json:"verbs,omitempty"`
	NonResourceURLs []string `json:"nonResourceURLs,omitempty"`
}

// RoleTemplate is the canonical, on-disk form of a management
// RoleTemplate (spec §3). It has no namespace: role templates are
// cluster-global.
type RoleTemplate struct {
	ID                     string            `json:"id"`
	DisplayName            string            `json:"displayName,omitempty"`
	Description            string            `json:"description,omitempty"`
	Context                string            `json:"context,omitempty"` // "cluster" | "project"
	Administrative         bool              `json:"administrative,omitempty"`
	Builtin                bool              `json:"builtin,omitempty"`
	External               bool              `json:"external,omitempty"`
	Hidden                 bool              `json:"hidden,omitempty"`
	Locked                 bool              `json:"locked,omitempty"`
	ClusterCreatorDefault  bool              `json:"clusterCreatorDefault,omitempty"`
	ProjectCreatorDefault  bool              `json:"projectCreatorDefault,omitempty"`
	RoleTemplateNames      []string          `json:"roleTemplateNames,omitempty"`
	Rules                  []PolicyRule      `json:"rules,omitempty"`
	Annotations            map[string]string `json:"annotations,omitempty"`
	Labels                 map[string]string `json:"labels,omitempty"`
	ResourceVersion        string            `json:"resourceVersion,omitempty"`
}

// RoleTemplateWire is the API-shaped form: nested metadata plus a flat
// spec block of the non-identity fields.
type RoleTemplateWire struct {
	APIVersion string           `json:"apiVersion"`
	Kind       string           `json:"kind"`
	Metadata   Metadata         `json:"metadata"`
	Spec       RoleTemplateSpec `json:"spec"`
}

type RoleTemplateSpec struct {
	DisplayName           string       `json:"displayName,omitempty"`
	Description           string       `json:"description,omitempty"`
	Context               string       `json:"context,omitempty"`
	Administrative        bool         `json:"administrative,omitempty"`
	Builtin               bool         `json:"builtin,omitempty"`
	External              bool         `json:"external,omitempty"`
	Hidden                bool         `json:"hidden,omitempty"`
	Locked                bool         `json:"locked,omitempty"`
	ClusterCreatorDefault bool         `json:"clusterCreatorDefault,omitempty"`
	ProjectCreatorDefault bool         `json:"projectCreatorDefault,omitempty"`
	RoleTemplateNames     []string     `json:"roleTemplateNames,omitempty"`
	Rules                 []PolicyRule `json:"rules,omitempty"`
}

const roleTemplateAPIVersion = "management.cattle.io/v3"
const roleTemplateKind = "RoleTemplate"

// ToWire converts the canonical record to its wire form. RoleTemplate
// conversion is infallible in this direction (spec §4.1).
func (r RoleTemplate) ToWire() RoleTemplateWire {
	return RoleTemplateWire{
		APIVersion: roleTemplateAPIVersion,
		Kind:       roleTemplateKind,
		Metadata: Metadata{
			Name:            r.ID,
			Labels:          r.Labels,
			Annotations:     r.Annotations,
			ResourceVersion: r.ResourceVersion,
		},
		Spec: RoleTemplateSpec{
			DisplayName:           r.DisplayName,
			Description:           r.Description,
			Context:               r.Context,
			Administrative:        r.Administrative,
			Builtin:               r.Builtin,
			External:              r.External,
			Hidden:                r.Hidden,
			Locked:                r.Locked,
			ClusterCreatorDefault: r.ClusterCreatorDefault,
			ProjectCreatorDefault: r.ProjectCreatorDefault,
			RoleTemplateNames:     r.RoleTemplateNames,
			Rules:                 r.Rules,
		},
	}
}

// RoleTemplateFromWire converts a wire-form record to canonical form.
// Every field beyond metadata.name is optional (spec §4.1).
func RoleTemplateFromWire(w RoleTemplateWire) (RoleTemplate, error) {
	if w.Metadata.Name == "" {
		return RoleTemplate{}, fmt.Errorf("missing required field: metadata.name")
	}
	return RoleTemplate{
		ID:                    w.Metadata.Name,
		DisplayName:           w.Spec.DisplayName,
		Description:           w.Spec.Description,
		Context:               w.Spec.Context,
		Administrative:        w.Spec.Administrative,
		Builtin:               w.Spec.Builtin,
		External:              w.Spec.External,
		Hidden:                w.Spec.Hidden,
		Locked:                w.Spec.Locked,
		ClusterCreatorDefault: w.Spec.ClusterCreatorDefault,
		ProjectCreatorDefault: w.Spec.ProjectCreatorDefault,
		RoleTemplateNames:     w.Spec.RoleTemplateNames,
		Rules:                 w.Spec.Rules,
		Annotations:           w.Metadata.Annotations,
		Labels:                w.Metadata.Labels,
		ResourceVersion:       w.Metadata.ResourceVersion,
	}, nil
}
