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

// ContainerResourceLimit mirrors the per-container default resource
// limit a Project can impose on its namespaces.
type ContainerResourceLimit struct {
	RequestsCPU    string `json:"requestsCpu,omitempty"`
	RequestsMemory string `json:"requestsMemory,omitempty"`
	LimitsCPU      string `json:"limitsCpu,omitempty"`
	LimitsMemory   string `json:"limitsMemory,omitempty"`
}

// ResourceQuotaLimit is a flat map of quantity strings keyed by
// resource name (e.g. "pods", "secrets", "services"), shared by the
// namespace default quota and the project-level quota.
type ResourceQuotaLimit struct {
	Limit map[string]string `json:"limit,omitempty"`
}

// NamespaceResourceQuota is the quota template applied to every
// namespace created inside the project.
type NamespaceResourceQuota struct {
	Limit ResourceQuotaLimit `json:"limit,omitempty"`
}

// ProjectResourceQuota is the aggregate quota enforced across all of
// the project's namespaces.
type ProjectResourceQuota struct {
	Limit     ResourceQuotaLimit `json:"limit,omitempty"`
	UsedLimit ResourceQuotaLimit `json:"usedLimit,omitempty"` // server-managed; stripped by the diff engine
}

// Project is the canonical, on-disk form of a management Project
// (spec §3). ID is optional pre-creation: the server assigns one via
// the generate_name: "p-" convention when absent.
type Project struct {
	ID                            string                  `json:"id,omitempty"`
	ClusterName                   string                  `json:"clusterName"`
	DisplayName                   string                  `json:"displayName,omitempty"`
	Description                   *string                 `json:"description,omitempty"`
	ContainerDefaultResourceLimit *ContainerResourceLimit `json:"containerDefaultResourceLimit,omitempty"`
	NamespaceDefaultResourceQuota *NamespaceResourceQuota `json:"namespaceDefaultResourceQuota,omitempty"`
	ResourceQuota                 *ProjectResourceQuota   `json:"resourceQuota,omitempty"`
	Annotations                   map[string]string       `json:"annotations,omitempty"`
	Labels                        map[string]string       `json:"labels,omitempty"`
	ResourceVersion               string                  `json:"resourceVersion,omitempty"`
	UID                           string                  `json:"uid,omitempty"`
}

// Namespace returns the parent cluster id, which doubles as this
// project's namespace per spec invariant 2.
func (p Project) Namespace() string { return p.ClusterName }

type ProjectWire struct {
	APIVersion string      `json:"apiVersion"`
	Kind       string      `json:"kind"`
	Metadata   Metadata    `json:"metadata"`
	Spec       ProjectSpec `json:"spec"`
}

type ProjectSpec struct {
	ClusterName                   string                  `json:"clusterName"`
	DisplayName                   string                  `json:"displayName,omitempty"`
	Description                   *string                 `json:"description,omitempty"`
	ContainerDefaultResourceLimit *ContainerResourceLimit `json:"containerDefaultResourceLimit,omitempty"`
	NamespaceDefaultResourceQuota *NamespaceResourceQuota `json:"namespaceDefaultResourceQuota,omitempty"`
	ResourceQuota                 *ProjectResourceQuota   `json:"resourceQuota,omitempty"`
}

const projectAPIVersion = "management.cattle.io/v3"
const projectKind = "Project"

// ProjectGenerateNamePrefix is the server-side id generation prefix used when
// a Project is created without an id (spec §3 Lifecycle).
const ProjectGenerateNamePrefix = "p-"

func (p Project) ToWire() ProjectWire {
	meta := Metadata{
		Name:            p.ID,
		Namespace:       p.ClusterName,
		Labels:          p.Labels,
		Annotations:     p.Annotations,
		ResourceVersion: p.ResourceVersion,
		UID:             p.UID,
	}
	if p.ID == "" {
		meta.GenerateName = ProjectGenerateNamePrefix
	}
	return ProjectWire{
		APIVersion: projectAPIVersion,
		Kind:       projectKind,
		Metadata:   meta,
		Spec: ProjectSpec{
			ClusterName:                   p.ClusterName,
			DisplayName:                   p.DisplayName,
			Description:                   p.Description,
			ContainerDefaultResourceLimit: p.ContainerDefaultResourceLimit,
			NamespaceDefaultResourceQuota: p.NamespaceDefaultResourceQuota,
			ResourceQuota:                 p.ResourceQuota,
		},
	}
}

func ProjectFromWire(w ProjectWire) (Project, error) {
	if w.Spec.ClusterName == "" && w.Metadata.Namespace == "" {
		return Project{}, fmt.Errorf("missing required field: spec")
	}
	clusterName := w.Spec.ClusterName
	if clusterName == "" {
		clusterName = w.Metadata.Namespace
	}
	return Project{
		ID:                            w.Metadata.Name,
		ClusterName:                   clusterName,
		DisplayName:                   w.Spec.DisplayName,
		Description:                   w.Spec.Description,
		ContainerDefaultResourceLimit: w.Spec.ContainerDefaultResourceLimit,
		NamespaceDefaultResourceQuota: w.Spec.NamespaceDefaultResourceQuota,
		ResourceQuota:                 w.Spec.ResourceQuota,
		Annotations:                   w.Metadata.Annotations,
		Labels:                        w.Metadata.Labels,
		ResourceVersion:               w.Metadata.ResourceVersion,
		UID:                           w.Metadata.UID,
	}, nil
}
