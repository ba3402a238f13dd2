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

// PRTB is the canonical, on-disk form of a ProjectRoleTemplateBinding
// (spec §3). Namespace is the parent project's id (invariant 3).
type PRTB struct {
	ID                  string            `json:"id,omitempty"`
	Namespace           string            `json:"namespace"`
	ProjectName         string            `json:"projectName"` // "<cluster-id>:<project-id>"
	RoleTemplateName    string            `json:"roleTemplateName"`
	UserName             *string          `json:"userName,omitempty"`
	UserPrincipalName    *string          `json:"userPrincipalName,omitempty"`
	GroupName            *string          `json:"groupName,omitempty"`
	GroupPrincipalName   *string          `json:"groupPrincipalName,omitempty"`
	ServiceAccount       *string          `json:"serviceAccount,omitempty"`
	Annotations          map[string]string `json:"annotations,omitempty"`
	Labels               map[string]string `json:"labels,omitempty"`
	ResourceVersion      string            `json:"resourceVersion,omitempty"`
}

type PRTBWire struct {
	APIVersion string   `json:"apiVersion"`
	Kind       string   `json:"kind"`
	Metadata   Metadata `json:"metadata"`
	Spec       PRTBSpec `json:"spec"`
}

type PRTBSpec struct {
	ProjectName        string  `json:"projectName"`
	RoleTemplateName   string  `json:"roleTemplateName"`
	UserName           *string `json:"userName,omitempty"`
	UserPrincipalName  *string `json:"userPrincipalName,omitempty"`
	GroupName          *string `json:"groupName,omitempty"`
	GroupPrincipalName *string `json:"groupPrincipalName,omitempty"`
	ServiceAccount     *string `json:"serviceAccount,omitempty"`
}

const prtbAPIVersion = "management.cattle.io/v3"
const prtbKind = "ProjectRoleTemplateBinding"

// PRTBGenerateNamePrefix is the server-side id generation prefix used
// when a PRTB is created without an id (spec §3 Lifecycle).
const PRTBGenerateNamePrefix = "prtb-"

func (b PRTB) ToWire() PRTBWire {
	meta := Metadata{
		Name:            b.ID,
		Namespace:       b.Namespace,
		Labels:          b.Labels,
		Annotations:     b.Annotations,
		ResourceVersion: b.ResourceVersion,
	}
	if b.ID == "" {
		meta.GenerateName = PRTBGenerateNamePrefix
	}
	return PRTBWire{
		APIVersion: prtbAPIVersion,
		Kind:       prtbKind,
		Metadata:   meta,
		Spec: PRTBSpec{
			ProjectName:        b.ProjectName,
			RoleTemplateName:   b.RoleTemplateName,
			UserName:           b.UserName,
			UserPrincipalName:  b.UserPrincipalName,
			GroupName:          b.GroupName,
			GroupPrincipalName: b.GroupPrincipalName,
			ServiceAccount:     b.ServiceAccount,
		},
	}
}

func PRTBFromWire(w PRTBWire) (PRTB, error) {
	if w.Metadata.Namespace == "" {
		return PRTB{}, fmt.Errorf("missing required field: metadata")
	}
	if w.Spec.RoleTemplateName == "" {
		return PRTB{}, fmt.Errorf("missing required field: spec")
	}
	return PRTB{
		ID:                 w.Metadata.Name,
		Namespace:          w.Metadata.Namespace,
		ProjectName:        w.Spec.ProjectName,
		RoleTemplateName:   w.Spec.RoleTemplateName,
		UserName:           w.Spec.UserName,
		UserPrincipalName:  w.Spec.UserPrincipalName,
		GroupName:          w.Spec.GroupName,
		GroupPrincipalName: w.Spec.GroupPrincipalName,
		ServiceAccount:     w.Spec.ServiceAccount,
		Annotations:        w.Metadata.Annotations,
		Labels:             w.Metadata.Labels,
		ResourceVersion:    w.Metadata.ResourceVersion,
	}, nil
}
